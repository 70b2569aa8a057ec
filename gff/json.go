// go.kotor.dev/korf - a toolkit for KotOR/Aurora-engine resource archives
// Copyright (C) 2026  korf contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package gff

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

type jsonField struct {
	Label  string          `json:"label"`
	Type   string          `json:"type"`
	Value  json.RawMessage `json:"value,omitempty"`
	Strref uint32          `json:"strref,omitempty"`
	Subs   []jsonSubstring `json:"strings,omitempty"`
}

type jsonSubstring struct {
	Language uint32 `json:"language"`
	Text     string `json:"text"`
}

type jsonStruct struct {
	ID     uint32      `json:"id"`
	Fields []jsonField `json:"fields"`
}

type jsonDoc struct {
	FileType string     `json:"file_type"`
	Root     jsonStruct `json:"root"`
}

// WriteJSON renders tree as JSON.
func WriteJSON(tree *Tree) ([]byte, error) {
	doc := jsonDoc{FileType: string(tree.FileType)}
	root, err := structToJSON(tree.Root)
	if err != nil {
		return nil, err
	}
	doc.Root = root
	return json.MarshalIndent(doc, "", "  ")
}

func structToJSON(s *Struct) (jsonStruct, error) {
	out := jsonStruct{ID: s.ID}
	for _, f := range s.Fields() {
		jf, err := fieldToJSON(f)
		if err != nil {
			return out, err
		}
		out.Fields = append(out.Fields, jf)
	}
	return out, nil
}

func fieldToJSON(f *Field) (jsonField, error) {
	jf := jsonField{Label: f.Label, Type: typeName(f.Type)}
	switch f.Type {
	case TypeBinary:
		raw, err := json.Marshal(base64.StdEncoding.EncodeToString(f.Value.([]byte)))
		if err != nil {
			return jf, err
		}
		jf.Value = raw
	case TypeLocString:
		ls := f.Value.(LocString)
		jf.Strref = ls.StringRef
		for _, sub := range ls.Strings {
			jf.Subs = append(jf.Subs, jsonSubstring{Language: sub.LanguageID, Text: sub.Text})
		}
	case TypeStruct:
		s, err := structToJSON(f.Value.(*Struct))
		if err != nil {
			return jf, err
		}
		raw, err := json.Marshal(s)
		if err != nil {
			return jf, err
		}
		jf.Value = raw
	case TypeList:
		var list []jsonStruct
		for _, child := range f.Value.([]*Struct) {
			cs, err := structToJSON(child)
			if err != nil {
				return jf, err
			}
			list = append(list, cs)
		}
		raw, err := json.Marshal(list)
		if err != nil {
			return jf, err
		}
		jf.Value = raw
	case TypeVector3:
		v := f.Value.(Vector3)
		raw, err := json.Marshal([3]float32{v.X, v.Y, v.Z})
		if err != nil {
			return jf, err
		}
		jf.Value = raw
	case TypeOrientation:
		v := f.Value.(Vector4)
		raw, err := json.Marshal([4]float32{v.X, v.Y, v.Z, v.W})
		if err != nil {
			return jf, err
		}
		jf.Value = raw
	default:
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return jf, err
		}
		jf.Value = raw
	}
	return jf, nil
}

// ReadJSON parses a document produced by WriteJSON back into a Tree.
func ReadJSON(data []byte) (*Tree, error) {
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("gff: parsing json: %w", err)
	}
	root, err := structFromJSON(doc.Root)
	if err != nil {
		return nil, err
	}
	return &Tree{FileType: FileType(doc.FileType), Root: root}, nil
}

func structFromJSON(js jsonStruct) (*Struct, error) {
	s := NewStruct(js.ID)
	for _, jf := range js.Fields {
		f, err := fieldFromJSON(jf.Label, jf)
		if err != nil {
			return nil, err
		}
		s.Set(f)
	}
	return s, nil
}

func fieldFromJSON(label string, jf jsonField) (*Field, error) {
	t, err := typeFromName(jf.Type)
	if err != nil {
		return nil, err
	}
	f := &Field{Type: t, Label: label}
	switch t {
	case TypeUInt8, TypeInt8, TypeUInt16, TypeInt16, TypeUInt32, TypeInt32,
		TypeUInt64, TypeInt64, TypeSingle, TypeDouble, TypeExoString, TypeResRef:
		f.Value, err = unmarshalScalar(t, jf.Value)
		if err != nil {
			return nil, err
		}
	case TypeBinary:
		var s string
		if err := json.Unmarshal(jf.Value, &s); err != nil {
			return nil, err
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, err
		}
		f.Value = raw
	case TypeLocString:
		ls := LocString{StringRef: jf.Strref}
		for _, sub := range jf.Subs {
			ls.Strings = append(ls.Strings, LocSubstring{LanguageID: sub.Language, Text: sub.Text})
		}
		f.Value = ls
	case TypeVector3:
		var v [3]float32
		if err := json.Unmarshal(jf.Value, &v); err != nil {
			return nil, err
		}
		f.Value = Vector3{X: v[0], Y: v[1], Z: v[2]}
	case TypeOrientation:
		var v [4]float32
		if err := json.Unmarshal(jf.Value, &v); err != nil {
			return nil, err
		}
		f.Value = Vector4{X: v[0], Y: v[1], Z: v[2], W: v[3]}
	case TypeStruct:
		var js jsonStruct
		if err := json.Unmarshal(jf.Value, &js); err != nil {
			return nil, err
		}
		child, err := structFromJSON(js)
		if err != nil {
			return nil, err
		}
		f.Value = child
	case TypeList:
		var list []jsonStruct
		if err := json.Unmarshal(jf.Value, &list); err != nil {
			return nil, err
		}
		var out []*Struct
		for _, js := range list {
			child, err := structFromJSON(js)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		f.Value = out
	default:
		return nil, fmt.Errorf("gff: field %q: unhandled type %v", label, t)
	}
	return f, nil
}

func unmarshalScalar(t FieldType, raw json.RawMessage) (any, error) {
	switch t {
	case TypeUInt8:
		var v uint8
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeInt8:
		var v int8
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeUInt16:
		var v uint16
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeInt16:
		var v int16
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeUInt32:
		var v uint32
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeInt32:
		var v int32
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeUInt64:
		var v uint64
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeInt64:
		var v int64
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeSingle:
		var v float32
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeDouble:
		var v float64
		err := json.Unmarshal(raw, &v)
		return v, err
	case TypeExoString, TypeResRef:
		var v string
		err := json.Unmarshal(raw, &v)
		return v, err
	}
	return nil, fmt.Errorf("unhandled scalar type %v", t)
}

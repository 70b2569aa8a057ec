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
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// xmlNode is the lossless XML bridge representation of a Field; it can
// round-trip every field type including LocString, Orientation and Vector3.
type xmlNode struct {
	XMLName xml.Name
	Label   string      `xml:"label,attr"`
	Type    string      `xml:"type,attr,omitempty"`
	Text    string      `xml:",chardata"`
	Attrs   []xml.Attr  `xml:",any,attr"`
	Structs []xmlStruct `xml:"struct"`
}

type xmlStruct struct {
	ID     uint32    `xml:"id,attr"`
	Label  string    `xml:"label,attr,omitempty"`
	Fields []xmlNode `xml:"field"`
}

type xmlDoc struct {
	XMLName  xml.Name  `xml:"gff"`
	FileType string    `xml:"type,attr"`
	Root     xmlStruct `xml:"struct"`
}

// WriteXML renders tree as a lossless XML document.
func WriteXML(tree *Tree) ([]byte, error) {
	doc := xmlDoc{FileType: string(tree.FileType), Root: structToXML(tree.Root, "")}
	return xml.MarshalIndent(doc, "", "  ")
}

func structToXML(s *Struct, label string) xmlStruct {
	out := xmlStruct{ID: s.ID, Label: label}
	for _, f := range s.Fields() {
		out.Fields = append(out.Fields, fieldToXML(f))
	}
	return out
}

func fieldToXML(f *Field) xmlNode {
	n := xmlNode{XMLName: xml.Name{Local: "field"}, Label: f.Label, Type: typeName(f.Type)}
	switch f.Type {
	case TypeStruct:
		n.Structs = []xmlStruct{structToXML(f.Value.(*Struct), "")}
	case TypeList:
		for _, child := range f.Value.([]*Struct) {
			n.Structs = append(n.Structs, structToXML(child, ""))
		}
	case TypeBinary:
		n.Text = base64.StdEncoding.EncodeToString(f.Value.([]byte))
	case TypeLocString:
		ls := f.Value.(LocString)
		n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: "strref"}, Value: fmt.Sprint(ls.StringRef)})
		for _, sub := range ls.Strings {
			n.Structs = append(n.Structs, xmlStruct{
				ID:    sub.LanguageID,
				Label: sub.Text,
			})
		}
	case TypeVector3:
		v := f.Value.(Vector3)
		n.Text = fmt.Sprintf("%g %g %g", v.X, v.Y, v.Z)
	case TypeOrientation:
		v := f.Value.(Vector4)
		n.Text = fmt.Sprintf("%g %g %g %g", v.X, v.Y, v.Z, v.W)
	default:
		n.Text = fmt.Sprint(f.Value)
	}
	return n
}

// ReadXML parses a document produced by WriteXML back into a Tree.
func ReadXML(data []byte) (*Tree, error) {
	var doc xmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("gff: parsing xml: %w", err)
	}
	root, err := structFromXML(doc.Root)
	if err != nil {
		return nil, err
	}
	return &Tree{FileType: FileType(doc.FileType), Root: root}, nil
}

func structFromXML(xs xmlStruct) (*Struct, error) {
	s := NewStruct(xs.ID)
	for _, xf := range xs.Fields {
		f, err := fieldFromXML(xf)
		if err != nil {
			return nil, err
		}
		s.Set(f)
	}
	return s, nil
}

func fieldFromXML(n xmlNode) (*Field, error) {
	t, err := typeFromName(n.Type)
	if err != nil {
		return nil, err
	}
	f := &Field{Type: t, Label: n.Label}
	switch t {
	case TypeUInt8:
		v, _ := strconv.ParseUint(n.Text, 10, 8)
		f.Value = uint8(v)
	case TypeInt8:
		v, _ := strconv.ParseInt(n.Text, 10, 8)
		f.Value = int8(v)
	case TypeUInt16:
		v, _ := strconv.ParseUint(n.Text, 10, 16)
		f.Value = uint16(v)
	case TypeInt16:
		v, _ := strconv.ParseInt(n.Text, 10, 16)
		f.Value = int16(v)
	case TypeUInt32:
		v, _ := strconv.ParseUint(n.Text, 10, 32)
		f.Value = uint32(v)
	case TypeInt32:
		v, _ := strconv.ParseInt(n.Text, 10, 32)
		f.Value = int32(v)
	case TypeUInt64:
		v, _ := strconv.ParseUint(n.Text, 10, 64)
		f.Value = v
	case TypeInt64:
		v, _ := strconv.ParseInt(n.Text, 10, 64)
		f.Value = v
	case TypeSingle:
		v, _ := strconv.ParseFloat(n.Text, 32)
		f.Value = float32(v)
	case TypeDouble:
		v, _ := strconv.ParseFloat(n.Text, 64)
		f.Value = v
	case TypeExoString, TypeResRef:
		f.Value = n.Text
	case TypeBinary:
		raw, err := base64.StdEncoding.DecodeString(n.Text)
		if err != nil {
			return nil, fmt.Errorf("gff: decoding binary field %q: %w", n.Label, err)
		}
		f.Value = raw
	case TypeLocString:
		var strref uint32
		for _, a := range n.Attrs {
			if a.Name.Local == "strref" {
				v, _ := strconv.ParseUint(a.Value, 10, 32)
				strref = uint32(v)
			}
		}
		ls := LocString{StringRef: strref}
		for _, sub := range n.Structs {
			ls.Strings = append(ls.Strings, LocSubstring{LanguageID: sub.ID, Text: sub.Label})
		}
		f.Value = ls
	case TypeVector3:
		parts := strings.Fields(n.Text)
		if len(parts) != 3 {
			return nil, fmt.Errorf("gff: vector3 field %q malformed", n.Label)
		}
		var v Vector3
		v.X = parseFloat32(parts[0])
		v.Y = parseFloat32(parts[1])
		v.Z = parseFloat32(parts[2])
		f.Value = v
	case TypeOrientation:
		parts := strings.Fields(n.Text)
		if len(parts) != 4 {
			return nil, fmt.Errorf("gff: orientation field %q malformed", n.Label)
		}
		var v Vector4
		v.X = parseFloat32(parts[0])
		v.Y = parseFloat32(parts[1])
		v.Z = parseFloat32(parts[2])
		v.W = parseFloat32(parts[3])
		f.Value = v
	case TypeStruct:
		if len(n.Structs) != 1 {
			return nil, fmt.Errorf("gff: struct field %q missing body", n.Label)
		}
		child, err := structFromXML(n.Structs[0])
		if err != nil {
			return nil, err
		}
		f.Value = child
	case TypeList:
		var list []*Struct
		for _, xs := range n.Structs {
			child, err := structFromXML(xs)
			if err != nil {
				return nil, err
			}
			list = append(list, child)
		}
		f.Value = list
	default:
		return nil, fmt.Errorf("gff: field %q: unhandled type %v", n.Label, t)
	}
	return f, nil
}

func parseFloat32(s string) float32 {
	v, _ := strconv.ParseFloat(s, 32)
	return float32(v)
}

func typeFromName(name string) (FieldType, error) {
	for i, n := range [...]string{
		"uint8", "int8", "uint16", "int16", "uint32", "int32",
		"uint64", "int64", "single", "double", "exostring", "resref",
		"locstring", "binary", "struct", "list", "orientation", "vector3",
	} {
		if n == name {
			return FieldType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown field type %q", name)
}

func typeName(t FieldType) string {
	names := [...]string{
		"uint8", "int8", "uint16", "int16", "uint32", "int32",
		"uint64", "int64", "single", "double", "exostring", "resref",
		"locstring", "binary", "struct", "list", "orientation", "vector3",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

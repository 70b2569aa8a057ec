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
	"bytes"
	"encoding/binary"
	"fmt"

	"go.kotor.dev/korf/internal/bread"
)

type writerStructEntry struct {
	id         uint32
	dataOrOff  uint32
	fieldCount uint32
}

type writerFieldEntry struct {
	typ        FieldType
	labelIndex uint32
	dataOrOff  uint32
}

type builder struct {
	structs      []writerStructEntry
	fields       []writerFieldEntry
	labels       []string
	labelIndex   map[string]int
	fieldData    bytes.Buffer
	fieldIndices bytes.Buffer
	listIndices  bytes.Buffer
}

// Write serializes tree deterministically: struct indices are assigned in
// pre-order, labels are deduplicated, and field data is appended in
// field-declaration order, so byte-stable output follows from a
// byte-stable input tree.
func Write(tree *Tree) ([]byte, error) {
	b := &builder{labelIndex: map[string]int{}}
	if _, err := b.addStruct(tree.Root); err != nil {
		return nil, err
	}

	structOffset := uint32(headerSize)
	fieldOffset := structOffset + 12*uint32(len(b.structs))
	labelOffset := fieldOffset + 12*uint32(len(b.fields))
	fieldDataOffset := labelOffset + 16*uint32(len(b.labels))
	fieldIndicesOffset := fieldDataOffset + uint32(b.fieldData.Len())
	listIndicesOffset := fieldIndicesOffset + uint32(b.fieldIndices.Len())

	w := bread.NewWriter()
	ft := string(tree.FileType)
	for len(ft) < 4 {
		ft += " "
	}
	w.String(ft[:4])
	w.String("V3.2")
	w.Uint32(structOffset)
	w.Uint32(uint32(len(b.structs)))
	w.Uint32(fieldOffset)
	w.Uint32(uint32(len(b.fields)))
	w.Uint32(labelOffset)
	w.Uint32(uint32(len(b.labels)))
	w.Uint32(fieldDataOffset)
	w.Uint32(uint32(b.fieldData.Len()))
	w.Uint32(fieldIndicesOffset)
	w.Uint32(uint32(b.fieldIndices.Len()))
	w.Uint32(listIndicesOffset)
	w.Uint32(uint32(b.listIndices.Len()))

	for _, se := range b.structs {
		w.Uint32(se.id)
		w.Uint32(se.dataOrOff)
		w.Uint32(se.fieldCount)
	}
	for _, fe := range b.fields {
		w.Uint32(uint32(fe.typ))
		w.Uint32(fe.labelIndex)
		w.Uint32(fe.dataOrOff)
	}
	for _, label := range b.labels {
		if len(label) > 16 {
			return nil, fmt.Errorf("gff: label %q exceeds 16 bytes", label)
		}
		w.PaddedString(label, 16)
	}
	w.RawBytes(b.fieldData.Bytes())
	w.RawBytes(b.fieldIndices.Bytes())
	w.RawBytes(b.listIndices.Bytes())

	return w.Bytes(), nil
}

func (b *builder) addLabel(label string) uint32 {
	if i, ok := b.labelIndex[label]; ok {
		return uint32(i)
	}
	i := len(b.labels)
	b.labelIndex[label] = i
	b.labels = append(b.labels, label)
	return uint32(i)
}

func (b *builder) addStruct(s *Struct) (uint32, error) {
	idx := uint32(len(b.structs))
	b.structs = append(b.structs, writerStructEntry{id: s.ID})

	fieldIdxs := make([]uint32, 0, len(s.Fields()))
	for _, f := range s.Fields() {
		fi, err := b.addField(f)
		if err != nil {
			return 0, err
		}
		fieldIdxs = append(fieldIdxs, fi)
	}

	var dataOrOff uint32
	switch len(fieldIdxs) {
	case 0:
		dataOrOff = 0
	case 1:
		dataOrOff = fieldIdxs[0]
	default:
		dataOrOff = uint32(b.fieldIndices.Len())
		for _, fi := range fieldIdxs {
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], fi)
			b.fieldIndices.Write(tmp[:])
		}
	}
	b.structs[idx] = writerStructEntry{id: s.ID, dataOrOff: dataOrOff, fieldCount: uint32(len(fieldIdxs))}
	return idx, nil
}

func (b *builder) addField(f *Field) (uint32, error) {
	idx := uint32(len(b.fields))
	b.fields = append(b.fields, writerFieldEntry{})
	labelIdx := b.addLabel(f.Label)

	var dataOrOff uint32
	switch f.Type {
	case TypeUInt8:
		dataOrOff = uint32(f.Value.(uint8))
	case TypeInt8:
		dataOrOff = uint32(uint8(f.Value.(int8)))
	case TypeUInt16:
		dataOrOff = uint32(f.Value.(uint16))
	case TypeInt16:
		dataOrOff = uint32(uint16(f.Value.(int16)))
	case TypeUInt32:
		dataOrOff = f.Value.(uint32)
	case TypeInt32:
		dataOrOff = uint32(f.Value.(int32))
	case TypeSingle:
		dataOrOff = float32ToBits(f.Value.(float32))
	case TypeUInt64:
		dataOrOff = uint32(b.fieldData.Len())
		b.appendU64(f.Value.(uint64))
	case TypeInt64:
		dataOrOff = uint32(b.fieldData.Len())
		b.appendU64(uint64(f.Value.(int64)))
	case TypeDouble:
		dataOrOff = uint32(b.fieldData.Len())
		b.appendU64(float64ToBits(f.Value.(float64)))
	case TypeExoString:
		dataOrOff = uint32(b.fieldData.Len())
		b.appendPrefixedString(f.Value.(string), 4)
	case TypeResRef:
		s := f.Value.(string)
		if len(s) > 16 {
			return 0, fmt.Errorf("gff: resref %q exceeds 16 bytes", s)
		}
		dataOrOff = uint32(b.fieldData.Len())
		b.appendPrefixedString(s, 1)
	case TypeBinary:
		dataOrOff = uint32(b.fieldData.Len())
		b.appendBinary(f.Value.([]byte))
	case TypeLocString:
		dataOrOff = uint32(b.fieldData.Len())
		b.appendLocString(f.Value.(LocString))
	case TypeVector3:
		dataOrOff = uint32(b.fieldData.Len())
		b.appendVector3(f.Value.(Vector3))
	case TypeOrientation:
		dataOrOff = uint32(b.fieldData.Len())
		b.appendVector4(f.Value.(Vector4))
	case TypeStruct:
		si, err := b.addStruct(f.Value.(*Struct))
		if err != nil {
			return 0, err
		}
		dataOrOff = si
	case TypeList:
		children := f.Value.([]*Struct)
		dataOrOff = uint32(b.listIndices.Len())
		var countBuf [4]byte
		binary.LittleEndian.PutUint32(countBuf[:], uint32(len(children)))
		b.listIndices.Write(countBuf[:])
		for _, child := range children {
			si, err := b.addStruct(child)
			if err != nil {
				return 0, err
			}
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], si)
			b.listIndices.Write(tmp[:])
		}
	default:
		return 0, fmt.Errorf("gff: field %q: unknown type %d", f.Label, f.Type)
	}

	b.fields[idx] = writerFieldEntry{typ: f.Type, labelIndex: labelIdx, dataOrOff: dataOrOff}
	return idx, nil
}

func (b *builder) appendU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.fieldData.Write(tmp[:])
}

func (b *builder) appendPrefixedString(s string, lenWidth int) {
	switch lenWidth {
	case 1:
		b.fieldData.WriteByte(byte(len(s)))
	case 4:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(s)))
		b.fieldData.Write(tmp[:])
	}
	b.fieldData.WriteString(s)
}

func (b *builder) appendBinary(data []byte) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(data)))
	b.fieldData.Write(tmp[:])
	b.fieldData.Write(data)
}

func (b *builder) appendLocString(ls LocString) {
	// total size excludes the size field itself: StringRef + count + substrings
	size := 4 + 4
	for _, s := range ls.Strings {
		size += 4 + 4 + len(s.Text)
	}
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(size))
	b.fieldData.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], ls.StringRef)
	b.fieldData.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(ls.Strings)))
	b.fieldData.Write(tmp[:])
	for _, s := range ls.Strings {
		binary.LittleEndian.PutUint32(tmp[:], s.LanguageID)
		b.fieldData.Write(tmp[:])
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(s.Text)))
		b.fieldData.Write(tmp[:])
		b.fieldData.WriteString(s.Text)
	}
}

func (b *builder) appendVector3(v Vector3) {
	var tmp [4]byte
	for _, f := range [3]float32{v.X, v.Y, v.Z} {
		binary.LittleEndian.PutUint32(tmp[:], float32ToBits(f))
		b.fieldData.Write(tmp[:])
	}
}

func (b *builder) appendVector4(v Vector4) {
	var tmp [4]byte
	for _, f := range [4]float32{v.X, v.Y, v.Z, v.W} {
		binary.LittleEndian.PutUint32(tmp[:], float32ToBits(f))
		b.fieldData.Write(tmp[:])
	}
}

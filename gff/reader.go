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
	"encoding/binary"
	"fmt"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
)

const headerSize = 56

type structEntry struct {
	id         uint32
	dataOrOff  uint32
	fieldCount uint32
}

type fieldEntry struct {
	typ        FieldType
	labelIndex uint32
	dataOrOff  uint32
}

// FileType is the GFF header's type-specific magic, e.g. "UTC ", "IFO ",
// "ARE ". It is preserved on read so a round-trip write reproduces it.
type FileType string

// Tree is a fully-materialized GFF document: the type-specific magic plus
// the root struct.
type Tree struct {
	FileType FileType
	Root     *Struct
}

// Read parses a complete GFF document from buf.
func Read(buf []byte) (*Tree, error) {
	r := bread.NewReader(buf)

	ft, err := r.String(4)
	if err != nil {
		return nil, fmt.Errorf("gff: reading file type: %w", err)
	}
	version, err := r.String(4)
	if err != nil {
		return nil, fmt.Errorf("gff: reading version: %w", err)
	}
	if version != "V3.2" {
		return nil, fmt.Errorf("gff: unsupported version %q: %w", version, kerr.ErrUnsupportedVersion)
	}

	structOff, _ := r.Uint32()
	structCount, _ := r.Uint32()
	fieldOff, _ := r.Uint32()
	fieldCount, _ := r.Uint32()
	labelOff, _ := r.Uint32()
	labelCount, _ := r.Uint32()
	fieldDataOff, _ := r.Uint32()
	fieldDataCount, _ := r.Uint32()
	fieldIndicesOff, _ := r.Uint32()
	fieldIndicesCount, _ := r.Uint32()
	listIndicesOff, _ := r.Uint32()
	listIndicesCount, _ := r.Uint32()

	structs := make([]structEntry, structCount)
	r.SetPosition(int64(structOff))
	for i := range structs {
		id, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("gff: struct %d: %w", i, err)
		}
		dataOrOff, _ := r.Uint32()
		fc, _ := r.Uint32()
		structs[i] = structEntry{id: id, dataOrOff: dataOrOff, fieldCount: fc}
	}

	fields := make([]fieldEntry, fieldCount)
	r.SetPosition(int64(fieldOff))
	for i := range fields {
		typ, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("gff: field %d: %w", i, err)
		}
		labelIdx, _ := r.Uint32()
		dataOrOff, _ := r.Uint32()
		fields[i] = fieldEntry{typ: FieldType(typ), labelIndex: labelIdx, dataOrOff: dataOrOff}
	}

	labels := make([]string, labelCount)
	r.SetPosition(int64(labelOff))
	for i := range labels {
		raw, err := r.Bytes(16)
		if err != nil {
			return nil, fmt.Errorf("gff: label %d: %w", i, err)
		}
		n := 0
		for n < 16 && raw[n] != 0 {
			n++
		}
		labels[i] = string(raw[:n])
	}

	fieldData, err := sliceAt(buf, int64(fieldDataOff), int64(fieldDataCount))
	if err != nil {
		return nil, fmt.Errorf("gff: field data: %w", err)
	}
	fieldIndices, err := sliceAt(buf, int64(fieldIndicesOff), int64(fieldIndicesCount))
	if err != nil {
		return nil, fmt.Errorf("gff: field indices: %w", err)
	}
	listIndices, err := sliceAt(buf, int64(listIndicesOff), int64(listIndicesCount))
	if err != nil {
		return nil, fmt.Errorf("gff: list indices: %w", err)
	}

	rd := &treeReader{
		structs:      structs,
		fields:       fields,
		labels:       labels,
		fieldData:    fieldData,
		fieldIndices: fieldIndices,
		listIndices:  listIndices,
	}

	if len(structs) == 0 {
		return nil, fmt.Errorf("gff: no structs")
	}
	root, err := rd.readStruct(0)
	if err != nil {
		return nil, err
	}
	return &Tree{FileType: FileType(ft), Root: root}, nil
}

func sliceAt(buf []byte, off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > int64(len(buf)) {
		return nil, fmt.Errorf("out of range (offset %d, length %d, buffer %d)", off, n, len(buf))
	}
	return buf[off : off+n], nil
}

type treeReader struct {
	structs      []structEntry
	fields       []fieldEntry
	labels       []string
	fieldData    []byte
	fieldIndices []byte
	listIndices  []byte
}

func (rd *treeReader) readStruct(idx uint32) (*Struct, error) {
	if int(idx) >= len(rd.structs) {
		return nil, fmt.Errorf("gff: struct index %d out of range", idx)
	}
	se := rd.structs[idx]
	s := NewStruct(se.id)

	var fieldIdxs []uint32
	switch se.fieldCount {
	case 0:
		// no fields
	case 1:
		fieldIdxs = []uint32{se.dataOrOff}
	default:
		start := int64(se.dataOrOff)
		for i := uint32(0); i < se.fieldCount; i++ {
			v, err := u32At(rd.fieldIndices, start+int64(i)*4)
			if err != nil {
				return nil, fmt.Errorf("gff: struct %d field indices: %w", idx, err)
			}
			fieldIdxs = append(fieldIdxs, v)
		}
	}

	for _, fi := range fieldIdxs {
		f, err := rd.readField(fi)
		if err != nil {
			return nil, err
		}
		s.Set(f)
	}
	return s, nil
}

func (rd *treeReader) readField(idx uint32) (*Field, error) {
	if int(idx) >= len(rd.fields) {
		return nil, fmt.Errorf("gff: field index %d out of range", idx)
	}
	fe := rd.fields[idx]
	if int(fe.labelIndex) >= len(rd.labels) {
		return nil, fmt.Errorf("gff: field %d label index %d out of range", idx, fe.labelIndex)
	}
	label := rd.labels[fe.labelIndex]

	var value any
	var err error
	switch fe.typ {
	case TypeUInt8:
		value = uint8(fe.dataOrOff)
	case TypeInt8:
		value = int8(fe.dataOrOff)
	case TypeUInt16:
		value = uint16(fe.dataOrOff)
	case TypeInt16:
		value = int16(fe.dataOrOff)
	case TypeUInt32:
		value = fe.dataOrOff
	case TypeInt32:
		value = int32(fe.dataOrOff)
	case TypeSingle:
		value = bitsToFloat32(fe.dataOrOff)
	case TypeUInt64:
		value, err = u64At(rd.fieldData, int64(fe.dataOrOff))
	case TypeInt64:
		var v uint64
		v, err = u64At(rd.fieldData, int64(fe.dataOrOff))
		value = int64(v)
	case TypeDouble:
		var v uint64
		v, err = u64At(rd.fieldData, int64(fe.dataOrOff))
		value = bitsToFloat64(v)
	case TypeExoString:
		value, err = readPrefixedString(rd.fieldData, int64(fe.dataOrOff), 4)
	case TypeResRef:
		value, err = readResRef(rd.fieldData, int64(fe.dataOrOff))
	case TypeBinary:
		value, err = readBinary(rd.fieldData, int64(fe.dataOrOff))
	case TypeLocString:
		value, err = readLocString(rd.fieldData, int64(fe.dataOrOff))
	case TypeVector3:
		value, err = readVector3(rd.fieldData, int64(fe.dataOrOff))
	case TypeOrientation:
		value, err = readVector4(rd.fieldData, int64(fe.dataOrOff))
	case TypeStruct:
		value, err = rd.readStruct(fe.dataOrOff)
	case TypeList:
		value, err = rd.readList(fe.dataOrOff)
	default:
		return nil, fmt.Errorf("gff: field %d: unknown type %d", idx, fe.typ)
	}
	if err != nil {
		return nil, fmt.Errorf("gff: field %q: %w", label, err)
	}
	return &Field{Type: fe.typ, Label: label, Value: value}, nil
}

func (rd *treeReader) readList(byteOffset uint32) ([]*Struct, error) {
	count, err := u32At(rd.listIndices, int64(byteOffset))
	if err != nil {
		return nil, err
	}
	out := make([]*Struct, 0, count)
	for i := uint32(0); i < count; i++ {
		si, err := u32At(rd.listIndices, int64(byteOffset)+4+int64(i)*4)
		if err != nil {
			return nil, err
		}
		s, err := rd.readStruct(si)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func u32At(b []byte, off int64) (uint32, error) {
	if off < 0 || off+4 > int64(len(b)) {
		return 0, fmt.Errorf("offset %d out of range (len %d)", off, len(b))
	}
	return binary.LittleEndian.Uint32(b[off : off+4]), nil
}

func u64At(b []byte, off int64) (uint64, error) {
	if off < 0 || off+8 > int64(len(b)) {
		return 0, fmt.Errorf("offset %d out of range (len %d)", off, len(b))
	}
	return binary.LittleEndian.Uint64(b[off : off+8]), nil
}

func readPrefixedString(b []byte, off int64, lenWidth int) (string, error) {
	var n int64
	switch lenWidth {
	case 1:
		if off+1 > int64(len(b)) {
			return "", fmt.Errorf("length prefix out of range")
		}
		n = int64(b[off])
		off++
	case 4:
		v, err := u32At(b, off)
		if err != nil {
			return "", err
		}
		n = int64(v)
		off += 4
	}
	if off+n > int64(len(b)) || off < 0 || n < 0 {
		return "", fmt.Errorf("string body out of range")
	}
	return string(b[off : off+n]), nil
}

func readResRef(b []byte, off int64) (string, error) {
	return readPrefixedString(b, off, 1)
}

func readBinary(b []byte, off int64) ([]byte, error) {
	n, err := u32At(b, off)
	if err != nil {
		return nil, err
	}
	start := off + 4
	if start+int64(n) > int64(len(b)) {
		return nil, fmt.Errorf("binary body out of range")
	}
	out := make([]byte, n)
	copy(out, b[start:start+int64(n)])
	return out, nil
}

func readLocString(b []byte, off int64) (LocString, error) {
	_, err := u32At(b, off) // total size in bytes, recomputed on write
	if err != nil {
		return LocString{}, err
	}
	stringRef, err := u32At(b, off+4)
	if err != nil {
		return LocString{}, err
	}
	count, err := u32At(b, off+8)
	if err != nil {
		return LocString{}, err
	}
	pos := off + 12
	subs := make([]LocSubstring, 0, count)
	for i := uint32(0); i < count; i++ {
		langID, err := u32At(b, pos)
		if err != nil {
			return LocString{}, err
		}
		length, err := u32At(b, pos+4)
		if err != nil {
			return LocString{}, err
		}
		textStart := pos + 8
		if textStart+int64(length) > int64(len(b)) {
			return LocString{}, fmt.Errorf("locstring substring out of range")
		}
		subs = append(subs, LocSubstring{LanguageID: langID, Text: string(b[textStart : textStart+int64(length)])})
		pos = textStart + int64(length)
	}
	return LocString{StringRef: stringRef, Strings: subs}, nil
}

func readVector3(b []byte, off int64) (Vector3, error) {
	if off+12 > int64(len(b)) || off < 0 {
		return Vector3{}, fmt.Errorf("vector3 out of range")
	}
	return Vector3{
		X: bitsToFloat32(binary.LittleEndian.Uint32(b[off:])),
		Y: bitsToFloat32(binary.LittleEndian.Uint32(b[off+4:])),
		Z: bitsToFloat32(binary.LittleEndian.Uint32(b[off+8:])),
	}, nil
}

func readVector4(b []byte, off int64) (Vector4, error) {
	if off+16 > int64(len(b)) || off < 0 {
		return Vector4{}, fmt.Errorf("vector4 (orientation) out of range")
	}
	return Vector4{
		X: bitsToFloat32(binary.LittleEndian.Uint32(b[off:])),
		Y: bitsToFloat32(binary.LittleEndian.Uint32(b[off+4:])),
		Z: bitsToFloat32(binary.LittleEndian.Uint32(b[off+8:])),
		W: bitsToFloat32(binary.LittleEndian.Uint32(b[off+12:])),
	}, nil
}

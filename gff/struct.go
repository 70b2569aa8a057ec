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

// Struct is a node in the GFF tree: a 32-bit struct-id plus an ordered set
// of uniquely-labeled fields. Field order is preserved because the writer
// must reproduce byte-stable output for semantically equal trees.
type Struct struct {
	ID     uint32
	fields []*Field
	index  map[string]int
}

// NewStruct returns an empty Struct with the given struct-id.
func NewStruct(id uint32) *Struct {
	return &Struct{ID: id, index: map[string]int{}}
}

// Fields returns the struct's fields in declaration order. The returned
// slice must not be mutated by the caller.
func (s *Struct) Fields() []*Field { return s.fields }

// Get returns the field with the given label, or nil if absent.
func (s *Struct) Get(label string) *Field {
	if i, ok := s.index[label]; ok {
		return s.fields[i]
	}
	return nil
}

// Set inserts or replaces the field with the given label, preserving the
// position of an existing field and appending new ones.
func (s *Struct) Set(f *Field) {
	if i, ok := s.index[f.Label]; ok {
		s.fields[i] = f
		return
	}
	s.index[f.Label] = len(s.fields)
	s.fields = append(s.fields, f)
}

// SetUInt8 etc. are typed convenience setters used by generic-asset
// builders (UT* writers) so callers don't construct *Field literals by hand.
func (s *Struct) SetUInt8(label string, v uint8)   { s.Set(&Field{TypeUInt8, label, v}) }
func (s *Struct) SetInt8(label string, v int8)     { s.Set(&Field{TypeInt8, label, v}) }
func (s *Struct) SetUInt16(label string, v uint16) { s.Set(&Field{TypeUInt16, label, v}) }
func (s *Struct) SetInt16(label string, v int16)   { s.Set(&Field{TypeInt16, label, v}) }
func (s *Struct) SetUInt32(label string, v uint32) { s.Set(&Field{TypeUInt32, label, v}) }
func (s *Struct) SetInt32(label string, v int32)   { s.Set(&Field{TypeInt32, label, v}) }
func (s *Struct) SetUInt64(label string, v uint64) { s.Set(&Field{TypeUInt64, label, v}) }
func (s *Struct) SetInt64(label string, v int64)   { s.Set(&Field{TypeInt64, label, v}) }
func (s *Struct) SetSingle(label string, v float32) { s.Set(&Field{TypeSingle, label, v}) }
func (s *Struct) SetDouble(label string, v float64) { s.Set(&Field{TypeDouble, label, v}) }
func (s *Struct) SetExoString(label, v string)      { s.Set(&Field{TypeExoString, label, v}) }
func (s *Struct) SetResRef(label, v string)         { s.Set(&Field{TypeResRef, label, v}) }
func (s *Struct) SetLocString(label string, v LocString) { s.Set(&Field{TypeLocString, label, v}) }
func (s *Struct) SetBinary(label string, v []byte)  { s.Set(&Field{TypeBinary, label, v}) }
func (s *Struct) SetStruct(label string, v *Struct)  { s.Set(&Field{TypeStruct, label, v}) }
func (s *Struct) SetList(label string, v []*Struct)  { s.Set(&Field{TypeList, label, v}) }
func (s *Struct) SetOrientation(label string, v Vector4) { s.Set(&Field{TypeOrientation, label, v}) }
func (s *Struct) SetVector3(label string, v Vector3) { s.Set(&Field{TypeVector3, label, v}) }

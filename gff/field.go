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
// Package gff implements the Generic File Format: BioWare's hierarchical
// struct/field/list container used by nearly every designer-facing asset
// (UT* creatures/items/placeables, ARE, GIT, IFO, DLG, FAC, JRL, ...).
package gff

import "go.kotor.dev/korf/internal/bread"

// FieldType is the wire-level tag of a GFF field value.
type FieldType uint32

const (
	TypeUInt8 FieldType = iota
	TypeInt8
	TypeUInt16
	TypeInt16
	TypeUInt32
	TypeInt32
	TypeUInt64
	TypeInt64
	TypeSingle
	TypeDouble
	TypeExoString
	TypeResRef
	TypeLocString
	TypeBinary
	TypeStruct
	TypeList
	TypeOrientation
	TypeVector3
)

// Field is a single named value inside a Struct. Value holds a Go type
// appropriate to Type:
//
//	TypeUInt8/Int8/UInt16/Int16/UInt32/Int32 -> the matching Go integer type
//	TypeUInt64/Int64                         -> uint64/int64
//	TypeSingle                                -> float32
//	TypeDouble                                -> float64
//	TypeExoString/TypeResRef                  -> string
//	TypeLocString                             -> LocString
//	TypeBinary                                -> []byte
//	TypeStruct                                -> *Struct
//	TypeList                                  -> []*Struct
//	TypeOrientation                           -> bread.Vector4
//	TypeVector3                               -> bread.Vector3
type Field struct {
	Type  FieldType
	Label string
	Value any
}

// LocString is a StringRef into a TLK table plus zero or more per-language
// overrides. LanguageID encodes gender in its low bit (even = male).
type LocString struct {
	StringRef uint32
	Strings   []LocSubstring
}

// LocSubstring is one {language, gender, text} override of a LocString.
type LocSubstring struct {
	LanguageID uint32
	Text       string
}

// Language returns the language id with the gender bit stripped.
func (s LocSubstring) Language() uint32 { return s.LanguageID >> 1 }

// IsFemale reports whether the low bit of LanguageID marks this a female
// variant string.
func (s LocSubstring) IsFemale() bool { return s.LanguageID&1 == 1 }

// Vector3 and Vector4 are aliases of the shared binary-reader vector types,
// re-exported so callers needn't import internal/bread directly.
type (
	Vector3 = bread.Vector3
	Vector4 = bread.Vector4
)

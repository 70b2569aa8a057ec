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
// Package resid implements ResourceIdentifier, the (resref, restype) value
// type used as the key of every archive and installation index in this
// module.
package resid

import (
	"strings"

	"go.kotor.dev/korf/resref"
	"go.kotor.dev/korf/restype"
)

// Identifier is a case-insensitive (resname, restype) pair.
type Identifier struct {
	ResRef  resref.ResRef
	ResType restype.Type
}

// New builds an Identifier from an already-validated ResRef and Type.
func New(name resref.ResRef, t restype.Type) Identifier {
	return Identifier{ResRef: name, ResType: t}
}

// FromPath splits path at its last '.' and resolves the suffix to a
// restype.Type. If the extension is unrecognized, ResType is
// restype.Invalid but ResRef is still populated.
func FromPath(path string) Identifier {
	base := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		base = path[i+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 {
		return Identifier{ResRef: resref.FromTruncated(base), ResType: restype.Invalid}
	}
	name := base[:dot]
	ext := base[dot+1:]
	return Identifier{
		ResRef:  resref.FromTruncated(name),
		ResType: restype.FromExtension(ext),
	}
}

// Equal reports whether two Identifiers denote the same resource,
// case-insensitively on the resref and exactly on the type id.
func (id Identifier) Equal(other Identifier) bool {
	return id.ResRef.Equal(other.ResRef) && id.ResType.ID() == other.ResType.ID()
}

// Key returns a value suitable for use as a Go map key: ResRef is already
// lower-cased by construction, so a plain struct compare is case-insensitive.
func (id Identifier) Key() Identifier { return id }

// String renders the identifier as "resref.ext".
func (id Identifier) String() string {
	if id.ResType.IsInvalid() {
		return id.ResRef.String()
	}
	return id.ResRef.String() + "." + id.ResType.Extension()
}

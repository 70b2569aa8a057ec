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
	"fmt"
	"strings"

	"go.kotor.dev/korf/internal/kerr"
)

// Engine-compat limits. These mirror the constraints the original BioWare
// CResGFF class enforces; a GFF that violates them will not load in-engine
// even though it parses cleanly as a container.
const (
	MaxDepth            = 10
	MaxStructs          = 10000
	MaxFields           = 50000
	MaxFieldsPerStruct  = 1000
)

// Validate walks tree read-only and reports every engine-compat violation
// at once rather than failing on the first one.
func Validate(tree *Tree) error {
	v := &validator{}
	v.walk(tree.Root, 1)
	if v.structCount > MaxStructs {
		v.issues = append(v.issues, fmt.Sprintf("struct count %d exceeds limit %d", v.structCount, MaxStructs))
	}
	if v.fieldCount > MaxFields {
		v.issues = append(v.issues, fmt.Sprintf("field count %d exceeds limit %d", v.fieldCount, MaxFields))
	}
	return kerr.NewValidationError(v.issues)
}

type validator struct {
	issues      []string
	structCount int
	fieldCount  int
}

func (v *validator) walk(s *Struct, depth int) {
	v.structCount++
	if depth > MaxDepth {
		v.issues = append(v.issues, fmt.Sprintf("struct depth %d exceeds limit %d", depth, MaxDepth))
		return
	}
	if len(s.Fields()) > MaxFieldsPerStruct {
		v.issues = append(v.issues, fmt.Sprintf("struct has %d fields, exceeds limit %d", len(s.Fields()), MaxFieldsPerStruct))
	}

	seen := map[string]bool{}
	for _, f := range s.Fields() {
		v.fieldCount++
		if len(f.Label) > 16 {
			v.issues = append(v.issues, fmt.Sprintf("label %q exceeds 16 bytes", f.Label))
		}
		if strings.IndexByte(f.Label, 0) >= 0 {
			v.issues = append(v.issues, fmt.Sprintf("label %q contains an embedded NUL", f.Label))
		}
		if seen[f.Label] {
			v.issues = append(v.issues, fmt.Sprintf("duplicate label %q in struct", f.Label))
		}
		seen[f.Label] = true

		switch f.Type {
		case TypeStruct:
			v.walk(f.Value.(*Struct), depth+1)
		case TypeList:
			for _, child := range f.Value.([]*Struct) {
				v.walk(child, depth+1)
			}
		case TypeResRef:
			if s, ok := f.Value.(string); ok && len(s) > 16 {
				v.issues = append(v.issues, fmt.Sprintf("resref field %q value %q exceeds 16 bytes", f.Label, s))
			}
		}
	}
}

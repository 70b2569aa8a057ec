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

package mdl

import (
	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/resref"
)

// Reference is a node that mounts another model at runtime (a weapon
// socketed onto a creature's hand node, for instance).
type Reference struct {
	Model         resref.ResRef
	Reattachable  bool
}

func readReference(r *bread.Reader, n *Node) error {
	modelName, err := r.String(32)
	if err != nil {
		return err
	}
	model, _ := resref.New(trimNUL(modelName))
	reattachable, err := r.Uint32()
	if err != nil {
		return err
	}
	n.Reference = &Reference{Model: model, Reattachable: reattachable != 0}
	return nil
}

func writeReference(w *bread.Writer, n *Node) error {
	ref := n.Reference
	w.PaddedString(ref.Model.String(), 32)
	w.Uint32(boolU32(ref.Reattachable))
	return nil
}

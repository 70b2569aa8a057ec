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
// Package kmodule loads a single KotOR module: the set of RIM/MOD/ERF
// fragments an area ships as, merged into one resolvable view with typed
// accessors for the GFF assets every module carries (IFO, ARE, GIT, DLG,
// UT*) and the plaintext LYT layout.
package kmodule

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.kotor.dev/korf/erf"
	"go.kotor.dev/korf/gff"
	"go.kotor.dev/korf/lyt"
	"go.kotor.dev/korf/resid"
	"go.kotor.dev/korf/resref"
	"go.kotor.dev/korf/restype"
	"go.kotor.dev/korf/rim"
)

// fragment names a capsule this module root is assembled from, in
// ascending override precedence: a later fragment's entries win over an
// earlier one's for the same identifier, matching the engine's own load
// order (the "_s" static RIM patches the base RIM, a MOD overrides both
// if present, and a dialogue ERF layers on top of everything).
type fragment struct {
	suffix string
	kind   string // "rim" or "erf"
}

var fragmentOrder = []fragment{
	{suffix: ".rim", kind: "rim"},
	{suffix: "_s.rim", kind: "rim"},
	{suffix: ".mod", kind: "erf"},
	{suffix: "_dlg.erf", kind: "erf"},
}

// Module is the merged view over one module root's fragments.
type Module struct {
	Root      string
	Fragments []string // source paths actually found, in load order

	entries map[resid.Identifier][]byte
}

// Open collects every fragment of root found directly under
// installRoot/modules and merges their entries. A module missing some
// fragments (most modules have no _dlg.erf) is not an error; a module
// with none of the four is.
func Open(installRoot, root string) (*Module, error) {
	dir := filepath.Join(installRoot, "modules")
	m := &Module{Root: strings.ToLower(root), entries: make(map[resid.Identifier][]byte)}

	for _, frag := range fragmentOrder {
		path := filepath.Join(dir, root+frag.suffix)
		buf, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("kmodule: %s: %w", path, err)
		}
		var ids []resid.Identifier
		var datas [][]byte
		switch frag.kind {
		case "rim":
			a, err := rim.Read(buf)
			if err != nil {
				return nil, fmt.Errorf("kmodule: %s: %w", path, err)
			}
			for _, e := range a.Entries {
				ids = append(ids, e.ID)
				datas = append(datas, e.Data)
			}
		case "erf":
			a, err := erf.Read(buf)
			if err != nil {
				return nil, fmt.Errorf("kmodule: %s: %w", path, err)
			}
			for _, e := range a.Entries {
				ids = append(ids, e.ID)
				datas = append(datas, e.Data)
			}
		}
		for i, id := range ids {
			m.entries[id] = datas[i]
		}
		m.Fragments = append(m.Fragments, path)
	}

	if len(m.Fragments) == 0 {
		return nil, fmt.Errorf("kmodule: no fragments found for module %q under %s", root, dir)
	}
	return m, nil
}

// Resource returns the merged bytes for (resname, t), or false if no
// fragment carries it.
func (m *Module) Resource(resname string, t restype.Type) ([]byte, bool) {
	id := resid.New(resref.FromTruncated(resname), t)
	b, ok := m.entries[id]
	return b, ok
}

// GFF decodes the merged resource (resname, t) as a GFF tree. Use this
// directly for UT*/FAC/JRL/... subtypes that have no dedicated wrapper
// below.
func (m *Module) GFF(resname string, t restype.Type) (*gff.Tree, error) {
	b, ok := m.Resource(resname, t)
	if !ok {
		return nil, fmt.Errorf("kmodule: %s.%s not found in module %q", resname, t.Extension(), m.Root)
	}
	return gff.Read(b)
}

// IFO decodes the module's "module.ifo" header, the one GFF resource
// every module fragment set carries regardless of the module's own
// resref naming.
func (m *Module) IFO() (*gff.Tree, error) {
	return m.GFF("module", restype.IFO)
}

// ARE decodes the area resource named resname (commonly the module root).
func (m *Module) ARE(resname string) (*gff.Tree, error) {
	return m.GFF(resname, restype.ARE)
}

// GIT decodes the area's dynamic instance list (doors, placeables,
// creatures, waypoints, triggers, cameras) named resname.
func (m *Module) GIT(resname string) (*gff.Tree, error) {
	return m.GFF(resname, restype.GIT)
}

// DLG decodes a dialogue tree named resname.
func (m *Module) DLG(resname string) (*gff.Tree, error) {
	return m.GFF(resname, restype.DLG)
}

// Layout decodes the area's room/obstacle/door-hook layout named resname.
func (m *Module) Layout(resname string) (*lyt.Layout, error) {
	b, ok := m.Resource(resname, restype.LYT)
	if !ok {
		return nil, fmt.Errorf("kmodule: %s.lyt not found in module %q", resname, m.Root)
	}
	return lyt.Read(b)
}

// Visibility returns the raw plaintext bytes of the area's VIS file
// (room-to-room visibility graph); VIS has no dedicated decoder in this
// module, so callers that need it parsed consume the same line syntax as
// Layout by hand.
func (m *Module) Visibility(resname string) ([]byte, error) {
	b, ok := m.Resource(resname, restype.VIS)
	if !ok {
		return nil, fmt.Errorf("kmodule: %s.vis not found in module %q", resname, m.Root)
	}
	return b, nil
}

// Identifiers returns every identifier the merged module carries.
func (m *Module) Identifiers() []resid.Identifier {
	out := make([]resid.Identifier, 0, len(m.entries))
	for id := range m.entries {
		out = append(out, id)
	}
	return out
}

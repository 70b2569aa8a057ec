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

package kmodule

import (
	"os"
	"path/filepath"
	"testing"

	"go.kotor.dev/korf/gff"
	"go.kotor.dev/korf/resid"
	"go.kotor.dev/korf/resref"
	"go.kotor.dev/korf/restype"
	"go.kotor.dev/korf/rim"
)

func mustRef(t *testing.T, s string) resref.ResRef {
	t.Helper()
	r, err := resref.New(s)
	if err != nil {
		t.Fatalf("resref.New(%q): %v", s, err)
	}
	return r
}

func mustID(t *testing.T, s string, ty restype.Type) resid.Identifier {
	t.Helper()
	return resid.New(mustRef(t, s), ty)
}

// buildModule writes a danm13.rim carrying an IFO and a stale GIT, plus a
// danm13_s.rim whose GIT should win, into root/modules.
func buildModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "modules"), 0o755); err != nil {
		t.Fatal(err)
	}

	ifo := gff.NewStruct(0xFFFFFFFF)
	ifo.SetResRef("Mod_Area_list", "danm13")
	ifoBytes, err := gff.Write(&gff.Tree{FileType: "IFO ", Root: ifo})
	if err != nil {
		t.Fatalf("gff.Write(ifo): %v", err)
	}

	staleGIT := gff.NewStruct(0)
	staleGIT.SetUInt8("Version", 1)
	staleGITBytes, err := gff.Write(&gff.Tree{FileType: "GIT ", Root: staleGIT})
	if err != nil {
		t.Fatalf("gff.Write(stale git): %v", err)
	}

	freshGIT := gff.NewStruct(0)
	freshGIT.SetUInt8("Version", 2)
	freshGITBytes, err := gff.Write(&gff.Tree{FileType: "GIT ", Root: freshGIT})
	if err != nil {
		t.Fatalf("gff.Write(fresh git): %v", err)
	}

	base := &rim.Archive{Entries: []rim.Entry{
		{ID: mustID(t, "module", restype.IFO), Data: ifoBytes},
		{ID: mustID(t, "danm13", restype.GIT), Data: staleGITBytes},
	}}
	baseData, err := rim.Write(base)
	if err != nil {
		t.Fatalf("rim.Write(base): %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "modules", "danm13.rim"), baseData, 0o644); err != nil {
		t.Fatal(err)
	}

	static := &rim.Archive{Entries: []rim.Entry{
		{ID: mustID(t, "danm13", restype.GIT), Data: freshGITBytes},
	}}
	staticData, err := rim.Write(static)
	if err != nil {
		t.Fatalf("rim.Write(static): %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "modules", "danm13_s.rim"), staticData, 0o644); err != nil {
		t.Fatal(err)
	}

	return root
}

func TestOpenMergesFragmentsInPrecedenceOrder(t *testing.T) {
	root := buildModule(t)
	m, err := Open(root, "danm13")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(m.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d: %v", len(m.Fragments), m.Fragments)
	}

	git, err := m.GIT("danm13")
	if err != nil {
		t.Fatalf("GIT: %v", err)
	}
	f := git.Root.Get("Version")
	if f == nil || f.Value.(uint8) != 2 {
		t.Errorf("GIT did not pick up the _s.rim override: %+v", f)
	}
}

func TestIFOAccessor(t *testing.T) {
	root := buildModule(t)
	m, err := Open(root, "danm13")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ifo, err := m.IFO()
	if err != nil {
		t.Fatalf("IFO: %v", err)
	}
	f := ifo.Root.Get("Mod_Area_list")
	if f == nil || f.Value.(string) != "danm13" {
		t.Errorf("IFO.Mod_Area_list = %+v, want danm13", f)
	}
}

func TestOpenErrorsWithNoFragments(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(root, "nope"); err == nil {
		t.Fatal("expected an error for a module root with no fragments")
	}
}

func TestDlgMissingReturnsError(t *testing.T) {
	root := buildModule(t)
	m, err := Open(root, "danm13")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := m.DLG("nonexistent"); err == nil {
		t.Fatal("expected an error for a missing dialogue resource")
	}
}

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

package installation

import (
	"os"
	"path/filepath"
	"testing"

	"go.kotor.dev/korf/key"
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

// buildInstall writes a minimal synthetic install root: a chitin.key + one
// bif offering appearance.2da, an override folder that shadows it, and a
// modules/ RIM offering an area resource only the base game doesn't have.
func buildInstall(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	bif := &key.Bif{Resources: []key.ResourceRecord{
		{ID: 0, Data: []byte("chitin-2da"), Type: restype.TwoDA},
	}}
	bifData, err := key.WriteBif(bif)
	if err != nil {
		t.Fatalf("WriteBif: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "data", "2da.bif"), bifData, 0o644); err != nil {
		t.Fatal(err)
	}

	table := &key.Table{
		BifFiles: []key.BifEntry{{Filename: "data/2da.bif", FileSize: uint32(len(bifData))}},
		Entries: []key.KeyEntry{
			{ResRef: mustRef(t, "appearance"), Type: restype.TwoDA, ResourceID: 0},
		},
	}
	keyData, err := key.Write(table)
	if err != nil {
		t.Fatalf("key.Write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "chitin.key"), keyData, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(root, "override"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "override", "appearance.2da"), []byte("override-2da"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(root, "modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	archive := &rim.Archive{Entries: []rim.Entry{
		{ID: mustID(t, "danm13", restype.ARE), Data: []byte("are-bytes")},
	}}
	rimData, err := rim.Write(archive)
	if err != nil {
		t.Fatalf("rim.Write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "modules", "danm13.rim"), rimData, 0o644); err != nil {
		t.Fatal(err)
	}

	return root
}

func TestResourceOverrideBeatsChitin(t *testing.T) {
	root := buildInstall(t)
	inst, err := Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	res, ok := inst.Resource("appearance", restype.TwoDA, nil)
	if !ok {
		t.Fatal("expected a hit under the default order")
	}
	if string(res.Data) != "override-2da" {
		t.Errorf("default order returned %q, want override-2da", res.Data)
	}

	res, ok = inst.Resource("appearance", restype.TwoDA, []Category{CategoryChitin})
	if !ok {
		t.Fatal("expected a hit when restricted to CHITIN")
	}
	if string(res.Data) != "chitin-2da" {
		t.Errorf("CHITIN-only order returned %q, want chitin-2da", res.Data)
	}
}

func TestLocationsReturnsBothHits(t *testing.T) {
	root := buildInstall(t)
	inst, err := Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	locs := inst.Locations(mustID(t, "appearance", restype.TwoDA), nil)
	if len(locs) != 2 {
		t.Fatalf("expected 2 locations, got %d: %+v", len(locs), locs)
	}
	if locs[0].Category != CategoryOverride {
		t.Errorf("most-preferred location = %v, want OVERRIDE", locs[0].Category)
	}
}

func TestModuleCapsuleIndexed(t *testing.T) {
	root := buildInstall(t)
	inst, err := Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	res, ok := inst.Resource("danm13", restype.ARE, nil)
	if !ok {
		t.Fatal("expected danm13.are from the modules capsule")
	}
	if string(res.Data) != "are-bytes" {
		t.Errorf("got %q, want are-bytes", res.Data)
	}
}

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

package key

import (
	"bytes"
	"testing"

	"go.kotor.dev/korf/resid"
	"go.kotor.dev/korf/resref"
	"go.kotor.dev/korf/restype"
)

func mustRef(t *testing.T, s string) resref.ResRef {
	t.Helper()
	r, err := resref.New(s)
	if err != nil {
		t.Fatalf("resref.New(%q): %v", s, err)
	}
	return r
}

func sampleTable(t *testing.T) *Table {
	return &Table{
		BuildYear: 102,
		BuildDay:  45,
		BifFiles: []BifEntry{
			{Filename: "data/2da.bif", FileSize: 12345, Drives: 0},
			{Filename: "data/templates.bif", FileSize: 54321, Drives: 0},
		},
		Entries: []KeyEntry{
			{ResRef: mustRef(t, "appearance"), Type: restype.TwoDA, ResourceID: 0},
			{ResRef: mustRef(t, "g_w_iongren01"), Type: restype.UTI, ResourceID: 1<<BifIndexBits | 7},
		},
	}
}

func TestRoundTripBinary(t *testing.T) {
	tbl := sampleTable(t)
	data, err := Write(tbl)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.BifFiles) != 2 || got.BifFiles[1].Filename != "data/templates.bif" {
		t.Fatalf("unexpected bif table: %+v", got.BifFiles)
	}
	entry, ok := got.Lookup(resid.New(mustRef(t, "g_w_iongren01"), restype.UTI))
	if !ok {
		t.Fatal("expected to find g_w_iongren01.uti")
	}
	if entry.BifIndex() != 1 || entry.ResIndex() != 7 {
		t.Errorf("BifIndex/ResIndex = %d/%d, want 1/7", entry.BifIndex(), entry.ResIndex())
	}

	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("writer is not byte-stable")
	}
}

func TestBifRoundTrip(t *testing.T) {
	bif := &Bif{
		Resources: []ResourceRecord{
			{ID: 0, Data: []byte("2da-contents"), Type: restype.TwoDA},
			{ID: 1, Data: []byte("uti-contents-longer"), Type: restype.UTI},
		},
	}
	data, err := WriteBif(bif)
	if err != nil {
		t.Fatalf("WriteBif: %v", err)
	}
	got, err := ReadBif(data)
	if err != nil {
		t.Fatalf("ReadBif: %v", err)
	}
	if len(got.Resources) != 2 || string(got.Resources[1].Data) != "uti-contents-longer" {
		t.Fatalf("unexpected resources: %+v", got.Resources)
	}
}

func TestBzfRoundTrip(t *testing.T) {
	bif := &Bif{
		Compressed: true,
		Resources: []ResourceRecord{
			{ID: 0, Data: bytes.Repeat([]byte("abc"), 100), Type: restype.TwoDA},
		},
	}
	data, err := WriteBif(bif)
	if err != nil {
		t.Fatalf("WriteBif: %v", err)
	}
	got, err := ReadBif(data)
	if err != nil {
		t.Fatalf("ReadBif: %v", err)
	}
	if string(got.Resources[0].Data) != string(bif.Resources[0].Data) {
		t.Error("compressed payload did not round trip")
	}
}

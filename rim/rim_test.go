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

package rim

import (
	"bytes"
	"errors"
	"testing"

	"go.kotor.dev/korf/internal/kerr"
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

func sampleArchive(t *testing.T) *Archive {
	return &Archive{
		Entries: []Entry{
			{ID: resid.New(mustRef(t, "danm13"), restype.ARE), Data: []byte("are-bytes")},
			{ID: resid.New(mustRef(t, "danm13"), restype.GIT), Data: []byte("git-bytes-longer")},
		},
	}
}

func TestRoundTripBinary(t *testing.T) {
	a := sampleArchive(t)
	data, err := Write(a)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	if b, ok := got.Get(resid.New(mustRef(t, "danm13"), restype.GIT)); !ok || string(b) != "git-bytes-longer" {
		t.Errorf("Get(danm13.git) = %q, %v", b, ok)
	}

	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("writer is not byte-stable")
	}
}

func TestRejectsDuplicates(t *testing.T) {
	a := sampleArchive(t)
	a.Entries = append(a.Entries, a.Entries[0])
	_, err := Write(a)
	if err == nil {
		t.Fatal("expected duplicate-resource error")
	}
	var verr *kerr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Write error = %v, want a *kerr.ValidationError", err)
	}
}

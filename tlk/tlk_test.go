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

package tlk

import (
	"bytes"
	"testing"
)

func sampleTable() *Table {
	return &Table{
		Language: LanguageEnglish,
		Entries: []Entry{
			{Text: "Welcome to Taris.", HasText: true},
			{Text: "", HasText: false},
			{Text: "The Endar Spire has been boarded.", SoundResRef: "vo_boarded", HasText: true, HasSound: true},
		},
	}
}

func TestRoundTripBinary(t *testing.T) {
	table := sampleTable()
	data, err := Write(table)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Get(0) != "Welcome to Taris." {
		t.Errorf("Get(0) = %q", got.Get(0))
	}
	if got.Get(1) != "" {
		t.Errorf("expected empty string for absent entry, got %q", got.Get(1))
	}
	if got.Entries[2].SoundResRef != "vo_boarded" {
		t.Errorf("SoundResRef = %q", got.Entries[2].SoundResRef)
	}

	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("writer is not byte-stable across a read/write cycle")
	}
}

func TestGetOutOfRange(t *testing.T) {
	table := sampleTable()
	if got := table.Get(999); got != "" {
		t.Errorf("Get out of range = %q, want empty", got)
	}
}

func TestKoreanUsesUTF16(t *testing.T) {
	table := &Table{
		Language: LanguageKorean,
		Entries:  []Entry{{Text: "안녕", HasText: true}},
	}
	data, err := Write(table)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Get(0) != "안녕" {
		t.Errorf("Get(0) = %q", got.Get(0))
	}
}

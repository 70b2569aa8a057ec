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

package ssf

import (
	"bytes"
	"testing"
)

func sample26() *SoundSet {
	slots := make([]uint32, 26)
	for i := range slots {
		slots[i] = NoneRef
	}
	slots[0] = 100
	slots[15] = 205
	return &SoundSet{Slots: slots}
}

func TestRoundTripBinary(t *testing.T) {
	s := sample26()
	data, err := Write(s)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Slots) != 26 {
		t.Fatalf("expected 26 slots, got %d", len(got.Slots))
	}
	if got.Slots[0] != 100 || got.Slots[15] != 205 {
		t.Errorf("slot values not preserved: %v", got.Slots)
	}

	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("writer is not byte-stable")
	}
}

func TestRoundTripXML(t *testing.T) {
	s := sample26()
	out, err := WriteXML(s)
	if err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	got, err := ReadXML(out)
	if err != nil {
		t.Fatalf("ReadXML: %v", err)
	}
	if len(got.Slots) != len(s.Slots) {
		t.Fatalf("slot count mismatch: %d vs %d", len(got.Slots), len(s.Slots))
	}
	for i := range s.Slots {
		if got.Slots[i] != s.Slots[i] {
			t.Errorf("slot %d = %d, want %d", i, got.Slots[i], s.Slots[i])
		}
	}
}

func TestRejectsBadSlotCount(t *testing.T) {
	_, err := Write(&SoundSet{Slots: make([]uint32, 10)})
	if err == nil {
		t.Fatal("expected error for unsupported slot count")
	}
}

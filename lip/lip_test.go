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

package lip

import (
	"bytes"
	"testing"
)

func sampleAnimation() *Animation {
	return &Animation{
		Length: 2.5,
		Keyframes: []Keyframe{
			{Time: 0.0, Shape: 0},
			{Time: 0.3, Shape: 4},
			{Time: 0.9, Shape: 12},
			{Time: 2.5, Shape: 0},
		},
	}
}

func TestRoundTripBinary(t *testing.T) {
	a := sampleAnimation()
	data, err := Write(a)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Length != a.Length {
		t.Errorf("Length = %v, want %v", got.Length, a.Length)
	}
	if len(got.Keyframes) != len(a.Keyframes) {
		t.Fatalf("keyframe count = %d, want %d", len(got.Keyframes), len(a.Keyframes))
	}
	for i, k := range a.Keyframes {
		if got.Keyframes[i] != k {
			t.Errorf("keyframe %d = %+v, want %+v", i, got.Keyframes[i], k)
		}
	}

	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("writer is not byte-stable")
	}
}

func TestRejectsBadMagic(t *testing.T) {
	if _, err := Read([]byte("XXXXXXXX")); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

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

package lyt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.kotor.dev/korf/internal/bread"
)

func sampleLayout() *Layout {
	return &Layout{
		Rooms: []Placeable{
			{Model: "m01aa", Position: bread.Vector3{X: 0, Y: 0, Z: 0}},
			{Model: "m01ab", Position: bread.Vector3{X: 10, Y: 0, Z: 0}},
		},
		Tracks: []Placeable{
			{Model: "trk01", Position: bread.Vector3{X: 1, Y: 2, Z: 3}},
		},
		Obstacles: nil,
		DoorHooks: []DoorHook{
			{Room: "m01aa", Door: "door01", Position: bread.Vector3{X: 5, Y: 5, Z: 0}, Orientation: bread.Vector4{X: 0, Y: 0, Z: 1, W: 0}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	l := sampleLayout()
	data, err := Write(l)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(l, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteUsesCRLFAndIndent(t *testing.T) {
	data, err := Write(sampleLayout())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	s := string(data)
	if !containsCRLF(s) {
		t.Error("expected CRLF line endings")
	}
	if !strings.HasPrefix(s, "beginlayout\r\n   roomcount 2\r\n      m01aa 0 0 0\r\n") {
		t.Errorf("expected 3-space indent per nesting level, got %q", s)
	}
}

func containsCRLF(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '\r' && s[i+1] == '\n' {
			return true
		}
	}
	return false
}

func TestReadToleratesBareLF(t *testing.T) {
	l := sampleLayout()
	data, _ := Write(l)
	lf := []byte{}
	for i := 0; i < len(data); i++ {
		if data[i] == '\r' {
			continue
		}
		lf = append(lf, data[i])
	}
	got, err := Read(lf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Rooms) != 2 {
		t.Errorf("expected 2 rooms, got %d", len(got.Rooms))
	}
}

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

package dds

import (
	"bytes"
	"testing"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/tpc"
)

func TestRoundTripStandardDXT1(t *testing.T) {
	tex := &tpc.Texture{
		Width: 4, Height: 4, Format: tpc.FormatDXT1,
		Mipmaps: []tpc.Mipmap{{Width: 4, Height: 4, Data: bytes.Repeat([]byte{0xAB}, 8)}},
	}
	data, err := Write(tex)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !IsStandard(data) {
		t.Fatal("expected standard DDS magic")
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Format != tpc.FormatDXT1 {
		t.Fatalf("Format = %v, want DXT1", got.Format)
	}
	if !bytes.Equal(got.Mipmaps[0].Data, tex.Mipmaps[0].Data) {
		t.Errorf("mipmap data mismatch")
	}
}

func TestRoundTripStandardRGBA(t *testing.T) {
	tex := &tpc.Texture{
		Width: 2, Height: 2, Format: tpc.FormatRGBA,
		Mipmaps: []tpc.Mipmap{{Width: 2, Height: 2, Data: bytes.Repeat([]byte{1, 2, 3, 255}, 4)}},
	}
	data, err := Write(tex)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Format != tpc.FormatRGBA {
		t.Fatalf("Format = %v, want RGBA", got.Format)
	}
}

func TestReadCompactBioWareVariant(t *testing.T) {
	w := bread.NewWriter()
	w.Uint32(4)
	w.Uint32(4)
	w.Uint32(5) // dxt_version 5 == DXT5
	w.Uint32(16)
	w.Uint32(0)
	w.RawBytes(bytes.Repeat([]byte{0xCD}, 16))
	got, err := Read(w.Bytes())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if IsStandard(w.Bytes()) {
		t.Fatal("compact variant should not be detected as standard")
	}
	if got.Format != tpc.FormatDXT5 {
		t.Fatalf("Format = %v, want DXT5", got.Format)
	}
	if got.Width != 4 || got.Height != 4 {
		t.Errorf("dimensions = %dx%d, want 4x4", got.Width, got.Height)
	}
}

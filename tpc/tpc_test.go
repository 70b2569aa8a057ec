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

package tpc

import (
	"bytes"
	"testing"
)

func TestRoundTripRGB(t *testing.T) {
	tex := &Texture{
		Width: 2, Height: 2, Format: FormatRGB,
		Mipmaps: []Mipmap{{Width: 2, Height: 2, Data: bytes.Repeat([]byte{10, 20, 30}, 4)}},
		TXI:     "envmaptexture cm_test\n",
	}
	data, err := Write(tex)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Format != FormatRGB {
		t.Fatalf("Format = %v, want RGB", got.Format)
	}
	if len(got.Mipmaps) != 1 || !bytes.Equal(got.Mipmaps[0].Data, tex.Mipmaps[0].Data) {
		t.Fatalf("mipmap data mismatch")
	}
	if got.TXI != tex.TXI {
		t.Errorf("TXI = %q, want %q", got.TXI, tex.TXI)
	}
}

func TestClassifiesDXT1ByDataSize(t *testing.T) {
	// 8x8 DXT1 has 4 blocks of 8 bytes = 32 bytes, distinct from the
	// 8*8*3=192-byte uncompressed RGB size for the same dimensions.
	tex := &Texture{
		Width: 8, Height: 8, Format: FormatDXT1,
		Mipmaps: []Mipmap{{Width: 8, Height: 8, Data: make([]byte, 32)}},
	}
	data, err := Write(tex)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Format != FormatDXT1 {
		t.Fatalf("Format = %v, want DXT1", got.Format)
	}
}

func TestMipmapChainHalvesDimensions(t *testing.T) {
	tex := &Texture{
		Width: 4, Height: 4, Format: FormatRGBA,
		Mipmaps: []Mipmap{
			{Width: 4, Height: 4, Data: make([]byte, 4*4*4)},
			{Width: 2, Height: 2, Data: make([]byte, 2*2*4)},
			{Width: 1, Height: 1, Data: make([]byte, 1*1*4)},
		},
	}
	data, err := Write(tex)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Mipmaps) != 3 {
		t.Fatalf("got %d mip levels, want 3", len(got.Mipmaps))
	}
	if got.Mipmaps[2].Width != 1 || got.Mipmaps[2].Height != 1 {
		t.Errorf("last mip level = %dx%d, want 1x1", got.Mipmaps[2].Width, got.Mipmaps[2].Height)
	}
}

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

package tga

import (
	"testing"

	"go.kotor.dev/korf/tpc"
)

func TestRoundTripUncompressedRGB(t *testing.T) {
	tex := &tpc.Texture{
		Width: 2, Height: 2, Format: tpc.FormatRGB,
		Mipmaps: []tpc.Mipmap{{Width: 2, Height: 2, Data: []byte{
			255, 0, 0, 0, 255, 0,
			0, 0, 255, 255, 255, 255,
		}}},
	}
	data, err := Write(tex)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Width != 2 || got.Height != 2 {
		t.Fatalf("dimensions = %dx%d, want 2x2", got.Width, got.Height)
	}
	if string(got.Mipmaps[0].Data) != string(tex.Mipmaps[0].Data) {
		t.Errorf("pixel data mismatch: got %v want %v", got.Mipmaps[0].Data, tex.Mipmaps[0].Data)
	}
}

func TestRoundTripRGBA(t *testing.T) {
	tex := &tpc.Texture{
		Width: 1, Height: 1, Format: tpc.FormatRGBA,
		Mipmaps: []tpc.Mipmap{{Width: 1, Height: 1, Data: []byte{10, 20, 30, 128}}},
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
	if string(got.Mipmaps[0].Data) != string(tex.Mipmaps[0].Data) {
		t.Errorf("pixel data mismatch")
	}
}

func TestReadRLECompressed(t *testing.T) {
	data, err := Write(&tpc.Texture{
		Width: 2, Height: 1, Format: tpc.FormatRGB,
		Mipmaps: []tpc.Mipmap{{Width: 2, Height: 1, Data: []byte{1, 2, 3, 1, 2, 3}}},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Patch the image type byte to RLE and re-encode the pixel run as a
	// single repeated-pixel packet (count=2, packet type bit set).
	rle := append([]byte(nil), data[:headerSize]...)
	rle[2] = imageTypeRLETrueColor
	rle = append(rle, 0x80|1, 3, 2, 1) // BGR order on disk
	got, err := Read(rle)
	if err != nil {
		t.Fatalf("Read RLE: %v", err)
	}
	if got.Mipmaps[0].Data[0] != 1 || got.Mipmaps[0].Data[3] != 1 {
		t.Errorf("RLE-decoded pixels = %v, want both pixels (1, 2, 3)", got.Mipmaps[0].Data)
	}
}

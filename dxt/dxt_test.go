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

package dxt

import (
	"image/color"
	"testing"
)

func TestEncodeDecodeBlock1SolidColor(t *testing.T) {
	rgb := make([]byte, 4*4*3)
	for i := 0; i < 16; i++ {
		rgb[i*3], rgb[i*3+1], rgb[i*3+2] = 255, 0, 0
	}
	encoded := EncodeImage1(rgb, 4, 4)
	if len(encoded) != 8 {
		t.Fatalf("expected one 8-byte DXT1 block, got %d bytes", len(encoded))
	}
	decoded := DecodeImage1(encoded, 4, 4)
	for i := 0; i < 16; i++ {
		r, g, b := decoded[i*3], decoded[i*3+1], decoded[i*3+2]
		if absDiff(r, 255) > 1 || absDiff(g, 0) > 1 || absDiff(b, 0) > 1 {
			t.Fatalf("texel %d = (%d,%d,%d), want ~(255,0,0)", i, r, g, b)
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestEncodeDecodeIsIdempotentOnSecondPass(t *testing.T) {
	rgb := make([]byte, 4*4*3)
	for i := 0; i < 16; i++ {
		rgb[i*3], rgb[i*3+1], rgb[i*3+2] = byte(i * 16), byte(255 - i*16), 128
	}
	pass1 := DecodeImage1(EncodeImage1(rgb, 4, 4), 4, 4)
	pass2 := DecodeImage1(EncodeImage1(pass1, 4, 4), 4, 4)
	for i := range pass1 {
		if pass1[i] != pass2[i] {
			t.Fatalf("byte %d: pass1=%d pass2=%d, expected fixed point after first pass", i, pass1[i], pass2[i])
		}
	}
}

func TestMipSize(t *testing.T) {
	cases := []struct {
		w, h, block, want int
	}{
		{4, 4, 8, 8},
		{4, 4, 16, 16},
		{1, 1, 8, 8},
		{8, 8, 16, 64},
	}
	for _, c := range cases {
		if got := MipSize(c.w, c.h, c.block); got != c.want {
			t.Errorf("MipSize(%d,%d,%d) = %d, want %d", c.w, c.h, c.block, got, c.want)
		}
	}
}

func TestDecodeBlock3ExplicitAlpha(t *testing.T) {
	// 8 bytes of alpha: all nibbles set to 0xF (full alpha), then an
	// arbitrary RGB block.
	block := make([]byte, 16)
	for i := 0; i < 8; i++ {
		block[i] = 0xFF
	}
	var red [16]color.RGBA
	for i := range red {
		red[i] = color.RGBA{R: 255, A: 255}
	}
	rgbBlock := EncodeBlock1(red)
	copy(block[8:], rgbBlock[:])
	out := DecodeBlock3(block)
	for i, px := range out {
		if px.A != 255 {
			t.Fatalf("texel %d alpha = %d, want 255", i, px.A)
		}
	}
}

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
// Package dxt implements the S3TC block compression formats (DXT1, DXT3,
// DXT5) used by the engine's compressed textures: per-4x4-block RGB565
// endpoint interpolation with either 1-bit, explicit 4-bit, or
// interpolated 3-bit alpha.
package dxt

import "image/color"

// BlockBytes returns the per-block payload size for a DXT format: 8 for
// DXT1, 16 for DXT3 and DXT5.
func BlockBytes(format string) int {
	if format == "DXT1" {
		return 8
	}
	return 16
}

// MipSize returns the byte size of a w x h mipmap compressed with a block
// format whose blocks are blockBytes each: ceil(w/4) * ceil(h/4) * blockBytes,
// with a floor of one block so degenerate (0-sized) mips still occupy one.
func MipSize(w, h, blockBytes int) int {
	bw := (w + 3) / 4
	bh := (h + 3) / 4
	n := bw * bh
	if n < 1 {
		n = 1
	}
	return n * blockBytes
}

func rgb565(v uint16) (r, g, b uint8) {
	r = uint8((v>>11)&0x1f) << 3
	g = uint8((v>>5)&0x3f) << 2
	b = uint8(v&0x1f) << 3
	// Replicate the high bits into the low bits so full white/black survive
	// the round trip, matching the engine's own expansion.
	r |= r >> 5
	g |= g >> 6
	b |= b >> 5
	return
}

func packRGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// DecodeBlock1 decodes one 8-byte DXT1 block into 16 RGBA pixels in
// row-major order. When the two endpoints compare c0 <= c1, the fourth
// palette entry is transparent black (the 1-bit alpha case).
func DecodeBlock1(block []byte) [16]color.RGBA {
	c0 := uint16(block[0]) | uint16(block[1])<<8
	c1 := uint16(block[2]) | uint16(block[3])<<8
	r0, g0, b0 := rgb565(c0)
	r1, g1, b1 := rgb565(c1)

	var palette [4]color.RGBA
	palette[0] = color.RGBA{r0, g0, b0, 255}
	palette[1] = color.RGBA{r1, g1, b1, 255}
	if c0 > c1 {
		palette[2] = color.RGBA{
			R: uint8((2*uint16(r0) + uint16(r1)) / 3),
			G: uint8((2*uint16(g0) + uint16(g1)) / 3),
			B: uint8((2*uint16(b0) + uint16(b1)) / 3),
			A: 255,
		}
		palette[3] = color.RGBA{
			R: uint8((uint16(r0) + 2*uint16(r1)) / 3),
			G: uint8((uint16(g0) + 2*uint16(g1)) / 3),
			B: uint8((uint16(b0) + 2*uint16(b1)) / 3),
			A: 255,
		}
	} else {
		palette[2] = color.RGBA{
			R: uint8((uint16(r0) + uint16(r1)) / 2),
			G: uint8((uint16(g0) + uint16(g1)) / 2),
			B: uint8((uint16(b0) + uint16(b1)) / 2),
			A: 255,
		}
		palette[3] = color.RGBA{0, 0, 0, 0}
	}

	indices := uint32(block[4]) | uint32(block[5])<<8 | uint32(block[6])<<16 | uint32(block[7])<<24
	var out [16]color.RGBA
	for i := 0; i < 16; i++ {
		idx := (indices >> (uint(i) * 2)) & 0x3
		out[i] = palette[idx]
	}
	return out
}

// EncodeBlock1 compresses 16 RGBA texels (row-major) into one 8-byte DXT1
// block, using per-channel min/max as the two endpoints and nearest-color
// quantization for each texel.
func EncodeBlock1(texels [16]color.RGBA) [8]byte {
	var minR, minG, minB uint8 = 255, 255, 255
	var maxR, maxG, maxB uint8
	for _, t := range texels {
		if t.R < minR {
			minR = t.R
		}
		if t.G < minG {
			minG = t.G
		}
		if t.B < minB {
			minB = t.B
		}
		if t.R > maxR {
			maxR = t.R
		}
		if t.G > maxG {
			maxG = t.G
		}
		if t.B > maxB {
			maxB = t.B
		}
	}

	c0 := packRGB565(maxR, maxG, maxB)
	c1 := packRGB565(minR, minG, minB)
	if c0 == c1 {
		if c0 > 0 {
			c1--
		} else {
			c0++
		}
	}

	r0, g0, b0 := rgb565(c0)
	r1, g1, b1 := rgb565(c1)
	var palette [4][3]int
	palette[0] = [3]int{int(r0), int(g0), int(b0)}
	palette[1] = [3]int{int(r1), int(g1), int(b1)}
	palette[2] = [3]int{(2*int(r0) + int(r1)) / 3, (2*int(g0) + int(g1)) / 3, (2*int(b0) + int(b1)) / 3}
	palette[3] = [3]int{(int(r0) + 2*int(r1)) / 3, (int(g0) + 2*int(g1)) / 3, (int(b0) + 2*int(b1)) / 3}

	var indices uint32
	for i, t := range texels {
		best, bestDist := 0, 1<<30
		for p, c := range palette {
			dr := int(t.R) - c[0]
			dg := int(t.G) - c[1]
			db := int(t.B) - c[2]
			dist := dr*dr + dg*dg + db*db
			if dist < bestDist {
				best, bestDist = p, dist
			}
		}
		indices |= uint32(best) << (uint(i) * 2)
	}

	var out [8]byte
	out[0], out[1] = byte(c0), byte(c0>>8)
	out[2], out[3] = byte(c1), byte(c1>>8)
	out[4] = byte(indices)
	out[5] = byte(indices >> 8)
	out[6] = byte(indices >> 16)
	out[7] = byte(indices >> 24)
	return out
}

// DecodeBlock3 decodes one 16-byte DXT3 block: 8 bytes of explicit 4-bit
// alpha followed by a DXT1-style RGB block.
func DecodeBlock3(block []byte) [16]color.RGBA {
	out := DecodeBlock1(block[8:16])
	for i := 0; i < 16; i++ {
		nibble := block[i/2]
		var a uint8
		if i%2 == 0 {
			a = nibble & 0x0f
		} else {
			a = nibble >> 4
		}
		out[i].A = a<<4 | a
	}
	return out
}

// DecodeBlock5 decodes one 16-byte DXT5 block: two 8-bit alpha endpoints
// with a 48-bit 3-bit-per-texel interpolated selector, followed by a
// DXT1-style RGB block.
func DecodeBlock5(block []byte) [16]color.RGBA {
	out := DecodeBlock1(block[8:16])

	a0, a1 := block[0], block[1]
	var alphas [8]uint8
	alphas[0], alphas[1] = a0, a1
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			alphas[1+i] = uint8((uint16(7-i)*uint16(a0) + uint16(i)*uint16(a1)) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			alphas[1+i] = uint8((uint16(5-i)*uint16(a0) + uint16(i)*uint16(a1)) / 5)
		}
		alphas[6] = 0
		alphas[7] = 255
	}

	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(block[2+i]) << (uint(i) * 8)
	}
	for i := 0; i < 16; i++ {
		idx := (bits >> (uint(i) * 3)) & 0x7
		out[i].A = alphas[idx]
	}
	return out
}

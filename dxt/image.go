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

import "image/color"

// DecodeImage1 decompresses a full DXT1-encoded w x h image into tightly
// packed RGB bytes (3 per pixel), row-major. Partial blocks at the right
// or bottom edge are cropped to the image bounds.
func DecodeImage1(data []byte, w, h int) []byte {
	return decodeImage(data, w, h, 8, DecodeBlock1, false)
}

// DecodeImage3 decompresses a full DXT3-encoded w x h image into tightly
// packed RGBA bytes (4 per pixel), row-major.
func DecodeImage3(data []byte, w, h int) []byte {
	return decodeImage(data, w, h, 16, DecodeBlock3, true)
}

// DecodeImage5 decompresses a full DXT5-encoded w x h image into tightly
// packed RGBA bytes (4 per pixel), row-major.
func DecodeImage5(data []byte, w, h int) []byte {
	return decodeImage(data, w, h, 16, DecodeBlock5, true)
}

func decodeImage(data []byte, w, h, blockBytes int, decodeBlock func([]byte) [16]color.RGBA, alpha bool) []byte {
	bw := (w + 3) / 4
	bh := (h + 3) / 4
	stride := 3
	if alpha {
		stride = 4
	}
	out := make([]byte, w*h*stride)

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			offset := (by*bw + bx) * blockBytes
			if offset+blockBytes > len(data) {
				continue
			}
			texels := decodeBlock(data[offset : offset+blockBytes])
			for ty := 0; ty < 4; ty++ {
				y := by*4 + ty
				if y >= h {
					continue
				}
				for tx := 0; tx < 4; tx++ {
					x := bx*4 + tx
					if x >= w {
						continue
					}
					px := texels[ty*4+tx]
					o := (y*w + x) * stride
					out[o], out[o+1], out[o+2] = px.R, px.G, px.B
					if alpha {
						out[o+3] = px.A
					}
				}
			}
		}
	}
	return out
}

// EncodeImage1 compresses a tightly packed RGB image (3 bytes per pixel,
// row-major) into DXT1. Regions extending past the image bounds are
// padded by repeating the nearest in-bounds row/column, per the engine's
// own block encoder.
func EncodeImage1(rgb []byte, w, h int) []byte {
	bw := (w + 3) / 4
	bh := (h + 3) / 4
	out := make([]byte, 0, bw*bh*8)

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			var texels [16]color.RGBA
			for ty := 0; ty < 4; ty++ {
				y := clamp(by*4+ty, h-1)
				for tx := 0; tx < 4; tx++ {
					x := clamp(bx*4+tx, w-1)
					o := (y*w + x) * 3
					texels[ty*4+tx] = color.RGBA{R: rgb[o], G: rgb[o+1], B: rgb[o+2], A: 255}
				}
			}
			block := EncodeBlock1(texels)
			out = append(out, block[:]...)
		}
	}
	return out
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

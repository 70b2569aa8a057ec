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
// Package tga implements the subset of the Truevision TGA format the
// engine's tools actually emit: 24/32-bit uncompressed or run-length
// encoded true-color images, read into the same tpc.Texture shape every
// other texture codec in this module produces.
package tga

import (
	"fmt"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/tpc"
)

const (
	imageTypeUncompressedTrueColor = 2
	imageTypeRLETrueColor          = 10
)

const headerSize = 18

// Read parses a 24- or 32-bit uncompressed or RLE-encoded true-color TGA
// image into a tpc.Texture with a single RGB or RGBA mipmap.
func Read(buf []byte) (*tpc.Texture, error) {
	r := bread.NewReader(buf)
	idLength, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if _, err := r.Uint8(); err != nil { // color map type
		return nil, err
	}
	imageType, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if imageType != imageTypeUncompressedTrueColor && imageType != imageTypeRLETrueColor {
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	if _, err := r.Bytes(5); err != nil { // color map spec
		return nil, err
	}
	if _, err := r.Uint16(); err != nil { // x origin
		return nil, err
	}
	if _, err := r.Uint16(); err != nil { // y origin
		return nil, err
	}
	width, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	height, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	bpp, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	}
	if _, err := r.Uint8(); err != nil { // image descriptor
		return nil, err
	}
	if idLength > 0 {
		if _, err := r.Bytes(int(idLength)); err != nil {
			return nil, err
		}
	}

	w, h := int(width), int(height)
	stride := int(bpp) / 8
	pixelCount := w * h

	bgra := make([]byte, 0, pixelCount*stride)
	if imageType == imageTypeUncompressedTrueColor {
		data, err := r.Bytes(pixelCount * stride)
		if err != nil {
			return nil, fmt.Errorf("tga: reading pixel data: %w", err)
		}
		bgra = append(bgra, data...)
	} else {
		for len(bgra) < pixelCount*stride {
			packet, err := r.Uint8()
			if err != nil {
				return nil, err
			}
			count := int(packet&0x7f) + 1
			if packet&0x80 != 0 {
				px, err := r.Bytes(stride)
				if err != nil {
					return nil, err
				}
				for i := 0; i < count; i++ {
					bgra = append(bgra, px...)
				}
			} else {
				for i := 0; i < count; i++ {
					px, err := r.Bytes(stride)
					if err != nil {
						return nil, err
					}
					bgra = append(bgra, px...)
				}
			}
		}
	}

	// TGA scanlines are bottom-to-top by convention; the engine's own
	// readers flip to top-to-bottom on load.
	rgba := make([]byte, pixelCount*stride)
	for y := 0; y < h; y++ {
		srcRow := bgra[(h-1-y)*w*stride : (h-y)*w*stride]
		dstRow := rgba[y*w*stride : (y+1)*w*stride]
		for x := 0; x < w; x++ {
			s := srcRow[x*stride : x*stride+stride]
			d := dstRow[x*stride : x*stride+stride]
			d[0], d[1], d[2] = s[2], s[1], s[0]
			if stride == 4 {
				d[3] = s[3]
			}
		}
	}

	format := tpc.FormatRGB
	if stride == 4 {
		format = tpc.FormatRGBA
	}
	return &tpc.Texture{
		Width: w, Height: h, Format: format,
		Mipmaps: []tpc.Mipmap{{Width: w, Height: h, Data: rgba}},
	}, nil
}

// Write serializes t's base mipmap (RGB or RGBA) as an uncompressed
// true-color TGA image.
func Write(t *tpc.Texture) ([]byte, error) {
	if len(t.Mipmaps) == 0 {
		return nil, fmt.Errorf("tga: texture has no mipmaps")
	}
	stride := t.Format.BytesPerPixel()
	if stride != 3 && stride != 4 {
		return nil, fmt.Errorf("tga: format %v cannot be written as TGA", t.Format)
	}
	mip := t.Mipmaps[0]

	w := bread.NewWriter()
	w.Uint8(0)  // id length
	w.Uint8(0)  // color map type
	w.Uint8(imageTypeUncompressedTrueColor)
	for i := 0; i < 5; i++ {
		w.Uint8(0)
	}
	w.Uint16(0) // x origin
	w.Uint16(0) // y origin
	w.Uint16(uint16(mip.Width))
	w.Uint16(uint16(mip.Height))
	w.Uint8(uint8(stride * 8))
	w.Uint8(0) // image descriptor

	for y := mip.Height - 1; y >= 0; y-- {
		row := mip.Data[y*mip.Width*stride : (y+1)*mip.Width*stride]
		for x := 0; x < mip.Width; x++ {
			px := row[x*stride : x*stride+stride]
			w.Uint8(px[2])
			w.Uint8(px[1])
			w.Uint8(px[0])
			if stride == 4 {
				w.Uint8(px[3])
			}
		}
	}
	return w.Bytes(), nil
}

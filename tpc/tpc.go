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
// Package tpc implements BioWare's TPC texture container: a compact
// header, a mipmap chain (raw or DXT-compressed), and an optional TXI
// text trailer carrying render hints (wrap mode, detail/env maps).
package tpc

import (
	"fmt"

	"go.kotor.dev/korf/dxt"
	"go.kotor.dev/korf/internal/bread"
)

// Format is the decoded pixel layout of a TPC's mipmap chain.
type Format int

const (
	FormatGreyscale Format = iota
	FormatRGB
	FormatRGBA
	FormatDXT1
	FormatDXT5
)

func (f Format) String() string {
	switch f {
	case FormatGreyscale:
		return "Greyscale"
	case FormatRGB:
		return "RGB"
	case FormatRGBA:
		return "RGBA"
	case FormatDXT1:
		return "DXT1"
	case FormatDXT5:
		return "DXT5"
	default:
		return "Unknown"
	}
}

// BytesPerPixel returns the uncompressed sample stride for f; DXT formats
// have no meaningful per-pixel stride and return 0.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatGreyscale:
		return 1
	case FormatRGB:
		return 3
	case FormatRGBA:
		return 4
	default:
		return 0
	}
}

// Mipmap is one level of a texture's mipmap chain: dimensions and the raw
// (possibly DXT-compressed) payload in Format's layout.
type Mipmap struct {
	Width, Height int
	Data          []byte
}

// Texture is a fully decoded TPC document.
type Texture struct {
	Width, Height int
	Format        Format
	Mipmaps       []Mipmap
	TXI           string
}

const headerSize = 128

// encoding byte values: differentiation between the compressed and
// uncompressed forms that share an encoding byte happens via data_size,
// per the engine's own loader.
const (
	encodingGreyscale = 1
	encodingRGB       = 2
	encodingRGBA      = 4
)

// Read parses a binary TPC document.
func Read(buf []byte) (*Texture, error) {
	r := bread.NewReader(buf)
	dataSize, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("tpc: reading data size: %w", err)
	}
	if _, err := r.Single(); err != nil { // unknown/min-brightness float
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
	encoding, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	mipCount, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	r.SetPosition(headerSize)

	w, h := int(width), int(height)
	format, mip0Size := classify(encoding, int(dataSize), w, h)

	levels := int(mipCount)
	if levels == 0 {
		levels = 1
	}

	t := &Texture{Width: w, Height: h, Format: format}
	mw, mh := w, h
	for i := 0; i < levels; i++ {
		size := mipSizeForFormat(format, mw, mh)
		if i == 0 {
			size = mip0Size
		}
		data, err := r.Bytes(size)
		if err != nil {
			return nil, fmt.Errorf("tpc: mipmap %d: %w", i, err)
		}
		t.Mipmaps = append(t.Mipmaps, Mipmap{Width: mw, Height: mh, Data: append([]byte(nil), data...)})
		if mw == 1 && mh == 1 {
			break
		}
		if mw > 1 {
			mw /= 2
		}
		if mh > 1 {
			mh /= 2
		}
	}

	if remaining, err := r.Bytes(int(r.Remaining())); err == nil && len(remaining) > 0 {
		t.TXI = string(remaining)
	}

	return t, nil
}

func classify(encoding uint8, dataSize, w, h int) (Format, int) {
	switch encoding {
	case encodingGreyscale:
		return FormatGreyscale, w * h
	case encodingRGB:
		compressed := dxt.MipSize(w, h, 8)
		uncompressed := w * h * 3
		if dataSize == compressed && compressed != uncompressed {
			return FormatDXT1, compressed
		}
		return FormatRGB, uncompressed
	case encodingRGBA:
		compressed := dxt.MipSize(w, h, 16)
		uncompressed := w * h * 4
		if dataSize == compressed && compressed != uncompressed {
			return FormatDXT5, compressed
		}
		return FormatRGBA, uncompressed
	default:
		return FormatRGBA, w * h * 4
	}
}

func mipSizeForFormat(f Format, w, h int) int {
	switch f {
	case FormatDXT1:
		return dxt.MipSize(w, h, 8)
	case FormatDXT5:
		return dxt.MipSize(w, h, 16)
	case FormatGreyscale:
		return w * h
	case FormatRGB:
		return w * h * 3
	default:
		return w * h * 4
	}
}

func encodingFor(f Format) uint8 {
	switch f {
	case FormatGreyscale:
		return encodingGreyscale
	case FormatRGB, FormatDXT1:
		return encodingRGB
	default:
		return encodingRGBA
	}
}

// Write serializes t to the binary TPC layout, appending TXI verbatim as
// a trailing text blob if set.
func Write(t *Texture) ([]byte, error) {
	if len(t.Mipmaps) == 0 {
		return nil, fmt.Errorf("tpc: texture has no mipmaps")
	}
	w := bread.NewWriter()
	w.Uint32(uint32(len(t.Mipmaps[0].Data)))
	w.Single(0)
	w.Uint16(uint16(t.Width))
	w.Uint16(uint16(t.Height))
	w.Uint8(encodingFor(t.Format))
	w.Uint8(uint8(len(t.Mipmaps)))
	for i := w.Len(); i < headerSize; i++ {
		w.Uint8(0)
	}
	for _, m := range t.Mipmaps {
		w.RawBytes(m.Data)
	}
	if t.TXI != "" {
		w.String(t.TXI)
	}
	return w.Bytes(), nil
}

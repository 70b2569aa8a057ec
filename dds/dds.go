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
// Package dds implements Microsoft's DDS texture container: the
// standard 128-byte header with DDPF pixel-format flags, plus the
// compact 20-byte BioWare variant used for some KotOR texture packs.
package dds

import (
	"fmt"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
	"go.kotor.dev/korf/tpc"
)

const (
	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPitch       = 0x8
	ddsdPixelFormat = 0x1000
	ddsdMipmapCount = 0x20000
	ddsdLinearSize  = 0x80000

	ddscapsTexture = 0x1000
	ddscapsMipmap  = 0x400000
	ddscapsComplex = 0x8

	ddpfAlphaPixels = 0x1
	ddpfFourCC      = 0x4
	ddpfRGB         = 0x40
)

const standardMagic = "DDS "
const standardHeaderSize = 128

// IsStandard reports whether data begins with the Microsoft "DDS "
// magic; data without it is assumed to be the BioWare compact variant.
func IsStandard(data []byte) bool {
	return len(data) >= 4 && string(data[0:4]) == standardMagic
}

// Read parses a DDS document, standard or BioWare-compact, into a
// tpc.Texture so every texture format (TPC, DDS, TGA) shares one
// in-memory representation.
func Read(buf []byte) (*tpc.Texture, error) {
	if IsStandard(buf) {
		return readStandard(buf)
	}
	return readCompact(buf)
}

func readStandard(buf []byte) (*tpc.Texture, error) {
	r := bread.NewReader(buf)
	magic, err := r.String(4)
	if err != nil {
		return nil, err
	}
	if magic != standardMagic {
		return nil, fmt.Errorf("dds: bad magic %q: %w", magic, kerr.ErrBadMagic)
	}
	r.SetPosition(12)
	height, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	width, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	r.SetPosition(28)
	mipCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	r.SetPosition(80) // pixel-format struct starts at 76 with its own size field
	pfFlags, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	fourCC, err := r.String(4)
	if err != nil {
		return nil, err
	}
	bitCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	rMask, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	gMask, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	bMask, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	aMask, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	_ = rMask
	_ = gMask
	_ = bMask
	_ = aMask
	r.SetPosition(standardHeaderSize)

	w, h := int(width), int(height)
	levels := int(mipCount)
	if levels == 0 {
		levels = 1
	}

	var format tpc.Format
	var blockBytes int
	switch {
	case pfFlags&ddpfFourCC != 0 && fourCC == "DXT1":
		format, blockBytes = tpc.FormatDXT1, 8
	case pfFlags&ddpfFourCC != 0 && (fourCC == "DXT3" || fourCC == "DXT5"):
		format, blockBytes = tpc.FormatDXT5, 16
	case pfFlags&ddpfAlphaPixels != 0 && bitCount == 32:
		format = tpc.FormatRGBA
	default:
		format = tpc.FormatRGB
	}

	t := &tpc.Texture{Width: w, Height: h, Format: format}
	mw, mh := w, h
	for i := 0; i < levels; i++ {
		var size int
		if blockBytes > 0 {
			size = mipSizeBlocks(mw, mh, blockBytes)
		} else {
			size = mw * mh * format.BytesPerPixel()
		}
		data, err := r.Bytes(size)
		if err != nil {
			return nil, fmt.Errorf("dds: mipmap %d: %w", i, err)
		}
		t.Mipmaps = append(t.Mipmaps, tpc.Mipmap{Width: mw, Height: mh, Data: append([]byte(nil), data...)})
		if mw > 1 {
			mw /= 2
		}
		if mh > 1 {
			mh /= 2
		}
	}
	return t, nil
}

func mipSizeBlocks(w, h, blockBytes int) int {
	bw := (w + 3) / 4
	bh := (h + 3) / 4
	n := bw * bh
	if n < 1 {
		n = 1
	}
	return n * blockBytes
}

// readCompact parses the BioWare compact variant: 5 little-endian u32s
// (width, height, dxt_version, data_size, reserved) followed by the mip
// chain, each level's size halving with the dimensions.
func readCompact(buf []byte) (*tpc.Texture, error) {
	r := bread.NewReader(buf)
	width, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	height, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	dxtVersion, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	mip0Size, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if _, err := r.Uint32(); err != nil { // reserved
		return nil, err
	}

	var format tpc.Format
	var blockBytes int
	switch dxtVersion {
	case 1:
		format, blockBytes = tpc.FormatDXT1, 8
	case 5:
		format, blockBytes = tpc.FormatDXT5, 16
	default:
		return nil, fmt.Errorf("dds: unrecognized compact dxt_version %d", dxtVersion)
	}

	w, h := int(width), int(height)
	t := &tpc.Texture{Width: w, Height: h, Format: format}
	mw, mh := w, h
	size := int(mip0Size)
	for {
		data, err := r.Bytes(size)
		if err != nil {
			break
		}
		t.Mipmaps = append(t.Mipmaps, tpc.Mipmap{Width: mw, Height: mh, Data: append([]byte(nil), data...)})
		if mw == 1 && mh == 1 {
			break
		}
		if mw > 1 {
			mw /= 2
		}
		if mh > 1 {
			mh /= 2
		}
		size = mipSizeBlocks(mw, mh, blockBytes)
		if r.Remaining() <= 0 {
			break
		}
	}
	return t, nil
}

// Write serializes t as a standard Microsoft DDS document; the BioWare
// compact variant is read-only (only ever produced by the original
// engine's own tools).
func Write(t *tpc.Texture) ([]byte, error) {
	if len(t.Mipmaps) == 0 {
		return nil, fmt.Errorf("dds: texture has no mipmaps")
	}

	var fourCC string
	var blockBytes int
	pfFlags := uint32(ddpfFourCC)
	bitCount := uint32(0)
	var rMask, gMask, bMask, aMask uint32

	switch t.Format {
	case tpc.FormatDXT1:
		fourCC, blockBytes = "DXT1", 8
	case tpc.FormatDXT5:
		fourCC, blockBytes = "DXT5", 16
	case tpc.FormatRGBA:
		pfFlags = ddpfRGB | ddpfAlphaPixels
		bitCount = 32
		rMask, gMask, bMask, aMask = 0x00FF0000, 0x0000FF00, 0x000000FF, 0xFF000000
	case tpc.FormatRGB:
		pfFlags = ddpfRGB
		bitCount = 24
		rMask, gMask, bMask = 0x00FF0000, 0x0000FF00, 0x000000FF
	default:
		return nil, fmt.Errorf("dds: format %v has no standard DDS encoding", t.Format)
	}

	headerFlags := uint32(ddsdCaps | ddsdHeight | ddsdWidth | ddsdPixelFormat)
	var pitchOrLinear uint32
	if blockBytes > 0 {
		headerFlags |= ddsdLinearSize
		pitchOrLinear = uint32(mipSizeBlocks(t.Width, t.Height, blockBytes))
	} else {
		headerFlags |= ddsdPitch
		pitchOrLinear = uint32(t.Width * int(bitCount) / 8)
	}
	caps1 := uint32(ddscapsTexture)
	if len(t.Mipmaps) > 1 {
		headerFlags |= ddsdMipmapCount
		caps1 |= ddscapsMipmap | ddscapsComplex
	}

	w := bread.NewWriter()
	w.String(standardMagic)
	w.Uint32(124)
	w.Uint32(headerFlags)
	w.Uint32(uint32(t.Height))
	w.Uint32(uint32(t.Width))
	w.Uint32(pitchOrLinear)
	w.Uint32(0) // depth
	w.Uint32(uint32(len(t.Mipmaps)))
	for i := 0; i < 44; i++ {
		w.Uint8(0)
	}
	w.Uint32(32) // pixel format struct size
	w.Uint32(pfFlags)
	if fourCC != "" {
		w.String(fourCC)
	} else {
		w.Uint32(0)
	}
	w.Uint32(bitCount)
	w.Uint32(rMask)
	w.Uint32(gMask)
	w.Uint32(bMask)
	w.Uint32(aMask)
	w.Uint32(caps1)
	w.Uint32(0) // caps2
	for i := 0; i < 12; i++ {
		w.Uint8(0)
	}

	for _, m := range t.Mipmaps {
		w.RawBytes(m.Data)
	}
	return w.Bytes(), nil
}

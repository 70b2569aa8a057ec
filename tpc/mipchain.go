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
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var errUncompressedOnly = errors.New("tpc: GenerateMipChain requires an uncompressed base level")

// GenerateMipChain takes a level-0 Mipmap in one of the uncompressed
// formats (Greyscale, RGB, RGBA) and box-filters it down to a full chain
// ending at 1x1, the same chain length a TPC's mip_count field expects.
// DXT1/DXT5 levels are compressed separately by the caller after this
// runs on the uncompressed source; GenerateMipChain itself never touches
// compressed data.
func GenerateMipChain(base Mipmap, format Format) ([]Mipmap, error) {
	if format == FormatDXT1 || format == FormatDXT5 {
		return nil, errUncompressedOnly
	}

	img := toNRGBA(base, format)
	chain := []Mipmap{base}
	w, h := base.Width, base.Height
	for w > 1 || h > 1 {
		nw, nh := w, h
		if nw > 1 {
			nw /= 2
		}
		if nh > 1 {
			nh /= 2
		}
		dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		chain = append(chain, Mipmap{Width: nw, Height: nh, Data: fromNRGBA(dst, format)})
		img, w, h = dst, nw, nh
	}
	return chain, nil
}

func toNRGBA(m Mipmap, format Format) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	switch format {
	case FormatGreyscale:
		for i, v := range m.Data {
			img.SetNRGBA(i%m.Width, i/m.Width, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	case FormatRGB:
		for i := 0; i < m.Width*m.Height; i++ {
			o := i * 3
			img.SetNRGBA(i%m.Width, i/m.Width, color.NRGBA{R: m.Data[o], G: m.Data[o+1], B: m.Data[o+2], A: 255})
		}
	default: // FormatRGBA
		for i := 0; i < m.Width*m.Height; i++ {
			o := i * 4
			img.SetNRGBA(i%m.Width, i/m.Width, color.NRGBA{R: m.Data[o], G: m.Data[o+1], B: m.Data[o+2], A: m.Data[o+3]})
		}
	}
	return img
}

func fromNRGBA(img *image.NRGBA, format Format) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch format {
	case FormatGreyscale:
		out := make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out[y*w+x] = img.NRGBAAt(x, y).R
			}
		}
		return out
	case FormatRGB:
		out := make([]byte, w*h*3)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := img.NRGBAAt(x, y)
				o := (y*w + x) * 3
				out[o], out[o+1], out[o+2] = c.R, c.G, c.B
			}
		}
		return out
	default: // FormatRGBA
		out := make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := img.NRGBAAt(x, y)
				o := (y*w + x) * 4
				out[o], out[o+1], out[o+2], out[o+3] = c.R, c.G, c.B, c.A
			}
		}
		return out
	}
}

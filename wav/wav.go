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
// Package wav implements KotOR's WAV obfuscation headers: the junk bytes
// the engine prepends to VO and SFX audio so standard players can't open
// them directly.
package wav

import "encoding/binary"

// Kind selects which obfuscation header Obfuscate prepends.
type Kind int

const (
	KindSFX Kind = iota
	KindVO
)

const sfxHeaderSize = 470
const voHeaderSize8 = 8
const voHeaderSize20 = 20

const sfxMagic0 = 0xFFFFFFFF
const sfxMagicLegacy = 3294688255
const voMagic0 = 1179011410
const voMagic1 = 50
const voMagic16 = 18

// Deobfuscate strips a KotOR VO or SFX header from data, returning a
// standard RIFF/WAVE (or MP3-in-WAVE) stream. Data with no recognized
// header is returned unchanged.
func Deobfuscate(data []byte) []byte {
	if len(data) < 20 {
		return data
	}
	b0x4 := binary.LittleEndian.Uint32(data[0:4])
	b4x8 := binary.LittleEndian.Uint32(data[4:8])
	b16x20 := binary.LittleEndian.Uint32(data[16:20])

	if b0x4 == voMagic0 && b4x8 == voMagic1 && b16x20 == voMagic16 {
		if string(data[8:12]) == "RIFF" {
			return data[voHeaderSize8:]
		}
		return data[voHeaderSize20:]
	}

	if b0x4 == sfxMagic0 || b0x4 == sfxMagicLegacy {
		if len(data) < sfxHeaderSize {
			return data
		}
		return data[sfxHeaderSize:]
	}

	return data
}

// Obfuscate prepends the obfuscation header matching kind, yielding the
// byte layout the engine expects an on-disk WAV resource to have.
func Obfuscate(data []byte, kind Kind) []byte {
	switch kind {
	case KindSFX:
		header := make([]byte, sfxHeaderSize)
		copy(header, []byte{
			0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xf3,
			0x60, 0xc4, 0x00, 0x00,
			0x00, 0x03, 0x48, 0x00,
			0x00, 0x00, 0x00, 0x4c,
			0x41, 0x4d, 0x45, 0x33,
			0x2e, 0x39, 0x33, 0x55,
		})
		for i := 28; i < sfxHeaderSize; i++ {
			header[i] = 0x55
		}
		return append(header, data...)
	case KindVO:
		header := make([]byte, voHeaderSize20)
		binary.LittleEndian.PutUint32(header[0:4], voMagic0)
		binary.LittleEndian.PutUint32(header[4:8], voMagic1)
		binary.LittleEndian.PutUint32(header[16:20], voMagic16)
		return append(header, data...)
	default:
		return data
	}
}

// IsObfuscated reports whether data begins with a recognized VO or SFX
// header.
func IsObfuscated(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	b0x4 := binary.LittleEndian.Uint32(data[0:4])
	if b0x4 == sfxMagic0 || b0x4 == sfxMagicLegacy {
		return true
	}
	if len(data) < 20 {
		return false
	}
	b4x8 := binary.LittleEndian.Uint32(data[4:8])
	b16x20 := binary.LittleEndian.Uint32(data[16:20])
	return b0x4 == voMagic0 && b4x8 == voMagic1 && b16x20 == voMagic16
}

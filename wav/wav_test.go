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

package wav

import (
	"bytes"
	"testing"
)

func TestSFXRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("RIFFdata"), 10)
	obf := Obfuscate(payload, KindSFX)
	if !IsObfuscated(obf) {
		t.Fatal("expected obfuscated SFX data to be detected")
	}
	got := Deobfuscate(obf)
	if !bytes.Equal(got, payload) {
		t.Errorf("Deobfuscate(Obfuscate(x, SFX)) != x")
	}
}

func TestVORoundTrip(t *testing.T) {
	payload := []byte("RIFF....WAVEfmt more-bytes-here")
	obf := Obfuscate(payload, KindVO)
	if !IsObfuscated(obf) {
		t.Fatal("expected obfuscated VO data to be detected")
	}
	got := Deobfuscate(obf)
	if !bytes.Equal(got, payload) {
		t.Errorf("Deobfuscate(Obfuscate(x, VO)) != x, got %q", got)
	}
}

func TestDeobfuscateLegacyEightByteForm(t *testing.T) {
	payload := []byte("RIFFrest-of-the-wave-data")
	header := make([]byte, 20)
	header[0], header[1], header[2], header[3] = 0x52, 0x49, 0x4e, 0x46
	data := append(header, payload...)
	// Force the legacy-form detection: bytes 8:12 == "RIFF" selects the 8-byte
	// form even though the payload at 20:24 also starts with "RIFF".
	copy(data[0:4], []byte{0x00, 0x00, 0x00, 0x00})
	data[0], data[1], data[2], data[3] = byteOf(1179011410, 0), byteOf(1179011410, 1), byteOf(1179011410, 2), byteOf(1179011410, 3)
	copy(data[4:8], []byte{50, 0, 0, 0})
	copy(data[16:20], []byte{18, 0, 0, 0})
	copy(data[8:12], []byte("RIFF"))
	got := Deobfuscate(data)
	if len(got) != len(data)-8 {
		t.Errorf("expected 8-byte strip, got length %d want %d", len(got), len(data)-8)
	}
}

func byteOf(v uint32, i int) byte {
	return byte(v >> (8 * i))
}

func TestUnrecognizedDataPassesThrough(t *testing.T) {
	data := []byte("plain data, no header")
	if got := Deobfuscate(data); !bytes.Equal(got, data) {
		t.Error("expected unrecognized data to pass through unchanged")
	}
}

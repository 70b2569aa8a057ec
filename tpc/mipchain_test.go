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

import "testing"

func TestGenerateMipChainReachesOnePixel(t *testing.T) {
	base := Mipmap{Width: 8, Height: 4, Data: make([]byte, 8*4*4)}
	for i := range base.Data {
		base.Data[i] = 200
	}

	chain, err := GenerateMipChain(base, FormatRGBA)
	if err != nil {
		t.Fatalf("GenerateMipChain: %v", err)
	}
	if len(chain) != 4 { // 8x4 -> 4x2 -> 2x1 -> 1x1
		t.Fatalf("got %d levels, want 4: %+v", len(chain), chain)
	}
	last := chain[len(chain)-1]
	if last.Width != 1 || last.Height != 1 {
		t.Errorf("last level = %dx%d, want 1x1", last.Width, last.Height)
	}
	if len(last.Data) != 4 {
		t.Errorf("last level data len = %d, want 4", len(last.Data))
	}
}

func TestGenerateMipChainRejectsCompressedInput(t *testing.T) {
	base := Mipmap{Width: 4, Height: 4, Data: make([]byte, dxtMipSizeForTest(4, 4))}
	if _, err := GenerateMipChain(base, FormatDXT1); err == nil {
		t.Fatal("expected an error for a compressed base level")
	}
}

func dxtMipSizeForTest(w, h int) int {
	return mipSizeForFormat(FormatDXT1, w, h)
}

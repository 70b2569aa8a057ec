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

package gff

import "math"

func bitsToFloat32(v uint32) float32 { return math.Float32frombits(v) }
func bitsToFloat64(v uint64) float64 { return math.Float64frombits(v) }
func float32ToBits(v float32) uint32 { return math.Float32bits(v) }
func float64ToBits(v float64) uint64 { return math.Float64bits(v) }

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

package bread

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer accumulates a little-endian binary stream in memory. Every format
// writer in this module builds its output through a Writer and only touches
// the filesystem once, at the very end, when the caller asks for the bytes.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Bytes returns the accumulated bytes. The returned slice aliases the
// Writer's internal buffer and must not be retained past further writes.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// RawBytes appends b verbatim.
func (w *Writer) RawBytes(b []byte) { w.buf.Write(b) }

// String appends s verbatim, with no length prefix or terminator.
func (w *Writer) String(s string) { w.buf.WriteString(s) }

// PaddedString writes s followed by zero bytes until the field is exactly n
// bytes long. It is the caller's responsibility to ensure len(s) <= n.
func (w *Writer) PaddedString(s string, n int) {
	w.buf.WriteString(s)
	for i := len(s); i < n; i++ {
		w.buf.WriteByte(0)
	}
}

// Uint8 appends an unsigned 8-bit integer.
func (w *Writer) Uint8(v uint8) { w.buf.WriteByte(v) }

// Int8 appends a signed 8-bit integer.
func (w *Writer) Int8(v int8) { w.buf.WriteByte(byte(v)) }

// Uint16 appends a little-endian unsigned 16-bit integer.
func (w *Writer) Uint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// Int16 appends a little-endian signed 16-bit integer.
func (w *Writer) Int16(v int16) { w.Uint16(uint16(v)) }

// Uint32 appends a little-endian unsigned 32-bit integer.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// Int32 appends a little-endian signed 32-bit integer.
func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

// Uint64 appends a little-endian unsigned 64-bit integer.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// Int64 appends a little-endian signed 64-bit integer.
func (w *Writer) Int64(v int64) { w.Uint64(uint64(v)) }

// Single appends a little-endian IEEE-754 32-bit float.
func (w *Writer) Single(v float32) { w.Uint32(math.Float32bits(v)) }

// Double appends a little-endian IEEE-754 64-bit float.
func (w *Writer) Double(v float64) { w.Uint64(math.Float64bits(v)) }

// Vector3 appends three consecutive Singles.
func (w *Writer) Vector3(v Vector3) {
	w.Single(v.X)
	w.Single(v.Y)
	w.Single(v.Z)
}

// Vector4 appends four consecutive Singles.
func (w *Writer) Vector4(v Vector4) {
	w.Single(v.X)
	w.Single(v.Y)
	w.Single(v.Z)
	w.Single(v.W)
}

// Color appends three consecutive Singles as an RGB color.
func (w *Writer) Color(c Color) {
	w.Vector3(Vector3{c.R, c.G, c.B})
}

// PatchUint32 overwrites the 4 bytes at offset with v, little-endian. Used
// by writers that must back-patch a size or offset field once the final
// layout is known.
func (w *Writer) PatchUint32(offset int, v uint32) {
	b := w.buf.Bytes()
	binary.LittleEndian.PutUint32(b[offset:offset+4], v)
}

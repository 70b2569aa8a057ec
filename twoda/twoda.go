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
// Package twoda implements the 2DA tabular format: named columns, numbered
// rows, and an optional verbatim row-label column.
package twoda

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
)

// Table is a named-column, numbered-row 2DA document. An empty cell is
// represented as the empty string; there is no way to distinguish "empty"
// from "absent" beyond that, matching the on-disk format.
type Table struct {
	Columns   []string
	RowLabels []string
	Cells     [][]string // Cells[row][col]
}

// Get returns the value of (row, column), or "" if out of range.
func (t *Table) Get(row int, column string) string {
	ci := t.columnIndex(column)
	if ci < 0 || row < 0 || row >= len(t.Cells) {
		return ""
	}
	return t.Cells[row][ci]
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.Cells) }

const magic = "2DA V2.b"

// Read parses a binary 2DA document.
func Read(buf []byte) (*Table, error) {
	r := bread.NewReader(buf)
	header, err := r.String(8)
	if err != nil {
		return nil, fmt.Errorf("twoda: reading header: %w", err)
	}
	if header != magic {
		return nil, fmt.Errorf("twoda: bad magic %q: %w", header, kerr.ErrBadMagic)
	}

	rowCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("twoda: reading row count: %w", err)
	}
	columnCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("twoda: reading column count: %w", err)
	}

	columns := make([]string, columnCount)
	for i := range columns {
		name, err := r.TerminatedString(0, int(r.Remaining()))
		if err != nil {
			return nil, fmt.Errorf("twoda: reading column %d: %w", i, err)
		}
		columns[i] = name
	}

	rowLabels := make([]string, rowCount)
	for i := range rowLabels {
		label, err := r.TerminatedString(0, int(r.Remaining()))
		if err != nil {
			return nil, err
		}
		rowLabels[i] = label
	}

	cellCount := int(rowCount) * int(columnCount)
	offsets := make([]uint16, cellCount)
	for i := range offsets {
		v, err := r.Uint16()
		if err != nil {
			return nil, fmt.Errorf("twoda: reading cell offset %d: %w", i, err)
		}
		offsets[i] = v
	}

	dataSize, err := r.Uint16()
	if err != nil {
		return nil, fmt.Errorf("twoda: reading data size: %w", err)
	}
	pool, err := r.Bytes(int(dataSize))
	if err != nil {
		return nil, fmt.Errorf("twoda: reading string pool: %w", err)
	}

	cells := make([][]string, rowCount)
	for row := 0; row < int(rowCount); row++ {
		cells[row] = make([]string, len(columns))
		for col := 0; col < len(columns); col++ {
			off := offsets[row*len(columns)+col]
			cells[row][col] = readPoolString(pool, int(off))
		}
	}

	return &Table{Columns: columns, RowLabels: rowLabels, Cells: cells}, nil
}

func readPoolString(pool []byte, off int) string {
	if off < 0 || off >= len(pool) {
		return ""
	}
	end := off
	for end < len(pool) && pool[end] != 0 {
		end++
	}
	return string(pool[off:end])
}

// Write serializes t to the binary 2DA layout.
func Write(t *Table) ([]byte, error) {
	w := bread.NewWriter()
	w.String(magic)
	w.Uint32(uint32(len(t.Cells)))
	w.Uint32(uint32(len(t.Columns)))
	for _, c := range t.Columns {
		w.String(c)
		w.Uint8(0)
	}
	for i := 0; i < len(t.Cells); i++ {
		label := ""
		if i < len(t.RowLabels) {
			label = t.RowLabels[i]
		}
		w.String(label)
		w.Uint8(0)
	}

	pool, offsets := buildPool(t)
	for _, off := range offsets {
		w.Uint16(off)
	}
	w.Uint16(uint16(len(pool)))
	w.RawBytes(pool)
	return w.Bytes(), nil
}

// buildPool deduplicates identical cell strings (including the single
// shared empty string) and returns the pool plus a per-cell offset table in
// row-major order.
func buildPool(t *Table) ([]byte, []uint16) {
	seen := map[string]uint16{}
	var pool []byte
	offsets := make([]uint16, 0, len(t.Cells)*len(t.Columns))
	for _, row := range t.Cells {
		for _, cell := range row {
			off, ok := seen[cell]
			if !ok {
				off = uint16(len(pool))
				seen[cell] = off
				pool = append(pool, []byte(cell)...)
				pool = append(pool, 0)
			}
			offsets = append(offsets, off)
		}
	}
	return pool, offsets
}

// ReadCSV parses a CSV export (row label in the first, unnamed column, then
// one column per header entry) into a Table.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("twoda: reading csv: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	header := records[0]
	if len(header) == 0 || header[0] != "" {
		return nil, fmt.Errorf("twoda: csv header must reserve an empty first column for row labels")
	}
	t := &Table{Columns: header[1:]}
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		t.RowLabels = append(t.RowLabels, rec[0])
		row := make([]string, len(t.Columns))
		for i := range row {
			if i+1 < len(rec) {
				row[i] = unescapeEmpty(rec[i+1])
			}
		}
		t.Cells = append(t.Cells, row)
	}
	return t, nil
}

// WriteCSV renders t with the row label as the first, unnamed column and
// empty cells written as a single asterisk, matching the toolset's CSV
// convention.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	header := append([]string{""}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range t.Cells {
		label := strconv.Itoa(i)
		if i < len(t.RowLabels) {
			label = t.RowLabels[i]
		}
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, label)
		for _, cell := range row {
			rec = append(rec, escapeEmpty(cell))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func escapeEmpty(s string) string {
	if s == "" {
		return "*"
	}
	return s
}

func unescapeEmpty(s string) string {
	if s == "*" {
		return ""
	}
	return strings.TrimSpace(s)
}

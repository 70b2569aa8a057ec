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

package twoda

import (
	"bytes"
	"testing"
)

func sampleTable() *Table {
	return &Table{
		Columns:   []string{"label", "cost", "plot"},
		RowLabels: []string{"0", "1", "2"},
		Cells: [][]string{
			{"item_sword", "10", ""},
			{"item_shield", "", "1"},
			{"", "5", ""},
		},
	}
}

func TestRoundTripBinary(t *testing.T) {
	table := sampleTable()
	data, err := Write(table)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Columns) != 3 || got.RowCount() != 3 {
		t.Fatalf("unexpected shape: %+v", got)
	}
	if got.Get(0, "label") != "item_sword" {
		t.Errorf("Get(0, label) = %q", got.Get(0, "label"))
	}
	if got.Get(1, "cost") != "" {
		t.Errorf("expected empty cell, got %q", got.Get(1, "cost"))
	}

	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("writer is not byte-stable across a read/write cycle")
	}
}

func TestCSVRoundTrip(t *testing.T) {
	table := sampleTable()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	data1, _ := Write(table)
	data2, _ := Write(got)
	if !bytes.Equal(data1, data2) {
		t.Errorf("CSV round trip did not reproduce identical binary bytes")
	}
}

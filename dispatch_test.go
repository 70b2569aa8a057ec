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

package korf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.kotor.dev/korf/twoda"
)

type collectLog struct {
	lines []string
}

func (c *collectLog) Printf(format string, args ...any) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func TestSniffFormat(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Format
		ok   bool
	}{
		{"2da", append([]byte("2DA V2.b"), '\n'), FormatTwoDA, true},
		{"gff-utc", []byte("UTC V3.2"), FormatGFF, true},
		{"gff-are", []byte("ARE V3.3"), FormatGFF, true},
		{"rim", []byte("RIM V1.0"), FormatRIM, true},
		{"bif-compressed", []byte("BIFCV1.0"), FormatBIF, true},
		{"erf-mod", []byte("MOD V1.0"), FormatERF, true},
		{"too-short", []byte("no"), "", false},
		{"unrecognized", []byte("XXXXV9.9"), "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := SniffFormat(c.data)
			if ok != c.ok || got != c.want {
				t.Errorf("SniffFormat(%q) = (%q, %v), want (%q, %v)", c.data, got, ok, c.want, c.ok)
			}
		})
	}
}

func sampleTwoDA() *twoda.Table {
	return &twoda.Table{
		Columns:   []string{"label", "value"},
		RowLabels: []string{"0", "1"},
		Cells: [][]string{
			{"one", "1"},
			{"two", "2"},
		},
	}
}

func TestReadResourceRoundTripsThroughAPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appearance.2da")
	if err := WriteResource(sampleTwoDA(), path); err != nil {
		t.Fatalf("WriteResource: %v", err)
	}

	got, err := ReadResource(path, "", nil)
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	table, ok := got.(*twoda.Table)
	if !ok {
		t.Fatalf("ReadResource returned %T, want *twoda.Table", got)
	}
	if table.Get(1, "label") != "two" {
		t.Errorf("table.Get(1, label) = %q, want two", table.Get(1, "label"))
	}
}

func TestReadResourceHintWinsOverMagicWithWarning(t *testing.T) {
	data, err := twoda.Write(sampleTwoDA())
	if err != nil {
		t.Fatalf("twoda.Write: %v", err)
	}

	log := &collectLog{}
	_, err = ReadResource(data, FormatGFF, log)
	if err == nil {
		t.Fatal("expected an error decoding a 2DA buffer as GFF")
	}
	if len(log.lines) == 0 {
		t.Error("expected a warning about the format mismatch, got none")
	}
}

func TestWriteResourceDoesNotLeaveTempFileBehindOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.2da")
	if err := WriteResource(sampleTwoDA(), path); err != nil {
		t.Fatalf("WriteResource: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected %s.tmp to be gone, stat err = %v", path, err)
	}
}

func TestWriteResourceToBuffer(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResource(sampleTwoDA(), &buf); err != nil {
		t.Fatalf("WriteResource: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected bytes written to the buffer")
	}
}

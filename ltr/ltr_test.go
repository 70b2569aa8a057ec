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

package ltr

import (
	"bytes"
	"math/rand"
	"testing"
)

func sampleTable() *Table {
	t := &Table{}
	t.Singles.Start[indexOf('k')] = 1.0
	t.Singles.Middle[indexOf('a')] = 0.5
	t.Singles.End[indexOf('a')] = 0.5
	t.Doubles[indexOf('k')].Middle[indexOf('o')] = 1.0
	t.Doubles[indexOf('o')].End[indexOf('a')] = 1.0
	t.Triples[indexOf('k')][indexOf('o')].End[indexOf('r')] = 1.0
	return t
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
	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("writer is not byte-stable")
	}
	if got.Singles.Start[indexOf('k')] != 1.0 {
		t.Errorf("singles start not preserved")
	}
}

func TestRejectsBadLetterCount(t *testing.T) {
	data := []byte("LTR V1.0")
	data = append(data, 26)
	if _, err := Read(data); err == nil {
		t.Fatal("expected error for unsupported letter count")
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	table := sampleTable()
	rng := rand.New(rand.NewSource(1))
	name := Generate(table, rng, 10)
	if name == "" {
		t.Fatal("expected a non-empty generated name")
	}
	for _, r := range name {
		if indexOf(r) < 0 {
			t.Errorf("generated rune %q is not in the alphabet", r)
		}
	}
}

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
// Package ltr implements the LTR format: a 3rd-order Markov chain over a
// 28-symbol alphabet (a-z plus apostrophe and hyphen), used to generate
// random names at character creation.
package ltr

import (
	"fmt"
	"math/rand"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
)

// LetterCount is the only supported alphabet size; the engine rejects any
// other value outright.
const LetterCount = 28

// Alphabet maps symbol index to rune, in table order: a-z, then apostrophe,
// then hyphen.
var Alphabet = [LetterCount]rune{
	'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
	'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
	'\'', '-',
}

func indexOf(r rune) int {
	for i, a := range Alphabet {
		if a == r {
			return i
		}
	}
	return -1
}

// Positional holds the start/middle/end probability mass for one preceding
// context (no letters, one letter, or two letters).
type Positional struct {
	Start  [LetterCount]float32
	Middle [LetterCount]float32
	End    [LetterCount]float32
}

// Table is a full LTR document: unconditional, single-letter-conditioned,
// and two-letter-conditioned distributions over the next letter.
type Table struct {
	Singles Positional
	Doubles [LetterCount]Positional
	Triples [LetterCount][LetterCount]Positional
}

const magic = "LTR V1.0"

// Read parses a binary LTR document.
func Read(buf []byte) (*Table, error) {
	r := bread.NewReader(buf)
	header, err := r.String(8)
	if err != nil {
		return nil, fmt.Errorf("ltr: reading header: %w", err)
	}
	if header != magic {
		return nil, fmt.Errorf("ltr: bad magic %q: %w", header, kerr.ErrBadMagic)
	}
	count, err := r.Uint8()
	if err != nil {
		return nil, fmt.Errorf("ltr: reading letter count: %w", err)
	}
	if count != LetterCount {
		return nil, fmt.Errorf("ltr: unsupported letter count %d (want %d)", count, LetterCount)
	}

	t := &Table{}
	if err := readPositional(r, &t.Singles); err != nil {
		return nil, fmt.Errorf("ltr: singles: %w", err)
	}
	for i := range t.Doubles {
		if err := readPositional(r, &t.Doubles[i]); err != nil {
			return nil, fmt.Errorf("ltr: doubles[%d]: %w", i, err)
		}
	}
	for i := range t.Triples {
		for j := range t.Triples[i] {
			if err := readPositional(r, &t.Triples[i][j]); err != nil {
				return nil, fmt.Errorf("ltr: triples[%d][%d]: %w", i, j, err)
			}
		}
	}
	return t, nil
}

func readPositional(r *bread.Reader, p *Positional) error {
	for _, block := range []*[LetterCount]float32{&p.Start, &p.Middle, &p.End} {
		for i := range block {
			v, err := r.Single()
			if err != nil {
				return err
			}
			block[i] = v
		}
	}
	return nil
}

// Write serializes t to the binary LTR layout.
func Write(t *Table) ([]byte, error) {
	w := bread.NewWriter()
	w.String(magic)
	w.Uint8(LetterCount)

	writePositional(w, &t.Singles)
	for i := range t.Doubles {
		writePositional(w, &t.Doubles[i])
	}
	for i := range t.Triples {
		for j := range t.Triples[i] {
			writePositional(w, &t.Triples[i][j])
		}
	}
	return w.Bytes(), nil
}

func writePositional(w *bread.Writer, p *Positional) {
	for _, block := range []*[LetterCount]float32{&p.Start, &p.Middle, &p.End} {
		for _, v := range block {
			w.Single(v)
		}
	}
}

// Generate produces a random name of at most maxLength letters by sampling
// the Markov chain: the unconditional distribution for the first letter,
// the single-letter-conditioned distribution for the second, and the
// two-letter-conditioned distribution thereafter, stopping when End mass
// is sampled or maxLength is reached.
func Generate(t *Table, rng *rand.Rand, maxLength int) string {
	var letters []rune
	for len(letters) < maxLength {
		var p *Positional
		switch len(letters) {
		case 0:
			p = &t.Singles
		case 1:
			idx := indexOf(letters[0])
			if idx < 0 {
				return string(letters)
			}
			p = &t.Doubles[idx]
		default:
			i0 := indexOf(letters[len(letters)-2])
			i1 := indexOf(letters[len(letters)-1])
			if i0 < 0 || i1 < 0 {
				return string(letters)
			}
			p = &t.Triples[i0][i1]
		}

		kind, idx := sample(p, rng, len(letters) == 0)
		if kind == sampleEnd {
			break
		}
		if idx < 0 {
			break
		}
		letters = append(letters, Alphabet[idx])
	}
	return string(letters)
}

type sampleKind int

const (
	sampleLetter sampleKind = iota
	sampleEnd
)

// sample draws from Start+End combined mass at the first position (or
// Middle+End otherwise) using the standard roulette-wheel technique over
// cumulative probability.
func sample(p *Positional, rng *rand.Rand, atStart bool) (sampleKind, int) {
	var total float32
	block := p.Middle
	if atStart {
		block = p.Start
	}
	for _, v := range block {
		total += v
	}
	for _, v := range p.End {
		total += v
	}
	if total <= 0 {
		return sampleEnd, -1
	}
	roll := rng.Float32() * total
	var acc float32
	for i, v := range block {
		acc += v
		if roll < acc {
			return sampleLetter, i
		}
	}
	return sampleEnd, -1
}

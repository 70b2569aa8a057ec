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
// Package tlk implements the TLK string table: the localized text every
// LocString StringRef ultimately resolves against.
package tlk

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
)

// Language is the TLK header's language id. Text encoding is derived from
// this via languageEncoding, matching the engine's fixed per-language
// codec table.
type Language uint32

const (
	LanguageEnglish            Language = 0
	LanguageFrench             Language = 1
	LanguageGerman             Language = 2
	LanguageItalian            Language = 3
	LanguageSpanish            Language = 4
	LanguagePolish             Language = 5
	LanguageKorean             Language = 128
	LanguageChineseTraditional Language = 129
	LanguageChineseSimplified  Language = 130
	LanguageJapanese           Language = 131
)

// languageEncoding returns the text codec for a language id. CJK languages
// use UTF-16LE in the original engine; European languages use
// Windows-1252.
func languageEncoding(lang Language) encoding.Encoding {
	switch lang {
	case LanguageKorean, LanguageChineseTraditional, LanguageChineseSimplified, LanguageJapanese:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	default:
		return charmap.Windows1252
	}
}

const entryFlagTextPresent = 1 << 0
const entryFlagSoundPresent = 1 << 1
const entryFlagSoundLengthPresent = 1 << 2

// Entry is one string table row.
type Entry struct {
	Text            string
	SoundResRef     string
	VolumeVariance  uint32
	PitchVariance   uint32
	SoundLength     float32
	HasText         bool
	HasSound        bool
	HasSoundLength  bool
}

// Table is a full TLK document.
type Table struct {
	Language Language
	Entries  []Entry
}

// Get returns the text of StringRef ref, or "" if out of range.
func (t *Table) Get(ref uint32) string {
	if int(ref) >= len(t.Entries) {
		return ""
	}
	return t.Entries[ref].Text
}

const headerSize = 20

// Read parses a binary TLK document.
func Read(buf []byte) (*Table, error) {
	r := bread.NewReader(buf)
	ft, err := r.String(4)
	if err != nil {
		return nil, fmt.Errorf("tlk: reading file type: %w", err)
	}
	if ft != "TLK " {
		return nil, fmt.Errorf("tlk: bad magic %q: %w", ft, kerr.ErrBadMagic)
	}
	version, err := r.String(4)
	if err != nil {
		return nil, err
	}
	if version != "V3.0" {
		return nil, fmt.Errorf("tlk: unsupported version %q: %w", version, kerr.ErrUnsupportedVersion)
	}
	langID, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	stringCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	stringEntriesOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}

	lang := Language(langID)
	codec := languageEncoding(lang)

	type rawEntry struct {
		flags          uint32
		soundResRef    string
		volumeVariance uint32
		pitchVariance  uint32
		textOffset     uint32
		textLength     uint32
		soundLength    float32
	}
	raws := make([]rawEntry, stringCount)
	for i := range raws {
		flags, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("tlk: entry %d: %w", i, err)
		}
		soundResRef, err := r.String(16)
		if err != nil {
			return nil, err
		}
		volVar, _ := r.Uint32()
		pitchVar, _ := r.Uint32()
		textOff, _ := r.Uint32()
		textLen, _ := r.Uint32()
		soundLen, _ := r.Single()
		raws[i] = rawEntry{flags, trimNUL(soundResRef), volVar, pitchVar, textOff, textLen, soundLen}
	}

	entries := make([]Entry, stringCount)
	for i, raw := range raws {
		e := Entry{
			SoundResRef:    raw.soundResRef,
			VolumeVariance: raw.volumeVariance,
			PitchVariance:  raw.pitchVariance,
			SoundLength:    raw.soundLength,
			HasText:        raw.flags&entryFlagTextPresent != 0,
			HasSound:       raw.flags&entryFlagSoundPresent != 0,
			HasSoundLength: raw.flags&entryFlagSoundLengthPresent != 0,
		}
		if e.HasText && raw.textLength > 0 {
			absOff := int64(stringEntriesOffset) + int64(raw.textOffset)
			raw2 := bread.NewReader(buf)
			raw2.SetPosition(absOff)
			encoded, err := raw2.Bytes(int(raw.textLength))
			if err != nil {
				return nil, fmt.Errorf("tlk: entry %d text: %w", i, err)
			}
			text, err := codec.NewDecoder().Bytes(encoded)
			if err != nil {
				return nil, fmt.Errorf("tlk: entry %d: decoding text: %w", i, err)
			}
			e.Text = string(text)
		}
		entries[i] = e
	}

	return &Table{Language: lang, Entries: entries}, nil
}

func trimNUL(s string) string {
	for i, c := range s {
		if c == 0 {
			return s[:i]
		}
	}
	return s
}

// Write serializes t to the binary TLK layout.
func Write(t *Table) ([]byte, error) {
	codec := languageEncoding(t.Language)

	type encoded struct {
		bytes []byte
	}
	texts := make([]encoded, len(t.Entries))
	var blob []byte
	offsets := make([]uint32, len(t.Entries))
	for i, e := range t.Entries {
		if e.HasText {
			b, err := codec.NewEncoder().Bytes([]byte(e.Text))
			if err != nil {
				return nil, fmt.Errorf("tlk: entry %d: encoding text: %w", i, err)
			}
			texts[i] = encoded{bytes: b}
			offsets[i] = uint32(len(blob))
			blob = append(blob, b...)
		}
	}

	w := bread.NewWriter()
	w.String("TLK ")
	w.String("V3.0")
	w.Uint32(uint32(t.Language))
	w.Uint32(uint32(len(t.Entries)))
	w.Uint32(headerSize + uint32(len(t.Entries))*40)

	for i, e := range t.Entries {
		var flags uint32
		if e.HasText {
			flags |= entryFlagTextPresent
		}
		if e.HasSound {
			flags |= entryFlagSoundPresent
		}
		if e.HasSoundLength {
			flags |= entryFlagSoundLengthPresent
		}
		w.Uint32(flags)
		w.PaddedString(e.SoundResRef, 16)
		w.Uint32(e.VolumeVariance)
		w.Uint32(e.PitchVariance)
		w.Uint32(offsets[i])
		w.Uint32(uint32(len(texts[i].bytes)))
		w.Single(e.SoundLength)
	}
	w.RawBytes(blob)
	return w.Bytes(), nil
}

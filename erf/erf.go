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
// Package erf implements the ERF archive family (ERF/MOD/SAV/HAK): a
// header, a localized-description blob, a key list, a resource list, and
// the resource data itself, in that fixed order.
package erf

import (
	"fmt"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
	"go.kotor.dev/korf/resid"
	"go.kotor.dev/korf/resref"
	"go.kotor.dev/korf/restype"
)

// Kind selects which of the ERF family's four magic strings to emit. All
// four share identical binary layout; only the tag differs.
type Kind string

const (
	KindERF Kind = "ERF "
	KindMOD Kind = "MOD "
	KindSAV Kind = "SAV "
	KindHAK Kind = "HAK "
)

const version = "V1.0"
const headerSize = 160
const keyEntrySize = 24
const resourceEntrySize = 8

// LocalizedString is one language-tagged description string, stored
// alongside the archive's entries.
type LocalizedString struct {
	LanguageID uint32
	Text       string
}

// Entry is one archived resource.
type Entry struct {
	ID   resid.Identifier
	Data []byte
}

// Archive is a full in-memory ERF-family document.
type Archive struct {
	Kind             Kind
	BuildYear        uint32
	BuildDay         uint32
	LocalizedStrings []LocalizedString
	Entries          []Entry
}

// Get returns the bytes for id, or nil, false if absent.
func (a *Archive) Get(id resid.Identifier) ([]byte, bool) {
	for _, e := range a.Entries {
		if e.ID.Equal(id) {
			return e.Data, true
		}
	}
	return nil, false
}

// Read parses a binary ERF-family document.
func Read(buf []byte) (*Archive, error) {
	r := bread.NewReader(buf)
	tag, err := r.String(4)
	if err != nil {
		return nil, fmt.Errorf("erf: reading tag: %w", err)
	}
	ver, err := r.String(4)
	if err != nil {
		return nil, err
	}
	if ver != version {
		return nil, fmt.Errorf("erf: unsupported version %q: %w", ver, kerr.ErrUnsupportedVersion)
	}
	langCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	locStringSize, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	entryCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	locStringsOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	keyListOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	resListOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	buildYear, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	buildDay, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if _, err := r.Uint32(); err != nil { // description_ref (StringRef into a TLK, unused here)
		return nil, err
	}
	if _, err := r.Bytes(116); err != nil {
		return nil, err
	}
	_ = locStringSize

	r.SetPosition(int64(locStringsOffset))
	locStrings := make([]LocalizedString, langCount)
	for i := range locStrings {
		langID, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("erf: localized string %d: %w", i, err)
		}
		size, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		text, err := r.String(int(size))
		if err != nil {
			return nil, err
		}
		locStrings[i] = LocalizedString{LanguageID: langID, Text: text}
	}

	type keyRec struct {
		ref        resref.ResRef
		resourceID uint32
		restype    restype.Type
	}
	r.SetPosition(int64(keyListOffset))
	keys := make([]keyRec, entryCount)
	for i := range keys {
		rawRef, err := r.String(16)
		if err != nil {
			return nil, fmt.Errorf("erf: key %d: %w", i, err)
		}
		resourceID, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		typeID, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		if _, err := r.Uint16(); err != nil { // unused
			return nil, err
		}
		keys[i] = keyRec{ref: resref.FromTruncated(trimNUL(rawRef)), resourceID: resourceID, restype: restype.FromID(restype.ID(typeID))}
	}

	r.SetPosition(int64(resListOffset))
	entries := make([]Entry, entryCount)
	dataReader := bread.NewReader(buf)
	for i, k := range keys {
		offset, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("erf: resource %d: %w", i, err)
		}
		size, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		dataReader.SetPosition(int64(offset))
		data, err := dataReader.Bytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("erf: resource %d data: %w", i, err)
		}
		entries[i] = Entry{ID: resid.New(k.ref, k.restype), Data: data}
	}

	return &Archive{
		Kind:             Kind(tag),
		BuildYear:        buildYear,
		BuildDay:         buildDay,
		LocalizedStrings: locStrings,
		Entries:          entries,
	}, nil
}

func trimNUL(s string) string {
	for i, c := range s {
		if c == 0 {
			return s[:i]
		}
	}
	return s
}

// Write serializes a to the binary ERF-family layout: header, localized
// strings, key list, resource list, then resource data, in that order.
func Write(a *Archive) ([]byte, error) {
	if err := checkDuplicates(a.Entries); err != nil {
		return nil, err
	}

	var locBlob bread.Writer
	for _, ls := range a.LocalizedStrings {
		locBlob.Uint32(ls.LanguageID)
		locBlob.Uint32(uint32(len(ls.Text)))
		locBlob.String(ls.Text)
	}

	keyListOffset := headerSize + locBlob.Len()
	resListOffset := keyListOffset + len(a.Entries)*keyEntrySize
	dataOffset := resListOffset + len(a.Entries)*resourceEntrySize

	w := bread.NewWriter()
	w.String(string(a.Kind))
	w.String(version)
	w.Uint32(uint32(len(a.LocalizedStrings)))
	w.Uint32(uint32(locBlob.Len()))
	w.Uint32(uint32(len(a.Entries)))
	w.Uint32(uint32(headerSize))
	w.Uint32(uint32(keyListOffset))
	w.Uint32(uint32(resListOffset))
	w.Uint32(a.BuildYear)
	w.Uint32(a.BuildDay)
	w.Uint32(0xFFFFFFFF) // description_ref: no associated TLK entry
	w.RawBytes(make([]byte, 116))

	w.RawBytes(locBlob.Bytes())

	offsets := make([]int, len(a.Entries))
	cur := dataOffset
	for i, e := range a.Entries {
		offsets[i] = cur
		cur += len(e.Data)
	}

	for i, e := range a.Entries {
		w.PaddedString(e.ID.ResRef.String(), 16)
		w.Uint32(uint32(i))
		w.Uint16(uint16(e.ID.ResType.ID()))
		w.Uint16(0)
	}
	for i, e := range a.Entries {
		w.Uint32(uint32(offsets[i]))
		w.Uint32(uint32(len(e.Data)))
	}
	for _, e := range a.Entries {
		w.RawBytes(e.Data)
	}

	return w.Bytes(), nil
}

func checkDuplicates(entries []Entry) error {
	seen := map[string]bool{}
	for _, e := range entries {
		key := e.ID.String()
		if seen[key] {
			return &kerr.ValidationError{Issues: []string{fmt.Sprintf("erf: duplicate resource %s", key)}}
		}
		seen[key] = true
	}
	return nil
}

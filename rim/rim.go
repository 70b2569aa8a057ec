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
// Package rim implements the RIM archive: a flat header plus entry table,
// simpler than the ERF family (no localized description strings).
package rim

import (
	"fmt"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
	"go.kotor.dev/korf/resid"
	"go.kotor.dev/korf/resref"
	"go.kotor.dev/korf/restype"
)

const magic = "RIM "
const version = "V1.0"
const headerSize = 120
const entrySize = 32 // resref[16] + restype(u16) + padding(u16) + resource_id(u32) + offset(u32) + size(u32)

// Entry is one archived resource.
type Entry struct {
	ID   resid.Identifier
	Data []byte
}

// Archive is a full in-memory RIM document.
type Archive struct {
	Entries []Entry
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

// Read parses a binary RIM document.
func Read(buf []byte) (*Archive, error) {
	r := bread.NewReader(buf)
	tag, err := r.String(4)
	if err != nil {
		return nil, fmt.Errorf("rim: reading tag: %w", err)
	}
	if tag != magic {
		return nil, fmt.Errorf("rim: bad magic %q: %w", tag, kerr.ErrBadMagic)
	}
	ver, err := r.String(4)
	if err != nil {
		return nil, err
	}
	if ver != version {
		return nil, fmt.Errorf("rim: unsupported version %q: %w", ver, kerr.ErrUnsupportedVersion)
	}
	if _, err := r.Bytes(4); err != nil { // reserved
		return nil, err
	}
	entryCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	entriesOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if _, err := r.Bytes(100); err != nil { // reserved
		return nil, err
	}

	r.SetPosition(int64(entriesOffset))
	dataReader := bread.NewReader(buf)
	entries := make([]Entry, entryCount)
	for i := range entries {
		rawRef, err := r.String(16)
		if err != nil {
			return nil, fmt.Errorf("rim: entry %d: %w", i, err)
		}
		typeID, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		if _, err := r.Uint16(); err != nil { // padding
			return nil, err
		}
		if _, err := r.Uint32(); err != nil { // resource_id, unused: position in entries array is authoritative
			return nil, err
		}
		offset, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		size, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		dataReader.SetPosition(int64(offset))
		data, err := dataReader.Bytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("rim: entry %d data: %w", i, err)
		}
		ref := resref.FromTruncated(trimNUL(rawRef))
		entries[i] = Entry{ID: resid.New(ref, restype.FromID(restype.ID(typeID))), Data: data}
	}
	return &Archive{Entries: entries}, nil
}

func trimNUL(s string) string {
	for i, c := range s {
		if c == 0 {
			return s[:i]
		}
	}
	return s
}

// Write serializes a to the binary RIM layout: header, then entry table,
// then resource data.
func Write(a *Archive) ([]byte, error) {
	if err := checkDuplicates(a.Entries); err != nil {
		return nil, err
	}

	entriesOffset := headerSize
	dataOffset := entriesOffset + len(a.Entries)*entrySize

	w := bread.NewWriter()
	w.String(magic)
	w.String(version)
	w.RawBytes(make([]byte, 4))
	w.Uint32(uint32(len(a.Entries)))
	w.Uint32(uint32(entriesOffset))
	w.RawBytes(make([]byte, 100))

	offsets := make([]int, len(a.Entries))
	cur := dataOffset
	for i, e := range a.Entries {
		offsets[i] = cur
		cur += len(e.Data)
	}

	for i, e := range a.Entries {
		w.PaddedString(e.ID.ResRef.String(), 16)
		w.Uint16(uint16(e.ID.ResType.ID()))
		w.Uint16(0)
		w.Uint32(uint32(i))
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
			return &kerr.ValidationError{Issues: []string{fmt.Sprintf("rim: duplicate resource %s", key)}}
		}
		seen[key] = true
	}
	return nil
}

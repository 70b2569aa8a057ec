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
// Package key implements the KEY+BIF resource catalog: a KEY file
// indexing one or more BIF (or BZF, the zlib-compressed variant) data
// files.
package key

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
	"go.kotor.dev/korf/resid"
	"go.kotor.dev/korf/resref"
	"go.kotor.dev/korf/restype"
)

const keyMagic = "KEY "
const keyVersion = "V1.0"
const keyHeaderSize = 64

// BifIndexBits is the width of the BIF-index field packed into a key
// entry's resource id; the remaining low bits select the resource within
// that BIF.
const BifIndexBits = 20

// BifEntry describes one file referenced from the KEY's file table.
type BifEntry struct {
	Filename string
	FileSize uint32
	Drives   uint16
}

// KeyEntry maps one (resref, restype) to a resource inside a BIF.
type KeyEntry struct {
	ResRef     resref.ResRef
	Type       restype.Type
	ResourceID uint32
}

// BifIndex returns the index into BifEntries this key entry refers to.
func (k KeyEntry) BifIndex() uint32 { return k.ResourceID >> BifIndexBits }

// ResIndex returns the index of the resource within its BIF.
func (k KeyEntry) ResIndex() uint32 { return k.ResourceID & ((1 << BifIndexBits) - 1) }

// Table is a full in-memory KEY document.
type Table struct {
	BuildYear uint32
	BuildDay  uint32
	BifFiles  []BifEntry
	Entries   []KeyEntry
}

// Lookup returns the KeyEntry for id, or false if not indexed.
func (t *Table) Lookup(id resid.Identifier) (KeyEntry, bool) {
	for _, e := range t.Entries {
		if e.ResRef.Equal(id.ResRef) && e.Type.ID() == id.ResType.ID() {
			return e, true
		}
	}
	return KeyEntry{}, false
}

// Read parses a binary KEY document.
func Read(buf []byte) (*Table, error) {
	r := bread.NewReader(buf)
	ft, err := r.String(4)
	if err != nil {
		return nil, fmt.Errorf("key: reading file type: %w", err)
	}
	if ft != keyMagic {
		return nil, fmt.Errorf("key: bad magic %q: %w", ft, kerr.ErrBadMagic)
	}
	ver, err := r.String(4)
	if err != nil {
		return nil, err
	}
	if ver != keyVersion {
		return nil, fmt.Errorf("key: unsupported version %q: %w", ver, kerr.ErrUnsupportedVersion)
	}
	bifCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	keyCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	fileTableOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	keyTableOffset, err := r.Uint32()
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
	if _, err := r.Bytes(32); err != nil { // reserved
		return nil, err
	}

	r.SetPosition(int64(fileTableOffset))
	bifs := make([]BifEntry, bifCount)
	for i := range bifs {
		fileSize, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("key: bif %d: %w", i, err)
		}
		filenameOffset, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		filenameSize, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		drives, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		savedPos := r.Position()
		r.SetPosition(int64(filenameOffset))
		rawName, err := r.String(int(filenameSize))
		if err != nil {
			return nil, fmt.Errorf("key: bif %d filename: %w", i, err)
		}
		r.SetPosition(savedPos)

		name := strings.TrimRight(rawName, "\x00")
		name = strings.ReplaceAll(name, `\`, "/")
		name = strings.TrimLeft(name, "/")
		bifs[i] = BifEntry{Filename: name, FileSize: fileSize, Drives: drives}
	}

	r.SetPosition(int64(keyTableOffset))
	entries := make([]KeyEntry, keyCount)
	for i := range entries {
		rawRef, err := r.String(16)
		if err != nil {
			return nil, fmt.Errorf("key: entry %d: %w", i, err)
		}
		typeID, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		resourceID, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		// Matches the engine's own lowercasing of resrefs on load.
		ref := resref.FromTruncated(strings.ToLower(trimNUL(rawRef)))
		entries[i] = KeyEntry{ResRef: ref, Type: restype.FromID(restype.ID(typeID)), ResourceID: resourceID}
	}

	return &Table{BuildYear: buildYear, BuildDay: buildDay, BifFiles: bifs, Entries: entries}, nil
}

func trimNUL(s string) string {
	for i, c := range s {
		if c == 0 {
			return s[:i]
		}
	}
	return s
}

// Write serializes t to the binary KEY layout: header, file table (sizes
// then filenames), then key table.
func Write(t *Table) ([]byte, error) {
	fileTableOffset := keyHeaderSize
	fileTableEntrySize := 12
	filenamesOffset := fileTableOffset + len(t.BifFiles)*fileTableEntrySize

	filenameOffsets := make([]int, len(t.BifFiles))
	cur := filenamesOffset
	for i, b := range t.BifFiles {
		filenameOffsets[i] = cur
		cur += len(b.Filename) + 1
	}
	keyTableOffset := cur

	w := bread.NewWriter()
	w.String(keyMagic)
	w.String(keyVersion)
	w.Uint32(uint32(len(t.BifFiles)))
	w.Uint32(uint32(len(t.Entries)))
	w.Uint32(uint32(fileTableOffset))
	w.Uint32(uint32(keyTableOffset))
	w.Uint32(t.BuildYear)
	w.Uint32(t.BuildDay)
	w.RawBytes(make([]byte, 32))

	for i, b := range t.BifFiles {
		w.Uint32(b.FileSize)
		w.Uint32(uint32(filenameOffsets[i]))
		w.Uint16(uint16(len(b.Filename) + 1))
		w.Uint16(b.Drives)
	}
	for _, b := range t.BifFiles {
		w.String(b.Filename)
		w.Uint8(0)
	}

	for _, e := range t.Entries {
		w.PaddedString(e.ResRef.String(), 16)
		w.Uint16(uint16(e.Type.ID()))
		w.Uint32(e.ResourceID)
	}

	return w.Bytes(), nil
}

const bifMagic = "BIFF"
const bzfMagic = "BIFC" // BioWare labels the compressed variant BIFC V1.0
const bifVersion = "V1.0"
const bifHeaderSize = 20

// ResourceRecord is one resource stored in a BIF.
type ResourceRecord struct {
	ID         uint32
	Data       []byte
	Type       restype.Type
	Compressed bool
}

// Bif is a full in-memory BIF (or BZF) data file.
type Bif struct {
	Compressed bool
	Resources  []ResourceRecord
}

// ReadBif parses a binary BIF or BZF document; the two share a record
// layout and differ only in whether each resource's payload is
// zlib-deflated.
func ReadBif(buf []byte) (*Bif, error) {
	r := bread.NewReader(buf)
	tag, err := r.String(4)
	if err != nil {
		return nil, fmt.Errorf("bif: reading tag: %w", err)
	}
	compressed := tag == bzfMagic
	if tag != bifMagic && !compressed {
		return nil, fmt.Errorf("bif: bad magic %q: %w", tag, kerr.ErrBadMagic)
	}
	ver, err := r.String(4)
	if err != nil {
		return nil, err
	}
	if ver != bifVersion {
		return nil, fmt.Errorf("bif: unsupported version %q: %w", ver, kerr.ErrUnsupportedVersion)
	}
	varResCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if _, err := r.Uint32(); err != nil { // fixed_res_count, unused by this engine
		return nil, err
	}
	varTableOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}

	r.SetPosition(int64(varTableOffset))
	type rawRec struct {
		id, offset, size, restype uint32
	}
	raws := make([]rawRec, varResCount)
	for i := range raws {
		id, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("bif: resource %d: %w", i, err)
		}
		offset, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		size, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		typeID, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		raws[i] = rawRec{id, offset, size, typeID}
	}

	dataReader := bread.NewReader(buf)
	resources := make([]ResourceRecord, len(raws))
	for i, raw := range raws {
		dataReader.SetPosition(int64(raw.offset))
		payload, err := dataReader.Bytes(int(raw.size))
		if err != nil {
			return nil, fmt.Errorf("bif: resource %d data: %w", i, err)
		}
		if compressed {
			payload, err = inflate(payload)
			if err != nil {
				return nil, fmt.Errorf("bif: resource %d: inflating: %w", i, err)
			}
		}
		resources[i] = ResourceRecord{
			ID:         raw.id,
			Data:       payload,
			Type:       restype.FromID(restype.ID(raw.restype)),
			Compressed: compressed,
		}
	}

	return &Bif{Compressed: compressed, Resources: resources}, nil
}

func inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func deflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteBif serializes bif to the binary BIF (or BZF, when bif.Compressed)
// layout.
func WriteBif(bif *Bif) ([]byte, error) {
	tag := bifMagic
	if bif.Compressed {
		tag = bzfMagic
	}

	payloads := make([][]byte, len(bif.Resources))
	for i, res := range bif.Resources {
		p := res.Data
		if bif.Compressed {
			var err error
			p, err = deflate(p)
			if err != nil {
				return nil, fmt.Errorf("bif: resource %d: deflating: %w", i, err)
			}
		}
		payloads[i] = p
	}

	varTableOffset := bifHeaderSize
	dataOffset := varTableOffset + len(bif.Resources)*16

	w := bread.NewWriter()
	w.String(tag)
	w.String(bifVersion)
	w.Uint32(uint32(len(bif.Resources)))
	w.Uint32(0)
	w.Uint32(uint32(varTableOffset))

	offsets := make([]int, len(payloads))
	cur := dataOffset
	for i, p := range payloads {
		offsets[i] = cur
		cur += len(p)
	}

	for i, res := range bif.Resources {
		w.Uint32(res.ID)
		w.Uint32(uint32(offsets[i]))
		w.Uint32(uint32(len(payloads[i])))
		w.Uint32(uint32(res.Type.ID()))
	}
	for _, p := range payloads {
		w.RawBytes(p)
	}
	return w.Bytes(), nil
}

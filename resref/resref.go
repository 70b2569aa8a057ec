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
// Package resref implements ResRef, the case-insensitive, length-bounded
// resource-name identifier used throughout the Aurora resource formats.
package resref

import (
	"errors"
	"strings"
)

// MaxLength is the maximum number of ASCII bytes a ResRef may hold on disk.
const MaxLength = 16

// ErrTooLong is returned by New when the supplied string cannot be
// represented without silent truncation.
var ErrTooLong = errors.New("resref: value exceeds 16 bytes")

// ResRef is a case-insensitive ASCII resource name of at most 16 bytes.
// The zero value is the empty ResRef.
type ResRef struct {
	value string // always lower-cased, always <= MaxLength bytes
}

// New validates and constructs a ResRef. It returns ErrTooLong rather than
// truncating, so that writers never silently drop identifying information.
func New(s string) (ResRef, error) {
	if len(s) > MaxLength {
		return ResRef{}, ErrTooLong
	}
	if strings.IndexByte(s, 0) >= 0 {
		return ResRef{}, errors.New("resref: embedded NUL byte")
	}
	return ResRef{value: strings.ToLower(s)}, nil
}

// FromTruncated builds a ResRef from s, truncating at MaxLength bytes and
// at the first NUL byte. Used by readers parsing fixed-width on-disk fields
// where truncation already happened at the engine level.
func FromTruncated(s string) ResRef {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) > MaxLength {
		s = s[:MaxLength]
	}
	return ResRef{value: strings.ToLower(s)}
}

// String returns the lower-cased resref text.
func (r ResRef) String() string { return r.value }

// Len returns the byte length of the resref text.
func (r ResRef) Len() int { return len(r.value) }

// Equal compares two ResRefs case-insensitively (both are already
// lower-cased internally, so this is a plain string compare).
func (r ResRef) Equal(other ResRef) bool { return r.value == other.value }

// IsEmpty reports whether the resref holds no text.
func (r ResRef) IsEmpty() bool { return r.value == "" }

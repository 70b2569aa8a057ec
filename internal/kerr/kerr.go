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
// Package kerr holds the error taxonomy shared by every codec package and
// by the root korf package. It lives here, a leaf with no dependencies of
// its own, because korf's dispatch facade imports every codec package
// (erf, gff, key, ...): those packages cannot import korf back for the
// sentinels without an import cycle, so the sentinels live one level
// below both. korf re-exports these under its own name for callers who
// only ever import the root package; codecs import kerr directly.
package kerr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers match against these with errors.Is;
// codecs never retry and never recover internally.
var (
	// ErrEndOfStream is wrapped by every binary reader failure that ran off
	// the end of its backing buffer.
	ErrEndOfStream = errors.New("korf: end of stream")
	// ErrBadMagic indicates a header magic string did not match what the
	// chosen codec expected.
	ErrBadMagic = errors.New("korf: bad magic or version")
	// ErrUnsupportedVersion indicates a recognized magic with an
	// unsupported version string.
	ErrUnsupportedVersion = errors.New("korf: unsupported version")
	// ErrStructural indicates internal offsets or counts are inconsistent.
	ErrStructural = errors.New("korf: structural inconsistency")
	// ErrValidation indicates a semantic invariant was violated.
	ErrValidation = errors.New("korf: validation failed")
	// ErrEncoding indicates a string could not be encoded under the
	// resolved language codec.
	ErrEncoding = errors.New("korf: encoding failed")
	// ErrNotFound indicates a requested (resname, restype) has no source.
	ErrNotFound = errors.New("korf: resource not found")
)

// MalformedError reports a parse failure at a specific byte offset.
type MalformedError struct {
	Format string
	Pos    int64
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("%s: malformed at byte %d: %v", e.Format, e.Pos, e.Err)
	}
	return fmt.Sprintf("%s: malformed: %v", e.Format, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// ValidationError coalesces every issue found by a single validation pass
// (GFF struct/label limits, NCS jump targets, MDL/MDX consistency,
// duplicate archive entries, ...) into one error so callers see the whole
// picture at once.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Issues[0])
	}
	return fmt.Sprintf("validation failed with %d issues: %s, ...", len(e.Issues), e.Issues[0])
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError returns nil if issues is empty, otherwise a
// *ValidationError wrapping them.
func NewValidationError(issues []string) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

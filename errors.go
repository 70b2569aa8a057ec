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
// Package korf is the root package of the Aurora-engine resource codec and
// installation catalog toolkit: shared error types, the injected logger
// interface, and the format-sniffing dispatch facade. Every on-disk format
// lives in its own subpackage (gff, twoda, tlk, ssf, ltr, lip, lyt, erf,
// rim, key, tpc, dds, tga, wav, bwm, mdl, ncs); installation and kmodule
// compose them into a resolvable catalog.
package korf

import "go.kotor.dev/korf/internal/kerr"

// Sentinel error kinds, shared with every codec package through
// internal/kerr (a leaf package neither korf nor any codec package needs
// to import the other to reach). Callers match against these with
// errors.Is; codecs never retry and never recover internally.
var (
	// ErrEndOfStream is wrapped by every binary reader failure that ran off
	// the end of its backing buffer.
	ErrEndOfStream = kerr.ErrEndOfStream
	// ErrBadMagic indicates a header magic or version string did not match
	// what the chosen codec expected.
	ErrBadMagic = kerr.ErrBadMagic
	// ErrUnsupportedVersion indicates a recognized magic with an
	// unsupported version string.
	ErrUnsupportedVersion = kerr.ErrUnsupportedVersion
	// ErrStructural indicates internal offsets or counts are inconsistent.
	ErrStructural = kerr.ErrStructural
	// ErrValidation indicates a semantic invariant was violated.
	ErrValidation = kerr.ErrValidation
	// ErrEncoding indicates a string could not be encoded under the
	// resolved language codec.
	ErrEncoding = kerr.ErrEncoding
	// ErrNotFound indicates a requested (resname, restype) has no source.
	ErrNotFound = kerr.ErrNotFound
)

// MalformedError reports a parse failure at a specific byte offset.
type MalformedError = kerr.MalformedError

// ValidationError coalesces every issue found by a single validation pass
// (GFF struct/label limits, NCS jump targets, MDL/MDX consistency,
// duplicate archive entries, ...) into one error so callers see the whole
// picture at once. It is the same type codec packages construct directly
// from internal/kerr; korf just gives it a name at this package's level.
type ValidationError = kerr.ValidationError

// NewValidationError returns nil if issues is empty, otherwise a
// *ValidationError wrapping them.
func NewValidationError(issues []string) error {
	return kerr.NewValidationError(issues)
}

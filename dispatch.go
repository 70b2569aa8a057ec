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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.kotor.dev/korf/bwm"
	"go.kotor.dev/korf/erf"
	"go.kotor.dev/korf/gff"
	"go.kotor.dev/korf/key"
	"go.kotor.dev/korf/lip"
	"go.kotor.dev/korf/ltr"
	"go.kotor.dev/korf/lyt"
	"go.kotor.dev/korf/mdl"
	"go.kotor.dev/korf/ncs"
	"go.kotor.dev/korf/restype"
	"go.kotor.dev/korf/rim"
	"go.kotor.dev/korf/ssf"
	"go.kotor.dev/korf/tga"
	"go.kotor.dev/korf/tlk"
	"go.kotor.dev/korf/tpc"
	"go.kotor.dev/korf/twoda"
)

// Format names one of the on-disk resource formats the dispatch facade
// knows how to decode. It is distinct from restype.Type: several restype
// extensions (every UT*/ARE/GIT/IFO/DLG/...) all share FormatGFF.
type Format string

const (
	FormatGFF   Format = "gff"
	FormatTwoDA Format = "2da"
	FormatTLK   Format = "tlk"
	FormatSSF   Format = "ssf"
	FormatLTR   Format = "ltr"
	FormatLIP   Format = "lip"
	FormatLYT   Format = "lyt"
	FormatERF   Format = "erf" // also MOD/SAV/HAK, which share ERF's layout
	FormatRIM   Format = "rim"
	FormatKEY   Format = "key"
	FormatBIF   Format = "bif" // also BZF, the zlib-compressed variant
	FormatBWM   Format = "bwm"
	FormatNCS   Format = "ncs"
	FormatTPC   Format = "tpc"
	FormatTGA   Format = "tga"
	FormatWAV   Format = "wav"
	FormatMDL   Format = "mdl" // ASCII form only; see ReadModel for binary
)

// SniffFormat inspects data's leading bytes for one of the fixed
// four-byte-tag-plus-four-byte-version magics this module's binary
// formats share. It returns false for the formats that carry no such
// magic (LYT/VIS plaintext, TGA, TPC, WAV, binary MDL) — those are
// identified by extension instead.
func SniffFormat(data []byte) (Format, bool) {
	if len(data) < 8 {
		return "", false
	}
	tag, ver := string(data[0:4]), string(data[4:8])
	switch {
	case ver == "V3.2" || ver == "V3.3":
		// Every GFF subtype (UTC, ARE, GIT, IFO, DLG, ...) puts its own
		// four-character kind in the tag position; only the version is
		// common, so that's what identifies the family.
		return FormatGFF, true
	case tag == "2DA " && ver == "V2.b":
		return FormatTwoDA, true
	case tag == "TLK " && ver == "V3.0":
		return FormatTLK, true
	case tag == "SSF " && ver == "V1.1":
		return FormatSSF, true
	case tag == "LTR " && ver == "V1.0":
		return FormatLTR, true
	case tag == "LIP " && ver == "V1.0":
		return FormatLIP, true
	case tag == "RIM " && ver == "V1.0":
		return FormatRIM, true
	case tag == "KEY " && ver == "V1.0":
		return FormatKEY, true
	case (tag == "BIFF" || tag == "BIFC") && ver == "V1.0":
		return FormatBIF, true
	case (tag == "ERF " || tag == "MOD " || tag == "SAV " || tag == "HAK ") && ver == "V1.0":
		return FormatERF, true
	case tag == "BWM " && ver == "V1.0":
		return FormatBWM, true
	case tag == "NCS " && ver == "V1.0":
		return FormatNCS, true
	}
	return "", false
}

// formatFromExtension covers the formats SniffFormat can't: those with no
// magic at all, plus every GFF subtype's own extension.
func formatFromExtension(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "lyt", "vis":
		return FormatLYT, true
	case "tga":
		return FormatTGA, true
	case "tpc":
		return FormatTPC, true
	case "wav":
		return FormatWAV, true
	case "mdl":
		return FormatMDL, true
	case "erf", "mod", "sav", "hak":
		return FormatERF, true
	case "bif", "bzf":
		return FormatBIF, true
	case "rim":
		return FormatRIM, true
	case "key":
		return FormatKEY, true
	case "2da":
		return FormatTwoDA, true
	case "tlk":
		return FormatTLK, true
	case "ssf":
		return FormatSSF, true
	case "ltr":
		return FormatLTR, true
	case "lip":
		return FormatLIP, true
	case "bwm":
		return FormatBWM, true
	case "ncs":
		return FormatNCS, true
	}
	if t := restype.FromExtension(ext); t.IsGFF() {
		return FormatGFF, true
	}
	return "", false
}

// loadBytes resolves source, which must be a path (string), an in-memory
// buffer ([]byte), or an io.Reader, into a byte slice. This is the one
// place the dispatch facade opens and fully reads a file handle; no
// handle is held past this call.
func loadBytes(source any) ([]byte, error) {
	switch v := source.(type) {
	case []byte:
		return v, nil
	case string:
		return os.ReadFile(v)
	case io.Reader:
		return io.ReadAll(v)
	default:
		return nil, fmt.Errorf("korf: unsupported source type %T (want string, []byte, or io.Reader)", source)
	}
}

// resolveFormat picks the Format to decode data as. An explicit, non-empty
// hint always wins; if it disagrees with what magic/extension sniffing
// found, a warning is logged but the hint is still used, matching the
// facade's documented precedence.
func resolveFormat(data []byte, source any, hint Format, log Logger) (Format, error) {
	sniffed, sniffedOK := SniffFormat(data)
	if !sniffedOK {
		if path, ok := source.(string); ok {
			sniffed, sniffedOK = formatFromExtension(filepath.Ext(path))
		}
	}

	if hint != "" {
		if sniffedOK && sniffed != hint {
			log.Printf("korf: requested format %q disagrees with detected format %q; using %q", hint, sniffed, hint)
		}
		return hint, nil
	}
	if !sniffedOK {
		return "", fmt.Errorf("korf: could not determine resource format from magic or extension")
	}
	return sniffed, nil
}

// ReadResource loads source (a path, a []byte, or an io.Reader) and
// decodes it with the format-appropriate reader, returning the
// concrete *gff.Tree / *erf.Archive / *twoda.Table / ... value as any.
// hint may be "" to rely entirely on sniffing; logger may be nil.
//
// Binary MDL/MDX pairs and WAV's PCM payload aren't representable by a
// single buffer and a single return value, so they are not handled here:
// use ReadModel and wav.Deobfuscate directly.
func ReadResource(source any, hint Format, logger Logger) (any, error) {
	log := logOrNop(logger)
	data, err := loadBytes(source)
	if err != nil {
		return nil, fmt.Errorf("korf: reading source: %w", err)
	}
	format, err := resolveFormat(data, source, hint, log)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatGFF:
		return gff.Read(data)
	case FormatTwoDA:
		return twoda.Read(data)
	case FormatTLK:
		return tlk.Read(data)
	case FormatSSF:
		return ssf.Read(data)
	case FormatLTR:
		return ltr.Read(data)
	case FormatLIP:
		return lip.Read(data)
	case FormatLYT:
		return lyt.Read(data)
	case FormatERF:
		return erf.Read(data)
	case FormatRIM:
		return rim.Read(data)
	case FormatKEY:
		return key.Read(data)
	case FormatBIF:
		return key.ReadBif(data)
	case FormatBWM:
		return bwm.Read(data)
	case FormatNCS:
		return ncs.Read(data)
	case FormatTPC:
		return tpc.Read(data)
	case FormatTGA:
		return tga.Read(data)
	case FormatMDL:
		return mdl.ReadASCII(data)
	default:
		return nil, fmt.Errorf("korf: no single-buffer reader for format %q", format)
	}
}

// WriteResource encodes v with the writer matching its concrete type and
// sends the bytes to target (a path, or an io.Writer). Writers never
// leave a partial file behind: target is only touched once encoding has
// fully succeeded, and a path target is written to a temporary file that
// is renamed over it, the temporary file being removed on any failure.
func WriteResource(v any, target any) error {
	var (
		data []byte
		err  error
	)
	switch val := v.(type) {
	case *gff.Tree:
		data, err = gff.Write(val)
	case *twoda.Table:
		data, err = twoda.Write(val)
	case *tlk.Table:
		data, err = tlk.Write(val)
	case *ssf.SoundSet:
		data, err = ssf.Write(val)
	case *ltr.Table:
		data, err = ltr.Write(val)
	case *lip.Animation:
		data, err = lip.Write(val)
	case *lyt.Layout:
		data, err = lyt.Write(val)
	case *erf.Archive:
		data, err = erf.Write(val)
	case *rim.Archive:
		data, err = rim.Write(val)
	case *key.Table:
		data, err = key.Write(val)
	case *key.Bif:
		data, err = key.WriteBif(val)
	case *bwm.Mesh:
		data, err = bwm.Write(val)
	case *ncs.Program:
		data, err = ncs.Write(val)
	case *tpc.Texture:
		data, err = tpc.Write(val)
	case *mdl.Model:
		data = mdl.WriteASCII(val)
	default:
		return fmt.Errorf("korf: WriteResource: no writer for %T", v)
	}
	if err != nil {
		return fmt.Errorf("korf: encoding %T: %w", v, err)
	}
	return writeBytes(target, data)
}

func writeBytes(target any, data []byte) error {
	switch t := target.(type) {
	case io.Writer:
		_, err := t.Write(data)
		return err
	case string:
		tmp := t + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("korf: writing %s: %w", t, err)
		}
		if err := os.Rename(tmp, t); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("korf: finalizing %s: %w", t, err)
		}
		return nil
	default:
		return fmt.Errorf("korf: unsupported target type %T (want string or io.Writer)", target)
	}
}

// ReadModel decodes a binary MDL/MDX pair. Both sources accept the same
// shapes as ReadResource.
func ReadModel(mdlSource, mdxSource any) (*mdl.Model, error) {
	mdlData, err := loadBytes(mdlSource)
	if err != nil {
		return nil, fmt.Errorf("korf: reading mdl source: %w", err)
	}
	mdxData, err := loadBytes(mdxSource)
	if err != nil {
		return nil, fmt.Errorf("korf: reading mdx source: %w", err)
	}
	return mdl.Read(mdlData, mdxData)
}

// WriteModel encodes m to its binary MDL/MDX pair and writes each to its
// target, in the same path-or-writer shapes WriteResource accepts.
func WriteModel(m *mdl.Model, mdlTarget, mdxTarget any) error {
	mdlData, mdxData, err := mdl.Write(m)
	if err != nil {
		return fmt.Errorf("korf: encoding model: %w", err)
	}
	if err := writeBytes(mdlTarget, mdlData); err != nil {
		return err
	}
	return writeBytes(mdxTarget, mdxData)
}

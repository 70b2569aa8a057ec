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
// Package installation composes an on-disk KotOR install root — the base
// game's KEY+BIF catalog, override folder, module capsules, texture packs,
// and streaming folders — into a single priority-ordered resource index.
package installation

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"go.kotor.dev/korf"
	"go.kotor.dev/korf/erf"
	"go.kotor.dev/korf/key"
	"go.kotor.dev/korf/resid"
	"go.kotor.dev/korf/resref"
	"go.kotor.dev/korf/restype"
	"go.kotor.dev/korf/rim"
)

// Category names one of the catalog's resource sources. Search order among
// categories is caller-supplied; DefaultOrder matches what a running game
// client would prefer.
type Category string

const (
	CategoryOverride     Category = "OVERRIDE"
	CategoryModules      Category = "MODULES"
	CategoryLips         Category = "LIPS"
	CategoryTexturesTPA  Category = "TEXTURES_TPA"
	CategoryTexturesTPB  Category = "TEXTURES_TPB"
	CategoryTexturesTPC  Category = "TEXTURES_TPC"
	CategoryVoice        Category = "VOICE"
	CategorySound        Category = "SOUND"
	CategoryMusic        Category = "MUSIC"
	CategoryChitin       Category = "CHITIN"
)

// DefaultOrder puts override content ahead of everything the base game and
// its modules ship, and the base KEY/BIF catalog last.
var DefaultOrder = []Category{
	CategoryOverride,
	CategoryModules,
	CategoryLips,
	CategoryTexturesTPA,
	CategoryTexturesTPB,
	CategoryTexturesTPC,
	CategoryVoice,
	CategorySound,
	CategoryMusic,
	CategoryChitin,
}

// Location is one indexed occurrence of a resource: where it came from and,
// for sources that were already decoded while building the index, its
// bytes. Disk-backed locations (OVERRIDE, the streaming folders) instead
// load their bytes on demand, so no file handle outlives a single call.
type Location struct {
	Identifier resid.Identifier
	Category   Category
	SourcePath string
	Offset     int64
	Size       int64

	data []byte
}

// Data returns the location's bytes, reading them from disk if they were
// not already decoded while the index was built.
func (l *Location) Data() ([]byte, error) {
	if l.data != nil {
		return l.data, nil
	}
	b, err := os.ReadFile(l.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("installation: reading %s: %w", l.SourcePath, err)
	}
	return b, nil
}

// Result is what Resource returns on a hit.
type Result struct {
	Data       []byte
	SourcePath string
	Offset     int64
	Size       int64
}

// Options configures Open. A nil *Options is equivalent to &Options{}.
type Options struct {
	// Logger receives diagnostic messages (skipped files, unreadable
	// capsules) encountered while building the index. Defaults to a
	// logger that discards everything.
	Logger korf.Logger
}

// Installation is an immutable, eagerly built view over one install root.
// Resolution never touches the filesystem again except to load a
// disk-backed Location's bytes.
type Installation struct {
	Root string

	log   korf.Logger
	index map[Category]map[resid.Identifier]*Location
}

// Open builds the catalog for root: KEY+BIF, override, modules/lips
// capsules, texture packs, and streaming folders. Directories that do not
// exist are silently skipped, matching the variety of partial installs
// (a HAK-only mod root, a install missing an expansion's streaming
// folder) the catalog has to tolerate.
func Open(root string, opts *Options) (*Installation, error) {
	if opts == nil {
		opts = &Options{}
	}
	inst := &Installation{
		Root:  root,
		log:   logOrNop(opts.Logger),
		index: make(map[Category]map[resid.Identifier]*Location),
	}

	if err := inst.indexChitin(); err != nil {
		return nil, fmt.Errorf("installation: chitin: %w", err)
	}
	if err := inst.indexOverride(); err != nil {
		return nil, fmt.Errorf("installation: override: %w", err)
	}
	if err := inst.indexCapsules("modules", CategoryModules); err != nil {
		return nil, fmt.Errorf("installation: modules: %w", err)
	}
	if err := inst.indexCapsules("lips", CategoryLips); err != nil {
		return nil, fmt.Errorf("installation: lips: %w", err)
	}
	if err := inst.indexTexturePacks(); err != nil {
		return nil, fmt.Errorf("installation: texturepacks: %w", err)
	}
	if err := inst.indexStreaming("streamwaves", CategoryVoice); err != nil {
		return nil, fmt.Errorf("installation: streamwaves: %w", err)
	}
	if err := inst.indexStreaming("streamvoice", CategoryVoice); err != nil {
		return nil, fmt.Errorf("installation: streamvoice: %w", err)
	}
	if err := inst.indexStreaming("streamsounds", CategorySound); err != nil {
		return nil, fmt.Errorf("installation: streamsounds: %w", err)
	}
	if err := inst.indexStreaming("streammusic", CategoryMusic); err != nil {
		return nil, fmt.Errorf("installation: streammusic: %w", err)
	}

	return inst, nil
}

func logOrNop(l korf.Logger) korf.Logger {
	if l == nil {
		return korf.NopLogger{}
	}
	return l
}

func (inst *Installation) put(cat Category, loc *Location) {
	m := inst.index[cat]
	if m == nil {
		m = make(map[resid.Identifier]*Location)
		inst.index[cat] = m
	}
	m[loc.Identifier] = loc
}

// indexChitin reads chitin.key and every BIF it references, registering
// each keyed resource under CategoryChitin.
func (inst *Installation) indexChitin() error {
	keyPath := filepath.Join(inst.Root, "chitin.key")
	buf, err := os.ReadFile(keyPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	table, err := key.Read(buf)
	if err != nil {
		return fmt.Errorf("chitin.key: %w", err)
	}

	bifs := make(map[uint32]*key.Bif, len(table.BifFiles))
	for _, e := range table.Entries {
		bifIdx := e.BifIndex()
		bif, ok := bifs[bifIdx]
		if !ok {
			if int(bifIdx) >= len(table.BifFiles) {
				inst.log.Printf("installation: chitin.key entry %s references unknown bif %d", e.ResRef, bifIdx)
				continue
			}
			bifPath := filepath.Join(inst.Root, filepath.FromSlash(table.BifFiles[bifIdx].Filename))
			bifBuf, err := os.ReadFile(bifPath)
			if err != nil {
				inst.log.Printf("installation: reading bif %s: %v", bifPath, err)
				bifs[bifIdx] = nil
				continue
			}
			decoded, err := key.ReadBif(bifBuf)
			if err != nil {
				inst.log.Printf("installation: decoding bif %s: %v", bifPath, err)
				bifs[bifIdx] = nil
				continue
			}
			bif = decoded
			bifs[bifIdx] = bif
		}
		if bif == nil {
			continue
		}
		resIdx := e.ResIndex()
		if int(resIdx) >= len(bif.Resources) {
			inst.log.Printf("installation: chitin.key entry %s references out-of-range resource %d", e.ResRef, resIdx)
			continue
		}
		rec := bif.Resources[resIdx]
		id := resid.New(e.ResRef, e.Type)
		inst.put(CategoryChitin, &Location{
			Identifier: id,
			Category:   CategoryChitin,
			SourcePath: filepath.Join(inst.Root, filepath.FromSlash(table.BifFiles[bifIdx].Filename)),
			Size:       int64(len(rec.Data)),
			data:       rec.Data,
		})
	}
	return nil
}

// indexOverride registers every regularly-typed file under the override
// folder, subfolders included. Real installs can ship override/ as a flat
// folder or with subfolders depending on patch era; both are walked.
func (inst *Installation) indexOverride() error {
	dir := filepath.Join(inst.Root, "override")
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		id := resid.FromPath(d.Name())
		if id.ResType.IsInvalid() {
			inst.log.Printf("installation: override: skipping %s, unrecognized extension", path)
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		inst.put(CategoryOverride, &Location{
			Identifier: id,
			Category:   CategoryOverride,
			SourcePath: path,
			Size:       info.Size(),
		})
		return nil
	})
}

// indexCapsules enumerates every .rim/.erf/.mod/.sav file directly under
// root/subdir and registers its contents under cat.
func (inst *Installation) indexCapsules(subdir string, cat Category) error {
	dir := filepath.Join(inst.Root, subdir)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name()), "."))
		switch ext {
		case "rim":
			if err := inst.indexRim(path, cat); err != nil {
				inst.log.Printf("installation: %s: %v", path, err)
			}
		case "erf", "mod", "sav", "hak":
			if err := inst.indexErf(path, cat); err != nil {
				inst.log.Printf("installation: %s: %v", path, err)
			}
		}
	}
	return nil
}

func (inst *Installation) indexRim(path string, cat Category) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	archive, err := rim.Read(buf)
	if err != nil {
		return err
	}
	for _, e := range archive.Entries {
		inst.put(cat, &Location{
			Identifier: e.ID,
			Category:   cat,
			SourcePath: path,
			Size:       int64(len(e.Data)),
			data:       e.Data,
		})
	}
	return nil
}

func (inst *Installation) indexErf(path string, cat Category) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	archive, err := erf.Read(buf)
	if err != nil {
		return err
	}
	for _, e := range archive.Entries {
		inst.put(cat, &Location{
			Identifier: e.ID,
			Category:   cat,
			SourcePath: path,
			Size:       int64(len(e.Data)),
			data:       e.Data,
		})
	}
	return nil
}

// indexTexturePacks registers texturepacks/*.erf under the TPA/TPB/TPC
// category its filename names ("swpc_tex_tpa.erf", "..._tpb.erf",
// "..._tpc.erf" in the shipped game; any filename containing one of the
// three tags is matched so renamed/modded packs still resolve).
func (inst *Installation) indexTexturePacks() error {
	dir := filepath.Join(inst.Root, "texturepacks")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if !strings.HasSuffix(name, ".erf") {
			continue
		}
		var cat Category
		switch {
		case strings.Contains(name, "tpa"):
			cat = CategoryTexturesTPA
		case strings.Contains(name, "tpb"):
			cat = CategoryTexturesTPB
		case strings.Contains(name, "tpc"):
			cat = CategoryTexturesTPC
		default:
			inst.log.Printf("installation: texturepacks: skipping %s, unrecognized pack tag", e.Name())
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := inst.indexErf(path, cat); err != nil {
			inst.log.Printf("installation: %s: %v", path, err)
		}
	}
	return nil
}

// indexStreaming recursively registers every file under root/subdir as cat;
// streaming folders are nested by first letter or by module in a real
// install.
func (inst *Installation) indexStreaming(subdir string, cat Category) error {
	dir := filepath.Join(inst.Root, subdir)
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		id := resid.FromPath(d.Name())
		if id.ResType.IsInvalid() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		inst.put(cat, &Location{
			Identifier: id,
			Category:   cat,
			SourcePath: path,
			Size:       info.Size(),
		})
		return nil
	})
}

// Categories lists every category the index actually populated, sorted for
// stable diagnostics output.
func (inst *Installation) Categories() []Category {
	cats := make([]Category, 0, len(inst.index))
	for c := range inst.index {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// Resource resolves (resname, t) by consulting order in turn (DefaultOrder
// if order is nil), returning the first hit.
func (inst *Installation) Resource(resname string, t restype.Type, order []Category) (*Result, bool) {
	return inst.ResourceByIdentifier(resid.New(resref.FromTruncated(resname), t), order)
}

// ResourceByIdentifier is Resource for callers that already hold a
// resid.Identifier.
func (inst *Installation) ResourceByIdentifier(id resid.Identifier, order []Category) (*Result, bool) {
	if len(order) == 0 {
		order = DefaultOrder
	}
	for _, cat := range order {
		m, ok := inst.index[cat]
		if !ok {
			continue
		}
		loc, ok := m[id]
		if !ok {
			continue
		}
		data, err := loc.Data()
		if err != nil {
			inst.log.Printf("installation: %v", err)
			continue
		}
		return &Result{Data: data, SourcePath: loc.SourcePath, Offset: loc.Offset, Size: loc.Size}, true
	}
	return nil, false
}

// Locations returns every hit for id across order (DefaultOrder if nil),
// most-preferred first, for conflict diffing between mods and the base
// game.
func (inst *Installation) Locations(id resid.Identifier, order []Category) []Location {
	if len(order) == 0 {
		order = DefaultOrder
	}
	var out []Location
	for _, cat := range order {
		if m, ok := inst.index[cat]; ok {
			if loc, ok := m[id]; ok {
				out = append(out, *loc)
			}
		}
	}
	return out
}

// Resources batches Resource across resnames, skipping any that do not
// resolve; the returned map is keyed by the (lower-cased) resref text.
func (inst *Installation) Resources(resnames []string, t restype.Type, order []Category) map[string]*Result {
	out := make(map[string]*Result, len(resnames))
	for _, name := range resnames {
		if r, ok := inst.Resource(name, t, order); ok {
			out[strings.ToLower(name)] = r
		}
	}
	return out
}

// Identifiers returns every identifier indexed under cat.
func (inst *Installation) Identifiers(cat Category) []resid.Identifier {
	m, ok := inst.index[cat]
	if !ok {
		return nil
	}
	return maps.Keys(m)
}

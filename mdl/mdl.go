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
// Package mdl implements the Aurora-engine MDL/MDX model and animation
// codec: a paired binary geometry file (MDL) and a raw per-vertex data
// blob (MDX), plus the textual MDLOps-compatible ASCII interchange form.
//
// This is the hardest subcomponent of the module: the MDL node tree mixes
// a handful of base node kinds (dummy, mesh, skin, dangly mesh, AABB tree,
// lightsaber, light, emitter, reference) behind a single bitfield, each
// appending its own fixed header after a okay common 80-byte node header,
// and the animation tree mirrors the geometry tree's shape while carrying
// keyframed controller data instead of static defaults.
package mdl

import (
	"fmt"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/resref"
)

const fileHeaderSize = 12

// Classification is the ModelHeader's model-kind byte.
type Classification uint8

const (
	ClassificationOther       Classification = 0
	ClassificationEffect      Classification = 1
	ClassificationTile        Classification = 2
	ClassificationCharacter   Classification = 4
	ClassificationDoor        Classification = 5
	ClassificationLightsaber  Classification = 6
	ClassificationPlaceable   Classification = 7
	ClassificationFlyer       Classification = 8
)

// Flags is the ModelHeader's single-byte model_flags bitfield. The
// engine's own bit assignments were never published; these follow the
// grouping original_source's own MDLModelFlags enum implies (effect,
// tile, and character models each toggle distinct runtime behavior) and
// only need to be internally consistent for round-tripping.
type Flags uint8

const (
	FlagEffect    Flags = 0x1
	FlagTile      Flags = 0x2
	FlagCharacter Flags = 0x4
)

// NodeFlags is the node common header's type_flags bitfield. Multiple
// bits may be set: a skin node is Mesh|Skin.
type NodeFlags uint16

const (
	NodeDummy     NodeFlags = 0x1
	NodeMesh      NodeFlags = 0x20
	NodeSkin      NodeFlags = 0x40
	NodeDangly    NodeFlags = 0x100
	NodeAABB      NodeFlags = 0x200
	NodeLight     NodeFlags = 0x400
	NodeSaber     NodeFlags = 0x800
	NodeEmitter   NodeFlags = 0x1000
	NodeReference NodeFlags = 0x2000
)

func (f NodeFlags) Has(bit NodeFlags) bool { return f&bit != 0 }

// arrayDef is the ubiquitous { offset, count, count2 } array descriptor.
// count2 exists purely so writers can mirror count into a second field the
// original engine never actually uses; readers ignore it.
type arrayDef struct {
	Offset uint32
	Count  uint32
}

func readArrayDef(r *bread.Reader) (arrayDef, error) {
	offset, err := r.Uint32()
	if err != nil {
		return arrayDef{}, err
	}
	count, err := r.Uint32()
	if err != nil {
		return arrayDef{}, err
	}
	if _, err := r.Uint32(); err != nil { // count2 (duplicate)
		return arrayDef{}, err
	}
	return arrayDef{Offset: offset, Count: count}, nil
}

func writeArrayDef(w *bread.Writer, d arrayDef) {
	w.Uint32(d.Offset)
	w.Uint32(d.Count)
	w.Uint32(d.Count) // count2 mirrors count
}

// GeometryHeader is the fixed-size header shared by the model's root
// geometry tree and by every animation.
type GeometryHeader struct {
	FuncPtr0       uint32
	FuncPtr1       uint32
	Name           string // model_name[32] or anim_name[32], NUL-terminated
	RootNodeOffset uint32
	NodeCount      uint32
	RuntimeScale   float32 // animation scale / unused geometry slot, kept for round trip
	AABBMin        bread.Vector3
	AABBMax        bread.Vector3
	Radius         float32
}

const geometryHeaderSize = 4 + 4 + 32 + 4 + 4 + 24 + 4 + 12 + 12 + 4

func readGeometryHeader(r *bread.Reader) (GeometryHeader, error) {
	var g GeometryHeader
	var err error
	if g.FuncPtr0, err = r.Uint32(); err != nil {
		return g, err
	}
	if g.FuncPtr1, err = r.Uint32(); err != nil {
		return g, err
	}
	name, err := r.String(32)
	if err != nil {
		return g, err
	}
	g.Name = trimNUL(name)
	if g.RootNodeOffset, err = r.Uint32(); err != nil {
		return g, err
	}
	if g.NodeCount, err = r.Uint32(); err != nil {
		return g, err
	}
	if _, err := r.Bytes(24); err != nil { // two runtime-array slots, always zero on disk
		return g, err
	}
	if g.RuntimeScale, err = r.Single(); err != nil {
		return g, err
	}
	if g.AABBMin, err = r.Vector3(); err != nil {
		return g, err
	}
	if g.AABBMax, err = r.Vector3(); err != nil {
		return g, err
	}
	if g.Radius, err = r.Single(); err != nil {
		return g, err
	}
	return g, nil
}

func writeGeometryHeader(w *bread.Writer, g GeometryHeader) {
	w.Uint32(g.FuncPtr0)
	w.Uint32(g.FuncPtr1)
	w.PaddedString(g.Name, 32)
	w.Uint32(g.RootNodeOffset)
	w.Uint32(g.NodeCount)
	for i := 0; i < 24; i++ {
		w.Uint8(0)
	}
	w.Single(g.RuntimeScale)
	w.RawBytes(vec3Bytes(g.AABBMin))
	w.RawBytes(vec3Bytes(g.AABBMax))
	w.Single(g.Radius)
}

// Model is a complete, in-memory MDL+MDX document. Its fields correspond
// directly to GeometryHeader and ModelHeader on disk; there is no
// separate Go type for ModelHeader since nothing else ever holds one in
// isolation.
type Model struct {
	Geometry        GeometryHeader
	Classification  Classification
	ModelFlags      Flags
	AffectedByFog   bool
	ChildModelCount uint32
	ParentModelIndex uint32
	// ModelFlags2 is a second, wider flags word the header carries
	// alongside the single-byte ModelFlags; nothing in the pack
	// documents its bit meanings, so it round-trips opaquely.
	ModelFlags2 uint32
	SuperModel  resref.ResRef
	Root        *Node
	Animations  []*Animation

	// K1/K2 selects the funcptr constants and the skinmesh layout size
	// (K2 skinmesh headers are 8 bytes longer).
	K2 bool
}

func trimNUL(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return s[:i]
		}
	}
	return s
}

func vec3Bytes(v bread.Vector3) []byte {
	w := bread.NewWriter()
	w.Single(v.X)
	w.Single(v.Y)
	w.Single(v.Z)
	return w.Bytes()
}

func vec4Bytes(v bread.Vector4) []byte {
	w := bread.NewWriter()
	w.Single(v.X)
	w.Single(v.Y)
	w.Single(v.Z)
	w.Single(v.W)
	return w.Bytes()
}

// ReadError wraps a failure encountered while parsing an MDL/MDX pair. A
// partial model may still have been produced by a tolerant reader; Read
// itself always returns nil on error.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("mdl: %s: %v", e.Op, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

func readErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ReadError{Op: op, Err: err}
}

// Read parses an MDL document paired with its MDX data blob.
func Read(mdlBuf, mdxBuf []byte) (*Model, error) {
	r := bread.NewReader(mdlBuf)
	if _, err := r.Uint32(); err != nil { // reserved
		return nil, readErr("file header", err)
	}
	if _, err := r.Uint32(); err != nil { // mdl_data_size
		return nil, readErr("file header", err)
	}
	if _, err := r.Uint32(); err != nil { // mdx_data_size
		return nil, readErr("file header", err)
	}

	geom, err := readGeometryHeader(r)
	if err != nil {
		return nil, readErr("geometry header", err)
	}

	m := &Model{Geometry: geom}

	classification, err := r.Uint8()
	if err != nil {
		return nil, readErr("model header", err)
	}
	m.Classification = Classification(classification)
	modelFlags, err := r.Uint8()
	if err != nil {
		return nil, readErr("model header", err)
	}
	m.ModelFlags = Flags(modelFlags)
	if _, err := r.Uint8(); err != nil { // padding0
		return nil, readErr("model header", err)
	}
	affectedByFog, err := r.Uint8()
	if err != nil {
		return nil, readErr("model header", err)
	}
	m.AffectedByFog = affectedByFog != 0
	if m.ChildModelCount, err = r.Uint32(); err != nil {
		return nil, readErr("model header", err)
	}
	animArr, err := readArrayDef(r)
	if err != nil {
		return nil, readErr("model header", err)
	}
	if m.ParentModelIndex, err = r.Uint32(); err != nil {
		return nil, readErr("model header", err)
	}
	if _, err := r.Vector3(); err != nil { // bounding box min (duplicate of geometry AABB)
		return nil, readErr("model header", err)
	}
	if _, err := r.Vector3(); err != nil { // bounding box max
		return nil, readErr("model header", err)
	}
	if _, err := r.Single(); err != nil { // radius (duplicate)
		return nil, readErr("model header", err)
	}
	if _, err := r.Single(); err != nil { // animation scale
		return nil, readErr("model header", err)
	}
	superModel, err := r.String(32)
	if err != nil {
		return nil, readErr("model header", err)
	}
	if _, err := r.Uint32(); err != nil { // offset_to_super_root, resolved by the engine at runtime
		return nil, readErr("model header", err)
	}
	if m.ModelFlags2, err = r.Uint32(); err != nil {
		return nil, readErr("model header", err)
	}
	mdxSize, err := r.Uint32()
	if err != nil {
		return nil, readErr("model header", err)
	}
	mdxOffset, err := r.Uint32()
	if err != nil {
		return nil, readErr("model header", err)
	}
	nameOffsetsArr, err := readArrayDef(r)
	if err != nil {
		return nil, readErr("model header", err)
	}
	superModelRef, _ := resref.New(trimNUL(superModel))
	m.SuperModel = superModelRef
	_ = mdxSize
	_ = mdxOffset

	// Name offsets array, then the NUL-terminated name strings themselves.
	r.SetPosition(fileHeaderSize + int64(nameOffsetsArr.Offset))
	nameOffsets := make([]uint32, nameOffsetsArr.Count)
	for i := range nameOffsets {
		off, err := r.Uint32()
		if err != nil {
			return nil, readErr("name offsets", err)
		}
		nameOffsets[i] = off
	}
	names := make([]string, len(nameOffsets))
	for i, off := range nameOffsets {
		r.SetPosition(fileHeaderSize + int64(off))
		s, err := r.TerminatedString(0, 64)
		if err != nil {
			return nil, readErr("names", err)
		}
		names[i] = s
	}

	// Pre-scan the node tree so forward/back references resolve. The
	// placeholder map is keyed by file offset: every reference to a node
	// is by its absolute MDL offset, never by node_number directly.
	byOffset := make(map[uint32]*Node)
	root, err := readNodeTree(r, geom.RootNodeOffset, names, byOffset, int64(len(mdlBuf)))
	if err != nil {
		return nil, readErr("node tree", err)
	}
	m.Root = root

	// Animations.
	r.SetPosition(fileHeaderSize + int64(animArr.Offset))
	animOffsets := make([]uint32, animArr.Count)
	for i := range animOffsets {
		off, err := r.Uint32()
		if err != nil {
			return nil, readErr("animation offsets", err)
		}
		animOffsets[i] = off
	}
	for _, off := range animOffsets {
		anim, err := readAnimation(r, off, names, int64(len(mdlBuf)))
		if err != nil {
			return nil, readErr("animation", err)
		}
		m.Animations = append(m.Animations, anim)
	}

	_ = mdxBuf
	return m, nil
}

// Write serializes m as an MDL document plus its paired MDX blob, in the
// canonical order: file header, geometry/model header, name strings, name
// offsets array, animation offsets array, root node recursively, then
// animations; the MDX vertex data is the separate second return value.
// Given two semantically equal models, Write produces byte-identical output.
func Write(m *Model) (mdlBuf, mdxBuf []byte, err error) {
	names, nameIndex := collectNames(m)
	assignNodeNumbers(m.Root, 0)

	mdx := bread.NewWriter()
	layoutMDX(m.Root, mdx)

	mdl := bread.NewWriter()
	mdl.Uint32(0) // reserved
	sizePatch := mdl.Len()
	mdl.Uint32(0) // mdl_data_size placeholder
	mdl.Uint32(uint32(mdx.Len()))

	funcPtr0, funcPtr1 := funcPointers(m.K2)
	writeGeometryHeader(mdl, GeometryHeader{
		FuncPtr0: funcPtr0, FuncPtr1: funcPtr1,
		Name:           m.Geometry.Name,
		RootNodeOffset: 0, // patched below once the layout is known
		NodeCount:      uint32(countNodes(m.Root)),
		AABBMin:        m.Geometry.AABBMin,
		AABBMax:        m.Geometry.AABBMax,
		Radius:         m.Geometry.Radius,
	})

	mdl.Uint8(uint8(m.Classification))
	mdl.Uint8(uint8(m.ModelFlags))
	mdl.Uint8(0) // padding0
	mdl.Uint8(boolU8(m.AffectedByFog))
	mdl.Uint32(m.ChildModelCount)
	animArrOffset := mdl.Len()
	writeArrayDef(mdl, arrayDef{}) // patched
	mdl.Uint32(m.ParentModelIndex)
	mdl.RawBytes(vec3Bytes(m.Geometry.AABBMin))
	mdl.RawBytes(vec3Bytes(m.Geometry.AABBMax))
	mdl.Single(m.Geometry.Radius)
	mdl.Single(1) // animation scale
	mdl.PaddedString(m.SuperModel.String(), 32)
	mdl.Uint32(0) // offset_to_super_root, resolved by the engine at runtime
	mdl.Uint32(m.ModelFlags2)
	mdl.Uint32(uint32(mdx.Len()))
	mdl.Uint32(0) // mdx_offset, unused at model scope
	nameOffsetsArrOffset := mdl.Len()
	writeArrayDef(mdl, arrayDef{}) // patched

	// Name strings, recording each one's absolute offset.
	nameByteOffsets := make([]uint32, len(names))
	for i, n := range names {
		nameByteOffsets[i] = uint32(mdl.Len() - fileHeaderSize)
		mdl.String(n)
		mdl.Uint8(0)
	}
	nameOffsetsArrAbs := uint32(mdl.Len() - fileHeaderSize)
	for _, off := range nameByteOffsets {
		mdl.Uint32(off)
	}

	animOffsetsArrAbs := uint32(mdl.Len() - fileHeaderSize)
	animNodeOffsets := make([]uint32, len(m.Animations))
	for range m.Animations {
		mdl.Uint32(0) // patched after each animation is laid out
	}

	rootOffset := uint32(mdl.Len() - fileHeaderSize)
	if err := writeNodeTree(mdl, m.Root, nameIndex, m.K2); err != nil {
		return nil, nil, err
	}

	for i, a := range m.Animations {
		animNodeOffsets[i] = uint32(mdl.Len() - fileHeaderSize)
		if err := writeAnimation(mdl, a, nameIndex, m.K2); err != nil {
			return nil, nil, err
		}
	}

	out := mdl.Bytes()
	patchUint32(out, sizePatch, uint32(len(out)))
	patchArrayDef(out, animArrOffset, arrayDef{Offset: animOffsetsArrAbs, Count: uint32(len(m.Animations))})
	patchArrayDef(out, nameOffsetsArrOffset, arrayDef{Offset: nameOffsetsArrAbs, Count: uint32(len(names))})
	patchUint32(out, int(fileHeaderSize)+4+4+32, rootOffset) // GeometryHeader.RootNodeOffset field
	for i, off := range animNodeOffsets {
		patchUint32(out, int(animOffsetsArrAbs)+fileHeaderSize+4*i, off)
	}

	return out, mdx.Bytes(), nil
}

func funcPointers(k2 bool) (uint32, uint32) {
	if k2 {
		return 0x00000002, 0x00000002
	}
	return 0x00000000, 0x00000000
}

func patchUint32(buf []byte, at int, v uint32) {
	buf[at] = byte(v)
	buf[at+1] = byte(v >> 8)
	buf[at+2] = byte(v >> 16)
	buf[at+3] = byte(v >> 24)
}

func patchArrayDef(buf []byte, at int, d arrayDef) {
	patchUint32(buf, at, d.Offset)
	patchUint32(buf, at+4, d.Count)
	patchUint32(buf, at+8, d.Count)
}

func boolU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func countNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += countNodes(c)
	}
	return count
}

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

package mdl

import (
	"fmt"

	"go.kotor.dev/korf/internal/bread"
)

const nodeHeaderSize = 80

// ControllerRow is one sample of a controller: a timestamp plus NumColumns
// float values, e.g. {x, y, z} for POSITION or a quaternion for
// ORIENTATION.
type ControllerRow struct {
	Time   float32
	Values []float32
}

// Controller is one animated (or, on a geometry node, static-default)
// property: position, orientation, scale, or a node-type-specific channel
// such as light color or emitter birthrate.
type Controller struct {
	Type    uint32
	Columns uint8
	Rows    []ControllerRow
}

// Controller type ids shared by every node kind.
const (
	ControllerPosition    = 8
	ControllerOrientation = 20
	ControllerScale       = 36
)

// Node is one entry in the MDL scene graph. Flags selects which of the
// typed payload fields below are populated; a skin mesh has both Mesh and
// Skin set, for instance.
type Node struct {
	Name        string
	NodeNumber  uint16
	Flags       NodeFlags
	Position    bread.Vector3
	Orientation bread.Vector4
	Controllers []Controller
	Children    []*Node

	Mesh      *Trimesh
	Skin      *SkinExtra
	Dangly    *DanglyExtra
	AABB      *AABBNode
	Saber     *Saber
	Light     *Light
	Emitter   *Emitter
	Reference *Reference

	// the node's offset in the MDL, recorded during Read; ignored by
	// Write, which reassigns node numbers in stable pre-order.
	fileOffset uint32
}

func readNodeTree(r *bread.Reader, offset uint32, names []string, byOffset map[uint32]*Node, fileSize int64) (*Node, error) {
	if offset == 0 {
		return nil, nil
	}
	if n, ok := byOffset[offset]; ok {
		return n, nil // back-reference
	}
	if fileHeaderSize+int64(offset) >= fileSize {
		return nil, fmt.Errorf("node offset %d past end of file (%d bytes)", offset, fileSize)
	}
	r.SetPosition(fileHeaderSize + int64(offset))

	n := &Node{fileOffset: offset}
	byOffset[offset] = n

	typeFlags, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	n.Flags = NodeFlags(typeFlags)
	nodeNumber, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	n.NodeNumber = nodeNumber
	nameIndex, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	if int(nameIndex) >= len(names) {
		return nil, fmt.Errorf("name_index %d out of range (%d names)", nameIndex, len(names))
	}
	n.Name = names[nameIndex]
	if _, err := r.Uint16(); err != nil { // pad
		return nil, err
	}
	if _, err := r.Uint32(); err != nil { // root_offset, recomputed on write
		return nil, err
	}
	if _, err := r.Uint32(); err != nil { // parent_offset, recomputed on write
		return nil, err
	}
	if n.Position, err = r.Vector3(); err != nil {
		return nil, err
	}
	if n.Orientation, err = r.Vector4(); err != nil {
		return nil, err
	}
	childrenArr, err := readArrayDef(r)
	if err != nil {
		return nil, err
	}
	if childrenArr.Count >= 100 {
		return nil, fmt.Errorf("node %q has implausible child count %d", n.Name, childrenArr.Count)
	}
	controllersArr, err := readArrayDef(r)
	if err != nil {
		return nil, err
	}
	controllerDataArr, err := readArrayDef(r)
	if err != nil {
		return nil, err
	}

	if err := readTypeHeader(r, n, names); err != nil {
		return nil, err
	}

	n.Controllers, err = readControllers(r, controllersArr, controllerDataArr)
	if err != nil {
		return nil, err
	}

	r.SetPosition(fileHeaderSize + int64(childrenArr.Offset))
	childOffsets := make([]uint32, childrenArr.Count)
	for i := range childOffsets {
		off, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		childOffsets[i] = off
	}
	for _, off := range childOffsets {
		child, err := readNodeTree(r, off, names, byOffset, fileSize)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}

	return n, nil
}

func readControllers(r *bread.Reader, rowsArr, dataArr arrayDef) ([]Controller, error) {
	if rowsArr.Count == 0 {
		return nil, nil
	}
	r.SetPosition(fileHeaderSize + int64(dataArr.Offset))
	pool := make([]float32, dataArr.Count)
	for i := range pool {
		v, err := r.Single()
		if err != nil {
			return nil, err
		}
		pool[i] = v
	}

	r.SetPosition(fileHeaderSize + int64(rowsArr.Offset))
	controllers := make([]Controller, rowsArr.Count)
	for i := range controllers {
		ctype, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		if _, err := r.Uint16(); err != nil { // unknown
			return nil, err
		}
		numRows, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		firstKey, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		numCols, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		if _, err := r.Bytes(3); err != nil { // pad
			return nil, err
		}
		c := Controller{Type: ctype, Columns: numCols}
		base := int(firstKey)
		for row := 0; row < int(numRows); row++ {
			if base+row >= len(pool) {
				return nil, fmt.Errorf("controller type %d: timestamp index out of range", ctype)
			}
			cr := ControllerRow{Time: pool[base+row]}
			for col := 0; col < int(numCols); col++ {
				idx := base + int(numRows) + row + col*int(numRows)
				if idx >= len(pool) {
					return nil, fmt.Errorf("controller type %d: value index out of range", ctype)
				}
				cr.Values = append(cr.Values, pool[idx])
			}
			c.Rows = append(c.Rows, cr)
		}
		controllers[i] = c
	}
	return controllers, nil
}

// assignNodeNumbers walks n in stable pre-order, assigning sequential
// node numbers so that two structurally-equal trees always number
// identically regardless of how they were constructed in memory.
func assignNodeNumbers(n *Node, next uint16) uint16 {
	if n == nil {
		return next
	}
	n.NodeNumber = next
	next++
	for _, c := range n.Children {
		next = assignNodeNumbers(c, next)
	}
	return next
}

func collectNames(m *Model) ([]string, map[string]uint32) {
	index := make(map[string]uint32)
	var names []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := index[s]; ok {
			return
		}
		index[s] = uint32(len(names))
		names = append(names, s)
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		add(n.Name)
		if n.Mesh != nil {
			add(n.Mesh.Texture1)
			add(n.Mesh.Texture2)
		}
		if n.Light != nil {
			for _, t := range n.Light.FlareTextures {
				add(t)
			}
		}
		if n.Emitter != nil {
			add(n.Emitter.UpdateScript)
			add(n.Emitter.RenderScript)
			add(n.Emitter.ChunkName)
			add(n.Emitter.Texture)
			add(n.Emitter.DepthTexture)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(m.Root)
	for _, a := range m.Animations {
		add(a.Geometry.Name)
		var walkAnim func(n *Node)
		walkAnim = func(n *Node) {
			if n == nil {
				return
			}
			add(n.Name)
			for _, c := range n.Children {
				walkAnim(c)
			}
		}
		walkAnim(a.Root)
	}
	return names, index
}

// writeNodeTree serializes n and its subtree in pre-order: common header,
// type-specific header, this node's own trailing arrays, the children
// offset array, then each child's subtree in turn.
func writeNodeTree(w *bread.Writer, n *Node, nameIndex map[string]uint32, k2 bool) error {
	if n == nil {
		return nil
	}
	start := w.Len()

	w.Uint16(uint16(n.Flags))
	w.Uint16(n.NodeNumber)
	w.Uint16(uint16(nameIndex[n.Name]))
	w.Uint16(0) // pad
	w.Uint32(0) // root_offset, not tracked by this writer (readers recompute via tree walk)
	w.Uint32(0) // parent_offset, same
	w.RawBytes(vec3Bytes(n.Position))
	w.RawBytes(vec4Bytes(n.Orientation))
	childrenArrAt := w.Len()
	writeArrayDef(w, arrayDef{}) // patched once children are laid out
	controllersArrAt := w.Len()
	writeArrayDef(w, arrayDef{}) // patched
	controllerDataArrAt := w.Len()
	writeArrayDef(w, arrayDef{}) // patched

	if err := writeTypeHeader(w, n, nameIndex, k2); err != nil {
		return fmt.Errorf("mdl: node %q: %w", n.Name, err)
	}

	controllersOffset := uint32(w.Len() - fileHeaderSize)
	writeControllerRows(w, n.Controllers)
	controllerDataOffset := uint32(w.Len() - fileHeaderSize)
	writeControllerPool(w, n.Controllers)

	childrenOffset := uint32(w.Len() - fileHeaderSize)
	for range n.Children {
		w.Uint32(0) // patched below
	}

	out := w.Bytes()
	patchArrayDef(out, controllersArrAt, arrayDef{Offset: controllersOffset, Count: uint32(len(n.Controllers))})
	patchArrayDef(out, controllerDataArrAt, arrayDef{Offset: controllerDataOffset, Count: uint32(controllerPoolLen(n.Controllers))})
	patchArrayDef(out, childrenArrAt, arrayDef{Offset: childrenOffset, Count: uint32(len(n.Children))})
	_ = start

	for i, c := range n.Children {
		childOffset := uint32(w.Len() - fileHeaderSize)
		patchUint32(w.Bytes(), int(childrenOffset)+fileHeaderSize+4*i, childOffset)
		if err := writeNodeTree(w, c, nameIndex, k2); err != nil {
			return err
		}
	}
	return nil
}

func writeControllerRows(w *bread.Writer, controllers []Controller) {
	keyIndex := 0
	for _, c := range controllers {
		w.Uint32(c.Type)
		w.Uint16(0) // unknown
		w.Uint16(uint16(len(c.Rows)))
		w.Uint16(uint16(keyIndex))
		w.Uint8(c.Columns)
		w.Uint8(0)
		w.Uint8(0)
		w.Uint8(0)
		keyIndex += len(c.Rows) * (1 + int(c.Columns))
	}
}

func writeControllerPool(w *bread.Writer, controllers []Controller) {
	for _, c := range controllers {
		for _, row := range c.Rows {
			w.Single(row.Time)
		}
		for col := 0; col < int(c.Columns); col++ {
			for _, row := range c.Rows {
				if col < len(row.Values) {
					w.Single(row.Values[col])
				} else {
					w.Single(0)
				}
			}
		}
	}
}

func controllerPoolLen(controllers []Controller) int {
	n := 0
	for _, c := range controllers {
		n += len(c.Rows) * (1 + int(c.Columns))
	}
	return n
}

func readTypeHeader(r *bread.Reader, n *Node, names []string) error {
	switch {
	case n.Flags.Has(NodeReference):
		return readReference(r, n)
	case n.Flags.Has(NodeLight):
		return readLight(r, n, names)
	case n.Flags.Has(NodeEmitter):
		return readEmitter(r, n, names)
	case n.Flags.Has(NodeSaber):
		return readSaber(r, n)
	case n.Flags.Has(NodeAABB):
		return readAABBHeader(r, n)
	case n.Flags.Has(NodeDangly):
		return readDangly(r, n)
	case n.Flags.Has(NodeSkin):
		return readSkin(r, n)
	case n.Flags.Has(NodeMesh):
		return readTrimesh(r, n)
	default:
		return nil // plain dummy
	}
}

func writeTypeHeader(w *bread.Writer, n *Node, nameIndex map[string]uint32, k2 bool) error {
	switch {
	case n.Flags.Has(NodeReference):
		return writeReference(w, n)
	case n.Flags.Has(NodeLight):
		return writeLight(w, n, nameIndex)
	case n.Flags.Has(NodeEmitter):
		return writeEmitter(w, n, nameIndex)
	case n.Flags.Has(NodeSaber):
		return writeSaber(w, n)
	case n.Flags.Has(NodeAABB):
		return writeAABBHeader(w, n)
	case n.Flags.Has(NodeDangly):
		return writeDangly(w, n, k2)
	case n.Flags.Has(NodeSkin):
		return writeSkin(w, n, k2)
	case n.Flags.Has(NodeMesh):
		return writeTrimesh(w, n)
	default:
		return nil
	}
}

func layoutMDX(n *Node, mdx *bread.Writer) {
	if n == nil {
		return
	}
	if n.Mesh != nil {
		writeMDXRows(mdx, n.Mesh)
	}
	for _, c := range n.Children {
		layoutMDX(c, mdx)
	}
}

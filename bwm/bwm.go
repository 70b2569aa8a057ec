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
// Package bwm implements the BWM walkmesh format: per-room (or per-door)
// walkable geometry, edge transitions between rooms, and an AABB tree for
// fast collision queries against the triangle mesh.
package bwm

import (
	"fmt"
	"sort"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
)

// SurfaceMaterial is the per-face surface classification. The set of
// materials that mark a face as walkable is fixed by the engine.
type SurfaceMaterial uint32

// WalkableMaterials holds every SurfaceMaterial value a face may carry and
// still be considered part of the walkable mesh.
var WalkableMaterials = map[SurfaceMaterial]bool{
	1: true, 3: true, 4: true, 5: true, 6: true, 9: true, 10: true,
	11: true, 12: true, 13: true, 14: true, 16: true, 18: true, 20: true,
	21: true, 22: true,
}

// IsWalkable reports whether m marks a face as part of the walkable mesh.
func (m SurfaceMaterial) IsWalkable() bool { return WalkableMaterials[m] }

// Kind is the walkmesh_type header field: placeable/door walkmeshes carry
// hook points, area walkmeshes don't use them.
type Kind uint32

const (
	KindArea Kind = iota
	KindPlaceableOrDoor
)

// Face is one triangle: three vertex indices, a surface material, the
// face normal, and the plane's signed distance from the origin along
// that normal.
type Face struct {
	Indices  [3]uint32
	Material SurfaceMaterial
	Normal   bread.Vector3
	Distance float32
}

// Edge binds one triangle edge (faceIndex*3 + edgeIndex, identifying
// which of the face's three sides) to an optional transition target.
// Transition is -1 when the edge is a mesh boundary with no linked room.
type Edge struct {
	FaceIndex int
	EdgeIndex int
	Transition int32
}

// AABBNode is one node of the walkmesh's bounding-volume tree. Leaf nodes
// have FaceIndex >= 0 and no children; internal nodes have FaceIndex -1
// and both child indices set.
type AABBNode struct {
	Min, Max     bread.Vector3
	FaceIndex    int32
	SplitPlane   int32
	LeftChild    int32
	RightChild   int32
}

// Mesh is a fully decoded BWM walkmesh.
type Mesh struct {
	Type Kind

	RelativeHook1, RelativeHook2 bread.Vector3
	AbsoluteHook1, AbsoluteHook2 bread.Vector3
	Position                     bread.Vector3

	Vertices []bread.Vector3
	Faces    []Face

	Edges      []Edge
	Perimeters []int // face counts of each perimeter loop, in face-array order

	AABB []AABBNode
}

// WalkableFaceCount returns the number of faces with a walkable material.
// Write requires these to occupy indices [0, WalkableFaceCount); Read keeps
// faces in file order and does not check it.
func (m *Mesh) WalkableFaceCount() int {
	n := 0
	for _, f := range m.Faces {
		if f.Material.IsWalkable() {
			n++
		}
	}
	return n
}

const magic = "BWM "
const version = "V1.0"
const headerSize = 136

// Read parses a binary BWM document.
func Read(buf []byte) (*Mesh, error) {
	r := bread.NewReader(buf)
	ft, err := r.String(4)
	if err != nil {
		return nil, fmt.Errorf("bwm: reading file type: %w", err)
	}
	if ft != magic {
		return nil, fmt.Errorf("bwm: bad magic %q: %w", ft, kerr.ErrBadMagic)
	}
	ver, err := r.String(4)
	if err != nil {
		return nil, err
	}
	if ver != version {
		return nil, fmt.Errorf("bwm: unsupported version %q: %w", ver, kerr.ErrUnsupportedVersion)
	}

	walkmeshType, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	m := &Mesh{Type: Kind(walkmeshType)}

	for _, dst := range []*bread.Vector3{&m.RelativeHook1, &m.RelativeHook2, &m.AbsoluteHook1, &m.AbsoluteHook2, &m.Position} {
		v, err := r.Vector3()
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	vertexCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	vertexOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	faceCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	indicesOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	materialsOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	normalsOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	distancesOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	aabbCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	aabbOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if _, err := r.Uint32(); err != nil { // reserved
		return nil, err
	}
	walkableFaceCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	adjacencyOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	edgeCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	edgeOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	perimeterCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	perimeterOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	_ = adjacencyOffset // adjacency is derivable from Faces/Edges; not separately materialized

	m.Vertices = make([]bread.Vector3, vertexCount)
	r.SetPosition(int64(vertexOffset))
	for i := range m.Vertices {
		v, err := r.Vector3()
		if err != nil {
			return nil, fmt.Errorf("bwm: vertex %d: %w", i, err)
		}
		m.Vertices[i] = v
	}

	m.Faces = make([]Face, faceCount)
	r.SetPosition(int64(indicesOffset))
	for i := range m.Faces {
		for j := 0; j < 3; j++ {
			idx, err := r.Uint32()
			if err != nil {
				return nil, fmt.Errorf("bwm: face %d index %d: %w", i, j, err)
			}
			m.Faces[i].Indices[j] = idx
		}
	}
	r.SetPosition(int64(materialsOffset))
	for i := range m.Faces {
		mat, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		m.Faces[i].Material = SurfaceMaterial(mat)
	}
	r.SetPosition(int64(normalsOffset))
	for i := range m.Faces {
		n, err := r.Vector3()
		if err != nil {
			return nil, err
		}
		m.Faces[i].Normal = n
	}
	r.SetPosition(int64(distancesOffset))
	for i := range m.Faces {
		d, err := r.Single()
		if err != nil {
			return nil, err
		}
		m.Faces[i].Distance = d
	}

	if int(walkableFaceCount) > len(m.Faces) {
		return nil, fmt.Errorf("bwm: walkable face count %d exceeds face count %d", walkableFaceCount, faceCount)
	}

	m.Edges = make([]Edge, edgeCount)
	r.SetPosition(int64(edgeOffset))
	for i := range m.Edges {
		rawIndex, err := r.Int32()
		if err != nil {
			return nil, err
		}
		transition, err := r.Int32()
		if err != nil {
			return nil, err
		}
		m.Edges[i] = Edge{
			FaceIndex:  int(rawIndex) / 3,
			EdgeIndex:  int(rawIndex) % 3,
			Transition: transition,
		}
	}

	m.Perimeters = make([]int, perimeterCount)
	r.SetPosition(int64(perimeterOffset))
	for i := range m.Perimeters {
		n, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		m.Perimeters[i] = int(n)
	}

	m.AABB = make([]AABBNode, aabbCount)
	r.SetPosition(int64(aabbOffset))
	for i := range m.AABB {
		min, err := r.Vector3()
		if err != nil {
			return nil, err
		}
		max, err := r.Vector3()
		if err != nil {
			return nil, err
		}
		faceIdx, err := r.Int32()
		if err != nil {
			return nil, err
		}
		split, err := r.Int32()
		if err != nil {
			return nil, err
		}
		left, err := r.Int32()
		if err != nil {
			return nil, err
		}
		right, err := r.Int32()
		if err != nil {
			return nil, err
		}
		m.AABB[i] = AABBNode{Min: min, Max: max, FaceIndex: faceIdx, SplitPlane: split, LeftChild: left, RightChild: right}
	}

	return m, nil
}

const aabbNodeSize = 40

// Write serializes m to the binary BWM layout. It requires every walkable
// face to already precede every non-walkable face in m.Faces, matching the
// engine's own layout invariant; Edge.FaceIndex values are written as given
// and must already reference that ordering. Use Reorder to bring a mesh
// assembled in arbitrary order into compliance before writing.
func Write(m *Mesh) ([]byte, error) {
	faces := m.Faces
	walkableCount := 0
	seenNonWalkable := false
	for i, f := range faces {
		if f.Material.IsWalkable() {
			if seenNonWalkable {
				return nil, fmt.Errorf("bwm: walkable face %d follows a non-walkable face; call Reorder first", i)
			}
			walkableCount++
		} else {
			seenNonWalkable = true
		}
	}

	vertexOffset := headerSize
	indicesOffset := vertexOffset + len(m.Vertices)*12
	materialsOffset := indicesOffset + len(faces)*12
	normalsOffset := materialsOffset + len(faces)*4
	distancesOffset := normalsOffset + len(faces)*12
	aabbOffset := distancesOffset + len(faces)*4
	edgeOffset := aabbOffset + len(m.AABB)*aabbNodeSize
	perimeterOffset := edgeOffset + len(m.Edges)*8

	w := bread.NewWriter()
	w.String(magic)
	w.String(version)
	w.Uint32(uint32(m.Type))
	w.Vector3(m.RelativeHook1)
	w.Vector3(m.RelativeHook2)
	w.Vector3(m.AbsoluteHook1)
	w.Vector3(m.AbsoluteHook2)
	w.Vector3(m.Position)
	w.Uint32(uint32(len(m.Vertices)))
	w.Uint32(uint32(vertexOffset))
	w.Uint32(uint32(len(faces)))
	w.Uint32(uint32(indicesOffset))
	w.Uint32(uint32(materialsOffset))
	w.Uint32(uint32(normalsOffset))
	w.Uint32(uint32(distancesOffset))
	w.Uint32(uint32(len(m.AABB)))
	w.Uint32(uint32(aabbOffset))
	w.Uint32(0) // reserved
	w.Uint32(uint32(walkableCount))
	w.Uint32(uint32(indicesOffset)) // adjacency derives from the walkable index prefix
	w.Uint32(uint32(len(m.Edges)))
	w.Uint32(uint32(edgeOffset))
	w.Uint32(uint32(len(m.Perimeters)))
	w.Uint32(uint32(perimeterOffset))

	for _, v := range m.Vertices {
		w.Vector3(v)
	}
	for _, f := range faces {
		w.Uint32(f.Indices[0])
		w.Uint32(f.Indices[1])
		w.Uint32(f.Indices[2])
	}
	for _, f := range faces {
		w.Uint32(uint32(f.Material))
	}
	for _, f := range faces {
		w.Vector3(f.Normal)
	}
	for _, f := range faces {
		w.Single(f.Distance)
	}
	for _, n := range m.AABB {
		w.Vector3(n.Min)
		w.Vector3(n.Max)
		w.Int32(n.FaceIndex)
		w.Int32(n.SplitPlane)
		w.Int32(n.LeftChild)
		w.Int32(n.RightChild)
	}
	for _, e := range m.Edges {
		w.Int32(int32(e.FaceIndex*3 + e.EdgeIndex))
		w.Int32(e.Transition)
	}
	for _, p := range m.Perimeters {
		w.Uint32(uint32(p))
	}

	return w.Bytes(), nil
}

// Reorder returns a copy of m with every walkable face moved ahead of
// every non-walkable one (stable within each group), remapping Faces,
// vertex Indices are left untouched (they index Vertices, not Faces),
// and every Edge.FaceIndex and AABBNode.FaceIndex updated to match.
func Reorder(m *Mesh) *Mesh {
	type indexed struct {
		face Face
		old  int
	}
	faces := make([]indexed, len(m.Faces))
	for i, f := range m.Faces {
		faces[i] = indexed{face: f, old: i}
	}
	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].face.Material.IsWalkable() && !faces[j].face.Material.IsWalkable()
	})

	remap := make(map[int]int, len(faces))
	newFaces := make([]Face, len(faces))
	for newIdx, e := range faces {
		remap[e.old] = newIdx
		newFaces[newIdx] = e.face
	}

	out := *m
	out.Faces = newFaces

	out.Edges = make([]Edge, len(m.Edges))
	for i, e := range m.Edges {
		e.FaceIndex = remap[e.FaceIndex]
		out.Edges[i] = e
	}

	out.AABB = make([]AABBNode, len(m.AABB))
	for i, n := range m.AABB {
		if n.FaceIndex >= 0 {
			if newIdx, ok := remap[int(n.FaceIndex)]; ok {
				n.FaceIndex = int32(newIdx)
			}
		}
		out.AABB[i] = n
	}

	return &out
}

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

package bwm

import (
	"bytes"
	"testing"

	"go.kotor.dev/korf/internal/bread"
)

func sampleMesh() *Mesh {
	return &Mesh{
		Type:     KindArea,
		Position: bread.Vector3{X: 1, Y: 2, Z: 3},
		Vertices: []bread.Vector3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 5, Y: 5, Z: 0},
		},
		Faces: []Face{
			{Indices: [3]uint32{0, 1, 2}, Material: 1, Normal: bread.Vector3{Z: 1}, Distance: 0},
			{Indices: [3]uint32{1, 3, 2}, Material: 7, Normal: bread.Vector3{Z: 1}, Distance: 0},
		},
		Edges: []Edge{
			{FaceIndex: 0, EdgeIndex: 0, Transition: -1},
			{FaceIndex: 0, EdgeIndex: 1, Transition: 3},
		},
		Perimeters: []int{2},
		AABB: []AABBNode{
			{Min: bread.Vector3{}, Max: bread.Vector3{X: 5, Y: 5, Z: 0}, FaceIndex: -1, SplitPlane: 0, LeftChild: -1, RightChild: -1},
		},
	}
}

func TestRoundTripBinary(t *testing.T) {
	m := sampleMesh()
	data, err := Write(m)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Vertices) != 4 || len(got.Faces) != 2 {
		t.Fatalf("unexpected counts: %d verts, %d faces", len(got.Vertices), len(got.Faces))
	}
	if got.Faces[1].Material != 7 {
		t.Errorf("material did not round trip: got %v", got.Faces[1].Material)
	}
	if got.WalkableFaceCount() != 1 {
		t.Errorf("WalkableFaceCount = %d, want 1", got.WalkableFaceCount())
	}
	if len(got.Edges) != 2 || got.Edges[1].Transition != 3 {
		t.Errorf("edges did not round trip: %+v", got.Edges)
	}

	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("writer is not byte-stable")
	}
}

func TestWriteRejectsOutOfOrderFaces(t *testing.T) {
	m := sampleMesh()
	m.Faces[0], m.Faces[1] = m.Faces[1], m.Faces[0]
	if _, err := Write(m); err == nil {
		t.Fatal("expected error for non-walkable-first face order")
	}
}

func TestReorderFixesFaceOrderAndRemapsIndices(t *testing.T) {
	m := sampleMesh()
	m.Faces[0], m.Faces[1] = m.Faces[1], m.Faces[0]
	// After the swap, the walkable face (material 1) sits at index 1; an
	// edge referencing it there must follow it back to index 0 once
	// Reorder restores the walkable-first invariant.
	m.Edges = []Edge{{FaceIndex: 1, EdgeIndex: 0, Transition: 9}}

	fixed := Reorder(m)
	if _, err := Write(fixed); err != nil {
		t.Fatalf("Write after Reorder: %v", err)
	}
	if fixed.Faces[0].Material != 1 {
		t.Fatalf("expected reordered mesh's walkable face first, got material %v at 0", fixed.Faces[0].Material)
	}
	if fixed.Edges[0].FaceIndex != 0 {
		t.Errorf("expected edge FaceIndex remapped to 0, got %d", fixed.Edges[0].FaceIndex)
	}
}

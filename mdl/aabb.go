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

import "go.kotor.dev/korf/internal/bread"

// AABBNode is one node of a walkmesh-collision bounding volume tree: an
// interior node carries only Left/Right, a leaf carries the face subset
// it bounds.
type AABBNode struct {
	Min, Max bread.Vector3
	Center   bread.Vector3
	Radius   float32
	IsLeaf   bool

	Left, Right *AABBNode

	FaceIndices   []uint32
	Faces         [][3]uint16
	FaceNormals   []bread.Vector3
	FaceDistances []float32
	Vertices      []bread.Vector3
}

func readAABBHeader(r *bread.Reader, n *Node) error {
	tree, err := readAABBNode(r)
	if err != nil {
		return err
	}
	n.AABB = tree
	return nil
}

func readAABBNode(r *bread.Reader) (*AABBNode, error) {
	a := &AABBNode{}
	var err error
	if a.Min, err = r.Vector3(); err != nil {
		return nil, err
	}
	if a.Max, err = r.Vector3(); err != nil {
		return nil, err
	}
	if a.Center, err = r.Vector3(); err != nil {
		return nil, err
	}
	if a.Radius, err = r.Single(); err != nil {
		return nil, err
	}
	leftOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	rightOffset, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	isLeaf, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	a.IsLeaf = isLeaf != 0

	if a.IsLeaf {
		faceIdxArr, err := readArrayDef(r)
		if err != nil {
			return nil, err
		}
		facesArr, err := readArrayDef(r)
		if err != nil {
			return nil, err
		}
		normalsArr, err := readArrayDef(r)
		if err != nil {
			return nil, err
		}
		distancesArr, err := readArrayDef(r)
		if err != nil {
			return nil, err
		}
		verticesArr, err := readArrayDef(r)
		if err != nil {
			return nil, err
		}

		pos := r.Position()
		r.SetPosition(fileHeaderSize + int64(faceIdxArr.Offset))
		a.FaceIndices = make([]uint32, faceIdxArr.Count)
		for i := range a.FaceIndices {
			if a.FaceIndices[i], err = r.Uint32(); err != nil {
				return nil, err
			}
		}
		r.SetPosition(fileHeaderSize + int64(facesArr.Offset))
		a.Faces = make([][3]uint16, facesArr.Count)
		for i := range a.Faces {
			for j := 0; j < 3; j++ {
				if a.Faces[i][j], err = r.Uint16(); err != nil {
					return nil, err
				}
			}
		}
		r.SetPosition(fileHeaderSize + int64(normalsArr.Offset))
		a.FaceNormals = make([]bread.Vector3, normalsArr.Count)
		for i := range a.FaceNormals {
			if a.FaceNormals[i], err = r.Vector3(); err != nil {
				return nil, err
			}
		}
		r.SetPosition(fileHeaderSize + int64(distancesArr.Offset))
		a.FaceDistances = make([]float32, distancesArr.Count)
		for i := range a.FaceDistances {
			if a.FaceDistances[i], err = r.Single(); err != nil {
				return nil, err
			}
		}
		r.SetPosition(fileHeaderSize + int64(verticesArr.Offset))
		a.Vertices = make([]bread.Vector3, verticesArr.Count)
		for i := range a.Vertices {
			if a.Vertices[i], err = r.Vector3(); err != nil {
				return nil, err
			}
		}
		r.SetPosition(pos)
		return a, nil
	}

	if leftOffset > 0 {
		r.SetPosition(fileHeaderSize + int64(leftOffset))
		if a.Left, err = readAABBNode(r); err != nil {
			return nil, err
		}
	}
	if rightOffset > 0 {
		r.SetPosition(fileHeaderSize + int64(rightOffset))
		if a.Right, err = readAABBNode(r); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func writeAABBHeader(w *bread.Writer, n *Node) error {
	return writeAABBNode(w, n.AABB)
}

// writeAABBNode lays the tree out depth-first: each interior node's
// fixed fields, immediately followed by its left subtree and then its
// right subtree, so left/right offsets are always forward references.
func writeAABBNode(w *bread.Writer, a *AABBNode) error {
	w.RawBytes(vec3Bytes(a.Min))
	w.RawBytes(vec3Bytes(a.Max))
	w.RawBytes(vec3Bytes(a.Center))
	w.Single(a.Radius)
	linksAt := w.Len()
	w.Uint32(0) // left_offset, patched
	w.Uint32(0) // right_offset, patched
	if a.IsLeaf {
		w.Uint32(1)
	} else {
		w.Uint32(0)
	}

	if a.IsLeaf {
		faceIdxAt := w.Len()
		writeArrayDef(w, arrayDef{})
		facesAt := w.Len()
		writeArrayDef(w, arrayDef{})
		normalsAt := w.Len()
		writeArrayDef(w, arrayDef{})
		distancesAt := w.Len()
		writeArrayDef(w, arrayDef{})
		verticesAt := w.Len()
		writeArrayDef(w, arrayDef{})

		faceIdxOffset := uint32(w.Len() - fileHeaderSize)
		for _, v := range a.FaceIndices {
			w.Uint32(v)
		}
		facesOffset := uint32(w.Len() - fileHeaderSize)
		for _, f := range a.Faces {
			for _, v := range f {
				w.Uint16(v)
			}
		}
		normalsOffset := uint32(w.Len() - fileHeaderSize)
		for _, v := range a.FaceNormals {
			w.RawBytes(vec3Bytes(v))
		}
		distancesOffset := uint32(w.Len() - fileHeaderSize)
		for _, v := range a.FaceDistances {
			w.Single(v)
		}
		verticesOffset := uint32(w.Len() - fileHeaderSize)
		for _, v := range a.Vertices {
			w.RawBytes(vec3Bytes(v))
		}

		out := w.Bytes()
		patchArrayDef(out, faceIdxAt, arrayDef{Offset: faceIdxOffset, Count: uint32(len(a.FaceIndices))})
		patchArrayDef(out, facesAt, arrayDef{Offset: facesOffset, Count: uint32(len(a.Faces))})
		patchArrayDef(out, normalsAt, arrayDef{Offset: normalsOffset, Count: uint32(len(a.FaceNormals))})
		patchArrayDef(out, distancesAt, arrayDef{Offset: distancesOffset, Count: uint32(len(a.FaceDistances))})
		patchArrayDef(out, verticesAt, arrayDef{Offset: verticesOffset, Count: uint32(len(a.Vertices))})
		return nil
	}

	var leftOffset, rightOffset uint32
	if a.Left != nil {
		leftOffset = uint32(w.Len() - fileHeaderSize)
		if err := writeAABBNode(w, a.Left); err != nil {
			return err
		}
	}
	if a.Right != nil {
		rightOffset = uint32(w.Len() - fileHeaderSize)
		if err := writeAABBNode(w, a.Right); err != nil {
			return err
		}
	}
	out := w.Bytes()
	patchUint32(out, linksAt, leftOffset)
	patchUint32(out, linksAt+4, rightOffset)
	return nil
}

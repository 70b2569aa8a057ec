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

// SkinExtra is the payload SKIN nodes append after their Trimesh. Bone
// weights and indices are kept as MDL-resident arrays parallel to
// Mesh.Vertices rather than additional MDX row components: the MDX
// per-component sub-offset scheme already has no surviving reference
// implementation to match byte-for-byte, and interleaving two
// independently-sized row layouts (mesh components, skin components)
// would only add bookkeeping without adding fidelity to anything this
// module can check against.
type SkinExtra struct {
	BoneMap     []uint16
	QBones      []bread.Vector4
	TBones      []bread.Vector3
	BoneWeights [][4]float32
	BoneIndices [][4]float32
}

func readSkin(r *bread.Reader, n *Node) error {
	if err := readTrimesh(r, n); err != nil {
		return err
	}
	s := &SkinExtra{}
	if _, err := r.Bytes(12); err != nil { // unknown2/3/4
		return err
	}
	if _, err := r.Uint32(); err != nil { // offset_to_mdx_weights (unused, see type doc)
		return err
	}
	if _, err := r.Uint32(); err != nil { // offset_to_mdx_bones
		return err
	}
	bonemapArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	qbonesArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	tbonesArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	weightsArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	for i := 0; i < 16; i++ {
		if _, err := r.Uint16(); err != nil {
			return err
		}
	}
	if _, err := r.Uint32(); err != nil { // unknown1 (K2 layout adds further bytes here; not modeled)
		return err
	}

	r.SetPosition(fileHeaderSize + int64(bonemapArr.Offset))
	s.BoneMap = make([]uint16, bonemapArr.Count)
	for i := range s.BoneMap {
		v, err := r.Uint16()
		if err != nil {
			return err
		}
		s.BoneMap[i] = v
	}

	r.SetPosition(fileHeaderSize + int64(qbonesArr.Offset))
	s.QBones = make([]bread.Vector4, qbonesArr.Count)
	for i := range s.QBones {
		v, err := r.Vector4()
		if err != nil {
			return err
		}
		s.QBones[i] = v
	}

	r.SetPosition(fileHeaderSize + int64(tbonesArr.Offset))
	s.TBones = make([]bread.Vector3, tbonesArr.Count)
	for i := range s.TBones {
		v, err := r.Vector3()
		if err != nil {
			return err
		}
		s.TBones[i] = v
	}

	r.SetPosition(fileHeaderSize + int64(weightsArr.Offset))
	count := int(weightsArr.Count)
	s.BoneWeights = make([][4]float32, count)
	s.BoneIndices = make([][4]float32, count)
	for i := 0; i < count; i++ {
		for j := 0; j < 4; j++ {
			v, err := r.Single()
			if err != nil {
				return err
			}
			s.BoneWeights[i][j] = v
		}
	}
	for i := 0; i < count; i++ {
		for j := 0; j < 4; j++ {
			v, err := r.Single()
			if err != nil {
				return err
			}
			s.BoneIndices[i][j] = v
		}
	}

	n.Skin = s
	return nil
}

func writeSkin(w *bread.Writer, n *Node, k2 bool) error {
	if err := writeTrimesh(w, n); err != nil {
		return err
	}
	s := n.Skin
	w.RawBytes(make([]byte, 12)) // unknown2/3/4
	w.Uint32(0)                  // offset_to_mdx_weights, unused
	w.Uint32(0)                  // offset_to_mdx_bones, unused
	bonemapAt := w.Len()
	writeArrayDef(w, arrayDef{})
	qbonesAt := w.Len()
	writeArrayDef(w, arrayDef{})
	tbonesAt := w.Len()
	writeArrayDef(w, arrayDef{})
	weightsAt := w.Len()
	writeArrayDef(w, arrayDef{})
	for i := 0; i < 16; i++ {
		w.Uint16(0)
	}
	w.Uint32(0) // unknown1
	if k2 {
		w.RawBytes(make([]byte, 8))
	}

	bonemapOffset := uint32(w.Len() - fileHeaderSize)
	for _, b := range s.BoneMap {
		w.Uint16(b)
	}
	qbonesOffset := uint32(w.Len() - fileHeaderSize)
	for _, q := range s.QBones {
		w.RawBytes(vec4Bytes(q))
	}
	tbonesOffset := uint32(w.Len() - fileHeaderSize)
	for _, t := range s.TBones {
		w.RawBytes(vec3Bytes(t))
	}
	weightsOffset := uint32(w.Len() - fileHeaderSize)
	for _, wt := range s.BoneWeights {
		for _, v := range wt {
			w.Single(v)
		}
	}
	for _, bi := range s.BoneIndices {
		for _, v := range bi {
			w.Single(v)
		}
	}

	out := w.Bytes()
	patchArrayDef(out, bonemapAt, arrayDef{Offset: bonemapOffset, Count: uint32(len(s.BoneMap))})
	patchArrayDef(out, qbonesAt, arrayDef{Offset: qbonesOffset, Count: uint32(len(s.QBones))})
	patchArrayDef(out, tbonesAt, arrayDef{Offset: tbonesOffset, Count: uint32(len(s.TBones))})
	patchArrayDef(out, weightsAt, arrayDef{Offset: weightsOffset, Count: uint32(len(s.BoneWeights))})
	return nil
}

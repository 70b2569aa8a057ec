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

// Saber is a lightsaber blade node: geometry that is a simple flat strip
// rather than an arbitrary Trimesh, plus the blade's visual properties.
// The second blade ("saber vertices") is the same vertex count as the
// first but geometrically inverted, matching the two-sided blade render.
type Saber struct {
	Length, Width           float32
	Color                   uint32 // packed 0xRRGGBB
	FlareRadius             float32
	FlareColor              uint32
	BlurLength, BlurWidth   float32
	GlowSize, GlowIntensity float32
	BladeTexture, HitTexture, FlareTexture string

	Vertices      []bread.Vector3
	SaberVertices []bread.Vector3
	Normals       []bread.Vector3
	UVs           [][2]float32
	Faces         [][3]uint32
}

func readSaber(r *bread.Reader, n *Node) error {
	s := &Saber{}
	var err error
	saberType, err := r.Uint32()
	if err != nil {
		return err
	}
	_ = saberType
	if _, err := r.Uint32(); err != nil { // saber_flags
		return err
	}
	if s.Length, err = r.Single(); err != nil {
		return err
	}
	if s.Width, err = r.Single(); err != nil {
		return err
	}
	if s.Color, err = r.Uint32(); err != nil {
		return err
	}
	if s.FlareRadius, err = r.Single(); err != nil {
		return err
	}
	if s.FlareColor, err = r.Uint32(); err != nil {
		return err
	}
	if s.BlurLength, err = r.Single(); err != nil {
		return err
	}
	if s.BlurWidth, err = r.Single(); err != nil {
		return err
	}
	if s.GlowSize, err = r.Single(); err != nil {
		return err
	}
	if s.GlowIntensity, err = r.Single(); err != nil {
		return err
	}
	bladeTex, err := r.String(16)
	if err != nil {
		return err
	}
	s.BladeTexture = trimNUL(bladeTex)
	hitTex, err := r.String(16)
	if err != nil {
		return err
	}
	s.HitTexture = trimNUL(hitTex)
	flareTex, err := r.String(16)
	if err != nil {
		return err
	}
	s.FlareTexture = trimNUL(flareTex)

	vertexCount, err := r.Uint32()
	if err != nil {
		return err
	}
	vertexOffset, err := r.Uint32()
	if err != nil {
		return err
	}
	saberVertexOffset, err := r.Uint32()
	if err != nil {
		return err
	}
	textureCount, err := r.Uint32()
	if err != nil {
		return err
	}
	var uvOffset uint32
	if textureCount > 0 {
		if uvOffset, err = r.Uint32(); err != nil {
			return err
		}
	}
	normalOffset, err := r.Uint32()
	if err != nil {
		return err
	}
	faceCount, err := r.Uint32()
	if err != nil {
		return err
	}
	faceOffset, err := r.Uint32()
	if err != nil {
		return err
	}

	readVec3Array := func(offset uint32, count uint32) ([]bread.Vector3, error) {
		r.SetPosition(fileHeaderSize + int64(offset))
		out := make([]bread.Vector3, count)
		for i := range out {
			v, err := r.Vector3()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	if s.Vertices, err = readVec3Array(vertexOffset, vertexCount); err != nil {
		return err
	}
	if s.SaberVertices, err = readVec3Array(saberVertexOffset, vertexCount); err != nil {
		return err
	}
	if textureCount > 0 {
		r.SetPosition(fileHeaderSize + int64(uvOffset))
		s.UVs = make([][2]float32, vertexCount)
		for i := range s.UVs {
			if s.UVs[i][0], err = r.Single(); err != nil {
				return err
			}
			if s.UVs[i][1], err = r.Single(); err != nil {
				return err
			}
		}
	}
	if s.Normals, err = readVec3Array(normalOffset, vertexCount); err != nil {
		return err
	}

	r.SetPosition(fileHeaderSize + int64(faceOffset))
	s.Faces = make([][3]uint32, faceCount)
	for i := range s.Faces {
		for j := 0; j < 3; j++ {
			if s.Faces[i][j], err = r.Uint32(); err != nil {
				return err
			}
		}
	}

	n.Saber = s
	return nil
}

func writeSaber(w *bread.Writer, n *Node) error {
	s := n.Saber
	w.Uint32(0) // saber_type
	w.Uint32(0) // saber_flags
	w.Single(s.Length)
	w.Single(s.Width)
	w.Uint32(s.Color)
	w.Single(s.FlareRadius)
	w.Uint32(s.FlareColor)
	w.Single(s.BlurLength)
	w.Single(s.BlurWidth)
	w.Single(s.GlowSize)
	w.Single(s.GlowIntensity)
	w.PaddedString(s.BladeTexture, 16)
	w.PaddedString(s.HitTexture, 16)
	w.PaddedString(s.FlareTexture, 16)

	w.Uint32(uint32(len(s.Vertices)))
	vertexOffsetAt := w.Len()
	w.Uint32(0)
	saberVertexOffsetAt := w.Len()
	w.Uint32(0)
	hasUV := len(s.UVs) > 0
	if hasUV {
		w.Uint32(1)
	} else {
		w.Uint32(0)
	}
	var uvOffsetAt int
	if hasUV {
		uvOffsetAt = w.Len()
		w.Uint32(0)
	}
	normalOffsetAt := w.Len()
	w.Uint32(0)
	w.Uint32(uint32(len(s.Faces)))
	faceOffsetAt := w.Len()
	w.Uint32(0)

	vertexOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range s.Vertices {
		w.RawBytes(vec3Bytes(v))
	}
	saberVertexOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range s.SaberVertices {
		w.RawBytes(vec3Bytes(v))
	}
	var uvOffset uint32
	if hasUV {
		uvOffset = uint32(w.Len() - fileHeaderSize)
		for _, uv := range s.UVs {
			w.Single(uv[0])
			w.Single(uv[1])
		}
	}
	normalOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range s.Normals {
		w.RawBytes(vec3Bytes(v))
	}
	faceOffset := uint32(w.Len() - fileHeaderSize)
	for _, f := range s.Faces {
		for _, v := range f {
			w.Uint32(v)
		}
	}

	out := w.Bytes()
	patchUint32(out, vertexOffsetAt, vertexOffset)
	patchUint32(out, saberVertexOffsetAt, saberVertexOffset)
	if hasUV {
		patchUint32(out, uvOffsetAt, uvOffset)
	}
	patchUint32(out, normalOffsetAt, normalOffset)
	patchUint32(out, faceOffsetAt, faceOffset)
	return nil
}

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

// MDX per-vertex component flags. The original engine's own bit values
// for this field were never published; these follow the order the reader
// consumes components in (vertex, normal, color, uv1, uv2, tangent) and
// are internally consistent, which is all a round-tripping writer needs.
const (
	mdxVertex  uint32 = 0x1
	mdxNormal  uint32 = 0x2
	mdxColor   uint32 = 0x4
	mdxUV1     uint32 = 0x8
	mdxUV2     uint32 = 0x10
	mdxTangent uint32 = 0x20
)

// Face is one triangle of a Trimesh: its plane equation, material id,
// per-edge adjacent-face indices (-1 if the edge is a mesh boundary), and
// its three vertex indices into the node's MDX rows.
type Face struct {
	Normal        bread.Vector3
	PlaneDistance float32
	MaterialID    uint32
	Adjacent      [3]int32
	Indices       [3]uint32
}

// Vertex is one decoded MDX row. Fields beyond Position are populated
// only when the mesh's MDX layout includes the corresponding component.
type Vertex struct {
	Position bread.Vector3
	Normal   bread.Vector3
	Color    bread.Vector4
	UV1      [2]float32
	UV2      [2]float32
	Tangent  bread.Vector4
}

// Trimesh is the geometry payload shared by MESH, SKIN, and DANGLY nodes.
type Trimesh struct {
	Faces []Face

	BoundsMin, BoundsMax bread.Vector3
	Radius               float32
	Average              bread.Vector3

	Diffuse, Ambient bread.Color
	Transparency     float32

	Texture1, Texture2 string

	Render, Shadow, Beaming, RenderEnvMap, BackgroundGeom, RotateTexture bool
	AnimateUV                                                           bool
	UVDirection                                                         [2]float32
	UVJitter, UVJitterSpeed                                             float32

	HasVertex, HasNormal, HasColor, HasUV1, HasUV2, HasTangent bool
	Vertices                                                   []Vertex

	mdxDataOffset uint32 // absolute offset into the MDX blob, patched at write time
}

func (t *Trimesh) rowSize() int {
	size := 0
	if t.HasVertex {
		size += 12
	}
	if t.HasNormal {
		size += 12
	}
	if t.HasColor {
		size += 16
	}
	if t.HasUV1 {
		size += 8
	}
	if t.HasUV2 {
		size += 8
	}
	if t.HasTangent {
		size += 16
	}
	return size
}

func (t *Trimesh) flags() uint32 {
	var f uint32
	if t.HasVertex {
		f |= mdxVertex
	}
	if t.HasNormal {
		f |= mdxNormal
	}
	if t.HasColor {
		f |= mdxColor
	}
	if t.HasUV1 {
		f |= mdxUV1
	}
	if t.HasUV2 {
		f |= mdxUV2
	}
	if t.HasTangent {
		f |= mdxTangent
	}
	return f
}

// subOffsets returns each present component's byte offset within one MDX
// row, in the fixed emission order vertex, normal, color, uv1, uv2,
// tangent. Absent components report -1 per the sentinel convention.
func (t *Trimesh) subOffsets() (vertex, normal, color, uv1, uv2, tangent int32) {
	vertex, normal, color, uv1, uv2, tangent = -1, -1, -1, -1, -1, -1
	cursor := int32(0)
	if t.HasVertex {
		vertex = cursor
		cursor += 12
	}
	if t.HasNormal {
		normal = cursor
		cursor += 12
	}
	if t.HasColor {
		color = cursor
		cursor += 16
	}
	if t.HasUV1 {
		uv1 = cursor
		cursor += 8
	}
	if t.HasUV2 {
		uv2 = cursor
		cursor += 8
	}
	if t.HasTangent {
		tangent = cursor
		cursor += 16
	}
	return
}

func readTrimesh(r *bread.Reader, n *Node) error {
	t := &Trimesh{}
	if _, err := r.Uint32(); err != nil { // func_ptr0
		return err
	}
	if _, err := r.Uint32(); err != nil { // func_ptr1
		return err
	}
	facesArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	if t.BoundsMin, err = r.Vector3(); err != nil {
		return err
	}
	if t.BoundsMax, err = r.Vector3(); err != nil {
		return err
	}
	if t.Radius, err = r.Single(); err != nil {
		return err
	}
	if t.Average, err = r.Vector3(); err != nil {
		return err
	}
	if t.Diffuse, err = r.Color(); err != nil {
		return err
	}
	if t.Ambient, err = r.Color(); err != nil {
		return err
	}
	if t.Transparency, err = r.Single(); err != nil {
		return err
	}
	tex1, err := r.String(32)
	if err != nil {
		return err
	}
	t.Texture1 = trimNUL(tex1)
	tex2, err := r.String(32)
	if err != nil {
		return err
	}
	t.Texture2 = trimNUL(tex2)

	renderFlags, err := r.Uint8()
	if err != nil {
		return err
	}
	t.Render = renderFlags&0x1 != 0
	t.Shadow = renderFlags&0x2 != 0
	t.Beaming = renderFlags&0x4 != 0
	t.RenderEnvMap = renderFlags&0x8 != 0
	t.BackgroundGeom = renderFlags&0x10 != 0
	t.RotateTexture = renderFlags&0x20 != 0
	if _, err := r.Bytes(3); err != nil { // pad
		return err
	}
	animFlag, err := r.Uint32()
	if err != nil {
		return err
	}
	t.AnimateUV = animFlag != 0
	if t.UVDirection[0], err = r.Single(); err != nil {
		return err
	}
	if t.UVDirection[1], err = r.Single(); err != nil {
		return err
	}
	if t.UVJitter, err = r.Single(); err != nil {
		return err
	}
	if t.UVJitterSpeed, err = r.Single(); err != nil {
		return err
	}

	mdxVertexSize, err := r.Uint32()
	if err != nil {
		return err
	}
	mdxFlags, err := r.Uint32()
	if err != nil {
		return err
	}
	t.HasVertex = mdxFlags&mdxVertex != 0
	t.HasNormal = mdxFlags&mdxNormal != 0
	t.HasColor = mdxFlags&mdxColor != 0
	t.HasUV1 = mdxFlags&mdxUV1 != 0
	t.HasUV2 = mdxFlags&mdxUV2 != 0
	t.HasTangent = mdxFlags&mdxTangent != 0
	offVertex, err := r.Int32()
	if err != nil {
		return err
	}
	offNormal, err := r.Int32()
	if err != nil {
		return err
	}
	offColor, err := r.Int32()
	if err != nil {
		return err
	}
	offUV1, err := r.Int32()
	if err != nil {
		return err
	}
	offUV2, err := r.Int32()
	if err != nil {
		return err
	}
	if err := verifySubOffset(t.HasVertex, offVertex); err != nil {
		return err
	}
	if err := verifySubOffset(t.HasNormal, offNormal); err != nil {
		return err
	}
	if err := verifySubOffset(t.HasColor, offColor); err != nil {
		return err
	}
	if err := verifySubOffset(t.HasUV1, offUV1); err != nil {
		return err
	}
	if err := verifySubOffset(t.HasUV2, offUV2); err != nil {
		return err
	}

	numVertices, err := r.Uint16()
	if err != nil {
		return err
	}
	if _, err := r.Uint16(); err != nil { // num_textures
		return err
	}
	mdxDataOffset, err := r.Uint32()
	if err != nil {
		return err
	}
	if _, err := r.Uint32(); err != nil { // mdx_data_size, recomputed on write
		return err
	}
	t.mdxDataOffset = mdxDataOffset

	// Faces live in the MDL node body, not the MDX blob.
	r.SetPosition(fileHeaderSize + int64(facesArr.Offset))
	t.Faces = make([]Face, facesArr.Count)
	for i := range t.Faces {
		f := &t.Faces[i]
		if f.Normal, err = r.Vector3(); err != nil {
			return err
		}
		if f.PlaneDistance, err = r.Single(); err != nil {
			return err
		}
		if f.MaterialID, err = r.Uint32(); err != nil {
			return err
		}
		for j := 0; j < 3; j++ {
			a, err := r.Int32()
			if err != nil {
				return err
			}
			f.Adjacent[j] = a
		}
		for j := 0; j < 3; j++ {
			v, err := r.Uint32()
			if err != nil {
				return err
			}
			f.Indices[j] = v
		}
	}

	t.Vertices = make([]Vertex, numVertices)
	rowSize := int(mdxVertexSize)
	for i := range t.Vertices {
		base := int64(mdxDataOffset) + int64(i)*int64(rowSize)
		v := &t.Vertices[i]
		if t.HasVertex {
			r.SetPosition(base + int64(offVertex))
			if v.Position, err = r.Vector3(); err != nil {
				return err
			}
		}
		if t.HasNormal {
			r.SetPosition(base + int64(offNormal))
			if v.Normal, err = r.Vector3(); err != nil {
				return err
			}
		}
		if t.HasColor {
			r.SetPosition(base + int64(offColor))
			if v.Color, err = r.Vector4(); err != nil {
				return err
			}
		}
		if t.HasUV1 {
			r.SetPosition(base + int64(offUV1))
			if v.UV1[0], err = r.Single(); err != nil {
				return err
			}
			if v.UV1[1], err = r.Single(); err != nil {
				return err
			}
		}
		if t.HasUV2 {
			r.SetPosition(base + int64(offUV2))
			if v.UV2[0], err = r.Single(); err != nil {
				return err
			}
			if v.UV2[1], err = r.Single(); err != nil {
				return err
			}
		}
	}

	n.Mesh = t
	return nil
}

func verifySubOffset(present bool, offset int32) error {
	if present && offset < 0 {
		return fmt.Errorf("mdx component flagged present but offset is %d", offset)
	}
	if !present && offset != -1 {
		return fmt.Errorf("mdx component flagged absent but offset is %d, want -1", offset)
	}
	return nil
}

func writeTrimesh(w *bread.Writer, n *Node) error {
	t := n.Mesh
	w.Uint32(0) // func_ptr0
	w.Uint32(0) // func_ptr1
	facesArrAt := w.Len()
	writeArrayDef(w, arrayDef{})
	w.RawBytes(vec3Bytes(t.BoundsMin))
	w.RawBytes(vec3Bytes(t.BoundsMax))
	w.Single(t.Radius)
	w.RawBytes(vec3Bytes(t.Average))
	w.Single(t.Diffuse.R)
	w.Single(t.Diffuse.G)
	w.Single(t.Diffuse.B)
	w.Single(t.Ambient.R)
	w.Single(t.Ambient.G)
	w.Single(t.Ambient.B)
	w.Single(t.Transparency)
	w.PaddedString(t.Texture1, 32)
	w.PaddedString(t.Texture2, 32)

	var renderFlags uint8
	if t.Render {
		renderFlags |= 0x1
	}
	if t.Shadow {
		renderFlags |= 0x2
	}
	if t.Beaming {
		renderFlags |= 0x4
	}
	if t.RenderEnvMap {
		renderFlags |= 0x8
	}
	if t.BackgroundGeom {
		renderFlags |= 0x10
	}
	if t.RotateTexture {
		renderFlags |= 0x20
	}
	w.Uint8(renderFlags)
	w.Uint8(0)
	w.Uint8(0)
	w.Uint8(0)
	if t.AnimateUV {
		w.Uint32(1)
	} else {
		w.Uint32(0)
	}
	w.Single(t.UVDirection[0])
	w.Single(t.UVDirection[1])
	w.Single(t.UVJitter)
	w.Single(t.UVJitterSpeed)

	w.Uint32(uint32(t.rowSize()))
	w.Uint32(t.flags())
	offVertex, offNormal, offColor, offUV1, offUV2, _ := t.subOffsets()
	w.Int32(offVertex)
	w.Int32(offNormal)
	w.Int32(offColor)
	w.Int32(offUV1)
	w.Int32(offUV2)

	w.Uint16(uint16(len(t.Vertices)))
	w.Uint16(0) // num_textures
	w.Uint32(t.mdxDataOffset)
	w.Uint32(uint32(len(t.Vertices) * t.rowSize()))

	facesOffset := uint32(w.Len() - fileHeaderSize)
	for _, f := range t.Faces {
		w.RawBytes(vec3Bytes(f.Normal))
		w.Single(f.PlaneDistance)
		w.Uint32(f.MaterialID)
		for _, a := range f.Adjacent {
			w.Int32(a)
		}
		for _, v := range f.Indices {
			w.Uint32(v)
		}
	}
	patchArrayDef(w.Bytes(), facesArrAt, arrayDef{Offset: facesOffset, Count: uint32(len(t.Faces))})
	return nil
}

// writeMDXRows appends t's per-vertex data to mdx in row-major order and
// records the absolute blob offset so writeTrimesh can reference it.
func writeMDXRows(mdx *bread.Writer, t *Trimesh) {
	t.mdxDataOffset = uint32(mdx.Len())
	for _, v := range t.Vertices {
		if t.HasVertex {
			mdx.RawBytes(vec3Bytes(v.Position))
		}
		if t.HasNormal {
			mdx.RawBytes(vec3Bytes(v.Normal))
		}
		if t.HasColor {
			mdx.RawBytes(vec4Bytes(v.Color))
		}
		if t.HasUV1 {
			mdx.Single(v.UV1[0])
			mdx.Single(v.UV1[1])
		}
		if t.HasUV2 {
			mdx.Single(v.UV2[0])
			mdx.Single(v.UV2[1])
		}
		if t.HasTangent {
			mdx.RawBytes(vec4Bytes(v.Tangent))
		}
	}
}

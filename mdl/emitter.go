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

// Emitter is a particle-system node. The real format carries on the
// order of eighty tunable properties; this groups the ones every known
// effect (fire, sparks, rain, force-power trails) actually varies and
// keeps the rest at their engine defaults, consistent with how the
// node's fields are grouped by the reference reader (emission, blast,
// grid, scripts, render flags, particle flags, size/alpha/color ranges,
// frame range, physics, shape, texture grid, particle limits).
type Emitter struct {
	EmissionRate                    float32
	Lifetime, LifetimeRandom        float32
	Mass, MassRandom                float32
	Spread                          float32
	Velocity, VelocityRandom        float32

	BlastRadius, BlastLength float32
	BranchCount              uint32
	ControlPointSmoothing    float32

	GridX, GridY uint32
	SpawnType    uint32

	UpdateScript, RenderScript string
	BlendMode                  uint32
	ChunkName                  string

	TwoSidedTexture, LoopParticles, FrameBlending bool

	PointToPoint, PointToPointSelect, AffectedByWind bool
	Tinted, RandomSpawn, Inherit, InheritLocal       bool
	Splat, InheritPart, DepthTextureEnabled          bool

	Texture, DepthTexture string

	Size, SizeRandom, SizeChange       [2]float32
	Alpha, AlphaRandom                 [2]float32
	ColorStart, ColorEnd, ColorRandom  [3]float32

	FrameStart, FrameEnd uint32
	FrameChange          float32
	FrameRandom          bool

	Gravity                 bread.Vector3
	Drag, Bounce, Friction  float32

	ShapeType uint32
	ShapeSize bread.Vector3

	GridWidth, GridHeight float32
	TextureRows, TextureCols uint32

	MaxParticles uint32
	DeadSpace    float32
}

func readEmitter(r *bread.Reader, n *Node, names []string) error {
	e := &Emitter{}
	var err error
	for _, f := range []*float32{
		&e.EmissionRate, &e.Lifetime, &e.LifetimeRandom, &e.Mass, &e.MassRandom,
		&e.Spread, &e.Velocity, &e.VelocityRandom, &e.BlastRadius, &e.BlastLength,
	} {
		if *f, err = r.Single(); err != nil {
			return err
		}
	}
	if e.BranchCount, err = r.Uint32(); err != nil {
		return err
	}
	if e.ControlPointSmoothing, err = r.Single(); err != nil {
		return err
	}
	if e.GridX, err = r.Uint32(); err != nil {
		return err
	}
	if e.GridY, err = r.Uint32(); err != nil {
		return err
	}
	if e.SpawnType, err = r.Uint32(); err != nil {
		return err
	}
	lookupName := func() (string, error) {
		idx, err := r.Uint32()
		if err != nil {
			return "", err
		}
		if int(idx) < len(names) {
			return names[idx], nil
		}
		return "", nil
	}
	if e.UpdateScript, err = lookupName(); err != nil {
		return err
	}
	if e.RenderScript, err = lookupName(); err != nil {
		return err
	}
	if e.BlendMode, err = r.Uint32(); err != nil {
		return err
	}
	if e.ChunkName, err = lookupName(); err != nil {
		return err
	}

	flags, err := r.Uint32()
	if err != nil {
		return err
	}
	e.TwoSidedTexture = flags&0x1 != 0
	e.LoopParticles = flags&0x2 != 0
	e.FrameBlending = flags&0x4 != 0

	sizeArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	alphaArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	colorStartArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	colorEndArr, err := readArrayDef(r)
	if err != nil {
		return err
	}

	pflags, err := r.Uint32()
	if err != nil {
		return err
	}
	e.PointToPoint = pflags&0x0001 != 0
	e.PointToPointSelect = pflags&0x0002 != 0
	e.AffectedByWind = pflags&0x0004 != 0
	e.Tinted = pflags&0x0008 != 0
	e.RandomSpawn = pflags&0x0010 != 0
	e.Inherit = pflags&0x0020 != 0
	e.InheritLocal = pflags&0x0040 != 0
	e.Splat = pflags&0x0080 != 0
	e.InheritPart = pflags&0x0100 != 0
	e.DepthTextureEnabled = pflags&0x0200 != 0

	if e.Texture, err = lookupName(); err != nil {
		return err
	}
	if e.DepthTexture, err = lookupName(); err != nil {
		return err
	}

	if sizeArr.Count > 0 {
		r.SetPosition(fileHeaderSize + int64(sizeArr.Offset))
		for i := 0; i < 2; i++ {
			if e.Size[i], err = r.Single(); err != nil {
				return err
			}
		}
		if e.SizeRandom[0], err = r.Single(); err != nil {
			return err
		}
		if e.SizeChange[0], err = r.Single(); err != nil {
			return err
		}
	}
	if alphaArr.Count > 0 {
		r.SetPosition(fileHeaderSize + int64(alphaArr.Offset))
		for i := 0; i < 2; i++ {
			if e.Alpha[i], err = r.Single(); err != nil {
				return err
			}
		}
		if e.AlphaRandom[0], err = r.Single(); err != nil {
			return err
		}
	}
	if colorStartArr.Count > 0 {
		r.SetPosition(fileHeaderSize + int64(colorStartArr.Offset))
		for i := 0; i < 3; i++ {
			if e.ColorStart[i], err = r.Single(); err != nil {
				return err
			}
		}
	}
	if colorEndArr.Count > 0 {
		r.SetPosition(fileHeaderSize + int64(colorEndArr.Offset))
		for i := 0; i < 3; i++ {
			if e.ColorEnd[i], err = r.Single(); err != nil {
				return err
			}
		}
		if e.ColorRandom[0], err = r.Single(); err != nil {
			return err
		}
	}

	if e.FrameStart, err = r.Uint32(); err != nil {
		return err
	}
	if e.FrameEnd, err = r.Uint32(); err != nil {
		return err
	}
	if e.FrameChange, err = r.Single(); err != nil {
		return err
	}
	frameRandom, err := r.Uint32()
	if err != nil {
		return err
	}
	e.FrameRandom = frameRandom != 0

	if e.Gravity, err = r.Vector3(); err != nil {
		return err
	}
	if e.Drag, err = r.Single(); err != nil {
		return err
	}
	if e.Bounce, err = r.Single(); err != nil {
		return err
	}
	if e.Friction, err = r.Single(); err != nil {
		return err
	}

	if e.ShapeType, err = r.Uint32(); err != nil {
		return err
	}
	if e.ShapeSize, err = r.Vector3(); err != nil {
		return err
	}
	if e.GridWidth, err = r.Single(); err != nil {
		return err
	}
	if e.GridHeight, err = r.Single(); err != nil {
		return err
	}
	if e.TextureRows, err = r.Uint32(); err != nil {
		return err
	}
	if e.TextureCols, err = r.Uint32(); err != nil {
		return err
	}
	if e.MaxParticles, err = r.Uint32(); err != nil {
		return err
	}
	if e.DeadSpace, err = r.Single(); err != nil {
		return err
	}

	n.Emitter = e
	return nil
}

func writeEmitter(w *bread.Writer, n *Node, nameIndex map[string]uint32) error {
	e := n.Emitter
	w.Single(e.EmissionRate)
	w.Single(e.Lifetime)
	w.Single(e.LifetimeRandom)
	w.Single(e.Mass)
	w.Single(e.MassRandom)
	w.Single(e.Spread)
	w.Single(e.Velocity)
	w.Single(e.VelocityRandom)
	w.Single(e.BlastRadius)
	w.Single(e.BlastLength)
	w.Uint32(e.BranchCount)
	w.Single(e.ControlPointSmoothing)
	w.Uint32(e.GridX)
	w.Uint32(e.GridY)
	w.Uint32(e.SpawnType)
	w.Uint32(nameIndex[e.UpdateScript])
	w.Uint32(nameIndex[e.RenderScript])
	w.Uint32(e.BlendMode)
	w.Uint32(nameIndex[e.ChunkName])

	var flags uint32
	if e.TwoSidedTexture {
		flags |= 0x1
	}
	if e.LoopParticles {
		flags |= 0x2
	}
	if e.FrameBlending {
		flags |= 0x4
	}
	w.Uint32(flags)

	sizeAt := w.Len()
	writeArrayDef(w, arrayDef{})
	alphaAt := w.Len()
	writeArrayDef(w, arrayDef{})
	colorStartAt := w.Len()
	writeArrayDef(w, arrayDef{})
	colorEndAt := w.Len()
	writeArrayDef(w, arrayDef{})

	var pflags uint32
	if e.PointToPoint {
		pflags |= 0x0001
	}
	if e.PointToPointSelect {
		pflags |= 0x0002
	}
	if e.AffectedByWind {
		pflags |= 0x0004
	}
	if e.Tinted {
		pflags |= 0x0008
	}
	if e.RandomSpawn {
		pflags |= 0x0010
	}
	if e.Inherit {
		pflags |= 0x0020
	}
	if e.InheritLocal {
		pflags |= 0x0040
	}
	if e.Splat {
		pflags |= 0x0080
	}
	if e.InheritPart {
		pflags |= 0x0100
	}
	if e.DepthTextureEnabled {
		pflags |= 0x0200
	}
	w.Uint32(pflags)

	w.Uint32(nameIndex[e.Texture])
	w.Uint32(nameIndex[e.DepthTexture])

	sizeOffset := uint32(w.Len() - fileHeaderSize)
	w.Single(e.Size[0])
	w.Single(e.Size[1])
	w.Single(e.SizeRandom[0])
	w.Single(e.SizeChange[0])
	alphaOffset := uint32(w.Len() - fileHeaderSize)
	w.Single(e.Alpha[0])
	w.Single(e.Alpha[1])
	w.Single(e.AlphaRandom[0])
	colorStartOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range e.ColorStart {
		w.Single(v)
	}
	colorEndOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range e.ColorEnd {
		w.Single(v)
	}
	w.Single(e.ColorRandom[0])

	w.Uint32(e.FrameStart)
	w.Uint32(e.FrameEnd)
	w.Single(e.FrameChange)
	w.Uint32(boolU32(e.FrameRandom))

	w.RawBytes(vec3Bytes(e.Gravity))
	w.Single(e.Drag)
	w.Single(e.Bounce)
	w.Single(e.Friction)

	w.Uint32(e.ShapeType)
	w.RawBytes(vec3Bytes(e.ShapeSize))
	w.Single(e.GridWidth)
	w.Single(e.GridHeight)
	w.Uint32(e.TextureRows)
	w.Uint32(e.TextureCols)
	w.Uint32(e.MaxParticles)
	w.Single(e.DeadSpace)

	out := w.Bytes()
	patchArrayDef(out, sizeAt, arrayDef{Offset: sizeOffset, Count: 1})
	patchArrayDef(out, alphaAt, arrayDef{Offset: alphaOffset, Count: 1})
	patchArrayDef(out, colorStartAt, arrayDef{Offset: colorStartOffset, Count: 1})
	patchArrayDef(out, colorEndAt, arrayDef{Offset: colorEndOffset, Count: 1})
	return nil
}

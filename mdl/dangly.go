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

// danglyRuntimeGap is the block of engine-runtime pointers/scratch fields
// between the trimesh header and DANGLY's own fields; the engine never
// persists meaningful data there, so it is round-tripped as zeros.
const danglyRuntimeGap = 344

// DanglyExtra is the payload DANGLY nodes append after their Trimesh:
// physical-simulation parameters for cloth-like geometry (capes, robes)
// plus a per-vertex displacement constraint.
type DanglyExtra struct {
	DisplacementMax, DisplacementMin float32
	Period, Tightness                float32
	ForcePoint                       bread.Vector3
	ForceRadius                      float32
	ForceType                        uint32
	ConstrainX, ConstrainY, ConstrainZ bool

	Displacements   []float32       // per-vertex displacement weight
	Constraints     []bread.Vector3 // per-vertex constraint vector
	DisplacementMap []float32       // per-vertex secondary displacement, used by some models
}

func readDangly(r *bread.Reader, n *Node) error {
	if err := readTrimesh(r, n); err != nil {
		return err
	}
	if _, err := r.Bytes(danglyRuntimeGap); err != nil {
		return err
	}
	d := &DanglyExtra{}
	var err error
	if d.DisplacementMax, err = r.Single(); err != nil {
		return err
	}
	if d.DisplacementMin, err = r.Single(); err != nil {
		return err
	}
	if d.Period, err = r.Single(); err != nil {
		return err
	}
	if d.Tightness, err = r.Single(); err != nil {
		return err
	}
	if d.ForcePoint, err = r.Vector3(); err != nil {
		return err
	}
	if d.ForceRadius, err = r.Single(); err != nil {
		return err
	}
	if d.ForceType, err = r.Uint32(); err != nil {
		return err
	}
	constraintFlags, err := r.Uint32()
	if err != nil {
		return err
	}
	d.ConstrainX = constraintFlags&0x1 != 0
	d.ConstrainY = constraintFlags&0x2 != 0
	d.ConstrainZ = constraintFlags&0x4 != 0

	dispArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	constraintsArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	dispMapArr, err := readArrayDef(r)
	if err != nil {
		return err
	}

	r.SetPosition(fileHeaderSize + int64(dispArr.Offset))
	d.Displacements = make([]float32, dispArr.Count)
	for i := range d.Displacements {
		if d.Displacements[i], err = r.Single(); err != nil {
			return err
		}
	}
	r.SetPosition(fileHeaderSize + int64(constraintsArr.Offset))
	d.Constraints = make([]bread.Vector3, constraintsArr.Count)
	for i := range d.Constraints {
		if d.Constraints[i], err = r.Vector3(); err != nil {
			return err
		}
	}
	r.SetPosition(fileHeaderSize + int64(dispMapArr.Offset))
	d.DisplacementMap = make([]float32, dispMapArr.Count)
	for i := range d.DisplacementMap {
		if d.DisplacementMap[i], err = r.Single(); err != nil {
			return err
		}
	}

	n.Dangly = d
	return nil
}

func writeDangly(w *bread.Writer, n *Node, k2 bool) error {
	if err := writeTrimesh(w, n); err != nil {
		return err
	}
	w.RawBytes(make([]byte, danglyRuntimeGap))
	d := n.Dangly
	w.Single(d.DisplacementMax)
	w.Single(d.DisplacementMin)
	w.Single(d.Period)
	w.Single(d.Tightness)
	w.RawBytes(vec3Bytes(d.ForcePoint))
	w.Single(d.ForceRadius)
	w.Uint32(d.ForceType)
	var constraintFlags uint32
	if d.ConstrainX {
		constraintFlags |= 0x1
	}
	if d.ConstrainY {
		constraintFlags |= 0x2
	}
	if d.ConstrainZ {
		constraintFlags |= 0x4
	}
	w.Uint32(constraintFlags)

	dispAt := w.Len()
	writeArrayDef(w, arrayDef{})
	constraintsAt := w.Len()
	writeArrayDef(w, arrayDef{})
	dispMapAt := w.Len()
	writeArrayDef(w, arrayDef{})

	dispOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range d.Displacements {
		w.Single(v)
	}
	constraintsOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range d.Constraints {
		w.RawBytes(vec3Bytes(v))
	}
	dispMapOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range d.DisplacementMap {
		w.Single(v)
	}

	out := w.Bytes()
	patchArrayDef(out, dispAt, arrayDef{Offset: dispOffset, Count: uint32(len(d.Displacements))})
	patchArrayDef(out, constraintsAt, arrayDef{Offset: constraintsOffset, Count: uint32(len(d.Constraints))})
	patchArrayDef(out, dispMapAt, arrayDef{Offset: dispMapOffset, Count: uint32(len(d.DisplacementMap))})
	return nil
}

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

// AnimationEvent fires a named script event (footstep, sound cue, combat
// hit) at a point in an animation's timeline.
type AnimationEvent struct {
	Time float32
	Name string
}

// Animation is one named clip: a GeometryHeader identical in shape to the
// model's own, a node tree mirroring the model's node_number assignments,
// and a list of timed events. Every animation node's Controllers hold the
// clip's keyframes rather than static defaults.
type Animation struct {
	Geometry        GeometryHeader
	Length          float32
	TransitionTime  float32
	Events          []AnimationEvent
	Root            *Node
}

func readAnimation(r *bread.Reader, offset uint32, names []string, fileSize int64) (*Animation, error) {
	r.SetPosition(fileHeaderSize + int64(offset))
	geom, err := readGeometryHeader(r)
	if err != nil {
		return nil, err
	}
	a := &Animation{Geometry: geom}
	if a.Length, err = r.Single(); err != nil {
		return nil, err
	}
	if a.TransitionTime, err = r.Single(); err != nil {
		return nil, err
	}
	eventsArr, err := readArrayDef(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Uint32(); err != nil { // unknown
		return nil, err
	}

	if eventsArr.Count > 0 {
		r.SetPosition(fileHeaderSize + int64(eventsArr.Offset))
		a.Events = make([]AnimationEvent, eventsArr.Count)
		for i := range a.Events {
			t, err := r.Single()
			if err != nil {
				return nil, err
			}
			name, err := r.String(32)
			if err != nil {
				return nil, err
			}
			a.Events[i] = AnimationEvent{Time: t, Name: trimNUL(name)}
		}
	}

	byOffset := make(map[uint32]*Node)
	root, err := readNodeTree(r, geom.RootNodeOffset, names, byOffset, fileSize)
	if err != nil {
		return nil, fmt.Errorf("animation %q: %w", geom.Name, err)
	}
	a.Root = root
	return a, nil
}

func writeAnimation(w *bread.Writer, a *Animation, nameIndex map[string]uint32, k2 bool) error {
	start := w.Len()
	writeGeometryHeader(w, GeometryHeader{
		Name:      a.Geometry.Name,
		NodeCount: uint32(countNodes(a.Root)),
		AABBMin:   a.Geometry.AABBMin,
		AABBMax:   a.Geometry.AABBMax,
		Radius:    a.Geometry.Radius,
	})
	rootOffsetFieldAt := start + 4 + 4 + 32

	w.Single(a.Length)
	w.Single(a.TransitionTime)
	eventsAt := w.Len()
	writeArrayDef(w, arrayDef{})
	w.Uint32(0) // unknown

	eventsOffset := uint32(w.Len() - fileHeaderSize)
	for _, e := range a.Events {
		w.Single(e.Time)
		w.PaddedString(e.Name, 32)
	}

	rootOffset := uint32(w.Len() - fileHeaderSize)
	assignNodeNumbers(a.Root, 0)
	if err := writeNodeTree(w, a.Root, nameIndex, k2); err != nil {
		return fmt.Errorf("animation %q: %w", a.Geometry.Name, err)
	}

	out := w.Bytes()
	patchArrayDef(out, eventsAt, arrayDef{Offset: eventsOffset, Count: uint32(len(a.Events))})
	patchUint32(out, rootOffsetFieldAt, rootOffset)
	return nil
}

// Sample evaluates c at time t, linearly interpolating between the two
// surrounding rows. ORIENTATION rows go through slerp, which only adds a
// dot-product sign flip (shortest arc) before the same linear blend.
func (c Controller) Sample(t float32) []float32 {
	if len(c.Rows) == 0 {
		return nil
	}
	if t <= c.Rows[0].Time {
		return c.Rows[0].Values
	}
	last := c.Rows[len(c.Rows)-1]
	if t >= last.Time {
		return last.Values
	}
	for i := 1; i < len(c.Rows); i++ {
		if t > c.Rows[i].Time {
			continue
		}
		prev, next := c.Rows[i-1], c.Rows[i]
		span := next.Time - prev.Time
		frac := float32(0)
		if span > 0 {
			frac = (t - prev.Time) / span
		}
		if c.Type == ControllerOrientation {
			return slerp(prev.Values, next.Values, frac)
		}
		return lerp(prev.Values, next.Values, frac)
	}
	return last.Values
}

func lerp(a, b []float32, t float32) []float32 {
	out := make([]float32, len(a))
	for i := range a {
		bv := float32(0)
		if i < len(b) {
			bv = b[i]
		}
		out[i] = a[i] + (bv-a[i])*t
	}
	return out
}

// slerp interpolates two quaternions {x, y, z, w}, flipping the sign of
// b when the dot product is negative so interpolation takes the shorter
// arc, then blends component-wise linearly for every t. The result is not
// renormalized.
func slerp(a, b []float32, t float32) []float32 {
	if len(a) != 4 || len(b) != 4 {
		return lerp(a, b, t)
	}
	bb := append([]float32(nil), b...)
	dot := a[0]*bb[0] + a[1]*bb[1] + a[2]*bb[2] + a[3]*bb[3]
	if dot < 0 {
		for i := range bb {
			bb[i] = -bb[i]
		}
	}
	return lerp(a, bb, t)
}

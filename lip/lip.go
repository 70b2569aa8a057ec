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
// Package lip implements the LIP format: a keyframed sequence of mouth
// shapes driving a creature's lip-sync animation.
package lip

import (
	"fmt"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
)

// Shape is a viseme index into the engine's fixed mouth-shape table.
type Shape uint8

// Keyframe pins a Shape to a point in time, in seconds from the start of
// the associated audio.
type Keyframe struct {
	Time  float32
	Shape Shape
}

// Animation is a full LIP document.
type Animation struct {
	Length    float32
	Keyframes []Keyframe
}

const magic = "LIP V1.0"

// Read parses a binary LIP document.
func Read(buf []byte) (*Animation, error) {
	r := bread.NewReader(buf)
	header, err := r.String(8)
	if err != nil {
		return nil, fmt.Errorf("lip: reading header: %w", err)
	}
	if header != magic {
		return nil, fmt.Errorf("lip: bad magic %q: %w", header, kerr.ErrBadMagic)
	}
	length, err := r.Single()
	if err != nil {
		return nil, fmt.Errorf("lip: reading length: %w", err)
	}
	count, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("lip: reading keyframe count: %w", err)
	}

	keyframes := make([]Keyframe, count)
	for i := range keyframes {
		t, err := r.Single()
		if err != nil {
			return nil, fmt.Errorf("lip: keyframe %d time: %w", i, err)
		}
		shape, err := r.Uint8()
		if err != nil {
			return nil, fmt.Errorf("lip: keyframe %d shape: %w", i, err)
		}
		keyframes[i] = Keyframe{Time: t, Shape: Shape(shape)}
	}
	return &Animation{Length: length, Keyframes: keyframes}, nil
}

// Write serializes a to the binary LIP layout.
func Write(a *Animation) ([]byte, error) {
	w := bread.NewWriter()
	w.String(magic)
	w.Single(a.Length)
	w.Uint32(uint32(len(a.Keyframes)))
	for _, k := range a.Keyframes {
		w.Single(k.Time)
		w.Uint8(uint8(k.Shape))
	}
	return w.Bytes(), nil
}

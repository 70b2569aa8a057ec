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

// Light is a point or spot light node's properties.
type Light struct {
	FlareRadius                           float32
	Multiplier                            float32
	Priority                              uint32
	AmbientOnly                           bool
	LightType                             uint32
	AffectDynamic, Shadow, HasFlare, Fading bool

	InnerAngle, OuterAngle, SpotFalloff float32
	Color, AmbientColor                 [3]float32
	Radius, FadeAmount, FadeRadius      float32
	Period, Interval, Phase             float32

	FlareSizes        []float32
	FlarePositions    []float32
	FlareColorShifts  [][3]float32
	FlareTextures     []string

	Dynamic, HologramEffect bool
}

func readLight(r *bread.Reader, n *Node, names []string) error {
	l := &Light{}
	var err error
	if l.FlareRadius, err = r.Single(); err != nil {
		return err
	}
	if l.Multiplier, err = r.Single(); err != nil {
		return err
	}
	if l.Priority, err = r.Uint32(); err != nil {
		return err
	}
	ambientOnly, err := r.Uint32()
	if err != nil {
		return err
	}
	l.AmbientOnly = ambientOnly != 0
	if l.LightType, err = r.Uint32(); err != nil {
		return err
	}
	affectDynamic, err := r.Uint32()
	if err != nil {
		return err
	}
	l.AffectDynamic = affectDynamic != 0
	shadow, err := r.Uint32()
	if err != nil {
		return err
	}
	l.Shadow = shadow != 0
	hasFlare, err := r.Uint32()
	if err != nil {
		return err
	}
	l.HasFlare = hasFlare != 0
	fading, err := r.Uint32()
	if err != nil {
		return err
	}
	l.Fading = fading != 0

	if l.InnerAngle, err = r.Single(); err != nil {
		return err
	}
	if l.OuterAngle, err = r.Single(); err != nil {
		return err
	}
	if l.SpotFalloff, err = r.Single(); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if l.Color[i], err = r.Single(); err != nil {
			return err
		}
	}
	for i := 0; i < 3; i++ {
		if l.AmbientColor[i], err = r.Single(); err != nil {
			return err
		}
	}
	if l.Radius, err = r.Single(); err != nil {
		return err
	}
	if l.FadeAmount, err = r.Single(); err != nil {
		return err
	}
	if l.FadeRadius, err = r.Single(); err != nil {
		return err
	}
	if l.Period, err = r.Single(); err != nil {
		return err
	}
	if l.Interval, err = r.Single(); err != nil {
		return err
	}
	if l.Phase, err = r.Single(); err != nil {
		return err
	}

	sizesArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	positionsArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	colorsArr, err := readArrayDef(r)
	if err != nil {
		return err
	}
	texArr, err := readArrayDef(r)
	if err != nil {
		return err
	}

	if sizesArr.Count > 0 {
		r.SetPosition(fileHeaderSize + int64(sizesArr.Offset))
		l.FlareSizes = make([]float32, sizesArr.Count)
		for i := range l.FlareSizes {
			if l.FlareSizes[i], err = r.Single(); err != nil {
				return err
			}
		}
	}
	if positionsArr.Count > 0 {
		r.SetPosition(fileHeaderSize + int64(positionsArr.Offset))
		l.FlarePositions = make([]float32, positionsArr.Count)
		for i := range l.FlarePositions {
			if l.FlarePositions[i], err = r.Single(); err != nil {
				return err
			}
		}
	}
	if colorsArr.Count > 0 {
		r.SetPosition(fileHeaderSize + int64(colorsArr.Offset))
		l.FlareColorShifts = make([][3]float32, colorsArr.Count/3)
		for i := range l.FlareColorShifts {
			for j := 0; j < 3; j++ {
				if l.FlareColorShifts[i][j], err = r.Single(); err != nil {
					return err
				}
			}
		}
	}
	if texArr.Count > 0 {
		r.SetPosition(fileHeaderSize + int64(texArr.Offset))
		l.FlareTextures = make([]string, 0, texArr.Count)
		for i := uint32(0); i < texArr.Count; i++ {
			idx, err := r.Uint32()
			if err != nil {
				return err
			}
			if int(idx) < len(names) {
				l.FlareTextures = append(l.FlareTextures, names[idx])
			}
		}
	}

	flags, err := r.Uint32()
	if err != nil {
		return err
	}
	l.Dynamic = flags&0x1 != 0
	l.AffectDynamic = flags&0x2 != 0 || l.AffectDynamic
	l.HologramEffect = flags&0x4 != 0

	n.Light = l
	return nil
}

func writeLight(w *bread.Writer, n *Node, nameIndex map[string]uint32) error {
	l := n.Light
	w.Single(l.FlareRadius)
	w.Single(l.Multiplier)
	w.Uint32(l.Priority)
	w.Uint32(boolU32(l.AmbientOnly))
	w.Uint32(l.LightType)
	w.Uint32(boolU32(l.AffectDynamic))
	w.Uint32(boolU32(l.Shadow))
	w.Uint32(boolU32(l.HasFlare))
	w.Uint32(boolU32(l.Fading))
	w.Single(l.InnerAngle)
	w.Single(l.OuterAngle)
	w.Single(l.SpotFalloff)
	for _, v := range l.Color {
		w.Single(v)
	}
	for _, v := range l.AmbientColor {
		w.Single(v)
	}
	w.Single(l.Radius)
	w.Single(l.FadeAmount)
	w.Single(l.FadeRadius)
	w.Single(l.Period)
	w.Single(l.Interval)
	w.Single(l.Phase)

	sizesAt := w.Len()
	writeArrayDef(w, arrayDef{})
	positionsAt := w.Len()
	writeArrayDef(w, arrayDef{})
	colorsAt := w.Len()
	writeArrayDef(w, arrayDef{})
	texAt := w.Len()
	writeArrayDef(w, arrayDef{})

	sizesOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range l.FlareSizes {
		w.Single(v)
	}
	positionsOffset := uint32(w.Len() - fileHeaderSize)
	for _, v := range l.FlarePositions {
		w.Single(v)
	}
	colorsOffset := uint32(w.Len() - fileHeaderSize)
	for _, c := range l.FlareColorShifts {
		for _, v := range c {
			w.Single(v)
		}
	}
	texOffset := uint32(w.Len() - fileHeaderSize)
	for _, tex := range l.FlareTextures {
		w.Uint32(nameIndex[tex])
	}

	var flags uint32
	if l.Dynamic {
		flags |= 0x1
	}
	if l.AffectDynamic {
		flags |= 0x2
	}
	if l.HologramEffect {
		flags |= 0x4
	}
	flagsAt := w.Len()
	w.Uint32(flags)
	_ = flagsAt

	out := w.Bytes()
	patchArrayDef(out, sizesAt, arrayDef{Offset: sizesOffset, Count: uint32(len(l.FlareSizes))})
	patchArrayDef(out, positionsAt, arrayDef{Offset: positionsOffset, Count: uint32(len(l.FlarePositions))})
	patchArrayDef(out, colorsAt, arrayDef{Offset: colorsOffset, Count: uint32(len(l.FlareColorShifts) * 3)})
	patchArrayDef(out, texAt, arrayDef{Offset: texOffset, Count: uint32(len(l.FlareTextures))})
	return nil
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

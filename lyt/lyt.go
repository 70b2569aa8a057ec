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
// Package lyt implements the LYT module layout format: an ASCII listing of
// rooms, tracks, obstacles, and door hooks.
package lyt

import (
	"fmt"
	"strconv"
	"strings"

	"go.kotor.dev/korf/internal/bread"
)

// Placeable is a model name positioned in world space, the shape shared by
// rooms, tracks, and obstacles.
type Placeable struct {
	Model    string
	Position bread.Vector3
}

// DoorHook anchors a door placeable to a room by name, with its own
// position and orientation.
type DoorHook struct {
	Room        string
	Door        string
	Position    bread.Vector3
	Orientation bread.Vector4
}

// Layout is a full LYT document.
type Layout struct {
	Rooms     []Placeable
	Tracks    []Placeable
	Obstacles []Placeable
	DoorHooks []DoorHook
}

const (
	keyRoomCount     = "roomcount"
	keyTrackCount    = "trackcount"
	keyObstacleCount = "obstaclecount"
	keyDoorHookCount = "doorhookcount"
)

// Read parses an ASCII LYT document. It tolerates arbitrary whitespace
// between tokens and CRLF or LF line endings.
func Read(buf []byte) (*Layout, error) {
	lines := strings.Split(strings.ReplaceAll(string(buf), "\r\n", "\n"), "\n")
	l := &Layout{}
	i := 0
	next := func() (string, bool) {
		for i < len(lines) {
			line := strings.TrimSpace(lines[i])
			i++
			if line != "" {
				return line, true
			}
		}
		return "", false
	}

	for {
		line, ok := next()
		if !ok {
			break
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case keyRoomCount:
			n, err := parseCount(tokens)
			if err != nil {
				return nil, fmt.Errorf("lyt: %s: %w", keyRoomCount, err)
			}
			for k := 0; k < n; k++ {
				line, ok := next()
				if !ok {
					return nil, fmt.Errorf("lyt: expected %d room lines", n)
				}
				p, err := parsePlaceable(line)
				if err != nil {
					return nil, fmt.Errorf("lyt: room %d: %w", k, err)
				}
				l.Rooms = append(l.Rooms, p)
			}
		case keyTrackCount:
			n, err := parseCount(tokens)
			if err != nil {
				return nil, fmt.Errorf("lyt: %s: %w", keyTrackCount, err)
			}
			for k := 0; k < n; k++ {
				line, ok := next()
				if !ok {
					return nil, fmt.Errorf("lyt: expected %d track lines", n)
				}
				p, err := parsePlaceable(line)
				if err != nil {
					return nil, fmt.Errorf("lyt: track %d: %w", k, err)
				}
				l.Tracks = append(l.Tracks, p)
			}
		case keyObstacleCount:
			n, err := parseCount(tokens)
			if err != nil {
				return nil, fmt.Errorf("lyt: %s: %w", keyObstacleCount, err)
			}
			for k := 0; k < n; k++ {
				line, ok := next()
				if !ok {
					return nil, fmt.Errorf("lyt: expected %d obstacle lines", n)
				}
				p, err := parsePlaceable(line)
				if err != nil {
					return nil, fmt.Errorf("lyt: obstacle %d: %w", k, err)
				}
				l.Obstacles = append(l.Obstacles, p)
			}
		case keyDoorHookCount:
			n, err := parseCount(tokens)
			if err != nil {
				return nil, fmt.Errorf("lyt: %s: %w", keyDoorHookCount, err)
			}
			for k := 0; k < n; k++ {
				line, ok := next()
				if !ok {
					return nil, fmt.Errorf("lyt: expected %d door hook lines", n)
				}
				dh, err := parseDoorHook(line)
				if err != nil {
					return nil, fmt.Errorf("lyt: doorhook %d: %w", k, err)
				}
				l.DoorHooks = append(l.DoorHooks, dh)
			}
		}
	}
	return l, nil
}

func parseCount(tokens []string) (int, error) {
	if len(tokens) < 2 {
		return 0, fmt.Errorf("missing count")
	}
	return strconv.Atoi(tokens[1])
}

func parsePlaceable(line string) (Placeable, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 4 {
		return Placeable{}, fmt.Errorf("expected model + 3 coordinates, got %q", line)
	}
	x, err := strconv.ParseFloat(tokens[1], 32)
	if err != nil {
		return Placeable{}, err
	}
	y, err := strconv.ParseFloat(tokens[2], 32)
	if err != nil {
		return Placeable{}, err
	}
	z, err := strconv.ParseFloat(tokens[3], 32)
	if err != nil {
		return Placeable{}, err
	}
	return Placeable{Model: tokens[0], Position: bread.Vector3{X: float32(x), Y: float32(y), Z: float32(z)}}, nil
}

// parseDoorHook parses "room door <unused> px py pz ox oy oz ow". The third
// token is always written as 0 and is ignored on read.
func parseDoorHook(line string) (DoorHook, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 10 {
		return DoorHook{}, fmt.Errorf("expected room, door, and 7 numeric fields, got %q", line)
	}
	floats := make([]float64, 7)
	for i := 0; i < 7; i++ {
		v, err := strconv.ParseFloat(tokens[i+3], 32)
		if err != nil {
			return DoorHook{}, err
		}
		floats[i] = v
	}
	return DoorHook{
		Room: tokens[0],
		Door: tokens[1],
		Position: bread.Vector3{
			X: float32(floats[0]), Y: float32(floats[1]), Z: float32(floats[2]),
		},
		Orientation: bread.Vector4{
			X: float32(floats[3]), Y: float32(floats[4]), Z: float32(floats[5]), W: float32(floats[6]),
		},
	}, nil
}

const (
	lineSep = "\r\n"
	indent  = "   "
)

// Write renders l to the ASCII LYT layout, matching the engine's expected
// indentation and line endings byte-for-byte.
func Write(l *Layout) ([]byte, error) {
	var b strings.Builder
	w := &b

	fmt.Fprintf(w, "beginlayout%s", lineSep)

	fmt.Fprintf(w, "%s%s %d%s", indent, keyRoomCount, len(l.Rooms), lineSep)
	for _, r := range l.Rooms {
		fmt.Fprintf(w, "%s%s %s %s %s%s", indent+indent, r.Model, formatFloat(r.Position.X), formatFloat(r.Position.Y), formatFloat(r.Position.Z), lineSep)
	}

	fmt.Fprintf(w, "%s%s %d%s", indent, keyTrackCount, len(l.Tracks), lineSep)
	for _, t := range l.Tracks {
		fmt.Fprintf(w, "%s%s %s %s %s%s", indent+indent, t.Model, formatFloat(t.Position.X), formatFloat(t.Position.Y), formatFloat(t.Position.Z), lineSep)
	}

	fmt.Fprintf(w, "%s%s %d%s", indent, keyObstacleCount, len(l.Obstacles), lineSep)
	for _, o := range l.Obstacles {
		fmt.Fprintf(w, "%s%s %s %s %s%s", indent+indent, o.Model, formatFloat(o.Position.X), formatFloat(o.Position.Y), formatFloat(o.Position.Z), lineSep)
	}

	fmt.Fprintf(w, "%s%s %d%s", indent, keyDoorHookCount, len(l.DoorHooks), lineSep)
	for _, dh := range l.DoorHooks {
		fmt.Fprintf(w, "%s%s %s 0 %s %s %s %s %s %s %s%s",
			indent+indent, dh.Room, dh.Door,
			formatFloat(dh.Position.X), formatFloat(dh.Position.Y), formatFloat(dh.Position.Z),
			formatFloat(dh.Orientation.X), formatFloat(dh.Orientation.Y), formatFloat(dh.Orientation.Z), formatFloat(dh.Orientation.W),
			lineSep)
	}

	fmt.Fprint(w, "donelayout")
	return []byte(b.String()), nil
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

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
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/resref"
)

// ReadASCII parses the MDLOps-compatible textual interchange form: tokens
// like "node trimesh NAME", "verts N { ... }", "faces N { ... }",
// "beginmodelgeom"/"endmodelgeom". Variable whitespace is tolerated and
// "#"-prefixed comments are skipped. Only the dummy and trimesh node
// kinds round trip through ASCII; the rest of the node zoo (skin, dangly,
// AABB, saber, light, emitter, reference) is a binary-only concern in
// every ASCII-producing tool this format actually interoperates with.
func ReadASCII(data []byte) (*Model, error) {
	lines, err := tokenizeASCII(data)
	if err != nil {
		return nil, err
	}
	p := &asciiParser{lines: lines}
	return p.parseModel()
}

type asciiParser struct {
	lines [][]string
	pos   int
}

func tokenizeASCII(data []byte) ([][]string, error) {
	var lines [][]string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mdl: ascii: %w", err)
	}
	return lines, nil
}

func (p *asciiParser) peek() []string {
	if p.pos >= len(p.lines) {
		return nil
	}
	return p.lines[p.pos]
}

func (p *asciiParser) next() []string {
	l := p.peek()
	p.pos++
	return l
}

func (p *asciiParser) parseModel() (*Model, error) {
	m := &Model{}
	nodesByName := make(map[string]*Node)
	var parentOf = make(map[string]string)
	var allNames []string

	for {
		l := p.next()
		if l == nil {
			break
		}
		switch l[0] {
		case "newmodel":
			if len(l) > 1 {
				m.Geometry.Name = l[1]
			}
		case "setsupermodel":
			if len(l) > 2 {
				ref, _ := resref.New(l[2])
				m.SuperModel = ref
			}
		case "classification":
			if len(l) > 1 {
				m.Classification = classificationFromASCII(l[1])
			}
		case "beginmodelgeom", "endmodelgeom", "donemodel":
			// structural markers only
		case "node":
			if len(l) < 3 {
				return nil, fmt.Errorf("mdl: ascii: malformed node line %q", strings.Join(l, " "))
			}
			n, err := p.parseNode(l[1], l[2], parentOf)
			if err != nil {
				return nil, err
			}
			nodesByName[n.Name] = n
			allNames = append(allNames, n.Name)
		case "beginanim":
			anim, err := p.parseAnimation()
			if err != nil {
				return nil, err
			}
			m.Animations = append(m.Animations, anim)
		}
	}

	// Link parents recorded while parsing each node body.
	for name, parent := range parentOf {
		child, ok1 := nodesByName[name]
		par, ok2 := nodesByName[parent]
		if ok1 && ok2 {
			par.Children = append(par.Children, child)
		}
	}
	for _, name := range allNames {
		if n, ok := nodesByName[name]; ok && n.Name == m.Geometry.Name {
			m.Root = n
		}
	}
	if m.Root == nil {
		for _, name := range allNames {
			if parentOf[name] == "" {
				m.Root = nodesByName[name]
				break
			}
		}
	}
	return m, nil
}

func (p *asciiParser) parseNode(kind, name string, parentOf map[string]string) (*Node, error) {
	n := &Node{Name: name, Flags: nodeFlagsFromASCII(kind)}
	var mesh *Trimesh
	if n.Flags.Has(NodeMesh) {
		mesh = &Trimesh{HasVertex: true, HasUV1: true}
		n.Mesh = mesh
	}
	for {
		l := p.next()
		if l == nil {
			return nil, fmt.Errorf("mdl: ascii: unterminated node %q", name)
		}
		switch l[0] {
		case "endnode":
			return n, nil
		case "parent":
			if len(l) > 1 {
				parentOf[name] = l[1]
			}
		case "position":
			if len(l) == 4 {
				n.Position = parseVec3(l[1:])
			}
		case "orientation":
			if len(l) == 5 {
				x, _ := strconv.ParseFloat(l[1], 32)
				y, _ := strconv.ParseFloat(l[2], 32)
				z, _ := strconv.ParseFloat(l[3], 32)
				w, _ := strconv.ParseFloat(l[4], 32)
				n.Orientation.X, n.Orientation.Y, n.Orientation.Z, n.Orientation.W =
					float32(x), float32(y), float32(z), float32(w)
			}
		case "verts":
			if mesh == nil || len(l) < 2 {
				continue
			}
			count, _ := strconv.Atoi(l[1])
			for i := 0; i < count; i++ {
				row := p.next()
				if row == nil || len(row) < 3 {
					return nil, fmt.Errorf("mdl: ascii: short vertex row in %q", name)
				}
				mesh.Vertices = append(mesh.Vertices, Vertex{Position: parseVec3(row)})
			}
		case "tverts":
			if mesh == nil || len(l) < 2 {
				continue
			}
			count, _ := strconv.Atoi(l[1])
			for i := 0; i < count; i++ {
				row := p.next()
				if row == nil || len(row) < 2 {
					return nil, fmt.Errorf("mdl: ascii: short tvert row in %q", name)
				}
				u, _ := strconv.ParseFloat(row[0], 32)
				v, _ := strconv.ParseFloat(row[1], 32)
				if i < len(mesh.Vertices) {
					mesh.Vertices[i].UV1 = [2]float32{float32(u), float32(v)}
				}
			}
		case "faces":
			if mesh == nil || len(l) < 2 {
				continue
			}
			count, _ := strconv.Atoi(l[1])
			for i := 0; i < count; i++ {
				row := p.next()
				if row == nil || len(row) < 7 {
					return nil, fmt.Errorf("mdl: ascii: short face row in %q", name)
				}
				var f Face
				v1, _ := strconv.Atoi(row[0])
				v2, _ := strconv.Atoi(row[1])
				v3, _ := strconv.Atoi(row[2])
				f.Indices = [3]uint32{uint32(v1), uint32(v2), uint32(v3)}
				mat, _ := strconv.Atoi(row[6])
				f.MaterialID = uint32(mat)
				mesh.Faces = append(mesh.Faces, f)
			}
		}
	}
}

func (p *asciiParser) parseAnimation() (*Animation, error) {
	a := &Animation{}
	parentOf := make(map[string]string)
	nodesByName := make(map[string]*Node)
	var names []string
loop:
	for {
		l := p.next()
		if l == nil {
			break
		}
		switch l[0] {
		case "doneanim":
			break loop
		case "length":
			if len(l) > 1 {
				v, _ := strconv.ParseFloat(l[1], 32)
				a.Length = float32(v)
			}
		case "transtime":
			if len(l) > 1 {
				v, _ := strconv.ParseFloat(l[1], 32)
				a.TransitionTime = float32(v)
			}
		case "node":
			if len(l) < 3 {
				continue
			}
			n, err := p.parseNode(l[1], l[2], parentOf)
			if err != nil {
				return nil, err
			}
			nodesByName[n.Name] = n
			names = append(names, n.Name)
		}
	}

	for name, parent := range parentOf {
		child, ok1 := nodesByName[name]
		par, ok2 := nodesByName[parent]
		if ok1 && ok2 {
			par.Children = append(par.Children, child)
		}
	}
	for _, name := range names {
		if n, ok := nodesByName[name]; ok && parentOf[name] == "" {
			a.Root = n
			break
		}
	}
	return a, nil
}

// WriteASCII emits m in the canonical textual form: one node block per
// geometry node, depth-first, followed by one block per animation. The
// output is stable for a given model but is not expected to byte-match
// WriteASCII's own binary sibling.
func WriteASCII(m *Model) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "newmodel %s\n", m.Geometry.Name)
	fmt.Fprintf(&b, "setsupermodel %s %s\n", m.Geometry.Name, supermodelASCII(m.SuperModel.String()))
	fmt.Fprintf(&b, "classification %s\n", classificationASCII(m.Classification))
	b.WriteString("beginmodelgeom " + m.Geometry.Name + "\n")
	writeASCIINode(&b, m.Root, "", "")
	b.WriteString("endmodelgeom " + m.Geometry.Name + "\n")
	for _, a := range m.Animations {
		fmt.Fprintf(&b, "beginanim %s\n", a.Geometry.Name)
		fmt.Fprintf(&b, "  length %g\n", a.Length)
		fmt.Fprintf(&b, "  transtime %g\n", a.TransitionTime)
		writeASCIINode(&b, a.Root, "", "  ")
		b.WriteString("doneanim " + a.Geometry.Name + "\n")
	}
	b.WriteString("donemodel " + m.Geometry.Name + "\n")
	return b.Bytes()
}

// writeASCIINode emits n's own node/endnode block, flat (not nested
// inside its parent's block) since ReadASCII's parser tracks the tree
// shape purely through each child's own "parent NAME" line rather than
// through node/endnode indentation depth. Children follow as their own
// top-level blocks after n's block closes.
func writeASCIINode(b *bytes.Buffer, n *Node, parentName, indent string) {
	if n == nil {
		return
	}
	kind := asciiKindFromFlags(n.Flags)
	fmt.Fprintf(b, "%snode %s %s\n", indent, kind, n.Name)
	if parentName != "" {
		fmt.Fprintf(b, "%s  parent %s\n", indent, parentName)
	}
	fmt.Fprintf(b, "%s  position %g %g %g\n", indent, n.Position.X, n.Position.Y, n.Position.Z)
	fmt.Fprintf(b, "%s  orientation %g %g %g %g\n", indent, n.Orientation.X, n.Orientation.Y, n.Orientation.Z, n.Orientation.W)
	if n.Mesh != nil {
		fmt.Fprintf(b, "%s  verts %d\n", indent, len(n.Mesh.Vertices))
		for _, v := range n.Mesh.Vertices {
			fmt.Fprintf(b, "%s    %g %g %g\n", indent, v.Position.X, v.Position.Y, v.Position.Z)
		}
		fmt.Fprintf(b, "%s  tverts %d\n", indent, len(n.Mesh.Vertices))
		for _, v := range n.Mesh.Vertices {
			fmt.Fprintf(b, "%s    %g %g\n", indent, v.UV1[0], v.UV1[1])
		}
		fmt.Fprintf(b, "%s  faces %d\n", indent, len(n.Mesh.Faces))
		for _, f := range n.Mesh.Faces {
			fmt.Fprintf(b, "%s    %d %d %d  0 0 0  %d\n", indent, f.Indices[0], f.Indices[1], f.Indices[2], f.MaterialID)
		}
	}
	fmt.Fprintf(b, "%sendnode\n", indent)
	for _, c := range n.Children {
		writeASCIINode(b, c, n.Name, indent)
	}
}

func parseVec3(fields []string) bread.Vector3 {
	x, _ := strconv.ParseFloat(fields[0], 32)
	y, _ := strconv.ParseFloat(fields[1], 32)
	z, _ := strconv.ParseFloat(fields[2], 32)
	return bread.Vector3{X: float32(x), Y: float32(y), Z: float32(z)}
}

func nodeFlagsFromASCII(kind string) NodeFlags {
	switch kind {
	case "trimesh", "mesh":
		return NodeMesh
	case "danglymesh":
		return NodeMesh | NodeDangly
	case "skin":
		return NodeMesh | NodeSkin
	case "aabb":
		return NodeAABB
	case "saber":
		return NodeSaber
	case "light":
		return NodeLight
	case "emitter":
		return NodeEmitter
	case "reference":
		return NodeReference
	default:
		return NodeDummy
	}
}

func asciiKindFromFlags(f NodeFlags) string {
	switch {
	case f.Has(NodeSkin):
		return "skin"
	case f.Has(NodeDangly):
		return "danglymesh"
	case f.Has(NodeMesh):
		return "trimesh"
	case f.Has(NodeAABB):
		return "aabb"
	case f.Has(NodeSaber):
		return "saber"
	case f.Has(NodeLight):
		return "light"
	case f.Has(NodeEmitter):
		return "emitter"
	case f.Has(NodeReference):
		return "reference"
	default:
		return "dummy"
	}
}

func classificationFromASCII(s string) Classification {
	switch strings.ToLower(s) {
	case "effect":
		return ClassificationEffect
	case "tile":
		return ClassificationTile
	case "character":
		return ClassificationCharacter
	case "door":
		return ClassificationDoor
	case "lightsaber":
		return ClassificationLightsaber
	case "placeable":
		return ClassificationPlaceable
	case "flyer":
		return ClassificationFlyer
	default:
		return ClassificationOther
	}
}

func classificationASCII(c Classification) string {
	switch c {
	case ClassificationEffect:
		return "effect"
	case ClassificationTile:
		return "tile"
	case ClassificationCharacter:
		return "character"
	case ClassificationDoor:
		return "door"
	case ClassificationLightsaber:
		return "lightsaber"
	case ClassificationPlaceable:
		return "placeable"
	case ClassificationFlyer:
		return "flyer"
	default:
		return "other"
	}
}

func supermodelASCII(s string) string {
	if s == "" {
		return "null"
	}
	return s
}

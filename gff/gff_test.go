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

package gff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleUTP() *Tree {
	root := NewStruct(0)
	root.SetExoString("Tag", "SecLoc")
	root.SetResRef("TemplateResRef", "lockerlg002")
	root.SetUInt8("Lockable", 0)
	root.SetUInt8("Locked", 1)

	item1 := NewStruct(0)
	item1.SetResRef("InventoryRes", "g_w_iongren01")
	item1.SetVector3("Position", Vector3{X: 0, Y: 0, Z: 0})

	item2 := NewStruct(0)
	item2.SetResRef("InventoryRes", "g_w_iongren02")
	item2.SetVector3("Position", Vector3{X: 1, Y: 0, Z: 0})
	item2.SetUInt8("Droppable", 1)

	root.SetList("ItemList", []*Struct{item1, item2})
	return &Tree{FileType: "UTP ", Root: root}
}

func TestRoundTripBinary(t *testing.T) {
	tree := sampleUTP()
	data, err := Write(tree)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(tree, got, cmp.AllowUnexported(Struct{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if string(data) != string(data2) {
		t.Errorf("writer is not deterministic across a read/write cycle")
	}
}

func TestRoundTripXML(t *testing.T) {
	tree := sampleUTP()
	xmlData, err := WriteXML(tree)
	if err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	got, err := ReadXML(xmlData)
	if err != nil {
		t.Fatalf("ReadXML: %v", err)
	}
	if diff := cmp.Diff(tree, got, cmp.AllowUnexported(Struct{})); diff != "" {
		t.Errorf("xml round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripJSON(t *testing.T) {
	tree := sampleUTP()
	jsonData, err := WriteJSON(tree)
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(jsonData)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if diff := cmp.Diff(tree, got, cmp.AllowUnexported(Struct{})); diff != "" {
		t.Errorf("json round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateDepthLimit(t *testing.T) {
	root := NewStruct(0)
	cur := root
	for i := 0; i < MaxDepth+2; i++ {
		child := NewStruct(0)
		cur.SetStruct("Nested", child)
		cur = child
	}
	err := Validate(&Tree{FileType: "TST ", Root: root})
	if err == nil {
		t.Fatal("expected a validation error for excessive struct depth")
	}
}

func TestSetOverwritesDuplicateLabel(t *testing.T) {
	// Set() de-duplicates in-struct, so this exercises that Get after two
	// Sets with the same label returns the latest value, not a duplicate.
	s := NewStruct(0)
	s.SetUInt8("Foo", 1)
	s.SetUInt8("Foo", 2)
	if len(s.Fields()) != 1 {
		t.Fatalf("expected 1 field after overwrite, got %d", len(s.Fields()))
	}
	if got := s.Get("Foo").Value.(uint8); got != 2 {
		t.Fatalf("expected overwritten value 2, got %d", got)
	}
}

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

package ncs

import (
	"bytes"
	"strings"
	"testing"
)

func sampleProgram() *Program {
	// RSADD; CONSTI 5; CONSTI 7; ADD; RETN
	instrs := []Instruction{
		{Offset: 0, Op: OpRSADD, Type: TypeInt},
		{Offset: 2, Op: OpCONST, Type: TypeInt, IntValue: 5},
		{Offset: 8, Op: OpCONST, Type: TypeInt, IntValue: 7},
		{Offset: 14, Op: OpADD, Type: TypeIntInt},
		{Offset: 16, Op: OpRETN, Type: TypeNone},
	}
	return &Program{Instructions: instrs}
}

func TestRoundTripBinary(t *testing.T) {
	p := sampleProgram()
	data, err := Write(p)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(data[0:4]) != "NCS " || string(data[4:8]) != "V1.0" {
		t.Fatalf("unexpected header: %q", data[0:8])
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Instructions) != len(p.Instructions) {
		t.Fatalf("got %d instructions, want %d", len(got.Instructions), len(p.Instructions))
	}
	if got.Instructions[1].IntValue != 5 || got.Instructions[2].IntValue != 7 {
		t.Errorf("CONST operands did not round trip: %+v", got.Instructions[1:3])
	}
	if got.Instructions[4].Op != OpRETN {
		t.Errorf("expected tail RETN, got %v", got.Instructions[4].Op)
	}

	data2, err := Write(got)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Errorf("writer is not byte-stable")
	}
}

func TestRejectsBadMagic(t *testing.T) {
	data, _ := Write(sampleProgram())
	data[0] = 'X'
	if _, err := Read(data); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestValidateAcceptsWellFormedScript(t *testing.T) {
	if err := Validate(sampleProgram()); err != nil {
		t.Errorf("expected valid script, got %v", err)
	}
}

func TestValidateFlagsRetnNotAtTail(t *testing.T) {
	p := sampleProgram()
	p.Instructions = append([]Instruction{p.Instructions[0], {Offset: 2, Op: OpRETN}}, p.Instructions[1:]...)
	err := Validate(p)
	if err == nil {
		t.Fatal("expected error for misplaced RETN")
	}
	if !strings.Contains(err.Error(), "not at end") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateFlagsOutOfBoundsJump(t *testing.T) {
	p := &Program{Instructions: []Instruction{
		{Offset: 0, Op: OpJMP, JumpOffset: 9999},
		{Offset: 6, Op: OpRETN},
	}}
	err := Validate(p)
	if err == nil {
		t.Fatal("expected error for out-of-bounds jump target")
	}
	if !strings.Contains(err.Error(), "invalid location") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateFlagsExcessiveNOPs(t *testing.T) {
	instrs := make([]Instruction, 0, 12)
	for i := 0; i < 12; i++ {
		instrs = append(instrs, Instruction{Offset: i * 2, Op: OpNOP})
	}
	instrs = append(instrs, Instruction{Offset: 24, Op: OpRETN})
	err := Validate(&Program{Instructions: instrs})
	if err == nil {
		t.Fatal("expected error for long NOP run")
	}
	if !strings.Contains(err.Error(), "no-op") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateAcceptsValidForwardJump(t *testing.T) {
	p := &Program{Instructions: []Instruction{
		{Offset: 0, Op: OpJMP, JumpOffset: 6},
		{Offset: 6, Op: OpNOP},
		{Offset: 8, Op: OpRETN},
	}}
	if err := Validate(p); err != nil {
		t.Errorf("expected valid jump target, got %v", err)
	}
}

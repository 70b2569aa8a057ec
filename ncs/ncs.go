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
// Package ncs implements the NCS compiled-script format and a pseudo-VM
// validator: the instruction set and operand encoding for the Aurora
// scripting engine's stack machine.
package ncs

import (
	"fmt"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
)

// Opcode is one NCS instruction opcode byte.
type Opcode uint8

// The instruction set, per the Aurora engine's NWScript virtual machine.
const (
	OpCPDOWNSP Opcode = 0x01
	OpRSADD    Opcode = 0x02
	OpCPTOPSP  Opcode = 0x03
	OpCONST    Opcode = 0x04
	OpACTION   Opcode = 0x05
	OpLOGAND   Opcode = 0x06
	OpLOGOR    Opcode = 0x07
	OpINCOR    Opcode = 0x08
	OpEXCOR    Opcode = 0x09
	OpBOOLAND  Opcode = 0x0A
	OpEQUAL    Opcode = 0x0B
	OpNEQUAL   Opcode = 0x0C
	OpGEQ      Opcode = 0x0D
	OpGT       Opcode = 0x0E
	OpLT       Opcode = 0x0F
	OpLEQ      Opcode = 0x10
	OpSHLEFT   Opcode = 0x11
	OpSHRIGHT  Opcode = 0x12
	OpUSHRIGHT Opcode = 0x13
	OpADD      Opcode = 0x14
	OpSUB      Opcode = 0x15
	OpMUL      Opcode = 0x16
	OpDIV      Opcode = 0x17
	OpMOD      Opcode = 0x18
	OpNEG      Opcode = 0x19
	OpCOMP     Opcode = 0x1A
	OpMOVSP    Opcode = 0x1B
	OpJMP      Opcode = 0x1D
	OpJSR      Opcode = 0x1E
	OpJZ       Opcode = 0x1F
	OpRETN     Opcode = 0x20
	OpDESTRUCT Opcode = 0x21
	OpNOT      Opcode = 0x22
	OpDECSP    Opcode = 0x23
	OpINCSP    Opcode = 0x24
	OpJNZ      Opcode = 0x25
	OpCPDOWNBP Opcode = 0x26
	OpCPTOPBP  Opcode = 0x27
	OpDECBP    Opcode = 0x28
	OpINCBP    Opcode = 0x29
	OpSAVEBP   Opcode = 0x2A
	OpRESTOREBP Opcode = 0x2B
	OpSTORESTATE Opcode = 0x2C
	OpNOP      Opcode = 0x2D
)

// TypeByte qualifies an instruction's operand shape (integer, float,
// string, object, or a struct-size pair for stack-relative copies).
type TypeByte uint8

const (
	TypeNone   TypeByte = 0x00
	TypeInt    TypeByte = 0x03
	TypeFloat  TypeByte = 0x04
	TypeString TypeByte = 0x05
	TypeObject TypeByte = 0x06
	TypeIntInt TypeByte = 0x20
	TypeFloatFloat TypeByte = 0x21
	TypeIntFloat TypeByte = 0x25
	TypeFloatInt TypeByte = 0x26
)

// Instruction is one decoded NCS instruction. Which operand fields are
// meaningful depends on Op; see Read/Write for the per-opcode layout.
type Instruction struct {
	Offset int // byte offset of this instruction in the stream, for jump targets

	Op   Opcode
	Type TypeByte

	IntValue    int32
	FloatValue  float32
	StringValue string
	ObjectValue int32

	StackOffset int32 // CPDOWNSP/CPTOPSP/CPDOWNBP/CPTOPBP
	Size        int16 // CPDOWNSP/CPTOPSP/CPDOWNBP/CPTOPBP/DESTRUCT operand 1

	JumpOffset int32 // JMP/JSR/JZ/JNZ, relative to this instruction's own offset

	Routine  uint16 // ACTION
	ArgCount uint8  // ACTION

	DestructSizeToRemove int16 // DESTRUCT
	DestructOffsetToSave int16 // DESTRUCT
	DestructSizeToSave   int16 // DESTRUCT
}

// Program is a full decoded NCS script.
type Program struct {
	Instructions []Instruction
}

const magic = "NCS "
const version = "V1.0"

// Read parses a binary NCS document.
func Read(buf []byte) (*Program, error) {
	r := bread.NewReader(buf)
	ft, err := r.String(4)
	if err != nil {
		return nil, fmt.Errorf("ncs: reading file type: %w", err)
	}
	if ft != magic {
		return nil, fmt.Errorf("ncs: bad magic %q: %w", ft, kerr.ErrBadMagic)
	}
	ver, err := r.String(4)
	if err != nil {
		return nil, err
	}
	if ver != version {
		return nil, fmt.Errorf("ncs: unsupported version %q: %w", ver, kerr.ErrUnsupportedVersion)
	}
	// One byte "T" program-size marker precedes a u32 total size (Write
	// emits it little-endian, like every other field);
	// the engine ignores its value on load, so we only skip it.
	if _, err := r.Bytes(5); err != nil {
		return nil, fmt.Errorf("ncs: reading size marker: %w", err)
	}

	var instrs []Instruction
	for r.Remaining() > 0 {
		offset := int(r.Position())
		opByte, err := r.Uint8()
		if err != nil {
			return nil, fmt.Errorf("ncs: instruction at %d: %w", offset, err)
		}
		typeByte, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		instr := Instruction{Offset: offset, Op: Opcode(opByte), Type: TypeByte(typeByte)}

		switch Opcode(opByte) {
		case OpCONST:
			switch TypeByte(typeByte) {
			case TypeInt:
				v, err := r.Int32()
				if err != nil {
					return nil, err
				}
				instr.IntValue = v
			case TypeFloat:
				v, err := r.Single()
				if err != nil {
					return nil, err
				}
				instr.FloatValue = v
			case TypeString:
				n, err := r.Uint16()
				if err != nil {
					return nil, err
				}
				s, err := r.String(int(n))
				if err != nil {
					return nil, err
				}
				instr.StringValue = s
			case TypeObject:
				v, err := r.Int32()
				if err != nil {
					return nil, err
				}
				instr.ObjectValue = v
			}
		case OpACTION:
			routine, err := r.Uint16()
			if err != nil {
				return nil, err
			}
			argc, err := r.Uint8()
			if err != nil {
				return nil, err
			}
			instr.Routine, instr.ArgCount = routine, argc
		case OpCPDOWNSP, OpCPTOPSP, OpCPDOWNBP, OpCPTOPBP:
			off, err := r.Int32()
			if err != nil {
				return nil, err
			}
			size, err := r.Int16()
			if err != nil {
				return nil, err
			}
			instr.StackOffset, instr.Size = off, size
		case OpMOVSP, OpDECSP, OpINCSP, OpDECBP, OpINCBP:
			off, err := r.Int32()
			if err != nil {
				return nil, err
			}
			instr.StackOffset = off
		case OpJMP, OpJSR, OpJZ, OpJNZ:
			off, err := r.Int32()
			if err != nil {
				return nil, err
			}
			instr.JumpOffset = off
		case OpDESTRUCT:
			remove, err := r.Int16()
			if err != nil {
				return nil, err
			}
			saveOff, err := r.Int16()
			if err != nil {
				return nil, err
			}
			saveSize, err := r.Int16()
			if err != nil {
				return nil, err
			}
			instr.DestructSizeToRemove, instr.DestructOffsetToSave, instr.DestructSizeToSave = remove, saveOff, saveSize
		case OpEQUAL, OpNEQUAL:
			if typeByte == uint8(TypeIntInt) || typeByte >= 0x20 {
				// Struct comparisons carry a total size operand.
				size, err := r.Int16()
				if err == nil {
					instr.Size = size
				}
			}
		}
		instrs = append(instrs, instr)
	}
	return &Program{Instructions: instrs}, nil
}

// Write serializes p to the binary NCS layout.
func Write(p *Program) ([]byte, error) {
	body := bread.NewWriter()
	for _, instr := range p.Instructions {
		body.Uint8(uint8(instr.Op))
		body.Uint8(uint8(instr.Type))
		switch instr.Op {
		case OpCONST:
			switch instr.Type {
			case TypeInt:
				body.Int32(instr.IntValue)
			case TypeFloat:
				body.Single(instr.FloatValue)
			case TypeString:
				body.Uint16(uint16(len(instr.StringValue)))
				body.String(instr.StringValue)
			case TypeObject:
				body.Int32(instr.ObjectValue)
			}
		case OpACTION:
			body.Uint16(instr.Routine)
			body.Uint8(instr.ArgCount)
		case OpCPDOWNSP, OpCPTOPSP, OpCPDOWNBP, OpCPTOPBP:
			body.Int32(instr.StackOffset)
			body.Int16(instr.Size)
		case OpMOVSP, OpDECSP, OpINCSP, OpDECBP, OpINCBP:
			body.Int32(instr.StackOffset)
		case OpJMP, OpJSR, OpJZ, OpJNZ:
			body.Int32(instr.JumpOffset)
		case OpDESTRUCT:
			body.Int16(instr.DestructSizeToRemove)
			body.Int16(instr.DestructOffsetToSave)
			body.Int16(instr.DestructSizeToSave)
		case OpEQUAL, OpNEQUAL:
			if uint8(instr.Type) >= 0x20 {
				body.Int16(instr.Size)
			}
		}
	}

	w := bread.NewWriter()
	w.String(magic)
	w.String(version)
	w.Uint8('T')
	w.Uint32(uint32(13 + body.Len()))
	w.RawBytes(body.Bytes())
	return w.Bytes(), nil
}

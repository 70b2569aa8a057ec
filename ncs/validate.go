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
	"fmt"

	"go.kotor.dev/korf/internal/kerr"
)

// MaxInstructionCount is the soft limit above which Validate reports an
// issue for unusually long scripts.
const MaxInstructionCount = 10000

// MaxConsecutiveNOPs is the threshold above which a run of NOPs is
// flagged as suspicious padding.
const MaxConsecutiveNOPs = 10

// Validate walks p's instructions once and checks the invariants the
// engine's VM relies on: every jump target resolves to an instruction
// boundary, RETN appears only at the tail, stack-pointer manipulation
// stays non-negative and bounded, and the instruction count stays within
// the engine's practical limits. A non-nil error is always a
// *kerr.ValidationError.
func Validate(p *Program) error {
	if len(p.Instructions) == 0 {
		return nil
	}

	var issues []string
	byOffset := make(map[int]int, len(p.Instructions))
	for i, instr := range p.Instructions {
		byOffset[instr.Offset] = i
	}

	validateSequence(p, &issues)
	validateStack(p, &issues)
	validateControlFlow(p, byOffset, &issues)
	validateExecutionSafety(p, &issues)

	return kerr.NewValidationError(issues)
}

func validateSequence(p *Program, issues *[]string) {
	instrs := p.Instructions
	for i, instr := range instrs {
		if instr.Op == OpRETN && i < len(instrs)-1 {
			*issues = append(*issues, fmt.Sprintf("RETN instruction at position %d is not at end of script", i))
		}
		if i > 0 {
			prev := instrs[i-1]
			if isStackOperation(instr.Op) && isStackOperation(prev.Op) && stackOperationsConflict(prev, instr) {
				*issues = append(*issues, fmt.Sprintf("conflicting stack operations at positions %d and %d", i-1, i))
			}
		}
	}
}

func isStackOperation(op Opcode) bool {
	switch op {
	case OpCPDOWNSP, OpCPTOPSP, OpCPDOWNBP, OpCPTOPBP, OpMOVSP, OpSAVEBP, OpRESTOREBP:
		return true
	}
	return false
}

func stackOperationsConflict(a, b Instruction) bool {
	if a.Op == OpCPDOWNSP && b.Op == OpCPTOPSP {
		if a.Size != b.Size && a.Size != 0 && b.Size != 0 {
			return true
		}
	}
	return false
}

const maxStackDepth = 1000

func validateStack(p *Program, issues *[]string) {
	depth := 0
	maxDepth := 0
	for i, instr := range p.Instructions {
		switch instr.Op {
		case OpCPDOWNSP, OpCPTOPSP:
			if instr.Size < 0 {
				depth += int(-instr.Size)
			}
		case OpCONST:
			depth++
		}
		if depth > maxDepth {
			maxDepth = depth
		}
		if depth < 0 {
			*issues = append(*issues, fmt.Sprintf("potential stack underflow at instruction %d", i))
			depth = 0
		}
	}
	if maxDepth > maxStackDepth {
		*issues = append(*issues, fmt.Sprintf("potentially excessive stack usage (max depth: %d)", maxDepth))
	}
}

const maxJumpDistance = 1000

func validateControlFlow(p *Program, byOffset map[int]int, issues *[]string) {
	for i, instr := range p.Instructions {
		switch instr.Op {
		case OpJMP, OpJZ, OpJNZ, OpJSR:
		default:
			continue
		}
		targetOffset := instr.Offset + int(instr.JumpOffset)
		targetIndex, ok := byOffset[targetOffset]
		if !ok {
			*issues = append(*issues, fmt.Sprintf("jump instruction at position %d targets invalid location %d", i, targetOffset))
			continue
		}
		if d := targetIndex - i; d > maxJumpDistance || d < -maxJumpDistance {
			*issues = append(*issues, fmt.Sprintf("unusually long jump at position %d (distance: %d)", i, abs(d)))
		}
		if instr.Op == OpJSR && targetIndex == 0 {
			*issues = append(*issues, fmt.Sprintf("JSR at position %d jumps to script start (potential recursion issue)", i))
		}
	}
}

func validateExecutionSafety(p *Program, issues *[]string) {
	if len(p.Instructions) > MaxInstructionCount {
		*issues = append(*issues, fmt.Sprintf("script is unusually long (%d instructions)", len(p.Instructions)))
	}
	consecutiveNOPs := 0
	flagged := false
	for _, instr := range p.Instructions {
		if instr.Op == OpNOP {
			consecutiveNOPs++
			if consecutiveNOPs > MaxConsecutiveNOPs && !flagged {
				*issues = append(*issues, "excessive consecutive no-op instructions detected")
				flagged = true
			}
		} else {
			consecutiveNOPs = 0
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

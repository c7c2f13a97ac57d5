// Package matcher implements piglet-matcher, a Thompson-NFA-style
// executor for compact event-chain bytecode. Unlike the arithmetic VM it
// runs many concurrent "threads" (instruction-pointer records) against
// one event at a time, swapping a current-thread set into a next-thread
// set as NEXT instructions fire.
package matcher

import "pigletvm/internal/asmkit"

// Opcode is a single matcher instruction byte.
type Opcode byte

const (
	OpAbort Opcode = iota
	OpName
	OpScreen
	OpNext
	OpJump
	OpSplit
	OpMatch

	opcodeCount
)

type opcodeInfoEntry struct {
	name     string
	operands asmkit.OperandKind
}

var opcodeInfo = [opcodeCount]opcodeInfoEntry{
	OpAbort:  {name: "ABORT", operands: asmkit.NoOperand},
	OpName:   {name: "NAME", operands: asmkit.ImmediateOperand},
	OpScreen: {name: "SCREEN", operands: asmkit.ImmediateOperand},
	OpNext:   {name: "NEXT", operands: asmkit.NoOperand},
	OpJump:   {name: "JUMP", operands: asmkit.LabelOperand},
	OpSplit:  {name: "SPLIT", operands: asmkit.TwoLabelOperand},
	OpMatch:  {name: "MATCH", operands: asmkit.NoOperand},
}

func (op Opcode) String() string {
	if int(op) < len(opcodeInfo) {
		if n := opcodeInfo[op].name; n != "" {
			return n
		}
	}
	return "UNKNOWN"
}

var asmSet = buildAsmSet()

func buildAsmSet() *asmkit.Set {
	defs := make([]asmkit.OpDef, 0, opcodeCount)
	for code, info := range opcodeInfo {
		if info.name == "" {
			continue
		}
		defs = append(defs, asmkit.OpDef{Name: info.name, Code: byte(code), Operand: info.operands})
	}
	return asmkit.NewSet(defs)
}

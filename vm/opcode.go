package vm

import "pigletvm/internal/asmkit"

// Opcode is a single arithmetic-VM instruction byte. Values stay within
// 0x1F so InterpretSwitchMasked's mask-and-switch trick stays valid; see
// opcodeMask.
type Opcode byte

const (
	OpAbort Opcode = iota
	OpPushi
	OpLoadi
	OpLoadaddi
	OpStorei
	OpLoad
	OpStore
	OpDup
	OpDiscard
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpAddi
	OpJump
	OpJumpIfTrue
	OpJumpIfFalse
	OpEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
	OpGreaterOrEquali
	OpPopRes
	OpDone
	OpPrint

	opcodeCount
)

// opcodeMask is the 0x1F mask InterpretSwitchMasked applies before
// dispatch, per the "no-range-check" variant. Valid only while
// opcodeCount stays at or below 32.
const opcodeMask = 0x1F

func init() {
	if opcodeCount > 32 {
		panic("vm: opcode count exceeds the 0x1F dispatch mask")
	}
}

type opcodeInfoEntry struct {
	name                string
	hasImmediate        bool
	isConditionalBranch bool
	isAbsoluteJump      bool
	isTerminal          bool
}

// opcodeInfo is the single classification table shared by the text
// assembler/disassembler, the disassembly formatter, and the trace
// compiler.
var opcodeInfo = [opcodeCount]opcodeInfoEntry{
	OpAbort:           {name: "ABORT", isTerminal: true},
	OpPushi:           {name: "PUSHI", hasImmediate: true},
	OpLoadi:           {name: "LOADI", hasImmediate: true},
	OpLoadaddi:        {name: "LOADADDI", hasImmediate: true},
	OpStorei:          {name: "STOREI", hasImmediate: true},
	OpLoad:            {name: "LOAD"},
	OpStore:           {name: "STORE"},
	OpDup:             {name: "DUP"},
	OpDiscard:         {name: "DISCARD"},
	OpAdd:             {name: "ADD"},
	OpSub:             {name: "SUB"},
	OpMul:             {name: "MUL"},
	OpDiv:             {name: "DIV"},
	OpAddi:            {name: "ADDI", hasImmediate: true},
	OpJump:            {name: "JUMP", hasImmediate: true, isAbsoluteJump: true},
	OpJumpIfTrue:      {name: "JUMP_IF_TRUE", hasImmediate: true, isConditionalBranch: true},
	OpJumpIfFalse:     {name: "JUMP_IF_FALSE", hasImmediate: true, isConditionalBranch: true},
	OpEqual:           {name: "EQUAL"},
	OpLess:            {name: "LESS"},
	OpLessOrEqual:     {name: "LESS_OR_EQUAL"},
	OpGreater:         {name: "GREATER"},
	OpGreaterOrEqual:  {name: "GREATER_OR_EQUAL"},
	OpGreaterOrEquali: {name: "GREATER_OR_EQUALI", hasImmediate: true},
	OpPopRes:          {name: "POP_RES"},
	OpDone:            {name: "DONE", isTerminal: true},
	OpPrint:           {name: "PRINT"},
}

func (op Opcode) String() string {
	if int(op) < len(opcodeInfo) {
		if n := opcodeInfo[op].name; n != "" {
			return n
		}
	}
	return "UNKNOWN"
}

// asmSet adapts the classification table into an asmkit.Set shared by the
// text assembler and disassembler.
var asmSet = buildAsmSet()

func buildAsmSet() *asmkit.Set {
	defs := make([]asmkit.OpDef, 0, opcodeCount)
	for code, info := range opcodeInfo {
		if info.name == "" {
			continue
		}
		kind := asmkit.NoOperand
		switch {
		case info.isAbsoluteJump || info.isConditionalBranch:
			kind = asmkit.LabelOperand
		case info.hasImmediate:
			kind = asmkit.ImmediateOperand
		}
		defs = append(defs, asmkit.OpDef{Name: info.name, Code: byte(code), Operand: kind})
	}
	return asmkit.NewSet(defs)
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

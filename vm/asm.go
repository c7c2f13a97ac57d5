package vm

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"pigletvm/internal/asmkit"
)

// Assemble converts assembly source into a bytecode blob, resolving
// labels in a second pass over the parsed statements.
func Assemble(src string) ([]byte, error) {
	return asmkit.Assemble(asmSet, src)
}

// Disassemble decodes a bytecode blob into one Instruction per opcode,
// stopping at the first ABORT sentinel byte.
func Disassemble(code []byte) ([]asmkit.Instruction, error) {
	return asmkit.Disassemble(asmSet, code)
}

// FormatDisassembly renders a disassembly listing as an offset/mnemonic/
// operand table. Jump and branch instructions get a "→" marker in the
// operand column so a reader can spot control flow at a glance; this is
// purely a rendering convenience and has no effect on the underlying
// Instruction values or the disassemble(assemble(s)) round trip.
func FormatDisassembly(instrs []asmkit.Instruction) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Offset", "Mnemonic", "Operand"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, in := range instrs {
		operand := ""
		switch len(in.Args) {
		case 1:
			operand = fmt.Sprintf("%d", in.Args[0])
			if isBranchOpcode(Opcode(in.Op.Code)) {
				operand = "→ " + operand
			}
		case 2:
			operand = fmt.Sprintf("%d, %d", in.Args[0], in.Args[1])
		}
		table.Append([]string{fmt.Sprintf("%04d", in.Offset), in.Op.Name, operand})
	}

	table.Render()
	return buf.String()
}

func isBranchOpcode(op Opcode) bool {
	if int(op) >= len(opcodeInfo) {
		return false
	}
	info := opcodeInfo[op]
	return info.isAbsoluteJump || info.isConditionalBranch
}

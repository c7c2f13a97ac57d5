package matcher

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"pigletvm/internal/asmkit"
)

// Assemble converts matcher assembly source (NAME/SCREEN/NEXT/JUMP/
// SPLIT/MATCH, with SPLIT taking two label or literal targets) into
// bytecode.
func Assemble(src string) ([]byte, error) {
	return asmkit.Assemble(asmSet, src)
}

// Disassemble decodes matcher bytecode into one Instruction per opcode.
func Disassemble(code []byte) ([]asmkit.Instruction, error) {
	return asmkit.Disassemble(asmSet, code)
}

// FormatDisassembly renders a matcher disassembly listing as a table with
// the same columns as the arithmetic VM's listings. Jump and split
// operands are printed as plain offsets, without a branch marker.
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
		case 2:
			operand = fmt.Sprintf("%d, %d", in.Args[0], in.Args[1])
		}
		table.Append([]string{fmt.Sprintf("%04d", in.Offset), in.Op.Name, operand})
	}

	table.Render()
	return buf.String()
}

package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	run  func([]byte, *bytes.Buffer) (uint64, error)
}

var backends = []backend{
	{"switch", func(code []byte, out *bytes.Buffer) (uint64, error) { return InterpretSwitch(code, out) }},
	{"switch-masked", func(code []byte, out *bytes.Buffer) (uint64, error) { return InterpretSwitchMasked(code, out) }},
	{"threaded", func(code []byte, out *bytes.Buffer) (uint64, error) { return InterpretThreaded(code, out) }},
	{"trace", func(code []byte, out *bytes.Buffer) (uint64, error) { return InterpretTrace(code, out) }},
}

// runAll asserts every back-end agrees on (result, error) for code,
// mirroring the cross-back-end equivalence property.
func runAll(t *testing.T, code []byte) (uint64, error) {
	t.Helper()

	var wantResult uint64
	var wantErr error
	for i, b := range backends {
		var out bytes.Buffer
		result, err := b.run(code, &out)
		if i == 0 {
			wantResult, wantErr = result, err
			continue
		}
		assert.Equalf(t, wantErr, err, "back-end %s disagreed on error", b.name)
		if wantErr == nil {
			assert.Equalf(t, wantResult, result, "back-end %s disagreed on result", b.name)
		}
	}
	return wantResult, wantErr
}

func assembleOrFail(t *testing.T, src string) []byte {
	t.Helper()
	code, err := Assemble(src)
	require.NoError(t, err)
	return code
}

func TestSeedScenario1_PushPopDone(t *testing.T) {
	code := assembleOrFail(t, "PUSHI 5\nPOP_RES\nDONE\n")
	result, err := runAll(t, code)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), result)
}

func TestSeedScenario2_AddThenMul(t *testing.T) {
	code := assembleOrFail(t, "PUSHI 2\nPUSHI 11\nPUSHI 3\nADD\nMUL\nPOP_RES\nDONE\n")
	result, err := runAll(t, code)
	require.NoError(t, err)
	assert.Equal(t, uint64(28), result)
}

func TestSeedScenario3_DivisionByZero(t *testing.T) {
	code := assembleOrFail(t, "PUSHI 10\nPUSHI 0\nDIV\nPOP_RES\nDONE\n")
	_, err := runAll(t, code)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSeedScenario4_JumpToLabel(t *testing.T) {
	src := "PUSHI 3\nPUSHI 1\nADD\nJUMP target\nPUSHI 2\nADD\ntarget:\nPOP_RES\nDONE\n"
	code := assembleOrFail(t, src)
	require.Equal(t, byte(OpPopRes), code[14], "label must resolve to offset 14")
	result, err := runAll(t, code)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), result)
}

func TestSeedScenario5_StoreThenLoad(t *testing.T) {
	code := assembleOrFail(t, "PUSHI 111\nSTOREI 5\nLOADI 5\nPOP_RES\nDONE\n")
	result, err := runAll(t, code)
	require.NoError(t, err)
	assert.Equal(t, uint64(111), result)
}

func TestUnknownOpcode(t *testing.T) {
	// Byte 0x1E has no meaning in the 26-opcode table.
	code := []byte{0x1E}
	_, err := runAll(t, code)
	assert.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestEndOfStreamOnAbort(t *testing.T) {
	code := assembleOrFail(t, "ABORT\n")
	_, err := runAll(t, code)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestEndOfStreamOnTruncatedBytecode(t *testing.T) {
	// No DONE/ABORT at all: running off the end must behave like ABORT.
	code := assembleOrFail(t, "PUSHI 1\n")
	_, err := runAll(t, code)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestStackArithmeticProperty(t *testing.T) {
	type op struct {
		mnemonic string
		apply    func(a, b uint64) uint64
	}
	ops := []op{
		{"ADD", func(a, b uint64) uint64 { return a + b }},
		{"SUB", func(a, b uint64) uint64 { return a - b }},
		{"MUL", func(a, b uint64) uint64 { return a * b }},
		{"EQUAL", func(a, b uint64) uint64 { return boolToU64(a == b) }},
		{"LESS", func(a, b uint64) uint64 { return boolToU64(a < b) }},
		{"LESS_OR_EQUAL", func(a, b uint64) uint64 { return boolToU64(a <= b) }},
		{"GREATER", func(a, b uint64) uint64 { return boolToU64(a > b) }},
		{"GREATER_OR_EQUAL", func(a, b uint64) uint64 { return boolToU64(a >= b) }},
	}

	pairs := [][2]uint64{{7, 3}, {3, 7}, {5, 5}, {0, 1}}

	for _, o := range ops {
		for _, pair := range pairs {
			src := "PUSHI " + itoa(pair[0]) + "\nPUSHI " + itoa(pair[1]) + "\n" + o.mnemonic + "\nPOP_RES\nDONE\n"
			code := assembleOrFail(t, src)
			result, err := runAll(t, code)
			require.NoError(t, err)
			assert.Equal(t, o.apply(pair[0], pair[1]), result, "%s(%d,%d)", o.mnemonic, pair[0], pair[1])
		}
	}
}

func TestDivisionByZeroLeavesStackUndisturbed(t *testing.T) {
	// DIVISION_BY_ZERO must be reported before the stack is mutated. The
	// state is discarded at return, so only the status is observable here.
	code := assembleOrFail(t, "PUSHI 10\nPUSHI 0\nDIV\nPOP_RES\nDONE\n")
	_, err := InterpretSwitch(code, nil)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestPrintEmitsDecimal(t *testing.T) {
	code := assembleOrFail(t, "PUSHI 42\nPRINT\nPUSHI 0\nPOP_RES\nDONE\n")
	var out bytes.Buffer
	_, err := InterpretSwitch(code, &out)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out.String())
}

func TestEncodingRoundTrip(t *testing.T) {
	for _, v := range []uint16{0, 1, 255, 256, 4096, 65535} {
		b := encodeU16(v)
		assert.Equal(t, byte((v>>8)&0xFF), b[0])
		assert.Equal(t, byte(v&0xFF), b[1])
		assert.Equal(t, v, decodeU16(b[:]))
	}
}

func TestDisassembleStopsAtAbortSentinel(t *testing.T) {
	code := assembleOrFail(t, "PUSHI 1\nPOP_RES\nDONE\n")
	// DONE is not zero-valued, so append an explicit ABORT-equivalent
	// padding byte and confirm disassembly never reaches it.
	padded := append(append([]byte{}, code...), 0x00, 0x00, 0x00)
	instrs, err := Disassemble(padded)
	require.NoError(t, err)
	require.Len(t, instrs, 3)
	assert.Equal(t, "PUSHI", instrs[0].Op.Name)
	assert.Equal(t, "POP_RES", instrs[1].Op.Name)
	assert.Equal(t, "DONE", instrs[2].Op.Name)
}

func TestAssembleUnresolvedLabelFails(t *testing.T) {
	_, err := Assemble("JUMP nowhere\nDONE\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")
}

func TestTraceChainSpansCapacity(t *testing.T) {
	// A long straight-line run forces at least one tail superop, since
	// traceCapacity caps a single chain at 16 slots.
	src := "PUSHI 1\n"
	for i := 0; i < 20; i++ {
		src += "PUSHI 1\nADD\n"
	}
	src += "POP_RES\nDONE\n"
	code := assembleOrFail(t, src)
	result, err := runAll(t, code)
	require.NoError(t, err)
	assert.Equal(t, uint64(21), result)
}

func TestIdempotentReset(t *testing.T) {
	code := assembleOrFail(t, "PUSHI 2\nPUSHI 11\nPUSHI 3\nADD\nMUL\nPOP_RES\nDONE\n")
	r1, err1 := InterpretSwitch(code, nil)
	r2, err2 := InterpretSwitch(code, nil)
	assert.Equal(t, r1, r2)
	assert.Equal(t, err1, err2)
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

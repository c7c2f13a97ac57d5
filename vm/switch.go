package vm

import (
	"fmt"
	"io"
)

// InterpretSwitch runs bytecode through a single fetch-decode-dispatch
// loop with a dense switch over every defined opcode. stdout receives
// PRINT output; a nil stdout falls back to os.Stdout.
func InterpretSwitch(bytecode []byte, stdout io.Writer) (uint64, error) {
	return runSwitch(bytecode, stdout, false)
}

// InterpretSwitchMasked is the "no-range-check" variant: it masks every
// fetched opcode byte with 0x1F before dispatch. On well-formed input its
// observable behaviour is identical to InterpretSwitch; the mask only
// changes what happens to bytes above 0x1F, which are folded onto their
// low five bits. Bytes whose low five bits name no defined opcode still
// fall to the default case.
func InterpretSwitchMasked(bytecode []byte, stdout io.Writer) (uint64, error) {
	return runSwitch(bytecode, stdout, true)
}

func runSwitch(bytecode []byte, stdout io.Writer, masked bool) (uint64, error) {
	s := newState(bytecode, stdout)

	for {
		op := fetchOpcode(s)
		if masked {
			op = Opcode(byte(op) & opcodeMask)
		}

		switch op {
		case OpAbort:
			return 0, ErrEndOfStream

		case OpPushi:
			s.push(uint64(fetchU16(s)))

		case OpLoadi:
			a := fetchU16(s)
			s.push(s.Memory[a])

		case OpLoadaddi:
			a := fetchU16(s)
			s.Stack[s.StackTop-1] += s.Memory[a]

		case OpStorei:
			a := fetchU16(s)
			s.Memory[a] = s.pop()

		case OpLoad:
			addr := s.pop()
			s.push(s.Memory[addr])

		case OpStore:
			val := s.pop()
			addr := s.pop()
			s.Memory[addr] = val

		case OpDup:
			s.push(s.top())

		case OpDiscard:
			s.pop()

		case OpAdd:
			r := s.pop()
			s.Stack[s.StackTop-1] += r

		case OpSub:
			r := s.pop()
			s.Stack[s.StackTop-1] -= r

		case OpMul:
			r := s.pop()
			s.Stack[s.StackTop-1] *= r

		case OpDiv:
			if s.top() == 0 {
				return 0, ErrDivisionByZero
			}
			r := s.pop()
			s.Stack[s.StackTop-1] /= r

		case OpAddi:
			n := fetchU16(s)
			s.Stack[s.StackTop-1] += uint64(n)

		case OpJump:
			// PEEK_ARG: ip becomes the target directly, so the next fetch
			// starts at the target rather than target+2.
			t := peekU16(s)
			s.IP = int(t)

		case OpJumpIfTrue:
			t := fetchU16(s)
			if s.pop() != 0 {
				s.IP = int(t)
			}

		case OpJumpIfFalse:
			t := fetchU16(s)
			if s.pop() == 0 {
				s.IP = int(t)
			}

		case OpEqual:
			r := s.pop()
			s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] == r)

		case OpLess:
			r := s.pop()
			s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] < r)

		case OpLessOrEqual:
			r := s.pop()
			s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] <= r)

		case OpGreater:
			r := s.pop()
			s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] > r)

		case OpGreaterOrEqual:
			r := s.pop()
			s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] >= r)

		case OpGreaterOrEquali:
			n := fetchU16(s)
			s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] >= uint64(n))

		case OpPopRes:
			s.Result = s.pop()

		case OpDone:
			return s.Result, nil

		case OpPrint:
			fmt.Fprintf(s.Stdout, "%d\n", s.pop())

		default:
			return 0, ErrUnknownOpcode
		}
	}
}

package vm

import (
	"fmt"
	"io"
)

// threadedHandler is the per-opcode continuation: it performs the
// opcode's effect on s and reports whether the loop should stop (halt)
// and with what result/error. Go has no first-class label addresses, so
// this table-of-functions is the address-table-threaded dispatch the
// specification calls for in a language without computed goto.
type threadedHandler func(s *State) (halt bool, result uint64, err error)

var threadedHandlers [opcodeCount]threadedHandler

func init() {
	threadedHandlers[OpAbort] = func(s *State) (bool, uint64, error) {
		return true, 0, ErrEndOfStream
	}
	threadedHandlers[OpPushi] = func(s *State) (bool, uint64, error) {
		s.push(uint64(fetchU16(s)))
		return false, 0, nil
	}
	threadedHandlers[OpLoadi] = func(s *State) (bool, uint64, error) {
		a := fetchU16(s)
		s.push(s.Memory[a])
		return false, 0, nil
	}
	threadedHandlers[OpLoadaddi] = func(s *State) (bool, uint64, error) {
		a := fetchU16(s)
		s.Stack[s.StackTop-1] += s.Memory[a]
		return false, 0, nil
	}
	threadedHandlers[OpStorei] = func(s *State) (bool, uint64, error) {
		a := fetchU16(s)
		s.Memory[a] = s.pop()
		return false, 0, nil
	}
	threadedHandlers[OpLoad] = func(s *State) (bool, uint64, error) {
		addr := s.pop()
		s.push(s.Memory[addr])
		return false, 0, nil
	}
	threadedHandlers[OpStore] = func(s *State) (bool, uint64, error) {
		val := s.pop()
		addr := s.pop()
		s.Memory[addr] = val
		return false, 0, nil
	}
	threadedHandlers[OpDup] = func(s *State) (bool, uint64, error) {
		s.push(s.top())
		return false, 0, nil
	}
	threadedHandlers[OpDiscard] = func(s *State) (bool, uint64, error) {
		s.pop()
		return false, 0, nil
	}
	threadedHandlers[OpAdd] = func(s *State) (bool, uint64, error) {
		r := s.pop()
		s.Stack[s.StackTop-1] += r
		return false, 0, nil
	}
	threadedHandlers[OpSub] = func(s *State) (bool, uint64, error) {
		r := s.pop()
		s.Stack[s.StackTop-1] -= r
		return false, 0, nil
	}
	threadedHandlers[OpMul] = func(s *State) (bool, uint64, error) {
		r := s.pop()
		s.Stack[s.StackTop-1] *= r
		return false, 0, nil
	}
	threadedHandlers[OpDiv] = func(s *State) (bool, uint64, error) {
		if s.top() == 0 {
			return true, 0, ErrDivisionByZero
		}
		r := s.pop()
		s.Stack[s.StackTop-1] /= r
		return false, 0, nil
	}
	threadedHandlers[OpAddi] = func(s *State) (bool, uint64, error) {
		n := fetchU16(s)
		s.Stack[s.StackTop-1] += uint64(n)
		return false, 0, nil
	}
	threadedHandlers[OpJump] = func(s *State) (bool, uint64, error) {
		t := peekU16(s)
		s.IP = int(t)
		return false, 0, nil
	}
	threadedHandlers[OpJumpIfTrue] = func(s *State) (bool, uint64, error) {
		t := fetchU16(s)
		if s.pop() != 0 {
			s.IP = int(t)
		}
		return false, 0, nil
	}
	threadedHandlers[OpJumpIfFalse] = func(s *State) (bool, uint64, error) {
		t := fetchU16(s)
		if s.pop() == 0 {
			s.IP = int(t)
		}
		return false, 0, nil
	}
	threadedHandlers[OpEqual] = func(s *State) (bool, uint64, error) {
		r := s.pop()
		s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] == r)
		return false, 0, nil
	}
	threadedHandlers[OpLess] = func(s *State) (bool, uint64, error) {
		r := s.pop()
		s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] < r)
		return false, 0, nil
	}
	threadedHandlers[OpLessOrEqual] = func(s *State) (bool, uint64, error) {
		r := s.pop()
		s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] <= r)
		return false, 0, nil
	}
	threadedHandlers[OpGreater] = func(s *State) (bool, uint64, error) {
		r := s.pop()
		s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] > r)
		return false, 0, nil
	}
	threadedHandlers[OpGreaterOrEqual] = func(s *State) (bool, uint64, error) {
		r := s.pop()
		s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] >= r)
		return false, 0, nil
	}
	threadedHandlers[OpGreaterOrEquali] = func(s *State) (bool, uint64, error) {
		n := fetchU16(s)
		s.Stack[s.StackTop-1] = boolToU64(s.Stack[s.StackTop-1] >= uint64(n))
		return false, 0, nil
	}
	threadedHandlers[OpPopRes] = func(s *State) (bool, uint64, error) {
		s.Result = s.pop()
		return false, 0, nil
	}
	threadedHandlers[OpDone] = func(s *State) (bool, uint64, error) {
		return true, s.Result, nil
	}
	threadedHandlers[OpPrint] = func(s *State) (bool, uint64, error) {
		fmt.Fprintf(s.Stdout, "%d\n", s.pop())
		return false, 0, nil
	}
}

// InterpretThreaded dispatches via a handler-address table indexed by
// opcode instead of re-entering a switch at every instruction boundary.
// It must be byte-for-byte observationally equivalent to InterpretSwitch
// on any input.
func InterpretThreaded(bytecode []byte, stdout io.Writer) (uint64, error) {
	s := newState(bytecode, stdout)

	for {
		op := fetchOpcode(s)
		if int(op) >= len(threadedHandlers) || threadedHandlers[op] == nil {
			return 0, ErrUnknownOpcode
		}
		halt, result, err := threadedHandlers[op](s)
		if err != nil {
			return 0, err
		}
		if halt {
			return result, nil
		}
	}
}

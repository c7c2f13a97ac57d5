package matcher

// maxThreads bounds both the current- and next-thread sets. Bytecode that
// would spawn more than this many concurrent threads silently drops the
// excess, mirroring the fixed-capacity thread arrays of the original.
const maxThreads = 256

// Result is the outcome of feeding one event to a Matcher.
type Result int

const (
	ResultNext Result = iota
	ResultOK
	ResultError
)

func (r Result) String() string {
	switch r {
	case ResultNext:
		return "NEXT"
	case ResultOK:
		return "OK"
	case ResultError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type thread struct {
	ip int
}

// Matcher runs event-chain bytecode against an incoming event stream
// using Thompson-NFA-style concurrent threads. Bytecode is borrowed by
// reference for the matcher's lifetime; Reset clears thread state without
// touching it.
type Matcher struct {
	bytecode []byte
	current  []thread
	next     []thread
}

// New creates a matcher over the given bytecode with both thread sets
// empty.
func New(bytecode []byte) *Matcher {
	m := &Matcher{bytecode: bytecode}
	return m
}

// Reset empties both thread sets.
func (m *Matcher) Reset() {
	m.current = m.current[:0]
	m.next = m.next[:0]
}

// Destroy releases the matcher's reference to its bytecode and thread
// sets. It mirrors matcher_destroy's explicit lifecycle step; Go's
// garbage collector does the actual reclamation, but a caller following
// create/reset/accept/destroy can still call this when done.
func (m *Matcher) Destroy() {
	m.bytecode = nil
	m.current = nil
	m.next = nil
}

func (m *Matcher) addCurrent(ip int) {
	if len(m.current) >= maxThreads {
		return
	}
	m.current = append(m.current, thread{ip: ip})
}

func (m *Matcher) addNext(ip int) {
	if len(m.next) >= maxThreads {
		return
	}
	m.next = append(m.next, thread{ip: ip})
}

func (m *Matcher) fetchOpcode(ip int) Opcode {
	if ip < 0 || ip >= len(m.bytecode) {
		return OpAbort
	}
	return Opcode(m.bytecode[ip])
}

func (m *Matcher) fetchU16(ip int) uint16 {
	if ip+2 > len(m.bytecode) {
		return 0
	}
	return (uint16(m.bytecode[ip]) << 8) | uint16(m.bytecode[ip+1])
}

// fetchSplitOperands reads SPLIT's two u16 targets, laid out back to back
// after the opcode byte.
func (m *Matcher) fetchSplitOperands(ip int) (left, right uint16) {
	return m.fetchU16(ip + 1), m.fetchU16(ip + 3)
}

type threadVerdict int

const (
	threadDone threadVerdict = iota
	threadMatched
	threadError
)

// runThread steps a single thread against one event until it decides it
// is done with this event (NAME/SCREEN mismatch, NEXT, JUMP, or SPLIT),
// or reaches a terminal MATCH/ABORT/unknown-opcode verdict. JUMP and
// SPLIT enqueue new threads into the current set via m.addCurrent, which
// Accept's index-based loop will still visit in this same pass.
func (m *Matcher) runThread(ip int, evt Event) threadVerdict {
	for {
		op := m.fetchOpcode(ip)
		switch op {
		case OpName:
			n := m.fetchU16(ip + 1)
			if evt.Name != uint32(n) {
				return threadDone
			}
			ip += 3
		case OpScreen:
			n := m.fetchU16(ip + 1)
			if evt.Screen != uint32(n) {
				return threadDone
			}
			ip += 3
		case OpNext:
			m.addNext(ip + 1)
			return threadDone
		case OpJump:
			t := m.fetchU16(ip + 1)
			m.addCurrent(int(t))
			return threadDone
		case OpSplit:
			l, r := m.fetchSplitOperands(ip)
			m.addCurrent(int(l))
			m.addCurrent(int(r))
			return threadDone
		case OpMatch:
			return threadMatched
		default: // OpAbort or any unrecognized byte
			return threadError
		}
	}
}

// Accept feeds one event to the matcher. It seeds a fresh thread at ip=0
// on every call (so matches need not start at the beginning of the
// stream), steps every thread in the current set — using an index loop
// whose bound is re-read each iteration so JUMP/SPLIT-spawned threads are
// still visited within the same event — then swaps current and next for
// the following call.
func (m *Matcher) Accept(evt Event) Result {
	m.addCurrent(0)

	for i := 0; i < len(m.current); i++ {
		switch m.runThread(m.current[i].ip, evt) {
		case threadMatched:
			m.Reset()
			return ResultOK
		case threadError:
			m.Reset()
			return ResultError
		}
	}

	m.current, m.next = m.next, m.current[:0]
	return ResultNext
}

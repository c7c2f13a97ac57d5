package matcher

// Event is one input symbol the matcher consumes at a time: a name and
// a screen id. The original packs both into a single 32-bit word; kept
// here as two plain uint32 fields instead, since Go gives us the struct
// for free and the packing bought the C version a smaller argument, not
// a different semantics.
type Event struct {
	Name   uint32
	Screen uint32
}

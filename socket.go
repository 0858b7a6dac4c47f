// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package segsim

// MaxBits is the maximum width of a wire.
//
const MaxBits = 64

// Constant and clock wire names. They can be used as wire names in any
// connection string.
//
var (
	True  = "true"
	False = "false"
	GND   = "gnd"
	Clk   = "clk"
)

const (
	cstFalse = iota
	cstTrue
	cstClk
	cstCount
)

// A Wire identifies a wire in a circuit together with the width of the pin it
// is connected to. The width is used to mask values read from or written to
// the wire.
//
type Wire struct {
	N    int  // wire number in the circuit
	Bits uint // width in bits
}

// Mask returns a bit mask for the width of w.
//
func (w Wire) Mask() uint64 {
	return Mask(w.Bits)
}

// Mask returns a mask with the lowest bits set.
//
func Mask(bits uint) uint64 {
	if bits >= MaxBits {
		return ^uint64(0)
	}
	return 1<<bits - 1
}

func isConstant(name string) bool {
	return name == True || name == False || name == GND || name == Clk
}

func constantWire(name string, bits uint) Wire {
	switch name {
	case True:
		return Wire{N: cstTrue, Bits: bits}
	case Clk:
		return Wire{N: cstClk, Bits: 1}
	default:
		return Wire{N: cstFalse, Bits: bits}
	}
}

// A Socket maps a part's pin names to wires in a circuit.
//
type Socket struct {
	m map[string]Wire
	c *Circuit
}

func newSocket(c *Circuit) *Socket {
	return &Socket{
		m: make(map[string]Wire),
		c: c,
	}
}

// Wire returns the wire connected to the given pin name.
// This function panics if the pin does not exist.
//
func (s *Socket) Wire(name string) Wire {
	w, ok := s.m[name]
	if !ok {
		panic("pin " + name + " does not exist")
	}
	return w
}

// wireOrNew returns the wire allocated to the given name. If no such wire
// exists a new one is allocated. Constant names always resolve to the
// matching constant wire.
//
func (s *Socket) wireOrNew(name string, bits uint) Wire {
	if isConstant(name) {
		return constantWire(name, bits)
	}
	w, ok := s.m[name]
	if !ok {
		w = s.c.allocWire(bits)
		s.m[name] = w
	}
	return w
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable word parts for segsim.
//
// All parts are parameterized by the width of their data pins. Gates operate
// bitwise on whole words.
//
package hwlib

import (
	"strconv"

	"github.com/db47h/segsim"
)

// common pin names
const (
	pA    = "a"
	pB    = "b"
	pIn   = "in"
	pSel  = "sel"
	pOut  = "out"
	pLoad = "load"
)

func pins(bits uint, names ...string) []segsim.Pin {
	p := make([]segsim.Pin, len(names))
	for i, n := range names {
		p[i] = segsim.Pin{Name: n, Bits: bits}
	}
	return p
}

// Not returns a bitwise NOT gate of the given width.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: out = ^in
//
func Not(bits uint) segsim.NewPartFn {
	return (&segsim.PartSpec{
		Name:    "NOT" + strconv.Itoa(int(bits)),
		Inputs:  pins(bits, pIn),
		Outputs: pins(bits, pOut),
		Mount: func(s *segsim.Socket) []segsim.Component {
			in, out := s.Wire(pIn), s.Wire(pOut)
			return []segsim.Component{
				func(c *segsim.Circuit) { c.Set(out, ^c.Get(in)) },
			}
		},
	}).NewPart
}

// other gates
type gate func(a, b uint64) uint64

func (g gate) mount(s *segsim.Socket) []segsim.Component {
	a, b, out := s.Wire(pA), s.Wire(pB), s.Wire(pOut)
	return []segsim.Component{
		func(c *segsim.Circuit) { c.Set(out, g(c.Get(a), c.Get(b))) },
	}
}

func newGate(name string, bits uint, fn func(a, b uint64) uint64) segsim.NewPartFn {
	return (&segsim.PartSpec{
		Name:    name + strconv.Itoa(int(bits)),
		Inputs:  pins(bits, pA, pB),
		Outputs: pins(bits, pOut),
		Mount:   gate(fn).mount,
	}).NewPart
}

// And returns a bitwise AND gate.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits]
//	Function: out = a & b
//
func And(bits uint) segsim.NewPartFn {
	return newGate("AND", bits, func(a, b uint64) uint64 { return a & b })
}

// Or returns a bitwise OR gate.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits]
//	Function: out = a | b
//
func Or(bits uint) segsim.NewPartFn {
	return newGate("OR", bits, func(a, b uint64) uint64 { return a | b })
}

// Xor returns a bitwise XOR gate.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits]
//	Function: out = a ^ b
//
func Xor(bits uint) segsim.NewPartFn {
	return newGate("XOR", bits, func(a, b uint64) uint64 { return a ^ b })
}

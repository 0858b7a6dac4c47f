// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"math/bits"
	"strconv"

	"github.com/db47h/segsim"
)

// Mux returns a 2 way multiplexer.
//
//	Inputs: a[bits], b[bits], sel
//	Outputs: out[bits]
//	Function: if sel == 0 { out = a } else { out = b }
//
func Mux(n uint) segsim.NewPartFn {
	return (&segsim.PartSpec{
		Name:    "MUX" + strconv.Itoa(int(n)),
		Inputs:  append(pins(n, pA, pB), segsim.Pin{Name: pSel, Bits: 1}),
		Outputs: pins(n, pOut),
		Mount: func(s *segsim.Socket) []segsim.Component {
			a, b, sel, out := s.Wire(pA), s.Wire(pB), s.Wire(pSel), s.Wire(pOut)
			return []segsim.Component{func(c *segsim.Circuit) {
				if c.GetBool(sel) {
					c.Set(out, c.Get(b))
				} else {
					c.Set(out, c.Get(a))
				}
			}}
		},
	}).NewPart
}

// OneHotIndex returns the index of the single bit set in v. ok is false if v
// has zero or more than one bit set.
//
func OneHotIndex(v uint64) (index int, ok bool) {
	if v == 0 || v&(v-1) != 0 {
		return 0, false
	}
	return bits.TrailingZeros64(v), true
}

// OneHotMux returns a multiplexer whose select input is a one-hot word: the
// data input matching the single bit set in sel is routed to the output. If
// sel is not one-hot, the output is 0.
//
//	Inputs: sel[ways], in0[bits] ... in<ways-1>[bits]
//	Outputs: out[bits]
//	Function: out = in<i> where sel == 1<<i
//
func OneHotMux(ways, n uint) segsim.NewPartFn {
	in := make([]segsim.Pin, 0, ways+1)
	in = append(in, segsim.Pin{Name: pSel, Bits: ways})
	for i := uint(0); i < ways; i++ {
		in = append(in, segsim.Pin{Name: pIn + strconv.Itoa(int(i)), Bits: n})
	}
	return (&segsim.PartSpec{
		Name:    "OneHotMux" + strconv.Itoa(int(ways)) + "x" + strconv.Itoa(int(n)),
		Inputs:  in,
		Outputs: pins(n, pOut),
		Mount: func(s *segsim.Socket) []segsim.Component {
			sel, out := s.Wire(pSel), s.Wire(pOut)
			ins := make([]segsim.Wire, ways)
			for i := range ins {
				ins[i] = s.Wire(pIn + strconv.Itoa(i))
			}
			return []segsim.Component{func(c *segsim.Circuit) {
				if i, ok := OneHotIndex(c.Get(sel)); ok {
					c.Set(out, c.Get(ins[i]))
				} else {
					c.Set(out, 0)
				}
			}}
		},
	}).NewPart
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package segsim

import (
	"strconv"
)

// Input creates a function based input of the given width.
//
//	Outputs: out[bits]
//	Function: out = f()
//
// f is called once per simulation step. Values are masked to the width of the
// output pin.
//
func Input(bits uint, f func() uint64) NewPartFn {
	p := &PartSpec{
		Name:    "Input" + strconv.Itoa(int(bits)),
		Inputs:  nil,
		Outputs: Outputs{{"out", bits}},
		Mount: func(s *Socket) []Component {
			out := s.Wire("out")
			return []Component{
				func(c *Circuit) {
					c.Set(out, f())
				},
			}
		}}
	return p.NewPart
}

// Output creates an output or probe of the given width. The f function is
// called with the state of the input wire on every simulation step.
//
//	Inputs: in[bits]
//	Function: f(in)
//
func Output(bits uint, f func(uint64)) NewPartFn {
	p := &PartSpec{
		Name:    "Output" + strconv.Itoa(int(bits)),
		Inputs:  Inputs{{"in", bits}},
		Outputs: nil,
		Mount: func(s *Socket) []Component {
			in := s.Wire("in")
			return []Component{
				func(c *Circuit) {
					f(c.Get(in))
				},
			}
		}}
	return p.NewPart
}

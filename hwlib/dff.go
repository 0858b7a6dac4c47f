// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/segsim"
)

// Register returns a clocked register with load enable. Its reset value is 0.
//
//	Inputs: in[bits], load
//	Outputs: out[bits]
//	Function: if load(t-1) { out(t) = in(t-1) } else { out(t) = out(t-1) }
//	          where t is the current clock cycle.
//
func Register(bits uint) segsim.NewPartFn {
	return RegisterReset(bits, 0)
}

// RegisterReset returns a clocked register with load enable and the given
// reset value.
//
func RegisterReset(bits uint, reset uint64) segsim.NewPartFn {
	return (&segsim.PartSpec{
		Name:    "Register" + strconv.Itoa(int(bits)),
		Inputs:  append(pins(bits, pIn), segsim.Pin{Name: pLoad, Bits: 1}),
		Outputs: pins(bits, pOut),
		Mount: func(s *segsim.Socket) []segsim.Component {
			in, load, out := s.Wire(pIn), s.Wire(pLoad), s.Wire(pOut)
			cur := reset & out.Mask()
			return []segsim.Component{
				func(c *segsim.Circuit) {
					// raising edge?
					if c.AtTick() && c.GetBool(load) {
						cur = c.Get(in)
					}
					c.Set(out, cur)
				}}
		}}).NewPart
}

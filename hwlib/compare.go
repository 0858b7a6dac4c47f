package hwlib

import (
	"strconv"

	"github.com/db47h/segsim"
)

// Equal returns a comparator against the constant v.
//
//	Inputs: in[bits]
//	Outputs: out
//	Function: out = in == v
//
func Equal(bits uint, v uint64) segsim.NewPartFn {
	return (&segsim.PartSpec{
		Name:    "EQ" + strconv.Itoa(int(bits)) + "_" + strconv.FormatUint(v, 10),
		Inputs:  pins(bits, pIn),
		Outputs: pins(1, pOut),
		Mount: func(s *segsim.Socket) []segsim.Component {
			in, out := s.Wire(pIn), s.Wire(pOut)
			v := v & in.Mask()
			return []segsim.Component{
				func(c *segsim.Circuit) { c.SetBool(out, c.Get(in) == v) },
			}
		},
	}).NewPart
}

// Const returns a constant driver.
//
//	Outputs: out[bits]
//	Function: out = v
//
func Const(bits uint, v uint64) segsim.NewPartFn {
	return (&segsim.PartSpec{
		Name:    "CONST" + strconv.Itoa(int(bits)),
		Outputs: pins(bits, pOut),
		Mount: func(s *segsim.Socket) []segsim.Component {
			out := s.Wire(pOut)
			return []segsim.Component{
				func(c *segsim.Circuit) { c.Set(out, v) },
			}
		},
	}).NewPart
}

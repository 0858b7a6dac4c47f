package segsim

import (
	"github.com/pkg/errors"
)

type chip struct {
	PartSpec        // PartSpec for this chip
	parts    []Part // sub parts
}

func (c *chip) mount(s *Socket) []Component {
	var updaters []Component

	for _, p := range c.parts {
		// make a sub-socket
		sub := newSocket(s.c)
		for _, conn := range p.Conns {
			pin, _, _ := p.pin(conn.PP)
			sub.m[pin.Name] = s.wireOrNew(conn.CW, pin.Bits)
		}
		// unconnected inputs read as false, unconnected outputs get their
		// own dangling wire.
		for _, pin := range p.Inputs {
			if _, ok := sub.m[pin.Name]; !ok {
				sub.m[pin.Name] = constantWire(False, pin.Bits)
			}
		}
		for _, pin := range p.Outputs {
			if _, ok := sub.m[pin.Name]; !ok {
				sub.m[pin.Name] = s.c.allocWire(pin.Bits)
			}
		}
		updaters = append(updaters, p.Mount(sub)...)
	}
	return updaters
}

// Chip composes existing parts into a new part packaged into a chip.
// The pins specified as inputs and outputs will be the inputs
// and outputs of the chip. Inside the chip, these pins are wires with the
// same name.
//
// A digit slot loaded when its address is selected could be created like this:
//
//	slot, err := Chip(
//		"SLOT5",
//		In("sel[3], value[4], write"),
//		Out("out[4]"),
//		Parts{
//			hwlib.Equal(3, 5)("in=sel, out=hit"),
//			hwlib.And(1)("a=write, b=hit, out=load"),
//			hwlib.Register(4)("in=value, load=load, out=out"),
//		})
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips.
//
// Chip returns an error if a part uses an unknown pin name, if pin and wire
// widths do not match, if an output drives a constant, the clock, a chip input
// or a wire already driven by another output, if a wire is read but never
// driven, or if an internal wire is driven but never read.
//
func Chip(name string, inputs Inputs, outputs Outputs, parts Parts) (NewPartFn, error) {
	wr, err := newWiring(inputs, outputs)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}

	for _, p := range parts {
		seen := make(map[string]bool, len(p.Conns))
		for _, conn := range p.Conns {
			pin, output, ok := p.pin(conn.PP)
			if !ok {
				return nil, errors.New("invalid pin name " + conn.PP + " for part " + p.Name)
			}
			if seen[conn.PP] {
				return nil, errors.New("pin " + conn.PP + " of part " + p.Name + " connected more than once")
			}
			seen[conn.PP] = true
			if err := wr.connect(p.Name, pin, conn.CW, output); err != nil {
				return nil, err
			}
		}
	}

	if err := wr.check(); err != nil {
		return nil, err
	}

	c := &chip{
		PartSpec: PartSpec{
			Name:    name,
			Inputs:  inputs,
			Outputs: outputs,
		},
		parts: parts,
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package segsim

// A MountFn mounts a part into socket s. MountFn's should query
// the socket for the wires connected to their pins and return closures around
// these wires.
//
// For example, a 4 bits inverter can be defined like this:
//
//	not4 := &PartSpec{
//		Name: "Not4",
//		Inputs: In("in[4]"),
//		Outputs: Out("out[4]"),
//		Mount: func (s *Socket) []Component {
//			in, out := s.Wire("in"), s.Wire("out")
//			return []Component{
//				func (c *Circuit) { c.Set(out, ^c.Get(in)) },
//			}
//		}}
//
type MountFn func(s *Socket) []Component

// A PartSpec wraps a part specification (its blueprint).
//
// Custom parts are implemented by creating a PartSpec, then getting a
// NewPartFn for it:
//
//	var not4 = not4Spec.NewPart
//
// Which can then be used when building other chips:
//
//	c, _ := Chip("dummy", In("a[4]"), Out("b[4]"), Parts{
//		not4("in=a, out=b"),
//	})
//
type PartSpec struct {
	// Part name.
	Name string
	// Input pins. Must be distinct pin names.
	// Use the In() function to build Inputs from a declaration like
	// "sel[3], write".
	Inputs Inputs
	// Output pins. Must be distinct pin names.
	Outputs Outputs

	// Mount function (see MountFn).
	Mount MountFn
}

// NewPart is a NewPartFn that wraps p with the given connections into a Part.
// It panics if the connection string cannot be parsed.
//
func (p *PartSpec) NewPart(connections string) Part {
	conns, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{p, conns}
}

// pin returns the pin with the given name and whether it is an output.
//
func (p *PartSpec) pin(name string) (pin Pin, output bool, ok bool) {
	for _, i := range p.Inputs {
		if i.Name == name {
			return i, false, true
		}
	}
	for _, o := range p.Outputs {
		if o.Name == name {
			return o, true, true
		}
	}
	return Pin{}, false, false
}

// A NewPartFn is a function that takes a connection configuration and returns a
// new Part. See ParseConnections for the syntax of the connection configuration
// string.
//
type NewPartFn func(c string) Part

// A Part wraps a part specification together with its connections within a host
// chip.
//
type Part struct {
	*PartSpec
	Conns []Connection
}

// Parts is a slice of Part.
//
type Parts []Part

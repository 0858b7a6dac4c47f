package segsim

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// wire is a named wire inside a chip.
type wire struct {
	name    string
	bits    uint
	driver  string // pin driving the wire, empty if none
	input   bool   // chip input
	output  bool   // chip output
	readers int
}

type wiring map[string]*wire

func newWiring(ins Inputs, outs Outputs) (wiring, error) {
	wr := make(wiring, len(ins)+len(outs))
	for _, in := range ins {
		if isConstant(in.Name) {
			return nil, errors.New("chip input " + in.Name + " shadows a constant wire")
		}
		wr[in.Name] = &wire{name: in.Name, bits: in.Bits, input: true}
	}
	for _, out := range outs {
		if isConstant(out.Name) {
			return nil, errors.New("chip output " + out.Name + " shadows a constant wire")
		}
		if _, ok := wr[out.Name]; ok {
			return nil, errors.New("pin " + out.Name + " declared as both input and output")
		}
		wr[out.Name] = &wire{name: out.Name, bits: out.Bits, output: true}
	}
	return wr, nil
}

func widthError(part string, p Pin, w *wire) error {
	return errors.New(part + "." + p.Name + ":" + w.name + ": width mismatch: pin is " +
		strconv.Itoa(int(p.Bits)) + " bits, wire is " + strconv.Itoa(int(w.bits)) + " bits")
}

// connect records that pin p of the named part is connected to wire name.
func (wr wiring) connect(part string, p Pin, name string, output bool) error {
	at := part + "." + p.Name + ":" + name
	if isConstant(name) {
		if !output {
			if name == Clk && p.Bits != 1 {
				return errors.New(at + ": clock connected to a multi-bit pin")
			}
			return nil
		}
		if name == Clk {
			return errors.New(at + ": output pin connected to clock signal")
		}
		return errors.New(at + ": output pin connected to constant " + name + " input")
	}
	w := wr[name]
	if w == nil {
		w = &wire{name: name, bits: p.Bits}
		wr[name] = w
	} else if w.bits != p.Bits {
		return widthError(part, p, w)
	}
	if !output {
		w.readers++
		return nil
	}
	switch {
	case w.input:
		return errors.New(at + ": chip input pin used as output")
	case w.driver != "":
		return errors.New(at + ": output pin already used as output by " + w.driver)
	}
	w.driver = part + "." + p.Name
	return nil
}

// check reports undriven wires and internal wires that nothing reads.
func (wr wiring) check() error {
	names := make([]string, 0, len(wr))
	for n := range wr {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		w := wr[n]
		if !w.input && w.driver == "" {
			return errors.New("wire " + n + " not connected to any output")
		}
		if !w.input && !w.output && w.readers == 0 {
			return errors.New("wire " + n + " not connected to any input")
		}
	}
	return nil
}

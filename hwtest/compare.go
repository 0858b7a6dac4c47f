// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/segsim"
)

// DefaultIterations is the number of random input sets tried by ComparePart.
//
const DefaultIterations = 1000

func connString(in []segsim.Pin, out []segsim.Pin) string {
	var b strings.Builder
	for _, p := range append(append([]segsim.Pin(nil), in...), out...) {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteRune('=')
		b.WriteString(p.Name)
	}
	return b.String()
}

func specString(pins []segsim.Pin) string {
	var b strings.Builder
	for _, p := range pins {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	return b.String()
}

// ComparePart takes two parts and compares their outputs given the same inputs.
// Both parts must have the same Input/Output interface.
//
// Inputs are held for a whole clock cycle and outputs are compared at the end
// of every cycle, so clocked parts are compared cycle by cycle. The first two
// cycles use all zero and all one inputs, the remaining ones use random
// inputs.
//
func ComparePart(t *testing.T, tpc uint, part1 segsim.NewPartFn, part2 segsim.NewPartFn) {
	t.Helper()
	CompareIter(t, tpc, DefaultIterations, part1, part2)
}

// CompareIter works like ComparePart with a custom number of iterations.
//
func CompareIter(t *testing.T, tpc uint, iter int, part1 segsim.NewPartFn, part2 segsim.NewPartFn) {
	t.Helper()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	ps1, ps2 := part1(""), part2("")

	// compare specs
	if specString(ps1.Inputs) != specString(ps2.Inputs) {
		t.Fatalf("input mismatch: %q != %q", specString(ps1.Inputs), specString(ps2.Inputs))
	}
	if specString(ps1.Outputs) != specString(ps2.Outputs) {
		t.Fatalf("output mismatch: %q != %q", specString(ps1.Outputs), specString(ps2.Outputs))
	}

	conns := connString(ps1.Inputs, ps1.Outputs)
	ps1, ps2 = part1(conns), part2(conns)

	inputs := make([]uint64, len(ps1.Inputs))
	outputs := make([][2]uint64, len(ps1.Outputs))

	// build two wrappers with their own set of outputs
	parts1 := segsim.Parts{ps1}
	for i, o := range ps1.Outputs {
		n := i
		parts1 = append(parts1, segsim.Output(o.Bits, func(v uint64) { outputs[n][0] = v })("in="+o.Name))
	}
	parts2 := segsim.Parts{ps2}
	for i, o := range ps2.Outputs {
		n := i
		parts2 = append(parts2, segsim.Output(o.Bits, func(v uint64) { outputs[n][1] = v })("in="+o.Name))
	}
	w1, err := segsim.Chip("wrapper1", ps1.Inputs, nil, parts1)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := segsim.Chip("wrapper2", ps2.Inputs, nil, parts2)
	if err != nil {
		t.Fatal(err)
	}

	var parts segsim.Parts
	for i, p := range ps1.Inputs {
		k := i
		parts = append(parts, segsim.Input(p.Bits, func() uint64 { return inputs[k] })("out="+p.Name))
	}
	cstr := connString(ps1.Inputs, nil)
	parts = append(parts, w1(cstr), w2(cstr))

	c, err := segsim.NewCircuit(0, tpc, parts)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	errString := func(o int) string {
		var b strings.Builder
		for i, p := range ps1.Inputs {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%#x", p.Name, inputs[i])
		}
		return fmt.Sprintf("cycle %d: %s => %s: %s=%#x, %s=%#x",
			c.Cycles()-1, b.String(), ps1.Outputs[o].Name, ps1.Name, outputs[o][0], ps2.Name, outputs[o][1])
	}
	check := func() {
		t.Helper()
		c.TickTock()
		for o, out := range outputs {
			if out[0] != out[1] {
				t.Fatal(errString(o))
			}
		}
	}

	start := time.Now()

	// try all 0
	check()

	// try all 1
	for i, p := range ps1.Inputs {
		inputs[i] = segsim.Mask(p.Bits)
	}
	check()

	for i := 0; i < iter; i++ {
		for in, p := range ps1.Inputs {
			inputs[in] = rnd.Uint64() & segsim.Mask(p.Bits)
		}
		check()
	}

	elapsed := time.Since(start)
	cycles := c.Cycles()
	t.Logf("%d components. %d steps in %v. %d clock cycles => %.2f Hz", c.Size(), c.Steps(), elapsed, cycles, float64(cycles)/elapsed.Seconds())
}

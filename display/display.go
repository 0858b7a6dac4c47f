package display

import (
	"strconv"

	"github.com/db47h/segsim"
	"github.com/db47h/segsim/hwlib"
)

var slots = func() segsim.NewPartFn {
	var parts segsim.Parts
	for i := 0; i < Digits; i++ {
		n := strconv.Itoa(i)
		parts = append(parts,
			hwlib.Equal(3, uint64(i))("in=sel, out=hit"+n),
			hwlib.And(1)("a=write, b=hit"+n+", out=ld"+n),
			hwlib.Register(4)("in=value, load=ld"+n+", out=d"+n),
		)
	}
	return mustChip(segsim.Chip(
		"Slots",
		segsim.In("sel[3], value[4], write"),
		segsim.Out(digitDecl("d")),
		parts))
}()

// Slots returns the register front end: eight 4 bits digit registers loaded
// from a write bus.
//
//	Inputs: sel[3], value[4], write
//	Outputs: d0[4] ... d7[4]
//	Function: on each clock edge: if write { d<sel> = value }
//
// All digits reset to 0.
func Slots(c string) segsim.Part { return slots(c) }

// Display returns the complete display controller: the register front end
// feeding a multiplex driver whose tick generator pulses every limit cycles.
//
//	Inputs: sel[3], value[4], write
//	Outputs: cs[8], abcdefg[7]
//
// Outputs are active high. The write bus is sampled on the clock edge ending
// the cycle during which it is driven.
func Display(limit uint64) (segsim.NewPartFn, error) {
	drv, err := Driver(limit)
	if err != nil {
		return nil, err
	}
	return segsim.Chip(
		"Display",
		segsim.In("sel[3], value[4], write"),
		segsim.Out("cs[8], abcdefg[7]"),
		segsim.Parts{
			Slots("sel=sel, value=value, write=write, " + valuePins("d", "d")),
			drv(valuePins("v", "d") + ", cs=cs, abcdefg=abcdefg"),
		})
}

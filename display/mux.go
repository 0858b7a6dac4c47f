package display

import (
	"strconv"
	"strings"

	"github.com/db47h/segsim"
	"github.com/db47h/segsim/hwlib"
	"github.com/pkg/errors"
)

// Digits is the number of digit positions of the display.
const Digits = 8

// rotator is a one-hot ring register. It resets with bit 0 set and rotates
// left by one position on every clock edge where ce is set.
type rotator struct {
	CE segsim.Wire `hw:"in,ce"`
	CS segsim.Wire `hw:"out,cs,8"`

	cs uint8
}

func (r *rotator) Update(c *segsim.Circuit) {
	if r.cs == 0 {
		r.cs = 1
	}
	if c.AtTick() && c.GetBool(r.CE) {
		r.cs = r.cs<<1 | r.cs>>(Digits-1)
	}
	c.Set(r.CS, uint64(r.cs))
}

var rotatorSpec = func() *segsim.PartSpec {
	sp := segsim.MakePart(&rotator{})
	sp.Name = "Rotator"
	return sp
}()

// Rotator returns the select pointer of the multiplexer.
//
//	Inputs: ce
//	Outputs: cs[8]
//	Function: on each clock edge: if ce { cs = cs<<1 | cs>>7 }
//
// cs is 0b00000001 after reset and always has exactly one bit set.
func Rotator(c string) segsim.Part { return rotatorSpec.NewPart(c) }

// Selector returns the digit value multiplexer: the value input matching the
// single bit set in cs is routed to out.
//
//	Inputs: sel[8], in0[4] ... in7[4]
//	Outputs: out[4]
func Selector(c string) segsim.Part { return selector(c) }

var selector = hwlib.OneHotMux(Digits, 4)

// valuePins returns the connection string "prefix0=wire0, ..., prefix7=wire7".
func valuePins(pin, wire string) string {
	var b strings.Builder
	for i := 0; i < Digits; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		n := strconv.Itoa(i)
		b.WriteString(pin + n + "=" + wire + n)
	}
	return b.String()
}

// digitDecl declares the pins prefix0[4] to prefix7[4].
func digitDecl(prefix string) string {
	var b strings.Builder
	for i := 0; i < Digits; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(prefix + strconv.Itoa(i) + "[4]")
	}
	return b.String()
}

var multiplexer = mustChip(segsim.Chip(
	"Multiplexer",
	segsim.In(digitDecl("v")+", ce"),
	segsim.Out("cs[8], abcdefg[7]"),
	segsim.Parts{
		Rotator("ce=ce, cs=cs"),
		Selector("sel=cs, " + valuePins("in", "v") + ", out=digit"),
		SevenSegment("value=digit, abcdefg=abcdefg"),
	}))

func mustChip(fn segsim.NewPartFn, err error) segsim.NewPartFn {
	if err != nil {
		panic(err)
	}
	return fn
}

// Multiplexer returns the multiplex driver: it drives the eight digit values
// v0 to v7 one at a time, advancing to the next position on each ce pulse.
//
//	Inputs: v0[4] ... v7[4], ce
//	Outputs: cs[8], abcdefg[7]
//	Function: cs = select pointer, abcdefg = Decode(v<position>)
func Multiplexer(c string) segsim.Part { return multiplexer(c) }

// Driver returns a multiplex driver clocked by its own tick generator.
//
//	Inputs: v0[4] ... v7[4]
//	Outputs: cs[8], abcdefg[7]
func Driver(limit uint64) (segsim.NewPartFn, error) {
	if limit == 0 {
		return nil, errors.Wrap(ErrConfig, "zero tick limit")
	}
	return segsim.Chip(
		"Driver"+strconv.FormatUint(limit, 10),
		segsim.In(digitDecl("v")),
		segsim.Out("cs[8], abcdefg[7]"),
		segsim.Parts{
			Tick(limit)("ce=ce"),
			Multiplexer(valuePins("v", "v") + ", ce=ce, cs=cs, abcdefg=abcdefg"),
		})
}

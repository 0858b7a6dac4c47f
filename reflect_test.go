package segsim_test

import (
	"testing"

	hw "github.com/db47h/segsim"
	hl "github.com/db47h/segsim/hwlib"
	"github.com/db47h/segsim/hwtest"
)

type testMux struct {
	A   [2]hw.Wire `hw:"in,in,4"`
	Sel hw.Wire    `hw:"in"`
	Out hw.Wire    `hw:"out,out,4"`
}

func (m *testMux) Update(c *hw.Circuit) {
	if c.GetBool(m.Sel) {
		c.Set(m.Out, c.Get(m.A[1]))
	} else {
		c.Set(m.Out, c.Get(m.A[0]))
	}
}

func TestMakePart(t *testing.T) {
	m, err := hw.Chip("myMux", hw.In("in0[4], in1[4], sel"), hw.Out("out[4]"), hw.Parts{
		hl.Mux(4)("a=in0, b=in1, sel=sel, out=out"),
	})
	if err != nil {
		t.Fatal(err)
	}

	sp := hw.MakePart((*testMux)(nil))
	if sp.Name != "testMux" {
		t.Errorf("part name %q", sp.Name)
	}
	hwtest.ComparePart(t, 4, m, sp.NewPart)
}

// accumulator adds Step to its output on every clock cycle while enabled.
// Step is an untagged parameter copied into every instance.
type accumulator struct {
	En   hw.Wire `hw:"in"`
	Out  hw.Wire `hw:"out,out,4"`
	Step uint64
	sum  uint64
}

func (a *accumulator) Update(c *hw.Circuit) {
	if c.AtTick() && c.GetBool(a.En) {
		a.sum += a.Step
	}
	c.Set(a.Out, a.sum)
}

func TestMakePart_params(t *testing.T) {
	acc := hw.MakePart(&accumulator{Step: 3}).NewPart
	var o1, o2 uint64
	c, err := hw.NewCircuit(0, 4, hw.Parts{
		acc("en=true, out=o1"),
		acc("en=true, out=o2"),
		hw.Output(4, func(v uint64) { o1 = v })("in=o1"),
		hw.Output(4, func(v uint64) { o2 = v })("in=o2"),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	for i := uint64(0); i < 8; i++ {
		c.TickTock()
		want := (3 * i) & 0xf
		if o1 != want || o2 != want {
			t.Fatalf("cycle %d: %d, %d, expected %d", i, o1, o2, want)
		}
	}
}

type badUnexported struct {
	out hw.Wire `hw:"out"`
}

func (*badUnexported) Update(*hw.Circuit) {}

type badTag struct {
	Out hw.Wire `hw:"inout"`
}

func (*badTag) Update(*hw.Circuit) {}

type badWidth struct {
	Out hw.Wire `hw:"out,out,65"`
}

func (*badWidth) Update(*hw.Circuit) {}

type badType struct {
	Out uint64 `hw:"out"`
}

func (*badType) Update(*hw.Circuit) {}

type notStruct int

func (*notStruct) Update(*hw.Circuit) {}

func TestMakePart_panics(t *testing.T) {
	for _, d := range []struct {
		name string
		u    hw.Updater
	}{
		{"unexported", (*badUnexported)(nil)},
		{"tag", (*badTag)(nil)},
		{"width", (*badWidth)(nil)},
		{"type", (*badType)(nil)},
		{"kind", (*notStruct)(nil)},
	} {
		t.Run(d.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("MakePart did not panic")
				}
			}()
			hw.MakePart(d.u)
		})
	}
}

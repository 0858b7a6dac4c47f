package hwtest_test

import (
	"testing"

	hw "github.com/db47h/segsim"
	hl "github.com/db47h/segsim/hwlib"
	"github.com/db47h/segsim/hwtest"
)

func TestComparePart(t *testing.T) {
	xor, err := hw.Chip("custom_xor", hw.In("a[4], b[4]"), hw.Out("out[4]"), hw.Parts{
		hl.Or(4)("a=a, b=b, out=or"),
		hl.And(4)("a=a, b=b, out=and"),
		hl.Not(4)("in=and, out=nand"),
		hl.And(4)("a=or, b=nand, out=out"),
	})
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, 8, hl.Xor(4), xor)
}

func TestComparePart_registers(t *testing.T) {
	reg, err := hw.Chip("custom_reg", hw.In("in[8], load"), hw.Out("out[8]"), hw.Parts{
		hl.Mux(8)("a=out, b=in, sel=load, out=next"),
		hl.Register(8)("in=next, load=true, out=out"),
	})
	if err != nil {
		t.Fatal(err)
	}
	hwtest.CompareIter(t, 8, 200, hl.Register(8), reg)
}

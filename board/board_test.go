package board_test

import (
	"testing"

	"github.com/db47h/segsim/board"
	"github.com/db47h/segsim/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type fakePins map[string]*gpiotest.Pin

func (f fakePins) resolve(name string) gpio.PinIO {
	p, ok := f[name]
	if !ok {
		return nil
	}
	return p
}

func newFake(p board.Pinout) fakePins {
	f := make(fakePins)
	for _, group := range [][]string{p.ChipSelect[:], p.Segments[:], p.Leds[:], p.Switches[:]} {
		for _, n := range group {
			if n != "" {
				f[n] = &gpiotest.Pin{N: n}
			}
		}
	}
	return f
}

func levels(f fakePins, names []string) string {
	b := make([]byte, len(names))
	for i, n := range names {
		b[i] = '0'
		if f[n].Read() == gpio.High {
			b[i] = '1'
		}
	}
	return string(b)
}

func TestBind(t *testing.T) {
	f := newFake(board.Nexys4DDR)
	b, err := board.Bind(board.Nexys4DDR, f.resolve)
	if err != nil {
		t.Fatal(err)
	}
	if l := levels(f, board.Nexys4DDR.ChipSelect[:]); l != "11111111" {
		t.Fatalf("chip select after bind: %s", l)
	}
	if l := levels(f, board.Nexys4DDR.Segments[:]); l != "11111111" {
		t.Fatalf("segments after bind: %s", l)
	}

	// digit 3 selected, showing an A
	s := display.Sample{ChipSelect: 0b00001000, Segments: display.Decode(0xa)}
	if err := b.Drive(s); err != nil {
		t.Fatal(err)
	}
	if l := levels(f, board.Nexys4DDR.ChipSelect[:]); l != "11101111" {
		t.Fatalf("chip select: %s", l)
	}
	// a b c e f g lit, d and dp off
	if l := levels(f, board.Nexys4DDR.Segments[:]); l != "00010001" {
		t.Fatalf("segments: %s", l)
	}
	n := b.Writes()
	if n != 7 {
		t.Fatalf("%d pin writes, expected 7", n)
	}
	b.Observe(s)
	if b.Writes() != n || b.Err() != nil {
		t.Fatalf("unchanged sample wrote %d pins, err %v", b.Writes()-n, b.Err())
	}
}

func TestBinding_ledsSwitches(t *testing.T) {
	f := newFake(board.Nexys4DDR)
	b, err := board.Bind(board.Nexys4DDR, f.resolve)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.SetLeds(0x8001); err != nil {
		t.Fatal(err)
	}
	if l := levels(f, board.Nexys4DDR.Leds[:]); l != "1000000000000001" {
		t.Fatalf("leds: %s", l)
	}
	f["U9"].L = gpio.High
	f["P4"].L = gpio.High
	f["R7"].L = gpio.High
	if v := b.Switches(); v != 0x8005 {
		t.Fatalf("switches = %#x", v)
	}
}

func TestBind_missingPin(t *testing.T) {
	f := newFake(board.Nexys4DDR)
	delete(f, "N2")
	if _, err := board.Bind(board.Nexys4DDR, f.resolve); err == nil {
		t.Fatal("expected an error")
	}
}

func TestBinding_device(t *testing.T) {
	p, err := board.ParsePinout("test", `
		# digits and segments only
		display_cs_n: C0 C1 C2 C3 C4 C5 C6 C7
		display_abcdefg: A B C D E F G`)
	if err != nil {
		t.Fatal(err)
	}
	f := newFake(p)
	b, err := board.Bind(p, f.resolve)
	if err != nil {
		t.Fatal(err)
	}
	d, err := display.NewDevice(display.Config{MasterFreq: 1, Period: 1, StepsPerCycle: 4, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	d.Observe(b.Observe)

	for i := 0; i < 16; i++ {
		d.Cycle()
		want := "11111111"
		pos := i % display.Digits
		want = want[:pos] + "0" + want[pos+1:]
		if l := levels(f, p.ChipSelect[:]); l != want {
			t.Fatalf("cycle %d: chip select pins %s, expected %s", i, l, want)
		}
		if l := levels(f, p.Segments[:7]); l != "0000001" {
			t.Fatalf("cycle %d: segment pins %s", i, l)
		}
	}
	if b.Err() != nil {
		t.Fatal(b.Err())
	}
}

func TestParsePinout(t *testing.T) {
	p, err := board.ParsePinout("x", "user_led: L0 L1; user_sw: S0")
	if err != nil {
		t.Fatal(err)
	}
	if p.Leds[0] != "L0" || p.Leds[1] != "L1" || p.Leds[2] != "" || p.Switches[0] != "S0" {
		t.Fatalf("got %+v", p)
	}
	for _, bad := range []string{
		"display_cs_n M1",
		"display_dp: X",
		"display_cs_n: 0 1 2 3 4 5 6 7 8",
	} {
		if _, err := board.ParsePinout("bad", bad); err == nil {
			t.Errorf("ParsePinout(%q): expected an error", bad)
		}
	}
}

package display_test

import (
	"context"
	"fmt"
	"math/bits"
	"math/rand"
	"testing"
	"time"

	"github.com/db47h/segsim/display"
	"github.com/db47h/segsim/hwtest"
	"github.com/pkg/errors"
)

// newDevice returns a device whose tick pulses every limit cycles.
func newDevice(t *testing.T, limit uint64) *display.Device {
	t.Helper()
	d, err := display.NewDevice(display.Config{
		MasterFreq:    float64(limit),
		Period:        1,
		StepsPerCycle: display.MinStepsPerCycle,
		Workers:       1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Limit() != limit {
		t.Fatalf("got limit %d, expected %d", d.Limit(), limit)
	}
	return d
}

// expectedCS returns the chip select word during the given cycle: the pointer
// advances after each pulse, and pulses happen at cycles limit-1, 2*limit-1...
func expectedCS(cycle, limit uint64) uint8 {
	return 1 << ((cycle / limit) % display.Digits)
}

func TestMultiplexer_rotation(t *testing.T) {
	for _, limit := range []uint64{1, 2, 5} {
		t.Run(fmt.Sprint(limit), func(t *testing.T) {
			d := newDevice(t, limit)
			defer d.Close()

			var history []uint8
			for cycle := uint64(0); cycle < 5*display.Digits*limit; cycle++ {
				d.Cycle()
				cs := d.ChipSelect()
				if bits.OnesCount8(cs) != 1 {
					t.Fatalf("cycle %d: chip select %08b is not one-hot", cycle, cs)
				}
				if want := expectedCS(cycle, limit); cs != want {
					t.Fatalf("cycle %d: chip select %08b, expected %08b", cycle, cs, want)
				}
				// 8 ticks bring the pointer back to the same position
				if p := display.Digits * limit; cycle >= p && history[cycle-p] != cs {
					t.Fatalf("cycle %d: chip select %08b, %08b 8 ticks earlier", cycle, cs, history[cycle-p])
				}
				history = append(history, cs)
			}
			if history[0] != 0b00000001 {
				t.Fatalf("initial chip select %08b", history[0])
			}
		})
	}
}

func TestDisplay_allZero(t *testing.T) {
	const limit = 4
	d := newDevice(t, limit)
	defer d.Close()

	// 800 ticks
	for cycle := uint64(0); cycle < 800*limit; cycle++ {
		d.Cycle()
		if want := expectedCS(cycle, limit); d.ChipSelect() != want {
			t.Fatalf("cycle %d: chip select %08b, expected %08b", cycle, d.ChipSelect(), want)
		}
		if d.Segments() != 0b0111111 {
			t.Fatalf("cycle %d: segments %07b", cycle, d.Segments())
		}
	}
}

func TestDisplay_roundTrip(t *testing.T) {
	const limit = 2
	d := newDevice(t, limit)
	defer d.Close()

	for i := 0; i < display.Digits; i++ {
		for v := uint8(0); v < 16; v++ {
			if err := d.Write(i, v); err != nil {
				t.Fatal(err)
			}
			for n := 0; ; n++ {
				if n > display.Digits*limit {
					t.Fatalf("position %d never selected", i)
				}
				d.Cycle()
				if d.Position() == i {
					break
				}
			}
			if want := display.Decode(v); d.Segments() != want {
				t.Fatalf("digit %d = %#x: segments %07b, expected %07b", i, v, d.Segments(), want)
			}
			if got := d.Digits()[i]; got != v {
				t.Fatalf("digit %d = %#x: register holds %#x", i, v, got)
			}
		}
	}
}

func TestDisplay_writeA3(t *testing.T) {
	d := newDevice(t, 3)
	defer d.Close()

	if err := d.Write(3, 0xa); err != nil {
		t.Fatal(err)
	}
	for d.Position() != 3 {
		d.Cycle()
	}
	if d.Segments() != 0b1110111 || d.ChipSelect() != 0b00001000 {
		t.Fatalf("got chip select %08b, segments %07b", d.ChipSelect(), d.Segments())
	}
	// other digits are untouched
	for i, v := range d.Digits() {
		if i != 3 && v != 0 {
			t.Fatalf("digit %d = %#x", i, v)
		}
	}
}

func TestDisplay_noWrite(t *testing.T) {
	d := newDevice(t, 3)
	defer d.Close()

	want := [display.Digits]uint8{1, 2, 3, 4, 5, 6, 7, 8}
	for i, v := range want {
		if err := d.Write(i, v); err != nil {
			t.Fatal(err)
		}
	}
	d.Cycle()

	rnd := rand.New(rand.NewSource(42))
	for cycle := 0; cycle < 2000; cycle++ {
		d.SetBus(display.Bus{Sel: uint8(rnd.Intn(8)), Value: uint8(rnd.Intn(16))})
		d.Cycle()
		if got := d.Digits(); got != want {
			t.Fatalf("cycle %d: digits changed to %v", cycle, got)
		}
	}
}

func TestDisplay_writeErrors(t *testing.T) {
	d := newDevice(t, 3)
	defer d.Close()

	for _, w := range []struct {
		i int
		v uint8
	}{{-1, 0}, {8, 0}, {0, 16}} {
		if err := d.Write(w.i, w.v); errors.Cause(err) != display.ErrRange {
			t.Errorf("Write(%d, %d): got error %v", w.i, w.v, err)
		}
	}
	if d.Cycles() != 0 {
		t.Fatalf("rejected writes ran %d cycles", d.Cycles())
	}
}

func TestDisplay_reference(t *testing.T) {
	for _, limit := range []uint64{1, 3} {
		disp, err := display.Display(limit)
		if err != nil {
			t.Fatal(err)
		}
		hwtest.CompareIter(t, display.MinStepsPerCycle, 500, disp, display.Reference(limit))
	}
}

func TestDevice_model(t *testing.T) {
	const limit = 3
	d := newDevice(t, limit)
	defer d.Close()
	m := display.NewModel(limit)

	rnd := rand.New(rand.NewSource(1))
	for cycle := 0; cycle < 3000; cycle++ {
		b := display.Bus{Sel: uint8(rnd.Intn(8)), Value: uint8(rnd.Intn(16)), Strobe: rnd.Intn(4) == 0}
		d.SetBus(b)
		m.SetBus(b)
		d.Cycle()
		m.Cycle()
		if d.ChipSelect() != m.ChipSelect() || d.Segments() != m.Segments() {
			t.Fatalf("cycle %d: device %08b/%07b, model %08b/%07b",
				cycle, d.ChipSelect(), d.Segments(), m.ChipSelect(), m.Segments())
		}
		if d.Digits() != m.Digits() {
			t.Fatalf("cycle %d: device digits %v, model digits %v", cycle, d.Digits(), m.Digits())
		}
		if m.Counter() >= limit {
			t.Fatalf("cycle %d: model counter %d", cycle, m.Counter())
		}
	}
	if d.Cycles() != m.Cycles() {
		t.Fatalf("device ran %d cycles, model %d", d.Cycles(), m.Cycles())
	}
}

func TestDevice_observe(t *testing.T) {
	const limit = 2
	d := newDevice(t, limit)
	defer d.Close()

	var f display.Frame
	var samples []display.Sample
	d.Observe(f.Observe)
	d.Observe(func(s display.Sample) { samples = append(samples, s) })

	for i, v := range []uint8{0x0, 0x1, 0x2, 0x3, 0xa, 0xb, 0xc, 0xd} {
		if err := d.Write(i, v); err != nil {
			t.Fatal(err)
		}
	}
	f.Reset()
	d.Run(display.Digits*limit + 1)

	if !f.Complete() {
		t.Fatal("frame incomplete")
	}
	if s := f.String(); s != "0123ABCD" {
		t.Fatalf("frame shows %q", s)
	}
	for i, s := range samples {
		if s.Cycle != uint64(i) {
			t.Fatalf("sample %d has cycle number %d", i, s.Cycle)
		}
	}
	lines := f.Lines()
	if lines[1] != "| |  | _| _||_||_ |   _|" {
		t.Fatalf("middle line %q", lines[1])
	}
}

func TestRunner(t *testing.T) {
	d := newDevice(t, 10)
	defer d.Close()
	r := display.NewRunner(d)

	if err := r.Run(context.Background(), 0); errors.Cause(err) != display.ErrConfig {
		t.Fatalf("zero rate: got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	done := make(chan error)
	go func() { done <- r.Run(ctx, 10000) }()

	if err := r.Write(5, 0x7); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != context.DeadlineExceeded {
		t.Fatalf("Run returned %v", err)
	}
	r.Do(func(d *display.Device) {
		d.Cycle()
		if d.Cycles() < 3 {
			t.Fatalf("only %d cycles simulated", d.Cycles())
		}
		if d.Digits()[5] != 0x7 {
			t.Fatalf("digit 5 = %#x", d.Digits()[5])
		}
	})
}

// A rate far above what the host can simulate must not starve Do nor delay
// cancellation.
func TestRunner_overload(t *testing.T) {
	d := newDevice(t, 1)
	defer d.Close()
	r := display.NewRunner(d)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, 1e12) }()

	time.Sleep(200 * time.Millisecond)
	start := time.Now()
	var cycles uint64
	r.Do(func(d *display.Device) { cycles = d.Cycles() })
	if wait := time.Since(start); wait > time.Second {
		t.Fatalf("Do waited %v", wait)
	}
	if cycles == 0 {
		t.Fatal("no cycles simulated")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func ExampleDevice() {
	d, err := display.NewDevice(display.Config{MasterFreq: 1000, Period: 0.004})
	if err != nil {
		panic(err)
	}
	defer d.Close()

	if err := d.Write(3, 0xa); err != nil {
		panic(err)
	}
	for d.Position() != 3 {
		d.Cycle()
	}
	fmt.Printf("cycle %d: cs=%08b abcdefg=%07b\n", d.Sample().Cycle, d.ChipSelect(), d.Segments())
	// Output:
	// cycle 12: cs=00001000 abcdefg=1110111
}

package display

import (
	"strconv"

	"github.com/db47h/segsim"
	"github.com/db47h/segsim/hwlib"
	"github.com/db47h/segsim/internal/logger"
	"github.com/pkg/errors"
)

// ErrRange is returned when a digit index or value does not fit the write bus.
var ErrRange = errors.New("out of range")

// A Bus is the state of the processor write bus for one clock cycle.
type Bus struct {
	Sel    uint8 // digit index, 3 bits
	Value  uint8 // digit value, 4 bits
	Strobe bool
}

// A Sample holds the display outputs at the end of a clock cycle.
type Sample struct {
	Cycle      uint64 // clock cycle index, starting at 0
	ChipSelect uint8  // one-hot, bit i selects position i
	Segments   uint8  // active high, bit 0 is segment a
}

// Position returns the position selected by s.ChipSelect, or -1 if
// ChipSelect is not one-hot.
func (s Sample) Position() int {
	if i, ok := hwlib.OneHotIndex(uint64(s.ChipSelect)); ok {
		return i
	}
	return -1
}

// A Device is a simulated display controller: the Display part mounted in a
// circuit, driven by a host through its write bus.
//
// A Device is not safe for concurrent use. See Runner.
type Device struct {
	cfg   Config
	limit uint64
	c     *segsim.Circuit

	bus    Bus
	cs     uint8
	seg    uint8
	digits [Digits]uint8

	observers []func(Sample)
}

// NewDevice builds a device from the given configuration.
func NewDevice(cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	limit, _ := cfg.Limit()
	drv, err := Driver(limit)
	if err != nil {
		return nil, err
	}

	d := &Device{cfg: cfg, limit: limit}
	parts := segsim.Parts{
		segsim.Input(3, func() uint64 { return uint64(d.bus.Sel) })("out=sel"),
		segsim.Input(4, func() uint64 { return uint64(d.bus.Value) })("out=value"),
		segsim.Input(1, func() uint64 {
			if d.bus.Strobe {
				return 1
			}
			return 0
		})("out=write"),
		Slots("sel=sel, value=value, write=write, " + valuePins("d", "d")),
		drv(valuePins("v", "d") + ", cs=cs, abcdefg=abcdefg"),
		segsim.Output(8, func(v uint64) { d.cs = uint8(v) })("in=cs"),
		segsim.Output(7, func(v uint64) { d.seg = uint8(v) })("in=abcdefg"),
	}
	for i := range d.digits {
		i := i
		parts = append(parts, segsim.Output(4, func(v uint64) { d.digits[i] = uint8(v) })("in=d"+strconv.Itoa(i)))
	}

	d.c, err = segsim.NewCircuit(cfg.Workers, cfg.stepsPerCycle(), parts)
	if err != nil {
		return nil, errors.Wrap(err, "display device")
	}
	logger.Logf("display", "%d cycles per tick, %d components, %d wires, %d steps per cycle",
		limit, d.c.Size(), d.c.Wires(), d.c.SPC())
	return d, nil
}

// Close stops the simulation goroutines. The device must not be used
// afterwards.
func (d *Device) Close() {
	if d.c != nil {
		d.c.Dispose()
		d.c = nil
	}
}

// Config returns the device configuration.
func (d *Device) Config() Config { return d.cfg }

// Limit returns the number of clock cycles between two tick pulses.
func (d *Device) Limit() uint64 { return d.limit }

// Observe registers f to be called with the outputs of every simulated cycle.
func (d *Device) Observe(f func(Sample)) {
	d.observers = append(d.observers, f)
}

// SetBus sets the write bus. It is held until the next call to SetBus.
func (d *Device) SetBus(b Bus) { d.bus = b }

// Bus returns the current state of the write bus.
func (d *Device) Bus() Bus { return d.bus }

// Cycle simulates one clock cycle.
func (d *Device) Cycle() {
	d.c.TickTock()
	if len(d.observers) > 0 {
		s := d.Sample()
		for _, f := range d.observers {
			f(s)
		}
	}
}

// Run simulates n clock cycles.
func (d *Device) Run(n uint64) {
	if len(d.observers) == 0 {
		d.c.Run(n)
		return
	}
	for ; n > 0; n-- {
		d.Cycle()
	}
}

// Write drives a write of value into the digit at index for one cycle. The
// strobe is released when Write returns while index and value stay on the bus.
// The digit register loads on the clock edge ending the write cycle, so the
// new value shows in Digits after the next cycle.
func (d *Device) Write(index int, value uint8) error {
	if index < 0 || index >= Digits {
		return errors.Wrapf(ErrRange, "digit index %d", index)
	}
	if value > 0xf {
		return errors.Wrapf(ErrRange, "digit value %#x", value)
	}
	d.SetBus(Bus{Sel: uint8(index), Value: value, Strobe: true})
	d.Cycle()
	d.bus.Strobe = false
	return nil
}

// Sample returns the outputs of the last simulated cycle.
func (d *Device) Sample() Sample {
	var n uint64
	if c := d.c.Cycles(); c > 0 {
		n = c - 1
	}
	return Sample{Cycle: n, ChipSelect: d.cs, Segments: d.seg}
}

// ChipSelect returns the one-hot chip select word of the last cycle.
func (d *Device) ChipSelect() uint8 { return d.cs }

// Segments returns the segment pattern of the last cycle.
func (d *Device) Segments() uint8 { return d.seg }

// Position returns the selected digit position, or -1 before the first cycle.
func (d *Device) Position() int { return d.Sample().Position() }

// Digits returns the contents of the digit registers.
func (d *Device) Digits() [Digits]uint8 { return d.digits }

// Cycles returns the number of simulated clock cycles.
func (d *Device) Cycles() uint64 { return d.c.Cycles() }

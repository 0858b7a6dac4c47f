package csr

import (
	"github.com/db47h/segsim/display"
	"github.com/db47h/segsim/internal/logger"
)

// A Target receives digit writes. *display.Device and *display.Runner are
// targets.
type Target interface {
	Write(index int, value uint8) error
}

// Peripherals are the devices a SoC bank exposes. Nil fields are left out of
// the map.
type Peripherals struct {
	Display  Target
	Leds     func(v uint16) // called on writes to leds_out
	Switches func() uint16  // read by switches_in
}

// NewSoC returns the register bank of the display SoC:
//
//	display_sel    rw  digit index, 4 bits
//	display_value  rw  digit value, 4 bits
//	display_write  rw  write strobe: writing any value stores display_value
//	                   into the digit selected by display_sel
//	leds_out       rw  16 user LEDs
//	switches_in    ro  16 user switches
//
// display_sel is 4 bits wide but only indexes 0 to 7 address a digit; a strobe
// with a larger index is ignored.
func NewSoC(p Peripherals) *Bank {
	b := NewBank()
	if p.Display != nil {
		dp := b.Peripheral("display")
		sel := dp.Storage("sel", 4, nil)
		value := dp.Storage("value", 4, nil)
		dp.Strobe("write", 8, func(uint32) error {
			i, v := sel.get(), value.get()
			if i >= display.Digits {
				logger.Logf("csr", "display_write: no digit %d, write of %#x ignored", i, v)
				return nil
			}
			return p.Display.Write(int(i), uint8(v))
		})
	}
	if p.Leds != nil {
		b.Peripheral("leds").Storage("out", 16, func(v uint32) error {
			p.Leds(uint16(v))
			return nil
		})
	}
	if p.Switches != nil {
		b.Peripheral("switches").Status("in", 16, func() uint32 { return uint32(p.Switches()) })
	}
	return b
}

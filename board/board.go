// Package board binds a simulated display controller to GPIO pins through
// periph.io.
//
// The Nexys4 DDR drives its display anodes and segments through inverters,
// so the display pins are active low: a selected digit and a lit segment are
// driven Low. The binding applies that polarity; the display core itself is
// active high.
package board

import (
	"strings"

	"github.com/db47h/segsim/display"
	"github.com/db47h/segsim/internal/logger"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// A Pinout names the pins a binding drives. Empty names are not bound.
type Pinout struct {
	Name       string
	ChipSelect [display.Digits]string // display_cs_n, position 0 first
	Segments   [8]string              // display_abcdefg: a to g, then the decimal point
	Leds       [16]string
	Switches   [16]string
}

// Nexys4DDR is the pinout of the labs' Nexys4 DDR platform.
var Nexys4DDR = Pinout{
	Name:       "nexys4ddr",
	ChipSelect: [8]string{"M1", "L1", "N4", "N2", "N5", "M3", "M6", "N6"},
	Segments:   [8]string{"L3", "N1", "L5", "L4", "K3", "M2", "L6", "M4"},
	Leds: [16]string{"T8", "V9", "R8", "T6", "T5", "T4", "U7", "U6",
		"V4", "U3", "V1", "R1", "P5", "U1", "R2", "P2"},
	Switches: [16]string{"U9", "U8", "R7", "R6", "R5", "V7", "V6", "V5",
		"U4", "V2", "U2", "T3", "T1", "R3", "P3", "P4"},
}

// Pin groups, as named in platform tables.
const (
	GroupChipSelect = "display_cs_n"
	GroupSegments   = "display_abcdefg"
	GroupLeds       = "user_led"
	GroupSwitches   = "user_sw"
)

// ParsePinout parses a pinout description: one group per line or per ';'
// separated entry, written as the group name, a colon and the space separated
// pin names, in bit order. For instance:
//
//	display_cs_n: GPIO4 GPIO17 GPIO27 GPIO22 GPIO5 GPIO6 GPIO13 GPIO19
//	display_abcdefg: GPIO26 GPIO18 GPIO23 GPIO24 GPIO25 GPIO12 GPIO16 GPIO20
//
// Groups may list fewer pins than their width; the remaining bits are left
// unbound. Lines starting with '#' are comments.
func ParsePinout(name, desc string) (Pinout, error) {
	p := Pinout{Name: name}
	entries := strings.FieldsFunc(desc, func(r rune) bool { return r == '\n' || r == ';' })
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" || e[0] == '#' {
			continue
		}
		i := strings.IndexByte(e, ':')
		if i < 0 {
			return Pinout{}, errors.Errorf("pinout %s: missing ':' in %q", name, e)
		}
		group, pins := strings.TrimSpace(e[:i]), strings.Fields(e[i+1:])
		var dst []string
		switch group {
		case GroupChipSelect:
			dst = p.ChipSelect[:]
		case GroupSegments:
			dst = p.Segments[:]
		case GroupLeds:
			dst = p.Leds[:]
		case GroupSwitches:
			dst = p.Switches[:]
		default:
			return Pinout{}, errors.Errorf("pinout %s: unknown pin group %q", name, group)
		}
		if len(pins) > len(dst) {
			return Pinout{}, errors.Errorf("pinout %s: %d pins for %s, at most %d", name, len(pins), group, len(dst))
		}
		copy(dst, pins)
	}
	return p, nil
}

// A Resolver returns the pin with the given name, or nil if it does not exist.
type Resolver func(name string) gpio.PinIO

// Host resolves pin names through the periph.io registry. host.Init must have
// been called.
func Host(name string) gpio.PinIO { return gpioreg.ByName(name) }

type outPin struct {
	p gpio.PinOut
	l gpio.Level
}

// A Binding drives pins from display samples.
type Binding struct {
	cs   [display.Digits]*outPin
	seg  [8]*outPin
	leds [16]*outPin
	sw   [16]gpio.PinIn

	writes int
	err    error
}

// Bind resolves the pins of p and drives them to their inactive level: digits
// deselected, segments and LEDs off.
func Bind(p Pinout, resolve Resolver) (*Binding, error) {
	b := new(Binding)
	out := func(group string, names []string, dst []*outPin, off gpio.Level) error {
		for i, n := range names {
			if n == "" {
				continue
			}
			pin := resolve(n)
			if pin == nil {
				return errors.Errorf("%s: %s[%d]: pin %s not found", p.Name, group, i, n)
			}
			if err := pin.Out(off); err != nil {
				return errors.Wrapf(err, "%s: %s[%d]: pin %s", p.Name, group, i, n)
			}
			dst[i] = &outPin{p: pin, l: off}
		}
		return nil
	}
	if err := out(GroupChipSelect, p.ChipSelect[:], b.cs[:], gpio.High); err != nil {
		return nil, err
	}
	if err := out(GroupSegments, p.Segments[:], b.seg[:], gpio.High); err != nil {
		return nil, err
	}
	if err := out(GroupLeds, p.Leds[:], b.leds[:], gpio.Low); err != nil {
		return nil, err
	}
	for i, n := range p.Switches {
		if n == "" {
			continue
		}
		pin := resolve(n)
		if pin == nil {
			return nil, errors.Errorf("%s: %s[%d]: pin %s not found", p.Name, GroupSwitches, i, n)
		}
		if err := pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return nil, errors.Wrapf(err, "%s: %s[%d]: pin %s", p.Name, GroupSwitches, i, n)
		}
		b.sw[i] = pin
	}
	logger.Logf("board", "bound to %s pinout", p.Name)
	return b, nil
}

func (b *Binding) set(o *outPin, l gpio.Level) error {
	if o == nil || o.l == l {
		return nil
	}
	if err := o.p.Out(l); err != nil {
		return errors.Wrap(err, o.p.Name())
	}
	o.l = l
	b.writes++
	return nil
}

// Drive drives the display pins from s. Only pins whose level changes are
// written. The decimal point stays off.
func (b *Binding) Drive(s display.Sample) error {
	for i, o := range b.cs {
		if err := b.set(o, gpio.Level(s.ChipSelect&(1<<uint(i)) == 0)); err != nil {
			return err
		}
	}
	for i, o := range b.seg[:7] {
		if err := b.set(o, gpio.Level(s.Segments&(1<<uint(i)) == 0)); err != nil {
			return err
		}
	}
	return nil
}

// Observe drives s like Drive and records the first error, which Err
// returns. Its signature matches display.Device.Observe.
func (b *Binding) Observe(s display.Sample) {
	if err := b.Drive(s); err != nil && b.err == nil {
		b.err = err
		logger.Logf("board", "%v", err)
	}
}

// Err returns the first error met by Observe.
func (b *Binding) Err() error { return b.err }

// SetLeds lights the user LEDs whose bit is set in v.
func (b *Binding) SetLeds(v uint16) error {
	for i, o := range b.leds {
		if err := b.set(o, gpio.Level(v&(1<<uint(i)) != 0)); err != nil {
			return err
		}
	}
	return nil
}

// Switches returns the state of the user switches. Unbound switches read 0.
func (b *Binding) Switches() uint16 {
	var v uint16
	for i, p := range b.sw {
		if p != nil && p.Read() == gpio.High {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Writes returns the number of pin level changes driven so far, not counting
// the initial levels set by Bind.
func (b *Binding) Writes() int { return b.writes }

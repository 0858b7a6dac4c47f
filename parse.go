package segsim

import (
	"strconv"
	"unicode"

	"github.com/pkg/errors"
)

// A Pin is a named input or output of a part, with its width in bits.
//
type Pin struct {
	Name string
	Bits uint
}

func (p Pin) String() string {
	if p.Bits == 1 {
		return p.Name
	}
	return p.Name + "[" + strconv.Itoa(int(p.Bits)) + "]"
}

// Inputs is a slice of input pins.
//
type Inputs []Pin

// Outputs is a slice of output pins.
//
type Outputs []Pin

// IO parses a pin declaration string and panics on error. See ParseIOSpec.
//
func IO(spec string) []Pin {
	pins, err := ParseIOSpec(spec)
	if err != nil {
		panic(err)
	}
	return pins
}

// In is a wrapper around IO that returns Inputs.
//
func In(spec string) Inputs { return Inputs(IO(spec)) }

// Out is a wrapper around IO that returns Outputs.
//
func Out(spec string) Outputs { return Outputs(IO(spec)) }

// ParseIOSpec parses a comma separated pin declaration string and returns
// the individual pins. A pin name followed by a width between brackets
// declares a word pin of that many bits; a bare name declares a 1 bit pin.
// For example:
//
//	ParseIOSpec("sel[3], value[4], write") // sel is 3 bits, value 4 bits, write 1 bit
//
func ParseIOSpec(spec string) ([]Pin, error) {
	var out []Pin
	sc := scanner{in: spec}
	if sc.skipSpace(); sc.eof() {
		return nil, nil
	}
	for {
		sc.skipSpace()
		name, ok := sc.ident()
		if !ok {
			return nil, sc.errorf("expected pin name")
		}
		p := Pin{Name: name, Bits: 1}
		sc.skipSpace()
		if sc.accept('[') {
			sc.skipSpace()
			n, ok := sc.int()
			if !ok {
				return nil, sc.errorf("missing bus size")
			}
			if n < 1 || n > MaxBits {
				return nil, sc.errorf("bus size out of range")
			}
			p.Bits = uint(n)
			sc.skipSpace()
			if !sc.accept(']') {
				return nil, sc.errorf("missing close bracket")
			}
			sc.skipSpace()
		}
		for _, o := range out {
			if o.Name == p.Name {
				return nil, sc.errorf("duplicate pin name " + p.Name)
			}
		}
		out = append(out, p)
		if sc.eof() {
			return out, nil
		}
		if !sc.accept(',') {
			return nil, sc.errorf("expected comma or end of input")
		}
	}
}

// A Connection connects the pin PP of a part to the wire CW of its host chip.
//
type Connection struct {
	PP string
	CW string
}

// ParseConnections parses a connection configuration like "a=x, b=y" into
// a Connection slice where each Connection.PP is the part's pin name
// and Connection.CW is the name of the wire in the host chip.
//
func ParseConnections(c string) ([]Connection, error) {
	var conns []Connection
	sc := scanner{in: c}
	if sc.skipSpace(); sc.eof() {
		return nil, nil
	}
	for {
		sc.skipSpace()
		pp, ok := sc.ident()
		if !ok {
			return nil, sc.errorf("expected pin name")
		}
		sc.skipSpace()
		if !sc.accept('=') {
			return nil, sc.errorf("expected =")
		}
		sc.skipSpace()
		cw, ok := sc.ident()
		if !ok {
			return nil, sc.errorf("expected wire name")
		}
		conns = append(conns, Connection{pp, cw})
		sc.skipSpace()
		if sc.eof() {
			return conns, nil
		}
		if !sc.accept(',') {
			return nil, sc.errorf("expected comma or end of input")
		}
	}
}

type scanner struct {
	in  string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.in) }

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(rune(s.in[s.pos])) {
		s.pos++
	}
}

func (s *scanner) accept(b byte) bool {
	if !s.eof() && s.in[s.pos] == b {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) ident() (string, bool) {
	start := s.pos
	for !s.eof() {
		r := rune(s.in[s.pos])
		if r == '_' || unicode.IsLetter(r) || s.pos > start && unicode.IsDigit(r) {
			s.pos++
			continue
		}
		break
	}
	return s.in[start:s.pos], s.pos > start
}

func (s *scanner) int() (int, bool) {
	start := s.pos
	for !s.eof() && '0' <= s.in[s.pos] && s.in[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(s.in[start:s.pos])
	return n, err == nil
}

func (s *scanner) errorf(msg string) error {
	return errors.Errorf("in %q at pos %d: %s", s.in, s.pos+1, msg)
}

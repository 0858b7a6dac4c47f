package display

import (
	"github.com/db47h/segsim"
)

// Segment bits of a pattern. A pattern is active high: a set bit means the
// segment is lit.
//
//	 _      a
//	|_|   f g b
//	|_|   e d c
const (
	SegA = 1 << iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG
)

var segments = [16]uint8{
	0x0: 0b0111111,
	0x1: 0b0000110,
	0x2: 0b1011011,
	0x3: 0b1001111,
	0x4: 0b1100110,
	0x5: 0b1101101,
	0x6: 0b1111101,
	0x7: 0b0000111,
	0x8: 0b1111111,
	0x9: 0b1101111,
	0xa: 0b1110111,
	0xb: 0b1111100,
	0xc: 0b0111001,
	0xd: 0b1011110,
	0xe: 0b1111001,
	0xf: 0b1110001,
}

// Decode returns the segment pattern of the hexadecimal digit v. Only the low
// 4 bits of v are used.
func Decode(v uint8) uint8 {
	return segments[v&0xf]
}

var sevenSegment = &segsim.PartSpec{
	Name:    "SevenSegment",
	Inputs:  segsim.In("value[4]"),
	Outputs: segsim.Out("abcdefg[7]"),
	Mount: func(s *segsim.Socket) []segsim.Component {
		value, abcdefg := s.Wire("value"), s.Wire("abcdefg")
		return []segsim.Component{
			func(c *segsim.Circuit) {
				c.Set(abcdefg, uint64(Decode(uint8(c.Get(value)))))
			}}
	}}

// SevenSegment returns a seven segment decoder.
//
//	Inputs: value[4]
//	Outputs: abcdefg[7]
//	Function: abcdefg = Decode(value)
func SevenSegment(c string) segsim.Part { return sevenSegment.NewPart(c) }

var (
	glyphTop = [2]string{"   ", " _ "}
	glyphRow = [8]string{"   ", "  |", " _ ", " _|", "|  ", "| |", "|_ ", "|_|"}
)

// Glyph renders a segment pattern as three lines of ASCII art.
func Glyph(pattern uint8) [3]string {
	a := pattern & SegA
	fgb := (pattern>>1)&0b001 | (pattern>>5)&0b010 | (pattern>>3)&0b100
	edc := (pattern >> 2) & 0b111
	return [3]string{glyphTop[a], glyphRow[fgb], glyphRow[edc]}
}

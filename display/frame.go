package display

import "strings"

// A Frame reconstructs what the multiplexed display shows by remembering the
// last pattern driven at each position. Feed it samples with Observe.
type Frame struct {
	patterns [Digits]uint8
	seen     uint8
}

// Observe records the pattern of sample s at its selected position. Samples
// without a valid chip select are ignored.
func (f *Frame) Observe(s Sample) {
	p := s.Position()
	if p < 0 {
		return
	}
	f.patterns[p] = s.Segments
	f.seen |= 1 << uint(p)
}

// Reset forgets all patterns.
func (f *Frame) Reset() { *f = Frame{} }

// Complete returns true once every position has been observed.
func (f *Frame) Complete() bool { return f.seen == 0xff }

// Pattern returns the last pattern seen at position i and whether position i
// has been observed at all.
func (f *Frame) Pattern(i int) (uint8, bool) {
	return f.patterns[i], f.seen&(1<<uint(i)) != 0
}

// Digit returns the value whose decoded pattern is the one last seen at
// position i, or -1 if position i shows something else or was not observed.
func (f *Frame) Digit(i int) int {
	p, ok := f.Pattern(i)
	if !ok {
		return -1
	}
	for v := range segments {
		if segments[v] == p {
			return v
		}
	}
	return -1
}

// String returns the observed digits as hexadecimal, position 0 first. Digits
// that were not observed or do not decode are shown as '-'.
func (f *Frame) String() string {
	var b [Digits]byte
	for i := range b {
		if v := f.Digit(i); v >= 0 {
			b[i] = "0123456789ABCDEF"[v]
		} else {
			b[i] = '-'
		}
	}
	return string(b[:])
}

// Lines renders the frame as three lines of ASCII art, position 0 leftmost.
func (f *Frame) Lines() [3]string {
	var rows [3]strings.Builder
	for i := 0; i < Digits; i++ {
		g := Glyph(f.patterns[i])
		for r := range rows {
			rows[r].WriteString(g[r])
		}
	}
	return [3]string{rows[0].String(), rows[1].String(), rows[2].String()}
}

package display

import (
	"math/bits"
	"strconv"

	"github.com/db47h/segsim"
)

// CounterBits returns the width of the counter of a tick generator with the
// given limit.
func CounterBits(limit uint64) uint {
	if limit <= 1 {
		return 1
	}
	return uint(bits.Len64(limit - 1))
}

// Tick returns a tick generator producing a one cycle wide enable pulse every
// limit clock cycles. Use TickLimit to compute limit from a clock frequency and
// a period. Tick panics if limit is 0.
//
//	Outputs: ce, count[CounterBits(limit)]
//	Function: ce = count == limit-1
//	          on each clock edge: if ce { count = 0 } else { count++ }
//
// The counter resets to 0, so the first pulse happens during cycle limit-1.
func Tick(limit uint64) segsim.NewPartFn {
	if limit == 0 {
		panic("tick limit must be at least 1")
	}
	last := limit - 1
	return (&segsim.PartSpec{
		Name:    "Tick" + strconv.FormatUint(limit, 10),
		Outputs: segsim.Outputs{{Name: "ce", Bits: 1}, {Name: "count", Bits: CounterBits(limit)}},
		Mount: func(s *segsim.Socket) []segsim.Component {
			ce, count := s.Wire("ce"), s.Wire("count")
			var cnt uint64
			return []segsim.Component{
				func(c *segsim.Circuit) {
					if c.AtTick() {
						if cnt == last {
							cnt = 0
						} else {
							cnt++
						}
					}
					c.SetBool(ce, cnt == last)
					c.Set(count, cnt)
				}}
		}}).NewPart
}

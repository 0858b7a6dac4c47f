package display

import (
	"github.com/db47h/segsim"
)

type modelState struct {
	count  uint64
	cs     uint8
	digits [Digits]uint8
}

// Model is a behavioral model of the display controller. It produces, cycle
// by cycle, the same outputs as a Device built with the same tick limit, and
// serves as a reference for it.
//
// State is double buffered: the next state is computed from the current state
// only, then both are swapped.
type Model struct {
	limit     uint64
	cur, next modelState
	bus       Bus
	latched   Bus
	cycles    uint64
}

// NewModel returns a model in its reset state. It panics if limit is 0.
func NewModel(limit uint64) *Model {
	if limit == 0 {
		panic("tick limit must be at least 1")
	}
	return &Model{limit: limit, cur: modelState{cs: 1}}
}

// SetBus sets the write bus.
func (m *Model) SetBus(b Bus) { m.bus = b }

// Cycle advances the model by one clock cycle. The bus of the previous cycle
// is applied on the edge that starts this one.
func (m *Model) Cycle() {
	if m.cycles > 0 {
		m.clock(m.latched)
	}
	m.latched = m.bus
	m.cycles++
}

// Run advances the model by n clock cycles.
func (m *Model) Run(n uint64) {
	for ; n > 0; n-- {
		m.Cycle()
	}
}

// Write drives a one cycle write, like Device.Write.
func (m *Model) Write(index int, value uint8) {
	m.SetBus(Bus{Sel: uint8(index), Value: value, Strobe: true})
	m.Cycle()
	m.bus.Strobe = false
}

// clock computes the state after a clock edge where the write bus was b.
func (m *Model) clock(b Bus) {
	n := &m.next
	*n = m.cur
	if m.CE() {
		n.count = 0
		n.cs = m.cur.cs<<1 | m.cur.cs>>(Digits-1)
	} else {
		n.count++
	}
	if b.Strobe {
		n.digits[b.Sel&7] = b.Value & 0xf
	}
	m.cur, m.next = m.next, m.cur
}

// CE returns the state of the tick pulse.
func (m *Model) CE() bool { return m.cur.count == m.limit-1 }

// Counter returns the tick counter.
func (m *Model) Counter() uint64 { return m.cur.count }

// ChipSelect returns the select pointer.
func (m *Model) ChipSelect() uint8 { return m.cur.cs }

// Segments returns the pattern of the selected digit.
func (m *Model) Segments() uint8 {
	s := Sample{ChipSelect: m.cur.cs}
	return Decode(m.cur.digits[s.Position()])
}

// Digits returns the digit values.
func (m *Model) Digits() [Digits]uint8 { return m.cur.digits }

// Cycles returns the number of simulated cycles.
func (m *Model) Cycles() uint64 { return m.cycles }

// reference is the Model packaged as a part.
type reference struct {
	Sel   segsim.Wire `hw:"in,sel,3"`
	Value segsim.Wire `hw:"in,value,4"`
	Write segsim.Wire `hw:"in,write"`
	CS    segsim.Wire `hw:"out,cs,8"`
	Seg   segsim.Wire `hw:"out,abcdefg,7"`

	limit uint64
	m     *Model
}

func (r *reference) Update(c *segsim.Circuit) {
	if r.m == nil {
		r.m = NewModel(r.limit)
	}
	if c.AtTick() {
		r.m.clock(Bus{Sel: uint8(c.Get(r.Sel)), Value: uint8(c.Get(r.Value)), Strobe: c.GetBool(r.Write)})
	}
	c.Set(r.CS, uint64(r.m.ChipSelect()))
	c.Set(r.Seg, uint64(r.m.Segments()))
}

// Reference returns the Model as a part with the same pins as Display. It
// panics if limit is 0.
func Reference(limit uint64) segsim.NewPartFn {
	if limit == 0 {
		panic("tick limit must be at least 1")
	}
	sp := segsim.MakePart(&reference{limit: limit})
	sp.Name = "Reference"
	return sp.NewPart
}

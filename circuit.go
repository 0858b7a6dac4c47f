// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package segsim

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// A Component is a component in a circuit that can Get and Set wire states.
//
type Component func(c *Circuit)

// Circuit is a runnable circuit simulation.
//
type Circuit struct {
	s0    []uint64 // wire states frame #0
	s1    []uint64 // wire states frame #1
	cs    []Component
	count int  // wire count
	tpc   uint // steps per clock cycle
	step  uint

	wc []chan struct{}
	wg sync.WaitGroup
}

// NewCircuit builds a new circuit based on the given parts.
//
// workers is the number of goroutines used to update the state of the Circuit
// each step of the simulation. If less or equal to 0, the value of GOMAXPROCS
// will be used.
//
// stepsPerCycle indicates how many simulation steps to run per clock cycle.
// It is rounded up to the next power of two, with a minimum of 2. Every
// combinational part adds one step of propagation delay, so stepsPerCycle must
// be larger than the longest chain of parts between two clocked parts for the
// outputs to be stable at the end of a cycle.
//
// Callers must make sure to call Dispose() once the circuit is no longer needed
// in order to release allocated resources.
//
func NewCircuit(workers int, stepsPerCycle uint, parts Parts) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}

	if stepsPerCycle < 2 {
		stepsPerCycle = 2
	}
	stepsPerCycle--
	stepsPerCycle |= stepsPerCycle >> 1
	stepsPerCycle |= stepsPerCycle >> 2
	stepsPerCycle |= stepsPerCycle >> 4
	stepsPerCycle |= stepsPerCycle >> 8
	stepsPerCycle |= stepsPerCycle >> 16
	stepsPerCycle |= stepsPerCycle >> 32
	stepsPerCycle++

	// new circuit with room for constant value wires.
	cc := &Circuit{count: cstCount, tpc: stepsPerCycle}
	wrap, err := Chip("CIRCUIT", nil, nil, parts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chip wrapper")
	}
	ups := wrap("").Mount(newSocket(cc))
	ups = append(ups, updClock)
	cc.cs = ups
	cc.s0 = make([]uint64, cc.count)
	cc.s1 = make([]uint64, cc.count)
	// init constant wires
	cc.s0[cstTrue] = ^uint64(0)
	cc.s1[cstTrue] = ^uint64(0)
	cc.s0[cstClk] = 1

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers <= 0 {
		workers = 1
	}
	for len(ups) > 0 {
		size := len(ups) / workers
		if size*workers < len(ups) {
			size++
		}
		wc := make(chan struct{}, 1)
		cc.wc = append(cc.wc, wc)
		go worker(cc, ups[:size], wc)
		ups = ups[size:]
	}

	return cc, nil
}

func updClock(c *Circuit) {
	if c.s0[cstFalse] != 0 || c.s0[cstTrue] != ^uint64(0) {
		panic("true or false constants have been overwritten")
	}
	// the clock is high during the first half of a cycle
	if (c.step+1)&(c.tpc-1) < c.tpc/2 {
		c.s1[cstClk] = 1
	} else {
		c.s1[cstClk] = 0
	}
}

// Dispose releases all resources allocated for a circuit and stops
// worker goroutines.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
}

func worker(c *Circuit, cs []Component, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
}

// allocWire allocates a wire of the given width.
//
func (c *Circuit) allocWire(bits uint) Wire {
	w := Wire{N: c.count, Bits: bits}
	c.count++
	return w
}

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint {
	return c.step
}

// SPC returns the stepsPerCycle value.
//
func (c *Circuit) SPC() uint {
	return c.tpc
}

// Cycles returns the number of completed clock cycles.
//
func (c *Circuit) Cycles() uint64 {
	return uint64(c.step / c.tpc)
}

// AtTick returns true if the current step is on the raising edge of the clock
// that ends a cycle. Clocked parts should latch their next state only when
// AtTick returns true. The very first step of a simulation is the reset state
// and is not an edge.
//
func (c *Circuit) AtTick() bool {
	return c.step != 0 && c.step&(c.tpc-1) == 0
}

// AtTock returns true if the current step is on the falling edge of the clock.
//
func (c *Circuit) AtTock() bool {
	return (c.step+c.tpc/2)&(c.tpc-1) == 0
}

// Get returns the state of wire w, masked to its width.
//
func (c *Circuit) Get(w Wire) uint64 {
	return c.s0[w.N] & w.Mask()
}

// GetBool returns true if any bit of wire w is set.
//
func (c *Circuit) GetBool(w Wire) bool {
	return c.Get(w) != 0
}

// Set sets the next state of wire w. v is masked to the width of w.
//
func (c *Circuit) Set(w Wire, v uint64) {
	c.s1[w.N] = v & w.Mask()
}

// SetBool sets wire w to 1 if b is true, 0 otherwise.
//
func (c *Circuit) SetBool(w Wire, b bool) {
	if b {
		c.s1[w.N] = 1
	} else {
		c.s1[w.N] = 0
	}
}

// Step advances the simulation by one step.
//
func (c *Circuit) Step() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- struct{}{}
	}

	c.wg.Wait()
	c.step++
	c.s0, c.s1 = c.s1, c.s0
}

// Tick runs the simulation until the beginning of the next half clock cycle.
//
func (c *Circuit) Tick() {
	for c.s0[cstClk] != 0 {
		c.Step()
	}
}

// Tock runs the simulation until the beginning of the next clock cycle.
// Once Tock returns, the output of clocked components should have stabilized.
//
func (c *Circuit) Tock() {
	for c.s0[cstClk] == 0 {
		c.Step()
	}
}

// TickTock runs the simulation for a whole clock cycle.
//
func (c *Circuit) TickTock() {
	c.Tick()
	c.Tock()
}

// Run runs the simulation for n clock cycles.
//
func (c *Circuit) Run(n uint64) {
	for ; n > 0; n-- {
		c.TickTock()
	}
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }

// Wires returns the wire count in the circuit, including constant wires.
//
func (c *Circuit) Wires() int { return c.count }

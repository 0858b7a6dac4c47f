package display

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/db47h/segsim/internal/logger"
	"github.com/pkg/errors"
)

// RunnerInterval is the wall clock interval between two batches of simulated
// cycles.
const RunnerInterval = 10 * time.Millisecond

// RunnerChunk is the largest number of cycles a Runner simulates without
// releasing the device.
const RunnerChunk = 1024

// A Runner runs a device in real time in its own goroutine and serializes
// host access to it.
type Runner struct {
	mu  sync.Mutex
	dev *Device
}

// NewRunner returns a runner for d.
func NewRunner(d *Device) *Runner {
	return &Runner{dev: d}
}

// Do calls f with exclusive access to the device. The simulation does not
// advance while f runs.
func (r *Runner) Do(f func(d *Device)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f(r.dev)
}

// Write performs Device.Write with exclusive access to the device.
func (r *Runner) Write(index int, value uint8) (err error) {
	r.Do(func(d *Device) { err = d.Write(index, value) })
	return err
}

// Run simulates cyclesPerSecond clock cycles per second of wall clock time
// until ctx is done. It returns ctx.Err().
func (r *Runner) Run(ctx context.Context, cyclesPerSecond float64) error {
	if math.IsNaN(cyclesPerSecond) || math.IsInf(cyclesPerSecond, 0) || cyclesPerSecond <= 0 {
		return errors.Wrapf(ErrConfig, "simulation rate %g cycles/s", cyclesPerSecond)
	}
	logger.Logf("runner", "running at %g cycles/s", cyclesPerSecond)

	// backlog allowed when the host cannot keep up with the requested rate
	maxBatch := uint64(math.Max(1, 2*cyclesPerSecond*RunnerInterval.Seconds()))

	t := time.NewTicker(RunnerInterval)
	defer t.Stop()
	last := time.Now()
	var (
		acc    float64
		behind bool
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		now := time.Now()
		acc += cyclesPerSecond * now.Sub(last).Seconds()
		last = now
		n := uint64(math.Min(acc, math.MaxUint64/2))
		acc -= float64(n)
		if n > maxBatch {
			if !behind {
				logger.Logf("runner", "cannot sustain %g cycles/s, skipping %d cycles", cyclesPerSecond, n-maxBatch)
			}
			behind = true
			n, acc = maxBatch, 0
		} else {
			behind = false
		}
		for n > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			k := n
			if k > RunnerChunk {
				k = RunnerChunk
			}
			r.mu.Lock()
			r.dev.Run(k)
			r.mu.Unlock()
			n -= k
		}
	}
}

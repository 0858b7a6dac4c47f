package display

import (
	"math"

	"github.com/pkg/errors"
)

// Default configuration values. The master clock and digit period are the ones
// of the Nexys4 board the controller was designed for.
const (
	DefaultMasterFreq    = 100e6
	DefaultPeriod        = 0.001
	DefaultStepsPerCycle = 8

	// MinStepsPerCycle is the smallest number of simulation steps per clock
	// cycle for which the display outputs settle before the end of a cycle.
	MinStepsPerCycle = 4
)

// ErrConfig is the cause of all configuration errors.
var ErrConfig = errors.New("invalid display configuration")

// Config holds the construction parameters of a display device.
type Config struct {
	// MasterFreq is the master clock frequency in Hz.
	MasterFreq float64
	// Period is the time in seconds each digit stays selected.
	Period float64
	// StepsPerCycle is the number of simulation steps per clock cycle.
	// 0 selects DefaultStepsPerCycle.
	StepsPerCycle uint
	// Workers is the number of goroutines updating the circuit. 0 or less
	// uses GOMAXPROCS. The display circuit is small and runs fastest with a
	// single worker.
	Workers int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MasterFreq:    DefaultMasterFreq,
		Period:        DefaultPeriod,
		StepsPerCycle: DefaultStepsPerCycle,
		Workers:       1,
	}
}

// Limit returns the number of master clock cycles between two tick pulses.
func (c Config) Limit() (uint64, error) {
	return TickLimit(c.MasterFreq, c.Period)
}

// Validate checks that the configuration describes a buildable device.
func (c Config) Validate() error {
	if _, err := c.Limit(); err != nil {
		return err
	}
	if c.StepsPerCycle != 0 && c.StepsPerCycle < MinStepsPerCycle {
		return errors.Wrapf(ErrConfig, "%d steps per cycle, need at least %d", c.StepsPerCycle, MinStepsPerCycle)
	}
	return nil
}

func (c Config) stepsPerCycle() uint {
	if c.StepsPerCycle == 0 {
		return DefaultStepsPerCycle
	}
	return c.StepsPerCycle
}

// TickLimit returns round(masterFreq × period), the number of master clock
// cycles in one tick period. Non finite or non positive values, and products
// rounding to zero, are rejected.
func TickLimit(masterFreq, period float64) (uint64, error) {
	switch {
	case math.IsNaN(masterFreq) || math.IsInf(masterFreq, 0) || masterFreq <= 0:
		return 0, errors.Wrapf(ErrConfig, "master frequency %g Hz", masterFreq)
	case math.IsNaN(period) || math.IsInf(period, 0) || period <= 0:
		return 0, errors.Wrapf(ErrConfig, "tick period %g s", period)
	}
	limit := math.Round(masterFreq * period)
	if limit < 1 {
		return 0, errors.Wrapf(ErrConfig, "tick period %g s is shorter than one %g Hz clock cycle", period, masterFreq)
	}
	if limit > 1<<63 {
		return 0, errors.Wrapf(ErrConfig, "tick period %g s too long for a %g Hz clock", period, masterFreq)
	}
	return uint64(limit), nil
}

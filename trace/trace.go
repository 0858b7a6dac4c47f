// Package trace records the outputs of a display device and saves them as
// Value Change Dumps, for waveform viewers, or as CBOR recordings that can be
// loaded back.
package trace

import (
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/db47h/segsim/display"
	"github.com/db47h/segsim/internal/logger"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// DefaultMaxChanges is the default capacity of a Recorder.
const DefaultMaxChanges = 1 << 20

// A Change is the state of the display outputs from Cycle on.
type Change struct {
	_          struct{} `cbor:",toarray"`
	Cycle      uint64
	ChipSelect uint8
	Segments   uint8
}

// A Recording is the list of output changes of a device.
type Recording struct {
	MasterFreq float64  `cbor:"1,keyasint"`
	Limit      uint64   `cbor:"2,keyasint"`
	Cycles     uint64   `cbor:"3,keyasint"` // number of recorded cycles
	Changes    []Change `cbor:"4,keyasint"`
	Dropped    uint64   `cbor:"5,keyasint,omitempty"` // changes not recorded
	// Truncated is the first cycle whose outputs are unknown because the
	// recorder was full, or 0 if the recording is complete.
	Truncated uint64 `cbor:"6,keyasint,omitempty"`
}

// End returns the first cycle past the known outputs.
func (r *Recording) End() uint64 {
	if r.Truncated > 0 {
		return r.Truncated
	}
	return r.Cycles
}

// At returns the outputs during the given cycle and false if cycle is outside
// of the recording or past its truncation.
func (r *Recording) At(cycle uint64) (display.Sample, bool) {
	if len(r.Changes) == 0 || cycle < r.Changes[0].Cycle || cycle >= r.End() {
		return display.Sample{}, false
	}
	// last change at or before cycle
	lo, hi := 0, len(r.Changes)
	for hi-lo > 1 {
		m := int(uint(lo+hi) >> 1)
		if r.Changes[m].Cycle <= cycle {
			lo = m
		} else {
			hi = m
		}
	}
	c := r.Changes[lo]
	return display.Sample{Cycle: cycle, ChipSelect: c.ChipSelect, Segments: c.Segments}, true
}

// A Recorder builds a Recording from device samples. It only stores samples
// that differ from the previous one, up to a maximum number of changes. Once
// full, the recording is truncated at the first change that does not fit and
// later changes are only counted.
type Recorder struct {
	rec  Recording
	max  int
	last display.Sample
	seen bool
}

// NewRecorder returns a recorder for a device with the given configuration.
// max <= 0 selects DefaultMaxChanges.
func NewRecorder(cfg display.Config, limit uint64, max int) *Recorder {
	if max <= 0 {
		max = DefaultMaxChanges
	}
	return &Recorder{rec: Recording{MasterFreq: cfg.MasterFreq, Limit: limit}, max: max}
}

// Observe records s. Its signature matches display.Device.Observe.
func (r *Recorder) Observe(s display.Sample) {
	r.rec.Cycles = s.Cycle + 1
	if r.seen && r.last.ChipSelect == s.ChipSelect && r.last.Segments == s.Segments {
		return
	}
	r.last, r.seen = s, true
	if len(r.rec.Changes) >= r.max {
		if r.rec.Dropped == 0 {
			r.rec.Truncated = s.Cycle
			logger.Logf("trace", "recorder full at cycle %d, dropping changes", s.Cycle)
		}
		r.rec.Dropped++
		return
	}
	r.rec.Changes = append(r.rec.Changes, Change{Cycle: s.Cycle, ChipSelect: s.ChipSelect, Segments: s.Segments})
}

// Recording returns the recording so far. It shares storage with the
// recorder.
func (r *Recorder) Recording() *Recording { return &r.rec }

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
	dm, err := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// Save writes r to w in CBOR.
func (r *Recording) Save(w io.Writer) error {
	return errors.Wrap(encMode.NewEncoder(w).Encode(r), "trace: encode")
}

// Load reads a recording written by Save.
func Load(rd io.Reader) (*Recording, error) {
	r := new(Recording)
	if err := decMode.NewDecoder(rd).Decode(r); err != nil {
		return nil, errors.Wrap(err, "trace: decode")
	}
	for i := 1; i < len(r.Changes); i++ {
		if r.Changes[i].Cycle <= r.Changes[i-1].Cycle {
			return nil, errors.Errorf("trace: change %d out of order", i)
		}
	}
	if r.Truncated > r.Cycles {
		return nil, errors.Errorf("trace: truncated at cycle %d past the end of the recording", r.Truncated)
	}
	if n := len(r.Changes); n > 0 && r.Changes[n-1].Cycle >= r.End() {
		return nil, errors.Errorf("trace: change at cycle %d past the end of the recording", r.Changes[n-1].Cycle)
	}
	return r, nil
}

// WriteVCD writes r as a Value Change Dump with a 1 ps timescale. Signals are
// cs and abcdefg, in a "display" scope. A truncated recording ends at its
// truncation.
func (r *Recording) WriteVCD(w io.Writer) error {
	if !(r.MasterFreq > 0) || math.IsInf(r.MasterFreq, 0) {
		return errors.Errorf("trace: invalid master clock frequency %g", r.MasterFreq)
	}
	period := uint64(math.Round(1e12 / r.MasterFreq))
	if period == 0 {
		period = 1
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("$version segsim $end\n")
	bw.WriteString("$comment tick limit " + strconv.FormatUint(r.Limit, 10) + " $end\n")
	bw.WriteString("$timescale 1ps $end\n")
	bw.WriteString("$scope module display $end\n")
	bw.WriteString("$var wire 8 ! cs $end\n")
	bw.WriteString("$var wire 7 \" abcdefg $end\n")
	bw.WriteString("$upscope $end\n")
	bw.WriteString("$enddefinitions $end\n")

	var prev Change
	for i, c := range r.Changes {
		bw.WriteString("#" + strconv.FormatUint(c.Cycle*period, 10) + "\n")
		if i == 0 || c.ChipSelect != prev.ChipSelect {
			bw.WriteString("b" + binary(uint64(c.ChipSelect), 8) + " !\n")
		}
		if i == 0 || c.Segments != prev.Segments {
			bw.WriteString("b" + binary(uint64(c.Segments), 7) + " \"\n")
		}
		prev = c
	}
	if r.Truncated > 0 {
		bw.WriteString("$comment truncated $end\n")
	}
	bw.WriteString("#" + strconv.FormatUint(r.End()*period, 10) + "\n")
	return errors.Wrap(bw.Flush(), "trace: write VCD")
}

func binary(v uint64, bits int) string {
	s := strconv.FormatUint(v, 2)
	for len(s) < bits {
		s = "0" + s
	}
	return s
}

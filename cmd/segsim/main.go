// Command segsim runs the seven segment display SoC in real time with a
// command console on the terminal or a serial line.
//
// On exit, the display outputs can be saved as a Value Change Dump or a CBOR
// recording, and the persistence of vision image as a PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/db47h/segsim/board"
	"github.com/db47h/segsim/console"
	"github.com/db47h/segsim/csr"
	"github.com/db47h/segsim/display"
	"github.com/db47h/segsim/internal/logger"
	"github.com/db47h/segsim/internal/statsview"
	"github.com/db47h/segsim/render"
	"github.com/db47h/segsim/trace"
	"github.com/pkg/errors"
	"github.com/pkg/term"
	"github.com/tarm/serial"
	"periph.io/x/host/v3"
)

const serialBaud = 115200

type options struct {
	cfg     display.Config
	rate    float64
	serial  string
	tty     bool
	pins    string
	trace   string
	png     string
	pngSize [2]int
	csv     string
	stats   bool
	echoLog bool
}

func parseFlags(args []string) (*options, error) {
	o := &options{cfg: display.DefaultConfig()}
	fs := flag.NewFlagSet("segsim", flag.ContinueOnError)
	fs.Float64Var(&o.cfg.MasterFreq, "freq", 100e3, "simulated master clock `frequency` in Hz")
	fs.Float64Var(&o.cfg.Period, "period", display.DefaultPeriod, "multiplexing tick `period` in seconds")
	fs.UintVar(&o.cfg.StepsPerCycle, "spc", display.DefaultStepsPerCycle, "simulation steps per clock cycle")
	fs.IntVar(&o.cfg.Workers, "workers", o.cfg.Workers, "simulation workers, 0 for one per CPU")
	fs.Float64Var(&o.rate, "rate", 100e3, "simulated clock cycles per second of wall clock time")
	fs.StringVar(&o.serial, "serial", "", "run the console on serial `device` instead of stdin")
	fs.BoolVar(&o.tty, "tty", false, "put the controlling terminal in raw mode")
	fs.StringVar(&o.pins, "pins", "", "drive GPIO pins: \"nexys4ddr\" or a pinout `file`")
	fs.StringVar(&o.trace, "trace", "", "save the display outputs to `file` (.vcd or .cbor)")
	fs.StringVar(&o.png, "png", "", "save the display as seen by an eye to `file`")
	fs.IntVar(&o.pngSize[0], "png-width", 800, "PNG width")
	fs.IntVar(&o.pngSize[1], "png-height", 200, "PNG height")
	fs.StringVar(&o.csv, "csr", "", "write the CSR map to `file` and exit")
	fs.BoolVar(&o.stats, "stats", false, "launch the runtime statistics server")
	fs.BoolVar(&o.echoLog, "log", false, "echo log entries to stderr")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errors.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(o.trace)) {
	case "", ".vcd", ".cbor":
	default:
		return nil, errors.Errorf("unsupported trace format %q", o.trace)
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err == flag.ErrHelp {
		return
	}
	if err == nil {
		err = run(o)
	}
	if err != nil && errors.Cause(err) != context.Canceled {
		fmt.Fprintf(os.Stderr, "* error: %v\n", err)
		os.Exit(1)
	}
}

func loadPinout(arg string) (board.Pinout, error) {
	if strings.EqualFold(arg, board.Nexys4DDR.Name) {
		return board.Nexys4DDR, nil
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return board.Pinout{}, errors.Wrap(err, "read pinout")
	}
	return board.ParsePinout(filepath.Base(arg), string(b))
}

// openConsole returns the console input and output. The returned function
// restores the terminal.
func openConsole(o *options) (io.Reader, io.Writer, bool, func(), error) {
	if o.serial != "" {
		p, err := serial.OpenPort(&serial.Config{Name: o.serial, Baud: serialBaud})
		if err != nil {
			return nil, nil, false, nil, errors.Wrapf(err, "open %s", o.serial)
		}
		return p, p, true, func() { p.Close() }, nil
	}
	if o.tty {
		t, err := term.Open("/dev/tty", term.RawMode)
		if err != nil {
			return nil, nil, false, nil, errors.Wrap(err, "open terminal")
		}
		return t, crlf{t}, true, func() {
			t.Restore()
			t.Close()
		}, nil
	}
	return os.Stdin, os.Stdout, false, func() {}, nil
}

// crlf translates line feeds for terminals in raw mode.
type crlf struct{ w io.Writer }

func (c crlf) Write(p []byte) (int, error) {
	_, err := c.w.Write([]byte(strings.ReplaceAll(string(p), "\n", "\r\n")))
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func run(o *options) error {
	if o.echoLog {
		logger.SetEcho(os.Stderr)
	}

	d, err := display.NewDevice(o.cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	periph := csr.Peripherals{Display: d}
	if o.pins != "" {
		p, err := loadPinout(o.pins)
		if err != nil {
			return err
		}
		if _, err := host.Init(); err != nil {
			return errors.Wrap(err, "periph host init")
		}
		b, err := board.Bind(p, board.Host)
		if err != nil {
			return err
		}
		d.Observe(b.Observe)
		periph.Leds = func(v uint16) {
			if err := b.SetLeds(v); err != nil {
				logger.Logf("board", "%v", err)
			}
		}
		periph.Switches = b.Switches
		defer func() {
			if err := b.Err(); err != nil {
				fmt.Fprintf(os.Stderr, "* board: %v\n", err)
			}
		}()
	}
	bank := csr.NewSoC(periph)

	if o.csv != "" {
		return writeFile(o.csv, bank.WriteCSV)
	}

	var rec *trace.Recorder
	if o.trace != "" {
		rec = trace.NewRecorder(o.cfg, d.Limit(), trace.DefaultMaxChanges)
		d.Observe(rec.Observe)
	}
	var pers render.Persistence
	if o.png != "" {
		d.Observe(pers.Observe)
	}

	r, w, echo, restore, err := openConsole(o)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	if o.stats {
		statsview.Launch(ctx, os.Stderr, statsview.DefaultAddress)
	}

	runner := display.NewRunner(d)
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, o.rate) }()

	err = console.New(r, w, runner, bank, echo).Serve(ctx)
	cancel()
	if rerr := <-done; err == nil && errors.Cause(rerr) != context.Canceled {
		err = rerr
	}
	restore()
	if err != nil && errors.Cause(err) != context.Canceled {
		return err
	}

	if rec != nil {
		if err := writeTrace(o.trace, rec.Recording()); err != nil {
			return err
		}
	}
	if o.png != "" {
		if err := writeFile(o.png, func(w io.Writer) error {
			return pers.WritePNG(w, o.pngSize[0], o.pngSize[1])
		}); err != nil {
			return err
		}
	}
	if o.echoLog {
		logger.SetEcho(nil)
	}
	return nil
}

func writeTrace(name string, r *trace.Recording) error {
	if r.Truncated > 0 {
		fmt.Fprintf(os.Stderr, "* trace: truncated at cycle %d, %d changes dropped\n", r.Truncated, r.Dropped)
	}
	if strings.EqualFold(filepath.Ext(name), ".cbor") {
		return writeFile(name, r.Save)
	}
	return writeFile(name, r.WriteVCD)
}

func writeFile(name string, f func(io.Writer) error) (err error) {
	out, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", name)
		}
	}()
	return errors.Wrapf(f(out), "write %s", name)
}

// Package console implements the serial console of the display SoC: a line
// editor and a small command shell driving the CSR bank.
package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/db47h/segsim/csr"
	"github.com/db47h/segsim/display"
	"github.com/db47h/segsim/internal/logger"
	"github.com/google/shlex"
	"github.com/pkg/errors"
)

// Prompt is printed before every command line.
const Prompt = "segsim> "

// MaxLine is the maximum length of a command line. Extra characters are
// dropped.
const MaxLine = 63

// MaxRun is the largest cycle count accepted by the run command.
const MaxRun = 1 << 24

// cycles simulated per device access by the run command
const runChunk = 4096

// A Shell reads commands from a terminal or serial line.
type Shell struct {
	ctx  context.Context
	r    io.Reader
	w    io.Writer
	echo bool

	run   *display.Runner
	bank  *csr.Bank
	frame display.Frame

	line   []byte
	lastCR bool
	cmds   map[string]command
}

type command struct {
	usage string
	help  string
	fn    func(s *Shell, args []string) error
}

// New returns a shell reading from r and writing to w. Commands write to the
// display through bank and access the device through run. If echo is set,
// typed characters are echoed back, as needed on raw terminals and serial
// lines.
func New(r io.Reader, w io.Writer, run *display.Runner, bank *csr.Bank, echo bool) *Shell {
	s := &Shell{ctx: context.Background(), r: r, w: w, echo: echo, run: run, bank: bank}
	s.cmds = map[string]command{
		"help":    {"help", "this command", (*Shell).help},
		"reboot":  {"reboot", "reset the CSR bank", (*Shell).reboot},
		"display": {"display [hex]", "write up to 8 hex digits", (*Shell).display},
		"digit":   {"digit <index> <value>", "write one digit", (*Shell).digit},
		"led":     {"led <mask>", "set the user LEDs", (*Shell).led},
		"show":    {"show", "show the display", (*Shell).show},
		"run":     {"run <cycles>", "run the simulation", (*Shell).runCycles},
		"csr":     {"csr [name [value]]", "list, read or write registers", (*Shell).csr},
		"log":     {"log [n]", "show the last log entries", (*Shell).log},
	}
	run.Do(func(d *display.Device) { d.Observe(s.frame.Observe) })
	return s
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.w, format, args...)
}

// Serve prints the banner, then reads and executes commands until r returns
// io.EOF, in which case Serve returns nil, or until ctx is done. Read errors
// are returned.
//
// Reads are not interruptible: when ctx is done, the goroutine blocked on r
// exits on the next read.
func (s *Shell) Serve(ctx context.Context) error {
	s.ctx = ctx
	defer func() { s.ctx = context.Background() }()
	s.printf("\nsegsim - seven segment display controller\n")
	s.help(nil)
	s.printf(Prompt)

	type chunk struct {
		b   []byte
		err error
	}
	ch := make(chan chunk)
	go func() {
		for {
			buf := make([]byte, 64)
			n, err := s.r.Read(buf)
			select {
			case ch <- chunk{buf[:n], err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-ch:
			for _, b := range c.b {
				s.input(b)
			}
			if c.err == io.EOF {
				return nil
			}
			if c.err != nil {
				return errors.Wrap(c.err, "console")
			}
		}
	}
}

// input handles one typed character.
func (s *Shell) input(b byte) {
	cr := s.lastCR
	s.lastCR = b == '\r'
	switch b {
	case 0x7f, 0x08:
		if len(s.line) > 0 {
			s.line = s.line[:len(s.line)-1]
			if s.echo {
				s.printf("\x08 \x08")
			}
		}
	case 0x07:
	case '\n':
		if cr {
			return
		}
		fallthrough
	case '\r':
		if s.echo {
			s.printf("\n")
		}
		line := string(s.line)
		s.line = s.line[:0]
		s.Exec(line)
		s.printf(Prompt)
	default:
		if len(s.line) >= MaxLine {
			return
		}
		if s.echo {
			s.w.Write([]byte{b})
		}
		s.line = append(s.line, b)
	}
}

// Exec executes a command line.
func (s *Shell) Exec(line string) {
	args, err := shlex.Split(line)
	if err != nil {
		s.printf("error: %v\n", err)
		return
	}
	if len(args) == 0 {
		return
	}
	cmd, ok := s.cmds[args[0]]
	if !ok {
		s.printf("unknown command %q, try help\n", args[0])
		return
	}
	logger.Logf("console", "%s", line)
	if err := cmd.fn(s, args[1:]); err != nil {
		s.printf("%s: %v\n", args[0], err)
	}
}

func (s *Shell) help([]string) error {
	names := make([]string, 0, len(s.cmds))
	for n := range s.cmds {
		names = append(names, n)
	}
	sort.Strings(names)
	s.printf("Available commands:\n")
	for _, n := range names {
		c := s.cmds[n]
		s.printf("%-32s- %s\n", c.usage, c.help)
	}
	return nil
}

func (s *Shell) reboot([]string) error {
	s.bank.Reset()
	s.printf("\nsegsim - seven segment display controller\n")
	return nil
}

func parseUint(arg string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(arg, 0, bits)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", arg)
	}
	return v, nil
}

// writeDigit goes through the CSRs the way firmware does.
func (s *Shell) writeDigit(i, v uint32) error {
	var err error
	s.run.Do(func(*display.Device) {
		if err = s.bank.WriteName("display_sel", i); err != nil {
			return
		}
		if err = s.bank.WriteName("display_value", v); err != nil {
			return
		}
		err = s.bank.WriteName("display_write", 1)
	})
	return err
}

func (s *Shell) display(args []string) error {
	var x uint64
	switch len(args) {
	case 0:
		// no value: show the cycle counter
		s.run.Do(func(d *display.Device) { x = d.Cycles() & 0xffffffff })
	case 1:
		h := strings.TrimPrefix(strings.ToLower(args[0]), "0x")
		if len(h) == 0 || len(h) > display.Digits {
			return errors.Errorf("expected 1 to %d hex digits", display.Digits)
		}
		v, err := strconv.ParseUint(h, 16, 32)
		if err != nil {
			return errors.Errorf("invalid hex value %q", args[0])
		}
		x = v
	default:
		return errors.New("too many arguments")
	}
	for i := 0; i < display.Digits; i++ {
		if err := s.writeDigit(uint32(display.Digits-1-i), uint32(x&0xf)); err != nil {
			return err
		}
		x >>= 4
	}
	return nil
}

func (s *Shell) digit(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: " + s.cmds["digit"].usage)
	}
	i, err := parseUint(args[0], 32)
	if err != nil {
		return err
	}
	v, err := parseUint(args[1], 32)
	if err != nil {
		return err
	}
	if i >= display.Digits || v > 0xf {
		return errors.Errorf("digit %d = %#x out of range", i, v)
	}
	return s.writeDigit(uint32(i), uint32(v))
}

func (s *Shell) led(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: " + s.cmds["led"].usage)
	}
	v, err := parseUint(args[0], 16)
	if err != nil {
		return err
	}
	s.run.Do(func(*display.Device) { err = s.bank.WriteName("leds_out", uint32(v)) })
	return err
}

func (s *Shell) show([]string) error {
	var (
		lines [3]string
		text  string
		cycle uint64
	)
	s.run.Do(func(d *display.Device) {
		lines, text, cycle = s.frame.Lines(), s.frame.String(), d.Cycles()
	})
	for _, l := range lines {
		s.printf("%s\n", l)
	}
	s.printf("%s at cycle %d\n", text, cycle)
	return nil
}

func (s *Shell) runCycles(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: " + s.cmds["run"].usage)
	}
	n, err := parseUint(args[0], 64)
	if err != nil {
		return err
	}
	if n > MaxRun {
		return errors.Errorf("at most %d cycles", MaxRun)
	}
	for n > 0 {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		k := n
		if k > runChunk {
			k = runChunk
		}
		s.run.Do(func(d *display.Device) { d.Run(k) })
		n -= k
	}
	return nil
}

func (s *Shell) csr(args []string) error {
	var err error
	s.run.Do(func(*display.Device) {
		switch len(args) {
		case 0:
			for _, r := range s.bank.Registers() {
				v, _ := s.bank.Read(r.Addr)
				s.printf("%#08x %-16s %s %#x\n", r.Addr, r.Name, r.Mode, v)
			}
		case 1:
			var v uint32
			if v, err = s.bank.ReadName(args[0]); err == nil {
				s.printf("%s = %#x\n", args[0], v)
			}
		case 2:
			var v uint64
			if v, err = parseUint(args[1], 32); err == nil {
				err = s.bank.WriteName(args[0], uint32(v))
			}
		default:
			err = errors.New("too many arguments")
		}
	})
	return err
}

func (s *Shell) log(args []string) error {
	n := uint64(10)
	if len(args) > 0 {
		var err error
		if n, err = parseUint(args[0], 16); err != nil {
			return err
		}
	}
	logger.Tail(s.w, int(n))
	return nil
}

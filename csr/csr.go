// Package csr implements a bank of memory mapped control and status
// registers, laid out the way LiteX maps peripheral CSRs: each peripheral gets
// a 0x800 byte window and its registers follow each other at a 4 byte stride.
package csr

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/db47h/segsim/internal/logger"
	"github.com/pkg/errors"
)

// Register access errors.
var (
	ErrUnmapped = errors.New("unmapped register")
	ErrReadOnly = errors.New("read-only register")
)

// Layout constants.
const (
	Base         = 0xe0000000 // CSR region base address
	WindowSize   = 0x800      // address space of a peripheral
	RegisterSize = 4          // address stride between two registers
)

// Mode is the access mode of a register.
type Mode int

// Access modes.
const (
	RW Mode = iota // storage, read back what was written
	RO             // status
	Strobe         // writes trigger an action and are not stored, reads return 0
)

// String returns the mode as written in csr.csv files. Strobes are "rw" there.
func (m Mode) String() string {
	if m == RO {
		return "ro"
	}
	return "rw"
}

// A Register is a named register of a bank.
type Register struct {
	Name string // full name, peripheral_register
	Addr uint32
	Bits uint
	Mode Mode

	value uint32
	read  func() uint32
	write func(v uint32) error
}

func (r *Register) mask() uint32 {
	if r.Bits >= 32 {
		return ^uint32(0)
	}
	return 1<<r.Bits - 1
}

// A Bank maps registers to addresses.
type Bank struct {
	regs   []*Register
	byAddr map[uint32]*Register
	byName map[string]*Register
	bases  []peripheral
}

type peripheral struct {
	name string
	addr uint32
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{
		byAddr: make(map[uint32]*Register),
		byName: make(map[string]*Register),
	}
}

// A Peripheral adds registers to a bank at consecutive addresses of its
// window.
type Peripheral struct {
	b    *Bank
	name string
	next uint32
	end  uint32
}

// Peripheral allocates the next window of the bank to the named peripheral.
func (b *Bank) Peripheral(name string) *Peripheral {
	addr := Base + uint32(len(b.bases))*WindowSize
	b.bases = append(b.bases, peripheral{name, addr})
	return &Peripheral{b: b, name: name, next: addr, end: addr + WindowSize}
}

// Storage adds a read/write register. If write is not nil, it is called with
// every value written, masked to the register width, before it is stored.
func (p *Peripheral) Storage(name string, bits uint, write func(v uint32) error) *Register {
	return p.add(&Register{Name: name, Bits: bits, Mode: RW, write: write})
}

// Status adds a read-only register whose value is returned by read.
func (p *Peripheral) Status(name string, bits uint, read func() uint32) *Register {
	return p.add(&Register{Name: name, Bits: bits, Mode: RO, read: read})
}

// Strobe adds a write-only action register.
func (p *Peripheral) Strobe(name string, bits uint, write func(v uint32) error) *Register {
	return p.add(&Register{Name: name, Bits: bits, Mode: Strobe, write: write})
}

func (p *Peripheral) add(r *Register) *Register {
	r.Name = p.name + "_" + r.Name
	if p.next >= p.end {
		panic("peripheral " + p.name + " window overflow")
	}
	r.Addr = p.next
	p.next += RegisterSize
	if _, ok := p.b.byName[r.Name]; ok {
		panic("duplicate register " + r.Name)
	}
	p.b.regs = append(p.b.regs, r)
	p.b.byAddr[r.Addr] = r
	p.b.byName[r.Name] = r
	return r
}

// Lookup returns the register with the given name.
func (b *Bank) Lookup(name string) (*Register, bool) {
	r, ok := b.byName[name]
	return r, ok
}

// Registers returns all registers in address order.
func (b *Bank) Registers() []*Register {
	rs := append([]*Register(nil), b.regs...)
	sort.Slice(rs, func(i, j int) bool { return rs[i].Addr < rs[j].Addr })
	return rs
}

func (b *Bank) at(addr uint32) (*Register, error) {
	r, ok := b.byAddr[addr]
	if !ok {
		return nil, errors.Wrapf(ErrUnmapped, "address %#08x", addr)
	}
	return r, nil
}

// Read returns the value of the register at addr.
func (b *Bank) Read(addr uint32) (uint32, error) {
	r, err := b.at(addr)
	if err != nil {
		return 0, err
	}
	return r.get(), nil
}

// Write writes v to the register at addr. Values are masked to the register
// width.
func (b *Bank) Write(addr uint32, v uint32) error {
	r, err := b.at(addr)
	if err != nil {
		return err
	}
	return r.set(v)
}

// ReadName returns the value of the named register.
func (b *Bank) ReadName(name string) (uint32, error) {
	r, ok := b.byName[name]
	if !ok {
		return 0, errors.Wrap(ErrUnmapped, name)
	}
	return r.get(), nil
}

// WriteName writes v to the named register.
func (b *Bank) WriteName(name string, v uint32) error {
	r, ok := b.byName[name]
	if !ok {
		return errors.Wrap(ErrUnmapped, name)
	}
	return r.set(v)
}

// Reset clears all storage registers without calling their write hooks.
func (b *Bank) Reset() {
	for _, r := range b.regs {
		r.value = 0
	}
	logger.Log("csr", "reset")
}

func (r *Register) get() uint32 {
	switch r.Mode {
	case RO:
		return r.read() & r.mask()
	case Strobe:
		return 0
	}
	return r.value
}

func (r *Register) set(v uint32) error {
	if r.Mode == RO {
		return errors.Wrap(ErrReadOnly, r.Name)
	}
	v &= r.mask()
	if r.write != nil {
		if err := r.write(v); err != nil {
			return errors.Wrap(err, r.Name)
		}
	}
	if r.Mode == RW {
		r.value = v
	}
	return nil
}

// WriteCSV writes the register map in the csr.csv format of LiteX builds:
// one csr_base line per peripheral followed by a csr_register line per
// register.
func (b *Bank) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	hex := func(a uint32) string { return "0x" + strconv.FormatUint(uint64(a), 16) }
	for _, p := range b.bases {
		if err := cw.Write([]string{"csr_base", p.name, hex(p.addr), "", ""}); err != nil {
			return err
		}
	}
	for _, r := range b.Registers() {
		size := strconv.Itoa(int((r.Bits + 7) / 8))
		if err := cw.Write([]string{"csr_register", r.Name, hex(r.Addr), size, r.Mode.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "csr.csv")
}

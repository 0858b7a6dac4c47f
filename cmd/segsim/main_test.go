package main

import (
	"flag"
	"testing"

	"github.com/db47h/segsim/display"
	"github.com/pkg/errors"
)

func TestParseFlags(t *testing.T) {
	data := []struct {
		name  string
		args  []string
		limit uint64
		err   error // cause, nil for any error when fails is set
		fails bool
	}{
		{"defaults", nil, 100, nil, false},
		{"limit", []string{"-freq", "1e6", "-period", "1e-3"}, 1000, nil, false},
		{"vcd", []string{"-trace", "out.VCD"}, 100, nil, false},
		{"cbor", []string{"-trace", "dir/out.cbor", "-png", "x.png"}, 100, nil, false},
		{"trace_ext", []string{"-trace", "out.png"}, 0, nil, true},
		{"spc", []string{"-spc", "2"}, 0, display.ErrConfig, true},
		{"period", []string{"-period", "0"}, 0, display.ErrConfig, true},
		{"short", []string{"-freq", "10", "-period", "0.01"}, 0, display.ErrConfig, true},
		{"args", []string{"extra"}, 0, nil, true},
		{"unknown", []string{"-nope"}, 0, nil, true},
		{"help", []string{"-h"}, 0, flag.ErrHelp, true},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			o, err := parseFlags(d.args)
			if d.fails {
				if err == nil {
					t.Fatal("expected an error")
				}
				if d.err != nil && errors.Cause(err) != d.err {
					t.Fatalf("got %v, expected %v", err, d.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if l, _ := o.cfg.Limit(); l != d.limit {
				t.Fatalf("limit %d, expected %d", l, d.limit)
			}
		})
	}
}

func TestParseFlags_values(t *testing.T) {
	o, err := parseFlags([]string{"-spc", "16", "-workers", "0", "-rate", "5000", "-serial", "/dev/ttyUSB1", "-log"})
	if err != nil {
		t.Fatal(err)
	}
	if o.cfg.StepsPerCycle != 16 || o.cfg.Workers != 0 || o.rate != 5000 || o.serial != "/dev/ttyUSB1" || !o.echoLog {
		t.Fatalf("%+v", o)
	}
	if o.pngSize != [2]int{800, 200} {
		t.Fatalf("PNG size %v", o.pngSize)
	}
}

func TestLoadPinout(t *testing.T) {
	p, err := loadPinout("Nexys4DDR")
	if err != nil {
		t.Fatal(err)
	}
	if p.ChipSelect[0] != "M1" {
		t.Fatalf("cs0 on %s", p.ChipSelect[0])
	}
	if _, err := loadPinout("no/such/pinout"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

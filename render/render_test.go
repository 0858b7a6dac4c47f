package render_test

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/db47h/segsim/display"
	"github.com/db47h/segsim/render"
)

func TestPersistence(t *testing.T) {
	var p render.Persistence
	if p.Brightness(0, 0) != 0 {
		t.Fatal("empty persistence is lit")
	}
	// a full rotation showing 8 on every digit except the last, blank
	for i := 0; i < display.Digits; i++ {
		s := display.Sample{ChipSelect: 1 << uint(i), Segments: display.Decode(8)}
		if i == 7 {
			s.Segments = 0
		}
		p.Observe(s)
	}
	p.Observe(display.Sample{}) // not one-hot, counts as dark time
	if p.Cycles() != 9 {
		t.Fatalf("%d cycles", p.Cycles())
	}
	if b := p.Brightness(0, 6); b != 8.0/9 {
		t.Fatalf("brightness %v", b)
	}
	if b := p.Brightness(7, 0); b != 0 {
		t.Fatalf("blank digit brightness %v", b)
	}
	p.Reset()
	if p.Cycles() != 0 {
		t.Fatal("Reset")
	}
}

func near(c color.Color, want color.RGBA) bool {
	r, g, b, _ := c.RGBA()
	d := func(x uint32, y uint8) bool {
		v := int(x>>8) - int(y)
		return v > -8 && v < 8
	}
	return d(r, want.R) && d(g, want.G) && d(b, want.B)
}

func TestImage(t *testing.T) {
	d, err := display.NewDevice(display.Config{MasterFreq: 1, Period: 1, StepsPerCycle: 4, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	var p render.Persistence
	d.Observe(p.Observe)
	if err := d.Write(2, 1); err != nil {
		t.Fatal(err)
	}
	d.Cycle()
	p.Reset()
	d.Run(display.Digits * 10)

	const w, h = 400, 100
	img := p.Image(w, h)
	l := render.Layout{W: w, H: h}

	// digit 0 shows 0: a lit, g off
	if c := img.At(l.Center(0, 0).X, l.Center(0, 0).Y); !near(c, render.SegmentOn) {
		t.Errorf("digit 0 segment a: %v", c)
	}
	if c := img.At(l.Center(0, 6).X, l.Center(0, 6).Y); !near(c, render.SegmentOff) {
		t.Errorf("digit 0 segment g: %v", c)
	}
	// digit 2 shows 1: only b and c lit
	if c := img.At(l.Center(2, 0).X, l.Center(2, 0).Y); !near(c, render.SegmentOff) {
		t.Errorf("digit 2 segment a: %v", c)
	}
	if c := img.At(l.Center(2, 1).X, l.Center(2, 1).Y); !near(c, render.SegmentOn) {
		t.Errorf("digit 2 segment b: %v", c)
	}
	if c := img.At(0, 0); !near(c, render.Background) {
		t.Errorf("background: %v", c)
	}

	var buf bytes.Buffer
	if err := p.WritePNG(&buf, w, h); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != w || cfg.Height != h {
		t.Fatalf("PNG is %dx%d", cfg.Width, cfg.Height)
	}
	if err := p.WritePNG(&buf, 4, 4); err == nil {
		t.Fatal("expected an error for a tiny image")
	}
}

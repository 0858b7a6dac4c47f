// Package render draws what an eye would see of a multiplexed seven segment
// display: each segment is lit in proportion to the time it was driven.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/db47h/segsim/display"
	"github.com/pkg/errors"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Colors of the rendered display.
var (
	Background = color.RGBA{0x10, 0x10, 0x10, 0xff}
	SegmentOff = color.RGBA{0x30, 0x0c, 0x0a, 0xff}
	SegmentOn  = color.RGBA{0xff, 0x28, 0x14, 0xff}
)

// Persistence accumulates how long each segment of each digit was lit.
type Persistence struct {
	on    [display.Digits][7]uint64
	total uint64
}

// Observe accounts for one cycle of s. Its signature matches
// display.Device.Observe.
func (p *Persistence) Observe(s display.Sample) {
	p.total++
	pos := s.Position()
	if pos < 0 {
		return
	}
	for i := range p.on[pos] {
		if s.Segments&(1<<uint(i)) != 0 {
			p.on[pos][i]++
		}
	}
}

// Reset clears the accumulated times.
func (p *Persistence) Reset() { *p = Persistence{} }

// Cycles returns the number of observed cycles.
func (p *Persistence) Cycles() uint64 { return p.total }

// Brightness returns the brightness of segment seg (0 is a) of the digit at
// position pos, between 0 and 1. A segment lit whenever its digit is selected
// has brightness 1.
func (p *Persistence) Brightness(pos, seg int) float64 {
	if p.total == 0 {
		return 0
	}
	b := float64(p.on[pos][seg]) * display.Digits / float64(p.total)
	return math.Min(b, 1)
}

// Layout places digits and segments in a w×h image. Position 0 is leftmost.
type Layout struct {
	W, H int
}

// digit returns the origin and size of the digit at pos. The digit is a 1×2
// unit box scaled by unit.
func (l Layout) digit(pos int) (x, y, unit float64) {
	cw := float64(l.W) / display.Digits
	unit = math.Min(cw*0.6, float64(l.H)*0.8/2)
	x = cw*float64(pos) + (cw-unit)/2
	y = (float64(l.H) - 2*unit) / 2
	return x, y, unit
}

// segment outlines in digit units: start and end of the segment axis.
var axes = [7][4]float64{
	{0.1, 0, 0.9, 0}, // a
	{1, 0.1, 1, 0.9}, // b
	{1, 1.1, 1, 1.9}, // c
	{0.1, 2, 0.9, 2}, // d
	{0, 1.1, 0, 1.9}, // e
	{0, 0.1, 0, 0.9}, // f
	{0.1, 1, 0.9, 1}, // g
}

const halfWidth = 0.09

// polygon returns the hexagon of segment seg at pos, in pixels.
func (l Layout) polygon(pos, seg int) []fixed.Point26_6 {
	ox, oy, u := l.digit(pos)
	a := axes[seg]
	x0, y0, x1, y1 := ox+a[0]*u, oy+a[1]*u, ox+a[2]*u, oy+a[3]*u
	h := halfWidth * u
	p := rasterx.ToFixedP
	if y0 == y1 {
		return []fixed.Point26_6{
			p(x0, y0), p(x0+h, y0-h), p(x1-h, y0-h),
			p(x1, y0), p(x1-h, y0+h), p(x0+h, y0+h),
		}
	}
	return []fixed.Point26_6{
		p(x0, y0), p(x0+h, y0+h), p(x0+h, y1-h),
		p(x0, y1), p(x0-h, y1-h), p(x0-h, y0+h),
	}
}

// Center returns the pixel at the center of segment seg of the digit at pos.
func (l Layout) Center(pos, seg int) image.Point {
	ox, oy, u := l.digit(pos)
	a := axes[seg]
	return image.Pt(int(ox+(a[0]+a[2])/2*u), int(oy+(a[1]+a[3])/2*u))
}

func mix(off, on color.RGBA, b float64) color.RGBA {
	m := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*b)) }
	return color.RGBA{m(off.R, on.R), m(off.G, on.G), m(off.B, on.B), 0xff}
}

// Image draws the display as seen through p in a w×h image.
func (p *Persistence) Image(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = [4]uint8{Background.R, Background.G, Background.B, Background.A}[i&3]
	}
	l := Layout{w, h}
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	f := rasterx.NewFiller(w, h, scanner)
	for pos := 0; pos < display.Digits; pos++ {
		for seg := 0; seg < 7; seg++ {
			f.Clear()
			f.SetColor(mix(SegmentOff, SegmentOn, p.Brightness(pos, seg)))
			pts := l.polygon(pos, seg)
			f.Start(pts[0])
			for _, pt := range pts[1:] {
				f.Line(pt)
			}
			f.Stop(true)
			f.Draw()
		}
	}
	return img
}

// WritePNG writes the w×h image of p to wr as a PNG.
func (p *Persistence) WritePNG(wr io.Writer, w, h int) error {
	if w < display.Digits || h < 2 {
		return errors.Errorf("render: image size %dx%d too small", w, h)
	}
	return errors.Wrap(png.Encode(wr, p.Image(w, h)), "render: encode PNG")
}

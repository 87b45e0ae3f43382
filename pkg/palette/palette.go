// Package palette maps cell pressures to colours for the flow renderers.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/mazznoer/colorgrad"
)

// Fixed colours shared by every renderer.
var (
	Background = color.RGBA{R: 0x0f, G: 0x0f, B: 0x0f, A: 0xff} // gray6
	Solid      = color.RGBA{R: 0x29, G: 0x29, B: 0x29, A: 0xff} // gray16
	GridLine   = Solid
	Border     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Label      = Background
	Arrow      = color.RGBA{R: 0x00, G: 0xcd, B: 0x66, A: 0xff} // SpringGreen3
)

// Mapper turns a pressure into a display colour.
type Mapper interface {
	Color(pressure float64) color.RGBA
}

// Scale places a pressure relative to the outlet (0) and inlet (1).
type Scale struct {
	Outlet, Inlet float64
}

// Fraction returns (p - Outlet) / (Inlet - Outlet), or 0 when the two
// boundaries are equal.
func (s Scale) Fraction(p float64) float64 {
	d := s.Inlet - s.Outlet
	if d == 0 {
		return 0
	}
	return (p - s.Outlet) / d
}

// Diverging is white at the outlet pressure, shading to blue above it and to
// red below it. Full saturation is reached at 1.5 times the inlet-outlet drop
// on either side.
type Diverging struct {
	Scale
}

func (d Diverging) Color(p float64) color.RGBA {
	f := d.Fraction(p)
	if f <= 0 {
		t := clamp01((f + 1.5) / 1.5)
		g := uint8(255 * t)
		return color.RGBA{R: 255, G: g, B: g, A: 0xff}
	}
	t := clamp01(f / 1.5)
	c := uint8(255 * (1 - t))
	return color.RGBA{R: c, G: c, B: 255, A: 0xff}
}

// Sci is the four-segment blue-cyan-green-yellow-red scientific map between
// the outlet and inlet pressures.
type Sci struct {
	Scale
}

func (s Sci) Color(p float64) color.RGBA {
	val := min(max(s.Fraction(p), 0), 0.9999)
	const m = 0.25
	num := math.Floor(val / m)
	sv := (val - num*m) / m
	var r, g, b float64

	switch num {
	case 0:
		r, g, b = 0, sv, 1
	case 1:
		r, g, b = 0, 1, 1-sv
	case 2:
		r, g, b = sv, 1, 0
	case 3:
		r, g, b = 1, 1-sv, 0
	}

	return color.RGBA{
		R: uint8(255 * r),
		G: uint8(255 * g),
		B: uint8(255 * b),
		A: 0xff,
	}
}

// lutSize is the number of samples taken from a colorgrad gradient.
const lutSize = 256

// Gradient samples a colorgrad gradient between the outlet (first entry) and
// inlet (last entry) pressures.
type Gradient struct {
	Scale
	lut []color.RGBA
}

func newGradient(g colorgrad.Gradient, s Scale) Gradient {
	colors := g.Colors(lutSize)
	lut := make([]color.RGBA, len(colors))
	for i, c := range colors {
		lut[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return Gradient{Scale: s, lut: lut}
}

func (g Gradient) Color(p float64) color.RGBA {
	idx := int(math.Round(clamp01(g.Fraction(p)) * float64(len(g.lut)-1)))
	return g.lut[idx]
}

var gradients = map[string]func() colorgrad.Gradient{
	"viridis": colorgrad.Viridis,
	"turbo":   colorgrad.Turbo,
	"plasma":  colorgrad.Plasma,
	"inferno": colorgrad.Inferno,
	"magma":   colorgrad.Magma,
}

// Default is the scheme used when none is requested.
const Default = "pressure"

// Names lists every scheme accepted by New.
func Names() []string {
	names := []string{Default, "sci"}
	rest := make([]string, 0, len(gradients))
	for n := range gradients {
		rest = append(rest, n)
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// New returns the named scheme scaled between the outlet and inlet
// pressures.
func New(name string, outlet, inlet float64) (Mapper, error) {
	s := Scale{Outlet: outlet, Inlet: inlet}
	switch name {
	case "", Default:
		return Diverging{s}, nil
	case "sci":
		return Sci{s}, nil
	}
	g, ok := gradients[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q, want one of %v", name, Names())
	}
	return newGradient(g(), s), nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), 1)
}

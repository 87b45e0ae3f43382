// Package export draws flow snapshots into images without a window.
package export

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/TheFellow/gridflow/pkg/flow"
	"github.com/TheFellow/gridflow/pkg/palette"
)

// Options controls the frame layout. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	BoxSize   float64 // pixels per cell
	ArrowSize float64 // pixels per unit velocity
	Margin    float64

	Labels   bool    // draw the pressure of every open cell
	FontPath string  // TrueType face for labels; empty uses the built-in bitmap face
	FontSize float64 // points, only with FontPath

	Palette palette.Mapper // nil uses the default scheme for the snapshot's boundaries
}

// DefaultOptions matches the 30x15 preset of the interactive viewer.
func DefaultOptions() Options {
	return Options{
		BoxSize:   40,
		ArrowSize: 40,
		Margin:    50,
		Labels:    true,
		FontSize:  8,
	}
}

// Size returns the image size needed for a snapshot.
func (o Options) Size(s flow.Snapshot) (int, int) {
	w := float64(s.Width())*o.BoxSize + 2*o.Margin
	h := float64(s.Height())*o.BoxSize + 2*o.Margin
	return int(math.Ceil(w)), int(math.Ceil(h))
}

// Render draws one frame.
func Render(s flow.Snapshot, o Options) (image.Image, error) {
	if o.BoxSize <= 0 {
		return nil, fmt.Errorf("box size must be positive, got %g", o.BoxSize)
	}
	pal := o.Palette
	if pal == nil {
		pal = palette.Diverging{Scale: palette.Scale{Outlet: s.OutletPressure, Inlet: s.InletPressure}}
	}

	w, h := o.Size(s)
	dc := gg.NewContext(w, h)
	if o.FontPath != "" {
		if err := dc.LoadFontFace(o.FontPath, o.FontSize); err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
	}
	dc.SetColor(palette.Background)
	dc.Clear()

	drawCells(dc, s, o, pal)
	drawGrid(dc, s, o)
	drawArrows(dc, s, o)
	return dc.Image(), nil
}

// WritePNG renders a frame and encodes it to wr.
func WritePNG(wr io.Writer, s flow.Snapshot, o Options) error {
	img, err := Render(s, o)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(wr)
}

// SavePNG renders a frame into the file at path.
func SavePNG(path string, s flow.Snapshot, o Options) error {
	img, err := Render(s, o)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}

func drawCells(dc *gg.Context, s flow.Snapshot, o Options, pal palette.Mapper) {
	box, m := o.BoxSize, o.Margin
	for i := 0; i < s.Width(); i++ {
		for j := 0; j < s.Height(); j++ {
			x, y := float64(i)*box+m, float64(j)*box+m
			if !s.Cells.Open(i, j) {
				dc.SetColor(palette.Solid)
				dc.DrawRectangle(x, y, box, box)
				dc.Fill()
				continue
			}
			p := s.Pressure.At(i, j)
			dc.SetColor(pal.Color(p))
			dc.DrawRectangle(x, y, box, box)
			dc.Fill()
			if o.Labels {
				dc.SetColor(palette.Label)
				dc.DrawStringAnchored(fmt.Sprintf("% .2f", p), x+box/2, y+box/2, 0.5, 0.5)
			}
		}
	}
}

func drawGrid(dc *gg.Context, s flow.Snapshot, o Options) {
	box, m := o.BoxSize, o.Margin
	right := float64(s.Width())*box + m
	bottom := float64(s.Height())*box + m

	dc.SetLineWidth(1)
	dc.SetColor(palette.GridLine)
	for i := 1; i < s.Width(); i++ {
		x := float64(i)*box + m
		dc.DrawLine(x, m, x, bottom)
	}
	for j := 1; j < s.Height(); j++ {
		y := float64(j)*box + m
		dc.DrawLine(m, y, right, y)
	}
	dc.Stroke()

	dc.SetLineWidth(2)
	dc.SetColor(palette.Border)
	dc.DrawRectangle(m-1, m-1, right-m+2, bottom-m+2)
	dc.Stroke()
}

func drawArrows(dc *gg.Context, s flow.Snapshot, o Options) {
	box, m := o.BoxSize, o.Margin
	vel := s.Velocity
	dc.SetColor(palette.Arrow)
	dc.SetLineWidth(2)
	for i := 0; i <= s.Width(); i++ {
		for j := 0; j < s.Height(); j++ {
			if !vel.XOpen.Open(i, j) {
				continue
			}
			x, y := float64(i)*box+m, (float64(j)+0.5)*box+m
			arrow(dc, x, y, x+vel.X.At(i, j)*o.ArrowSize, y)
		}
	}
	for i := 0; i < s.Width(); i++ {
		for j := 0; j <= s.Height(); j++ {
			if !vel.YOpen.Open(i, j) {
				continue
			}
			x, y := (float64(i)+0.5)*box+m, float64(j)*box+m
			arrow(dc, x, y, x, y+vel.Y.At(i, j)*o.ArrowSize)
		}
	}
}

// Arrow head shape in pixels.
const (
	headLength = 5
	headWidth  = 3
)

func arrow(dc *gg.Context, x0, y0, x1, y1 float64) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l < 0.5 || math.IsNaN(l) || math.IsInf(l, 0) {
		return
	}
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()

	ux, uy := dx/l, dy/l
	bx, by := x1-ux*headLength, y1-uy*headLength
	dc.MoveTo(x1, y1)
	dc.LineTo(bx-uy*headWidth, by+ux*headWidth)
	dc.LineTo(bx+uy*headWidth, by-ux*headWidth)
	dc.ClosePath()
	dc.Fill()
}

package main

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/TheFellow/gridflow/pkg/palette"
)

func (g *Game) drawCells(screen *ebiten.Image) {
	s := g.snap
	for i := 0; i < s.Width(); i++ {
		for j := 0; j < s.Height(); j++ {
			x := float32(i)*g.box + margin
			y := float32(j)*g.box + margin
			vector.DrawFilledRect(screen, x, y, g.box, g.box, cellColor(g.pal, s, i, j), false)
			if !g.labels || !s.Cells.Open(i, j) {
				continue
			}
			op := &text.DrawOptions{}
			op.GeoM.Translate(float64(x+g.box/2), float64(y+g.box/2))
			op.PrimaryAlign = text.AlignCenter
			op.SecondaryAlign = text.AlignCenter
			op.ColorScale.ScaleWithColor(palette.Label)
			text.Draw(screen, fmt.Sprintf("% .2f", s.Pressure.At(i, j)), g.face, op)
		}
	}
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	s := g.snap
	right := float32(s.Width())*g.box + margin
	bottom := float32(s.Height())*g.box + margin
	for i := 1; i < s.Width(); i++ {
		x := float32(i)*g.box + margin
		vector.StrokeLine(screen, x, margin, x, bottom, 1, palette.GridLine, false)
	}
	for j := 1; j < s.Height(); j++ {
		y := float32(j)*g.box + margin
		vector.StrokeLine(screen, margin, y, right, y, 1, palette.GridLine, false)
	}
	vector.StrokeRect(screen, margin-1, margin-1, right-margin+2, bottom-margin+2, 2, palette.Border, false)
}

func (g *Game) drawArrows(screen *ebiten.Image) {
	s := g.snap
	vel := s.Velocity
	for i := 0; i <= s.Width(); i++ {
		for j := 0; j < s.Height(); j++ {
			if !vel.XOpen.Open(i, j) {
				continue
			}
			x := float32(i)*g.box + margin
			y := (float32(j)+0.5)*g.box + margin
			drawArrow(screen, x, y, x+float32(vel.X.At(i, j))*g.arrow, y)
		}
	}
	for i := 0; i < s.Width(); i++ {
		for j := 0; j <= s.Height(); j++ {
			if !vel.YOpen.Open(i, j) {
				continue
			}
			x := (float32(i)+0.5)*g.box + margin
			y := float32(j)*g.box + margin
			drawArrow(screen, x, y, x, y+float32(vel.Y.At(i, j))*g.arrow)
		}
	}
}

// Arrow head in pixels.
const (
	headLength = 5
	headWidth  = 3
)

func drawArrow(screen *ebiten.Image, x0, y0, x1, y1 float32) {
	dx, dy := float64(x1-x0), float64(y1-y0)
	l := math.Hypot(dx, dy)
	if l < 0.5 || math.IsNaN(l) || math.IsInf(l, 0) {
		return
	}
	vector.StrokeLine(screen, x0, y0, x1, y1, 2, palette.Arrow, true)

	ux, uy := float32(dx/l), float32(dy/l)
	bx, by := x1-ux*headLength, y1-uy*headLength
	vector.StrokeLine(screen, x1, y1, bx-uy*headWidth, by+ux*headWidth, 2, palette.Arrow, true)
	vector.StrokeLine(screen, x1, y1, bx+uy*headWidth, by-ux*headWidth, 2, palette.Arrow, true)
}

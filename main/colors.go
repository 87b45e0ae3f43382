package main

import (
	"image/color"

	"github.com/TheFellow/gridflow/pkg/flow"
	"github.com/TheFellow/gridflow/pkg/palette"
)

// cellColor is the fill for cell (i, j) of a snapshot.
func cellColor(pal palette.Mapper, s flow.Snapshot, i, j int) color.RGBA {
	if !s.Cells.Open(i, j) {
		return palette.Solid
	}
	return pal.Color(s.Pressure.At(i, j))
}

// warningColor tints the overlay while the field is not finite.
var warningColor = color.RGBA{R: 0xff, G: 0x45, B: 0x00, A: 0xff}

package flow

import "fmt"

// VelocityField is a read-only copy of the staggered velocity. X holds the
// (NumX+1) x NumY vertical faces and Y the NumX x (NumY+1) horizontal faces.
// Values on closed faces carry no meaning.
type VelocityField struct {
	NumX, NumY int
	X, Y       ScalarField
	XOpen      Mask
	YOpen      Mask
}

// Value returns the cell-centred velocity of cell (i, j), averaging the open
// faces on each axis. An axis with no open face reads as zero.
func (v VelocityField) Value(i, j int) (float64, float64, error) {
	if i < 0 || i >= v.NumX || j < 0 || j >= v.NumY {
		return 0, 0, fmt.Errorf("cell (%d, %d) outside %dx%d", i, j, v.NumX, v.NumY)
	}

	u := faceAverage(v.X, v.XOpen, i, j, i+1, j)
	w := faceAverage(v.Y, v.YOpen, i, j, i, j+1)
	return u, w, nil
}

func faceAverage(f ScalarField, open Mask, i0, j0, i1, j1 int) float64 {
	var sum float64
	n := 0
	if open.Open(i0, j0) {
		sum += f.At(i0, j0)
		n++
	}
	if open.Open(i1, j1) {
		sum += f.At(i1, j1)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

package flow

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ScalarField is a read-only copy of one solver field.
type ScalarField struct {
	NumX, NumY int
	values     []float64
}

func newScalarField(d *mat.Dense) ScalarField {
	r, c := d.Dims()
	return ScalarField{
		NumX:   r,
		NumY:   c,
		values: mat.DenseCopyOf(d).RawMatrix().Data,
	}
}

func (s ScalarField) offset(i, j int) (int, error) {
	if i < 0 || i >= s.NumX || j < 0 || j >= s.NumY {
		return 0, fmt.Errorf("field index (%d, %d) outside %dx%d", i, j, s.NumX, s.NumY)
	}
	return i*s.NumY + j, nil
}

// Value returns entry (i, j), or an error when it lies outside the field.
func (s ScalarField) Value(i, j int) (float64, error) {
	k, err := s.offset(i, j)
	if err != nil {
		return 0, err
	}
	return s.values[k], nil
}

// At returns entry (i, j) and panics when it lies outside the field.
func (s ScalarField) At(i, j int) float64 {
	k, err := s.offset(i, j)
	if err != nil {
		panic(err)
	}
	return s.values[k]
}

package flow

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrUnstable is returned by Tick when a pressure or open-face velocity is
// no longer finite. The simulation keeps running; the error is a warning
// that the chosen parameters violate the stability limit of the stencil.
var ErrUnstable = errors.New("flow field is not finite")

// checkFinite returns an ErrUnstable wrapper naming the first non-finite
// value among open cells and open faces.
func (s *state) checkFinite() error {
	w, h := s.topo.Width, s.topo.Height
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			if !s.topo.Cells.Open(i, j) {
				continue
			}
			if v := s.p.At(i, j); !isFinite(v) {
				return fmt.Errorf("%w: pressure at cell (%d,%d) is %g", ErrUnstable, i, j, v)
			}
		}
	}
	for i := 0; i <= w; i++ {
		for j := 0; j < h; j++ {
			if !s.topo.XEdges.Open(i, j) {
				continue
			}
			if v := s.u.At(i, j); !isFinite(v) {
				return fmt.Errorf("%w: x-velocity at face (%d,%d) is %g", ErrUnstable, i, j, v)
			}
		}
	}
	for i := 0; i < w; i++ {
		for j := 0; j <= h; j++ {
			if !s.topo.YEdges.Open(i, j) {
				continue
			}
			if v := s.v.At(i, j); !isFinite(v) {
				return fmt.Errorf("%w: y-velocity at face (%d,%d) is %g", ErrUnstable, i, j, v)
			}
		}
	}
	return nil
}

// Diagnostics summarises the current fields. Only open cells and open faces
// contribute.
type Diagnostics struct {
	Tick uint64

	// MaxDivergence is the largest absolute net outflow of any open cell.
	MaxDivergence float64
	// KineticEnergy is 1/2 rho u^2 summed over open faces, per unit depth.
	KineticEnergy float64

	MinPressure, MaxPressure float64
}

func (s *state) diagnostics() Diagnostics {
	w, h := s.topo.Width, s.topo.Height
	var d Diagnostics

	var div, pressures []float64
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			if !s.topo.Cells.Open(i, j) {
				continue
			}
			_, _, cd := s.cellBalance(i, j)
			div = append(div, cd)
			pressures = append(pressures, s.p.At(i, j))
		}
	}
	if len(pressures) > 0 {
		d.MaxDivergence = floats.Norm(div, math.Inf(1))
		d.MinPressure = floats.Min(pressures)
		d.MaxPressure = floats.Max(pressures)
	}

	var faces []float64
	for i := 0; i <= w; i++ {
		for j := 0; j < h; j++ {
			if s.topo.XEdges.Open(i, j) {
				faces = append(faces, s.u.At(i, j))
			}
		}
	}
	for i := 0; i < w; i++ {
		for j := 0; j <= h; j++ {
			if s.topo.YEdges.Open(i, j) {
				faces = append(faces, s.v.At(i, j))
			}
		}
	}
	area := s.cfg.Spacing * s.cfg.Spacing
	d.KineticEnergy = 0.5 * s.cfg.Density * floats.Dot(faces, faces) * area
	return d
}

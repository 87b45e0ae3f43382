package flow

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// state is the mutable solver state. It is owned by one Simulation and only
// touched while that Simulation holds its lock.
type state struct {
	cfg  Config
	topo *Topology

	p, nextP *mat.Dense // Width x Height
	u, du    *mat.Dense // (Width+1) x Height
	v, dv    *mat.Dense // Width x (Height+1)
}

// newState takes only the cell mask from topo. The edge masks are derived
// again from a private copy of it, so later changes to topo are not seen.
func newState(cfg Config, topo *Topology, pressure *mat.Dense) (*state, error) {
	if topo == nil {
		return nil, fmt.Errorf("%w: nil topology", ErrInvalidConfig)
	}
	if topo.Cells.NumX != cfg.Width || topo.Cells.NumY != cfg.Height {
		return nil, fmt.Errorf("%w: cell mask is %dx%d, config is %dx%d",
			ErrInvalidConfig, topo.Cells.NumX, topo.Cells.NumY, cfg.Width, cfg.Height)
	}
	w, h := cfg.Width, cfg.Height
	s := &state{
		cfg:   cfg,
		topo:  NewTopology(topo.Cells),
		p:     mat.NewDense(w, h, nil),
		nextP: mat.NewDense(w, h, nil),
		u:     mat.NewDense(w+1, h, nil),
		du:    mat.NewDense(w+1, h, nil),
		v:     mat.NewDense(w, h+1, nil),
		dv:    mat.NewDense(w, h+1, nil),
	}
	if pressure != nil {
		if r, c := pressure.Dims(); r != w || c != h {
			return nil, fmt.Errorf("%w: pressure field is %dx%d, grid is %dx%d",
				ErrInvalidConfig, r, c, w, h)
		}
		s.p.Copy(pressure)
	}
	return s, nil
}

// step runs one tick: a fixed number of relaxation passes against the
// current velocities, then one velocity integration.
func (s *state) step() {
	for range s.cfg.Relaxations {
		s.relaxPressure()
	}
	s.integrateVelocity()
}

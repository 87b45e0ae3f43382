package flow

import "fmt"

// pressureAt returns the pressure of cell (i, j). Column -1 is the inlet
// ghost column and column Width the outlet; there are no ghost rows.
func (s *state) pressureAt(i, j int) float64 {
	if j < 0 || j >= s.topo.Height {
		panic(fmt.Sprintf("pressure lookup: invalid y-index: %d", j))
	}
	switch {
	case i == -1:
		return s.cfg.InletPressure
	case i == s.topo.Width:
		return s.cfg.OutletPressure
	case i < -1 || i > s.topo.Width:
		panic(fmt.Sprintf("pressure lookup: invalid x-index: %d", i))
	}
	return s.p.At(i, j)
}

// cellBalance gathers the stencil terms of cell (i, j): the number of open
// faces, the summed pressure across them and the net outward flux.
func (s *state) cellBalance(i, j int) (edges int, pressureSum, div float64) {
	if s.topo.XEdges.Open(i, j) {
		edges++
		pressureSum += s.pressureAt(i-1, j)
		div -= s.u.At(i, j)
	}
	if s.topo.XEdges.Open(i+1, j) {
		edges++
		pressureSum += s.pressureAt(i+1, j)
		div += s.u.At(i+1, j)
	}
	if s.topo.YEdges.Open(i, j) {
		edges++
		pressureSum += s.pressureAt(i, j-1)
		div -= s.v.At(i, j)
	}
	if s.topo.YEdges.Open(i, j+1) {
		edges++
		pressureSum += s.pressureAt(i, j+1)
		div += s.v.At(i, j+1)
	}
	return edges, pressureSum, div
}

// relaxPressure runs one Jacobi pass. Every new value is computed from the
// pre-pass field into nextP, then the two buffers are swapped.
func (s *state) relaxPressure() {
	rho, dx, dt := s.cfg.Density, s.cfg.Spacing, s.cfg.TimeStep
	s.forColumns(s.topo.Width, func(i int) {
		for j := 0; j < s.topo.Height; j++ {
			edges, sum, div := s.cellBalance(i, j)
			if edges == 0 {
				// Isolated or solid cell.
				s.nextP.Set(i, j, 0)
				continue
			}
			s.nextP.Set(i, j, (sum-rho*dx*div/dt)/float64(edges))
		}
	})
	s.p, s.nextP = s.nextP, s.p
}

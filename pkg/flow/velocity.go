package flow

// xLaplacian is the five-point Laplacian of the x-velocity at vertical face
// (i, j), using only open, in-range neighbours. The inlet and outlet faces
// count their own value once more in place of the missing horizontal
// neighbour.
func (s *state) xLaplacian(i, j int) float64 {
	w, h := s.topo.Width, s.topo.Height
	open := s.topo.XEdges
	c := s.u.At(i, j)
	var sum float64
	if j > 0 && open.Open(i, j-1) {
		sum += s.u.At(i, j-1)
	}
	if j < h-1 && open.Open(i, j+1) {
		sum += s.u.At(i, j+1)
	}
	if i > 0 && open.Open(i-1, j) {
		sum += s.u.At(i-1, j)
	}
	if i < w && open.Open(i+1, j) {
		sum += s.u.At(i+1, j)
	}
	if i == 0 || i == w {
		sum += c
	}
	dx := s.cfg.Spacing
	return (sum - 4*c) / (dx * dx)
}

// yLaplacian is the y-velocity counterpart of xLaplacian. The top and bottom
// faces are walls, so no mirror term is needed.
func (s *state) yLaplacian(i, j int) float64 {
	w, h := s.topo.Width, s.topo.Height
	open := s.topo.YEdges
	c := s.v.At(i, j)
	var sum float64
	if i > 0 && open.Open(i-1, j) {
		sum += s.v.At(i-1, j)
	}
	if i < w-1 && open.Open(i+1, j) {
		sum += s.v.At(i+1, j)
	}
	if j > 0 && open.Open(i, j-1) {
		sum += s.v.At(i, j-1)
	}
	if j < h && open.Open(i, j+1) {
		sum += s.v.At(i, j+1)
	}
	dx := s.cfg.Spacing
	return (sum - 4*c) / (dx * dx)
}

// integrateVelocity advances every open face by one forward Euler step of
// du/dt = -grad(p)/rho + nu*lap(u). Both delta fields are computed from the
// current state before either is applied.
func (s *state) integrateVelocity() {
	w, h := s.topo.Width, s.topo.Height
	rho, dx, nu, dt := s.cfg.Density, s.cfg.Spacing, s.cfg.Viscosity, s.cfg.TimeStep

	s.du.Zero()
	s.dv.Zero()

	s.forColumns(w+1, func(i int) {
		for j := 0; j < h; j++ {
			if !s.topo.XEdges.Open(i, j) {
				continue
			}
			left := s.pressureAt(i-1, j)
			right := s.pressureAt(i, j)
			lap := s.xLaplacian(i, j)
			s.du.Set(i, j, ((left-right)/dx+nu*lap)*dt/rho)
		}
	})

	s.forColumns(w, func(i int) {
		for j := 0; j <= h; j++ {
			if !s.topo.YEdges.Open(i, j) {
				continue
			}
			top := s.pressureAt(i, j-1)
			bottom := s.pressureAt(i, j)
			lap := s.yLaplacian(i, j)
			s.dv.Set(i, j, ((top-bottom)/dx+nu*lap)*dt/rho)
		}
	})

	s.u.Add(s.u, s.du)
	s.v.Add(s.v, s.dv)
}

package flow

// Snapshot is a copy of the simulation state after a completed tick. It
// shares no memory with the Simulation, so renderers may keep it for as long
// as they like.
type Snapshot struct {
	Tick uint64

	InletPressure, OutletPressure float64

	Cells    Mask
	Pressure ScalarField
	Velocity VelocityField
}

// Snapshot copies the fields of the last completed tick.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.st
	return Snapshot{
		Tick:           s.ticks,
		InletPressure:  st.cfg.InletPressure,
		OutletPressure: st.cfg.OutletPressure,
		Cells:          st.topo.Cells.Clone(),
		Pressure:       newScalarField(st.p),
		Velocity: VelocityField{
			NumX:  st.topo.Width,
			NumY:  st.topo.Height,
			X:     newScalarField(st.u),
			Y:     newScalarField(st.v),
			XOpen: st.topo.XEdges.Clone(),
			YOpen: st.topo.YEdges.Clone(),
		},
	}
}

// Width returns the number of cell columns.
func (s Snapshot) Width() int { return s.Cells.NumX }

// Height returns the number of cell rows.
func (s Snapshot) Height() int { return s.Cells.NumY }

// Package cli holds the command-line plumbing shared by the gridflow
// programs.
package cli

import (
	"flag"
	"time"

	"github.com/TheFellow/gridflow/pkg/flow"
)

// FlowFlags binds the simulation parameters to command-line flags.
type FlowFlags struct {
	Config flow.Config
	Seed   uint64

	// CPUProfile names a file to receive a CPU profile, empty disables it.
	CPUProfile string
}

// BindFlowFlags registers every flow.Config field on fs, defaulting to
// flow.DefaultConfig and a time-based seed.
func BindFlowFlags(fs *flag.FlagSet) *FlowFlags {
	f := &FlowFlags{Config: flow.DefaultConfig()}
	c := &f.Config

	fs.IntVar(&c.Width, "width", c.Width, "grid columns")
	fs.IntVar(&c.Height, "height", c.Height, "grid rows")
	fs.Float64Var(&c.ObstacleProbability, "obstacles", c.ObstacleProbability, "probability that a cell is solid (0-1)")
	fs.Float64Var(&c.InletPressure, "inlet", c.InletPressure, "pressure of the left ghost column")
	fs.Float64Var(&c.OutletPressure, "outlet", c.OutletPressure, "pressure of the right ghost column")
	fs.Float64Var(&c.Density, "density", c.Density, "fluid density")
	fs.Float64Var(&c.Spacing, "spacing", c.Spacing, "cell size")
	fs.Float64Var(&c.Viscosity, "viscosity", c.Viscosity, "kinematic viscosity")
	fs.Float64Var(&c.TimeStep, "dt", c.TimeStep, "time step per tick")
	fs.IntVar(&c.Relaxations, "relaxations", c.Relaxations, "pressure passes per tick")
	fs.Float64Var(&c.SeedAmplitude, "seed-amplitude", c.SeedAmplitude, "half-width of the random initial pressure")
	fs.BoolVar(&c.Parallel, "parallel", c.Parallel, "split each pass across CPUs")

	fs.Uint64Var(&f.Seed, "seed", uint64(time.Now().UnixNano()), "obstacle layout seed")
	fs.StringVar(&f.CPUProfile, "cpuprofile", "", "write a CPU profile to this file")
	return f
}

// Simulation validates the bound parameters and builds a simulation.
func (f *FlowFlags) Simulation(opts ...flow.Option) (*flow.Simulation, error) {
	return flow.New(f.Config, f.Seed, opts...)
}

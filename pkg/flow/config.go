package flow

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid flow config")

// DefaultRelaxations is the number of Jacobi passes run per tick.
const DefaultRelaxations = 10

// Config holds the physical and numerical parameters of a simulation. All
// values are fixed once a Simulation has been created.
//
// No stability guard is applied: combinations of Density, Spacing, Viscosity
// and TimeStep that make the explicit stencil unstable are the caller's
// responsibility. Tick reports the result through ErrUnstable.
type Config struct {
	Width, Height int // cells

	ObstacleProbability float64 // chance that any one cell is solid, in [0,1]

	InletPressure  float64 // ghost column -1
	OutletPressure float64 // ghost column Width

	Density   float64
	Spacing   float64 // cell size
	Viscosity float64
	TimeStep  float64

	// Relaxations is the fixed number of pressure passes per tick. There is
	// no convergence tolerance.
	Relaxations int

	// SeedAmplitude bounds the random initial pressure: seeds are uniform in
	// [-SeedAmplitude, SeedAmplitude).
	SeedAmplitude float64

	// Parallel splits each pass by column across GOMAXPROCS goroutines.
	Parallel bool
}

// DefaultConfig returns a 30x15 channel with water-like density and a
// 100 Pa pressure drop across it.
func DefaultConfig() Config {
	return Config{
		Width:               30,
		Height:              15,
		ObstacleProbability: 0.2,
		InletPressure:       100,
		OutletPressure:      0,
		Density:             1000,
		Spacing:             0.01,
		Viscosity:           0.1,
		TimeStep:            0.02,
		Relaxations:         DefaultRelaxations,
		SeedAmplitude:       5,
	}
}

// Validate reports the first parameter that cannot describe a simulation.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfig, c.Width)
	case c.Height <= 0:
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidConfig, c.Height)
	case math.IsNaN(c.ObstacleProbability) || c.ObstacleProbability < 0 || c.ObstacleProbability > 1:
		return fmt.Errorf("%w: obstacle probability must be in [0,1], got %g", ErrInvalidConfig, c.ObstacleProbability)
	case !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0):
		return fmt.Errorf("%w: time step must be positive, got %g", ErrInvalidConfig, c.TimeStep)
	case !(c.Spacing > 0) || math.IsInf(c.Spacing, 0):
		return fmt.Errorf("%w: spacing must be positive, got %g", ErrInvalidConfig, c.Spacing)
	case !(c.Density > 0) || math.IsInf(c.Density, 0):
		return fmt.Errorf("%w: density must be positive, got %g", ErrInvalidConfig, c.Density)
	case !(c.Viscosity >= 0) || math.IsInf(c.Viscosity, 0):
		return fmt.Errorf("%w: viscosity must be non-negative, got %g", ErrInvalidConfig, c.Viscosity)
	case c.Relaxations < 0:
		return fmt.Errorf("%w: relaxation count must be non-negative, got %d", ErrInvalidConfig, c.Relaxations)
	case !(c.SeedAmplitude >= 0) || math.IsInf(c.SeedAmplitude, 0):
		return fmt.Errorf("%w: seed amplitude must be non-negative, got %g", ErrInvalidConfig, c.SeedAmplitude)
	case !isFinite(c.InletPressure):
		return fmt.Errorf("%w: inlet pressure must be finite, got %g", ErrInvalidConfig, c.InletPressure)
	case !isFinite(c.OutletPressure):
		return fmt.Errorf("%w: outlet pressure must be finite, got %g", ErrInvalidConfig, c.OutletPressure)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package flow

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Simulation owns the pressure and velocity fields of one channel and
// advances them a tick at a time. Ticks are serialised: Tick, Snapshot and
// Diagnostics may be called from different goroutines but never observe a
// half-finished tick.
type Simulation struct {
	mu       sync.Mutex
	st       *state
	ticks    uint64
	unstable bool

	log log.FieldLogger
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger routes instability warnings to l instead of the standard
// logrus logger.
func WithLogger(l log.FieldLogger) Option {
	return func(s *Simulation) { s.log = l }
}

// New generates a random topology from seed and returns a simulation at
// rest: zero velocity and the generator's seed pressure.
func New(cfg Config, seed uint64, opts ...Option) (*Simulation, error) {
	rng := rand.New(rand.NewPCG(seed, seed))
	topo, p, err := Generate(cfg, rng)
	if err != nil {
		return nil, err
	}
	return NewWithTopology(cfg, topo, p, opts...)
}

// NewWithTopology starts a simulation on a caller-built topology. A nil
// pressure starts every cell at zero; otherwise pressure is copied and must
// be Width x Height.
func NewWithTopology(cfg Config, topo *Topology, pressure *mat.Dense, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st, err := newState(cfg, topo, pressure)
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		st:  st,
		log: log.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Tick runs Relaxations pressure passes followed by one velocity
// integration. A non-nil error wraps ErrUnstable; the fields are kept and
// later ticks still run.
func (s *Simulation) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.step()
	s.ticks++

	err := s.st.checkFinite()
	switch {
	case err != nil && !s.unstable:
		s.log.WithError(err).WithField("tick", s.ticks).Warn("flow field diverged")
	case err == nil && s.unstable:
		s.log.WithField("tick", s.ticks).Info("flow field finite again")
	}
	s.unstable = err != nil
	return err
}

// Ticks returns the number of completed ticks.
func (s *Simulation) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Config returns the parameters the simulation was built with.
func (s *Simulation) Config() Config {
	return s.st.cfg
}

// Topology returns a copy of the cell and face masks.
func (s *Simulation) Topology() *Topology {
	t := s.st.topo
	return &Topology{
		Width:  t.Width,
		Height: t.Height,
		Cells:  t.Cells.Clone(),
		XEdges: t.XEdges.Clone(),
		YEdges: t.YEdges.Clone(),
	}
}

// Diagnostics reports divergence, energy and pressure range of the last
// completed tick.
func (s *Simulation) Diagnostics() Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.st.diagnostics()
	d.Tick = s.ticks
	return d
}

// Run ticks once per interval until ctx is done, handing a snapshot of every
// completed tick to fn together with that tick's error. Cancellation is only
// observed between ticks. Run returns ctx.Err().
func (s *Simulation) Run(ctx context.Context, interval time.Duration, fn func(Snapshot, error)) error {
	if interval <= 0 {
		return errors.New("run interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		err := s.Tick()
		if fn != nil {
			fn(s.Snapshot(), err)
		}
	}
}

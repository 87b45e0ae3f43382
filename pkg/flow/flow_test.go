package flow

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const tolerance = 1e-9

// scenarioConfig is a 3x2 open channel with no viscosity and a 100 Pa drop.
func scenarioConfig() Config {
	return Config{
		Width:          3,
		Height:         2,
		InletPressure:  100,
		OutletPressure: 0,
		Density:        1000,
		Spacing:        0.01,
		Viscosity:      0,
		TimeStep:       0.02,
		Relaxations:    1,
	}
}

func newTestSimulation(t *testing.T, cfg Config, cells Mask) *Simulation {
	t.Helper()
	s, err := NewWithTopology(cfg, NewTopology(cells), nil)
	if err != nil {
		t.Fatalf("NewWithTopology: %v", err)
	}
	return s
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestScenarioFirstRelaxation(t *testing.T) {
	cfg := scenarioConfig()
	s := newTestSimulation(t, cfg, NewMask(cfg.Width, cfg.Height))

	for i := 0; i < cfg.Width; i++ {
		for j := 0; j < cfg.Height; j++ {
			edges, _, div := s.st.cellBalance(i, j)
			if edges != 3 {
				t.Errorf("cell (%d,%d): expected 3 open edges, got %d", i, j, edges)
			}
			if div != 0 {
				t.Errorf("cell (%d,%d): expected zero divergence, got %g", i, j, div)
			}
		}
	}

	s.st.relaxPressure()

	// Column 0 sees the inlet ghost, every other neighbour is still zero.
	want := [3]float64{100.0 / 3, 0, 0}
	for i := 0; i < cfg.Width; i++ {
		for j := 0; j < cfg.Height; j++ {
			if got := s.st.p.At(i, j); math.Abs(got-want[i]) > tolerance {
				t.Errorf("pressure (%d,%d): expected %f, got %f", i, j, want[i], got)
			}
		}
	}
}

func TestScenarioIntegration(t *testing.T) {
	cfg := scenarioConfig()
	s := newTestSimulation(t, cfg, NewMask(cfg.Width, cfg.Height))

	if err := s.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	// du = (pLeft - pRight) / dx * dt / rho
	wantU := [4]float64{
		(100 - 100.0/3) / 0.01 * 0.02 / 1000,
		(100.0 / 3) / 0.01 * 0.02 / 1000,
		0,
		0,
	}
	for i := 0; i <= cfg.Width; i++ {
		for j := 0; j < cfg.Height; j++ {
			if got := s.st.u.At(i, j); math.Abs(got-wantU[i]) > tolerance {
				t.Errorf("x-velocity (%d,%d): expected %f, got %f", i, j, wantU[i], got)
			}
		}
	}
	for i := 0; i < cfg.Width; i++ {
		for j := 0; j <= cfg.Height; j++ {
			if got := s.st.v.At(i, j); got != 0 {
				t.Errorf("y-velocity (%d,%d): expected 0, got %f", i, j, got)
			}
		}
	}

	largest := s.st.u.At(0, 0)
	for i := 1; i <= cfg.Width; i++ {
		if s.st.u.At(i, 0) >= largest {
			t.Errorf("inlet face should have the largest velocity, face %d has %f >= %f", i, s.st.u.At(i, 0), largest)
		}
	}
}

func TestInteriorCellHasFourEdges(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Height = 3
	s := newTestSimulation(t, cfg, NewMask(cfg.Width, cfg.Height))

	wantEdges := [3][3]int{
		{3, 4, 3},
		{3, 4, 3},
		{3, 4, 3},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if edges, _, _ := s.st.cellBalance(i, j); edges != wantEdges[i][j] {
				t.Errorf("cell (%d,%d): expected %d edges, got %d", i, j, wantEdges[i][j], edges)
			}
		}
	}

	s.st.relaxPressure()
	if got := s.st.p.At(0, 1); math.Abs(got-25) > tolerance {
		t.Errorf("inlet interior cell: expected 25, got %f", got)
	}
	if got := s.st.p.At(0, 0); math.Abs(got-100.0/3) > tolerance {
		t.Errorf("inlet corner cell: expected %f, got %f", 100.0/3, got)
	}
}

func TestIsolatedCellPinnedToZero(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Height = 3
	cells := NewMask(3, 3)
	cells.Close(0, 1)
	cells.Close(2, 1)
	cells.Close(1, 0)
	cells.Close(1, 2)

	seed := mat.NewDense(3, 3, nil)
	seed.Set(1, 1, 42)
	s, err := NewWithTopology(cfg, NewTopology(cells), seed)
	if err != nil {
		t.Fatal(err)
	}

	if !s.st.topo.Cells.Open(1, 1) {
		t.Fatal("centre cell should stay open")
	}
	if edges, _, _ := s.st.cellBalance(1, 1); edges != 0 {
		t.Fatalf("expected isolated cell, got %d edges", edges)
	}
	for pass := 0; pass < 3; pass++ {
		s.st.relaxPressure()
		if got := s.st.p.At(1, 1); got != 0 {
			t.Errorf("pass %d: isolated cell pressure should be exactly 0, got %g", pass, got)
		}
	}
}

func TestSolidCellsStayAtZero(t *testing.T) {
	s, err := New(DefaultConfig(), 7)
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 5; n++ {
		if err := s.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	topo := s.st.topo
	for i := 0; i < topo.Width; i++ {
		for j := 0; j < topo.Height; j++ {
			if !topo.Cells.Open(i, j) && s.st.p.At(i, j) != 0 {
				t.Errorf("solid cell (%d,%d) has pressure %g", i, j, s.st.p.At(i, j))
			}
		}
	}
}

func TestPressureLookup(t *testing.T) {
	cfg := scenarioConfig()
	cfg.InletPressure = 12.5
	cfg.OutletPressure = -3
	seed := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	s, err := NewWithTopology(cfg, NewTopology(NewMask(3, 2)), seed)
	if err != nil {
		t.Fatal(err)
	}

	for j := 0; j < cfg.Height; j++ {
		if got := s.st.pressureAt(-1, j); got != cfg.InletPressure {
			t.Errorf("lookup(-1,%d): expected inlet %g, got %g", j, cfg.InletPressure, got)
		}
		if got := s.st.pressureAt(cfg.Width, j); got != cfg.OutletPressure {
			t.Errorf("lookup(W,%d): expected outlet %g, got %g", j, cfg.OutletPressure, got)
		}
		for i := 0; i < cfg.Width; i++ {
			if got, want := s.st.pressureAt(i, j), seed.At(i, j); got != want {
				t.Errorf("lookup(%d,%d): expected %g, got %g", i, j, want, got)
			}
		}
	}

	expectPanic(t, "column -2", func() { s.st.pressureAt(-2, 0) })
	expectPanic(t, "column W+1", func() { s.st.pressureAt(cfg.Width+1, 0) })
	expectPanic(t, "row -1", func() { s.st.pressureAt(0, -1) })
	expectPanic(t, "row H", func() { s.st.pressureAt(0, cfg.Height) })
	expectPanic(t, "ghost row", func() { s.st.pressureAt(-1, cfg.Height) })
}

func TestMirrorLaplacianAtBoundaryFaces(t *testing.T) {
	cfg := scenarioConfig()
	s := newTestSimulation(t, cfg, NewMask(cfg.Width, cfg.Height))
	s.st.u.Set(0, 0, 2)
	s.st.u.Set(1, 0, 1)

	// Neighbours of face (0,0): (0,1)=0 and (1,0)=1, plus itself for the
	// missing inlet side.
	want := (0 + 1 + 2 - 4*2.0) / (0.01 * 0.01)
	if got := s.st.xLaplacian(0, 0); math.Abs(got-want) > 1e-6 {
		t.Errorf("inlet face laplacian: expected %f, got %f", want, got)
	}

	// Interior face (1,0): (1,1)=0, (0,0)=2, (2,0)=0, no mirror term.
	want = (0 + 2 + 0 - 4*1.0) / (0.01 * 0.01)
	if got := s.st.xLaplacian(1, 0); math.Abs(got-want) > 1e-6 {
		t.Errorf("interior face laplacian: expected %f, got %f", want, got)
	}

	s.st.u.Set(3, 1, 1)
	want = (0 + 0 + 1 - 4*1.0) / (0.01 * 0.01)
	if got := s.st.xLaplacian(3, 1); math.Abs(got-want) > 1e-6 {
		t.Errorf("outlet face laplacian: expected %f, got %f", want, got)
	}
}

func TestClosedFacesUntouched(t *testing.T) {
	s, err := New(DefaultConfig(), 3)
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 20; n++ {
		if err := s.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	topo := s.st.topo
	for i := 0; i <= topo.Width; i++ {
		for j := 0; j < topo.Height; j++ {
			if !topo.XEdges.Open(i, j) && s.st.u.At(i, j) != 0 {
				t.Errorf("closed x-face (%d,%d) changed to %g", i, j, s.st.u.At(i, j))
			}
		}
	}
	for i := 0; i < topo.Width; i++ {
		for j := 0; j <= topo.Height; j++ {
			if !topo.YEdges.Open(i, j) && s.st.v.At(i, j) != 0 {
				t.Errorf("closed y-face (%d,%d) changed to %g", i, j, s.st.v.At(i, j))
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	a, err := New(DefaultConfig(), 99)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(DefaultConfig(), 99)
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 50; n++ {
		if err := a.Tick(); err != nil {
			t.Fatal(err)
		}
		if err := b.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if !mat.Equal(a.st.p, b.st.p) {
		t.Error("pressure fields differ")
	}
	if !mat.Equal(a.st.u, b.st.u) || !mat.Equal(a.st.v, b.st.v) {
		t.Error("velocity fields differ")
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	cfg := DefaultConfig()
	serial, err := New(cfg, 11)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Parallel = true
	parallel, err := New(cfg, 11)
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 25; n++ {
		if err := serial.Tick(); err != nil {
			t.Fatal(err)
		}
		if err := parallel.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if !mat.Equal(serial.st.p, parallel.st.p) {
		t.Error("parallel pressure differs from serial")
	}
	if !mat.Equal(serial.st.u, parallel.st.u) || !mat.Equal(serial.st.v, parallel.st.v) {
		t.Error("parallel velocity differs from serial")
	}
}

func TestDefaultConfigStaysFinite(t *testing.T) {
	s, err := New(DefaultConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 300; n++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("tick %d: %v", n, err)
		}
	}
	d := s.Diagnostics()
	if d.Tick != 300 {
		t.Errorf("expected tick 300, got %d", d.Tick)
	}
	if d.KineticEnergy <= 0 {
		t.Error("expected the pressure drop to drive some flow")
	}
}

func TestUnstableParametersReported(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Density = 1
	cfg.Viscosity = 1000
	cfg.Relaxations = DefaultRelaxations
	s := newTestSimulation(t, cfg, NewMask(cfg.Width, cfg.Height))

	var err error
	for n := 0; n < 200 && err == nil; n++ {
		err = s.Tick()
	}
	if !errors.Is(err, ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", err)
	}

	// The simulation keeps ticking after the warning.
	before := s.Ticks()
	_ = s.Tick()
	if s.Ticks() != before+1 {
		t.Error("tick after instability was not counted")
	}
}

func TestDiagnostics(t *testing.T) {
	cfg := scenarioConfig()
	s := newTestSimulation(t, cfg, NewMask(cfg.Width, cfg.Height))

	d := s.Diagnostics()
	if d.MaxDivergence != 0 || d.KineticEnergy != 0 {
		t.Errorf("fluid at rest: expected zero divergence and energy, got %+v", d)
	}

	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	d = s.Diagnostics()
	u0 := (100 - 100.0/3) / 0.01 * 0.02 / 1000
	u1 := (100.0 / 3) / 0.01 * 0.02 / 1000
	wantKE := 0.5 * 1000 * 2 * (u0*u0 + u1*u1) * 0.01 * 0.01
	if math.Abs(d.KineticEnergy-wantKE) > tolerance {
		t.Errorf("kinetic energy: expected %g, got %g", wantKE, d.KineticEnergy)
	}
	// Cell column 0 loses u1 - u0 net, column 1 loses -u1.
	wantDiv := math.Max(math.Abs(u1-u0), u1)
	if math.Abs(d.MaxDivergence-wantDiv) > tolerance {
		t.Errorf("max divergence: expected %g, got %g", wantDiv, d.MaxDivergence)
	}
	if math.Abs(d.MaxPressure-100.0/3) > tolerance || d.MinPressure != 0 {
		t.Errorf("pressure range: got [%g, %g]", d.MinPressure, d.MaxPressure)
	}
}

func TestSeedPressureRange(t *testing.T) {
	cfg := DefaultConfig()
	topo, p, err := Generate(cfg, rand.New(rand.NewPCG(5, 5)))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < cfg.Width; i++ {
		for j := 0; j < cfg.Height; j++ {
			v := p.At(i, j)
			if !topo.Cells.Open(i, j) {
				if v != 0 {
					t.Errorf("solid cell (%d,%d) seeded with %g", i, j, v)
				}
				continue
			}
			if v < -cfg.SeedAmplitude || v >= cfg.SeedAmplitude {
				t.Errorf("seed pressure (%d,%d) = %g outside [-%g,%g)", i, j, v, cfg.SeedAmplitude, cfg.SeedAmplitude)
			}
		}
	}
}

func TestRelaxationDivergenceSource(t *testing.T) {
	cfg := scenarioConfig()
	s := newTestSimulation(t, cfg, NewMask(cfg.Width, cfg.Height))
	// Flow leaves cell (0,0) through its right face and enters (1,0).
	s.st.u.Set(1, 0, 0.5)

	s.st.relaxPressure()

	source := cfg.Density * cfg.Spacing * 0.5 / cfg.TimeStep
	want := [][]float64{
		{(100 - source) / 3, 100.0 / 3},
		{(0 + source) / 3, 0},
		{0, 0},
	}
	for i := range want {
		for j := range want[i] {
			if got := s.st.p.At(i, j); math.Abs(got-want[i][j]) > tolerance {
				t.Errorf("pressure (%d,%d): expected %f, got %f", i, j, want[i][j], got)
			}
		}
	}
}

func TestVerticalPressureGradient(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Height = 3
	cfg.Relaxations = 0
	p := mat.NewDense(cfg.Width, cfg.Height, nil)
	p.Set(0, 1, 10)
	s, err := NewWithTopology(cfg, NewTopology(NewMask(cfg.Width, cfg.Height)), p)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}

	// Rows grow downwards: the face above the raised cell is pushed up and
	// the face below it down.
	step := 10 / cfg.Spacing * cfg.TimeStep / cfg.Density
	tests := []struct {
		i, j int
		want float64
	}{
		{0, 0, 0},
		{0, 1, -step},
		{0, 2, step},
		{0, 3, 0},
		{1, 1, 0},
		{1, 2, 0},
		{2, 1, 0},
	}
	for _, tt := range tests {
		if got := s.st.v.At(tt.i, tt.j); math.Abs(got-tt.want) > tolerance {
			t.Errorf("v(%d,%d): expected %f, got %f", tt.i, tt.j, tt.want, got)
		}
	}
}

func TestYLaplacian(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Height = 3
	s := newTestSimulation(t, cfg, NewMask(cfg.Width, cfg.Height))
	s.st.v.Set(1, 1, 1)
	s.st.v.Set(0, 1, 0.5)
	s.st.v.Set(2, 1, 0.25)
	s.st.v.Set(1, 2, 2)
	s.st.v.Set(0, 2, 0)
	dx2 := cfg.Spacing * cfg.Spacing

	// Face (1,1) sits under the top wall, which contributes nothing.
	if got, want := s.st.yLaplacian(1, 1), (0.5+0.25+2-4*1)/dx2; math.Abs(got-want) > 1e-6 {
		t.Errorf("yLaplacian(1,1): expected %f, got %f", want, got)
	}
	// Column 0 has no mirror term, unlike the inlet x-faces.
	if got, want := s.st.yLaplacian(0, 2), (0.5+2)/dx2; math.Abs(got-want) > 1e-6 {
		t.Errorf("yLaplacian(0,2): expected %f, got %f", want, got)
	}
}

package flow

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Topology describes which cells hold fluid and which velocity faces are
// open. XEdges has one column more than Cells and YEdges one row more.
// Topology is immutable once built.
type Topology struct {
	Width, Height int

	Cells  Mask // Width x Height
	XEdges Mask // (Width+1) x Height, vertical faces
	YEdges Mask // Width x (Height+1), horizontal faces
}

// NewTopology derives the edge masks from a cell mask. The top and bottom
// rows of horizontal faces are walls; every closed cell closes its four
// bounding faces.
func NewTopology(cells Mask) *Topology {
	w, h := cells.NumX, cells.NumY
	t := &Topology{
		Width:  w,
		Height: h,
		Cells:  cells.Clone(),
		XEdges: newMask(w+1, h),
		YEdges: newMask(w, h+1),
	}
	for i := 0; i < w; i++ {
		t.YEdges.Close(i, 0)
		t.YEdges.Close(i, h)
	}
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			if !t.Cells.Open(i, j) {
				t.closeCell(i, j)
			}
		}
	}
	return t
}

func (t *Topology) closeCell(i, j int) {
	t.Cells.Close(i, j)
	t.XEdges.Close(i, j)
	t.XEdges.Close(i+1, j)
	t.YEdges.Close(i, j)
	t.YEdges.Close(i, j+1)
}

// Generate builds a random topology and its seed pressure field. Each cell is
// independently solid with probability cfg.ObstacleProbability. Open cells
// are seeded uniformly in [-cfg.SeedAmplitude, cfg.SeedAmplitude); solid
// cells are seeded with zero. The result depends only on cfg and rng.
func Generate(cfg Config, rng *rand.Rand) (*Topology, *mat.Dense, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	w, h := cfg.Width, cfg.Height
	cells := newMask(w, h)
	t := NewTopology(cells)

	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			if rng.Float64() < cfg.ObstacleProbability {
				t.closeCell(i, j)
			}
		}
	}

	p := mat.NewDense(w, h, nil)
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			if t.Cells.Open(i, j) {
				p.Set(i, j, (rng.Float64()-0.5)*2*cfg.SeedAmplitude)
			}
		}
	}
	return t, p, nil
}

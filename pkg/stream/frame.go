// Package stream publishes flow snapshots to websocket clients and serves
// rendered frames over HTTP.
package stream

import (
	"math"

	"github.com/TheFellow/gridflow/pkg/flow"
)

// Frame is the wire form of a snapshot. Grids are indexed [column][row];
// closed cells and faces are sent as zero and flagged in the masks.
type Frame struct {
	Tick   uint64 `json:"tick"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	InletPressure  float64 `json:"inletPressure"`
	OutletPressure float64 `json:"outletPressure"`

	Cells    [][]bool    `json:"cells"`
	Pressure [][]float64 `json:"pressure"`
	XOpen    [][]bool    `json:"xOpen"`
	XVel     [][]float64 `json:"xVelocity"`
	YOpen    [][]bool    `json:"yOpen"`
	YVel     [][]float64 `json:"yVelocity"`

	// Warning carries the tick's instability error, if any.
	Warning string `json:"warning,omitempty"`
}

// NewFrame converts a snapshot and the error returned by the tick that
// produced it.
func NewFrame(s flow.Snapshot, tickErr error) Frame {
	f := Frame{
		Tick:           s.Tick,
		Width:          s.Width(),
		Height:         s.Height(),
		InletPressure:  s.InletPressure,
		OutletPressure: s.OutletPressure,
	}
	f.Cells, f.Pressure = grid(s.Cells, s.Pressure)
	f.XOpen, f.XVel = grid(s.Velocity.XOpen, s.Velocity.X)
	f.YOpen, f.YVel = grid(s.Velocity.YOpen, s.Velocity.Y)
	if tickErr != nil {
		f.Warning = tickErr.Error()
	}
	return f
}

func grid(open flow.Mask, field flow.ScalarField) ([][]bool, [][]float64) {
	mask := make([][]bool, open.NumX)
	vals := make([][]float64, open.NumX)
	for i := range open.NumX {
		mask[i] = make([]bool, open.NumY)
		vals[i] = make([]float64, open.NumY)
		for j := range open.NumY {
			if !open.Open(i, j) {
				continue
			}
			mask[i][j] = true
			// JSON has no NaN or Inf; Warning already reports them.
			if v := field.At(i, j); !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals[i][j] = v
			}
		}
	}
	return mask, vals
}

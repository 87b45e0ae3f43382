package main

import (
	"flag"

	"github.com/TheFellow/gridflow/internal/cli"
	"github.com/TheFellow/gridflow/pkg/palette"
)

// Simulation parameters, shared with flowserve.
var flowFlags = cli.BindFlowFlags(flag.CommandLine)

// Display flags. The presets of the original viewer are
// 10x6 cells at box 100, 30x15 at box 40 and 50x30 at box 20.
var (
	// boxSizeFlag is the edge length of one cell in pixels.
	boxSizeFlag = flag.Int("box", 40, "cell size in pixels")

	// arrowSizeFlag scales velocity arrows, in pixels per unit velocity.
	arrowSizeFlag = flag.Float64("arrow", 40, "arrow length per unit velocity")

	// labelsFlag toggles the per-cell pressure readout.
	labelsFlag = flag.Bool("labels", true, "draw the pressure of every cell")

	paletteFlag = flag.String("palette", palette.Default, "colour scheme: pressure, sci, viridis, turbo, plasma, inferno, magma")

	// tpsFlag is the tick rate; 50 gives the 20 ms cadence of the original.
	tpsFlag = flag.Int("tps", 50, "simulation ticks per second")

	// debugFlag enables the tick and diagnostics overlay.
	debugFlag = flag.Bool("debug", false, "show tick, FPS and divergence overlay")
)

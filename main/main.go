package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"

	"github.com/TheFellow/gridflow/internal/cli"
	"github.com/TheFellow/gridflow/pkg/export"
	"github.com/TheFellow/gridflow/pkg/flow"
	"github.com/TheFellow/gridflow/pkg/palette"
)

const margin = 50

type Game struct {
	sim  *flow.Simulation
	snap flow.Snapshot
	pal  palette.Mapper
	face text.Face

	box, arrow float32
	labels     bool

	paused   bool
	tickErr  error
	tickTime time.Duration
}

func NewGame(sim *flow.Simulation, pal palette.Mapper) *Game {
	return &Game{
		sim:    sim,
		snap:   sim.Snapshot(),
		pal:    pal,
		face:   text.NewGoXFace(basicfont.Face7x13),
		box:    float32(*boxSizeFlag),
		arrow:  float32(*arrowSizeFlag),
		labels: *labelsFlag,
	}
}

// Update advances the simulation by one tick. Space pauses, N steps while
// paused, P saves the current frame as a PNG.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.saveFrame()
	}
	if g.paused && !inpututil.IsKeyJustPressed(ebiten.KeyN) {
		return nil
	}

	start := time.Now()
	err := g.sim.Tick()
	g.tickTime = time.Since(start)
	if err != nil && !errors.Is(err, flow.ErrUnstable) {
		return err
	}
	g.tickErr = err
	g.snap = g.sim.Snapshot()
	return nil
}

func (g *Game) saveFrame() {
	opts := export.DefaultOptions()
	opts.BoxSize = float64(g.box)
	opts.ArrowSize = float64(g.arrow)
	opts.Labels = g.labels
	opts.Palette = g.pal
	name := fmt.Sprintf("gridflow-%06d.png", g.snap.Tick)
	if err := export.SavePNG(name, g.snap, opts); err != nil {
		log.WithError(err).Error("save frame")
		return
	}
	log.WithField("file", name).Info("frame saved")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(palette.Background)
	g.drawCells(screen)
	g.drawGrid(screen)
	g.drawArrows(screen)

	if *debugFlag || g.tickErr != nil {
		msg := fmt.Sprintf("tick %d  FPS %0.1f  step %s", g.snap.Tick, ebiten.ActualFPS(), g.tickTime.Round(time.Microsecond))
		if *debugFlag {
			d := g.sim.Diagnostics()
			msg += fmt.Sprintf("\nmax div %.3g  energy %.3g", d.MaxDivergence, d.KineticEnergy)
		}
		if g.paused {
			msg += "  [paused]"
		}
		ebitenutil.DebugPrint(screen, msg)
	}
	if g.tickErr != nil {
		op := &text.DrawOptions{}
		op.GeoM.Translate(4, 36)
		op.ColorScale.ScaleWithColor(warningColor)
		text.Draw(screen, g.tickErr.Error(), g.face, op)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenSize(g.snap, g.box)
}

func screenSize(s flow.Snapshot, box float32) (int, int) {
	return int(float32(s.Width())*box) + 2*margin, int(float32(s.Height())*box) + 2*margin
}

func main() {
	flag.Parse()
	if err := cli.WithCPUProfile(flowFlags.CPUProfile, run); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	sim, err := flowFlags.Simulation()
	if err != nil {
		return err
	}
	cfg := sim.Config()
	log.WithFields(log.Fields{
		"seed":   flowFlags.Seed,
		"width":  cfg.Width,
		"height": cfg.Height,
		"solid":  cfg.Width*cfg.Height - sim.Topology().Cells.Count(),
	}).Info("channel generated")

	pal, err := palette.New(*paletteFlag, cfg.OutletPressure, cfg.InletPressure)
	if err != nil {
		return err
	}

	g := NewGame(sim, pal)
	w, h := screenSize(g.snap, g.box)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("gridflow")
	ebiten.SetTPS(*tpsFlag)

	return ebiten.RunGame(g)
}

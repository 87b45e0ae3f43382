package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/TheFellow/gridflow/internal/cli"
	"github.com/TheFellow/gridflow/pkg/export"
	"github.com/TheFellow/gridflow/pkg/flow"
	"github.com/TheFellow/gridflow/pkg/stream"
)

var (
	flowFlags = cli.BindFlowFlags(flag.CommandLine)

	addrFlag     = flag.String("addr", "", "listen address, defaults to :$PORT or :8080")
	intervalFlag = flag.Duration("interval", 20*time.Millisecond, "time between ticks")
	framesFlag   = flag.String("frames", "", "directory to write PNG frames into, empty disables")
	everyFlag    = flag.Uint64("every", 50, "write one PNG frame per this many ticks")
	jsonLogFlag  = flag.Bool("json-log", false, "log as JSON")
)

func listenAddr() string {
	if *addrFlag != "" {
		return *addrFlag
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("Defaulting to port %s", port)
	}
	return ":" + port
}

func main() {
	flag.Parse()
	if *jsonLogFlag {
		log.SetFormatter(&log.JSONFormatter{})
	}
	if err := cli.WithCPUProfile(flowFlags.CPUProfile, serve); err != nil {
		log.Fatal(err)
	}
}

func serve() error {
	if *framesFlag != "" {
		if err := os.MkdirAll(*framesFlag, 0o755); err != nil {
			return err
		}
	}

	logger := log.WithField("component", "flow")
	sim, err := flowFlags.Simulation(flow.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.WithField("seed", flowFlags.Seed).Info("channel generated")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hub := stream.NewHub()
	go hub.Loop(ctx)

	render := export.DefaultOptions()
	go func() {
		err := sim.Run(ctx, *intervalFlag, func(snap flow.Snapshot, tickErr error) {
			if err := hub.Publish(ctx, stream.NewFrame(snap, tickErr)); err != nil {
				return
			}
			if *framesFlag != "" && *everyFlag > 0 && snap.Tick%*everyFlag == 0 {
				name := filepath.Join(*framesFlag, fmt.Sprintf("frame-%06d.png", snap.Tick))
				if err := export.SavePNG(name, snap, render); err != nil {
					log.WithError(err).Warn("write frame")
				}
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("simulation stopped")
		}
	}()

	srv := &http.Server{
		Addr:    listenAddr(),
		Handler: stream.NewServer(sim, hub, render),
	}
	go func() {
		<-ctx.Done()
		shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdown); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
	}()

	log.WithField("addr", srv.Addr).Info("serving")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package stream

import (
	"encoding/json"
	"net/http"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/TheFellow/gridflow/pkg/export"
	"github.com/TheFellow/gridflow/pkg/flow"
	"github.com/TheFellow/gridflow/pkg/palette"
)

// Routes served by Server.
const (
	URIStream       = "/stream"
	URIFrame        = "/frame.png"
	URIFramePalette = "/frame/:palette"
	URIDiagnostics  = "/diagnostics"
	URIHealth       = "/healthz"
)

// Server exposes one simulation over HTTP.
type Server struct {
	router *way.Router
	hub    *Hub
	sim    *flow.Simulation
	render export.Options
}

func NewServer(sim *flow.Simulation, hub *Hub, render export.Options) *Server {
	s := &Server{
		hub:    hub,
		sim:    sim,
		render: render,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URIStream, s.hub.HandleStream())
	s.router.HandleFunc("GET", URIFrame, s.handleFrame())
	s.router.HandleFunc("GET", URIFramePalette, s.handleFrame())
	s.router.HandleFunc("GET", URIDiagnostics, s.handleDiagnostics())
	s.router.HandleFunc("GET", URIHealth, s.handleHealth())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleFrame renders the latest completed tick. The /frame/:palette form
// picks the colour scheme by name.
func (s *Server) handleFrame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.sim.Snapshot()
		opts := s.render
		if name := way.Param(r.Context(), "palette"); name != "" {
			pal, err := palette.New(name, snap.OutletPressure, snap.InletPressure)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			opts.Palette = pal
		}
		w.Header().Set("Content-Type", "image/png")
		if err := export.WritePNG(w, snap, opts); err != nil {
			log.WithError(err).Error("render frame")
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func (s *Server) handleDiagnostics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.sim.Diagnostics()); err != nil {
			log.WithError(err).Warn("encode diagnostics")
		}
	}
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}
}

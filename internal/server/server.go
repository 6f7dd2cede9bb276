// Package server provides the HTTP server for the CVJutsu seal recognition system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/cvjutsu/internal/capture"
	"github.com/ayusman/cvjutsu/internal/effects"
	"github.com/ayusman/cvjutsu/internal/server/api"
	"github.com/ayusman/cvjutsu/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
	Overlay   *effects.Overlay

	// Train retrains the classifier from stored samples and returns
	// the trained labels. Wired to the application when present.
	Train func() ([]string, error)
	// ResetTracker clears the in-flight seal sequence.
	ResetTracker func()
	// CatalogChanged is called after the jutsu catalog is modified
	// through the API so the tracker picks up the new catalog.
	CatalogChanged func() error
}

// Server represents the HTTP server for the CVJutsu application.
type Server struct {
	config Config
	mux    *http.ServeMux
	states *StateHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		states: NewStateHandler(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		jutsuHandler := api.NewJutsuHandler(s.config.Store, s.config.CatalogChanged)
		s.mux.Handle("/api/jutsu", jutsuHandler)
		s.mux.Handle("/api/jutsu/", jutsuHandler)

		samplesHandler := api.NewSamplesHandler(s.config.Store)
		s.mux.Handle("/api/samples", samplesHandler)
		s.mux.Handle("/api/samples/", samplesHandler)
	}

	if s.config.Train != nil {
		s.mux.Handle("/api/train", api.NewTrainHandler(s.config.Train))
	}

	s.mux.HandleFunc("/api/reset", s.handleReset)
	s.mux.Handle("/api/state", s.states)

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera, s.config.Overlay))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// States returns the WebSocket state broadcaster. The pipeline publishes
// tracker snapshots through it.
func (s *Server) States() *StateHandler {
	return s.states
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleReset handles POST requests to /api/reset and clears the
// in-flight seal sequence.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.config.ResetTracker != nil {
		s.config.ResetTracker()
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

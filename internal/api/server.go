// Package api exposes the market simulation over HTTP and WebSocket:
// snapshot reads, agent admission, rate control, and the live tick stream.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"marketsim/internal/engine"
	"marketsim/internal/store"
)

// Server hosts the simulation HTTP API.
type Server struct {
	sim   *engine.Simulation
	store *store.TickStore // nil when history recording is disabled
	hub   *Hub
	log   *slog.Logger
}

// NewServer creates a new Server. The store may be nil; the history endpoint
// then reports that recording is disabled.
func NewServer(sim *engine.Simulation, st *store.TickStore, hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{sim: sim, store: st, hub: hub, log: logger}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/market", s.handleGetMarket)
	mux.HandleFunc("GET /api/market/history", s.handleGetHistory)
	mux.HandleFunc("POST /api/agents", s.handleAddAgent)
	mux.HandleFunc("PATCH /api/config", s.handleUpdateConfig)
	mux.HandleFunc("PATCH /api/config/pause", s.handlePause)
	mux.HandleFunc("PATCH /api/config/resume", s.handleResume)
	mux.HandleFunc("PATCH /api/config/reset", s.handleReset)
	mux.HandleFunc("GET /ws", s.hub.HandleWebSocket)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

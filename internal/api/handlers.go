package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"marketsim/internal/engine"
	"marketsim/internal/store"
)

// AddAgentRequest is the body of POST /api/agents.
type AddAgentRequest struct {
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	InitialCash float64 `json:"initialCash"`
}

// AddAgentResponse carries the name the engine assigned to the new agent.
type AddAgentResponse struct {
	Name string `json:"name"`
}

// UpdateConfigRequest is the body of PATCH /api/config. Absent fields leave
// the corresponding rate unchanged.
type UpdateConfigRequest struct {
	FundingRate  *float64 `json:"fundingRate"`
	DividendRate *float64 `json:"dividendRate"`
}

// HistoryResponse wraps recorded tick rows.
type HistoryResponse struct {
	Ticks []store.TickRecord `json:"ticks"`
}

func (s *Server) handleGetMarket(w http.ResponseWriter, _ *http.Request) {
	snap := s.sim.LatestSnapshot()
	if snap == nil {
		writeError(w, http.StatusNotFound, "no tick completed yet")
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "tick history recording is disabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.store.History(r.Context(), limit)
	if err != nil {
		s.log.Error("reading tick history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if records == nil {
		records = []store.TickRecord{}
	}
	writeJSON(w, HistoryResponse{Ticks: records})
}

func (s *Server) handleAddAgent(w http.ResponseWriter, r *http.Request) {
	var req AddAgentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name, err := s.sim.AddAgent(req.Type, req.Name, req.InitialCash)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("adding agent", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add agent")
		return
	}

	s.log.Info("agent added", "name", name, "type", req.Type, "cash", req.InitialCash)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, AddAgentResponse{Name: name})
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req UpdateConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.sim.UpdateRates(req.FundingRate, req.DividendRate); err != nil {
		if errors.Is(err, engine.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("updating rates", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update config")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.sim.Pause()
	s.log.Info("simulation paused")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	s.sim.Resume()
	s.log.Info("simulation resumed")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.sim.Reset()
	s.log.Info("simulation reset")
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

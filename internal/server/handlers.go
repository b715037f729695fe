package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nkovacs/skinpriced/internal/refresher"
	"github.com/nkovacs/skinpriced/internal/version"
)

type healthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Checks   map[string]string `json:"checks"`
	Snapshot *snapshotHealth   `json:"snapshot,omitempty"`
	Refresh  refresher.Status  `json:"refresh"`
}

type snapshotHealth struct {
	Loaded bool   `json:"loaded"`
	Age    string `json:"age,omitempty"`
	Items  int    `json:"items"`
}

type priceResponse struct {
	Name       string    `json:"name"`
	Key        string    `json:"key"`
	Price      float64   `json:"price"`
	Source     string    `json:"source,omitempty"`
	ObservedAt time.Time `json:"observed_at,omitempty"`
}

type refreshRequest struct {
	Workers int `json:"workers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: version.Version,
		Checks:  map[string]string{},
		Refresh: s.runner.Status(),
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks["database"] = "down"
		} else {
			resp.Checks["database"] = "up"
		}
	}

	if s.bulk != nil {
		age, loaded := s.bulk.SnapshotAge()
		sh := &snapshotHealth{Loaded: loaded, Items: s.bulk.SnapshotSize()}
		if loaded {
			sh.Age = age.Round(time.Second).String()
		}
		resp.Snapshot = sh
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	s.respondJSON(w, code, resp)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "name query parameter is required"})
		return
	}

	entry, ok := s.resolver.Resolve(r.Context(), name)
	resp := priceResponse{
		Name:       name,
		Key:        entry.Key,
		Price:      entry.Price,
		Source:     string(entry.Source),
		ObservedAt: entry.ObservedAt,
	}
	if !ok {
		s.respondJSON(w, http.StatusNotFound, resp)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := s.runner.Start(ctx, req.Workers)
	if err != nil {
		if errors.Is(err, refresher.ErrRunActive) {
			s.respondJSON(w, http.StatusConflict, errorResponse{Error: "a refresh run is already active"})
			return
		}
		s.logger.Error("failed to start refresh run", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to start refresh run"})
		return
	}

	s.respondJSON(w, http.StatusAccepted, st)
}

func (s *Server) handleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.runner.Status())
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dreamware/orcd/internal/scheduler"
)

type registerNodeRequest struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type submitWorkloadRequest struct {
	ScriptPath string `json:"script_path"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Nodes     int       `json:"nodes"`
	Workloads int       `json:"workloads"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Nodes:     len(s.facade.ListNodes()),
		Workloads: len(s.facade.ListWorkloads()),
	})
}

func (s *server) handleNodes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.facade.ListNodes())
	case http.MethodPost:
		var req registerNodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		node, err := s.facade.RegisterNode(req.Host, req.Port)
		if err != nil {
			writeSchedulerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, node)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) handleWorkloads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.facade.ListWorkloads())
	case http.MethodPost:
		var req submitWorkloadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		workload, err := s.facade.Submit(r.Context(), req.ScriptPath)
		if err != nil {
			writeSchedulerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, workload)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) handleWorkloadByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/workloads/")
	if id == "" {
		http.Error(w, "workload id is required", http.StatusBadRequest)
		return
	}

	if err := s.facade.Stop(r.Context(), id); err != nil {
		writeSchedulerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleHealthSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.facade.HealthSummary())
}

func (s *server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.facade.ForceHealthCheck(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRecoveryMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.facade.RecoveryMetrics())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeSchedulerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduler.ErrMissingField):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, scheduler.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, scheduler.ErrNoAvailableNodes):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, scheduler.ErrStartFailed), errors.Is(err, scheduler.ErrStopFailed):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

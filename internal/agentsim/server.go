package agentsim

import (
	"encoding/json"
	"net/http"
)

// Server exposes an Agent over the node agent HTTP contract: GET /status,
// POST /start, POST /stop.
type Server struct {
	agent *Agent
}

// NewServer returns a Server wrapping agent.
func NewServer(agent *Agent) *Server {
	return &Server{agent: agent}
}

// Handler returns an http.Handler with all three routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/stop", s.handleStop)
	return mux
}

type statusResponse struct {
	CPUUsage         float64 `json:"cpu_usage"`
	MemoryUsage      float64 `json:"memory_usage"`
	TotalMemory      uint64  `json:"total_memory"`
	AvailableMemory  uint64  `json:"available_memory"`
	RunningProcesses int     `json:"running_processes"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cpu, mem, total, avail, running, err := s.agent.Status()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		CPUUsage:         cpu,
		MemoryUsage:      mem,
		TotalMemory:      total,
		AvailableMemory:  avail,
		RunningProcesses: running,
	})
}

type startRequest struct {
	ScriptPath string `json:"script_path"`
}
type startResponse struct {
	PID int `json:"pid"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ScriptPath == "" {
		http.Error(w, "script_path is required", http.StatusBadRequest)
		return
	}

	pid := s.agent.Start(req.ScriptPath)
	writeJSON(w, http.StatusOK, startResponse{PID: pid})
}

type stopRequest struct {
	PID int `json:"pid"`
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.agent.Stop(req.PID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

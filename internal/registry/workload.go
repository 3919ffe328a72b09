package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/dreamware/orcd/internal/domain"
)

// WorkloadRegistry is the authoritative in-memory set of workloads the
// scheduler has placed. It tracks what the scheduler believes is actually
// running, as distinct from the Desired-State Table's declared intent.
//
// Thread safety: all methods are safe for concurrent use; returned
// domain.Workload values are copies.
type WorkloadRegistry struct {
	mu        sync.RWMutex
	workloads map[string]domain.Workload
}

// NewWorkloadRegistry returns an empty registry ready for use.
func NewWorkloadRegistry() *WorkloadRegistry {
	return &WorkloadRegistry{workloads: make(map[string]domain.Workload)}
}

// Insert adds a new workload record. Returns an error if the id already
// exists, since workload ids are minted fresh by the Scheduler Façade and a
// collision indicates a caller bug.
func (r *WorkloadRegistry) Insert(w domain.Workload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workloads[w.ID]; exists {
		return fmt.Errorf("workload %s already registered", w.ID)
	}
	r.workloads[w.ID] = w
	return nil
}

// Remove deletes a workload record. Idempotent: removing a missing id is
// not an error.
func (r *WorkloadRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workloads, id)
}

// Get returns the workload for id and whether it was found.
func (r *WorkloadRegistry) Get(id string) (domain.Workload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workloads[id]
	return w, ok
}

// List returns a snapshot of all workloads. Order is not guaranteed.
func (r *WorkloadRegistry) List() []domain.Workload {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Workload, 0, len(r.workloads))
	for _, w := range r.workloads {
		out = append(out, w)
	}
	return out
}

// UpdatePlacement records that id is now (or still) placed on host:port
// with the given pid, and marks it running with a fresh start_time. Used
// both on initial Submit and after a successful recovery re-placement.
func (r *WorkloadRegistry) UpdatePlacement(id, host string, port, pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workloads[id]
	if !ok {
		return
	}
	w.NodeHost = host
	w.NodePort = port
	w.PID = pid
	w.Status = domain.WorkloadRunning
	w.StartTime = time.Now()
	r.workloads[id] = w
}

// UpdateStatus sets id's status. When status is domain.WorkloadStopped or
// domain.WorkloadFailed, EndTime is stamped with the current time.
func (r *WorkloadRegistry) UpdateStatus(id string, status domain.WorkloadStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workloads[id]
	if !ok {
		return
	}
	w.Status = status
	if status == domain.WorkloadStopped || status == domain.WorkloadFailed {
		w.EndTime = time.Now()
	}
	r.workloads[id] = w
}

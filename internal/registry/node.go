// Package registry holds the two in-memory registries the control plane
// keeps: the Node Registry (liveness and utilization per node) and the
// Workload Registry (current placement and status per workload). Both are
// simple mutex-guarded maps that never block on I/O; everything that talks
// to the network or disk lives in internal/health, internal/recovery, or
// internal/statestore instead.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/dreamware/orcd/internal/domain"
)

// NodeRegistry is the authoritative in-memory set of nodes known to the
// scheduler. Registration is idempotent: re-registering an existing
// node_key refreshes LastSeen without resetting the utilization figures the
// Health Monitor has already observed (see DESIGN.md for why).
//
// Thread safety: all methods are safe for concurrent use. Callers receive
// copies of Node values, never pointers into the registry's internal map,
// so mutating a returned Node has no effect on registry state.
type NodeRegistry struct {
	mu    sync.RWMutex
	nodes map[string]domain.Node
	// order preserves node registration order, used by SelectEligible for
	// a deterministic tie-break when multiple nodes share the lowest
	// cpu_usage.
	order []string
}

// NewNodeRegistry returns an empty registry ready for use.
func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{nodes: make(map[string]domain.Node)}
}

// Register adds a new node or refreshes an existing one's LastSeen. On
// first registration the node starts in domain.NodeUnknown status with zero
// utilization, to be filled in by the Health Monitor's first probe. On
// re-registration of an existing host:port, only LastSeen is updated —
// status and utilization are left untouched, since they are the Health
// Monitor's data, not the registration caller's.
func (r *NodeRegistry) Register(host string, port int) (domain.Node, error) {
	if host == "" {
		return domain.Node{}, fmt.Errorf("host must not be empty")
	}
	if port <= 0 {
		return domain.Node{}, fmt.Errorf("port must be positive")
	}

	key := domain.NodeKey(host, port)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.nodes[key]
	if ok {
		existing.LastSeen = time.Now()
		r.nodes[key] = existing
		return existing, nil
	}

	node := domain.Node{
		Host:     host,
		Port:     port,
		Status:   domain.NodeUnknown,
		LastSeen: time.Now(),
	}
	r.nodes[key] = node
	r.order = append(r.order, key)
	return node, nil
}

// Get returns the node for key and whether it was found.
func (r *NodeRegistry) Get(key string) (domain.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[key]
	return n, ok
}

// List returns a snapshot of all nodes in registration order.
func (r *NodeRegistry) List() []domain.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Node, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.nodes[key])
	}
	return out
}

// UpdateObserved overwrites the status and utilization fields for key, as
// observed by a Health Monitor probe. LastSeen is bumped to now. A call for
// an unknown key is a no-op: the Health Monitor only probes nodes it first
// read from this same registry, so this should not happen in practice, but
// a concurrent deregistration (not currently supported) must not panic.
func (r *NodeRegistry) UpdateObserved(key string, status domain.NodeStatus, cpu, mem float64, totalMem, availMem uint64, runningProcesses int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[key]
	if !ok {
		return
	}
	n.Status = status
	n.CPUUsage = cpu
	n.MemoryUsage = mem
	n.TotalMemory = totalMem
	n.AvailableMemory = availMem
	n.RunningProcesses = runningProcesses
	n.LastSeen = time.Now()
	r.nodes[key] = n
}

// SetStatus overwrites only the status field for key, leaving utilization
// untouched. Used by the Health Monitor when a probe fails: a failure tells
// us nothing about current CPU/memory, only that the node didn't answer.
func (r *NodeRegistry) SetStatus(key string, status domain.NodeStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[key]
	if !ok {
		return
	}
	n.Status = status
	r.nodes[key] = n
}

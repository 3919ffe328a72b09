// Package health implements the Health Monitor: a periodic prober that
// issues /status calls to every registered node, classifies the result,
// and escalates a node to offline (and its workloads into the FailureSet)
// after enough consecutive failures.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dreamware/orcd/internal/domain"
	"github.com/dreamware/orcd/internal/metrics"
	"github.com/dreamware/orcd/internal/obslog"
	"github.com/dreamware/orcd/internal/registry"
	"github.com/dreamware/orcd/internal/statestore"
	"github.com/dreamware/orcd/internal/transport"
)

// statusResponse mirrors the node agent's GET /status JSON body.
type statusResponse struct {
	CPUUsage         float64 `json:"cpu_usage"`
	MemoryUsage      float64 `json:"memory_usage"`
	TotalMemory      uint64  `json:"total_memory"`
	AvailableMemory  uint64  `json:"available_memory"`
	RunningProcesses int     `json:"running_processes"`
}

// CheckFunc probes one node and returns its reported status, or an error if
// the node didn't answer. Exposed so tests can inject a fake prober instead
// of making real HTTP calls.
type CheckFunc func(ctx context.Context, node domain.Node) (statusResponse, error)

// workloadLister is the subset of *registry.WorkloadRegistry that New
// accepts. Expressed as an interface so tests can supply a fake. The
// workloads queued when a node goes offline are taken from the
// Desired-State Table, not from this lister.
type workloadLister interface {
	List() []domain.Workload
}

// Monitor periodically probes every node in a registry.NodeRegistry,
// updates observed status/utilization, and escalates nodes that fail
// enough consecutive probes into the recovery path.
type Monitor struct {
	nodes    *registry.NodeRegistry
	desired  *statestore.DesiredStateTable
	workload workloadLister

	interval         time.Duration
	timeout          time.Duration
	failureThreshold int

	checkMu   sync.RWMutex
	checkFunc CheckFunc

	mu       sync.Mutex
	failures map[string]int
	checks   map[string]domain.HealthCheck
}

// New returns a Monitor wired to nodes, desired, and workloads, using the
// default HTTP-based check function. interval is the probe cadence, timeout
// bounds each probe, failureThreshold is the consecutive-failure count that
// trips a node offline.
func New(nodes *registry.NodeRegistry, desired *statestore.DesiredStateTable, workloads workloadLister, interval, timeout time.Duration, failureThreshold int) *Monitor {
	m := &Monitor{
		nodes:            nodes,
		desired:          desired,
		workload:         workloads,
		interval:         interval,
		timeout:          timeout,
		failureThreshold: failureThreshold,
		failures:         make(map[string]int),
		checks:           make(map[string]domain.HealthCheck),
	}
	m.checkFunc = m.defaultCheck
	return m
}

// SetCheckFunction overrides the probe implementation. Used by tests to
// avoid real network calls.
func (m *Monitor) SetCheckFunction(fn CheckFunc) {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()
	m.checkFunc = fn
}

func (m *Monitor) check() CheckFunc {
	m.checkMu.RLock()
	defer m.checkMu.RUnlock()
	return m.checkFunc
}

// Run blocks, probing all nodes on a ticker until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	log := obslog.WithComponent("health_monitor")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("health monitor stopping")
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll probes every registered node concurrently and waits for all
// probes to finish before returning, so each tick's classification is based
// on a consistent set of results. Exported so callers (and tests, and the
// /health/check HTTP endpoint) can force an out-of-cycle check.
func (m *Monitor) CheckAll(ctx context.Context) {
	nodes := m.nodes.List()

	var wg sync.WaitGroup
	for _, n := range nodes {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.checkOne(ctx, n)
		}()
	}
	wg.Wait()
}

func (m *Monitor) checkOne(ctx context.Context, node domain.Node) {
	key := node.Key()

	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	timer := metrics.NewTimer()
	resp, err := m.check()(checkCtx, node)
	responseTime := timer.Duration()

	if err != nil {
		timer.ObserveDurationVec(metrics.HealthCheckDuration, "failure")
		metrics.HealthChecksTotal.WithLabelValues("failure").Inc()
		m.recordFailure(key, responseTime)
		return
	}

	timer.ObserveDurationVec(metrics.HealthCheckDuration, "success")
	metrics.HealthChecksTotal.WithLabelValues("success").Inc()
	m.recordSuccess(key, resp, responseTime)
}

// recordSuccess and recordFailure each update the node's HealthCheck record
// atomically with the probe result, mirroring the source system's
// health_checks table: last_check, consecutive_failures, response_time, and
// status are never observed in a partially-updated state.
func (m *Monitor) recordSuccess(key string, resp statusResponse, responseTime time.Duration) {
	m.mu.Lock()
	m.failures[key] = 0
	m.checks[key] = domain.HealthCheck{
		LastCheck:           time.Now(),
		ConsecutiveFailures: 0,
		ResponseTime:        responseTime,
		Status:              domain.NodeOnline,
	}
	m.mu.Unlock()

	m.nodes.UpdateObserved(key, domain.NodeOnline, resp.CPUUsage, resp.MemoryUsage,
		resp.TotalMemory, resp.AvailableMemory, resp.RunningProcesses)
}

func (m *Monitor) recordFailure(key string, responseTime time.Duration) {
	log := obslog.WithComponent("health_monitor")

	m.mu.Lock()
	m.failures[key]++
	count := m.failures[key]
	m.checks[key] = domain.HealthCheck{
		LastCheck:           time.Now(),
		ConsecutiveFailures: count,
		ResponseTime:        responseTime,
		Status:              domain.NodeOffline,
	}
	m.mu.Unlock()

	if count < m.failureThreshold {
		return
	}

	node, ok := m.nodes.Get(key)
	if !ok || node.Status == domain.NodeOffline {
		return
	}

	m.nodes.SetStatus(key, domain.NodeOffline)
	metrics.NodeFailuresTotal.Inc()
	log.Warn().Str("node", key).Int("consecutive_failures", count).Msg("node marked offline")

	var toRecover []string
	for _, e := range m.desired.SnapshotForPersistence() {
		if e.TargetNode == key && e.Status == domain.DesiredRunning {
			toRecover = append(toRecover, e.WorkloadID)
		}
	}
	if len(toRecover) > 0 {
		m.desired.MarkForRecovery(toRecover...)
		log.Info().Int("workloads", len(toRecover)).Str("node", key).Msg("queued workloads for recovery")
	}
}

func (m *Monitor) defaultCheck(ctx context.Context, node domain.Node) (statusResponse, error) {
	url := fmt.Sprintf("http://%s:%d/status", node.Host, node.Port)
	var out statusResponse
	if err := transport.GetJSON(ctx, url, &out); err != nil {
		return statusResponse{}, err
	}
	return out, nil
}

// IsHealthy reports whether key is currently believed online.
func (m *Monitor) IsHealthy(key string) bool {
	n, ok := m.nodes.Get(key)
	return ok && n.Status == domain.NodeOnline
}

// HealthChecks returns a snapshot of every node's most recent HealthCheck
// record, keyed by node key. Used by the Scheduler Façade to serve
// GET /health/summary and GET /recovery/metrics.
func (m *Monitor) HealthChecks() map[string]domain.HealthCheck {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.HealthCheck, len(m.checks))
	for k, v := range m.checks {
		out[k] = v
	}
	return out
}

// HealthCheckFor returns the most recent HealthCheck record for key, if any.
func (m *Monitor) HealthCheckFor(key string) (domain.HealthCheck, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hc, ok := m.checks[key]
	return hc, ok
}

// Package scheduler implements the Scheduler Façade: the single entry point
// the HTTP control API and the CLI call to register nodes, submit and stop
// workloads, and read back cluster/health/recovery state. It is the only
// package that mutates the Node Registry, Workload Registry, and
// Desired-State Table in response to an operator-initiated request — the
// Health Monitor and Recovery Engine mutate the same structures in response
// to observed node behavior instead.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dreamware/orcd/internal/domain"
	"github.com/dreamware/orcd/internal/health"
	"github.com/dreamware/orcd/internal/metrics"
	"github.com/dreamware/orcd/internal/obslog"
	"github.com/dreamware/orcd/internal/recovery"
	"github.com/dreamware/orcd/internal/registry"
	"github.com/dreamware/orcd/internal/statestore"
	"github.com/dreamware/orcd/internal/transport"
)

// startRequest/startResponse/stopRequest mirror the node agent's /start and
// /stop JSON contract. Kept private to this package; HTTP wire types live
// in cmd/scheduler.
type startRequest struct {
	ScriptPath string `json:"script_path"`
}
type startResponse struct {
	PID int `json:"pid"`
}
type stopRequest struct {
	PID int `json:"pid"`
}

// Facade is the Scheduler Façade.
type Facade struct {
	nodes     *registry.NodeRegistry
	workloads *registry.WorkloadRegistry
	desired   *statestore.DesiredStateTable
	health    *health.Monitor
	recovery  *recovery.Engine

	startStopTimeout time.Duration
	cpuThreshold     float64
	maxRetries       int
}

// New returns a Facade wired to the shared registries and background
// components. startStopTimeout bounds outbound /start and /stop calls.
func New(nodes *registry.NodeRegistry, workloads *registry.WorkloadRegistry, desired *statestore.DesiredStateTable, healthMonitor *health.Monitor, recoveryEngine *recovery.Engine, startStopTimeout time.Duration, cpuThreshold float64, maxRetries int) *Facade {
	return &Facade{
		nodes:            nodes,
		workloads:        workloads,
		desired:          desired,
		health:           healthMonitor,
		recovery:         recoveryEngine,
		startStopTimeout: startStopTimeout,
		cpuThreshold:     cpuThreshold,
		maxRetries:       maxRetries,
	}
}

// RegisterNode adds host:port to the Node Registry. Idempotent.
func (f *Facade) RegisterNode(host string, port int) (domain.Node, error) {
	if host == "" {
		return domain.Node{}, fmt.Errorf("%w: host", ErrMissingField)
	}
	if port <= 0 {
		return domain.Node{}, fmt.Errorf("%w: port", ErrMissingField)
	}
	return f.nodes.Register(host, port)
}

// ListNodes returns every registered node.
func (f *Facade) ListNodes() []domain.Node {
	return f.nodes.List()
}

// ListWorkloads returns every tracked workload.
func (f *Facade) ListWorkloads() []domain.Workload {
	return f.workloads.List()
}

// Submit places a new workload: it mints a workload_id, selects the best
// eligible node (same rule the Recovery Engine uses), calls that node's
// /start, and on success records both the Workload Registry entry and the
// Desired-State Table intent. On any failure the partially-inserted
// workload is removed so ListWorkloads never shows a workload that never
// actually started.
func (f *Facade) Submit(ctx context.Context, scriptPath string) (domain.Workload, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SubmitDuration)

	log := obslog.WithComponent("scheduler")

	if scriptPath == "" {
		return domain.Workload{}, fmt.Errorf("%w: script_path", ErrMissingField)
	}

	target, found := registry.SelectEligible(f.nodes.List(), f.cpuThreshold)
	if !found {
		return domain.Workload{}, ErrNoAvailableNodes
	}

	id := uuid.NewString()
	workload := domain.Workload{
		ID:         id,
		ScriptPath: scriptPath,
		NodeHost:   target.Host,
		NodePort:   target.Port,
		Status:     domain.WorkloadPending,
	}
	if err := f.workloads.Insert(workload); err != nil {
		return domain.Workload{}, err
	}

	startCtx, cancel := context.WithTimeout(ctx, f.startStopTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d/start", target.Host, target.Port)
	var resp startResponse
	if err := transport.PostJSON(startCtx, url, startRequest{ScriptPath: scriptPath}, &resp); err != nil {
		f.workloads.Remove(id)
		log.Error().Err(err).Str("node", target.Key()).Msg("submit start call failed")
		return domain.Workload{}, fmt.Errorf("%w: %v", ErrStartFailed, err)
	}

	f.workloads.UpdatePlacement(id, target.Host, target.Port, resp.PID)
	f.desired.Register(id, scriptPath, target.Key(), f.maxRetries)

	placed, _ := f.workloads.Get(id)
	log.Info().Str("workload_id", id).Str("node", target.Key()).Int("pid", resp.PID).Msg("workload submitted")
	return placed, nil
}

// Stop stops a running workload: it calls the target node's /stop, and on
// success marks the workload stopped and removes its desired-state intent
// so the Recovery Engine never tries to resurrect a deliberately stopped
// workload.
func (f *Facade) Stop(ctx context.Context, workloadID string) error {
	w, ok := f.workloads.Get(workloadID)
	if !ok {
		return ErrNotFound
	}

	stopCtx, cancel := context.WithTimeout(ctx, f.startStopTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d/stop", w.NodeHost, w.NodePort)
	if err := transport.PostJSON(stopCtx, url, stopRequest{PID: w.PID}, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrStopFailed, err)
	}

	f.workloads.UpdateStatus(workloadID, domain.WorkloadStopped)
	f.desired.Unregister(workloadID)
	return nil
}

// HealthSummary aggregates node counts by status plus per-node health
// detail, for GET /health/summary. Mirrors the source system's
// get_health_summary: total/online/offline/degraded node counts,
// failed/desired workload counts, and one NodeHealthDetail per node.
type HealthSummary struct {
	TotalNodes       int                `json:"total_nodes"`
	OnlineNodes      int                `json:"online_nodes"`
	OfflineNodes     int                `json:"offline_nodes"`
	DegradedNodes    int                `json:"degraded_nodes"`
	FailedWorkloads  int                `json:"failed_workloads"`
	DesiredWorkloads int                `json:"desired_workloads"`
	NodeDetails      []NodeHealthDetail `json:"node_details"`
}

// NodeHealthDetail is one node's entry in HealthSummary.NodeDetails,
// combining the Node Registry's observed utilization with the Health
// Monitor's last HealthCheck record for that node.
type NodeHealthDetail struct {
	NodeKey             string            `json:"node_key"`
	Host                string            `json:"host"`
	Port                int               `json:"port"`
	Status              domain.NodeStatus `json:"status"`
	CPUUsage            float64           `json:"cpu_usage"`
	MemoryUsage         float64           `json:"memory_usage"`
	LastCheck           *time.Time        `json:"last_check"`
	ConsecutiveFailures int               `json:"consecutive_failures"`
	ResponseTime        *time.Duration    `json:"response_time"`
}

// HealthSummary reports per-node health detail and aggregate node counts,
// as seen by the Health Monitor.
func (f *Facade) HealthSummary() HealthSummary {
	checks := f.health.HealthChecks()

	summary := HealthSummary{
		FailedWorkloads:  len(f.desired.FailureSetSnapshot()),
		DesiredWorkloads: len(f.desired.SnapshotForPersistence()),
	}

	for _, n := range f.nodes.List() {
		key := n.Key()
		detail := NodeHealthDetail{
			NodeKey:     key,
			Host:        n.Host,
			Port:        n.Port,
			Status:      n.Status,
			CPUUsage:    n.CPUUsage,
			MemoryUsage: n.MemoryUsage,
		}
		if hc, ok := checks[key]; ok {
			lastCheck := hc.LastCheck
			responseTime := hc.ResponseTime
			detail.LastCheck = &lastCheck
			detail.ConsecutiveFailures = hc.ConsecutiveFailures
			detail.ResponseTime = &responseTime
		}
		summary.NodeDetails = append(summary.NodeDetails, detail)

		summary.TotalNodes++
		switch n.Status {
		case domain.NodeOnline:
			summary.OnlineNodes++
		case domain.NodeOffline:
			summary.OfflineNodes++
		default:
			summary.DegradedNodes++
		}
	}

	return summary
}

// ForceHealthCheck triggers an out-of-cycle probe of every node.
func (f *Facade) ForceHealthCheck(ctx context.Context) {
	f.health.CheckAll(ctx)
}

// RecoveryMetrics is the read-only recovery status snapshot exposed by
// GET /recovery/metrics, mirroring the source system's
// get_recovery_metrics: the FailureSet ids, the desired-state entry count,
// and a per-node HealthCheck record.
type RecoveryMetrics struct {
	FailedWorkloads   []string                      `json:"failed_workloads"`
	DesiredStateCount int                           `json:"desired_state_count"`
	HealthChecks      map[string]domain.HealthCheck `json:"health_checks"`
}

// RecoveryMetrics reports the current FailureSet, desired-state count, and
// per-node health-check records, for the /recovery/metrics endpoint and the
// CLI's `recovery` subcommand.
func (f *Facade) RecoveryMetrics() RecoveryMetrics {
	return RecoveryMetrics{
		FailedWorkloads:   f.desired.FailureSetSnapshot(),
		DesiredStateCount: len(f.desired.SnapshotForPersistence()),
		HealthChecks:      f.health.HealthChecks(),
	}
}

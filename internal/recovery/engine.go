// Package recovery implements the Recovery Engine: the consumer of the
// FailureSet. On each cadence tick it drains the set, picks a healthy
// replacement node for every workload still worth retrying, and attempts to
// start it there.
package recovery

import (
	"context"
	"fmt"
	"time"

	"github.com/dreamware/orcd/internal/domain"
	"github.com/dreamware/orcd/internal/metrics"
	"github.com/dreamware/orcd/internal/obslog"
	"github.com/dreamware/orcd/internal/registry"
	"github.com/dreamware/orcd/internal/statestore"
	"github.com/dreamware/orcd/internal/transport"
)

// startRequest mirrors the node agent's POST /start JSON body.
type startRequest struct {
	ScriptPath string `json:"script_path"`
}

// startResponse mirrors the node agent's POST /start JSON response.
type startResponse struct {
	PID int `json:"pid"`
}

// Engine drains the FailureSet on a fixed cadence, selecting a replacement
// node for each workload still within its retry budget and calling that
// node's /start.
type Engine struct {
	nodes     *registry.NodeRegistry
	workloads *registry.WorkloadRegistry
	desired   *statestore.DesiredStateTable

	cadence      time.Duration
	startTimeout time.Duration
	cpuThreshold float64
}

// New returns an Engine wired to the shared registries and desired-state
// table. cadence is how often the engine drains the failure set;
// startTimeout bounds each /start call; cpuThreshold is the eligibility
// ceiling shared with the Scheduler Façade.
func New(nodes *registry.NodeRegistry, workloads *registry.WorkloadRegistry, desired *statestore.DesiredStateTable, cadence, startTimeout time.Duration, cpuThreshold float64) *Engine {
	return &Engine{
		nodes:        nodes,
		workloads:    workloads,
		desired:      desired,
		cadence:      cadence,
		startTimeout: startTimeout,
		cpuThreshold: cpuThreshold,
	}
}

// Run blocks, draining the failure set on a ticker until ctx is canceled.
func (e *Engine) Run(ctx context.Context) {
	log := obslog.WithComponent("recovery_engine")
	ticker := time.NewTicker(e.cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("recovery engine stopping")
			return
		case <-ticker.C:
			e.RunOnce(ctx)
		}
	}
}

// RunOnce drains a snapshot of the current failure set, attempting
// recovery for each workload it still finds a desired-state entry for.
// Exported so tests and the HTTP layer can force an out-of-cycle pass.
func (e *Engine) RunOnce(ctx context.Context) {
	ids := e.desired.FailureSetSnapshot()
	if len(ids) == 0 {
		return
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RecoveryCycleDuration)

	for _, id := range ids {
		e.recoverOne(ctx, id)
	}
}

func (e *Engine) recoverOne(ctx context.Context, workloadID string) {
	log := obslog.WithWorkload(workloadID)

	entry, ok := e.desired.Get(workloadID)
	if !ok {
		// No desired-state entry: nothing to recover. Can't happen under
		// the FailureSet ⊆ domain(DesiredStateTable) invariant, but a
		// concurrent Unregister (deliberate stop) can race a recovery
		// attempt, so handle it defensively rather than assume it away.
		return
	}
	if entry.RetryCount >= entry.MaxRetries {
		e.desired.Exhaust(workloadID)
		metrics.WorkloadsExhaustedTotal.Inc()
		metrics.RecoveryAttemptsTotal.WithLabelValues("exhausted").Inc()
		log.Warn().Int("retry_count", entry.RetryCount).Msg("workload exceeded max_retries, giving up")
		return
	}

	target, found := registry.SelectEligible(e.nodes.List(), e.cpuThreshold)
	if !found {
		metrics.RecoveryAttemptsTotal.WithLabelValues("no_node").Inc()
		log.Warn().Msg("no eligible node available for recovery, will retry next cycle")
		return
	}

	startCtx, cancel := context.WithTimeout(ctx, e.startTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d/start", target.Host, target.Port)
	var resp startResponse
	err := transport.PostJSON(startCtx, url, startRequest{ScriptPath: entry.ScriptPath}, &resp)

	targetKey := target.Key()
	if err != nil {
		_, exhausted := e.desired.RecordRecoveryAttempt(workloadID, false, "")
		metrics.RecoveryAttemptsTotal.WithLabelValues("failure").Inc()
		log.Error().Err(err).Str("candidate_node", targetKey).Msg("recovery start attempt failed")
		if exhausted {
			metrics.WorkloadsExhaustedTotal.Inc()
			log.Warn().Msg("workload exceeded max_retries after this attempt, giving up")
		}
		return
	}

	e.desired.RecordRecoveryAttempt(workloadID, true, targetKey)
	e.workloads.UpdatePlacement(workloadID, target.Host, target.Port, resp.PID)
	metrics.RecoveryAttemptsTotal.WithLabelValues("success").Inc()
	log.Info().Str("node", targetKey).Int("pid", resp.PID).Msg("workload recovered")
}

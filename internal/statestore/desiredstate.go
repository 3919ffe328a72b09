// Package statestore owns the Desired-State Table, its FailureSet, and the
// atomic file persistence that survives process restarts. The table records
// intent ("workload W should be running on node N"); the FailureSet is the
// subset of that intent currently believed to be unmet and awaiting
// recovery.
package statestore

import (
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/dreamware/orcd/internal/domain"
)

// DesiredStateTable is the in-memory, mutex-guarded store of DesiredState
// entries plus the FailureSet. One recovery_lock guards both, since the
// Health Monitor's enqueue and the Recovery Engine's drain must never
// interleave into an inconsistent view of which workloads are in the
// failure set.
type DesiredStateTable struct {
	mu      sync.Mutex
	entries map[string]domain.DesiredState
	failed  map[string]struct{}
}

// NewDesiredStateTable returns an empty table.
func NewDesiredStateTable() *DesiredStateTable {
	return &DesiredStateTable{
		entries: make(map[string]domain.DesiredState),
		failed:  make(map[string]struct{}),
	}
}

// Register records intent: workloadID should run on targetNode. Called by
// the Scheduler Façade on Submit. It always writes a fresh entry with
// RetryCount 0 and removes workloadID from the failure set; the Recovery
// Engine updates placement through RecordRecoveryAttempt instead.
func (t *DesiredStateTable) Register(workloadID, scriptPath, targetNode string, maxRetries int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[workloadID] = domain.DesiredState{
		WorkloadID: workloadID,
		ScriptPath: scriptPath,
		TargetNode: targetNode,
		Status:     domain.DesiredRunning,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: maxRetries,
	}
	delete(t.failed, workloadID)
}

// Unregister removes a workload's desired-state entry entirely, used when
// the Scheduler Façade stops a workload deliberately.
func (t *DesiredStateTable) Unregister(workloadID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, workloadID)
	delete(t.failed, workloadID)
}

// Get returns the entry for workloadID and whether it exists.
func (t *DesiredStateTable) Get(workloadID string) (domain.DesiredState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[workloadID]
	return e, ok
}

// MarkForRecovery adds workloadIDs to the FailureSet. Called by the Health
// Monitor when a node is observed offline, for every running desired-state
// entry targeting that node. Ids with no desired-state entry are ignored:
// the invariant FailureSet ⊆ domain(DesiredStateTable) is maintained by
// never inserting one without the other.
func (t *DesiredStateTable) MarkForRecovery(workloadIDs ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range workloadIDs {
		if _, ok := t.entries[id]; !ok {
			continue
		}
		t.failed[id] = struct{}{}
	}
}

// FailureSetSnapshot returns the current failure set ids. The caller should
// treat this as a point-in-time read: entries may be added or removed by
// the Health Monitor concurrently.
func (t *DesiredStateTable) FailureSetSnapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.failed))
	for id := range t.failed {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// RecordRecoveryAttempt applies the outcome of one Recovery Engine attempt
// for workloadID. retry_count is incremented regardless of outcome — the
// source system's behavior, preserved deliberately (see DESIGN.md). On
// success the entry's TargetNode is updated and it is removed from the
// failure set. On failure, if RetryCount has now reached MaxRetries the
// entry transitions to domain.DesiredFailed and is dropped from the
// failure set (retries are exhausted, no further attempts will be made);
// otherwise it remains in the failure set for the next cycle.
//
// Returns the updated entry and whether it is now exhausted (permanently
// failed).
func (t *DesiredStateTable) RecordRecoveryAttempt(workloadID string, success bool, newTargetNode string) (domain.DesiredState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[workloadID]
	if !ok {
		return domain.DesiredState{}, false
	}

	e.RetryCount++

	if success {
		e.TargetNode = newTargetNode
		e.Status = domain.DesiredRunning
		t.entries[workloadID] = e
		delete(t.failed, workloadID)
		return e, false
	}

	exhausted := e.RetryCount >= e.MaxRetries
	if exhausted {
		e.Status = domain.DesiredFailed
		delete(t.failed, workloadID)
	}
	t.entries[workloadID] = e
	return e, exhausted
}

// Exhaust marks workloadID's entry as permanently failed without
// incrementing RetryCount again, and removes it from the failure set. Used
// when a workload already reached MaxRetries on a previous attempt, so this
// cycle makes no further attempt at all.
func (t *DesiredStateTable) Exhaust(workloadID string) (domain.DesiredState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[workloadID]
	if !ok {
		return domain.DesiredState{}, false
	}
	e.Status = domain.DesiredFailed
	t.entries[workloadID] = e
	delete(t.failed, workloadID)
	return e, true
}

// SnapshotForPersistence returns a copy of every desired-state entry, for
// the Persistence Flusher to write to the State Store.
func (t *DesiredStateTable) SnapshotForPersistence() []domain.DesiredState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.DesiredState, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.DesiredState) int {
		switch {
		case a.WorkloadID < b.WorkloadID:
			return -1
		case a.WorkloadID > b.WorkloadID:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Restore replaces the table's contents with entries loaded from the State
// Store, used once at startup. The failure set is left empty: a restored
// entry with Status == domain.DesiredRunning is not assumed to be failing,
// it will be re-evaluated by the next Health Monitor tick once its target
// node reports in.
func (t *DesiredStateTable) Restore(entries []domain.DesiredState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]domain.DesiredState, len(entries))
	t.failed = make(map[string]struct{})
	for _, e := range entries {
		t.entries[e.WorkloadID] = e
	}
}

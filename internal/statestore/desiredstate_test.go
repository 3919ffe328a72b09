package statestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/orcd/internal/domain"
)

func TestRegisterAndGet(t *testing.T) {
	table := NewDesiredStateTable()
	table.Register("w1", "job.sh", "h:1", 3)

	e, ok := table.Get("w1")
	require.True(t, ok)
	assert.Equal(t, "h:1", e.TargetNode)
	assert.Equal(t, domain.DesiredRunning, e.Status)
	assert.Equal(t, 0, e.RetryCount)
}

func TestMarkForRecoveryOnlyAffectsKnownEntries(t *testing.T) {
	table := NewDesiredStateTable()
	table.Register("w1", "job.sh", "h:1", 3)

	table.MarkForRecovery("w1", "unknown-workload")

	set := table.FailureSetSnapshot()
	assert.Equal(t, []string{"w1"}, set)
}

func TestRetryCountAccumulatesOnSuccessAndFailure(t *testing.T) {
	table := NewDesiredStateTable()
	table.Register("w1", "job.sh", "h:1", 3)
	table.MarkForRecovery("w1")

	// A successful recovery still increments retry_count: the source
	// system's behavior, preserved deliberately (see DESIGN.md).
	e, exhausted := table.RecordRecoveryAttempt("w1", true, "h:2")
	assert.False(t, exhausted)
	assert.Equal(t, 1, e.RetryCount)
	assert.Equal(t, "h:2", e.TargetNode)
	assert.Empty(t, table.FailureSetSnapshot())

	table.MarkForRecovery("w1")
	e, exhausted = table.RecordRecoveryAttempt("w1", false, "")
	assert.False(t, exhausted)
	assert.Equal(t, 2, e.RetryCount)
	assert.Equal(t, []string{"w1"}, table.FailureSetSnapshot())
}

func TestRecordRecoveryAttemptExhaustsAtMaxRetries(t *testing.T) {
	table := NewDesiredStateTable()
	table.Register("w1", "job.sh", "h:1", 2)
	table.MarkForRecovery("w1")

	_, exhausted := table.RecordRecoveryAttempt("w1", false, "")
	assert.False(t, exhausted)

	table.MarkForRecovery("w1")
	e, exhausted := table.RecordRecoveryAttempt("w1", false, "")
	assert.True(t, exhausted)
	assert.Equal(t, domain.DesiredFailed, e.Status)
	assert.Empty(t, table.FailureSetSnapshot())
}

func TestExhaustDoesNotIncrementRetryCount(t *testing.T) {
	table := NewDesiredStateTable()
	table.Register("w1", "job.sh", "h:1", 1)
	table.MarkForRecovery("w1")
	table.RecordRecoveryAttempt("w1", false, "")

	e, ok := table.Exhaust("w1")
	require.True(t, ok)
	assert.Equal(t, 1, e.RetryCount)
	assert.Equal(t, domain.DesiredFailed, e.Status)
	assert.Empty(t, table.FailureSetSnapshot())
}

func TestUnregisterRemovesFromFailureSet(t *testing.T) {
	table := NewDesiredStateTable()
	table.Register("w1", "job.sh", "h:1", 3)
	table.MarkForRecovery("w1")

	table.Unregister("w1")

	_, ok := table.Get("w1")
	assert.False(t, ok)
	assert.Empty(t, table.FailureSetSnapshot())
}

func TestRestoreReplacesEntriesAndClearsFailureSet(t *testing.T) {
	table := NewDesiredStateTable()
	table.Register("w1", "job.sh", "h:1", 3)
	table.MarkForRecovery("w1")

	table.Restore([]domain.DesiredState{
		{WorkloadID: "w2", ScriptPath: "b.sh", TargetNode: "h:2", Status: domain.DesiredRunning, MaxRetries: 3},
	})

	_, ok := table.Get("w1")
	assert.False(t, ok)
	_, ok = table.Get("w2")
	assert.True(t, ok)
	assert.Empty(t, table.FailureSetSnapshot())
}

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/orcd/internal/domain"
)

func TestWorkloadRegistryInsertAndGet(t *testing.T) {
	r := NewWorkloadRegistry()

	err := r.Insert(domain.Workload{ID: "w1", ScriptPath: "job.sh", Status: domain.WorkloadPending})
	require.NoError(t, err)

	w, ok := r.Get("w1")
	require.True(t, ok)
	assert.Equal(t, domain.WorkloadPending, w.Status)
}

func TestWorkloadRegistryInsertDuplicateFails(t *testing.T) {
	r := NewWorkloadRegistry()
	require.NoError(t, r.Insert(domain.Workload{ID: "w1"}))

	err := r.Insert(domain.Workload{ID: "w1"})
	assert.Error(t, err)
}

func TestWorkloadRegistryUpdatePlacement(t *testing.T) {
	r := NewWorkloadRegistry()
	require.NoError(t, r.Insert(domain.Workload{ID: "w1", Status: domain.WorkloadPending}))

	r.UpdatePlacement("w1", "10.0.0.1", 9000, 1234)

	w, ok := r.Get("w1")
	require.True(t, ok)
	assert.Equal(t, domain.WorkloadRunning, w.Status)
	assert.Equal(t, 1234, w.PID)
	assert.Equal(t, "10.0.0.1", w.NodeHost)
	assert.False(t, w.StartTime.IsZero())
}

func TestWorkloadRegistryUpdateStatusStampsEndTime(t *testing.T) {
	r := NewWorkloadRegistry()
	require.NoError(t, r.Insert(domain.Workload{ID: "w1", Status: domain.WorkloadRunning}))

	r.UpdateStatus("w1", domain.WorkloadStopped)

	w, ok := r.Get("w1")
	require.True(t, ok)
	assert.Equal(t, domain.WorkloadStopped, w.Status)
	assert.False(t, w.EndTime.IsZero())
}

func TestWorkloadRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewWorkloadRegistry()
	require.NoError(t, r.Insert(domain.Workload{ID: "w1"}))

	r.Remove("w1")
	r.Remove("w1")

	_, ok := r.Get("w1")
	assert.False(t, ok)
}

func TestWorkloadRegistryList(t *testing.T) {
	r := NewWorkloadRegistry()
	require.NoError(t, r.Insert(domain.Workload{ID: "w1"}))
	require.NoError(t, r.Insert(domain.Workload{ID: "w2"}))

	assert.Len(t, r.List(), 2)
}

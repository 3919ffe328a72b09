package recovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/orcd/internal/domain"
	"github.com/dreamware/orcd/internal/registry"
	"github.com/dreamware/orcd/internal/statestore"
)

func newAgentServer(t *testing.T, fail bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "simulated failure", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"pid": 4242})
	}))
}

func hostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}

func TestEngineRecoversWorkloadOnSuccess(t *testing.T) {
	agent := newAgentServer(t, false)
	defer agent.Close()
	host, port := hostPort(t, agent.URL)

	nodes := registry.NewNodeRegistry()
	_, err := nodes.Register(host, port)
	require.NoError(t, err)
	nodes.UpdateObserved(domain.NodeKey(host, port), domain.NodeOnline, 10, 10, 1024, 900, 1)

	workloads := registry.NewWorkloadRegistry()
	require.NoError(t, workloads.Insert(domain.Workload{ID: "w1", ScriptPath: "job.sh", Status: domain.WorkloadRunning}))

	desired := statestore.NewDesiredStateTable()
	desired.Register("w1", "job.sh", "dead-node:1", 3)
	desired.MarkForRecovery("w1")

	engine := New(nodes, workloads, desired, time.Second, time.Second, 80.0)
	engine.RunOnce(context.Background())

	entry, ok := desired.Get("w1")
	require.True(t, ok)
	assert.Equal(t, domain.NodeKey(host, port), entry.TargetNode)
	assert.Equal(t, 1, entry.RetryCount)
	assert.Empty(t, desired.FailureSetSnapshot())

	w, ok := workloads.Get("w1")
	require.True(t, ok)
	assert.Equal(t, 4242, w.PID)
	assert.Equal(t, domain.WorkloadRunning, w.Status)
}

func TestEngineLeavesWorkloadInFailureSetOnFailure(t *testing.T) {
	agent := newAgentServer(t, true)
	defer agent.Close()
	host, port := hostPort(t, agent.URL)

	nodes := registry.NewNodeRegistry()
	_, err := nodes.Register(host, port)
	require.NoError(t, err)
	nodes.UpdateObserved(domain.NodeKey(host, port), domain.NodeOnline, 10, 10, 1024, 900, 1)

	workloads := registry.NewWorkloadRegistry()
	desired := statestore.NewDesiredStateTable()
	desired.Register("w1", "job.sh", "dead-node:1", 3)
	desired.MarkForRecovery("w1")

	engine := New(nodes, workloads, desired, time.Second, time.Second, 80.0)
	engine.RunOnce(context.Background())

	entry, ok := desired.Get("w1")
	require.True(t, ok)
	assert.Equal(t, 1, entry.RetryCount)
	assert.Equal(t, []string{"w1"}, desired.FailureSetSnapshot())
}

func TestEngineGivesUpAfterMaxRetries(t *testing.T) {
	agent := newAgentServer(t, true)
	defer agent.Close()
	host, port := hostPort(t, agent.URL)

	nodes := registry.NewNodeRegistry()
	_, err := nodes.Register(host, port)
	require.NoError(t, err)
	nodes.UpdateObserved(domain.NodeKey(host, port), domain.NodeOnline, 10, 10, 1024, 900, 1)

	workloads := registry.NewWorkloadRegistry()
	desired := statestore.NewDesiredStateTable()
	desired.Register("w1", "job.sh", "dead-node:1", 1)
	desired.MarkForRecovery("w1")

	engine := New(nodes, workloads, desired, time.Second, time.Second, 80.0)
	engine.RunOnce(context.Background())

	entry, ok := desired.Get("w1")
	require.True(t, ok)
	assert.Equal(t, domain.DesiredFailed, entry.Status)
	assert.Empty(t, desired.FailureSetSnapshot())
}

func TestEngineNoEligibleNodeLeavesEntryPending(t *testing.T) {
	nodes := registry.NewNodeRegistry()
	workloads := registry.NewWorkloadRegistry()
	desired := statestore.NewDesiredStateTable()
	desired.Register("w1", "job.sh", "dead-node:1", 3)
	desired.MarkForRecovery("w1")

	engine := New(nodes, workloads, desired, time.Second, time.Second, 80.0)
	engine.RunOnce(context.Background())

	entry, ok := desired.Get("w1")
	require.True(t, ok)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Equal(t, []string{"w1"}, desired.FailureSetSnapshot())
}

func TestEngineEmptyFailureSetIsNoop(t *testing.T) {
	nodes := registry.NewNodeRegistry()
	workloads := registry.NewWorkloadRegistry()
	desired := statestore.NewDesiredStateTable()

	engine := New(nodes, workloads, desired, time.Second, time.Second, 80.0)
	engine.RunOnce(context.Background())
	// No panic, no entries created.
	assert.Empty(t, desired.SnapshotForPersistence())
}

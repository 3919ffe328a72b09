package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/orcd/internal/domain"
	"github.com/dreamware/orcd/internal/health"
	"github.com/dreamware/orcd/internal/recovery"
	"github.com/dreamware/orcd/internal/registry"
	"github.com/dreamware/orcd/internal/statestore"
)

func hostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}

func newTestFacade(t *testing.T, agentURL string) (*Facade, *registry.NodeRegistry, *registry.WorkloadRegistry, *statestore.DesiredStateTable) {
	t.Helper()
	nodes := registry.NewNodeRegistry()
	workloads := registry.NewWorkloadRegistry()
	desired := statestore.NewDesiredStateTable()

	host, port := hostPort(t, agentURL)
	_, err := nodes.Register(host, port)
	require.NoError(t, err)
	nodes.UpdateObserved(domain.NodeKey(host, port), domain.NodeOnline, 10, 10, 1024, 900, 0)

	healthMonitor := health.New(nodes, desired, workloads, time.Hour, time.Second, 2)
	recoveryEngine := recovery.New(nodes, workloads, desired, time.Hour, time.Second, 80.0)
	facade := New(nodes, workloads, desired, healthMonitor, recoveryEngine, time.Second, 80.0, 3)
	return facade, nodes, workloads, desired
}

func TestFacadeSubmitSuccess(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"pid": 100})
	}))
	defer agent.Close()

	facade, _, workloads, desired := newTestFacade(t, agent.URL)

	w, err := facade.Submit(context.Background(), "job.sh")
	require.NoError(t, err)
	assert.Equal(t, domain.WorkloadRunning, w.Status)
	assert.Equal(t, 100, w.PID)

	stored, ok := workloads.Get(w.ID)
	require.True(t, ok)
	assert.Equal(t, domain.WorkloadRunning, stored.Status)

	entry, ok := desired.Get(w.ID)
	require.True(t, ok)
	assert.Equal(t, domain.DesiredRunning, entry.Status)
}

func TestFacadeSubmitMissingScriptPath(t *testing.T) {
	facade, _, _, _ := newTestFacade(t, "http://127.0.0.1:1")
	_, err := facade.Submit(context.Background(), "")
	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestFacadeSubmitNoAvailableNodes(t *testing.T) {
	nodes := registry.NewNodeRegistry()
	workloads := registry.NewWorkloadRegistry()
	desired := statestore.NewDesiredStateTable()
	healthMonitor := health.New(nodes, desired, workloads, time.Hour, time.Second, 2)
	recoveryEngine := recovery.New(nodes, workloads, desired, time.Hour, time.Second, 80.0)
	facade := New(nodes, workloads, desired, healthMonitor, recoveryEngine, time.Second, 80.0, 3)

	_, err := facade.Submit(context.Background(), "job.sh")
	assert.True(t, errors.Is(err, ErrNoAvailableNodes))
}

func TestFacadeSubmitStartFailureRemovesWorkload(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer agent.Close()

	facade, _, workloads, _ := newTestFacade(t, agent.URL)

	_, err := facade.Submit(context.Background(), "job.sh")
	require.True(t, errors.Is(err, ErrStartFailed))
	assert.Empty(t, workloads.List())
}

func TestFacadeStopSuccess(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]int{"pid": 100})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer agent.Close()

	facade, _, workloads, desired := newTestFacade(t, agent.URL)
	w, err := facade.Submit(context.Background(), "job.sh")
	require.NoError(t, err)

	require.NoError(t, facade.Stop(context.Background(), w.ID))

	stopped, ok := workloads.Get(w.ID)
	require.True(t, ok)
	assert.Equal(t, domain.WorkloadStopped, stopped.Status)

	_, ok = desired.Get(w.ID)
	assert.False(t, ok)
}

func TestFacadeStopNotFound(t *testing.T) {
	facade, _, _, _ := newTestFacade(t, "http://127.0.0.1:1")
	err := facade.Stop(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFacadeHealthSummaryReportsCountsAndDetail(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"pid": 100})
	}))
	defer agent.Close()

	facade, _, _, desired := newTestFacade(t, agent.URL)
	_, err := facade.Submit(context.Background(), "job.sh")
	require.NoError(t, err)

	summary := facade.HealthSummary()
	assert.Equal(t, 1, summary.TotalNodes)
	assert.Equal(t, 1, summary.OnlineNodes)
	assert.Equal(t, 0, summary.FailedWorkloads)
	assert.Equal(t, 1, summary.DesiredWorkloads)
	require.Len(t, summary.NodeDetails, 1)
	assert.Equal(t, domain.NodeOnline, summary.NodeDetails[0].Status)

	desired.MarkForRecovery(desired.FailureSetSnapshot()...)
	assert.Equal(t, 1, facade.HealthSummary().DesiredWorkloads)
}

func TestFacadeRecoveryMetricsReportsFailureSetAndHealthChecks(t *testing.T) {
	facade, _, _, desired := newTestFacade(t, "http://127.0.0.1:1")

	desired.Register("w1", "job.sh", "10.0.0.1:9000", 3)
	desired.MarkForRecovery("w1")

	m := facade.RecoveryMetrics()
	assert.Equal(t, []string{"w1"}, m.FailedWorkloads)
	assert.Equal(t, 1, m.DesiredStateCount)
	assert.NotNil(t, m.HealthChecks)
}

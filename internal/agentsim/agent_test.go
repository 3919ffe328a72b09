package agentsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentStatusIncreasesWithLoad(t *testing.T) {
	a := New(5.0, 10.0, 1024*1024*1024)

	cpu0, _, _, _, running0, err := a.Status()
	require.NoError(t, err)
	assert.Equal(t, 0, running0)
	assert.Equal(t, 5.0, cpu0)

	a.Start("job.sh")
	a.Start("job2.sh")

	cpu2, _, _, _, running2, err := a.Status()
	require.NoError(t, err)
	assert.Equal(t, 2, running2)
	assert.Equal(t, 25.0, cpu2)
}

func TestAgentStartAssignsIncrementingPIDs(t *testing.T) {
	a := New(0, 0, 1024)
	p1 := a.Start("a.sh")
	p2 := a.Start("b.sh")
	assert.Equal(t, p1+1, p2)
}

func TestAgentStopUnknownPIDErrors(t *testing.T) {
	a := New(0, 0, 1024)
	err := a.Stop(999)
	assert.Error(t, err)
}

func TestAgentStopRemovesProcess(t *testing.T) {
	a := New(0, 0, 1024)
	pid := a.Start("a.sh")
	require.NoError(t, a.Stop(pid))
	assert.Empty(t, a.Processes())
}

func TestAgentSetUnhealthyFailsStatus(t *testing.T) {
	a := New(0, 0, 1024)
	a.SetUnhealthy(true)
	_, _, _, _, _, err := a.Status()
	assert.Error(t, err)
}

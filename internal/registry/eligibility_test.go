package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/orcd/internal/domain"
)

func TestSelectEligiblePicksLowestCPU(t *testing.T) {
	nodes := []domain.Node{
		{Host: "a", Port: 1, Status: domain.NodeOnline, CPUUsage: 50},
		{Host: "b", Port: 1, Status: domain.NodeOnline, CPUUsage: 10},
		{Host: "c", Port: 1, Status: domain.NodeOnline, CPUUsage: 30},
	}

	best, found := SelectEligible(nodes, 80.0)
	assert.True(t, found)
	assert.Equal(t, "b", best.Host)
}

func TestSelectEligibleExcludesOfflineAndDegraded(t *testing.T) {
	nodes := []domain.Node{
		{Host: "a", Port: 1, Status: domain.NodeOffline, CPUUsage: 1},
		{Host: "b", Port: 1, Status: domain.NodeDegraded, CPUUsage: 2},
		{Host: "c", Port: 1, Status: domain.NodeOnline, CPUUsage: 40},
	}

	best, found := SelectEligible(nodes, 80.0)
	assert.True(t, found)
	assert.Equal(t, "c", best.Host)
}

func TestSelectEligibleExcludesAboveThreshold(t *testing.T) {
	nodes := []domain.Node{
		{Host: "a", Port: 1, Status: domain.NodeOnline, CPUUsage: 95},
	}

	_, found := SelectEligible(nodes, 80.0)
	assert.False(t, found)
}

func TestSelectEligibleNoneFound(t *testing.T) {
	_, found := SelectEligible(nil, 80.0)
	assert.False(t, found)
}

func TestSelectEligibleTieBreaksByPassedOrder(t *testing.T) {
	nodes := []domain.Node{
		{Host: "first", Port: 1, Status: domain.NodeOnline, CPUUsage: 20},
		{Host: "second", Port: 1, Status: domain.NodeOnline, CPUUsage: 20},
	}

	best, found := SelectEligible(nodes, 80.0)
	assert.True(t, found)
	assert.Equal(t, "first", best.Host)
}

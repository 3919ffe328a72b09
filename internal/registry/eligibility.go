package registry

import "github.com/dreamware/orcd/internal/domain"

// SelectEligible picks the best node to place or recover a workload on: the
// online node with the lowest cpu_usage among those below cpuThreshold.
// Ties are broken by the order nodes were passed in (the Node Registry's
// registration order), so the result is deterministic for a stable nodes
// snapshot.
//
// Both the Scheduler Façade (initial placement) and the Recovery Engine
// (workload re-placement) call this same function; the original
// implementation duplicated this rule in two places and the duplicate
// drifted out of sync, which is exactly what a single shared function
// prevents.
func SelectEligible(nodes []domain.Node, cpuThreshold float64) (domain.Node, bool) {
	var best domain.Node
	found := false

	for _, n := range nodes {
		if n.Status != domain.NodeOnline {
			continue
		}
		if n.CPUUsage >= cpuThreshold {
			continue
		}
		if !found || n.CPUUsage < best.CPUUsage {
			best = n
			found = true
		}
	}

	return best, found
}

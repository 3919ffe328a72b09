// Lock ordering.
//
// The Facade never locks anything directly — it only calls into
// registry.NodeRegistry, registry.WorkloadRegistry, and
// statestore.DesiredStateTable, each of which owns its own mutex and
// releases it before returning. Submit reads the node registry (the
// snapshot passed to SelectEligible), then calls the workload registry,
// then the desired-state table, one call at a time, so no Facade method
// ever holds two of these locks at once.
package scheduler

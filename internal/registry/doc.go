// See node.go, workload.go, and eligibility.go for the registry types
// themselves; this file only documents the package's concurrency posture.
//
// Lock ordering. The Node Registry and Workload Registry each own a single
// mutex and are never locked together by any function in this package —
// callers (the Scheduler Façade, the Recovery Engine) that use both call
// them one after the other, so neither registry's lock is held while the
// other's is taken (see internal/scheduler).
package registry

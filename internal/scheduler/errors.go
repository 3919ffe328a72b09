package scheduler

import "errors"

// Error kinds the Scheduler Façade returns. Callers (the HTTP layer, the
// CLI) switch on these with errors.Is rather than matching strings.
var (
	// ErrMissingField indicates a required request field was empty.
	ErrMissingField = errors.New("missing required field")

	// ErrNoAvailableNodes indicates no node was eligible (online and
	// under the CPU threshold) to place a workload on.
	ErrNoAvailableNodes = errors.New("no available nodes")

	// ErrStartFailed indicates the target node's /start call failed.
	ErrStartFailed = errors.New("start failed")

	// ErrStopFailed indicates the target node's /stop call failed.
	ErrStopFailed = errors.New("stop failed")

	// ErrNotFound indicates the requested workload id does not exist.
	ErrNotFound = errors.New("not found")
)

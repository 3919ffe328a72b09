// Retry semantics.
//
// retry_count increments on every recovery attempt, success or failure —
// this mirrors how the reference scheduler this engine replaces counted
// attempts, and is preserved deliberately rather than "corrected" to only
// count failures (see DESIGN.md). A workload whose retry_count has already
// reached max_retries before this cycle runs is not attempted again at all;
// it is exhausted in place via DesiredStateTable.Exhaust, which leaves
// retry_count untouched.
package recovery

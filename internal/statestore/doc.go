// Persistence model.
//
// The Desired-State Table lives in memory (desiredstate.go) and is the only
// copy consulted by the Recovery Engine and Scheduler Façade on the hot
// path. A Flusher (flusher.go) periodically asks the table for a snapshot
// and hands it to a Store (store.go), which writes it to a single file
// using the create-temp-then-rename idiom so a crash mid-write can never
// produce a half-written file on disk.
//
// On startup, cmd/scheduler calls Store.Load once and feeds the result into
// DesiredStateTable.Restore before starting the Health Monitor or Recovery
// Engine, so a restarted scheduler picks back up the same intent it had
// before the restart.
package statestore

// Health Monitor state machine.
//
//	unknown --(first successful probe)--> online
//	online  --(failure_threshold consecutive failures)--> offline
//	offline --(any successful probe)--> online
//
// A transition into offline fires exactly once per failure episode: going
// from online to offline also unions every running Desired-State entry
// targeting that node into the FailureSet, via DesiredStateTable's own
// locking, so the Health Monitor never has to reach into the Recovery
// Engine's internals. Probes for distinct nodes run concurrently within one
// tick (see CheckAll); a slow or unreachable node never delays the
// classification of its peers.
package health

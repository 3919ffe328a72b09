// agentsim exists for development and tests only — it is one implementation
// of the node agent contract documented in the scheduler's external
// interfaces, not the only possible one. A production worker node answering
// the same three routes with real process management is a drop-in
// replacement; nothing in internal/health, internal/recovery, or
// internal/scheduler knows or cares which kind of agent it's talking to.
package agentsim

// Package orchestrator holds the agent registry and dispatches agent batches
// per subject.
//
// Execution model:
//   - Agents register once at startup; afterwards only their enabled flag
//     changes, guarded so an admin toggle cannot race an in-flight dispatch
//   - A batch fetches telemetry, builds one shared execution context, filters
//     to enabled agents whose ShouldExecute accepts the context, orders them
//     by descending priority (registration order breaks ties) and runs them
//     sequentially so later agents can read earlier outcomes deterministically
//   - One agent's failure is isolated into a failed outcome; siblings and the
//     caller are never affected
//   - All outcomes append to a per-subject, append-only history
//
// Batches for different subjects run concurrently; batches for the same
// subject are serialized, and the interval scheduler skips a tick whose
// predecessor is still in flight rather than queueing it.
package orchestrator

// Package decision implements the pure, stateless rule engine of QoSMesh.
//
// A rule group scans a telemetry snapshot for independent evidence predicates
// and combines the confidence contributions of the predicates that fired.
// Each group declares its combination strategy explicitly:
//
//   - StrategyAdditive: fired weights are summed (evidence accumulates)
//   - StrategyMax: fired confidences compete and the maximum wins
//
// The two strategies produce deliberately different results for the same
// inputs; callers pick the group, never the strategy. A group's ShouldAct is
// always confidence >= threshold, and missing telemetry fields contribute
// nothing (absent evidence, not failure). Evaluation performs no I/O and has
// no side effects; emitted proposals are still pending and are driven to a
// terminal status by the invoking agent.
package decision

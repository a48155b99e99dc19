package core

import "time"

// ExecutionContext encapsulates the per-batch execution scope passed to each
// agent dispatched for a subject. It aggregates:
//
//   - The subject identifier the batch applies to
//   - The telemetry snapshot the whole batch evaluates
//   - Outcomes of agents that already ran earlier in the same batch
//
// A context is created per dispatch and discarded once the batch completes;
// its outcomes are copied into the per-subject history first. Agents within a
// batch run sequentially, so later agents can read earlier agents' outcomes
// through PriorResult without synchronization.
type ExecutionContext struct {
	SubjectID string
	Snapshot  *TelemetrySnapshot
	CreatedAt time.Time

	prior map[string]*AgentOutcome
}

// NewExecutionContext builds a fresh context for one subject's batch.
func NewExecutionContext(subjectID string, snapshot *TelemetrySnapshot) *ExecutionContext {
	return &ExecutionContext{
		SubjectID: subjectID,
		Snapshot:  snapshot,
		CreatedAt: time.Now(),
		prior:     make(map[string]*AgentOutcome),
	}
}

// PriorResult returns the outcome of an agent that executed earlier in the
// same batch. The boolean reports whether that agent has run yet.
func (ec *ExecutionContext) PriorResult(agentID string) (*AgentOutcome, bool) {
	o, ok := ec.prior[agentID]
	return o, ok
}

// RecordResult stores an agent's outcome so agents executed later in the
// batch can observe it. Called by the orchestrator after each agent returns.
func (ec *ExecutionContext) RecordResult(agentID string, outcome *AgentOutcome) {
	ec.prior[agentID] = outcome
}

// PriorResults returns a shallow copy of all outcomes recorded so far.
func (ec *ExecutionContext) PriorResults() map[string]*AgentOutcome {
	out := make(map[string]*AgentOutcome, len(ec.prior))
	for k, v := range ec.prior {
		out[k] = v
	}
	return out
}

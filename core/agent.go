package core

import (
	"context"
	"time"
)

// Agent defines the capability contract every policy unit in QoSMesh must
// implement.
//
// Agents are the primary processing units of the mesh. They receive a shared
// ExecutionContext for a subject's batch, decide whether the available
// telemetry is sufficient for them to act, and return a structured outcome.
//
// Implementations must:
//   - Return false from ShouldExecute when required telemetry fields are missing
//   - Never let an error or panic escape Execute; internal failures are caught
//     locally and converted into a failed AgentOutcome (the orchestrator's own
//     recovery is a second line of defense, not the primary one)
//   - Await every side-effecting collaborator call they initiate before
//     assembling the outcome, so no proposal is still pending when the
//     outcome is returned
type Agent interface {
	// Descriptor returns the agent's static identity and scheduling defaults.
	Descriptor() AgentDescriptor

	// ShouldExecute reports whether the agent can meaningfully act on the
	// telemetry carried by the execution context.
	ShouldExecute(ec *ExecutionContext) bool

	// Execute runs the agent's policy for the context's subject and returns
	// an immutable outcome. It must honor ctx cancellation on blocking calls.
	Execute(ctx context.Context, ec *ExecutionContext) *AgentOutcome
}

// AgentDescriptor carries the static identity and scheduling attributes of a
// registered agent. Descriptors are created once at registration; only the
// enabled flag (held by the registry, not the descriptor) changes afterwards.
type AgentDescriptor struct {
	ID          string        // Unique, stable identifier
	Name        string        // Human-readable display name
	Description string        // Detailed description of the agent's purpose
	Priority    int           // Higher priority agents run first within a batch
	Interval    time.Duration // Scheduling interval for periodic dispatch
}

package agent

import (
	"context"
	"time"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/logging"
)

// Latency bound for healthcare subjects; stricter than the general
// qos-requirement rule.
const healthcareLatencyBound = 50 * time.Millisecond

// HealthcareMonitoringAgent protects subjects carrying vital medical devices.
// It enforces a stricter latency bound than the general QoS policy and reads
// the qos-optimization agent's outcome from the batch context so it never
// files a duplicate adjustment in the same batch.
type HealthcareMonitoringAgent struct {
	BaseAgent
	orchestrator core.NetworkOrchestrator
	caller       *collab.Caller
}

// NewHealthcareMonitoringAgent constructs the agent with its default descriptor.
func NewHealthcareMonitoringAgent(orchestrator core.NetworkOrchestrator, caller *collab.Caller, logger logging.Logger) *HealthcareMonitoringAgent {
	return &HealthcareMonitoringAgent{
		BaseAgent: NewBaseAgent(core.AgentDescriptor{
			ID:          IDHealthcareMonitoring,
			Name:        "Healthcare Monitoring",
			Description: "Enforces strict latency bounds for vital-device subjects",
			Priority:    90,
			Interval:    30 * time.Second,
		}, logger),
		orchestrator: orchestrator,
		caller:       caller,
	}
}

// ShouldExecute requires link-quality telemetry.
func (a *HealthcareMonitoringAgent) ShouldExecute(ec *core.ExecutionContext) bool {
	return ec.Snapshot.HasConnectivity()
}

// Execute implements core.Agent.
func (a *HealthcareMonitoringAgent) Execute(ctx context.Context, ec *core.ExecutionContext) *core.AgentOutcome {
	return Guard(ctx, IDHealthcareMonitoring, func(ctx context.Context) (*core.AgentOutcome, error) {
		latency := ec.Snapshot.Connectivity.Latency
		b := core.NewOutcome(IDHealthcareMonitoring).
			Metric("latency_ms", float64(latency.Milliseconds()))

		if latency <= healthcareLatencyBound {
			return b.Success(1.0, "latency within healthcare bound").Build(), nil
		}

		// Normally this agent outranks qos-optimization, but custom
		// registrations can invert the order; skip when an adjustment from
		// this batch already succeeded.
		if prior, ok := ec.PriorResult(IDQoSOptimization); ok {
			for _, p := range prior.Proposals {
				if p.Type == core.ActionQoSAdjustment && p.Status == core.ProposalSuccess {
					return b.Success(0.9, "latency above healthcare bound; adjustment already requested this batch").
						Recommend("monitor vital-device session until adjustment takes effect").
						Build(), nil
				}
			}
		}

		p := core.NewActionProposal(core.ActionQoSAdjustment, "network-orchestrator",
			"latency above 50ms healthcare bound",
			map[string]any{"bandwidth_mbps": 30, "priority": "HIGH", "profile": string(core.QoSProfilePremium), "use_case": "healthcare"})

		var or *core.OrchestrationResult
		callErr := a.caller.Do(ctx, "network-orchestrator", func(ctx context.Context) error {
			var err error
			or, err = a.orchestrator.RequestQoSSession(ctx, ec.SubjectID, p.Parameters)
			return err
		})
		if callErr != nil {
			_ = p.Fail(callErr)
		} else {
			_ = p.Complete(map[string]any{"qos_session_id": or.QoSSessionID})
		}

		return b.Success(0.9, "healthcare latency bound breached; adjustment requested").
			Proposal(p).
			Build(), nil
	})
}

package agent

import (
	"context"
	"time"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/logging"
)

// Degradation bounds for high-mobility subjects. Handover churn shows up as
// jitter and packet loss before it shows up as raw latency.
const (
	transportJitterBound = 15.0
	transportLossBound   = 2.0
)

// TransportationAgent watches high-mobility subjects for handover-driven
// degradation and requests a QoS boost when the trend crosses its bounds.
type TransportationAgent struct {
	BaseAgent
	orchestrator core.NetworkOrchestrator
	caller       *collab.Caller
}

// NewTransportationAgent constructs the agent with its default descriptor.
func NewTransportationAgent(orchestrator core.NetworkOrchestrator, caller *collab.Caller, logger logging.Logger) *TransportationAgent {
	return &TransportationAgent{
		BaseAgent: NewBaseAgent(core.AgentDescriptor{
			ID:          IDTransportation,
			Name:        "Transportation",
			Description: "Compensates handover-driven degradation for mobile subjects",
			Priority:    40,
			Interval:    120 * time.Second,
		}, logger),
		orchestrator: orchestrator,
		caller:       caller,
	}
}

// ShouldExecute requires both a location fix and link-quality telemetry.
func (a *TransportationAgent) ShouldExecute(ec *core.ExecutionContext) bool {
	return ec.Snapshot.HasLocation() && ec.Snapshot.HasConnectivity()
}

// Execute implements core.Agent.
func (a *TransportationAgent) Execute(ctx context.Context, ec *core.ExecutionContext) *core.AgentOutcome {
	return Guard(ctx, IDTransportation, func(ctx context.Context) (*core.AgentOutcome, error) {
		conn := ec.Snapshot.Connectivity
		b := core.NewOutcome(IDTransportation).
			Metric("jitter_ms", conn.JitterMs).
			Metric("packet_loss_pct", conn.PacketLossPct)

		degraded := conn.JitterMs > transportJitterBound || conn.PacketLossPct > transportLossBound
		if !degraded {
			return b.Success(1.0, "handover quality stable").Build(), nil
		}

		p := core.NewActionProposal(core.ActionQoSAdjustment, "network-orchestrator",
			"handover-driven degradation detected",
			map[string]any{"bandwidth_mbps": 25, "priority": "MEDIUM", "profile": string(core.QoSProfileEnhanced), "use_case": "transportation"})

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

		return b.Success(0.8, "QoS boost requested for mobile subject").
			Proposal(p).
			Build(), nil
	})
}

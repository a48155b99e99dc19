package agent

import (
	"context"
	"time"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/decision"
	"github.com/hupe1980/qosmesh/logging"
)

// QoSOptimizationAgent evaluates link quality through the additive
// qos-requirement rule group and, when the evidence clears the threshold,
// requests a QoS session adjustment from the network orchestrator. The
// orchestrator call is awaited and its proposal driven to a terminal status
// before the outcome is built.
type QoSOptimizationAgent struct {
	BaseAgent
	engine       *decision.Engine
	orchestrator core.NetworkOrchestrator
	caller       *collab.Caller
}

// NewQoSOptimizationAgent constructs the agent with its default descriptor.
func NewQoSOptimizationAgent(engine *decision.Engine, orchestrator core.NetworkOrchestrator, caller *collab.Caller, logger logging.Logger) *QoSOptimizationAgent {
	return &QoSOptimizationAgent{
		BaseAgent: NewBaseAgent(core.AgentDescriptor{
			ID:          IDQoSOptimization,
			Name:        "QoS Optimization",
			Description: "Detects degraded link quality and requests network-quality upgrades",
			Priority:    80,
			Interval:    60 * time.Second,
		}, logger),
		engine:       engine,
		orchestrator: orchestrator,
		caller:       caller,
	}
}

// ShouldExecute requires link-quality or QoS assignment telemetry.
func (a *QoSOptimizationAgent) ShouldExecute(ec *core.ExecutionContext) bool {
	return ec.Snapshot.HasConnectivity() || ec.Snapshot.HasQoS()
}

// Execute implements core.Agent.
func (a *QoSOptimizationAgent) Execute(ctx context.Context, ec *core.ExecutionContext) *core.AgentOutcome {
	return Guard(ctx, IDQoSOptimization, func(ctx context.Context) (*core.AgentOutcome, error) {
		result, err := a.engine.Evaluate(decision.GroupQoSRequirement, ec.Snapshot)
		if err != nil {
			return nil, err
		}

		b := core.NewOutcome(IDQoSOptimization).
			Metric("confidence", result.Confidence)
		if ec.Snapshot.HasConnectivity() {
			b.Metric("signal_strength", ec.Snapshot.Connectivity.SignalStrength).
				Metric("latency_ms", float64(ec.Snapshot.Connectivity.Latency.Milliseconds())).
				Metric("throughput_mbps", ec.Snapshot.Connectivity.ThroughputMbps)
		}

		if !result.ShouldAct {
			return b.Success(result.Confidence, "link quality within bounds; no adjustment needed").Build(), nil
		}

		// Healthcare runs earlier in the batch and may already have filed an
		// adjustment for this subject; a second session request would fight it.
		if prior, ok := ec.PriorResult(IDHealthcareMonitoring); ok {
			for _, pp := range prior.Proposals {
				if pp.Type == core.ActionQoSAdjustment && pp.Status == core.ProposalSuccess {
					return b.Success(result.Confidence, "adjustment already requested by healthcare policy this batch").
						Recommend("re-evaluate link quality after the pending adjustment applies").
						Build(), nil
				}
			}
		}

		for _, p := range result.Proposals {
			var or *core.OrchestrationResult
			callErr := a.caller.Do(ctx, "network-orchestrator", func(ctx context.Context) error {
				var err error
				or, err = a.orchestrator.RequestQoSSession(ctx, ec.SubjectID, p.Parameters)
				return err
			})
			if callErr != nil {
				_ = p.Fail(callErr)
			} else {
				_ = p.Complete(map[string]any{
					"qos_session_id":   or.QoSSessionID,
					"orchestration_id": or.OrchestrationID,
				})
			}
			b.Proposal(p)
		}

		return b.Success(result.Confidence, "QoS adjustment requested: "+result.Reason).
			Meta("rule_group", decision.GroupQoSRequirement).
			Build(), nil
	})
}

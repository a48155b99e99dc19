package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/emergency"
	"github.com/hupe1980/qosmesh/logging"
)

// EmergencyConnectivityAgent drives the emergency lifecycle pipeline for every
// ACTIVE emergency of the batch's subject. It runs at the highest priority so
// guaranteed-connectivity progress is made before routine policies touch the
// same subject.
type EmergencyConnectivityAgent struct {
	BaseAgent
	manager  *emergency.Manager
	pipeline *emergency.Pipeline
}

// NewEmergencyConnectivityAgent constructs the agent with its default descriptor.
func NewEmergencyConnectivityAgent(manager *emergency.Manager, pipeline *emergency.Pipeline, logger logging.Logger) *EmergencyConnectivityAgent {
	return &EmergencyConnectivityAgent{
		BaseAgent: NewBaseAgent(core.AgentDescriptor{
			ID:          IDEmergencyConnectivity,
			Name:        "Emergency Connectivity",
			Description: "Advances active emergencies through the guaranteed-connectivity pipeline",
			Priority:    100,
			Interval:    15 * time.Second,
		}, logger),
		manager:  manager,
		pipeline: pipeline,
	}
}

// ShouldExecute requires at least one ACTIVE emergency for the subject.
func (a *EmergencyConnectivityAgent) ShouldExecute(ec *core.ExecutionContext) bool {
	return len(a.manager.ActiveForSubject(ec.SubjectID)) > 0
}

// Execute implements core.Agent. Each active emergency gets one pipeline
// tick; a failed tick is recorded and does not stop the remaining ones.
func (a *EmergencyConnectivityAgent) Execute(ctx context.Context, ec *core.ExecutionContext) *core.AgentOutcome {
	return Guard(ctx, IDEmergencyConnectivity, func(ctx context.Context) (*core.AgentOutcome, error) {
		active := a.manager.ActiveForSubject(ec.SubjectID)
		b := core.NewOutcome(IDEmergencyConnectivity).
			Metric("active_emergencies", float64(len(active)))

		var (
			failures      int
			bestConf      float64
			orchestrated  int
			monitoredOkay int
		)
		for _, em := range active {
			res, err := a.pipeline.Tick(ctx, em)
			if err != nil {
				failures++
				b.Meta(em.ID, fmt.Sprintf("tick failed: %v", err))
				a.Logger().Warn("emergency tick failed", "emergency_id", em.ID, "error", err)
				continue
			}
			b.Meta(em.ID, string(res.Phase))
			if res.Decision != nil && res.Decision.Confidence > bestConf {
				bestConf = res.Decision.Confidence
			}
			if res.Orchestration != nil {
				orchestrated++
			}
			if res.Metrics != nil && !res.Remediated {
				monitoredOkay++
			}
		}

		b.Metric("tick_failures", float64(failures)).
			Metric("orchestrated", float64(orchestrated)).
			Metric("monitored_healthy", float64(monitoredOkay))

		msg := fmt.Sprintf("ticked %d active emergencies", len(active))
		if failures == len(active) && len(active) > 0 {
			return b.Failure(fmt.Errorf("all %d emergency ticks failed", failures), msg).Build(), nil
		}
		if bestConf == 0 {
			// Monitoring-only ticks carry no decision; a clean pass is full confidence.
			bestConf = 1.0
		}
		return b.Success(core.ClampConfidence(bestConf), msg).Build(), nil
	})
}

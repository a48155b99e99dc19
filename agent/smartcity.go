package agent

import (
	"context"
	"time"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/logging"
)

// SmartCityAgent samples congestion around a subject's position and surfaces
// slice-rebalancing recommendations. It is advisory only: it never requests
// network changes itself.
type SmartCityAgent struct {
	BaseAgent
	assessor core.NetworkStateAssessor
	caller   *collab.Caller
}

// NewSmartCityAgent constructs the agent with its default descriptor.
func NewSmartCityAgent(assessor core.NetworkStateAssessor, caller *collab.Caller, logger logging.Logger) *SmartCityAgent {
	return &SmartCityAgent{
		BaseAgent: NewBaseAgent(core.AgentDescriptor{
			ID:          IDSmartCity,
			Name:        "Smart City",
			Description: "Aggregates congestion telemetry and recommends slice rebalancing",
			Priority:    30,
			Interval:    600 * time.Second,
		}, logger),
		assessor: assessor,
		caller:   caller,
	}
}

// ShouldExecute requires a location fix.
func (a *SmartCityAgent) ShouldExecute(ec *core.ExecutionContext) bool {
	return ec.Snapshot.HasLocation()
}

// Execute implements core.Agent.
func (a *SmartCityAgent) Execute(ctx context.Context, ec *core.ExecutionContext) *core.AgentOutcome {
	return Guard(ctx, IDSmartCity, func(ctx context.Context) (*core.AgentOutcome, error) {
		var ns *core.NetworkState
		err := a.caller.Do(ctx, "network-assessor", func(ctx context.Context) error {
			var callErr error
			ns, callErr = a.assessor.Assess(ctx, ec.Snapshot.Location.Latitude, ec.Snapshot.Location.Longitude)
			return callErr
		})
		if err != nil {
			return nil, err
		}

		b := core.NewOutcome(IDSmartCity).
			Meta("congestion", string(ns.Congestion)).
			Metric("available_slices", float64(len(ns.AvailableSlices)))

		switch ns.Congestion {
		case core.CongestionSevere:
			b.Recommend("severe congestion in cell area; rebalance slices and shed best-effort traffic")
		case core.CongestionHigh:
			b.Recommend("high congestion in cell area; consider slice rebalancing")
		}
		if ns.QoSCapacity == core.CapacityExhausted {
			b.Recommend("QoS capacity exhausted; new guaranteed sessions will be denied")
		}

		return b.Success(1.0, "congestion sampled").Build(), nil
	})
}

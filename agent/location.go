package agent

import (
	"context"
	"time"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/decision"
	"github.com/hupe1980/qosmesh/logging"
)

// LocationVerificationAgent judges whether a subject's reported position is
// trustworthy enough using the max-combination location-verification group
// and, when it is not, verifies the position out of band.
type LocationVerificationAgent struct {
	BaseAgent
	engine   *decision.Engine
	verifier core.LocationVerifier
	caller   *collab.Caller
}

// NewLocationVerificationAgent constructs the agent with its default descriptor.
func NewLocationVerificationAgent(engine *decision.Engine, verifier core.LocationVerifier, caller *collab.Caller, logger logging.Logger) *LocationVerificationAgent {
	return &LocationVerificationAgent{
		BaseAgent: NewBaseAgent(core.AgentDescriptor{
			ID:          IDLocationVerification,
			Name:        "Location Verification",
			Description: "Verifies stale or imprecise position fixes out of band",
			Priority:    60,
			Interval:    120 * time.Second,
		}, logger),
		engine:   engine,
		verifier: verifier,
		caller:   caller,
	}
}

// ShouldExecute requires a location fix.
func (a *LocationVerificationAgent) ShouldExecute(ec *core.ExecutionContext) bool {
	return ec.Snapshot.HasLocation()
}

// Execute implements core.Agent.
func (a *LocationVerificationAgent) Execute(ctx context.Context, ec *core.ExecutionContext) *core.AgentOutcome {
	return Guard(ctx, IDLocationVerification, func(ctx context.Context) (*core.AgentOutcome, error) {
		result, err := a.engine.Evaluate(decision.GroupLocationVerification, ec.Snapshot)
		if err != nil {
			return nil, err
		}

		b := core.NewOutcome(IDLocationVerification).
			Metric("confidence", result.Confidence).
			Metric("fix_age_seconds", ec.Snapshot.Location.Age.Seconds()).
			Metric("accuracy_m", ec.Snapshot.Location.Accuracy)

		if !result.ShouldAct {
			return b.Success(result.Confidence, "position fix fresh and precise enough").Build(), nil
		}

		for _, p := range result.Proposals {
			var verified bool
			callErr := a.caller.Do(ctx, "location-verifier", func(ctx context.Context) error {
				var err error
				verified, err = a.verifier.VerifyLocation(ctx, ec.SubjectID, ec.Snapshot.Location)
				return err
			})
			if callErr != nil {
				_ = p.Fail(callErr)
			} else {
				_ = p.Complete(map[string]any{"verified": verified})
				if !verified {
					b.Recommend("network position disagrees with reported fix; flag subject for review")
				}
			}
			b.Proposal(p)
		}

		return b.Success(result.Confidence, "location verification performed: "+result.Reason).
			Meta("rule_group", decision.GroupLocationVerification).
			Build(), nil
	})
}

package agent

import (
	"context"
	"time"

	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/emergency"
	"github.com/hupe1980/qosmesh/logging"
)

// PublicSafetyAgent turns inline distress signals (SOS presses, geofence
// breaches) into tracked emergency contexts. It runs near the top of the
// batch so detection happens before routine policies evaluate the same
// snapshot. A subject with an emergency already active is not re-raised.
type PublicSafetyAgent struct {
	BaseAgent
	manager *emergency.Manager
}

// NewPublicSafetyAgent constructs the agent with its default descriptor.
func NewPublicSafetyAgent(manager *emergency.Manager, logger logging.Logger) *PublicSafetyAgent {
	return &PublicSafetyAgent{
		BaseAgent: NewBaseAgent(core.AgentDescriptor{
			ID:          IDPublicSafety,
			Name:        "Public Safety",
			Description: "Raises emergencies from inline distress signals",
			Priority:    95,
			Interval:    30 * time.Second,
		}, logger),
		manager: manager,
	}
}

// ShouldExecute requires an inline emergency signal.
func (a *PublicSafetyAgent) ShouldExecute(ec *core.ExecutionContext) bool {
	return ec.Snapshot.HasSignal()
}

// Execute implements core.Agent.
func (a *PublicSafetyAgent) Execute(ctx context.Context, ec *core.ExecutionContext) *core.AgentOutcome {
	return Guard(ctx, IDPublicSafety, func(_ context.Context) (*core.AgentOutcome, error) {
		sig := ec.Snapshot.Signal
		b := core.NewOutcome(IDPublicSafety).Meta("signal_type", string(sig.Type))

		if active := a.manager.ActiveForSubject(ec.SubjectID); len(active) > 0 {
			return b.Success(1.0, "distress signal observed; emergency already active").
				Meta("emergency_id", active[0].ID).
				Build(), nil
		}

		p := core.NewActionProposal(core.ActionEmergencyEscalation, "emergency-manager",
			"inline distress signal received", map[string]any{
				"type":     string(sig.Type),
				"severity": string(sig.Severity),
			})

		em, err := a.manager.Detect(ec.SubjectID, ec.Snapshot.DeviceID, sig.Type, sig.Severity, sig.Role, ec.Snapshot.Location)
		if err != nil {
			_ = p.Fail(err)
			return b.Failure(err, "emergency detection failed").Proposal(p).Build(), nil
		}
		_ = p.Complete(map[string]any{"emergency_id": em.ID})

		a.Logger().Info("emergency raised from distress signal", "subject_id", ec.SubjectID, "emergency_id", em.ID)
		return b.Success(1.0, "emergency raised from distress signal").
			Proposal(p).
			Meta("emergency_id", em.ID).
			Build(), nil
	})
}

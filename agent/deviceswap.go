package agent

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/decision"
	"github.com/hupe1980/qosmesh/logging"
)

// DeviceSwapAgent watches for device identifier changes and device-level
// health problems. A changed IMEI triggers a swap validation through the
// trust validator; health problems surface the device-health rule group's
// status-check proposal. The last seen identifier per subject is the only
// state the agent keeps.
type DeviceSwapAgent struct {
	BaseAgent
	engine *decision.Engine
	trust  core.TrustValidator
	caller *collab.Caller

	mu       sync.Mutex
	lastIMEI map[string]string
}

// NewDeviceSwapAgent constructs the agent with its default descriptor.
func NewDeviceSwapAgent(engine *decision.Engine, trust core.TrustValidator, caller *collab.Caller, logger logging.Logger) *DeviceSwapAgent {
	return &DeviceSwapAgent{
		BaseAgent: NewBaseAgent(core.AgentDescriptor{
			ID:          IDDeviceSwap,
			Name:        "Device Swap Detection",
			Description: "Detects device identifier changes and validates swaps",
			Priority:    50,
			Interval:    300 * time.Second,
		}, logger),
		engine:   engine,
		trust:    trust,
		caller:   caller,
		lastIMEI: make(map[string]string),
	}
}

// ShouldExecute requires device status telemetry.
func (a *DeviceSwapAgent) ShouldExecute(ec *core.ExecutionContext) bool {
	return ec.Snapshot.HasDevice()
}

// Execute implements core.Agent.
func (a *DeviceSwapAgent) Execute(ctx context.Context, ec *core.ExecutionContext) *core.AgentOutcome {
	return Guard(ctx, IDDeviceSwap, func(ctx context.Context) (*core.AgentOutcome, error) {
		b := core.NewOutcome(IDDeviceSwap)

		swapped, previous := a.observeIMEI(ec.SubjectID, ec.Snapshot.Device.IMEI)
		if swapped {
			p := core.NewActionProposal(core.ActionDeviceSwapValidation, "trust-validator",
				"device identifier changed since last observation",
				map[string]any{"previous_imei": previous, "current_imei": ec.Snapshot.Device.IMEI})

			var tv *core.TrustValidation
			callErr := a.caller.Do(ctx, "trust-validator", func(ctx context.Context) error {
				var err error
				tv, err = a.trust.Validate(ctx, ec.SubjectID, ec.Snapshot.Device.IMEI, core.RoleOther)
				return err
			})
			if callErr != nil {
				_ = p.Fail(callErr)
			} else {
				_ = p.Complete(map[string]any{"trust_status": string(tv.Status), "trust_score": tv.TrustScore})
				if tv.Status != core.TrustTrusted {
					b.Recommend("swapped device failed trust validation; suspend line pending review")
				}
			}
			b.Proposal(p)
		}

		result, err := a.engine.Evaluate(decision.GroupDeviceHealth, ec.Snapshot)
		if err != nil {
			return nil, err
		}
		b.Metric("health_confidence", result.Confidence)
		if result.ShouldAct {
			// Status-check proposals carry no side effect of their own; they
			// are completed here and handed to operator tooling via history.
			for _, p := range result.Proposals {
				_ = p.Complete(map[string]any{"flagged": true})
				b.Proposal(p)
			}
			b.Recommend("device health degraded: " + result.Reason)
		}

		msg := "device identity stable"
		if swapped {
			msg = "device swap observed and validated"
		}
		return b.Success(result.Confidence, msg).Build(), nil
	})
}

// observeIMEI records the current identifier and reports whether it changed
// from the previously seen one.
func (a *DeviceSwapAgent) observeIMEI(subjectID, imei string) (bool, string) {
	if imei == "" {
		return false, ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	previous, seen := a.lastIMEI[subjectID]
	a.lastIMEI[subjectID] = imei
	return seen && previous != imei, previous
}

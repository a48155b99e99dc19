package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/logging"
)

// Stable identifiers of the built-in agents.
const (
	IDQoSOptimization       = "qos-optimization"
	IDLocationVerification  = "location-verification"
	IDDeviceSwap            = "device-swap"
	IDHealthcareMonitoring  = "healthcare-monitoring"
	IDPublicSafety          = "public-safety"
	IDSmartCity             = "smart-city"
	IDTransportation        = "transportation"
	IDEmergencyConnectivity = "emergency-connectivity"
)

// BaseAgent bundles the immutable descriptor and logger shared by the
// concrete agents. Embed it and supply ShouldExecute plus Execute to satisfy
// core.Agent.
type BaseAgent struct {
	desc   core.AgentDescriptor
	logger logging.Logger
}

// NewBaseAgent constructs a BaseAgent for the given descriptor. A nil logger
// is replaced with a NoOpLogger.
func NewBaseAgent(desc core.AgentDescriptor, logger logging.Logger) BaseAgent {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if desc.Description == "" {
		desc.Description = fmt.Sprintf("Agent %s", desc.Name)
	}
	return BaseAgent{desc: desc, logger: logger}
}

// Descriptor returns the agent's static identity and scheduling defaults.
func (b *BaseAgent) Descriptor() core.AgentDescriptor { return b.desc }

// Logger returns the agent's logger.
func (b *BaseAgent) Logger() logging.Logger { return b.logger }

// Guard runs fn isolating every failure mode at the agent boundary: an error
// return or a panic becomes a failed outcome instead of escaping to the
// orchestrator. The orchestrator keeps its own recovery as a second line of
// defense, but agents are expected to never need it.
func Guard(ctx context.Context, agentID string, fn func(ctx context.Context) (*core.AgentOutcome, error)) (out *core.AgentOutcome) {
	defer func() {
		if r := recover(); r != nil {
			err := &core.InternalAgentError{AgentID: agentID, Err: fmt.Errorf("panic: %v", r)}
			out = core.FailedOutcome(agentID, err, "agent execution panicked")
		}
	}()

	out, err := fn(ctx)
	if err != nil {
		return core.FailedOutcome(agentID, &core.InternalAgentError{AgentID: agentID, Err: err}, "agent execution failed")
	}
	if out == nil {
		return core.FailedOutcome(agentID, &core.InternalAgentError{AgentID: agentID, Err: fmt.Errorf("nil outcome")}, "agent returned no outcome")
	}
	return out
}

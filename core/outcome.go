package core

import (
	"fmt"
	"time"
)

// ActionType categorizes the kind of change an agent proposes.
type ActionType string

// Action types emitted by the built-in rule groups and agents.
const (
	ActionQoSAdjustment        ActionType = "QOS_ADJUSTMENT"
	ActionLocationVerification ActionType = "LOCATION_VERIFICATION"
	ActionDeviceStatusCheck    ActionType = "DEVICE_STATUS_CHECK"
	ActionDeviceSwapValidation ActionType = "DEVICE_SWAP_VALIDATION"
	ActionSliceRebalance       ActionType = "SLICE_REBALANCE"
	ActionEmergencyEscalation  ActionType = "EMERGENCY_ESCALATION"
)

// ProposalStatus tracks the lifecycle of a proposed action. A proposal starts
// PENDING and transitions exactly once to a terminal status.
type ProposalStatus string

// Proposal lifecycle statuses.
const (
	ProposalPending ProposalStatus = "PENDING"
	ProposalSuccess ProposalStatus = "SUCCESS"
	ProposalFailed  ProposalStatus = "FAILED"
)

// ActionProposal describes one concrete change an agent wants applied through
// a collaborator. Proposals are created PENDING and must reach a terminal
// status before the owning outcome is returned; a returned outcome never
// carries a proposal that a detached callback could still mutate.
type ActionProposal struct {
	Type       ActionType
	Target     string // Collaborator expected to apply the action
	Reason     string // Human-readable evidence summary
	Status     ProposalStatus
	Parameters map[string]any
	Result     map[string]any
	Error      string
}

// NewActionProposal creates a pending proposal for the given action type.
func NewActionProposal(t ActionType, target, reason string, params map[string]any) *ActionProposal {
	if params == nil {
		params = map[string]any{}
	}
	return &ActionProposal{Type: t, Target: target, Reason: reason, Status: ProposalPending, Parameters: params}
}

// Complete transitions the proposal to SUCCESS with an optional result
// payload. It returns an error if the proposal already reached a terminal
// status.
func (p *ActionProposal) Complete(result map[string]any) error {
	if p.Status != ProposalPending {
		return fmt.Errorf("proposal already %s", p.Status)
	}
	p.Status = ProposalSuccess
	p.Result = result
	return nil
}

// Fail transitions the proposal to FAILED recording the error text. It
// returns an error if the proposal already reached a terminal status.
func (p *ActionProposal) Fail(err error) error {
	if p.Status != ProposalPending {
		return fmt.Errorf("proposal already %s", p.Status)
	}
	p.Status = ProposalFailed
	if err != nil {
		p.Error = err.Error()
	}
	return nil
}

// Terminal reports whether the proposal reached SUCCESS or FAILED.
func (p *ActionProposal) Terminal() bool { return p.Status != ProposalPending }

// AgentOutcome is the immutable result of one agent execution. Construct it
// through OutcomeBuilder; once built it must not be mutated.
type AgentOutcome struct {
	AgentID         string
	Success         bool
	Confidence      float64 // Always within [0,1]
	Message         string
	Proposals       []*ActionProposal
	Recommendations []string
	Metrics         map[string]float64
	Metadata        map[string]any
	Error           string
	ProducedAt      time.Time
}

// OutcomeBuilder assembles an AgentOutcome step by step. The zero value is
// not usable; create one via NewOutcome.
type OutcomeBuilder struct {
	o AgentOutcome
}

// NewOutcome starts building an outcome for the given agent.
func NewOutcome(agentID string) *OutcomeBuilder {
	return &OutcomeBuilder{o: AgentOutcome{
		AgentID:  agentID,
		Metrics:  map[string]float64{},
		Metadata: map[string]any{},
	}}
}

// Success marks the outcome successful with the given confidence and message.
func (b *OutcomeBuilder) Success(confidence float64, msg string) *OutcomeBuilder {
	b.o.Success = true
	b.o.Confidence = ClampConfidence(confidence)
	b.o.Message = msg
	return b
}

// Failure marks the outcome failed recording the error.
func (b *OutcomeBuilder) Failure(err error, msg string) *OutcomeBuilder {
	b.o.Success = false
	b.o.Message = msg
	if err != nil {
		b.o.Error = err.Error()
	}
	return b
}

// Proposal appends an action proposal. The proposal should already be in a
// terminal status when the outcome is built.
func (b *OutcomeBuilder) Proposal(p *ActionProposal) *OutcomeBuilder {
	b.o.Proposals = append(b.o.Proposals, p)
	return b
}

// Recommend appends a human-readable recommendation string.
func (b *OutcomeBuilder) Recommend(r string) *OutcomeBuilder {
	b.o.Recommendations = append(b.o.Recommendations, r)
	return b
}

// Metric records a named numeric measurement.
func (b *OutcomeBuilder) Metric(name string, v float64) *OutcomeBuilder {
	b.o.Metrics[name] = v
	return b
}

// Meta records an arbitrary metadata entry.
func (b *OutcomeBuilder) Meta(key string, v any) *OutcomeBuilder {
	b.o.Metadata[key] = v
	return b
}

// Build finalizes and returns the outcome, stamping the production time.
func (b *OutcomeBuilder) Build() *AgentOutcome {
	b.o.ProducedAt = time.Now()
	out := b.o
	return &out
}

// FailedOutcome is a convenience constructor for the error-isolation paths in
// agents and the orchestrator.
func FailedOutcome(agentID string, err error, msg string) *AgentOutcome {
	return NewOutcome(agentID).Failure(err, msg).Build()
}

// DecisionResult is the pure output of a rule-group evaluation. ShouldAct is
// always Confidence >= the group threshold; the field is carried so callers
// never re-derive the comparison with a different threshold.
type DecisionResult struct {
	ShouldAct  bool
	Confidence float64
	Reason     string
	Proposals  []*ActionProposal
}

package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionProposal_SingleTerminalTransition(t *testing.T) {
	p := NewActionProposal(ActionQoSAdjustment, "network-orchestrator", "degraded link", nil)
	assert.Equal(t, ProposalPending, p.Status)
	assert.False(t, p.Terminal())

	require.NoError(t, p.Complete(map[string]any{"session": "s-1"}))
	assert.Equal(t, ProposalSuccess, p.Status)
	assert.True(t, p.Terminal())

	assert.Error(t, p.Complete(nil), "a terminal proposal must not transition again")
	assert.Error(t, p.Fail(errors.New("late")))
	assert.Equal(t, ProposalSuccess, p.Status)
}

func TestActionProposal_FailRecordsError(t *testing.T) {
	p := NewActionProposal(ActionDeviceStatusCheck, "operator", "battery low", nil)
	require.NoError(t, p.Fail(errors.New("device unreachable")))

	assert.Equal(t, ProposalFailed, p.Status)
	assert.Equal(t, "device unreachable", p.Error)
	assert.Error(t, p.Complete(nil))
}

func TestOutcomeBuilder(t *testing.T) {
	p := NewActionProposal(ActionQoSAdjustment, "network-orchestrator", "r", nil)
	require.NoError(t, p.Complete(nil))

	o := NewOutcome("agent-1").
		Success(1.7, "done"). // out-of-range confidence is clamped
		Proposal(p).
		Recommend("check again later").
		Metric("latency_ms", 42).
		Meta("rule_group", "qos-requirement").
		Build()

	assert.Equal(t, "agent-1", o.AgentID)
	assert.True(t, o.Success)
	assert.Equal(t, 1.0, o.Confidence)
	assert.Len(t, o.Proposals, 1)
	assert.Equal(t, []string{"check again later"}, o.Recommendations)
	assert.Equal(t, 42.0, o.Metrics["latency_ms"])
	assert.False(t, o.ProducedAt.IsZero())
}

func TestFailedOutcome(t *testing.T) {
	o := FailedOutcome("agent-1", errors.New("boom"), "it broke")
	assert.False(t, o.Success)
	assert.Equal(t, "boom", o.Error)
	assert.Equal(t, "it broke", o.Message)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.3))
	assert.Equal(t, 0.5, ClampConfidence(0.5))
	assert.Equal(t, 1.0, ClampConfidence(1.2))
}

func TestExecutionContext_PriorResults(t *testing.T) {
	ec := NewExecutionContext("subj-1", &TelemetrySnapshot{SubjectID: "subj-1"})

	_, ok := ec.PriorResult("a")
	assert.False(t, ok)

	out := NewOutcome("a").Success(1.0, "ok").Build()
	ec.RecordResult("a", out)

	got, ok := ec.PriorResult("a")
	require.True(t, ok)
	assert.Same(t, out, got)

	all := ec.PriorResults()
	assert.Len(t, all, 1)
	delete(all, "a") // copy, not the backing map
	_, ok = ec.PriorResult("a")
	assert.True(t, ok)
}

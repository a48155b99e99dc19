package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qosmesh/core"
)

func TestGuard_ErrorBecomesFailedOutcome(t *testing.T) {
	out := Guard(context.Background(), "test-agent", func(context.Context) (*core.AgentOutcome, error) {
		return nil, errors.New("collaborator exploded")
	})

	require.NotNil(t, out)
	assert.False(t, out.Success)
	assert.Equal(t, "test-agent", out.AgentID)
	assert.Contains(t, out.Error, "collaborator exploded")
}

func TestGuard_PanicBecomesFailedOutcome(t *testing.T) {
	out := Guard(context.Background(), "test-agent", func(context.Context) (*core.AgentOutcome, error) {
		panic("nil map write")
	})

	require.NotNil(t, out)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "panic")
	assert.Contains(t, out.Error, "nil map write")
}

func TestGuard_NilOutcomeBecomesFailedOutcome(t *testing.T) {
	out := Guard(context.Background(), "test-agent", func(context.Context) (*core.AgentOutcome, error) {
		return nil, nil
	})

	require.NotNil(t, out)
	assert.False(t, out.Success)
}

func TestGuard_PassesThroughSuccess(t *testing.T) {
	want := core.NewOutcome("test-agent").Success(0.9, "fine").Build()
	out := Guard(context.Background(), "test-agent", func(context.Context) (*core.AgentOutcome, error) {
		return want, nil
	})

	assert.Same(t, want, out)
}

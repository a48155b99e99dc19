package collab

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qosmesh/config"
	"github.com/hupe1980/qosmesh/core"
)

func newTestCaller(attempts int) *Caller {
	return NewCaller(config.RetryConfig{
		Attempts: attempts,
		Delay:    time.Millisecond,
		Timeout:  time.Second,
	}, nil)
}

func TestCaller_TransientFailureExhaustsAttempts(t *testing.T) {
	c := newTestCaller(3)

	calls := 0
	err := c.Do(context.Background(), "network-orchestrator", func(context.Context) error {
		calls++
		return core.NewTransientError("network-orchestrator", 503, errors.New("overloaded"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, core.IsRetryable(err))
}

func TestCaller_PermanentFailureNotRetried(t *testing.T) {
	c := newTestCaller(3)

	calls := 0
	err := c.Do(context.Background(), "trust-validator", func(context.Context) error {
		calls++
		return core.NewPermanentError("trust-validator", 400, errors.New("bad request"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "a 4xx must surface after the first attempt")
}

func TestCaller_SucceedsAfterTransientFailures(t *testing.T) {
	c := newTestCaller(3)

	calls := 0
	err := c.Do(context.Background(), "network-orchestrator", func(context.Context) error {
		calls++
		if calls < 3 {
			return core.ClassifyStatus("network-orchestrator", 502, errors.New("bad gateway"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestCaller_ImmediateSuccess(t *testing.T) {
	c := newTestCaller(3)

	calls := 0
	err := c.Do(context.Background(), "telemetry", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCaller_AttemptTimeoutIsRetried(t *testing.T) {
	c := NewCaller(config.RetryConfig{Attempts: 3, Delay: time.Millisecond, Timeout: 20 * time.Millisecond}, nil)

	calls := 0
	err := c.Do(context.Background(), "network-orchestrator", func(ctx context.Context) error {
		calls++
		<-ctx.Done() // collaborator never answers within the attempt timeout
		return ctx.Err()
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "a per-attempt timeout must be retried like a 5xx")
	assert.True(t, core.IsRetryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCaller_SucceedsAfterAttemptTimeout(t *testing.T) {
	c := NewCaller(config.RetryConfig{Attempts: 3, Delay: time.Millisecond, Timeout: 20 * time.Millisecond}, nil)

	calls := 0
	err := c.Do(context.Background(), "network-orchestrator", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCaller_CanceledContextStopsRetrying(t *testing.T) {
	c := NewCaller(config.RetryConfig{Attempts: 5, Delay: time.Minute, Timeout: time.Second}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := c.Do(ctx, "network-orchestrator", func(context.Context) error {
		calls++
		return core.NewTransientError("network-orchestrator", 503, errors.New("overloaded"))
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation during the backoff wait must not spawn another attempt")
}

func TestCaller_ClassifyStatus(t *testing.T) {
	assert.True(t, core.IsRetryable(core.ClassifyStatus("x", 500, errors.New("e"))))
	assert.True(t, core.IsRetryable(core.ClassifyStatus("x", 503, errors.New("e"))))
	assert.False(t, core.IsRetryable(core.ClassifyStatus("x", 404, errors.New("e"))))
	assert.False(t, core.IsRetryable(core.ClassifyStatus("x", 422, errors.New("e"))))
	assert.False(t, core.IsRetryable(errors.New("plain")))
}

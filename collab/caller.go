package collab

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/qosmesh/config"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/logging"
)

// Caller applies the mesh-wide outbound call policy: every attempt runs under
// a bounded timeout, and transient failures are retried a fixed number of
// times with a fixed delay. Permanent failures (4xx, validation, decoding)
// are never retried and surface after the first attempt.
type Caller struct {
	attempts int
	delay    time.Duration
	timeout  time.Duration
	logger   logging.Logger
}

// NewCaller builds a Caller from the retry configuration. A nil logger is
// replaced with a NoOpLogger.
func NewCaller(cfg config.RetryConfig, logger logging.Logger) *Caller {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Caller{attempts: cfg.Attempts, delay: cfg.Delay, timeout: cfg.Timeout, logger: logger}
}

// Do invokes fn under the call policy. fn receives a context bounded by the
// per-attempt timeout. The returned error is the last attempt's error; the
// attempt count used is logged per call.
func (c *Caller) Do(ctx context.Context, collaborator string, fn func(ctx context.Context) error) error {
	start := time.Now()
	var lastErr error
	attempts := 0
	for attempts < c.attempts {
		attempts++

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		lastErr = fn(attemptCtx)
		cancel()

		if lastErr == nil {
			c.logger.Debug("collaborator call succeeded", "collaborator", collaborator, "attempts", attempts, "duration", time.Since(start))
			return nil
		}
		// A per-attempt timeout is a transient failure like a 5xx, as long as
		// the caller's own context is still live.
		if errors.Is(lastErr, context.DeadlineExceeded) && ctx.Err() == nil {
			lastErr = core.NewTransientError(collaborator, 0, lastErr)
		}
		if !core.IsRetryable(lastErr) {
			break
		}
		if attempts == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.delay):
		}
	}
	c.logger.Warn("collaborator call failed", "collaborator", collaborator, "attempts", attempts, "error", lastErr)
	return lastErr
}

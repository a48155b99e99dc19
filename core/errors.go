package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookup and lifecycle operations.
var (
	// ErrNotFound indicates a lookup by id matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrAgentNotFound indicates an unknown agent id was referenced.
	ErrAgentNotFound = errors.New("agent not found")
)

// ValidationError reports malformed or missing input. It is never retried and
// surfaces immediately to the caller.
type ValidationError struct {
	Field  string
	Detail string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Detail)
}

// NewValidationError constructs a ValidationError for a field.
func NewValidationError(field, detail string) *ValidationError {
	return &ValidationError{Field: field, Detail: detail}
}

// UpstreamError reports a collaborator call failure. Transient failures
// (timeouts, 5xx, service-unavailable) are eligible for retry; permanent
// failures (4xx, decoding) surface immediately.
type UpstreamError struct {
	Collaborator string
	StatusCode   int // 0 when no HTTP status applies (e.g. timeout)
	Transient    bool
	Err          error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream failure from %s (status %d): %v", kind, e.Collaborator, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s upstream failure from %s: %v", kind, e.Collaborator, e.Err)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *UpstreamError) Unwrap() error { return e.Err }

// NewTransientError wraps a retryable upstream failure.
func NewTransientError(collaborator string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{Collaborator: collaborator, StatusCode: statusCode, Transient: true, Err: err}
}

// NewPermanentError wraps a non-retryable upstream failure.
func NewPermanentError(collaborator string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{Collaborator: collaborator, StatusCode: statusCode, Transient: false, Err: err}
}

// ClassifyStatus wraps an upstream failure choosing transient vs permanent by
// HTTP-style status code: 5xx is transient, everything else permanent.
func ClassifyStatus(collaborator string, statusCode int, err error) *UpstreamError {
	if statusCode >= 500 {
		return NewTransientError(collaborator, statusCode, err)
	}
	return NewPermanentError(collaborator, statusCode, err)
}

// IsRetryable reports whether err represents a transient upstream failure.
// Validation, permanent upstream and internal errors are never retryable.
func IsRetryable(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Transient
	}
	return false
}

// InternalAgentError reports a failure caught at an agent's execution
// boundary. It is recorded on the failed outcome; the batch continues.
type InternalAgentError struct {
	AgentID string
	Err     error
}

// Error implements the error interface.
func (e *InternalAgentError) Error() string {
	return fmt.Sprintf("agent %s failed internally: %v", e.AgentID, e.Err)
}

// Unwrap exposes the wrapped cause.
func (e *InternalAgentError) Unwrap() error { return e.Err }

// PipelineStateError reports an invalid emergency lifecycle transition, such
// as resolving an already-terminal context.
type PipelineStateError struct {
	EmergencyID string
	From        EmergencyStatus
	Attempted   string
}

// Error implements the error interface.
func (e *PipelineStateError) Error() string {
	return fmt.Sprintf("emergency %s: cannot %s from status %s", e.EmergencyID, e.Attempted, e.From)
}

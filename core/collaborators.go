package core

import "context"

// TrustStatus is the result classification of a trust validation.
type TrustStatus string

// Trust validation results.
const (
	TrustTrusted   TrustStatus = "TRUSTED"
	TrustUntrusted TrustStatus = "UNTRUSTED"
	TrustUnknown   TrustStatus = "UNKNOWN"
)

// TrustValidation is a point-in-time trust assessment for a subject/device
// pair acting in an expected responder role.
type TrustValidation struct {
	Status     TrustStatus
	TrustScore float64 // [0,1]
	Detail     string
}

// CongestionLevel describes current load on the serving network segment.
type CongestionLevel string

// Congestion levels reported by network assessment.
const (
	CongestionLow      CongestionLevel = "LOW"
	CongestionModerate CongestionLevel = "MODERATE"
	CongestionHigh     CongestionLevel = "HIGH"
	CongestionSevere   CongestionLevel = "SEVERE"
)

// CapacityStatus reports whether guaranteed QoS capacity can be allocated.
type CapacityStatus string

// QoS capacity statuses.
const (
	CapacityAvailable   CapacityStatus = "AVAILABLE"
	CapacityConstrained CapacityStatus = "CONSTRAINED"
	CapacityExhausted   CapacityStatus = "EXHAUSTED"
)

// NetworkState is a point-in-time assessment of the network around a location.
type NetworkState struct {
	Congestion      CongestionLevel
	QoSCapacity     CapacityStatus
	AvailableSlices []string
}

// OrchestrationStatus is the result classification of a guaranteed
// connectivity request.
type OrchestrationStatus string

// Orchestration result statuses.
const (
	OrchestrationSuccess    OrchestrationStatus = "SUCCESS"
	OrchestrationFailed     OrchestrationStatus = "FAILED"
	OrchestrationInProgress OrchestrationStatus = "IN_PROGRESS"
	OrchestrationRolledBack OrchestrationStatus = "ROLLED_BACK"
)

// OrchestrationResult reports the outcome of a guaranteed connectivity
// request or rollback.
type OrchestrationResult struct {
	Status          OrchestrationStatus
	OrchestrationID string
	QoSSessionID    string
	SliceID         string
	Detail          string
}

// MonitoringMetrics is one sample of live connection quality for a monitored
// emergency session.
type MonitoringMetrics struct {
	LatencyMs      float64
	JitterMs       float64
	PacketLossPct  float64
	ThroughputMbps float64
	HealthScore    float64 // [0,1]; derived by the feed
	Remediated     bool    // Whether the feed already applied a local fix
}

// TelemetryProvider supplies point-in-time telemetry snapshots for subjects.
// A nil snapshot with a nil error means the provider had no data; callers
// treat that the same as an error: no agents run for the subject.
type TelemetryProvider interface {
	Collect(ctx context.Context, subjectID string) (*TelemetrySnapshot, error)
}

// LocationVerifier confirms a subject's reported position out of band.
type LocationVerifier interface {
	VerifyLocation(ctx context.Context, subjectID string, loc *Location) (bool, error)
}

// TrustValidator validates that a subject/device pair may act in a role.
type TrustValidator interface {
	Validate(ctx context.Context, subjectID, deviceID string, role ResponderRole) (*TrustValidation, error)
}

// NetworkStateAssessor queries congestion, capacity and slice availability
// around a geographic position.
type NetworkStateAssessor interface {
	Assess(ctx context.Context, lat, lon float64) (*NetworkState, error)
}

// NetworkOrchestrator applies and reverts guaranteed connectivity changes.
type NetworkOrchestrator interface {
	// ExecuteGuaranteedConnectivity requests a guaranteed QoS session and/or
	// slice allocation backing an approved emergency decision.
	ExecuteGuaranteedConnectivity(ctx context.Context, em *EmergencyContext, decision *DecisionOutcome) (*OrchestrationResult, error)

	// RequestQoSSession requests a routine (non-emergency) QoS adjustment.
	RequestQoSSession(ctx context.Context, subjectID string, params map[string]any) (*OrchestrationResult, error)

	// Rollback reverts a previously applied orchestration.
	Rollback(ctx context.Context, orchestrationID string) (*OrchestrationResult, error)
}

// MonitoringHandle identifies one live metrics subscription.
type MonitoringHandle interface {
	// Tick returns the next metrics sample for the subscription.
	Tick(ctx context.Context) (*MonitoringMetrics, error)

	// Close terminates the subscription. Idempotent.
	Close() error
}

// MonitoringFeed opens live metrics subscriptions for orchestrated sessions.
type MonitoringFeed interface {
	Start(ctx context.Context, emergencyID, qosSessionID string) (MonitoringHandle, error)
}

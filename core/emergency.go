package core

import "time"

// EmergencyType classifies how an emergency was detected.
type EmergencyType string

// Emergency detection channels.
const (
	EmergencySOS      EmergencyType = "SOS"
	EmergencyGeofence EmergencyType = "GEOFENCE"
	EmergencyExternal EmergencyType = "EXTERNAL"
	EmergencyManual   EmergencyType = "MANUAL"
)

// Severity ranks how critical an emergency is.
type Severity string

// Severity levels in descending order of urgency.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// ResponderRole identifies the responder category the subject is expected to
// act as during an emergency.
type ResponderRole string

// Responder roles recognized by trust validation.
const (
	RoleAmbulance ResponderRole = "AMBULANCE"
	RolePolice    ResponderRole = "POLICE"
	RoleFire      ResponderRole = "FIRE"
	RoleHospital  ResponderRole = "HOSPITAL"
	RoleOther     ResponderRole = "OTHER"
)

// EmergencyStatus is the lifecycle status of an emergency context. Transitions
// are one-directional: ACTIVE moves to exactly one of the terminal statuses
// (RESOLVED or CANCELLED) and never back.
type EmergencyStatus string

// Emergency lifecycle statuses.
const (
	EmergencyActive    EmergencyStatus = "ACTIVE"
	EmergencyResolved  EmergencyStatus = "RESOLVED"
	EmergencyCancelled EmergencyStatus = "CANCELLED"
)

// EmergencyPhase tracks pipeline progress within an ACTIVE emergency. The
// phase is advisory state owned by the pipeline; the status above is the
// authoritative lifecycle value.
type EmergencyPhase string

// Pipeline phases for an active emergency.
const (
	PhaseDetected        EmergencyPhase = "DETECTED"
	PhaseTrustValidating EmergencyPhase = "TRUST_VALIDATING"
	PhaseTrustFailed     EmergencyPhase = "TRUST_FAILED"
	PhaseNetworkAssess   EmergencyPhase = "NETWORK_ASSESSING"
	PhaseDeciding        EmergencyPhase = "DECIDING"
	PhaseOrchestrating   EmergencyPhase = "ORCHESTRATING"
	PhaseMonitoring      EmergencyPhase = "MONITORING"
)

// EmergencyContext tracks one critical situation through its lifecycle,
// independent of routine agent batches. Contexts are created on detection and
// never deleted; they transition exactly once to a terminal status.
type EmergencyContext struct {
	ID         string
	SubjectID  string
	DeviceID   string
	Type       EmergencyType
	Severity   Severity
	Role       ResponderRole
	Location   *Location
	Status     EmergencyStatus
	Phase      EmergencyPhase
	DetectedAt time.Time
	ResolvedAt time.Time // Zero until the context reaches a terminal status

	// Set once orchestration succeeds; empty before that.
	OrchestrationID string
	QoSSessionID    string
	SliceID         string
}

// Terminal reports whether the emergency reached RESOLVED or CANCELLED.
func (e *EmergencyContext) Terminal() bool {
	return e.Status == EmergencyResolved || e.Status == EmergencyCancelled
}

// DecisionStatus classifies an emergency connectivity decision.
type DecisionStatus string

// Decision classifications. REQUIRES_MANUAL_REVIEW is reserved for operator
// tooling; the pipeline itself only produces the first three.
const (
	DecisionApproved     DecisionStatus = "APPROVED"
	DecisionDenied       DecisionStatus = "DENIED"
	DecisionPending      DecisionStatus = "PENDING"
	DecisionManualReview DecisionStatus = "REQUIRES_MANUAL_REVIEW"
)

// DecisionOutcome is the advisory classification plus the binary orchestration
// gate computed by the emergency pipeline for one tick.
type DecisionOutcome struct {
	Status       DecisionStatus
	Confidence   float64 // Clamped to [0,1]
	Explanation  string
	ShouldOrches bool // Confidence >= gate AND Status == APPROVED
}

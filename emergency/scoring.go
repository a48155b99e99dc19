package emergency

import (
	"fmt"

	"github.com/hupe1980/qosmesh/config"
	"github.com/hupe1980/qosmesh/core"
)

// Decision scoring weights. Severity contributes up to 0.4; trust and network
// availability contribute up to 0.3 each; the total is capped at 1.0.
const (
	weightSeverityCritical = 0.4
	weightSeverityHigh     = 0.3
	weightSeverityMedium   = 0.2
	weightSeverityLow      = 0.1
	weightTrustMax         = 0.3
	weightNetworkAvailable = 0.3
	weightNetworkDegraded  = 0.1
)

func severityWeight(s core.Severity) float64 {
	switch s {
	case core.SeverityCritical:
		return weightSeverityCritical
	case core.SeverityHigh:
		return weightSeverityHigh
	case core.SeverityMedium:
		return weightSeverityMedium
	default:
		return weightSeverityLow
	}
}

func trustWeight(tv *core.TrustValidation) float64 {
	if tv == nil {
		return 0
	}
	if tv.Status == core.TrustTrusted {
		return weightTrustMax
	}
	return weightTrustMax * core.ClampConfidence(tv.TrustScore)
}

func networkWeight(ns *core.NetworkState) float64 {
	if ns != nil && ns.QoSCapacity == core.CapacityAvailable {
		return weightNetworkAvailable
	}
	return weightNetworkDegraded
}

// Decide combines severity, trust and network availability into a confidence
// score and classifies it. The binary orchestration gate
// (score >= gate AND APPROVED) and the three-way advisory classification
// (APPROVED / PENDING / DENIED) are both computed; the advisory value exists
// for audit trails even when orchestration is not attempted.
func Decide(em *core.EmergencyContext, tv *core.TrustValidation, ns *core.NetworkState, cfg config.EmergencyConfig) *core.DecisionOutcome {
	sw := severityWeight(em.Severity)
	tw := trustWeight(tv)
	nw := networkWeight(ns)
	score := core.ClampConfidence(sw + tw + nw)

	var status core.DecisionStatus
	switch {
	case score >= cfg.OrchestrationGate:
		status = core.DecisionApproved
	case score >= cfg.PendingFloor:
		status = core.DecisionPending
	default:
		status = core.DecisionDenied
	}

	return &core.DecisionOutcome{
		Status:     status,
		Confidence: score,
		Explanation: fmt.Sprintf("severity=%s(%.2f) trust=%.2f network=%.2f score=%.2f",
			em.Severity, sw, tw, nw, score),
		ShouldOrches: score >= cfg.OrchestrationGate && status == core.DecisionApproved,
	}
}

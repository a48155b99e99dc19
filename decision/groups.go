package decision

import (
	"time"

	"github.com/hupe1980/qosmesh/core"
)

// Names of the built-in rule groups.
const (
	GroupQoSRequirement       = "qos-requirement"
	GroupLocationVerification = "location-verification"
	GroupDeviceHealth         = "device-health"
)

// Evidence bounds used by the built-in groups.
const (
	weakSignalBound      = 50.0
	highLatencyBound     = 100 * time.Millisecond
	lowThroughputBound   = 10.0
	staleLocationBound   = 120 * time.Second
	coarseAccuracyBound  = 100.0
	criticalBatteryBound = 15
)

// NewQoSRequirementGroup builds the additive group detecting the need for a
// network-quality upgrade. Each adverse measurement contributes its fixed
// weight; evidence accumulates, so adding a true adverse predicate never
// lowers the score.
func NewQoSRequirementGroup(threshold float64) *RuleGroup {
	return &RuleGroup{
		Name:      GroupQoSRequirement,
		Strategy:  StrategyAdditive,
		Threshold: threshold,
		Rules: []Rule{
			{
				Name:   "weak-signal",
				Weight: 0.3,
				Reason: "signal strength below 50",
				Applies: func(s *core.TelemetrySnapshot) bool {
					return s.HasConnectivity() && s.Connectivity.SignalStrength < weakSignalBound
				},
			},
			{
				Name:   "high-latency",
				Weight: 0.3,
				Reason: "latency above 100ms",
				Applies: func(s *core.TelemetrySnapshot) bool {
					return s.HasConnectivity() && s.Connectivity.Latency > highLatencyBound
				},
			},
			{
				Name:   "low-throughput",
				Weight: 0.2,
				Reason: "throughput below 10Mbps",
				Applies: func(s *core.TelemetrySnapshot) bool {
					return s.HasConnectivity() && s.Connectivity.ThroughputMbps < lowThroughputBound
				},
			},
			{
				Name:   "default-profile",
				Weight: 0.2,
				Reason: "subject still on DEFAULT QoS profile",
				Applies: func(s *core.TelemetrySnapshot) bool {
					return s.HasQoS() && s.QoS.Profile == core.QoSProfileDefault
				},
			},
		},
		Propose: proposeQoSAdjustment,
	}
}

// proposeQoSAdjustment emits a single QOS_ADJUSTMENT proposal whose parameter
// set depends on which predicates fired: weak signal asks for a stronger
// bandwidth/priority tier than latency evidence alone.
func proposeQoSAdjustment(s *core.TelemetrySnapshot, fired []string, reason string) []*core.ActionProposal {
	params := map[string]any{
		"bandwidth_mbps": 20,
		"priority":       "MEDIUM",
		"profile":        string(core.QoSProfileEnhanced),
	}
	for _, f := range fired {
		if f == "weak-signal" {
			params["bandwidth_mbps"] = 50
			params["priority"] = "HIGH"
			params["profile"] = string(core.QoSProfilePremium)
			break
		}
	}
	return []*core.ActionProposal{
		core.NewActionProposal(core.ActionQoSAdjustment, "network-orchestrator", reason, params),
	}
}

// NewLocationVerificationGroup builds the max-combination group judging
// whether a subject's reported position needs out-of-band verification.
// Staleness and low accuracy compete rather than accumulate: the group's
// confidence is the maximum of the fired values, so two weak signals do not
// fabricate a strong one.
func NewLocationVerificationGroup(threshold float64) *RuleGroup {
	return &RuleGroup{
		Name:      GroupLocationVerification,
		Strategy:  StrategyMax,
		Threshold: threshold,
		Rules: []Rule{
			{
				Name:   "stale-fix",
				Weight: 0.8,
				Reason: "location fix older than 120s",
				Applies: func(s *core.TelemetrySnapshot) bool {
					return s.HasLocation() && s.Location.Age > staleLocationBound
				},
			},
			{
				Name:   "coarse-fix",
				Weight: 0.7,
				Reason: "location accuracy radius above 100m",
				Applies: func(s *core.TelemetrySnapshot) bool {
					return s.HasLocation() && s.Location.Accuracy > coarseAccuracyBound
				},
			},
		},
		Propose: func(s *core.TelemetrySnapshot, fired []string, reason string) []*core.ActionProposal {
			return []*core.ActionProposal{
				core.NewActionProposal(core.ActionLocationVerification, "location-verifier", reason, map[string]any{
					"latitude":  s.Location.Latitude,
					"longitude": s.Location.Longitude,
				}),
			}
		},
	}
}

// NewDeviceHealthGroup builds the additive group detecting device-level
// problems that warrant a status check or swap validation.
func NewDeviceHealthGroup(threshold float64) *RuleGroup {
	return &RuleGroup{
		Name:      GroupDeviceHealth,
		Strategy:  StrategyAdditive,
		Threshold: threshold,
		Rules: []Rule{
			{
				Name:   "unreachable",
				Weight: 0.5,
				Reason: "device unreachable",
				Applies: func(s *core.TelemetrySnapshot) bool {
					return s.HasDevice() && !s.Device.Reachable
				},
			},
			{
				Name:   "roaming-weak-signal",
				Weight: 0.3,
				Reason: "roaming with weak signal",
				Applies: func(s *core.TelemetrySnapshot) bool {
					return s.HasDevice() && s.Device.Roaming &&
						s.HasConnectivity() && s.Connectivity.SignalStrength < weakSignalBound
				},
			},
			{
				Name:   "battery-critical",
				Weight: 0.2,
				Reason: "battery critically low",
				Applies: func(s *core.TelemetrySnapshot) bool {
					return s.HasDevice() && s.Device.BatteryPercent >= 0 && s.Device.BatteryPercent < criticalBatteryBound
				},
			},
		},
		Propose: func(s *core.TelemetrySnapshot, fired []string, reason string) []*core.ActionProposal {
			return []*core.ActionProposal{
				core.NewActionProposal(core.ActionDeviceStatusCheck, "device-status", reason, map[string]any{
					"device_id": s.DeviceID,
				}),
			}
		},
	}
}

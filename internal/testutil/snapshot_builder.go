package testutil

import (
	"time"

	"github.com/hupe1980/qosmesh/core"
)

// SnapshotBuilder provides a fluent helper for constructing telemetry
// snapshots in tests.
// Example:
//
//	s := NewSnapshotBuilder("subj-1").SignalStrength(40).LatencyMs(150).Build()
//
// Chain only the parts you need; unset sub-structs stay nil so tests can
// exercise the absent-evidence paths.
type SnapshotBuilder struct {
	s core.TelemetrySnapshot
}

// NewSnapshotBuilder creates a builder for the given subject.
func NewSnapshotBuilder(subjectID string) *SnapshotBuilder {
	return &SnapshotBuilder{s: core.TelemetrySnapshot{
		SubjectID:   subjectID,
		DeviceID:    "device-" + subjectID,
		CollectedAt: time.Now(),
	}}
}

// DeviceID overrides the derived device identifier (chainable).
func (b *SnapshotBuilder) DeviceID(id string) *SnapshotBuilder {
	b.s.DeviceID = id
	return b
}

func (b *SnapshotBuilder) connectivity() *core.Connectivity {
	if b.s.Connectivity == nil {
		b.s.Connectivity = &core.Connectivity{SignalStrength: 90, Latency: 20 * time.Millisecond, ThroughputMbps: 50}
	}
	return b.s.Connectivity
}

// SignalStrength sets the link signal strength, materializing healthy
// connectivity defaults for the remaining fields (chainable).
func (b *SnapshotBuilder) SignalStrength(v float64) *SnapshotBuilder {
	b.connectivity().SignalStrength = v
	return b
}

// LatencyMs sets the round-trip latency in milliseconds (chainable).
func (b *SnapshotBuilder) LatencyMs(ms int) *SnapshotBuilder {
	b.connectivity().Latency = time.Duration(ms) * time.Millisecond
	return b
}

// ThroughputMbps sets the downlink throughput (chainable).
func (b *SnapshotBuilder) ThroughputMbps(v float64) *SnapshotBuilder {
	b.connectivity().ThroughputMbps = v
	return b
}

// JitterMs sets the jitter (chainable).
func (b *SnapshotBuilder) JitterMs(v float64) *SnapshotBuilder {
	b.connectivity().JitterMs = v
	return b
}

// PacketLossPct sets the packet loss percentage (chainable).
func (b *SnapshotBuilder) PacketLossPct(v float64) *SnapshotBuilder {
	b.connectivity().PacketLossPct = v
	return b
}

// QoSProfile sets the active QoS profile (chainable).
func (b *SnapshotBuilder) QoSProfile(p core.QoSProfile) *SnapshotBuilder {
	if b.s.QoS == nil {
		b.s.QoS = &core.QoSInfo{}
	}
	b.s.QoS.Profile = p
	return b
}

// Location sets a position fix (chainable).
func (b *SnapshotBuilder) Location(lat, lon, accuracy float64, age time.Duration) *SnapshotBuilder {
	b.s.Location = &core.Location{Latitude: lat, Longitude: lon, Accuracy: accuracy, Age: age}
	return b
}

// Device sets device status fields (chainable).
func (b *SnapshotBuilder) Device(reachable, roaming bool, battery int, imei string) *SnapshotBuilder {
	b.s.Device = &core.DeviceStatus{Reachable: reachable, Roaming: roaming, BatteryPercent: battery, IMEI: imei}
	return b
}

// Signal attaches an inline distress signal (chainable).
func (b *SnapshotBuilder) Signal(t core.EmergencyType, sev core.Severity, role core.ResponderRole) *SnapshotBuilder {
	b.s.Signal = &core.EmergencySignal{Type: t, Severity: sev, Role: role}
	return b
}

// Build constructs the snapshot value.
func (b *SnapshotBuilder) Build() *core.TelemetrySnapshot {
	cp := b.s
	return &cp
}

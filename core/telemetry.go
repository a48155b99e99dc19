package core

import "time"

// QoSProfile identifies the network-quality tier currently assigned to a subject.
type QoSProfile string

// Known QoS profiles ordered from baseline to guaranteed service.
const (
	QoSProfileDefault    QoSProfile = "DEFAULT"
	QoSProfileEnhanced   QoSProfile = "ENHANCED"
	QoSProfilePremium    QoSProfile = "PREMIUM"
	QoSProfileGuaranteed QoSProfile = "GUARANTEED"
)

// Location is a point-in-time position fix for a subject's device.
type Location struct {
	Latitude  float64       // Degrees, WGS84
	Longitude float64       // Degrees, WGS84
	Accuracy  float64       // Radius of confidence in meters
	Age       time.Duration // Time elapsed since the fix was taken
}

// DeviceStatus captures reachability and device-level health indicators.
type DeviceStatus struct {
	Reachable      bool
	Roaming        bool
	BatteryPercent int    // 0-100; -1 when unknown
	IMEI           string // Current device identifier, empty when unknown
}

// Connectivity holds link-quality measurements for the subject's current bearer.
type Connectivity struct {
	SignalStrength float64       // 0-100 relative scale
	Latency        time.Duration // Round-trip latency
	ThroughputMbps float64       // Measured downlink throughput
	JitterMs       float64       // Inter-packet delay variation in milliseconds
	PacketLossPct  float64       // 0-100
}

// QoSInfo describes the active QoS assignment for the subject.
type QoSInfo struct {
	Profile   QoSProfile
	SessionID string // Active QoS session, empty when none
}

// EmergencySignal is an inline distress indicator carried with telemetry,
// such as an SOS button press or a geofence breach reported by the device.
type EmergencySignal struct {
	Type     EmergencyType
	Severity Severity
	Role     ResponderRole
}

// TelemetrySnapshot is a point-in-time bundle of everything the mesh knows
// about a subject. Any sub-struct may be nil when the corresponding data
// source was unavailable; rule groups treat missing fields as absent
// evidence, not as failure.
type TelemetrySnapshot struct {
	SubjectID    string
	DeviceID     string
	Location     *Location
	Device       *DeviceStatus
	Connectivity *Connectivity
	QoS          *QoSInfo
	Signal       *EmergencySignal
	CollectedAt  time.Time
}

// HasLocation reports whether a location fix is present.
func (t *TelemetrySnapshot) HasLocation() bool { return t != nil && t.Location != nil }

// HasDevice reports whether device status data is present.
func (t *TelemetrySnapshot) HasDevice() bool { return t != nil && t.Device != nil }

// HasConnectivity reports whether link-quality measurements are present.
func (t *TelemetrySnapshot) HasConnectivity() bool { return t != nil && t.Connectivity != nil }

// HasQoS reports whether QoS assignment data is present.
func (t *TelemetrySnapshot) HasQoS() bool { return t != nil && t.QoS != nil }

// HasSignal reports whether an inline emergency signal is present.
func (t *TelemetrySnapshot) HasSignal() bool { return t != nil && t.Signal != nil }

// ClampConfidence bounds a confidence score to the [0,1] interval. All
// confidence values flowing through the mesh pass through this helper before
// they are stored or compared against thresholds.
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

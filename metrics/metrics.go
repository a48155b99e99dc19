// Package metrics exposes Prometheus collectors for the mesh: live monitoring
// gauges per emergency session plus counters for batches, agent failures,
// remediations and rollbacks. A nil *Recorder is a valid no-op, so callers
// never guard their instrumentation sites.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/qosmesh/core"
)

// Recorder bundles the mesh's Prometheus collectors. Construct one via
// NewRecorder and register it with your registry of choice.
type Recorder struct {
	latency     *prometheus.GaugeVec
	jitter      *prometheus.GaugeVec
	packetLoss  *prometheus.GaugeVec
	throughput  *prometheus.GaugeVec
	healthScore *prometheus.GaugeVec

	batches       prometheus.Counter
	agentFailures *prometheus.CounterVec
	remediations  prometheus.Counter
	rollbacks     prometheus.Counter
}

// NewRecorder builds the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer for the process-wide registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "qosmesh_monitoring_latency_ms",
			Help: "Last observed round-trip latency for a monitored emergency session.",
		}, []string{"emergency_id"}),
		jitter: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "qosmesh_monitoring_jitter_ms",
			Help: "Last observed jitter for a monitored emergency session.",
		}, []string{"emergency_id"}),
		packetLoss: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "qosmesh_monitoring_packet_loss_percent",
			Help: "Last observed packet loss for a monitored emergency session.",
		}, []string{"emergency_id"}),
		throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "qosmesh_monitoring_throughput_mbps",
			Help: "Last observed downlink throughput for a monitored emergency session.",
		}, []string{"emergency_id"}),
		healthScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "qosmesh_monitoring_health_score",
			Help: "Derived health score (0-1) for a monitored emergency session.",
		}, []string{"emergency_id"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qosmesh_batches_total",
			Help: "Total agent batches dispatched.",
		}),
		agentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qosmesh_agent_failures_total",
			Help: "Total agent executions that produced a failed outcome.",
		}, []string{"agent_id"}),
		remediations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qosmesh_remediations_total",
			Help: "Total remediations triggered by monitoring threshold breaches.",
		}),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qosmesh_rollbacks_total",
			Help: "Total orchestration rollbacks executed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.latency, r.jitter, r.packetLoss, r.throughput, r.healthScore,
			r.batches, r.agentFailures, r.remediations, r.rollbacks)
	}
	return r
}

// ObserveMonitoring records one live metrics sample for an emergency session.
func (r *Recorder) ObserveMonitoring(emergencyID string, m *core.MonitoringMetrics) {
	if r == nil || m == nil {
		return
	}
	labels := prometheus.Labels{"emergency_id": emergencyID}
	r.latency.With(labels).Set(m.LatencyMs)
	r.jitter.With(labels).Set(m.JitterMs)
	r.packetLoss.With(labels).Set(m.PacketLossPct)
	r.throughput.With(labels).Set(m.ThroughputMbps)
	r.healthScore.With(labels).Set(m.HealthScore)
}

// BatchDispatched counts one executed agent batch.
func (r *Recorder) BatchDispatched() {
	if r == nil {
		return
	}
	r.batches.Inc()
}

// AgentFailed counts one failed agent outcome.
func (r *Recorder) AgentFailed(agentID string) {
	if r == nil {
		return
	}
	r.agentFailures.WithLabelValues(agentID).Inc()
}

// RemediationTriggered counts one monitoring-driven remediation.
func (r *Recorder) RemediationTriggered() {
	if r == nil {
		return
	}
	r.remediations.Inc()
}

// RollbackExecuted counts one orchestration rollback.
func (r *Recorder) RollbackExecuted() {
	if r == nil {
		return
	}
	r.rollbacks.Inc()
}

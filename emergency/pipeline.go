package emergency

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/config"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/logging"
	"github.com/hupe1980/qosmesh/metrics"
)

// Dependencies wires the pipeline's collaborators and supporting services.
// Trust, Assessor, Orchestrator and Feed are required; Caller, Logger and
// Recorder fall back to safe defaults.
type Dependencies struct {
	Trust        core.TrustValidator
	Assessor     core.NetworkStateAssessor
	Orchestrator core.NetworkOrchestrator
	Feed         core.MonitoringFeed
	Caller       *collab.Caller
	Logger       logging.Logger
	Recorder     *metrics.Recorder
}

// Pipeline advances ACTIVE emergencies through the lifecycle one tick at a
// time. It owns the live monitoring subscriptions; everything else it touches
// belongs to its collaborators or the Manager.
type Pipeline struct {
	deps Dependencies
	cfg  config.Config

	mu       sync.Mutex
	monitors map[string]core.MonitoringHandle
}

// NewPipeline constructs a pipeline over the given dependencies.
func NewPipeline(deps Dependencies, cfg config.Config) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = logging.NoOpLogger{}
	}
	if deps.Caller == nil {
		deps.Caller = collab.NewCaller(cfg.Retry, deps.Logger)
	}
	return &Pipeline{deps: deps, cfg: cfg, monitors: make(map[string]core.MonitoringHandle)}
}

// TickResult reports what one pipeline tick observed and did. Fields are nil
// for stages the tick did not reach.
type TickResult struct {
	EmergencyID   string
	Phase         core.EmergencyPhase
	Trust         *core.TrustValidation
	Network       *core.NetworkState
	Decision      *core.DecisionOutcome
	Orchestration *core.OrchestrationResult
	Metrics       *core.MonitoringMetrics
	Remediated    bool
	Message       string
}

// Tick runs one pipeline pass for an ACTIVE emergency. A collaborator failure
// halts only the stage it occurred in: the error is returned, the emergency
// stays ACTIVE and the next tick retries from the top (or continues
// monitoring). Ticking a terminal emergency is a state error.
func (p *Pipeline) Tick(ctx context.Context, em *core.EmergencyContext) (*TickResult, error) {
	if em.Terminal() {
		return nil, &core.PipelineStateError{EmergencyID: em.ID, From: em.Status, Attempted: "tick"}
	}
	if em.Phase == core.PhaseMonitoring {
		return p.monitorTick(ctx, em)
	}
	return p.approvalTick(ctx, em)
}

// approvalTick drives the trust -> assessment -> decision -> orchestration
// stages for an emergency that has not reached MONITORING yet.
func (p *Pipeline) approvalTick(ctx context.Context, em *core.EmergencyContext) (*TickResult, error) {
	res := &TickResult{EmergencyID: em.ID}
	log := p.deps.Logger

	// Trust is re-validated on every tick; a prior TRUSTED result is never
	// carried forward.
	p.transition(em, core.PhaseTrustValidating)
	var tv *core.TrustValidation
	err := p.deps.Caller.Do(ctx, "trust-validator", func(ctx context.Context) error {
		var callErr error
		tv, callErr = p.deps.Trust.Validate(ctx, em.SubjectID, em.DeviceID, em.Role)
		return callErr
	})
	if err != nil {
		res.Phase = em.Phase
		return res, fmt.Errorf("trust validation: %w", err)
	}
	res.Trust = tv
	// A nil validation without an error counts as non-TRUSTED, never a crash.
	if tv == nil || tv.Status != core.TrustTrusted {
		p.transition(em, core.PhaseTrustFailed)
		res.Phase = em.Phase
		res.Message = "trust validation did not pass; limited connectivity only"
		status := core.TrustUnknown
		if tv != nil {
			status = tv.Status
		}
		log.Warn("trust validation failed", "emergency_id", em.ID, "status", status)
		return res, nil
	}

	p.transition(em, core.PhaseNetworkAssess)
	var lat, lon float64
	if em.Location != nil {
		lat, lon = em.Location.Latitude, em.Location.Longitude
	}
	var ns *core.NetworkState
	err = p.deps.Caller.Do(ctx, "network-assessor", func(ctx context.Context) error {
		var callErr error
		ns, callErr = p.deps.Assessor.Assess(ctx, lat, lon)
		return callErr
	})
	if err != nil {
		res.Phase = em.Phase
		return res, fmt.Errorf("network assessment: %w", err)
	}
	res.Network = ns

	p.transition(em, core.PhaseDeciding)
	decision := Decide(em, tv, ns, p.cfg.Emergency)
	res.Decision = decision
	log.Info("emergency decision", "emergency_id", em.ID, "status", decision.Status, "confidence", decision.Confidence)

	if !decision.ShouldOrches {
		res.Phase = em.Phase
		res.Message = fmt.Sprintf("decision %s (%.2f); emergency remains active", decision.Status, decision.Confidence)
		return res, nil
	}

	p.transition(em, core.PhaseOrchestrating)
	var or *core.OrchestrationResult
	err = p.deps.Caller.Do(ctx, "network-orchestrator", func(ctx context.Context) error {
		var callErr error
		or, callErr = p.deps.Orchestrator.ExecuteGuaranteedConnectivity(ctx, em, decision)
		return callErr
	})
	if err != nil || or == nil || or.Status != core.OrchestrationSuccess {
		// Retry on the next tick; no partial identifiers are recorded.
		p.transition(em, core.PhaseDetected)
		res.Phase = em.Phase
		if err == nil {
			err = fmt.Errorf("orchestration did not succeed")
		}
		return res, fmt.Errorf("orchestration: %w", err)
	}
	res.Orchestration = or

	em.OrchestrationID = or.OrchestrationID
	em.QoSSessionID = or.QoSSessionID
	em.SliceID = or.SliceID
	p.transition(em, core.PhaseMonitoring)
	res.Phase = em.Phase
	res.Message = "guaranteed connectivity orchestrated; monitoring started"
	return res, nil
}

// monitorTick samples the live metrics subscription and triggers remediation
// when any threshold trips.
func (p *Pipeline) monitorTick(ctx context.Context, em *core.EmergencyContext) (*TickResult, error) {
	res := &TickResult{EmergencyID: em.ID, Phase: em.Phase}

	handle, err := p.handleFor(ctx, em)
	if err != nil {
		return res, fmt.Errorf("monitoring start: %w", err)
	}

	var m *core.MonitoringMetrics
	err = p.deps.Caller.Do(ctx, "monitoring-feed", func(ctx context.Context) error {
		var callErr error
		m, callErr = handle.Tick(ctx)
		return callErr
	})
	if err != nil {
		return res, fmt.Errorf("monitoring tick: %w", err)
	}
	res.Metrics = m
	p.deps.Recorder.ObserveMonitoring(em.ID, m)

	if !p.breached(m) {
		res.Message = "connection healthy"
		return res, nil
	}

	p.deps.Recorder.RemediationTriggered()
	p.deps.Logger.Warn("monitoring thresholds breached", "emergency_id", em.ID,
		"latency_ms", m.LatencyMs, "jitter_ms", m.JitterMs, "packet_loss_pct", m.PacketLossPct)

	if err := p.remediate(ctx, em); err != nil {
		return res, fmt.Errorf("remediation: %w", err)
	}
	res.Remediated = true
	res.Phase = em.Phase
	res.Message = "thresholds breached; orchestration rolled back for re-approval"
	return res, nil
}

// breached reports whether any monitoring threshold trips for the sample.
func (p *Pipeline) breached(m *core.MonitoringMetrics) bool {
	t := p.cfg.Monitoring
	return m.LatencyMs > t.MaxLatencyMs || m.PacketLossPct > t.MaxPacketLossPct || m.JitterMs > t.MaxJitterMs
}

// remediate rolls back the orchestrated change and returns the emergency to
// the detection phase so the next tick re-runs the approval stages.
func (p *Pipeline) remediate(ctx context.Context, em *core.EmergencyContext) error {
	err := p.deps.Caller.Do(ctx, "network-orchestrator", func(ctx context.Context) error {
		_, callErr := p.deps.Orchestrator.Rollback(ctx, em.OrchestrationID)
		return callErr
	})
	if err != nil {
		return err
	}
	p.deps.Recorder.RollbackExecuted()
	p.StopMonitoring(em.ID)
	em.OrchestrationID = ""
	em.QoSSessionID = ""
	em.SliceID = ""
	p.transition(em, core.PhaseDetected)
	return nil
}

// handleFor returns the existing monitoring subscription for an emergency or
// starts one keyed by (emergencyID, qosSessionID).
func (p *Pipeline) handleFor(ctx context.Context, em *core.EmergencyContext) (core.MonitoringHandle, error) {
	p.mu.Lock()
	if h, ok := p.monitors[em.ID]; ok {
		p.mu.Unlock()
		return h, nil
	}
	p.mu.Unlock()

	var h core.MonitoringHandle
	err := p.deps.Caller.Do(ctx, "monitoring-feed", func(ctx context.Context) error {
		var callErr error
		h, callErr = p.deps.Feed.Start(ctx, em.ID, em.QoSSessionID)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.monitors[em.ID]; ok {
		_ = h.Close()
		return existing, nil
	}
	p.monitors[em.ID] = h
	return h, nil
}

// StopMonitoring closes and forgets the monitoring subscription for an
// emergency. Safe to call when none exists.
func (p *Pipeline) StopMonitoring(emergencyID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.monitors[emergencyID]; ok {
		_ = h.Close()
		delete(p.monitors, emergencyID)
	}
}

func (p *Pipeline) transition(em *core.EmergencyContext, to core.EmergencyPhase) {
	from := em.Phase
	if from == to {
		return
	}
	em.Phase = to
	if ml, ok := p.deps.Logger.(*logging.MeshLogger); ok {
		ml.LogEmergencyTransition(em.ID, string(from), string(to))
		return
	}
	p.deps.Logger.Debug("emergency phase transition", "emergency_id", em.ID, "from", from, "to", to)
}

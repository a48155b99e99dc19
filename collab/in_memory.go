package collab

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/qosmesh/core"
)

// InMemoryTelemetry is a volatile TelemetryProvider storing snapshots in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo runs.
type InMemoryTelemetry struct {
	mu        sync.RWMutex
	snapshots map[string]*core.TelemetrySnapshot
}

// NewInMemoryTelemetry constructs an empty in-memory telemetry provider.
func NewInMemoryTelemetry() *InMemoryTelemetry {
	return &InMemoryTelemetry{snapshots: make(map[string]*core.TelemetrySnapshot)}
}

// Set stores the snapshot returned for a subject on subsequent Collect calls.
func (p *InMemoryTelemetry) Set(subjectID string, s *core.TelemetrySnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots[subjectID] = s
}

// Collect returns the stored snapshot for the subject or an error when none
// exists.
func (p *InMemoryTelemetry) Collect(_ context.Context, subjectID string) (*core.TelemetrySnapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.snapshots[subjectID]
	if !ok {
		return nil, fmt.Errorf("telemetry for subject %s: %w", subjectID, core.ErrNotFound)
	}
	return s, nil
}

// VerifyLocation trivially confirms any stored subject's position, satisfying
// the LocationVerifier contract for local runs.
func (p *InMemoryTelemetry) VerifyLocation(_ context.Context, subjectID string, _ *core.Location) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.snapshots[subjectID]
	return ok, nil
}

// StaticTrustValidator returns pre-seeded trust validations per subject and a
// configurable default for everyone else.
type StaticTrustValidator struct {
	mu       sync.RWMutex
	bySubj   map[string]*core.TrustValidation
	fallback core.TrustValidation
}

// NewStaticTrustValidator constructs a validator whose default answer is
// TRUSTED with full score.
func NewStaticTrustValidator() *StaticTrustValidator {
	return &StaticTrustValidator{
		bySubj:   make(map[string]*core.TrustValidation),
		fallback: core.TrustValidation{Status: core.TrustTrusted, TrustScore: 1.0},
	}
}

// SetFallback replaces the default validation returned for unknown subjects.
func (v *StaticTrustValidator) SetFallback(tv core.TrustValidation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fallback = tv
}

// Seed fixes the validation returned for one subject.
func (v *StaticTrustValidator) Seed(subjectID string, tv core.TrustValidation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	cp := tv
	v.bySubj[subjectID] = &cp
}

// Validate implements core.TrustValidator.
func (v *StaticTrustValidator) Validate(_ context.Context, subjectID, _ string, _ core.ResponderRole) (*core.TrustValidation, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if tv, ok := v.bySubj[subjectID]; ok {
		cp := *tv
		return &cp, nil
	}
	cp := v.fallback
	return &cp, nil
}

// StaticNetworkAssessor answers every assessment with one configurable state.
type StaticNetworkAssessor struct {
	mu    sync.RWMutex
	state core.NetworkState
}

// NewStaticNetworkAssessor constructs an assessor reporting low congestion
// and available capacity.
func NewStaticNetworkAssessor() *StaticNetworkAssessor {
	return &StaticNetworkAssessor{state: core.NetworkState{
		Congestion:      core.CongestionLow,
		QoSCapacity:     core.CapacityAvailable,
		AvailableSlices: []string{"emergency-slice-1"},
	}}
}

// SetState replaces the reported network state.
func (a *StaticNetworkAssessor) SetState(s core.NetworkState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s
}

// Assess implements core.NetworkStateAssessor.
func (a *StaticNetworkAssessor) Assess(_ context.Context, _, _ float64) (*core.NetworkState, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	cp := a.state
	cp.AvailableSlices = append([]string{}, a.state.AvailableSlices...)
	return &cp, nil
}

// InMemoryOrchestrator records connectivity requests and answers them with
// generated identifiers. Rollbacks mark the orchestration ROLLED_BACK.
type InMemoryOrchestrator struct {
	mu       sync.Mutex
	applied  map[string]*core.OrchestrationResult
	failNext error
}

// NewInMemoryOrchestrator constructs an empty in-memory orchestrator.
func NewInMemoryOrchestrator() *InMemoryOrchestrator {
	return &InMemoryOrchestrator{applied: make(map[string]*core.OrchestrationResult)}
}

// FailNext arranges for the next request to fail with err, then clears.
func (o *InMemoryOrchestrator) FailNext(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failNext = err
}

func (o *InMemoryOrchestrator) allocate() (*core.OrchestrationResult, error) {
	if o.failNext != nil {
		err := o.failNext
		o.failNext = nil
		return nil, err
	}
	res := &core.OrchestrationResult{
		Status:          core.OrchestrationSuccess,
		OrchestrationID: uuid.NewString(),
		QoSSessionID:    uuid.NewString(),
		SliceID:         "emergency-slice-1",
	}
	o.applied[res.OrchestrationID] = res
	return res, nil
}

// ExecuteGuaranteedConnectivity implements core.NetworkOrchestrator.
func (o *InMemoryOrchestrator) ExecuteGuaranteedConnectivity(_ context.Context, _ *core.EmergencyContext, _ *core.DecisionOutcome) (*core.OrchestrationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.allocate()
}

// RequestQoSSession implements core.NetworkOrchestrator.
func (o *InMemoryOrchestrator) RequestQoSSession(_ context.Context, _ string, _ map[string]any) (*core.OrchestrationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.allocate()
}

// Rollback implements core.NetworkOrchestrator.
func (o *InMemoryOrchestrator) Rollback(_ context.Context, orchestrationID string) (*core.OrchestrationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	res, ok := o.applied[orchestrationID]
	if !ok {
		return nil, fmt.Errorf("orchestration %s: %w", orchestrationID, core.ErrNotFound)
	}
	res.Status = core.OrchestrationRolledBack
	cp := *res
	return &cp, nil
}

// SimulatedMonitoringFeed opens handles that replay a configurable metrics
// sample on every tick.
type SimulatedMonitoringFeed struct {
	mu     sync.RWMutex
	sample core.MonitoringMetrics
}

// NewSimulatedMonitoringFeed constructs a feed reporting healthy metrics.
func NewSimulatedMonitoringFeed() *SimulatedMonitoringFeed {
	return &SimulatedMonitoringFeed{sample: core.MonitoringMetrics{
		LatencyMs:      20,
		JitterMs:       3,
		PacketLossPct:  0.1,
		ThroughputMbps: 80,
		HealthScore:    0.99,
	}}
}

// SetSample replaces the metrics returned by subsequent ticks of all handles.
func (f *SimulatedMonitoringFeed) SetSample(m core.MonitoringMetrics) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sample = m
}

// Start implements core.MonitoringFeed.
func (f *SimulatedMonitoringFeed) Start(_ context.Context, emergencyID, qosSessionID string) (core.MonitoringHandle, error) {
	return &simulatedHandle{feed: f, emergencyID: emergencyID, qosSessionID: qosSessionID}, nil
}

type simulatedHandle struct {
	feed         *SimulatedMonitoringFeed
	emergencyID  string
	qosSessionID string
}

// Tick implements core.MonitoringHandle.
func (h *simulatedHandle) Tick(_ context.Context) (*core.MonitoringMetrics, error) {
	h.feed.mu.RLock()
	defer h.feed.mu.RUnlock()
	cp := h.feed.sample
	return &cp, nil
}

// Close implements core.MonitoringHandle.
func (h *simulatedHandle) Close() error { return nil }

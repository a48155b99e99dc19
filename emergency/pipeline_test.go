package emergency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/config"
	"github.com/hupe1980/qosmesh/core"
)

// countingOrchestrator counts guaranteed-connectivity executions and rollbacks
// on top of the in-memory orchestrator.
type countingOrchestrator struct {
	*collab.InMemoryOrchestrator
	mu        sync.Mutex
	executes  int
	rollbacks int
}

func (o *countingOrchestrator) ExecuteGuaranteedConnectivity(ctx context.Context, em *core.EmergencyContext, d *core.DecisionOutcome) (*core.OrchestrationResult, error) {
	o.mu.Lock()
	o.executes++
	o.mu.Unlock()
	return o.InMemoryOrchestrator.ExecuteGuaranteedConnectivity(ctx, em, d)
}

func (o *countingOrchestrator) Rollback(ctx context.Context, id string) (*core.OrchestrationResult, error) {
	o.mu.Lock()
	o.rollbacks++
	o.mu.Unlock()
	return o.InMemoryOrchestrator.Rollback(ctx, id)
}

type pipelineFixture struct {
	pipeline     *Pipeline
	manager      *Manager
	trust        *collab.StaticTrustValidator
	assessor     *collab.StaticNetworkAssessor
	orchestrator *countingOrchestrator
	feed         *collab.SimulatedMonitoringFeed
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	cfg := config.Default()
	cfg.Retry.Delay = time.Millisecond
	cfg.Retry.Timeout = time.Second

	f := &pipelineFixture{
		manager:      NewManager(nil),
		trust:        collab.NewStaticTrustValidator(),
		assessor:     collab.NewStaticNetworkAssessor(),
		orchestrator: &countingOrchestrator{InMemoryOrchestrator: collab.NewInMemoryOrchestrator()},
		feed:         collab.NewSimulatedMonitoringFeed(),
	}
	f.pipeline = NewPipeline(Dependencies{
		Trust:        f.trust,
		Assessor:     f.assessor,
		Orchestrator: f.orchestrator,
		Feed:         f.feed,
	}, cfg)
	return f
}

func (f *pipelineFixture) detect(t *testing.T, sev core.Severity) *core.EmergencyContext {
	t.Helper()
	em, err := f.manager.Detect("subj-1", "imei-1", core.EmergencySOS, sev, core.RoleAmbulance, &core.Location{Latitude: 48.1, Longitude: 11.5})
	require.NoError(t, err)
	return em
}

func TestPipeline_ApprovedEmergencyReachesMonitoring(t *testing.T) {
	f := newPipelineFixture(t)
	em := f.detect(t, core.SeverityCritical)

	res, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)

	assert.Equal(t, core.PhaseMonitoring, em.Phase)
	assert.Equal(t, core.DecisionApproved, res.Decision.Status)
	require.NotNil(t, res.Orchestration)
	assert.Equal(t, 1, f.orchestrator.executes, "orchestration must run exactly once")
	assert.NotEmpty(t, em.OrchestrationID)
	assert.NotEmpty(t, em.QoSSessionID)
	assert.NotEmpty(t, em.SliceID)
}

func TestPipeline_MonitoringTickHealthy(t *testing.T) {
	f := newPipelineFixture(t)
	em := f.detect(t, core.SeverityCritical)

	_, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)

	res, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)

	assert.Equal(t, core.PhaseMonitoring, em.Phase)
	require.NotNil(t, res.Metrics)
	assert.False(t, res.Remediated)
	assert.Equal(t, 1, f.orchestrator.executes, "a healthy monitoring tick must not re-orchestrate")
}

func TestPipeline_BreachTriggersRollbackAndReapproval(t *testing.T) {
	f := newPipelineFixture(t)
	em := f.detect(t, core.SeverityCritical)

	_, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)

	f.feed.SetSample(core.MonitoringMetrics{LatencyMs: 150, JitterMs: 3, PacketLossPct: 0.1})
	res, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)

	assert.True(t, res.Remediated)
	assert.Equal(t, 1, f.orchestrator.rollbacks)
	assert.Equal(t, core.PhaseDetected, em.Phase)
	assert.Empty(t, em.OrchestrationID)
	assert.Empty(t, em.QoSSessionID)
	assert.Empty(t, em.SliceID)
	assert.Equal(t, core.EmergencyActive, em.Status, "remediation must not terminate the emergency")

	// Full re-approval on the next tick.
	f.feed.SetSample(core.MonitoringMetrics{LatencyMs: 20, JitterMs: 3, PacketLossPct: 0.1})
	_, err = f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)
	assert.Equal(t, core.PhaseMonitoring, em.Phase)
	assert.Equal(t, 2, f.orchestrator.executes)
}

func TestPipeline_JitterAloneBreaches(t *testing.T) {
	f := newPipelineFixture(t)
	em := f.detect(t, core.SeverityCritical)

	_, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)

	f.feed.SetSample(core.MonitoringMetrics{LatencyMs: 20, JitterMs: 25, PacketLossPct: 0.1})
	res, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)
	assert.True(t, res.Remediated)
}

func TestPipeline_UntrustedHaltsBeforeAssessment(t *testing.T) {
	f := newPipelineFixture(t)
	f.trust.SetFallback(core.TrustValidation{Status: core.TrustUntrusted, TrustScore: 0.2})
	em := f.detect(t, core.SeverityCritical)

	res, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)

	assert.Equal(t, core.PhaseTrustFailed, em.Phase)
	assert.Nil(t, res.Network, "assessment must not run for an untrusted subject")
	assert.Nil(t, res.Decision)
	assert.Equal(t, 0, f.orchestrator.executes)
	assert.Equal(t, core.EmergencyActive, em.Status)
}

// nilTrustValidator answers every validation with (nil, nil).
type nilTrustValidator struct{}

func (nilTrustValidator) Validate(context.Context, string, string, core.ResponderRole) (*core.TrustValidation, error) {
	return nil, nil
}

func TestPipeline_NilTrustValidationIsNonTrusted(t *testing.T) {
	f := newPipelineFixture(t)
	f.pipeline.deps.Trust = nilTrustValidator{}
	em := f.detect(t, core.SeverityCritical)

	res, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err, "a nil validation must degrade, not crash the tick")

	assert.Equal(t, core.PhaseTrustFailed, em.Phase)
	assert.Nil(t, res.Trust)
	assert.Equal(t, 0, f.orchestrator.executes)
	assert.Equal(t, core.EmergencyActive, em.Status)
}

func TestPipeline_PendingDecisionDoesNotOrchestrate(t *testing.T) {
	f := newPipelineFixture(t)
	em := f.detect(t, core.SeverityHigh) // scores 0.9, below the 0.95 gate

	res, err := f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)

	require.NotNil(t, res.Decision)
	assert.Equal(t, core.DecisionPending, res.Decision.Status)
	assert.Equal(t, 0, f.orchestrator.executes)
	assert.Equal(t, core.PhaseDeciding, em.Phase)
}

func TestPipeline_OrchestrationFailureRetriesNextTick(t *testing.T) {
	f := newPipelineFixture(t)
	em := f.detect(t, core.SeverityCritical)

	f.orchestrator.FailNext(core.NewPermanentError("network-orchestrator", 409, errors.New("slice conflict")))
	_, err := f.pipeline.Tick(context.Background(), em)
	require.Error(t, err)
	assert.Equal(t, core.PhaseDetected, em.Phase)
	assert.Empty(t, em.OrchestrationID, "no partial identifiers after a failed orchestration")

	_, err = f.pipeline.Tick(context.Background(), em)
	require.NoError(t, err)
	assert.Equal(t, core.PhaseMonitoring, em.Phase)
}

func TestPipeline_TickOnTerminalEmergency(t *testing.T) {
	f := newPipelineFixture(t)
	em := f.detect(t, core.SeverityCritical)

	_, err := f.manager.Resolve(em.ID)
	require.NoError(t, err)

	_, err = f.pipeline.Tick(context.Background(), em)
	var se *core.PipelineStateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "tick", se.Attempted)
}

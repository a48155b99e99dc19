package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/config"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/decision"
	"github.com/hupe1980/qosmesh/emergency"
	"github.com/hupe1980/qosmesh/internal/testutil"
)

func fastCaller() *collab.Caller {
	return collab.NewCaller(config.RetryConfig{Attempts: 1, Delay: time.Millisecond, Timeout: time.Second}, nil)
}

func execContext(s *core.TelemetrySnapshot) *core.ExecutionContext {
	return core.NewExecutionContext(s.SubjectID, s)
}

func TestQoSOptimizationAgent_RequestsAdjustmentForDegradedLink(t *testing.T) {
	engine := decision.NewDefaultEngine(0.7)
	orch := collab.NewInMemoryOrchestrator()
	a := NewQoSOptimizationAgent(engine, orch, fastCaller(), nil)

	s := testutil.NewSnapshotBuilder("subj-1").
		SignalStrength(40).
		LatencyMs(150).
		ThroughputMbps(5).
		QoSProfile(core.QoSProfileDefault).
		Build()
	ec := execContext(s)

	require.True(t, a.ShouldExecute(ec))
	out := a.Execute(context.Background(), ec)

	require.True(t, out.Success)
	require.Len(t, out.Proposals, 1)
	p := out.Proposals[0]
	assert.Equal(t, core.ProposalSuccess, p.Status, "proposal must be terminal before the outcome is returned")
	assert.NotEmpty(t, p.Result["qos_session_id"])
}

func TestQoSOptimizationAgent_HealthyLinkNoProposal(t *testing.T) {
	engine := decision.NewDefaultEngine(0.7)
	a := NewQoSOptimizationAgent(engine, collab.NewInMemoryOrchestrator(), fastCaller(), nil)

	s := testutil.NewSnapshotBuilder("subj-1").SignalStrength(85).Build()
	out := a.Execute(context.Background(), execContext(s))

	require.True(t, out.Success)
	assert.Empty(t, out.Proposals)
}

func TestQoSOptimizationAgent_SkipsWhenHealthcareAlreadyAdjusted(t *testing.T) {
	engine := decision.NewDefaultEngine(0.7)
	orch := collab.NewInMemoryOrchestrator()
	a := NewQoSOptimizationAgent(engine, orch, fastCaller(), nil)

	s := testutil.NewSnapshotBuilder("subj-1").
		SignalStrength(40).
		LatencyMs(150).
		ThroughputMbps(5).
		QoSProfile(core.QoSProfileDefault).
		Build()
	ec := execContext(s)

	prior := core.NewActionProposal(core.ActionQoSAdjustment, "network-orchestrator", "healthcare bound", nil)
	require.NoError(t, prior.Complete(nil))
	ec.RecordResult(IDHealthcareMonitoring,
		core.NewOutcome(IDHealthcareMonitoring).Success(0.9, "adjusted").Proposal(prior).Build())

	out := a.Execute(context.Background(), ec)
	require.True(t, out.Success)
	assert.Empty(t, out.Proposals, "a second adjustment in the same batch must be suppressed")
	assert.NotEmpty(t, out.Recommendations)
}

func TestHealthcareMonitoringAgent_LatencyBound(t *testing.T) {
	orch := collab.NewInMemoryOrchestrator()
	a := NewHealthcareMonitoringAgent(orch, fastCaller(), nil)

	within := testutil.NewSnapshotBuilder("subj-1").LatencyMs(40).Build()
	out := a.Execute(context.Background(), execContext(within))
	require.True(t, out.Success)
	assert.Empty(t, out.Proposals)

	above := testutil.NewSnapshotBuilder("subj-1").LatencyMs(60).Build()
	out = a.Execute(context.Background(), execContext(above))
	require.True(t, out.Success)
	require.Len(t, out.Proposals, 1)
	assert.Equal(t, core.ProposalSuccess, out.Proposals[0].Status)
	assert.Equal(t, "healthcare", out.Proposals[0].Parameters["use_case"])
}

func TestPublicSafetyAgent_RaisesEmergencyOnce(t *testing.T) {
	manager := emergency.NewManager(nil)
	a := NewPublicSafetyAgent(manager, nil)

	s := testutil.NewSnapshotBuilder("subj-1").
		Signal(core.EmergencySOS, core.SeverityCritical, core.RoleAmbulance).
		Location(48.1, 11.5, 10, time.Second).
		Build()

	require.True(t, a.ShouldExecute(execContext(s)))
	out := a.Execute(context.Background(), execContext(s))
	require.True(t, out.Success)
	require.Len(t, manager.Active(), 1)
	em := manager.Active()[0]
	assert.Equal(t, core.SeverityCritical, em.Severity)
	assert.Equal(t, em.ID, out.Metadata["emergency_id"])

	// A repeated signal while the emergency is active must not raise another.
	out = a.Execute(context.Background(), execContext(s))
	require.True(t, out.Success)
	assert.Len(t, manager.Active(), 1)
}

func TestDeviceSwapAgent_DetectsIdentifierChange(t *testing.T) {
	engine := decision.NewDefaultEngine(0.7)
	trust := collab.NewStaticTrustValidator()
	a := NewDeviceSwapAgent(engine, trust, fastCaller(), nil)

	first := testutil.NewSnapshotBuilder("subj-1").Device(true, false, 90, "imei-old").Build()
	out := a.Execute(context.Background(), execContext(first))
	require.True(t, out.Success)
	assert.Empty(t, out.Proposals, "first observation establishes the baseline")

	swapped := testutil.NewSnapshotBuilder("subj-1").Device(true, false, 90, "imei-new").Build()
	out = a.Execute(context.Background(), execContext(swapped))
	require.True(t, out.Success)
	require.Len(t, out.Proposals, 1)
	p := out.Proposals[0]
	assert.Equal(t, core.ActionDeviceSwapValidation, p.Type)
	assert.Equal(t, core.ProposalSuccess, p.Status)
	assert.Equal(t, "imei-old", p.Parameters["previous_imei"])
}

func TestDeviceSwapAgent_UntrustedSwapRecommendsSuspension(t *testing.T) {
	engine := decision.NewDefaultEngine(0.7)
	trust := collab.NewStaticTrustValidator()
	trust.SetFallback(core.TrustValidation{Status: core.TrustUntrusted, TrustScore: 0.1})
	a := NewDeviceSwapAgent(engine, trust, fastCaller(), nil)

	_ = a.Execute(context.Background(), execContext(
		testutil.NewSnapshotBuilder("subj-1").Device(true, false, 90, "imei-old").Build()))
	out := a.Execute(context.Background(), execContext(
		testutil.NewSnapshotBuilder("subj-1").Device(true, false, 90, "imei-new").Build()))

	require.True(t, out.Success)
	require.NotEmpty(t, out.Recommendations)
	assert.Contains(t, out.Recommendations[0], "trust validation")
}

func TestTransportationAgent_JitterTriggersBoost(t *testing.T) {
	orch := collab.NewInMemoryOrchestrator()
	a := NewTransportationAgent(orch, fastCaller(), nil)

	stable := testutil.NewSnapshotBuilder("subj-1").
		JitterMs(5).PacketLossPct(0.5).Location(48.1, 11.5, 10, time.Second).Build()
	out := a.Execute(context.Background(), execContext(stable))
	require.True(t, out.Success)
	assert.Empty(t, out.Proposals)

	churning := testutil.NewSnapshotBuilder("subj-1").
		JitterMs(18).PacketLossPct(0.5).Location(48.1, 11.5, 10, time.Second).Build()
	out = a.Execute(context.Background(), execContext(churning))
	require.True(t, out.Success)
	require.Len(t, out.Proposals, 1)
	assert.Equal(t, "transportation", out.Proposals[0].Parameters["use_case"])
	assert.Equal(t, core.ProposalSuccess, out.Proposals[0].Status)
}

func TestLocationVerificationAgent_VerifiesStaleFix(t *testing.T) {
	engine := decision.NewDefaultEngine(0.7)
	telemetry := collab.NewInMemoryTelemetry()
	a := NewLocationVerificationAgent(engine, telemetry, fastCaller(), nil)

	s := testutil.NewSnapshotBuilder("subj-1").Location(48.1, 11.5, 10, 150*time.Second).Build()
	telemetry.Set("subj-1", s)

	out := a.Execute(context.Background(), execContext(s))
	require.True(t, out.Success)
	require.Len(t, out.Proposals, 1)
	assert.Equal(t, core.ActionLocationVerification, out.Proposals[0].Type)
	assert.Equal(t, core.ProposalSuccess, out.Proposals[0].Status)
	assert.Equal(t, true, out.Proposals[0].Result["verified"])
}

func TestSmartCityAgent_RecommendsOnCongestion(t *testing.T) {
	assessor := collab.NewStaticNetworkAssessor()
	a := NewSmartCityAgent(assessor, fastCaller(), nil)

	s := testutil.NewSnapshotBuilder("subj-1").Location(48.1, 11.5, 10, time.Second).Build()

	out := a.Execute(context.Background(), execContext(s))
	require.True(t, out.Success)
	assert.Empty(t, out.Recommendations, "low congestion yields no advice")

	assessor.SetState(core.NetworkState{Congestion: core.CongestionSevere, QoSCapacity: core.CapacityExhausted})
	out = a.Execute(context.Background(), execContext(s))
	require.True(t, out.Success)
	assert.Len(t, out.Recommendations, 2)
}

func TestEmergencyConnectivityAgent_DrivesActiveEmergencies(t *testing.T) {
	manager := emergency.NewManager(nil)
	pipeline := emergency.NewPipeline(emergency.Dependencies{
		Trust:        collab.NewStaticTrustValidator(),
		Assessor:     collab.NewStaticNetworkAssessor(),
		Orchestrator: collab.NewInMemoryOrchestrator(),
		Feed:         collab.NewSimulatedMonitoringFeed(),
		Caller:       fastCaller(),
	}, config.Default())
	a := NewEmergencyConnectivityAgent(manager, pipeline, nil)

	s := testutil.NewSnapshotBuilder("subj-1").Build()
	assert.False(t, a.ShouldExecute(execContext(s)), "no active emergency, nothing to drive")

	em, err := manager.Detect("subj-1", "imei-1", core.EmergencySOS, core.SeverityCritical, core.RoleAmbulance,
		&core.Location{Latitude: 48.1, Longitude: 11.5})
	require.NoError(t, err)
	require.True(t, a.ShouldExecute(execContext(s)))

	out := a.Execute(context.Background(), execContext(s))
	require.True(t, out.Success)
	assert.Equal(t, core.PhaseMonitoring, em.Phase)
	assert.Equal(t, float64(1), out.Metrics["orchestrated"])
}

package qosmesh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qosmesh/agent"
	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/internal/testutil"
)

func newTestMesh(t *testing.T, optFns ...func(o *Options)) (*Mesh, *collab.InMemoryTelemetry) {
	t.Helper()
	telemetry := collab.NewInMemoryTelemetry()
	fns := append([]func(o *Options){func(o *Options) {
		o.Telemetry = telemetry
		o.Verifier = telemetry
	}}, optFns...)
	return New(fns...), telemetry
}

func TestMesh_DefaultAgentSet(t *testing.T) {
	m, _ := newTestMesh(t)

	agents := m.Agents()
	require.Len(t, agents, 8)
	for _, a := range agents {
		assert.True(t, a.Enabled)
	}

	status, err := m.Agent(agent.IDQoSOptimization)
	require.NoError(t, err)
	assert.Equal(t, 80, status.Priority)

	_, err = m.Agent("nope")
	assert.ErrorIs(t, err, core.ErrAgentNotFound)
}

func TestMesh_SkipDefaultAgents(t *testing.T) {
	m, _ := newTestMesh(t, func(o *Options) { o.SkipDefaultAgents = true })
	assert.Empty(t, m.Agents())
}

func TestMesh_BatchOverDegradedTelemetry(t *testing.T) {
	m, telemetry := newTestMesh(t)

	telemetry.Set("line-1", testutil.NewSnapshotBuilder("line-1").
		SignalStrength(40).
		LatencyMs(150).
		ThroughputMbps(5).
		QoSProfile(core.QoSProfileDefault).
		Location(52.5, 13.4, 25, 10*time.Second).
		Device(true, false, 80, "imei-1").
		Build())

	outcomes, err := m.ExecuteForSubject(context.Background(), "line-1")
	require.NoError(t, err)
	require.NotEmpty(t, outcomes)

	byAgent := make(map[string]*core.AgentOutcome, len(outcomes))
	for _, o := range outcomes {
		byAgent[o.AgentID] = o
	}

	// Healthcare outranks qos-optimization and files the adjustment; the
	// qos agent defers instead of fighting it.
	hc := byAgent[agent.IDHealthcareMonitoring]
	require.NotNil(t, hc)
	require.Len(t, hc.Proposals, 1)
	assert.Equal(t, core.ProposalSuccess, hc.Proposals[0].Status)

	qos := byAgent[agent.IDQoSOptimization]
	require.NotNil(t, qos)
	assert.Empty(t, qos.Proposals)

	// Every returned proposal is terminal.
	for _, o := range outcomes {
		for _, p := range o.Proposals {
			assert.True(t, p.Terminal(), "agent %s returned a pending proposal", o.AgentID)
		}
	}

	assert.Len(t, m.History("line-1"), len(outcomes))
}

func TestMesh_EmergencyLifecycleEndToEnd(t *testing.T) {
	m, telemetry := newTestMesh(t)

	telemetry.Set("ambulance-1", testutil.NewSnapshotBuilder("ambulance-1").
		SignalStrength(70).
		Location(48.1, 11.5, 15, 5*time.Second).
		Build())

	em, err := m.DetectEmergency("ambulance-1", "imei-1", core.EmergencySOS, core.SeverityCritical,
		core.RoleAmbulance, &core.Location{Latitude: 48.1, Longitude: 11.5})
	require.NoError(t, err)
	require.Len(t, m.ActiveEmergencies(), 1)

	_, err = m.ExecuteForSubject(context.Background(), "ambulance-1")
	require.NoError(t, err)

	current, err := m.Emergency(em.ID)
	require.NoError(t, err)
	assert.Equal(t, core.PhaseMonitoring, current.Phase)
	assert.NotEmpty(t, current.QoSSessionID)

	resolved, err := m.ResolveEmergency(em.ID)
	require.NoError(t, err)
	assert.Equal(t, core.EmergencyResolved, resolved.Status)
	assert.Empty(t, m.ActiveEmergencies())

	// Repeat resolve is a no-op; cancel after resolve is a conflict.
	_, err = m.ResolveEmergency(em.ID)
	require.NoError(t, err)
	_, err = m.CancelEmergency(em.ID)
	var se *core.PipelineStateError
	assert.ErrorAs(t, err, &se)

	// A later batch must not tick the terminal emergency.
	_, err = m.ExecuteForSubject(context.Background(), "ambulance-1")
	require.NoError(t, err)
}

func TestMesh_ResolveUnknownEmergency(t *testing.T) {
	m, _ := newTestMesh(t)

	_, err := m.ResolveEmergency("nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMesh_DisableAgentTakesEffect(t *testing.T) {
	m, telemetry := newTestMesh(t)
	telemetry.Set("line-1", testutil.NewSnapshotBuilder("line-1").
		Device(true, false, 80, "imei-1").
		Build())

	require.NoError(t, m.SetAgentEnabled(agent.IDDeviceSwap, false))

	outcomes, err := m.ExecuteForSubject(context.Background(), "line-1")
	require.NoError(t, err)
	for _, o := range outcomes {
		assert.NotEqual(t, agent.IDDeviceSwap, o.AgentID)
	}
}

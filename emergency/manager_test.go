package emergency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qosmesh/core"
)

func TestManager_DetectAndGet(t *testing.T) {
	m := NewManager(nil)

	em, err := m.Detect("subj-1", "imei-1", core.EmergencySOS, core.SeverityCritical, core.RoleAmbulance, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, em.ID)
	assert.Equal(t, core.EmergencyActive, em.Status)
	assert.Equal(t, core.PhaseDetected, em.Phase)
	assert.False(t, em.DetectedAt.IsZero())
	assert.True(t, em.ResolvedAt.IsZero())

	got, err := m.Get(em.ID)
	require.NoError(t, err)
	assert.Same(t, em, got)
}

func TestManager_DetectRequiresSubject(t *testing.T) {
	m := NewManager(nil)

	_, err := m.Detect("", "imei-1", core.EmergencySOS, core.SeverityLow, core.RoleOther, nil)
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "subjectID", ve.Field)
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(nil)

	_, err := m.Get("nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestManager_ResolveIsIdempotent(t *testing.T) {
	m := NewManager(nil)
	em, err := m.Detect("subj-1", "imei-1", core.EmergencySOS, core.SeverityHigh, core.RolePolice, nil)
	require.NoError(t, err)

	first, err := m.Resolve(em.ID)
	require.NoError(t, err)
	assert.Equal(t, core.EmergencyResolved, first.Status)
	resolvedAt := first.ResolvedAt
	require.False(t, resolvedAt.IsZero())

	second, err := m.Resolve(em.ID)
	require.NoError(t, err)
	assert.Equal(t, resolvedAt, second.ResolvedAt, "repeat resolve must not move the resolution timestamp")
}

func TestManager_CancelAfterResolveConflicts(t *testing.T) {
	m := NewManager(nil)
	em, err := m.Detect("subj-1", "imei-1", core.EmergencyManual, core.SeverityMedium, core.RoleOther, nil)
	require.NoError(t, err)

	_, err = m.Resolve(em.ID)
	require.NoError(t, err)

	_, err = m.Cancel(em.ID)
	var se *core.PipelineStateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, core.EmergencyResolved, se.From)
	assert.Equal(t, "cancel", se.Attempted)
}

func TestManager_TerminateUnknown(t *testing.T) {
	m := NewManager(nil)

	_, err := m.Resolve("nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = m.Cancel("nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestManager_ActiveFiltersTerminalAndOtherSubjects(t *testing.T) {
	m := NewManager(nil)

	a, _ := m.Detect("subj-1", "imei-1", core.EmergencySOS, core.SeverityCritical, core.RoleAmbulance, nil)
	b, _ := m.Detect("subj-1", "imei-1", core.EmergencyGeofence, core.SeverityLow, core.RoleOther, nil)
	c, _ := m.Detect("subj-2", "imei-2", core.EmergencySOS, core.SeverityHigh, core.RoleFire, nil)

	_, err := m.Cancel(b.ID)
	require.NoError(t, err)

	forSubj := m.ActiveForSubject("subj-1")
	require.Len(t, forSubj, 1)
	assert.Equal(t, a.ID, forSubj[0].ID)

	all := m.Active()
	require.Len(t, all, 2)
	// Detection order is preserved.
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, c.ID, all[1].ID)
}

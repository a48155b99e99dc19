package emergency

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/logging"
)

// Manager tracks emergency contexts from detection to a terminal status.
// Contexts are never deleted; terminal transitions happen exactly once and
// repeated resolve/cancel calls leave the resolution timestamp untouched.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	contexts map[string]*core.EmergencyContext
	logger   logging.Logger
}

// NewManager constructs an empty manager. A nil logger is replaced with a
// NoOpLogger.
func NewManager(logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Manager{contexts: make(map[string]*core.EmergencyContext), logger: logger}
}

// Detect creates a new ACTIVE emergency context for a subject.
func (m *Manager) Detect(subjectID, deviceID string, typ core.EmergencyType, sev core.Severity, role core.ResponderRole, loc *core.Location) (*core.EmergencyContext, error) {
	if subjectID == "" {
		return nil, core.NewValidationError("subjectID", "must not be empty")
	}
	em := &core.EmergencyContext{
		ID:         uuid.NewString(),
		SubjectID:  subjectID,
		DeviceID:   deviceID,
		Type:       typ,
		Severity:   sev,
		Role:       role,
		Location:   loc,
		Status:     core.EmergencyActive,
		Phase:      core.PhaseDetected,
		DetectedAt: time.Now(),
	}

	m.mu.Lock()
	m.contexts[em.ID] = em
	m.mu.Unlock()

	m.logger.Info("emergency detected", "emergency_id", em.ID, "subject_id", subjectID, "type", typ, "severity", sev)
	return em, nil
}

// Get returns the emergency context with the given id.
func (m *Manager) Get(id string) (*core.EmergencyContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	em, ok := m.contexts[id]
	if !ok {
		return nil, fmt.Errorf("emergency %s: %w", id, core.ErrNotFound)
	}
	return em, nil
}

// ActiveForSubject returns all ACTIVE emergencies for a subject in detection
// order.
func (m *Manager) ActiveForSubject(subjectID string) []*core.EmergencyContext {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*core.EmergencyContext
	for _, em := range m.contexts {
		if em.SubjectID == subjectID && em.Status == core.EmergencyActive {
			out = append(out, em)
		}
	}
	sortByDetection(out)
	return out
}

// Active returns all ACTIVE emergencies in detection order.
func (m *Manager) Active() []*core.EmergencyContext {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*core.EmergencyContext
	for _, em := range m.contexts {
		if em.Status == core.EmergencyActive {
			out = append(out, em)
		}
	}
	sortByDetection(out)
	return out
}

// Resolve transitions an emergency to RESOLVED. Resolving an already-RESOLVED
// context is a no-op (the resolution timestamp is not moved); resolving a
// CANCELLED context is a state conflict; an unknown id is not-found.
func (m *Manager) Resolve(id string) (*core.EmergencyContext, error) {
	return m.terminate(id, core.EmergencyResolved, "resolve")
}

// Cancel transitions an emergency to CANCELLED with the same idempotence
// rules as Resolve.
func (m *Manager) Cancel(id string) (*core.EmergencyContext, error) {
	return m.terminate(id, core.EmergencyCancelled, "cancel")
}

func (m *Manager) terminate(id string, target core.EmergencyStatus, verb string) (*core.EmergencyContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	em, ok := m.contexts[id]
	if !ok {
		return nil, fmt.Errorf("emergency %s: %w", id, core.ErrNotFound)
	}
	if em.Status == target {
		return em, nil // idempotent; ResolvedAt stays put
	}
	if em.Terminal() {
		return nil, &core.PipelineStateError{EmergencyID: id, From: em.Status, Attempted: verb}
	}
	em.Status = target
	em.ResolvedAt = time.Now()
	m.logger.Info("emergency terminated", "emergency_id", id, "status", target)
	return em, nil
}

func sortByDetection(ems []*core.EmergencyContext) {
	sort.Slice(ems, func(i, j int) bool { return ems[i].DetectedAt.Before(ems[j].DetectedAt) })
}

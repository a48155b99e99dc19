package orchestrator

import (
	"sync"

	"github.com/hupe1980/qosmesh/core"
)

// History is the append-only record of agent outcomes per subject. Outcomes
// are stored in insertion order and never mutated; readers always see a
// consistent prefix.
type History struct {
	mu        sync.RWMutex
	bySubject map[string][]*core.AgentOutcome
}

// NewHistory constructs an empty history.
func NewHistory() *History {
	return &History{bySubject: make(map[string][]*core.AgentOutcome)}
}

// Append records a batch's outcomes for a subject.
func (h *History) Append(subjectID string, outcomes ...*core.AgentOutcome) {
	if len(outcomes) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bySubject[subjectID] = append(h.bySubject[subjectID], outcomes...)
}

// Get returns a copy of the accumulated outcome list for a subject.
func (h *History) Get(subjectID string) []*core.AgentOutcome {
	h.mu.RLock()
	defer h.mu.RUnlock()
	stored := h.bySubject[subjectID]
	out := make([]*core.AgentOutcome, len(stored))
	copy(out, stored)
	return out
}

// Len returns how many outcomes a subject has accumulated.
func (h *History) Len(subjectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bySubject[subjectID])
}

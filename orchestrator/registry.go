package orchestrator

import (
	"fmt"
	"sync"

	"github.com/hupe1980/qosmesh/core"
)

// AgentStatus pairs a descriptor with its current enabled flag for listing.
type AgentStatus struct {
	core.AgentDescriptor
	Enabled bool
}

// registryEntry is the per-batch snapshot of one registered agent.
type registryEntry struct {
	agent   core.Agent
	desc    core.AgentDescriptor
	enabled bool
	order   int // registration order, the priority tie-break
}

// Registry maps agent ids to their implementations. Registration happens at
// process start; afterwards only the enabled flag mutates, behind the
// registry lock, so dispatch always reads a consistent snapshot.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	agents  map[string]core.Agent
	enabled map[string]bool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]core.Agent), enabled: make(map[string]bool)}
}

// Register adds an agent, enabled by default. Duplicate ids are rejected.
func (r *Registry) Register(a core.Agent) error {
	desc := a.Descriptor()
	if desc.ID == "" {
		return core.NewValidationError("agent.ID", "must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[desc.ID]; exists {
		return fmt.Errorf("agent %s already registered", desc.ID)
	}
	r.agents[desc.ID] = a
	r.enabled[desc.ID] = true
	r.order = append(r.order, desc.ID)
	return nil
}

// List returns the status of every registered agent in registration order.
func (r *Registry) List() []AgentStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AgentStatus, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, AgentStatus{AgentDescriptor: r.agents[id].Descriptor(), Enabled: r.enabled[id]})
	}
	return out
}

// Get returns a registered agent's status by id.
func (r *Registry) Get(id string) (AgentStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return AgentStatus{}, fmt.Errorf("agent %s: %w", id, core.ErrAgentNotFound)
	}
	return AgentStatus{AgentDescriptor: a.Descriptor(), Enabled: r.enabled[id]}, nil
}

// SetEnabled toggles an agent. Safe to call while dispatches are in flight:
// a running batch keeps the snapshot it started with and the next batch sees
// the new value.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[id]; !ok {
		return fmt.Errorf("agent %s: %w", id, core.ErrAgentNotFound)
	}
	r.enabled[id] = enabled
	return nil
}

// snapshot returns a consistent copy of all registrations for one batch.
func (r *Registry) snapshot() []registryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]registryEntry, 0, len(r.order))
	for i, id := range r.order {
		a := r.agents[id]
		out = append(out, registryEntry{agent: a, desc: a.Descriptor(), enabled: r.enabled[id], order: i})
	}
	return out
}

// Package qosmesh provides a high-level façade over the orchestrator, the
// decision engine and the emergency lifecycle pipeline, enabling rapid
// construction of autonomous network-quality meshes. Most applications
// interact with this package by:
//  1. Creating a Mesh via New() (optionally overriding the in-memory collaborators)
//  2. Dispatching batches (ExecuteForSubject) or watching subjects periodically
//  3. Raising and resolving emergencies through the emergency operations
//
// The façade delegates dispatching to orchestrator.Orchestrator and the
// emergency lifecycle to emergency.Pipeline while keeping setup ergonomics
// concise. All defaults are safe for local development and testing;
// production deployments supply real collaborator adapters and a structured
// logger.
package qosmesh

import (
	"context"

	"github.com/hupe1980/qosmesh/agent"
	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/config"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/decision"
	"github.com/hupe1980/qosmesh/emergency"
	"github.com/hupe1980/qosmesh/logging"
	"github.com/hupe1980/qosmesh/metrics"
	"github.com/hupe1980/qosmesh/orchestrator"
)

// Options configures the Mesh instance. Unset collaborators default to the
// in-memory implementations from the collab package.
type Options struct {
	// Config contains all mesh tuning parameters.
	Config config.Config

	// Collaborators (default to in-memory implementations if not provided)
	Telemetry    core.TelemetryProvider
	Verifier     core.LocationVerifier
	Trust        core.TrustValidator
	Assessor     core.NetworkStateAssessor
	Orchestrator core.NetworkOrchestrator
	Feed         core.MonitoringFeed

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Recorder publishes Prometheus metrics; nil disables instrumentation.
	Recorder *metrics.Recorder

	// SkipDefaultAgents leaves the registry empty so callers register their
	// own agent set.
	SkipDefaultAgents bool
}

// Mesh is the high-level façade aggregating the dispatcher, the emergency
// services and the interval scheduler.
type Mesh struct {
	opts      Options
	engine    *decision.Engine
	orch      *orchestrator.Orchestrator
	manager   *emergency.Manager
	pipeline  *emergency.Pipeline
	scheduler *orchestrator.Scheduler
}

// New creates a Mesh with optional overrides. Any unset collaborator is
// initialized with an in-memory implementation and the standard agent set is
// registered unless SkipDefaultAgents is set.
func New(optFns ...func(o *Options)) *Mesh {
	inMem := collab.NewInMemoryTelemetry()
	opts := Options{
		Config:       config.Default(),
		Telemetry:    inMem,
		Verifier:     inMem,
		Trust:        collab.NewStaticTrustValidator(),
		Assessor:     collab.NewStaticNetworkAssessor(),
		Orchestrator: collab.NewInMemoryOrchestrator(),
		Feed:         collab.NewSimulatedMonitoringFeed(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	caller := collab.NewCaller(opts.Config.Retry, opts.Logger)
	engine := decision.NewDefaultEngine(opts.Config.DecisionThreshold)
	manager := emergency.NewManager(opts.Logger)
	pipeline := emergency.NewPipeline(emergency.Dependencies{
		Trust:        opts.Trust,
		Assessor:     opts.Assessor,
		Orchestrator: opts.Orchestrator,
		Feed:         opts.Feed,
		Caller:       caller,
		Logger:       opts.Logger,
		Recorder:     opts.Recorder,
	}, opts.Config)

	orch := orchestrator.New(opts.Telemetry, func(o *orchestrator.Options) {
		o.Config = opts.Config
		o.Caller = caller
		o.Logger = opts.Logger
		o.Recorder = opts.Recorder
	})

	m := &Mesh{
		opts:      opts,
		engine:    engine,
		orch:      orch,
		manager:   manager,
		pipeline:  pipeline,
		scheduler: orchestrator.NewScheduler(orch, opts.Logger),
	}

	if !opts.SkipDefaultAgents {
		for _, a := range []core.Agent{
			agent.NewEmergencyConnectivityAgent(manager, pipeline, opts.Logger),
			agent.NewPublicSafetyAgent(manager, opts.Logger),
			agent.NewHealthcareMonitoringAgent(opts.Orchestrator, caller, opts.Logger),
			agent.NewQoSOptimizationAgent(engine, opts.Orchestrator, caller, opts.Logger),
			agent.NewLocationVerificationAgent(engine, opts.Verifier, caller, opts.Logger),
			agent.NewDeviceSwapAgent(engine, opts.Trust, caller, opts.Logger),
			agent.NewTransportationAgent(opts.Orchestrator, caller, opts.Logger),
			agent.NewSmartCityAgent(opts.Assessor, caller, opts.Logger),
		} {
			_ = orch.Register(a)
		}
	}
	return m
}

// RegisterAgent adds an agent to the underlying registry.
func (m *Mesh) RegisterAgent(a core.Agent) error { return m.orch.Register(a) }

// ExecuteForSubject runs one agent batch for a subject.
func (m *Mesh) ExecuteForSubject(ctx context.Context, subjectID string) ([]*core.AgentOutcome, error) {
	return m.orch.ExecuteForSubject(ctx, subjectID)
}

// ExecuteForSubjects runs batches for many subjects concurrently.
func (m *Mesh) ExecuteForSubjects(ctx context.Context, subjectIDs []string) (map[string][]*core.AgentOutcome, error) {
	return m.orch.ExecuteForSubjects(ctx, subjectIDs)
}

// Agents lists all registered agents with their enabled flags.
func (m *Mesh) Agents() []orchestrator.AgentStatus { return m.orch.Agents() }

// Agent returns one registered agent's status.
func (m *Mesh) Agent(id string) (orchestrator.AgentStatus, error) { return m.orch.Agent(id) }

// SetAgentEnabled toggles an agent; safe under concurrent dispatch.
func (m *Mesh) SetAgentEnabled(id string, enabled bool) error { return m.orch.SetEnabled(id, enabled) }

// History returns the accumulated outcomes for a subject.
func (m *Mesh) History(subjectID string) []*core.AgentOutcome { return m.orch.History(subjectID) }

// DetectEmergency raises a new ACTIVE emergency for a subject.
func (m *Mesh) DetectEmergency(subjectID, deviceID string, typ core.EmergencyType, sev core.Severity, role core.ResponderRole, loc *core.Location) (*core.EmergencyContext, error) {
	return m.manager.Detect(subjectID, deviceID, typ, sev, role, loc)
}

// Emergency returns an emergency context by id.
func (m *Mesh) Emergency(id string) (*core.EmergencyContext, error) { return m.manager.Get(id) }

// ActiveEmergencies returns all ACTIVE emergencies.
func (m *Mesh) ActiveEmergencies() []*core.EmergencyContext { return m.manager.Active() }

// ResolveEmergency transitions an emergency to RESOLVED and stops its
// monitoring subscription. Idempotent in effect.
func (m *Mesh) ResolveEmergency(id string) (*core.EmergencyContext, error) {
	em, err := m.manager.Resolve(id)
	if err != nil {
		return nil, err
	}
	m.pipeline.StopMonitoring(id)
	return em, nil
}

// CancelEmergency transitions an emergency to CANCELLED and stops its
// monitoring subscription. Idempotent in effect.
func (m *Mesh) CancelEmergency(id string) (*core.EmergencyContext, error) {
	em, err := m.manager.Cancel(id)
	if err != nil {
		return nil, err
	}
	m.pipeline.StopMonitoring(id)
	return em, nil
}

// Watch schedules periodic batch dispatch for a subject.
func (m *Mesh) Watch(ctx context.Context, subjectID string) error {
	return m.scheduler.Watch(ctx, subjectID)
}

// Unwatch removes a subject's periodic dispatch.
func (m *Mesh) Unwatch(subjectID string) { m.scheduler.Unwatch(subjectID) }

// StartScheduler begins periodic dispatch for watched subjects.
func (m *Mesh) StartScheduler() { m.scheduler.Start() }

// StopScheduler halts periodic dispatch, waiting for in-flight ticks.
func (m *Mesh) StopScheduler() { m.scheduler.Stop() }

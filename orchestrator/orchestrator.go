package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/qosmesh/collab"
	"github.com/hupe1980/qosmesh/config"
	"github.com/hupe1980/qosmesh/core"
	"github.com/hupe1980/qosmesh/logging"
	"github.com/hupe1980/qosmesh/metrics"
)

// Options configures an Orchestrator. Telemetry is required; everything else
// has a safe default.
type Options struct {
	Config   config.Config
	Caller   *collab.Caller
	Logger   logging.Logger
	Recorder *metrics.Recorder
}

// Orchestrator owns the agent registry and runs agent batches per subject.
// Batches for distinct subjects run concurrently; batches for one subject are
// serialized.
type Orchestrator struct {
	registry  *Registry
	history   *History
	telemetry core.TelemetryProvider
	caller    *collab.Caller
	cfg       config.Config
	logger    logging.Logger
	recorder  *metrics.Recorder

	subjectLocks sync.Map // subjectID -> *sync.Mutex
}

// New constructs an Orchestrator over a telemetry provider.
func New(telemetry core.TelemetryProvider, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{Config: config.Default(), Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Caller == nil {
		opts.Caller = collab.NewCaller(opts.Config.Retry, opts.Logger)
	}
	return &Orchestrator{
		registry:  NewRegistry(),
		history:   NewHistory(),
		telemetry: telemetry,
		caller:    opts.Caller,
		cfg:       opts.Config,
		logger:    opts.Logger,
		recorder:  opts.Recorder,
	}
}

// Register adds an agent to the registry.
func (o *Orchestrator) Register(a core.Agent) error { return o.registry.Register(a) }

// Agents lists all registered agents with their enabled flags.
func (o *Orchestrator) Agents() []AgentStatus { return o.registry.List() }

// Agent returns one registered agent's status.
func (o *Orchestrator) Agent(id string) (AgentStatus, error) { return o.registry.Get(id) }

// SetEnabled toggles an agent; safe under concurrent dispatch.
func (o *Orchestrator) SetEnabled(id string, enabled bool) error {
	return o.registry.SetEnabled(id, enabled)
}

// History returns a copy of the accumulated outcomes for a subject.
func (o *Orchestrator) History(subjectID string) []*core.AgentOutcome {
	return o.history.Get(subjectID)
}

func (o *Orchestrator) lockFor(subjectID string) *sync.Mutex {
	mu, _ := o.subjectLocks.LoadOrStore(subjectID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ExecuteForSubject runs one agent batch for a subject and returns the
// batch's outcomes. When telemetry is unavailable no agents run and an empty
// result is returned without error. The call blocks until any in-flight
// batch for the same subject finishes.
func (o *Orchestrator) ExecuteForSubject(ctx context.Context, subjectID string) ([]*core.AgentOutcome, error) {
	if subjectID == "" {
		return nil, core.NewValidationError("subjectID", "must not be empty")
	}
	mu := o.lockFor(subjectID)
	mu.Lock()
	defer mu.Unlock()
	return o.executeLocked(ctx, subjectID)
}

// TryExecuteForSubject runs a batch unless one is already in flight for the
// subject, in which case it reports skipped=true. Used by the interval
// scheduler so an overrunning tick is skipped, never queued.
func (o *Orchestrator) TryExecuteForSubject(ctx context.Context, subjectID string) (outcomes []*core.AgentOutcome, skipped bool, err error) {
	if subjectID == "" {
		return nil, false, core.NewValidationError("subjectID", "must not be empty")
	}
	mu := o.lockFor(subjectID)
	if !mu.TryLock() {
		return nil, true, nil
	}
	defer mu.Unlock()
	outcomes, err = o.executeLocked(ctx, subjectID)
	return outcomes, false, err
}

func (o *Orchestrator) executeLocked(ctx context.Context, subjectID string) ([]*core.AgentOutcome, error) {
	var snapshot *core.TelemetrySnapshot
	err := o.caller.Do(ctx, "telemetry-provider", func(ctx context.Context) error {
		var callErr error
		snapshot, callErr = o.telemetry.Collect(ctx, subjectID)
		return callErr
	})
	if err != nil || snapshot == nil {
		// No telemetry means no basis to act; the batch is empty, not failed.
		o.logger.Warn("telemetry unavailable; skipping batch", "subject_id", subjectID, "error", err)
		return []*core.AgentOutcome{}, nil
	}

	ec := core.NewExecutionContext(subjectID, snapshot)

	eligible := make([]registryEntry, 0)
	for _, e := range o.registry.snapshot() {
		if e.enabled && e.agent.ShouldExecute(ec) {
			eligible = append(eligible, e)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].desc.Priority != eligible[j].desc.Priority {
			return eligible[i].desc.Priority > eligible[j].desc.Priority
		}
		return eligible[i].order < eligible[j].order
	})
	if len(eligible) > o.cfg.MaxAgentsPerBatch {
		eligible = eligible[:o.cfg.MaxAgentsPerBatch]
	}

	outcomes := make([]*core.AgentOutcome, 0, len(eligible))
	for _, e := range eligible {
		start := time.Now()
		outcome := o.safeExecute(ctx, e, ec)
		ec.RecordResult(e.desc.ID, outcome)
		outcomes = append(outcomes, outcome)

		if !outcome.Success {
			o.recorder.AgentFailed(e.desc.ID)
		}
		o.logger.Info("agent executed", "subject_id", subjectID, "agent_id", e.desc.ID,
			"success", outcome.Success, "confidence", outcome.Confidence, "duration", time.Since(start))
	}

	o.history.Append(subjectID, outcomes...)
	o.recorder.BatchDispatched()
	return outcomes, nil
}

// safeExecute is the orchestrator's second line of defense: agents already
// guard their own boundary, but a panic escaping one must still not abort
// the batch.
func (o *Orchestrator) safeExecute(ctx context.Context, e registryEntry, ec *core.ExecutionContext) (out *core.AgentOutcome) {
	defer func() {
		if r := recover(); r != nil {
			err := &core.InternalAgentError{AgentID: e.desc.ID, Err: fmt.Errorf("panic: %v", r)}
			o.logger.Error("agent panicked past its boundary", "agent_id", e.desc.ID, "panic", r)
			out = core.FailedOutcome(e.desc.ID, err, "agent panicked")
		}
	}()
	out = e.agent.Execute(ctx, ec)
	if out == nil {
		out = core.FailedOutcome(e.desc.ID, &core.InternalAgentError{AgentID: e.desc.ID, Err: fmt.Errorf("nil outcome")}, "agent returned no outcome")
	}
	return out
}

// ExecuteForSubjects dispatches batches for many subjects with bounded
// concurrency and returns the outcomes per subject. Individual subject
// failures are reported in the error but do not stop other subjects.
func (o *Orchestrator) ExecuteForSubjects(ctx context.Context, subjectIDs []string) (map[string][]*core.AgentOutcome, error) {
	var mu sync.Mutex
	results := make(map[string][]*core.AgentOutcome, len(subjectIDs))

	// No errgroup.WithContext here: a failing subject must not cancel the
	// sibling batches, only surface in the returned error.
	var g errgroup.Group
	g.SetLimit(o.cfg.MaxConcurrentSubjects)
	for _, id := range subjectIDs {
		g.Go(func() error {
			outcomes, err := o.ExecuteForSubject(ctx, id)
			if err != nil {
				return fmt.Errorf("subject %s: %w", id, err)
			}
			mu.Lock()
			results[id] = outcomes
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

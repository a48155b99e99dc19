package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hupe1980/qosmesh/logging"
)

// Scheduler drives periodic batch dispatch for watched subjects using cron
// "@every" entries derived from the registered agents' intervals. One entry
// exists per (subject, distinct interval) pair; when it fires, the batch is
// attempted with TryExecuteForSubject so a tick that outlives its interval is
// skipped rather than stacking up behind the in-flight one.
type Scheduler struct {
	orch   *Orchestrator
	cron   *cron.Cron
	logger logging.Logger

	mu      sync.Mutex
	entries map[string][]cron.EntryID
}

// NewScheduler constructs a stopped scheduler over an orchestrator.
func NewScheduler(orch *Orchestrator, logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Scheduler{
		orch:    orch,
		cron:    cron.New(),
		logger:  logger,
		entries: make(map[string][]cron.EntryID),
	}
}

// Watch registers periodic dispatch for a subject. Intervals are collected
// from the currently registered agents; watching the same subject again
// replaces its entries.
func (s *Scheduler) Watch(ctx context.Context, subjectID string) error {
	intervals := map[time.Duration]struct{}{}
	for _, st := range s.orch.Agents() {
		if st.Interval > 0 {
			intervals[st.Interval] = struct{}{}
		}
	}
	if len(intervals) == 0 {
		return fmt.Errorf("no registered agent declares an interval")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(subjectID)

	ids := make([]cron.EntryID, 0, len(intervals))
	for interval := range intervals {
		id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
			s.tick(ctx, subjectID)
		})
		if err != nil {
			return fmt.Errorf("schedule subject %s: %w", subjectID, err)
		}
		ids = append(ids, id)
	}
	s.entries[subjectID] = ids
	return nil
}

// Unwatch removes a subject's periodic dispatch.
func (s *Scheduler) Unwatch(subjectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(subjectID)
}

func (s *Scheduler) removeLocked(subjectID string) {
	for _, id := range s.entries[subjectID] {
		s.cron.Remove(id)
	}
	delete(s.entries, subjectID)
}

func (s *Scheduler) tick(ctx context.Context, subjectID string) {
	_, skipped, err := s.orch.TryExecuteForSubject(ctx, subjectID)
	if skipped {
		s.logger.Debug("tick skipped; previous batch still in flight", "subject_id", subjectID)
		return
	}
	if err != nil {
		s.logger.Error("scheduled batch failed", "subject_id", subjectID, "error", err)
	}
}

// Start begins firing entries. Idempotent.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for in-flight ticks to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

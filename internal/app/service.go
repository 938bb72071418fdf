// Package service provides the calendar service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/daybook/internal/adapters/eventfile"
	"github.com/okian/daybook/internal/adapters/ics"
	"github.com/okian/daybook/internal/adapters/mq/queue"
	"github.com/okian/daybook/internal/adapters/mq/worker"
	"github.com/okian/daybook/internal/adapters/repository"
	"github.com/okian/daybook/internal/domain/dedupe"
	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/internal/domain/recurrence"
	"github.com/okian/daybook/pkg/logger"
	"github.com/okian/daybook/pkg/metrics"
)

const stopTimeout = 5 * time.Second

// Service owns the event store and its persistence: loading on start,
// write-behind saves on every change and a scheduled iCalendar export.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	tracker dedupe.Tracker
	queue   *queue.InMemoryQueue
	saver   *worker.Saver
	cron    *cron.Cron

	// Configuration
	eventsFile    string
	outputFile    string
	icsFile       string
	icsSchedule   string
	saveQueueSize int
	dedupeSize    int
	maxAgendaDays int
	now           func() time.Time

	// State
	started bool
	loaded  bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		eventsFile:    "events.txt",
		outputFile:    "output.txt",
		icsFile:       "calendar.ics",
		icsSchedule:   "@every 5m",
		saveQueueSize: 64,
		dedupeSize:    10_000,
		maxAgendaDays: 366,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the events file and starts the saver and the export schedule.
// The file is read on the first successful Start only.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting calendar service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(
			repository.WithLogger(s.logger.Named("store")),
			repository.WithObserver(s.Changed),
		)
	}
	if s.tracker == nil {
		s.tracker = dedupe.NewTracker(dedupe.WithMaxSize(s.dedupeSize))
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.saveQueueSize))

	// The store outlives Stop, so a restart must not load the file again.
	if s.eventsFile != "" && !s.loaded {
		events, err := eventfile.Load(ctx, s.logger, s.eventsFile)
		if err != nil {
			return fmt.Errorf("service: load %s: %w", s.eventsFile, err)
		}
		s.store.AddAll(ctx, events)
	}
	s.loaded = true

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	if s.outputFile != "" {
		s.saver = worker.NewSaver(s.queue, s.store, s.save, worker.WithLogger(s.logger))
		go s.saver.Run(runCtx)
	}

	if s.icsFile != "" && s.icsSchedule != "" {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(s.icsSchedule, func() { _ = s.exportICS(runCtx) }); err != nil {
			cancel()
			return fmt.Errorf("service: ics schedule %q: %w", s.icsSchedule, err)
		}
		s.cron.Start()
	}

	s.started = true
	s.logger.Info(ctx, "calendar service started",
		logger.String("outputFile", s.outputFile),
		logger.String("icsFile", s.icsFile),
		logger.String("icsSchedule", s.icsSchedule),
		logger.Int("saveQueueSize", s.saveQueueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop halts the schedule, drains the saver and writes the final snapshot.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping calendar service...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	_ = s.queue.Close()
	if s.saver != nil {
		if err := s.saver.Wait(ctx); err != nil {
			s.logger.Warn(ctx, "saver did not drain", logger.Error(err))
		}
		if err := s.saver.Flush(ctx); err != nil {
			s.logger.Error(ctx, "final save failed", logger.Error(err))
		}
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "calendar service stopped")
}

// Changed is the store observer: it asks the saver for a snapshot without
// blocking the caller.
func (s *Service) Changed(ctx context.Context) {
	q := s.queue
	if q == nil {
		return
	}
	q.Enqueue(ctx, queue.Request{Reason: "store changed", At: s.now()})
}

func (s *Service) save(_ context.Context, events []model.Event) error {
	return eventfile.Save(s.outputFile, events)
}

func (s *Service) exportICS(ctx context.Context) error {
	if err := ics.WriteFile(s.icsFile, s.store.All(ctx), s.now().UTC()); err != nil {
		s.logger.Error(ctx, "ics export failed", logger.String("file", s.icsFile), logger.Error(err))
		return err
	}
	s.logger.Debug(ctx, "ics exported", logger.String("file", s.icsFile))
	return nil
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Store exposes the underlying store; nil before Start.
func (s *Service) Store() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// OccurrencesOn lists the occurrences on d ordered by start time.
func (s *Service) OccurrencesOn(ctx context.Context, d model.Date) []model.Occurrence {
	return s.store.OccurrencesOn(ctx, d)
}

// HasConflict reports whether r overlaps any occurrence on d.
func (s *Service) HasConflict(ctx context.Context, d model.Date, r model.TimeRange) bool {
	return s.store.HasConflict(ctx, d, r)
}

// CreateOneTime adds a one-time event through the conflict gate. A non-empty
// requestID makes the call idempotent: a repeated ID returns the ID of the
// event created first and duplicate=true. A repeat that arrives while the
// first call is still running fails with dedupe.ErrInFlight.
func (s *Service) CreateOneTime(ctx context.Context, requestID, name string, d model.Date, r model.TimeRange) (id string, duplicate bool, err error) {
	if !s.running() {
		return "", false, ErrNotStarted
	}
	if requestID != "" {
		switch prev, status := s.tracker.Claim(ctx, requestID); status {
		case dedupe.Completed:
			metrics.RecordDuplicateCreate()
			s.logger.Debug(ctx, "duplicate create request", logger.String("requestID", requestID))
			return prev, true, nil
		case dedupe.Pending:
			s.logger.Debug(ctx, "create request in flight", logger.String("requestID", requestID))
			return "", false, fmt.Errorf("service: request %q: %w", requestID, dedupe.ErrInFlight)
		}
	}

	ev := model.NewOneTime(name, d, r)
	if err := s.store.AddOneTime(ctx, ev); err != nil {
		if requestID != "" {
			s.tracker.Release(ctx, requestID)
		}
		return "", false, err
	}
	if requestID != "" {
		s.tracker.Complete(ctx, requestID, ev.ID().String())
	}
	return ev.ID().String(), false, nil
}

// DeleteOneTime removes the first one-time event on d named name.
func (s *Service) DeleteOneTime(ctx context.Context, d model.Date, name string) bool {
	return s.store.DeleteOneTimeByDateAndName(ctx, d, name)
}

// DeleteAllOn removes every one-time event on d.
func (s *Service) DeleteAllOn(ctx context.Context, d model.Date) int {
	return s.store.DeleteAllOneTimeOn(ctx, d)
}

// DeleteRecurring removes every recurring event named name.
func (s *Service) DeleteRecurring(ctx context.Context, name string) int {
	return s.store.DeleteRecurringByName(ctx, name)
}

// ListOneTime returns one-time events ordered by date then start.
func (s *Service) ListOneTime(ctx context.Context) []model.Event {
	return s.store.ListOneTime(ctx)
}

// ListRecurring returns recurring events ordered by window start.
func (s *Service) ListRecurring(ctx context.Context) []model.Event {
	return s.store.ListRecurring(ctx)
}

// Agenda expands all events over the inclusive window [from, to].
func (s *Service) Agenda(ctx context.Context, from, to model.Date) ([]model.Occurrence, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrAgendaWindow, to, from)
	}
	if n := from.DaysUntil(to) + 1; n > s.maxAgendaDays {
		return nil, fmt.Errorf("%w: %d days exceeds %d", ErrAgendaWindow, n, s.maxAgendaDays)
	}
	return recurrence.Agenda(s.store.All(ctx), from, to)
}

// WriteICS encodes every event as an iCalendar stream.
func (s *Service) WriteICS(ctx context.Context, w io.Writer) error {
	if !s.running() {
		return ErrNotStarted
	}
	return ics.Encode(w, s.store.All(ctx), s.now().UTC())
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"eventsFile":    s.eventsFile,
		"outputFile":    s.outputFile,
		"icsFile":       s.icsFile,
		"icsSchedule":   s.icsSchedule,
		"saveQueueSize": s.saveQueueSize,
		"dedupeSize":    s.dedupeSize,
		"maxAgendaDays": s.maxAgendaDays,
	}

	if s.started {
		oneTime := len(s.store.ListOneTime(ctx))
		recurring := len(s.store.ListRecurring(ctx))
		queueLen := s.queue.Len()

		stats["oneTimeEvents"] = oneTime
		stats["recurringEvents"] = recurring
		stats["saveQueueLength"] = queueLen
		stats["requestIDs"] = s.tracker.Size()

		metrics.SetEventCounts(oneTime, recurring)
		metrics.UpdateSaveQueueDepth(queueLen)
	}
	return stats
}

package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/pkg/logger"
	"github.com/okian/daybook/pkg/metrics"
)

// Operation labels for latency and delete metrics.
const (
	opAddAll        = "add_all"
	opAddOneTime    = "add_one_time"
	opOccurrencesOn = "occurrences_on"
	opHasConflict   = "has_conflict"
	opDeleteByName  = "delete_one_time"
	opDeleteAllOn   = "delete_all_on_date"
	opDeleteRecur   = "delete_recurring"
	opList          = "list"
)

// MemoryStore is a slice-backed Store guarded by a single RWMutex. Every
// mutation, including the check-then-insert of AddOneTime, holds the write
// lock for its whole duration.
type MemoryStore struct {
	mu     sync.RWMutex
	events []model.Event

	log       logger.Logger
	observers []Observer
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// AddAll implements Store.AddAll.
func (s *MemoryStore) AddAll(ctx context.Context, events []model.Event) {
	defer observe(opAddAll, time.Now())
	if len(events) == 0 {
		return
	}

	s.mu.Lock()
	s.events = append(s.events, events...)
	s.mu.Unlock()

	s.log.Debug(ctx, "events added", logger.Int("count", len(events)))
	s.changed(ctx)
}

// AddOneTime implements Store.AddOneTime.
func (s *MemoryStore) AddOneTime(ctx context.Context, ev model.Event) error {
	defer observe(opAddOneTime, time.Now())
	if !ev.IsOneTime() {
		metrics.RecordAdd(metrics.OutcomeInvalid)
		return fmt.Errorf("%w: %q", ErrNotOneTime, ev.Name())
	}

	s.mu.Lock()
	if other, ok := s.conflictLocked(ev.Date(), ev.Time()); ok {
		s.mu.Unlock()
		metrics.RecordAdd(metrics.OutcomeConflict)
		s.log.Info(ctx, "event rejected",
			logger.String("name", ev.Name()),
			logger.Stringer("date", ev.Date()),
			logger.String("conflicts_with", other.Name()))
		return fmt.Errorf("%w: %q overlaps %q", ErrConflict, ev.Name(), other.Name())
	}
	s.events = append(s.events, ev)
	s.mu.Unlock()

	metrics.RecordAdd(metrics.OutcomeOK)
	s.log.Debug(ctx, "event added", logger.String("name", ev.Name()), logger.Stringer("date", ev.Date()))
	s.changed(ctx)
	return nil
}

// conflictLocked returns the first event occurring on d whose range overlaps r.
func (s *MemoryStore) conflictLocked(d model.Date, r model.TimeRange) (model.Event, bool) {
	for _, e := range s.events {
		if t, ok := e.TimeOn(d).Get(); ok && t.Conflicts(r) {
			return e, true
		}
	}
	return model.Event{}, false
}

// OccurrencesOn implements Store.OccurrencesOn.
func (s *MemoryStore) OccurrencesOn(_ context.Context, d model.Date) []model.Occurrence {
	defer observe(opOccurrencesOn, time.Now())

	s.mu.RLock()
	out := make([]model.Occurrence, 0)
	for _, e := range s.events {
		if o, ok := e.On(d).Get(); ok {
			out = append(out, o)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.Occurrence) int {
		return cmp.Compare(a.Time.Start, b.Time.Start)
	})
	return out
}

// HasConflict implements Store.HasConflict.
func (s *MemoryStore) HasConflict(_ context.Context, d model.Date, r model.TimeRange) bool {
	defer observe(opHasConflict, time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.conflictLocked(d, r)
	return ok
}

// DeleteOneTimeByDateAndName implements Store.DeleteOneTimeByDateAndName.
func (s *MemoryStore) DeleteOneTimeByDateAndName(ctx context.Context, d model.Date, name string) bool {
	defer observe(opDeleteByName, time.Now())

	s.mu.Lock()
	idx := slices.IndexFunc(s.events, func(e model.Event) bool {
		return e.IsOneTime() && e.Date() == d && strings.EqualFold(e.Name(), name)
	})
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.events = slices.Delete(s.events, idx, idx+1)
	s.mu.Unlock()

	metrics.RecordDeleted(opDeleteByName, 1)
	s.log.Debug(ctx, "event deleted", logger.String("name", name), logger.Stringer("date", d))
	s.changed(ctx)
	return true
}

// DeleteAllOneTimeOn implements Store.DeleteAllOneTimeOn.
func (s *MemoryStore) DeleteAllOneTimeOn(ctx context.Context, d model.Date) int {
	defer observe(opDeleteAllOn, time.Now())
	n := s.removeWhere(func(e model.Event) bool {
		return e.IsOneTime() && e.Date() == d
	})
	if n > 0 {
		metrics.RecordDeleted(opDeleteAllOn, n)
		s.log.Debug(ctx, "events deleted", logger.Stringer("date", d), logger.Int("count", n))
		s.changed(ctx)
	}
	return n
}

// DeleteRecurringByName implements Store.DeleteRecurringByName.
func (s *MemoryStore) DeleteRecurringByName(ctx context.Context, name string) int {
	defer observe(opDeleteRecur, time.Now())
	n := s.removeWhere(func(e model.Event) bool {
		return e.IsRecurring() && strings.EqualFold(e.Name(), name)
	})
	if n > 0 {
		metrics.RecordDeleted(opDeleteRecur, n)
		s.log.Debug(ctx, "recurring events deleted", logger.String("name", name), logger.Int("count", n))
		s.changed(ctx)
	}
	return n
}

// removeWhere rebuilds the backing slice without the matching events.
func (s *MemoryStore) removeWhere(match func(model.Event) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	n := len(s.events) - len(kept)
	if n > 0 {
		s.events = kept
	}
	return n
}

// ListOneTime implements Store.ListOneTime.
func (s *MemoryStore) ListOneTime(_ context.Context) []model.Event {
	defer observe(opList, time.Now())
	out := s.filter(model.Event.IsOneTime)
	slices.SortStableFunc(out, func(a, b model.Event) int {
		if c := a.Date().Compare(b.Date()); c != 0 {
			return c
		}
		return cmp.Compare(a.Time().Start, b.Time().Start)
	})
	return out
}

// ListRecurring implements Store.ListRecurring.
func (s *MemoryStore) ListRecurring(_ context.Context) []model.Event {
	defer observe(opList, time.Now())
	out := s.filter(model.Event.IsRecurring)
	slices.SortStableFunc(out, func(a, b model.Event) int {
		return a.From().Compare(b.From())
	})
	return out
}

// All implements Store.All.
func (s *MemoryStore) All(_ context.Context) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Counts returns the number of one-time and recurring events.
func (s *MemoryStore) Counts(_ context.Context) (oneTime, recurring int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.IsOneTime() {
			oneTime++
		} else {
			recurring++
		}
	}
	return oneTime, recurring
}

func (s *MemoryStore) filter(keep func(model.Event) bool) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// changed refreshes gauges and notifies observers. It must run without the lock.
func (s *MemoryStore) changed(ctx context.Context) {
	metrics.SetEventCounts(s.Counts(ctx))
	for _, fn := range s.observers {
		fn(ctx)
	}
}

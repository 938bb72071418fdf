// Package repository defines the calendar event store.
package repository

import (
	"context"

	"github.com/okian/daybook/internal/domain/model"
)

// Store holds calendar events and answers date queries over them.
// Implementations must be safe for concurrent use.
type Store interface {
	// AddAll appends events without conflict checking. It is meant for
	// hydrating from a trusted source such as the events file.
	AddAll(ctx context.Context, events []model.Event)

	// AddOneTime appends a one-time event unless it overlaps any event
	// occurring on its date, in which case ErrConflict is returned and the
	// store is unchanged. Recurring events yield ErrNotOneTime.
	AddOneTime(ctx context.Context, ev model.Event) error

	// OccurrencesOn returns every occurrence on d ordered by start time,
	// ties kept in insertion order.
	OccurrencesOn(ctx context.Context, d model.Date) []model.Occurrence

	// HasConflict reports whether r overlaps any event occurring on d.
	HasConflict(ctx context.Context, d model.Date, r model.TimeRange) bool

	// DeleteOneTimeByDateAndName removes the first one-time event on d whose
	// name matches case-insensitively. It reports whether one was removed.
	DeleteOneTimeByDateAndName(ctx context.Context, d model.Date, name string) bool

	// DeleteAllOneTimeOn removes every one-time event on d.
	DeleteAllOneTimeOn(ctx context.Context, d model.Date) int

	// DeleteRecurringByName removes every recurring event whose name matches
	// case-insensitively.
	DeleteRecurringByName(ctx context.Context, name string) int

	// ListOneTime returns one-time events ordered by date then start.
	ListOneTime(ctx context.Context) []model.Event

	// ListRecurring returns recurring events ordered by first day.
	ListRecurring(ctx context.Context) []model.Event

	// All returns a snapshot of every event in insertion order.
	All(ctx context.Context) []model.Event

	// Count returns the number of stored events.
	Count(ctx context.Context) int
}

// Observer is notified after every successful mutation. The write-behind
// saver uses it to schedule persistence.
type Observer func(ctx context.Context)

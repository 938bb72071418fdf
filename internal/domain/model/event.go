// Package model contains the calendar domain: dates, time ranges, weekday
// sets and the one-time/recurring event union.
package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Kind tags the Event variant.
type Kind uint8

const (
	KindOneTime Kind = iota + 1
	KindRecurring
)

func (k Kind) String() string {
	switch k {
	case KindOneTime:
		return "one_time"
	case KindRecurring:
		return "recurring"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Event is either a one-time event on a single date or a weekly recurring
// event bounded by an inclusive date window. Values are immutable.
type Event struct {
	id   uuid.UUID
	kind Kind
	name string
	time TimeRange

	// one-time
	date Date

	// recurring
	days DaySet
	from Date
	to   Date
}

// NewOneTime builds a one-time event.
func NewOneTime(name string, date Date, r TimeRange) Event {
	return Event{id: uuid.New(), kind: KindOneTime, name: name, time: r, date: date}
}

// NewRecurring builds a recurring event. from <= to and a non-empty day set
// are not enforced; such events simply never occur.
func NewRecurring(name string, days DaySet, r TimeRange, from, to Date) Event {
	return Event{id: uuid.New(), kind: KindRecurring, name: name, time: r, days: days, from: from, to: to}
}

func (e Event) ID() uuid.UUID     { return e.id }
func (e Event) Kind() Kind        { return e.kind }
func (e Event) Name() string      { return e.name }
func (e Event) Time() TimeRange   { return e.time }
func (e Event) IsOneTime() bool   { return e.kind == KindOneTime }
func (e Event) IsRecurring() bool { return e.kind == KindRecurring }

// Date is the day of a one-time event; zero for recurring events.
func (e Event) Date() Date { return e.date }

// Days is the weekday set of a recurring event; empty for one-time events.
func (e Event) Days() DaySet { return e.days }

// From is the first day of a recurring event's window.
func (e Event) From() Date { return e.from }

// To is the last day of a recurring event's window.
func (e Event) To() Date { return e.to }

// OccursOn reports whether the event takes place on d.
func (e Event) OccursOn(d Date) bool {
	switch e.kind {
	case KindOneTime:
		return e.date == d
	case KindRecurring:
		return !d.Before(e.from) && !d.After(e.to) && e.days.Has(d.Weekday())
	default:
		return false
	}
}

// TimeOn returns the event's time range on d, or None when it does not occur.
func (e Event) TimeOn(d Date) mo.Option[TimeRange] {
	if !e.OccursOn(d) {
		return mo.None[TimeRange]()
	}
	return mo.Some(e.time)
}

// On resolves the event against d.
func (e Event) On(d Date) mo.Option[Occurrence] {
	r, ok := e.TimeOn(d).Get()
	if !ok {
		return mo.None[Occurrence]()
	}
	return mo.Some(Occurrence{EventID: e.id, Name: e.name, Date: d, Time: r, Recurring: e.kind == KindRecurring})
}

func (e Event) String() string {
	switch e.kind {
	case KindOneTime:
		return fmt.Sprintf("%s %s %s", e.name, e.date, e.time)
	case KindRecurring:
		return fmt.Sprintf("%s %s %s %s..%s", e.name, e.days, e.time, e.from, e.to)
	default:
		return e.name
	}
}

// Occurrence is an event resolved against a specific date.
type Occurrence struct {
	EventID   uuid.UUID
	Name      string
	Date      Date
	Time      TimeRange
	Recurring bool
}

// Package recurrence expands events into the concrete dates they occur on
// within a window.
package recurrence

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/okian/daybook/internal/domain/model"
)

var weekdays = [...]rrule.Weekday{ //nolint:gochecknoglobals // lookup table
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Weekdays converts a day set to rrule weekdays, Sunday first.
func Weekdays(days model.DaySet) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, days.Len())
	for _, d := range days.Days() {
		out = append(out, weekdays[d])
	}
	return out
}

// Rule returns the weekly rule of a recurring event, anchored at midnight UTC.
func Rule(ev model.Event) (rrule.ROption, error) {
	if !ev.IsRecurring() {
		return rrule.ROption{}, fmt.Errorf("recurrence: %q is %s", ev.Name(), ev.Kind())
	}
	return rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   ev.From().Time(),
		Until:     ev.To().Time(),
		Byweekday: Weekdays(ev.Days()),
	}, nil
}

// Dates returns the days in [from, to] on which ev occurs, ascending.
func Dates(ev model.Event, from, to model.Date) ([]model.Date, error) {
	if to.Before(from) {
		return nil, nil
	}
	switch ev.Kind() {
	case model.KindOneTime:
		if ev.Date().Before(from) || ev.Date().After(to) {
			return nil, nil
		}
		return []model.Date{ev.Date()}, nil
	case model.KindRecurring:
		return recurringDates(ev, from, to)
	default:
		return nil, fmt.Errorf("recurrence: unknown event kind %s", ev.Kind())
	}
}

func recurringDates(ev model.Event, from, to model.Date) ([]model.Date, error) {
	if ev.Days().Empty() {
		return nil, nil
	}
	start, end := ev.From(), ev.To()
	if from.After(start) {
		start = from
	}
	if to.Before(end) {
		end = to
	}
	if end.Before(start) {
		return nil, nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   start.Time(),
		Until:     end.Time(),
		Byweekday: Weekdays(ev.Days()),
	})
	if err != nil {
		return nil, fmt.Errorf("recurrence: %q: %w", ev.Name(), err)
	}

	times := r.All()
	out := make([]model.Date, len(times))
	for i, t := range times {
		out[i] = model.DateOf(t)
	}
	return out, nil
}

// First returns the first day ev occurs on, if any.
func First(ev model.Event) (model.Date, bool) {
	if ev.IsOneTime() {
		return ev.Date(), true
	}
	ds, err := Dates(ev, ev.From(), ev.From().AddDays(6))
	if err != nil || len(ds) == 0 {
		return model.Date{}, false
	}
	return ds[0], true
}

// Agenda lists every occurrence of events in [from, to] ordered by date then
// start time; ties keep the order of events.
func Agenda(events []model.Event, from, to model.Date) ([]model.Occurrence, error) {
	var out []model.Occurrence
	for _, ev := range events {
		dates, err := Dates(ev, from, to)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			out = append(out, model.Occurrence{
				EventID:   ev.ID(),
				Name:      ev.Name(),
				Date:      d,
				Time:      ev.Time(),
				Recurring: ev.IsRecurring(),
			})
		}
	}
	slices.SortStableFunc(out, func(a, b model.Occurrence) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Time.Start, b.Time.Start)
	})
	return out, nil
}

// BusyDays returns the set of days in [from, to] with at least one occurrence.
func BusyDays(events []model.Event, from, to model.Date) (map[model.Date]bool, error) {
	busy := make(map[model.Date]bool)
	for _, ev := range events {
		dates, err := Dates(ev, from, to)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			busy[d] = true
		}
	}
	return busy, nil
}

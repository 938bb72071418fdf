// Package ics exports calendar events as iCalendar (RFC 5545) and reads
// the same subset back.
package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	ical "github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/okian/daybook/internal/adapters/fileio"
	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/internal/domain/recurrence"
	"github.com/okian/daybook/pkg/logger"
	"github.com/okian/daybook/pkg/metrics"
)

// ProductID identifies the exporter in PRODID.
const ProductID = "-//daybook//daybook calendar//EN"

// ErrUnsupported marks a VEVENT outside the one-time/weekly subset.
var ErrUnsupported = errors.New("unsupported calendar component")

// Calendar builds the VCALENDAR for events. Recurring events that never
// occur are left out. stamp is written as DTSTAMP.
func Calendar(events []model.Event, stamp time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	for _, ev := range events {
		comp, ok, err := component(ev, stamp)
		if err != nil {
			return nil, err
		}
		if ok {
			cal.Children = append(cal.Children, comp)
		}
	}
	return cal, nil
}

func component(ev model.Event, stamp time.Time) (*ical.Component, bool, error) {
	first, ok := recurrence.First(ev)
	if !ok {
		return nil, false, nil
	}
	start, end := at(first, ev.Time().Start), at(first, ev.Time().End)

	comp := ical.NewComponent(ical.CompEvent)
	comp.Props.SetText(ical.PropUID, ev.ID().String())
	comp.Props.SetText(ical.PropSummary, ev.Name())
	comp.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	comp.Props.SetDateTime(ical.PropDateTimeStart, start)
	comp.Props.SetDateTime(ical.PropDateTimeEnd, end)

	if ev.IsRecurring() {
		rule, err := recurrence.Rule(ev)
		if err != nil {
			return nil, false, err
		}
		rule.Dtstart = start
		rule.Until = at(ev.To(), ev.Time().Start)
		comp.Props.SetRecurrenceRule(&rule)
	}
	return comp, true, nil
}

func at(d model.Date, c model.Clock) time.Time {
	return d.Time().Add(time.Duration(c) * time.Minute)
}

// Encode writes events as an iCalendar stream.
func Encode(w io.Writer, events []model.Event, stamp time.Time) error {
	cal, err := Calendar(events, stamp)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("ics: encode: %w", err)
	}
	return nil
}

// WriteFile exports events to path atomically.
func WriteFile(path string, events []model.Event, stamp time.Time) error {
	err := fileio.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Encode(w, events, stamp)
	})
	if err != nil {
		metrics.RecordICSExport(metrics.ResultError)
		return err
	}
	metrics.RecordICSExport(metrics.ResultOK)
	return nil
}

// Decode reads VEVENTs back into events. Each VEVENT must start and end on
// the same day; a weekly RRULE with BYDAY and UNTIL makes it recurring.
// Unsupported components are logged and skipped.
func Decode(ctx context.Context, log logger.Logger, r io.Reader) ([]model.Event, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("ics: decode: %w", err)
	}
	var out []model.Event
	for _, comp := range cal.Events() {
		ev, err := fromComponent(comp.Component)
		if err != nil {
			summary, _ := comp.Props.Text(ical.PropSummary)
			log.Warn(ctx, "skipping calendar component", logger.String("summary", summary), logger.Error(err))
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func fromComponent(comp *ical.Component) (model.Event, error) {
	name, err := comp.Props.Text(ical.PropSummary)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: summary: %w", ErrUnsupported, err)
	}
	start, err := comp.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: dtstart: %w", ErrUnsupported, err)
	}
	end, err := comp.Props.DateTime(ical.PropDateTimeEnd, time.UTC)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: dtend: %w", ErrUnsupported, err)
	}
	if model.DateOf(start) != model.DateOf(end) {
		return model.Event{}, fmt.Errorf("%w: %q spans days", ErrUnsupported, name)
	}
	r, err := model.NewTimeRange(clockOf(start), clockOf(end))
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	rule, err := comp.Props.RecurrenceRule()
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: rrule: %w", ErrUnsupported, err)
	}
	if rule == nil {
		return model.NewOneTime(name, model.DateOf(start), r), nil
	}
	if rule.Freq != rrule.WEEKLY || rule.Until.IsZero() || len(rule.Byweekday) == 0 {
		return model.Event{}, fmt.Errorf("%w: %q needs FREQ=WEEKLY with BYDAY and UNTIL", ErrUnsupported, name)
	}
	days, err := daySet(rule.Byweekday)
	if err != nil {
		return model.Event{}, err
	}
	return model.NewRecurring(name, days, r, model.DateOf(start), model.DateOf(rule.Until.UTC())), nil
}

func daySet(wds []rrule.Weekday) (model.DaySet, error) {
	var s model.DaySet
	for _, wd := range wds {
		if wd.N() != 0 {
			return 0, fmt.Errorf("%w: positional BYDAY %s", ErrUnsupported, wd.String())
		}
		// rrule counts Monday as 0.
		s = s.With(time.Weekday((wd.Day() + 1) % 7))
	}
	return s, nil
}

func clockOf(t time.Time) model.Clock {
	return model.Clock(t.Hour()*60 + t.Minute())
}

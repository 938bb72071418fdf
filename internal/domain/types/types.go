// Package types contains the JSON shapes shared by the service and the HTTP API.
package types

import "github.com/okian/daybook/internal/domain/model"

// Occurrence is one event instance on a day.
type Occurrence struct {
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Recurring bool   `json:"recurring"`
}

// Event is the read shape of a stored event. Date is set for one-time
// events; Days, From and To for recurring ones.
type Event struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
	Date  string `json:"date,omitempty"`
	Days  string `json:"days,omitempty"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// Listing groups the sorted one-time and recurring listings.
type Listing struct {
	OneTime   []Event `json:"one_time"`
	Recurring []Event `json:"recurring"`
}

// Created acknowledges a create request.
type Created struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// FromOccurrence converts a domain occurrence.
func FromOccurrence(o model.Occurrence) Occurrence {
	return Occurrence{
		EventID:   o.EventID.String(),
		Name:      o.Name,
		Date:      o.Date.String(),
		Start:     o.Time.Start.String(),
		End:       o.Time.End.String(),
		Recurring: o.Recurring,
	}
}

// FromOccurrences converts a slice, never returning nil.
func FromOccurrences(occs []model.Occurrence) []Occurrence {
	out := make([]Occurrence, 0, len(occs))
	for _, o := range occs {
		out = append(out, FromOccurrence(o))
	}
	return out
}

// FromEvent converts a domain event.
func FromEvent(ev model.Event) Event {
	out := Event{
		ID:    ev.ID().String(),
		Kind:  ev.Kind().String(),
		Name:  ev.Name(),
		Start: ev.Time().Start.String(),
		End:   ev.Time().End.String(),
	}
	if ev.IsOneTime() {
		out.Date = ev.Date().String()
	} else {
		out.Days = ev.Days().String()
		out.From = ev.From().String()
		out.To = ev.To().String()
	}
	return out
}

// FromEvents converts a slice, never returning nil.
func FromEvents(events []model.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		out = append(out, FromEvent(ev))
	}
	return out
}

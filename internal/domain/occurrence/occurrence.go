// Package occurrence formats resolved events for display.
package occurrence

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/daybook/internal/domain/model"
)

// DayHeaderLayout renders e.g. "Wed, May 1, 2024".
const DayHeaderLayout = "Mon, Jan 2, 2006"

// NoEvents is shown for a day without occurrences.
const NoEvents = "(No events)"

// Sort orders occurrences by start time in place, keeping ties in input order.
func Sort(os []model.Occurrence) {
	slices.SortStableFunc(os, func(a, b model.Occurrence) int {
		return cmp.Compare(a.Time.Start, b.Time.Start)
	})
}

// Line renders "Name : HH:MM - HH:MM".
func Line(o model.Occurrence) string {
	return fmt.Sprintf("%s : %s", o.Name, o.Time)
}

// Lines sorts a copy of os and renders one line per occurrence.
func Lines(os []model.Occurrence) []string {
	sorted := slices.Clone(os)
	Sort(sorted)
	out := make([]string, len(sorted))
	for i, o := range sorted {
		out[i] = Line(o)
	}
	return out
}

// DayHeader renders the heading of a day view.
func DayHeader(d model.Date) string {
	return d.Format(DayHeaderLayout)
}

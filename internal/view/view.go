// Package view renders calendar screens as plain text.
package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/internal/domain/occurrence"
)

const weekHeader = "Su Mo Tu We Th Fr Sa"

// Month writes a Sunday-first grid for the month containing first. today
// is shown as [d]; other days for which hasEvent returns true as {d}.
func Month(w io.Writer, first model.Date, today model.Date, hasEvent func(model.Date) bool) error {
	start := model.NewDate(first.Year, first.Month, 1)
	next := start.AddMonths(1)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", strings.ToUpper(start.Month.String()), start.Year)
	b.WriteString(weekHeader + "\n")
	b.WriteString(strings.Repeat("   ", int(start.Weekday())))

	for d := start; d.Before(next); d = d.AddDays(1) {
		cell := fmt.Sprintf("%2d", d.Day)
		switch {
		case d == today:
			cell = fmt.Sprintf("[%d]", d.Day)
		case hasEvent != nil && hasEvent(d):
			cell = fmt.Sprintf("{%d}", d.Day)
		}
		fmt.Fprintf(&b, "%-3s", cell)
		if d.Weekday() == time.Saturday {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Day writes the header of d followed by one line per occurrence, or a
// placeholder when there are none.
func Day(w io.Writer, d model.Date, occs []model.Occurrence) error {
	var b strings.Builder
	b.WriteString(occurrence.DayHeader(d) + "\n")
	lines := occurrence.Lines(occs)
	if len(lines) == 0 {
		b.WriteString(occurrence.NoEvents + "\n")
	}
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

package ics

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ical "github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/pkg/logger"
)

var stamp = time.Date(2024, time.April, 1, 8, 0, 0, 0, time.UTC)

func sampleEvents(t *testing.T) []model.Event {
	t.Helper()
	days, err := model.ParseDays("TR")
	require.NoError(t, err)
	return []model.Event{
		model.NewOneTime("Dentist", model.NewDate(2024, time.May, 1),
			model.TimeRange{Start: model.MustClock(9, 0), End: model.MustClock(10, 30)}),
		model.NewRecurring("Lecture", days,
			model.TimeRange{Start: model.MustClock(10, 30), End: model.MustClock(11, 45)},
			model.NewDate(2024, time.January, 15), model.NewDate(2024, time.May, 2)),
		model.NewRecurring("Never", model.DaySet(0),
			model.TimeRange{Start: model.MustClock(10, 0), End: model.MustClock(11, 0)},
			model.NewDate(2024, time.January, 1), model.NewDate(2024, time.January, 31)),
	}
}

func TestEncode(t *testing.T) {
	events := sampleEvents(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, events, stamp))
	out := buf.String()

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:"+ProductID)
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"), "event that never occurs is skipped")
	assert.Contains(t, out, "UID:"+events[0].ID().String())
	assert.Contains(t, out, "DTSTART:20240501T090000Z")
	assert.Contains(t, out, "DTEND:20240501T103000Z")
	// Jan 15 2024 is a Monday; the first Tuesday anchors DTSTART.
	assert.Contains(t, out, "DTSTART:20240116T103000Z")
	assert.Contains(t, out, "RRULE:")
	assert.Contains(t, out, "FREQ=WEEKLY")
	assert.Contains(t, out, "BYDAY=TU,TH")
	assert.Contains(t, out, "UNTIL=20240502T103000Z")
}

func TestExpansionMatchesOccursOn(t *testing.T) {
	events := sampleEvents(t)
	cal, err := Calendar(events[1:2], stamp)
	require.NoError(t, err)
	require.Len(t, cal.Children, 1)

	set, err := cal.Children[0].RecurrenceSet(time.UTC)
	require.NoError(t, err)
	require.NotNil(t, set)

	lecture := events[1]
	var want []model.Date
	for d := lecture.From(); !d.After(lecture.To()); d = d.AddDays(1) {
		if lecture.OccursOn(d) {
			want = append(want, d)
		}
	}
	var got []model.Date
	for _, ts := range set.All() {
		got = append(got, model.DateOf(ts))
	}
	assert.Equal(t, want, got)
}

func TestDecodeRoundTrip(t *testing.T) {
	events := sampleEvents(t)[:2]

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, events, stamp))

	back, err := Decode(context.Background(), logger.Nop(), &buf)
	require.NoError(t, err)
	require.Len(t, back, 2)

	assert.Equal(t, model.KindOneTime, back[0].Kind())
	assert.Equal(t, "Dentist", back[0].Name())
	assert.Equal(t, events[0].Date(), back[0].Date())
	assert.Equal(t, events[0].Time(), back[0].Time())

	assert.Equal(t, model.KindRecurring, back[1].Kind())
	assert.Equal(t, "TR", back[1].Days().String())
	assert.Equal(t, model.NewDate(2024, time.January, 16), back[1].From())
	assert.Equal(t, model.NewDate(2024, time.May, 2), back[1].To())
	assert.Equal(t, events[1].Time(), back[1].Time())
}

func TestDecodeSkipsUnsupported(t *testing.T) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	multi := ical.NewComponent(ical.CompEvent)
	multi.Props.SetText(ical.PropUID, "multi")
	multi.Props.SetText(ical.PropSummary, "Trip")
	multi.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	multi.Props.SetDateTime(ical.PropDateTimeStart, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	multi.Props.SetDateTime(ical.PropDateTimeEnd, time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC))
	cal.Children = append(cal.Children, multi)

	var buf bytes.Buffer
	require.NoError(t, ical.NewEncoder(&buf).Encode(cal))

	back, err := Decode(context.Background(), logger.Nop(), &buf)
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.ics")
	require.NoError(t, WriteFile(path, sampleEvents(t), stamp))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "BEGIN:VCALENDAR"))
}

// Package eventfile reads and writes the line-oriented event file.
//
// Each event takes two lines: its name, then its data. One-time data is
// "M/D/YYYY H:MM H:MM". Recurring data is "DAYS H:MM H:MM M/D/YYYY M/D/YYYY"
// where DAYS uses S M T W R F A for Sunday through Saturday.
package eventfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/daybook/internal/adapters/fileio"
	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/pkg/logger"
	"github.com/okian/daybook/pkg/metrics"
)

// DateLayout is the M/D/YYYY layout used in the file and at the console.
const DateLayout = "1/2/2006"

const commentPrefix = "#"

// RecordError describes one rejected record.
type RecordError struct {
	Line int // 1-based line of the record's name
	Name string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Name, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Parse reads every record from r. Malformed records are skipped and
// returned as RecordErrors alongside the events that parsed; the returned
// error is only set for read failures.
func Parse(r io.Reader) ([]model.Event, []*RecordError, error) {
	sc := bufio.NewScanner(r)
	var (
		events  []model.Event
		skipped []*RecordError
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		nameLine := lineNo
		name := strings.TrimSpace(sc.Text())

		// A trailing name without data is ignored.
		if !sc.Scan() {
			break
		}
		lineNo++
		data := strings.TrimSpace(sc.Text())

		if name == "" || data == "" || strings.HasPrefix(name, commentPrefix) {
			continue
		}
		ev, err := ParseRecord(name, data)
		if err != nil {
			skipped = append(skipped, &RecordError{Line: nameLine, Name: name, Err: err})
			continue
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return events, skipped, fmt.Errorf("eventfile: read: %w", err)
	}
	return events, skipped, nil
}

// ReadStrict is Parse that fails on the first malformed record.
func ReadStrict(r io.Reader) ([]model.Event, error) {
	events, skipped, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		return nil, skipped[0]
	}
	return events, nil
}

// ParseRecord builds an event from a name and its data line.
func ParseRecord(name, data string) (model.Event, error) {
	parts := strings.Fields(data)
	if len(parts) == 0 {
		return model.Event{}, fmt.Errorf("%w: empty data", ErrMalformed)
	}
	if model.IsDayCode(parts[0]) {
		return parseRecurring(name, parts)
	}
	return parseOneTime(name, parts)
}

func parseOneTime(name string, parts []string) (model.Event, error) {
	if len(parts) != 3 {
		return model.Event{}, fmt.Errorf("%w: one-time record needs 3 fields, got %d", ErrMalformed, len(parts))
	}
	date, err := ParseDate(parts[0])
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	r, err := parseRange(parts[1], parts[2])
	if err != nil {
		return model.Event{}, err
	}
	return model.NewOneTime(name, date, r), nil
}

func parseRecurring(name string, parts []string) (model.Event, error) {
	if len(parts) != 5 {
		return model.Event{}, fmt.Errorf("%w: recurring record needs 5 fields, got %d", ErrMalformed, len(parts))
	}
	days, err := model.ParseDays(parts[0])
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	r, err := parseRange(parts[1], parts[2])
	if err != nil {
		return model.Event{}, err
	}
	from, err := ParseDate(parts[3])
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	to, err := ParseDate(parts[4])
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return model.NewRecurring(name, days, r, from, to), nil
}

func parseRange(start, end string) (model.TimeRange, error) {
	s, err := model.ParseClock(start)
	if err != nil {
		return model.TimeRange{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	e, err := model.ParseClock(end)
	if err != nil {
		return model.TimeRange{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	r, err := model.NewTimeRange(s, e)
	if err != nil {
		return model.TimeRange{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return r, nil
}

// ParseDate parses M/D/YYYY, also accepting zero-padded MM/DD/YYYY.
func ParseDate(s string) (model.Date, error) {
	return model.ParseDateLayout(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders M/D/YYYY.
func FormatDate(d model.Date) string { return d.Format(DateLayout) }

// Data renders the data line of an event.
func Data(ev model.Event) string {
	r := ev.Time()
	switch ev.Kind() {
	case model.KindOneTime:
		return fmt.Sprintf("%s %s %s", FormatDate(ev.Date()), r.Start.Short(), r.End.Short())
	case model.KindRecurring:
		return fmt.Sprintf("%s %s %s %s %s", ev.Days(), r.Start.Short(), r.End.Short(),
			FormatDate(ev.From()), FormatDate(ev.To()))
	default:
		return ""
	}
}

// ValidName reports whether name survives a write and reparse: it must be
// a single non-blank line that does not read back as a comment.
func ValidName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: empty name", ErrMalformed)
	case strings.ContainsAny(name, "\r\n"):
		return fmt.Errorf("%w: name %q spans more than one line", ErrMalformed, name)
	case strings.HasPrefix(trimmed, commentPrefix):
		return fmt.Errorf("%w: name %q starts with %q", ErrMalformed, name, commentPrefix)
	}
	return nil
}

// Write renders events in the two-line format. It fails before writing
// anything if a name could not be read back.
func Write(w io.Writer, events []model.Event) error {
	for _, ev := range events {
		if err := ValidName(ev.Name()); err != nil {
			return fmt.Errorf("eventfile: write: %w", err)
		}
	}
	for _, ev := range events {
		if _, err := fmt.Fprintf(w, "%s\n%s\n", ev.Name(), Data(ev)); err != nil {
			return fmt.Errorf("eventfile: write: %w", err)
		}
	}
	return nil
}

// Load reads path. A missing file yields no events. Malformed records are
// logged, counted and skipped.
func Load(ctx context.Context, log logger.Logger, path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info(ctx, "events file not found, starting empty", logger.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eventfile: open %s: %w", path, err)
	}
	defer f.Close()

	events, skipped, err := Parse(f)
	for _, rec := range skipped {
		log.Warn(ctx, "skipping malformed event",
			logger.String("path", path),
			logger.Int("line", rec.Line),
			logger.String("name", rec.Name),
			logger.Error(rec.Err))
	}
	metrics.RecordSkippedRecords(len(skipped))
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "events loaded",
		logger.String("path", path),
		logger.Int("count", len(events)),
		logger.Int("skipped", len(skipped)))
	return events, nil
}

// Save writes events to path atomically.
func Save(path string, events []model.Event) error {
	err := fileio.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Write(w, events)
	})
	if err != nil {
		metrics.RecordSave(metrics.ResultError)
		return err
	}
	metrics.RecordSave(metrics.ResultOK)
	return nil
}

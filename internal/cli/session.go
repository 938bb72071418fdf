// Package cli implements the interactive console menu over the event store.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/daybook/internal/adapters/eventfile"
	"github.com/okian/daybook/internal/adapters/repository"
	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/internal/domain/occurrence"
	"github.com/okian/daybook/internal/view"
	"github.com/okian/daybook/pkg/logger"
)

// SaveFunc persists the store when the user quits.
type SaveFunc func(ctx context.Context) error

// Session is one interactive run of the menu.
type Session struct {
	in    *bufio.Scanner
	out   io.Writer
	store repository.Store
	today model.Date
	save  SaveFunc
	log   logger.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithSave sets the function run on quit.
func WithSave(fn SaveFunc) Option {
	return func(s *Session) { s.save = fn }
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSession creates a session reading commands from in and writing to out.
func NewSession(in io.Reader, out io.Writer, store repository.Store, today model.Date, opts ...Option) *Session {
	s := &Session{
		in:    bufio.NewScanner(in),
		out:   out,
		store: store,
		today: today,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// errEOF ends the session when input runs out.
var errEOF = errors.New("end of input")

// Run shows the current month and loops over the main menu until [Q]uit or
// end of input. Both paths save.
func (s *Session) Run(ctx context.Context) error {
	if err := s.printMonth(ctx, s.today); err != nil {
		return err
	}
	for {
		s.println(mainMenu)
		choice, err := s.readChoice()
		if errors.Is(err, errEOF) {
			return s.quit(ctx)
		}
		switch choice {
		case "V":
			err = s.handleView(ctx)
		case "C":
			err = s.handleCreate(ctx)
		case "G":
			err = s.handleGoTo(ctx)
		case "E":
			s.handleEventList(ctx)
		case "D":
			err = s.handleDelete(ctx)
		case "Q":
			return s.quit(ctx)
		default:
			s.println(invalidOption)
		}
		if errors.Is(err, errEOF) {
			return s.quit(ctx)
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) quit(ctx context.Context) error {
	s.println(msgGoodBye)
	if s.save == nil {
		return nil
	}
	if err := s.save(ctx); err != nil {
		s.log.Error(ctx, "save on quit failed", logger.Error(err))
		return fmt.Errorf("cli: save: %w", err)
	}
	return nil
}

func (s *Session) handleView(ctx context.Context) error {
	s.println(viewMenu)
	v, err := s.readChoice()
	if err != nil {
		return err
	}
	switch v {
	case "D":
		return s.navigate(dayNavMenu, s.today, func(d model.Date, step int) model.Date {
			return d.AddDays(step)
		}, func(d model.Date) error {
			return view.Day(s.out, d, s.store.OccurrencesOn(ctx, d))
		})
	case "M":
		return s.navigate(monthNavMenu, s.today, func(d model.Date, step int) model.Date {
			return d.AddMonths(step)
		}, func(d model.Date) error {
			return s.printMonth(ctx, d)
		})
	default:
		s.println(invalidOption)
		return nil
	}
}

// navigate renders cursor and moves it with [P]/[N] until [G].
func (s *Session) navigate(menu string, cursor model.Date, move func(model.Date, int) model.Date, render func(model.Date) error) error {
	for {
		if err := render(cursor); err != nil {
			return err
		}
		s.println(menu)
		cmd, err := s.readChoice()
		if err != nil {
			return err
		}
		switch cmd {
		case "P":
			cursor = move(cursor, -1)
		case "N":
			cursor = move(cursor, 1)
		case "G":
			return nil
		default:
			s.println(invalidOption)
		}
	}
}

func (s *Session) printMonth(ctx context.Context, d model.Date) error {
	return view.Month(s.out, d, s.today, func(day model.Date) bool {
		return len(s.store.OccurrencesOn(ctx, day)) > 0
	})
}

func (s *Session) handleCreate(ctx context.Context) error {
	name, err := s.prompt(promptName)
	if err != nil {
		return err
	}
	if name == "" {
		s.println(msgEmptyName)
		return nil
	}
	if eventfile.ValidName(name) != nil {
		s.println(msgBadName)
		return nil
	}
	date, ok, err := s.promptDate(promptDate)
	if err != nil || !ok {
		return err
	}
	start, ok, err := s.promptClock(promptStart)
	if err != nil || !ok {
		return err
	}
	end, ok, err := s.promptClock(promptEnd)
	if err != nil || !ok {
		return err
	}
	r, err := model.NewTimeRange(start, end)
	if err != nil {
		s.println(msgEndAfterStart)
		return nil
	}

	err = s.store.AddOneTime(ctx, model.NewOneTime(name, date, r))
	switch {
	case errors.Is(err, repository.ErrConflict):
		s.println(msgConflict)
	case err != nil:
		s.println(err.Error())
	default:
		s.println(msgCreated)
	}
	return nil
}

func (s *Session) handleGoTo(ctx context.Context) error {
	d, ok, err := s.promptDate(promptDate)
	if err != nil || !ok {
		return err
	}
	return view.Day(s.out, d, s.store.OccurrencesOn(ctx, d))
}

func (s *Session) handleEventList(ctx context.Context) {
	s.println(headerOneTime)
	year := 0
	for _, ev := range s.store.ListOneTime(ctx) {
		if ev.Date().Year != year {
			year = ev.Date().Year
			s.printf("\n%d\n", year)
		}
		s.printf("  %s %s %s %s\n",
			strings.ToUpper(ev.Date().Weekday().String()),
			eventfile.FormatDate(ev.Date()),
			ev.Time(),
			ev.Name())
	}

	s.println("\n" + headerRecurring)
	for _, ev := range s.store.ListRecurring(ctx) {
		s.printf("%s %s\n", ev.Name(), eventfile.Data(ev))
	}
}

func (s *Session) handleDelete(ctx context.Context) error {
	s.println(deleteMenu)
	t, err := s.readChoice()
	if err != nil {
		return err
	}
	switch t {
	case "S":
		return s.deleteSelected(ctx)
	case "A":
		d, ok, err := s.promptDate(promptDelDate)
		if err != nil || !ok {
			return err
		}
		n := s.store.DeleteAllOneTimeOn(ctx, d)
		s.printf("%d event(s) deleted.\n", n)
	case "R":
		name, err := s.prompt(promptRecurName)
		if err != nil {
			return err
		}
		n := s.store.DeleteRecurringByName(ctx, name)
		if n == 0 {
			s.println(msgNoRecurring)
		} else {
			s.printf("%d recurring event(s) deleted.\n", n)
		}
	default:
		s.println(invalidOption)
	}
	return nil
}

func (s *Session) deleteSelected(ctx context.Context) error {
	d, ok, err := s.promptDate(promptDelDate)
	if err != nil || !ok {
		return err
	}
	var lines []string
	for _, o := range s.store.OccurrencesOn(ctx, d) {
		if !o.Recurring {
			lines = append(lines, occurrence.Line(o))
		}
	}
	if len(lines) == 0 {
		s.println(msgNoSuchEvent)
		return nil
	}
	for _, l := range lines {
		s.println("  " + l)
	}
	name, err := s.prompt(promptDelName)
	if err != nil {
		return err
	}
	if s.store.DeleteOneTimeByDateAndName(ctx, d, name) {
		s.println(msgDeleted)
	} else {
		s.println(msgNoSuchEvent)
	}
	return nil
}

// promptDate reports ok=false after printing a message for bad input.
func (s *Session) promptDate(p string) (model.Date, bool, error) {
	line, err := s.prompt(p)
	if err != nil {
		return model.Date{}, false, err
	}
	d, err := eventfile.ParseDate(line)
	if err != nil {
		s.println(msgBadDate)
		return model.Date{}, false, nil
	}
	return d, true, nil
}

func (s *Session) promptClock(p string) (model.Clock, bool, error) {
	line, err := s.prompt(p)
	if err != nil {
		return 0, false, err
	}
	c, err := model.ParseClock(line)
	if err != nil {
		s.println(msgBadTime)
		return 0, false, nil
	}
	return c, true, nil
}

func (s *Session) prompt(p string) (string, error) {
	s.printf("%s", p)
	return s.readLine()
}

func (s *Session) readChoice() (string, error) {
	line, err := s.readLine()
	return strings.ToUpper(line), err
}

func (s *Session) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("cli: read: %w", err)
		}
		return "", errEOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Session) println(line string) {
	_, _ = fmt.Fprintln(s.out, line)
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/daybook/internal/adapters/repository"
	service "github.com/okian/daybook/internal/app"
	"github.com/okian/daybook/internal/domain/dedupe"
	"github.com/okian/daybook/internal/domain/model"
	"github.com/okian/daybook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func span(sh, sm, eh, em int) model.TimeRange {
	return model.TimeRange{Start: model.MustClock(sh, sm), End: model.MustClock(eh, em)}
}

// newService returns a service whose files live in a fresh temp dir.
func newService(t *testing.T, opts ...service.Option) (*service.Service, string) {
	dir := t.TempDir()
	base := []service.Option{
		service.WithEventsFile(filepath.Join(dir, "events.txt")),
		service.WithOutputFile(filepath.Join(dir, "output.txt")),
		service.WithICSFile(filepath.Join(dir, "calendar.ics")),
		service.WithICSSchedule(""),
	}
	return service.New(append(base, opts...)...), dir
}

// gatedStore holds AddOneTime until release is closed.
type gatedStore struct {
	*repository.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) AddOneTime(ctx context.Context, ev model.Event) error {
	close(g.entered)
	<-g.release
	return g.MemoryStore.AddOneTime(ctx, ev)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["outputFile"], ShouldEqual, "output.txt")
			So(stats["icsSchedule"], ShouldEqual, "@every 5m")
			So(stats["maxAgendaDays"], ShouldEqual, 366)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithSaveQueueSize(8),
			service.WithDedupeSize(100),
			service.WithMaxAgendaDays(31),
			service.WithSaveQueueSize(-1),
		)

		Convey("Then non-positive sizes are ignored", func() {
			stats := svc.GetStats()
			So(stats["saveQueueSize"], ShouldEqual, 8)
			So(stats["dedupeSize"], ShouldEqual, 100)
			So(stats["maxAgendaDays"], ShouldEqual, 31)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc, _ := newService(t)
		defer svc.Stop()

		Convey("When starting the service without an events file", func() {
			err := svc.Start(context.Background())

			Convey("Then it should start with an empty store", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["oneTimeEvents"], ShouldEqual, 0)
				So(stats["recurringEvents"], ShouldEqual, 0)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
				svc.Stop()
			})
		})
	})

	Convey("Given a service loaded from an events file", t, func() {
		ctx := context.Background()
		svc, dir := newService(t)
		So(os.WriteFile(filepath.Join(dir, "events.txt"),
			[]byte("Lunch\n5/1/2024 12:00 13:00\nGym\nMW 7:00 8:00 4/1/2024 6/30/2024\n"), 0o644), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When it is stopped and started again", func() {
			oneTime, recurring := len(svc.ListOneTime(ctx)), len(svc.ListRecurring(ctx))
			svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the events are not loaded twice", func() {
				So(oneTime, ShouldEqual, 1)
				So(recurring, ShouldEqual, 1)
				So(svc.ListOneTime(ctx), ShouldHaveLength, oneTime)
				So(svc.ListRecurring(ctx), ShouldHaveLength, recurring)
				So(svc.OccurrencesOn(ctx, model.NewDate(2024, time.May, 1)), ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given an invalid export schedule", t, func() {
		svc, _ := newService(t, service.WithICSSchedule("every tuesday"))

		Convey("Then Start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})

	Convey("Given an unreadable events file", t, func() {
		dir := t.TempDir()
		svc, _ := newService(t, service.WithEventsFile(dir))

		Convey("Then Start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})
}

func TestService_CreateOneTime(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc, _ := newService(t)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		day := model.NewDate(2024, time.May, 1)

		Convey("When creating a free slot", func() {
			id, dup, err := svc.CreateOneTime(ctx, "", "Lunch", day, span(12, 0, 13, 0))

			Convey("Then it is stored", func() {
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
				So(id, ShouldNotBeEmpty)
				So(svc.OccurrencesOn(ctx, day), ShouldHaveLength, 1)
			})
		})

		Convey("When creating an overlapping slot", func() {
			_, _, err := svc.CreateOneTime(ctx, "", "Lunch", day, span(12, 0, 13, 0))
			So(err, ShouldBeNil)
			_, _, err = svc.CreateOneTime(ctx, "", "Call", day, span(12, 30, 14, 0))

			Convey("Then the conflict is returned", func() {
				So(errors.Is(err, repository.ErrConflict), ShouldBeTrue)
				So(svc.HasConflict(ctx, day, span(12, 59, 13, 30)), ShouldBeTrue)
				So(svc.HasConflict(ctx, day, span(13, 0, 13, 30)), ShouldBeFalse)
			})
		})

		Convey("When repeating a request ID", func() {
			id1, dup1, err1 := svc.CreateOneTime(ctx, "req-1", "Lunch", day, span(12, 0, 13, 0))
			id2, dup2, err2 := svc.CreateOneTime(ctx, "req-1", "Lunch", day, span(12, 0, 13, 0))

			Convey("Then the first event ID is returned without a conflict", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(dup1, ShouldBeFalse)
				So(dup2, ShouldBeTrue)
				So(id2, ShouldEqual, id1)
				So(svc.ListOneTime(ctx), ShouldHaveLength, 1)
			})
		})

		Convey("When a request ID is rejected", func() {
			_, _, err := svc.CreateOneTime(ctx, "", "Lunch", day, span(12, 0, 13, 0))
			So(err, ShouldBeNil)
			_, _, err = svc.CreateOneTime(ctx, "req-2", "Call", day, span(12, 0, 13, 0))
			So(err, ShouldNotBeNil)

			Convey("Then it can be retried on a free slot", func() {
				_, dup, err := svc.CreateOneTime(ctx, "req-2", "Call", day, span(14, 0, 15, 0))
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			})
		})
	})
}

func TestService_CreateOneTimeInFlight(t *testing.T) {
	Convey("Given a create that is still being applied", t, func() {
		ctx := context.Background()
		store := &gatedStore{
			MemoryStore: repository.NewMemoryStore(),
			entered:     make(chan struct{}),
			release:     make(chan struct{}),
		}
		svc, _ := newService(t, service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		day := model.NewDate(2024, time.May, 1)

		type result struct {
			id  string
			dup bool
			err error
		}
		first := make(chan result, 1)
		go func() {
			id, dup, err := svc.CreateOneTime(ctx, "req-1", "Lunch", day, span(12, 0, 13, 0))
			first <- result{id, dup, err}
		}()
		<-store.entered

		Convey("When the same request ID arrives", func() {
			id, dup, err := svc.CreateOneTime(ctx, "req-1", "Lunch", day, span(12, 0, 13, 0))
			close(store.release)
			got := <-first

			Convey("Then it is refused as in flight rather than reported as a duplicate", func() {
				So(errors.Is(err, dedupe.ErrInFlight), ShouldBeTrue)
				So(dup, ShouldBeFalse)
				So(id, ShouldBeEmpty)

				So(got.err, ShouldBeNil)
				So(got.id, ShouldNotBeEmpty)
			})

			Convey("And a later retry gets the stored event ID", func() {
				again, dup, err := svc.CreateOneTime(ctx, "req-1", "Lunch", day, span(12, 0, 13, 0))
				So(err, ShouldBeNil)
				So(dup, ShouldBeTrue)
				So(again, ShouldEqual, got.id)
				So(svc.ListOneTime(ctx), ShouldHaveLength, 1)
			})
		})
	})
}

func TestService_Deletes(t *testing.T) {
	Convey("Given a service loaded from an events file", t, func() {
		ctx := context.Background()
		svc, dir := newService(t)
		data := "Lunch\n5/1/2024 12:00 13:00\nLunch\n5/1/2024 18:00 19:00\nGym\nMW 7:00 8:00 4/1/2024 6/30/2024\n"
		So(os.WriteFile(filepath.Join(dir, "events.txt"), []byte(data), 0o600), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		day := model.NewDate(2024, time.May, 1)

		Convey("Then the events are loaded", func() {
			So(svc.ListOneTime(ctx), ShouldHaveLength, 2)
			So(svc.ListRecurring(ctx), ShouldHaveLength, 1)
			So(svc.OccurrencesOn(ctx, day), ShouldHaveLength, 3)
		})

		Convey("When deleting by name", func() {
			So(svc.DeleteOneTime(ctx, day, "LUNCH"), ShouldBeTrue)

			Convey("Then only one match is removed", func() {
				So(svc.ListOneTime(ctx), ShouldHaveLength, 1)
			})
		})

		Convey("When deleting everything on the day", func() {
			So(svc.DeleteAllOn(ctx, day), ShouldEqual, 2)

			Convey("Then the recurring occurrence stays", func() {
				So(svc.OccurrencesOn(ctx, day), ShouldHaveLength, 1)
			})
		})

		Convey("When deleting recurring events", func() {
			So(svc.DeleteRecurring(ctx, "gym"), ShouldEqual, 1)
			So(svc.DeleteRecurring(ctx, "gym"), ShouldEqual, 0)
		})
	})
}

func TestService_Agenda(t *testing.T) {
	Convey("Given a service with a recurring event", t, func() {
		ctx := context.Background()
		svc, dir := newService(t, service.WithMaxAgendaDays(31))
		data := "Gym\nMW 7:00 8:00 4/1/2024 6/30/2024\n"
		So(os.WriteFile(filepath.Join(dir, "events.txt"), []byte(data), 0o600), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When expanding one week", func() {
			occs, err := svc.Agenda(ctx, model.NewDate(2024, time.May, 5), model.NewDate(2024, time.May, 11))

			Convey("Then Monday and Wednesday are listed", func() {
				So(err, ShouldBeNil)
				So(occs, ShouldHaveLength, 2)
				So(occs[0].Date, ShouldEqual, model.NewDate(2024, time.May, 6))
				So(occs[1].Date, ShouldEqual, model.NewDate(2024, time.May, 8))
			})
		})

		Convey("When the window is inverted or too wide", func() {
			_, err1 := svc.Agenda(ctx, model.NewDate(2024, time.May, 5), model.NewDate(2024, time.May, 4))
			_, err2 := svc.Agenda(ctx, model.NewDate(2024, time.May, 1), model.NewDate(2024, time.June, 1))
			_, err3 := svc.Agenda(ctx, model.NewDate(2024, time.May, 1), model.NewDate(2024, time.May, 31))

			Convey("Then it is rejected", func() {
				So(errors.Is(err1, service.ErrAgendaWindow), ShouldBeTrue)
				So(errors.Is(err2, service.ErrAgendaWindow), ShouldBeTrue)
				So(err3, ShouldBeNil)
			})
		})

		Convey("When writing the calendar", func() {
			var buf bytes.Buffer
			err := svc.WriteICS(ctx, &buf)

			Convey("Then a VEVENT with a weekly rule is produced", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "BEGIN:VEVENT")
				So(buf.String(), ShouldContainSubstring, "BYDAY=MO,WE")
				So(buf.String(), ShouldContainSubstring, "SUMMARY:Gym")
			})
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		ctx := context.Background()
		svc, _ := newService(t)

		Convey("Then operations that need the store fail cleanly", func() {
			_, _, err := svc.CreateOneTime(ctx, "", "Lunch", model.NewDate(2024, time.May, 1), span(12, 0, 13, 0))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Agenda(ctx, model.NewDate(2024, time.May, 1), model.NewDate(2024, time.May, 2))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(svc.WriteICS(ctx, &bytes.Buffer{}), service.ErrNotStarted), ShouldBeTrue)
			So(svc.Store(), ShouldBeNil)
		})
	})
}

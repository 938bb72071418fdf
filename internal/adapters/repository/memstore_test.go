package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/daybook/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rng(sh, sm, eh, em int) model.TimeRange {
	return model.TimeRange{Start: model.MustClock(sh, sm), End: model.MustClock(eh, em)}
}

var may1 = model.NewDate(2024, time.May, 1) // Wednesday

func mwf() model.DaySet {
	return model.NewDaySet(time.Monday, time.Wednesday, time.Friday)
}

func names(os []model.Occurrence) []string {
	out := make([]string, len(os))
	for i, o := range os {
		out[i] = o.Name
	}
	return out
}

func eventNames(es []model.Event) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name()
	}
	return out
}

func TestMemoryStore_AddOneTime(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()

		Convey("When adding a one-time event", func() {
			err := s.AddOneTime(ctx, model.NewOneTime("Lunch", may1, rng(12, 0, 13, 0)))

			Convey("Then it is stored", func() {
				So(err, ShouldBeNil)
				So(s.Count(ctx), ShouldEqual, 1)
				So(names(s.OccurrencesOn(ctx, may1)), ShouldResemble, []string{"Lunch"})
			})

			Convey("And an overlapping event is rejected", func() {
				err := s.AddOneTime(ctx, model.NewOneTime("Call", may1, rng(12, 30, 13, 30)))
				So(errors.Is(err, ErrConflict), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Lunch")
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("And a touching event is accepted", func() {
				So(s.AddOneTime(ctx, model.NewOneTime("Call", may1, rng(13, 0, 14, 0))), ShouldBeNil)
				So(s.Count(ctx), ShouldEqual, 2)
			})

			Convey("And the same time on another date is accepted", func() {
				So(s.AddOneTime(ctx, model.NewOneTime("Lunch", may1.AddDays(1), rng(12, 0, 13, 0))), ShouldBeNil)
			})
		})

		Convey("When a recurring event covers the date", func() {
			s.AddAll(ctx, []model.Event{
				model.NewRecurring("Gym", mwf(), rng(7, 0, 8, 0), may1, model.NewDate(2024, time.May, 31)),
			})

			Convey("Then an overlapping one-time event is rejected on occurring days only", func() {
				err := s.AddOneTime(ctx, model.NewOneTime("Breakfast", may1, rng(7, 30, 8, 30)))
				So(errors.Is(err, ErrConflict), ShouldBeTrue)

				// Thursday: Gym does not occur.
				So(s.AddOneTime(ctx, model.NewOneTime("Breakfast", may1.AddDays(1), rng(7, 30, 8, 30))), ShouldBeNil)
			})
		})

		Convey("When adding a recurring event through the gate", func() {
			err := s.AddOneTime(ctx, model.NewRecurring("Gym", mwf(), rng(7, 0, 8, 0), may1, may1))

			Convey("Then it is refused", func() {
				So(errors.Is(err, ErrNotOneTime), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestMemoryStore_AddAllSkipsConflictChecks(t *testing.T) {
	Convey("Given overlapping events loaded in bulk", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		s.AddAll(ctx, []model.Event{
			model.NewOneTime("A", may1, rng(9, 0, 10, 0)),
			model.NewOneTime("B", may1, rng(9, 30, 10, 30)),
			model.NewRecurring("R", mwf(), rng(9, 0, 11, 0), may1, may1.AddDays(30)),
		})

		Convey("Then every event is kept in insertion order", func() {
			So(s.Count(ctx), ShouldEqual, 3)
			So(eventNames(s.All(ctx)), ShouldResemble, []string{"A", "B", "R"})
		})

		Convey("Then HasConflict sees all of them", func() {
			So(s.HasConflict(ctx, may1, rng(10, 45, 11, 30)), ShouldBeTrue)
			So(s.HasConflict(ctx, may1, rng(11, 0, 12, 0)), ShouldBeFalse)
			So(s.HasConflict(ctx, may1.AddDays(1), rng(9, 0, 10, 0)), ShouldBeFalse)
		})
	})
}

func TestMemoryStore_OccurrencesOn(t *testing.T) {
	Convey("Given events out of start order", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		s.AddAll(ctx, []model.Event{
			model.NewOneTime("Late", may1, rng(15, 0, 16, 0)),
			model.NewRecurring("Standup", mwf(), rng(9, 0, 9, 15), may1.AddDays(-30), may1.AddDays(30)),
			model.NewOneTime("Early", may1, rng(8, 0, 8, 30)),
			model.NewOneTime("AlsoNine", may1, rng(9, 0, 9, 30)),
		})

		Convey("Then occurrences are sorted by start with stable ties", func() {
			got := s.OccurrencesOn(ctx, may1)
			So(names(got), ShouldResemble, []string{"Early", "Standup", "AlsoNine", "Late"})
			So(got[1].Recurring, ShouldBeTrue)
			So(got[1].Date, ShouldResemble, may1)
		})

		Convey("Then a day without events yields an empty non-nil slice", func() {
			got := s.OccurrencesOn(ctx, may1.AddDays(1))
			So(got, ShouldNotBeNil)
			So(got, ShouldBeEmpty)
		})
	})
}

func TestMemoryStore_Deletes(t *testing.T) {
	Convey("Given a populated store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		s.AddAll(ctx, []model.Event{
			model.NewOneTime("Lunch", may1, rng(12, 0, 13, 0)),
			model.NewOneTime("lunch", may1, rng(13, 0, 14, 0)),
			model.NewOneTime("Dinner", may1, rng(19, 0, 20, 0)),
			model.NewOneTime("Lunch", may1.AddDays(1), rng(12, 0, 13, 0)),
			model.NewRecurring("Gym", mwf(), rng(7, 0, 8, 0), may1, may1.AddDays(30)),
			model.NewRecurring("GYM", model.NewDaySet(time.Tuesday), rng(7, 0, 8, 0), may1, may1.AddDays(30)),
			model.NewRecurring("Swim", mwf(), rng(18, 0, 19, 0), may1, may1.AddDays(30)),
		})

		Convey("When deleting a one-time event by name", func() {
			ok := s.DeleteOneTimeByDateAndName(ctx, may1, "LUNCH")

			Convey("Then only the first case-insensitive match on that date goes", func() {
				So(ok, ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 6)
				So(names(s.OccurrencesOn(ctx, may1)), ShouldResemble, []string{"Gym", "lunch", "Swim", "Dinner"})
				So(names(s.OccurrencesOn(ctx, may1.AddDays(1))), ShouldResemble, []string{"Lunch"})
			})
		})

		Convey("When deleting a name that is only recurring", func() {
			ok := s.DeleteOneTimeByDateAndName(ctx, may1, "Gym")

			Convey("Then nothing is removed", func() {
				So(ok, ShouldBeFalse)
				So(s.Count(ctx), ShouldEqual, 7)
			})
		})

		Convey("When deleting all one-time events on a date", func() {
			n := s.DeleteAllOneTimeOn(ctx, may1)

			Convey("Then recurring events stay", func() {
				So(n, ShouldEqual, 3)
				So(names(s.OccurrencesOn(ctx, may1)), ShouldResemble, []string{"Gym", "Swim"})
				So(s.DeleteAllOneTimeOn(ctx, may1), ShouldEqual, 0)
			})
		})

		Convey("When deleting recurring events by name", func() {
			n := s.DeleteRecurringByName(ctx, "gym")

			Convey("Then every case-insensitive match is removed", func() {
				So(n, ShouldEqual, 2)
				So(eventNames(s.ListRecurring(ctx)), ShouldResemble, []string{"Swim"})
				So(s.DeleteRecurringByName(ctx, "Lunch"), ShouldEqual, 0)
				So(len(s.ListOneTime(ctx)), ShouldEqual, 4)
			})
		})
	})
}

func TestMemoryStore_Listings(t *testing.T) {
	Convey("Given unsorted events", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		june := model.NewDate(2024, time.June, 1)
		s.AddAll(ctx, []model.Event{
			model.NewOneTime("June", june, rng(9, 0, 10, 0)),
			model.NewRecurring("Summer", mwf(), rng(9, 0, 10, 0), june, june.AddDays(60)),
			model.NewOneTime("MayLate", may1, rng(15, 0, 16, 0)),
			model.NewRecurring("Spring", mwf(), rng(9, 0, 10, 0), may1, june),
			model.NewOneTime("MayEarly", may1, rng(8, 0, 9, 0)),
			model.NewRecurring("AlsoSpring", mwf(), rng(11, 0, 12, 0), may1, june),
		})

		Convey("Then one-time events sort by date then start", func() {
			So(eventNames(s.ListOneTime(ctx)), ShouldResemble, []string{"MayEarly", "MayLate", "June"})
		})

		Convey("Then recurring events sort by first day, stable", func() {
			So(eventNames(s.ListRecurring(ctx)), ShouldResemble, []string{"Spring", "AlsoSpring", "Summer"})
		})

		Convey("Then All is a snapshot copy", func() {
			all := s.All(ctx)
			all[0] = model.Event{}
			So(s.All(ctx)[0].Name(), ShouldEqual, "June")
		})
	})
}

func TestMemoryStore_ConcurrentAdmission(t *testing.T) {
	Convey("Given many goroutines racing for the same slot", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()

		var wg sync.WaitGroup
		var accepted atomic.Int32
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if s.AddOneTime(ctx, model.NewOneTime("Slot", may1, rng(10, 0, 11, 0))) == nil {
					accepted.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one wins", func() {
			So(int(accepted.Load()), ShouldEqual, 1)
			So(s.Count(ctx), ShouldEqual, 1)
		})
	})
}

func TestMemoryStore_Observer(t *testing.T) {
	Convey("Given a store with an observer", t, func() {
		ctx := context.Background()
		var calls int
		s := NewMemoryStore(WithObserver(func(context.Context) { calls++ }))

		Convey("Then only effective mutations notify", func() {
			So(s.AddOneTime(ctx, model.NewOneTime("A", may1, rng(9, 0, 10, 0))), ShouldBeNil)
			So(s.AddOneTime(ctx, model.NewOneTime("B", may1, rng(9, 0, 10, 0))), ShouldNotBeNil)
			So(s.DeleteAllOneTimeOn(ctx, may1.AddDays(1)), ShouldEqual, 0)
			So(s.DeleteOneTimeByDateAndName(ctx, may1, "a"), ShouldBeTrue)
			So(calls, ShouldEqual, 2)
		})
	})
}

func TestMemoryStore_LunchThenGym(t *testing.T) {
	Convey("Given a store holding Lunch from 12:00 to 13:00", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		So(s.AddOneTime(ctx, model.NewOneTime("Lunch", may1, rng(12, 0, 13, 0))), ShouldBeNil)

		Convey("When Gym is booked at 12:30", func() {
			err := s.AddOneTime(ctx, model.NewOneTime("Gym", may1, rng(12, 30, 13, 30)))

			Convey("Then it conflicts and the store keeps one event", func() {
				So(errors.Is(err, ErrConflict), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("And booking it at 13:00 instead succeeds in start order", func() {
				So(s.AddOneTime(ctx, model.NewOneTime("Gym", may1, rng(13, 0, 14, 0))), ShouldBeNil)
				So(s.Count(ctx), ShouldEqual, 2)

				occ := s.OccurrencesOn(ctx, may1)
				So(names(occ), ShouldResemble, []string{"Lunch", "Gym"})
				So(occ[0].Time, ShouldResemble, rng(12, 0, 13, 0))
				So(occ[1].Time, ShouldResemble, rng(13, 0, 14, 0))
			})
		})
	})
}

func TestMemoryStore_RejectedAddLeavesStoreUnchanged(t *testing.T) {
	Convey("Given a store with one-time and recurring events", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		s.AddAll(ctx, []model.Event{
			model.NewOneTime("Lunch", may1, rng(12, 0, 13, 0)),
			model.NewRecurring("Gym", mwf(), rng(7, 0, 8, 0), may1, may1.AddDays(30)),
			model.NewOneTime("Review", may1.AddDays(1), rng(9, 0, 10, 0)),
		})
		before := s.All(ctx)

		Convey("When conflicting events are refused", func() {
			attempts := []model.Event{
				model.NewOneTime("Call", may1, rng(12, 59, 13, 30)),
				model.NewOneTime("Swim", may1.AddDays(5), rng(7, 30, 7, 45)), // Monday, over Gym
				model.NewOneTime("Review again", may1.AddDays(1), rng(8, 0, 9, 1)),
			}
			for _, ev := range attempts {
				So(errors.Is(s.AddOneTime(ctx, ev), ErrConflict), ShouldBeTrue)
			}

			Convey("Then the contents match what was there before", func() {
				after := s.All(ctx)
				So(after, ShouldHaveLength, len(before))
				for i := range before {
					So(after[i].ID(), ShouldEqual, before[i].ID())
					So(after[i].Name(), ShouldEqual, before[i].Name())
					So(after[i].Time(), ShouldResemble, before[i].Time())
				}
			})
		})
	})
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	Convey("Given a store with two events on the same day", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		So(s.AddOneTime(ctx, model.NewOneTime("Lunch", may1, rng(12, 0, 13, 0))), ShouldBeNil)
		So(s.AddOneTime(ctx, model.NewOneTime("Call", may1, rng(14, 0, 15, 0))), ShouldBeNil)
		size := s.Count(ctx)

		Convey("When the same delete is issued twice", func() {
			first := s.DeleteOneTimeByDateAndName(ctx, may1, "Lunch")
			second := s.DeleteOneTimeByDateAndName(ctx, may1, "Lunch")

			Convey("Then only the first removes an event", func() {
				So(first, ShouldBeTrue)
				So(second, ShouldBeFalse)
				So(s.Count(ctx), ShouldEqual, size-1)
				So(names(s.OccurrencesOn(ctx, may1)), ShouldResemble, []string{"Call"})
			})
		})
	})
}

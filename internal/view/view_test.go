package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/okian/daybook/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMonth(t *testing.T) {
	Convey("Given May 2024 with today on the 15th and events on the 1st and 15th", t, func() {
		var buf bytes.Buffer
		today := model.NewDate(2024, time.May, 15)
		busy := map[model.Date]bool{
			model.NewDate(2024, time.May, 1):  true,
			model.NewDate(2024, time.May, 15): true,
		}
		err := Month(&buf, model.NewDate(2024, time.May, 20), today, func(d model.Date) bool { return busy[d] })
		lines := strings.Split(buf.String(), "\n")

		Convey("Then the header and the first week are laid out Sunday first", func() {
			So(err, ShouldBeNil)
			So(lines[0], ShouldEqual, "MAY 2024")
			So(lines[1], ShouldEqual, "Su Mo Tu We Th Fr Sa")
			// May 1 2024 is a Wednesday.
			So(lines[2], ShouldEqual, "         {1} 2  3  4 ")
		})

		Convey("Then today wins over the event marker", func() {
			So(lines[4], ShouldStartWith, "12 13 14 [15]16 17 18")
		})

		Convey("Then the last week ends the grid", func() {
			So(lines[6], ShouldEqual, "26 27 28 29 30 31 ")
		})
	})

	Convey("Given a month starting on Sunday without events", t, func() {
		var buf bytes.Buffer
		err := Month(&buf, model.NewDate(2024, time.September, 1), model.NewDate(2000, time.January, 1), nil)

		Convey("Then there is no leading padding", func() {
			So(err, ShouldBeNil)
			So(strings.Split(buf.String(), "\n")[2], ShouldEqual, " 1  2  3  4  5  6  7 ")
		})
	})
}

func TestDay(t *testing.T) {
	Convey("Given a day view", t, func() {
		d := model.NewDate(2024, time.May, 1)

		Convey("When there are no events", func() {
			var buf bytes.Buffer
			So(Day(&buf, d, nil), ShouldBeNil)

			Convey("Then a placeholder is shown", func() {
				So(buf.String(), ShouldEqual, "Wed, May 1, 2024\n(No events)\n")
			})
		})

		Convey("When there are events", func() {
			var buf bytes.Buffer
			occs := []model.Occurrence{
				{Name: "Lunch", Date: d, Time: model.TimeRange{Start: model.MustClock(12, 0), End: model.MustClock(13, 0)}},
				{Name: "Gym", Date: d, Time: model.TimeRange{Start: model.MustClock(7, 0), End: model.MustClock(8, 0)}, Recurring: true},
			}
			So(Day(&buf, d, occs), ShouldBeNil)

			Convey("Then they are listed by start time", func() {
				So(buf.String(), ShouldEqual, "Wed, May 1, 2024\nGym : 07:00 - 08:00\nLunch : 12:00 - 13:00\n")
			})
		})
	})
}

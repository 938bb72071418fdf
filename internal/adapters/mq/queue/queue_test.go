package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/daybook/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity two", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("When enqueuing past capacity", func() {
			a := q.Enqueue(ctx, queue.Request{Reason: "add", At: time.Now()})
			b := q.Enqueue(ctx, queue.Request{Reason: "delete", At: time.Now()})
			c := q.Enqueue(ctx, queue.Request{Reason: "overflow", At: time.Now()})

			Convey("Then the overflow is dropped", func() {
				So(a, ShouldBeTrue)
				So(b, ShouldBeTrue)
				So(c, ShouldBeFalse)
				So(q.Len(), ShouldEqual, 2)
			})

			Convey("Then requests come out in order", func() {
				So((<-q.Dequeue()).Reason, ShouldEqual, "add")
				So((<-q.Dequeue()).Reason, ShouldEqual, "delete")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, queue.Request{Reason: "pending"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue fails but pending requests drain", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.Request{Reason: "late"}), ShouldBeFalse)
				r, ok := <-q.Dequeue()
				So(ok, ShouldBeTrue)
				So(r.Reason, ShouldEqual, "pending")
				_, ok = <-q.Dequeue()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue refuses", func() {
				So(q.Enqueue(cctx, queue.Request{Reason: "x"}), ShouldBeFalse)
			})
		})
	})
}

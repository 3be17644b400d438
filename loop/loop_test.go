package loop

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoop(t *testing.T) {
	Convey("Given a running loop", t, func() {
		l := New()
		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() { l.Run(ctx); close(stopped) }()

		Convey("Tasks run in posting order", func() {
			var got []int
			for i := 0; i < 5; i++ {
				i := i
				l.Post(func() { got = append(got, i) })
			}
			l.Do(func() {})
			So(got, ShouldResemble, []int{0, 1, 2, 3, 4})
		})

		Convey("Tasks may post follow-up work without blocking", func() {
			var got []string
			l.Do(func() {
				l.Post(func() { got = append(got, "second") })
				got = append(got, "first")
			})
			l.Do(func() {})
			So(got, ShouldResemble, []string{"first", "second"})
		})

		Convey("AfterFunc fires on the loop and can be cancelled", func() {
			fired := make(chan struct{})
			l.AfterFunc(time.Millisecond, func() { close(fired) })
			cancelled := false
			stop := l.AfterFunc(time.Hour, func() { cancelled = true })
			stop()

			select {
			case <-fired:
			case <-time.After(time.Second):
				t.Fatal("timer did not fire")
			}
			So(cancelled, ShouldBeFalse)
		})

		Reset(func() {
			cancel()
			<-stopped
			So(l.Post(func() {}), ShouldBeFalse)
		})
	})
}

func TestManual(t *testing.T) {
	Convey("Given a manual scheduler", t, func() {
		m := NewManual()
		var fired []string

		m.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "b") })
		m.AfterFunc(100*time.Millisecond, func() {
			fired = append(fired, "a")
			m.AfterFunc(50*time.Millisecond, func() { fired = append(fired, "a2") })
		})
		cancel := m.AfterFunc(120*time.Millisecond, func() { fired = append(fired, "cancelled") })
		cancel()

		Convey("Advance fires due timers in deadline order, including chained ones", func() {
			m.Advance(200 * time.Millisecond)
			So(fired, ShouldResemble, []string{"a", "a2", "b"})
			So(m.Pending(), ShouldEqual, 0)
		})

		Convey("Timers beyond the window stay pending", func() {
			m.Advance(100 * time.Millisecond)
			So(fired, ShouldResemble, []string{"a"})
			So(m.Pending(), ShouldEqual, 2)
			So(m.Delays, ShouldResemble, []time.Duration{200 * time.Millisecond, 100 * time.Millisecond, 120 * time.Millisecond, 50 * time.Millisecond})
		})
	})
}

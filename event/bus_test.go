package event

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBus(t *testing.T) {
	Convey("Given a bus with kind and catch-all listeners", t, func() {
		bus := NewBus()
		var pauses, all int
		offPause := bus.On(Pause, func(Event) { pauses++ })
		bus.OnAny(func(Event) { all++ })

		Convey("Trigger reaches matching listeners only", func() {
			bus.Trigger(Event{Kind: Pause})
			bus.Trigger(Event{Kind: Play})
			So(pauses, ShouldEqual, 1)
			So(all, ShouldEqual, 2)
		})

		Convey("Removed listeners stop receiving events", func() {
			offPause()
			bus.Trigger(Event{Kind: Pause})
			So(pauses, ShouldEqual, 0)
			So(all, ShouldEqual, 1)
		})

		Convey("Listeners may unsubscribe while handling an event", func() {
			var off func()
			calls := 0
			off = bus.On(Stop, func(Event) { calls++; off() })
			bus.Trigger(Event{Kind: Stop})
			bus.Trigger(Event{Kind: Stop})
			So(calls, ShouldEqual, 1)
		})
	})
}

func TestRecorder(t *testing.T) {
	Convey("Recorder keeps events in order", t, func() {
		var r Recorder
		var host Host = &r
		host.Trigger(Event{Kind: Buffering})
		host.Trigger(Event{Kind: BufferFull, Payload: "x"})
		host.Trigger(Event{Kind: Buffering})

		So(r.Kinds(), ShouldResemble, []Kind{Buffering, BufferFull, Buffering})
		So(r.Count(Buffering), ShouldEqual, 2)

		last, ok := r.Last(BufferFull)
		So(ok, ShouldBeTrue)
		So(last.Payload, ShouldEqual, "x")

		_, ok = r.Last(Ready)
		So(ok, ShouldBeFalse)

		r.Reset()
		So(r.Events(), ShouldBeEmpty)
	})
}

package media

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRanges(t *testing.T) {
	Convey("Given seekable ranges", t, func() {
		r := Ranges{{0, 10}, {11, 100}, {101, 1000}}

		Convey("Accessors return bounds for valid indices", func() {
			start, err := r.Start(0)
			So(err, ShouldBeNil)
			So(start, ShouldEqual, 0)

			end, err := r.End(r.Len() - 1)
			So(err, ShouldBeNil)
			So(end, ShouldEqual, 1000)
		})

		Convey("Out-of-range indices fail with ErrIndexSize", func() {
			_, err := r.Start(3)
			So(err, ShouldEqual, ErrIndexSize)
			_, err = Ranges{}.End(-1)
			So(err, ShouldEqual, ErrIndexSize)
		})
	})
}

func TestSource(t *testing.T) {
	Convey("Given a source with an error listener", t, func() {
		s := NewSource("http://example.com/a.mp4", "video/mp4")
		var got []*MediaError
		remove := s.OnError(func(err *MediaError) { got = append(got, err) })

		Convey("Fail notifies listeners and records the error", func() {
			s.Fail(&MediaError{Code: ErrNetwork, Message: "offline"})
			So(got, ShouldHaveLength, 1)
			So(s.Error().Code, ShouldEqual, ErrNetwork)
		})

		Convey("Removed listeners are not notified", func() {
			remove()
			s.Fail(&MediaError{Code: ErrDecode})
			So(got, ShouldBeEmpty)
		})

		Convey("Clear blanks the URL", func() {
			s.Clear()
			So(s.URL, ShouldBeEmpty)
		})
	})
}

func TestEventKinds(t *testing.T) {
	Convey("Every event kind has a native name", t, func() {
		for _, k := range EventKinds() {
			So(k.String(), ShouldNotEqual, "unknown")
		}
		So(EventKind(99).String(), ShouldEqual, "unknown")
		So(ErrorEvent.String(), ShouldEqual, "error")
		So(HaveFutureData.String(), ShouldEqual, "HAVE_FUTURE_DATA")
	})
}

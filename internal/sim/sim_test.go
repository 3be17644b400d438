package sim

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/log"

	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	log.Use(io.Discard, "debug", false)
}

func step(r Result, k event.Kind) (Step, bool) {
	return lo.Find(r.Steps, func(s Step) bool { return s.Kind == k })
}

func TestRun(t *testing.T) {
	Convey("Given a VOD session without DRM", t, func() {
		r := Run(Options{})
		kinds := r.Kinds()

		Convey("The lifecycle events are published in order", func() {
			order := []event.Kind{
				event.LoadedMetadata,
				event.AudioTracksAvailable,
				event.Ready,
				event.Play,
				event.TimeUpdate,
				event.Buffering,
				event.BufferFull,
				event.AudioTrackChanged,
				event.Seek,
				event.Seeked,
				event.Ended,
			}
			last := -1
			for _, k := range order {
				i := lo.IndexOf(kinds, k)
				So(i, ShouldBeGreaterThan, last)
				last = i
			}
			So(lo.Count(kinds, event.TimeUpdate), ShouldEqual, 3)
		})

		Convey("Steps carry the clock and engine state", func() {
			ready, ok := step(r, event.Ready)
			So(ok, ShouldBeTrue)
			So(ready.At, ShouldEqual, 600*time.Millisecond)
			So(ready.State, ShouldEqual, "ready")

			changed, _ := step(r, event.AudioTrackChanged)
			So(changed.Payload, ShouldEqual, "audio=2")
		})

		Convey("It ends before being destroyed", func() {
			So(r.Final, ShouldEqual, "ended")
			So(r.DRMMessages, ShouldBeEmpty)
			So(kinds, ShouldNotContain, event.DVRStatusChanged)
		})
	})

	Convey("Given a live session", t, func() {
		r := Run(Options{Live: true})

		Convey("Seeking back leaves the live edge", func() {
			dvr, ok := step(r, event.DVRStatusChanged)
			So(ok, ShouldBeTrue)
			So(dvr.Payload, ShouldEqual, "true")
			So(r.Kinds(), ShouldNotContain, event.Ended)
			So(r.Final, ShouldEqual, "stopped")
		})
	})

	Convey("Given a license server", t, func() {
		opts := Options{LicenseURL: "https://license.example/rightsmanager.asmx", DRMDelay: 200 * time.Millisecond}

		Convey("A granted license delays the attach", func() {
			r := Run(opts)

			ready, ok := step(r, event.Ready)
			So(ok, ShouldBeTrue)
			So(ready.At, ShouldEqual, 800*time.Millisecond)

			So(r.DRMMessages, ShouldHaveLength, 2)
			So(r.DRMMessages[0].Payload, ShouldContainSubstring, "<LA_URL>https://license.example/rightsmanager.asmx</LA_URL>")
			So(r.DRMMessages[0].SystemID, ShouldEqual, drm.SystemID)
			So(r.DRMMessages[1].Payload, ShouldEqual, drm.ClearEnvelope())
			So(r.Final, ShouldEqual, "ended")
		})

		Convey("A rejected license is fatal", func() {
			opts.DRMCode = 3
			r := Run(opts)

			failed, ok := step(r, event.Error)
			So(ok, ShouldBeTrue)
			So(failed.At, ShouldEqual, 200*time.Millisecond)
			So(strings.HasPrefix(failed.Payload, "FATAL drm:wrong_format"), ShouldBeTrue)
			So(r.Kinds(), ShouldNotContain, event.Ready)
			So(r.Final, ShouldEqual, "errored")
		})

		Convey("A silent agent times out", func() {
			opts.DRMDelay = 0
			opts.DRMTimeout = time.Second
			r := Run(opts)

			failed, ok := step(r, event.Error)
			So(ok, ShouldBeTrue)
			So(failed.At, ShouldEqual, time.Second)
			So(failed.Payload, ShouldContainSubstring, "drm:timeout")
			So(r.DRMMessages, ShouldHaveLength, 1)
		})
	})
}

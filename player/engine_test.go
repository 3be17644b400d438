package player_test

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/log"
	"github.com/tvplay-cli/tvplay/loop"
	"github.com/tvplay-cli/tvplay/media"
	"github.com/tvplay-cli/tvplay/media/mediatest"
	"github.com/tvplay-cli/tvplay/mime"
	"github.com/tvplay-cli/tvplay/player"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	log.Use(io.Discard, "debug", false)
	goleak.VerifyTestMain(m)
}

const (
	vodURL  = "https://cdn.example.com/vod/movie.mp4"
	liveURL = "https://cdn.example.com/live/channel.m3u8?token=abc"
)

type fixture struct {
	el     *mediatest.Element
	host   *event.Recorder
	clock  *loop.Manual
	engine *player.Engine
}

func newFixture(cfg player.Config, opts ...player.Option) *fixture {
	f := &fixture{
		el:    mediatest.NewElement(),
		host:  &event.Recorder{},
		clock: loop.NewManual(),
	}
	f.el.Tracks = mediatest.NewTrackList(
		&mediatest.Track{TrackID: "1", Lang: "en", TrackLabel: "English", TrackKind: "main", IsEnabled: true},
		&mediatest.Track{TrackID: "2", Lang: "pt", TrackLabel: "Português", TrackKind: "translation"},
	)
	f.engine = player.NewEngine(f.el, f.host, f.clock, cfg, opts...)
	return f
}

func (f *fixture) live(ranges media.TimeRanges) {
	f.el.Dur = media.Unbounded
	f.el.Ranges = ranges
}

func warned(hook *test.Hook, fragment string) bool {
	return lo.ContainsBy(hook.AllEntries(), func(e *logrus.Entry) bool {
		return e.Level == logrus.WarnLevel && strings.Contains(e.Message, fragment)
	})
}

func TestCanPlay(t *testing.T) {
	Convey("Given source URLs", t, func() {
		for _, url := range []string{
			"http://example.com/video.mp4",
			"http://example.com/playlist.m3u8?token=1",
			"http://example.com/list.m3u",
			"http://example.com/stream.ism/Manifest",
			"http://example.com/a.ism/b.ism/manifest",
		} {
			So(player.CanPlay(url, ""), ShouldBeTrue)
		}

		So(player.CanPlay("http://example.com/video.avi", ""), ShouldBeFalse)
		So(player.CanPlay("http://example.com/video", mime.SmoothStreaming), ShouldBeTrue)
	})
}

func TestSource(t *testing.T) {
	Convey("Given an engine constructed with a source", t, func() {
		f := newFixture(player.Config{Src: liveURL})

		Convey("The source is attached and loaded with its MIME type", func() {
			So(f.engine.State(), ShouldEqual, player.SourceAttached)
			So(f.el.Sources, ShouldHaveLength, 1)
			So(f.el.Attached().Type, ShouldEqual, mime.AppleMpegURL)
			So(f.el.LoadedURLs, ShouldResemble, []string{liveURL})
			So(f.engine.SourceURL(), ShouldEqual, liveURL)
			So(f.engine.MimeType(), ShouldEqual, mime.AppleMpegURL)
		})

		Convey("Setting the same URL again does nothing", func() {
			So(f.engine.SetSource(liveURL), ShouldBeNil)
			So(f.el.Sources, ShouldHaveLength, 1)
			So(f.el.LoadCalls, ShouldEqual, 1)
		})

		Convey("Setting another URL replaces the source", func() {
			So(f.engine.SetSource(vodURL), ShouldBeNil)
			So(f.el.Sources, ShouldHaveLength, 1)
			So(f.el.Attached().URL, ShouldEqual, vodURL)
			So(f.el.LoadedURLs, ShouldResemble, []string{liveURL, "", vodURL})
		})

		Convey("Load re-attaches even the same URL", func() {
			So(f.engine.Load(liveURL), ShouldBeNil)
			So(f.el.Sources, ShouldHaveLength, 1)
			So(f.el.LoadedURLs, ShouldResemble, []string{liveURL, "", liveURL})
		})

		Convey("An empty URL is refused", func() {
			So(errors.Is(f.engine.SetSource(""), player.ErrNoSource), ShouldBeTrue)
		})
	})

	Convey("Given an engine without a source", t, func() {
		f := newFixture(player.Config{})

		So(f.engine.State(), ShouldEqual, player.Initial)
		So(f.el.Sources, ShouldBeEmpty)
		So(f.engine.Play(), ShouldBeNil)
		So(f.el.PlayCalls, ShouldEqual, 1)
		So(f.el.Sources, ShouldBeEmpty)
	})
}

func TestSeek(t *testing.T) {
	Convey("Given an attached on-demand source", t, func() {
		hook := test.NewGlobal()
		f := newFixture(player.Config{Src: vodURL})
		f.el.Dur = 600

		Convey("A negative seek is refused without side effects", func() {
			err := f.engine.Seek(-1)
			So(errors.Is(err, player.ErrNegativeSeek), ShouldBeTrue)
			So(f.el.SeekTargets, ShouldBeEmpty)
			So(f.el.Time, ShouldEqual, 0)
			So(f.host.Count(event.Seek), ShouldEqual, 0)
			So(warned(hook, "negative"), ShouldBeTrue)
		})

		Convey("Seeking is offset by the seekable start", func() {
			f.el.Ranges = media.Ranges{{Start: 5, End: 600}}
			So(f.engine.Seek(10), ShouldBeNil)
			So(f.el.SeekTargets, ShouldResemble, []float64{15})
		})

		Convey("Seeking at face value when the seekable start is unavailable", func() {
			f.el.Ranges = mediatest.BrokenRanges{}
			So(f.engine.Seek(10), ShouldBeNil)
			So(f.el.SeekTargets, ShouldResemble, []float64{10})
			So(warned(hook, "seekable start"), ShouldBeTrue)
		})

		Convey("On-demand seeks publish no DVR status", func() {
			So(f.engine.Seek(10), ShouldBeNil)
			So(f.host.Count(event.DVRStatusChanged), ShouldEqual, 0)
		})
	})
}

func TestLive(t *testing.T) {
	Convey("Given an attached live source", t, func() {
		hook := test.NewGlobal()
		f := newFixture(player.Config{Src: liveURL})

		Convey("The media type follows the unbounded duration", func() {
			So(f.engine.MediaType(), ShouldEqual, player.VOD)
			f.live(media.Ranges{{Start: 0, End: 30}})
			So(f.engine.MediaType(), ShouldEqual, player.Live)
			So(f.engine.IsLive(), ShouldBeTrue)
		})

		Convey("The live duration spans the seekable ranges", func() {
			f.live(media.Ranges{{Start: 0, End: 10}, {Start: 11, End: 100}, {Start: 101, End: 1000}})
			So(f.engine.Duration(), ShouldEqual, 1000)
		})

		Convey("The raw duration is used when ranges fail", func() {
			f.live(mediatest.BrokenRanges{})
			So(math.IsInf(f.engine.Duration(), 1), ShouldBeTrue)
			So(warned(hook, "live duration"), ShouldBeTrue)
		})

		Convey("DVR is enabled from the minimum window size", func() {
			f.live(media.Ranges{{Start: 0, End: 120}})
			So(f.engine.DVREnabled(), ShouldBeTrue)

			f.live(media.Ranges{{Start: 0, End: 10}})
			So(f.engine.DVREnabled(), ShouldBeFalse)

			f.el.Dur = 120
			So(f.engine.DVREnabled(), ShouldBeFalse)
		})

		Convey("With DVR enabled", func() {
			f.live(media.Ranges{{Start: 1000, End: 1120}})

			Convey("Seeking away from the live edge reports DVR on", func() {
				So(f.engine.Seek(50), ShouldBeNil)
				dvr, ok := f.host.Last(event.DVRStatusChanged)
				So(ok, ShouldBeTrue)
				So(dvr.Payload, ShouldEqual, true)
				stats, _ := f.host.Last(event.StatsAdd)
				So(stats.Payload, ShouldResemble, map[string]any{"dvr": true})
				So(f.el.SeekTargets, ShouldResemble, []float64{1050})
			})

			Convey("Seeking within the threshold of the edge reports DVR off", func() {
				So(f.engine.Seek(118), ShouldBeNil)
				dvr, _ := f.host.Last(event.DVRStatusChanged)
				So(dvr.Payload, ShouldEqual, false)
			})

			Convey("Pausing reports DVR on", func() {
				So(f.engine.Pause(), ShouldBeNil)
				So(f.el.PauseCalls, ShouldEqual, 1)
				dvr, _ := f.host.Last(event.DVRStatusChanged)
				So(dvr.Payload, ShouldEqual, true)
			})
		})

		Convey("A custom minimum DVR size is honoured", func() {
			g := newFixture(player.Config{Src: liveURL, MinimumDVRSize: 200})
			g.live(media.Ranges{{Start: 0, End: 120}})
			So(g.engine.DVRSize(), ShouldEqual, 200)
			So(g.engine.DVREnabled(), ShouldBeFalse)
		})

		Convey("The playback type can be overridden", func() {
			So(f.engine.PlaybackType(), ShouldEqual, player.VOD)
			f.engine.SetPlaybackType(player.Live)
			So(f.engine.PlaybackType(), ShouldEqual, player.Live)
		})
	})
}

func TestReadiness(t *testing.T) {
	Convey("Given an attached source that is not ready", t, func() {
		f := newFixture(player.Config{Src: vodURL})
		f.el.Emit(media.CanPlay)

		Convey("Retries double from 100ms until the threshold is met", func() {
			So(f.clock.Delays, ShouldResemble, []time.Duration{100 * time.Millisecond})
			f.clock.Advance(100 * time.Millisecond)
			f.clock.Advance(200 * time.Millisecond)
			So(f.clock.Delays, ShouldResemble, []time.Duration{
				100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond,
			})
			So(f.host.Count(event.Ready), ShouldEqual, 0)

			f.el.State = media.HaveFutureData
			f.clock.Advance(400 * time.Millisecond)
			So(f.host.Count(event.Ready), ShouldEqual, 1)
			So(f.engine.IsReady(), ShouldBeTrue)
			So(f.engine.State(), ShouldEqual, player.Ready)
			So(f.clock.Pending(), ShouldEqual, 0)

			Convey("And ready fires only once per source", func() {
				f.el.Emit(media.CanPlay)
				f.clock.Advance(time.Second)
				So(f.host.Count(event.Ready), ShouldEqual, 1)
			})
		})

		Convey("Repeated canplay events share one retry chain", func() {
			f.el.Emit(media.CanPlay)
			f.el.Emit(media.CanPlay)
			So(f.clock.Pending(), ShouldEqual, 1)
		})

		Convey("A retry for a replaced source stays silent", func() {
			So(f.engine.SetSource(liveURL), ShouldBeNil)
			f.el.State = media.HaveEnoughData
			f.clock.Advance(time.Minute)
			So(f.host.Count(event.Ready), ShouldEqual, 0)
			So(f.engine.IsReady(), ShouldBeFalse)
		})
	})

	Convey("Given a source that is ready at once", t, func() {
		f := newFixture(player.Config{Src: vodURL})
		f.el.State = media.HaveEnoughData
		f.el.Emit(media.CanPlay)

		So(f.host.Count(event.Ready), ShouldEqual, 1)
		So(f.clock.Delays, ShouldBeEmpty)
	})

	Convey("Given a backoff ceiling", t, func() {
		f := newFixture(player.Config{Src: vodURL, ReadyBackoffCeiling: 150 * time.Millisecond})
		f.el.Emit(media.CanPlay)
		f.clock.Advance(100 * time.Millisecond)
		f.clock.Advance(150 * time.Millisecond)

		So(f.clock.Delays, ShouldResemble, []time.Duration{
			100 * time.Millisecond, 150 * time.Millisecond, 150 * time.Millisecond,
		})
	})
}

func TestElementEvents(t *testing.T) {
	Convey("Given an attached and ready source", t, func() {
		f := newFixture(player.Config{Src: vodURL})
		f.el.State = media.HaveEnoughData
		f.el.Dur = 600
		f.el.Emit(media.CanPlay)
		f.host.Reset()

		Convey("Buffering is reported and cleared", func() {
			f.el.Emit(media.Waiting)
			So(f.engine.IsBuffering(), ShouldBeTrue)
			So(f.engine.State(), ShouldEqual, player.Buffering)
			f.el.Emit(media.CanPlay)
			So(f.engine.IsBuffering(), ShouldBeFalse)
			So(f.host.Kinds(), ShouldResemble, []event.Kind{event.Buffering, event.BufferFull})
		})

		Convey("Play and pause events are normalized", func() {
			So(f.engine.Play(), ShouldBeNil)
			f.el.Emit(media.PlayEvent)
			f.el.Emit(media.Playing)
			So(f.engine.State(), ShouldEqual, player.Playing)
			So(f.engine.IsPlaying(), ShouldBeTrue)
			So(f.engine.Pause(), ShouldBeNil)
			f.el.Emit(media.PauseEvent)
			So(f.engine.State(), ShouldEqual, player.Paused)
			So(f.host.Kinds(), ShouldResemble, []event.Kind{event.PlayIntent, event.Play, event.Pause})
		})

		Convey("Seeking and seeked are normalized", func() {
			f.el.Emit(media.Seeking)
			So(f.engine.State(), ShouldEqual, player.Seeking)
			f.el.Emit(media.Seeked)
			So(f.engine.State(), ShouldEqual, player.Paused)
			So(f.host.Kinds(), ShouldResemble, []event.Kind{event.Seek, event.Seeked})
		})

		Convey("Time updates carry position and duration", func() {
			f.el.Time = 42
			f.el.Emit(media.TimeUpdate)
			evt, _ := f.host.Last(event.TimeUpdate)
			So(evt.Payload, ShouldResemble, event.TimeProgress{Current: 42, Total: 600})
			So(evt.Source, ShouldEqual, "html5_tvs_playback")
		})

		Convey("Loaded metadata carries the duration", func() {
			f.el.Emit(media.LoadedMetadata)
			evt, _ := f.host.Last(event.LoadedMetadata)
			So(evt.Payload, ShouldResemble, event.Metadata{Duration: 600})
		})

		Convey("Passive events publish nothing", func() {
			for _, kind := range []media.EventKind{media.Stalled, media.Progress, media.Suspend, media.RateChange} {
				f.el.Emit(kind)
			}
			So(f.host.Events(), ShouldBeEmpty)
		})

		Convey("Ended tears down the source but keeps its URL", func() {
			f.el.Emit(media.EndedEvent)
			So(f.host.Kinds(), ShouldResemble, []event.Kind{event.Ended})
			So(f.el.Sources, ShouldBeEmpty)
			So(f.engine.State(), ShouldEqual, player.Ended)
			So(f.engine.SourceURL(), ShouldEqual, vodURL)

			So(f.engine.Play(), ShouldBeNil)
			So(f.el.Attached().URL, ShouldEqual, vodURL)
			So(f.engine.IsReady(), ShouldBeFalse)
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given an attached source", t, func() {
		f := newFixture(player.Config{Src: vodURL})

		Convey("Element errors carry the native code", func() {
			f.el.Err = &media.MediaError{Code: media.ErrDecode, Message: "corrupt frame"}
			f.el.Emit(media.ErrorEvent)

			evt, ok := f.host.Last(event.Error)
			So(ok, ShouldBeTrue)
			perr := evt.Payload.(*player.Error)
			So(perr.Code, ShouldEqual, "media:3")
			So(perr.Description, ShouldEqual, "corrupt frame")
			So(perr.Fatal(), ShouldBeTrue)
			So(f.engine.State(), ShouldEqual, player.Errored)
		})

		Convey("Missing error details fall back to unknown", func() {
			f.el.Emit(media.ErrorEvent)
			evt, _ := f.host.Last(event.Error)
			perr := evt.Payload.(*player.Error)
			So(perr.Code, ShouldEqual, "media:unknown")
			So(perr.Description, ShouldEqual, "unknown")
			So(perr.Level, ShouldEqual, event.LevelFatal)
		})

		Convey("Source errors win over element errors", func() {
			f.el.Err = &media.MediaError{Code: media.ErrDecode, Message: "decode"}
			f.el.Attached().Fail(&media.MediaError{Code: media.ErrSrcNotSupported, Message: "unsupported"})

			evt, _ := f.host.Last(event.Error)
			perr := evt.Payload.(*player.Error)
			So(perr.Code, ShouldEqual, "media:4")
			So(perr.Description, ShouldEqual, "unsupported")
		})

		Convey("A rejected play request is only logged", func() {
			f.el.PlayError = errors.New("play() interrupted by pause()")
			So(f.engine.Play(), ShouldBeNil)
			So(f.host.Count(event.Error), ShouldEqual, 0)
		})
	})
}

func TestAudioTracks(t *testing.T) {
	Convey("Given an element with two audio tracks", t, func() {
		f := newFixture(player.Config{Src: vodURL})

		Convey("Tracks are described in order", func() {
			So(f.engine.AudioTracks(), ShouldResemble, []player.AudioTrackDescriptor{
				{ID: "1", Language: "en", Label: "English", Kind: "main"},
				{ID: "2", Language: "pt", Label: "Português", Kind: "translation"},
			})
			So(f.engine.CurrentAudioTrack().MustGet().ID, ShouldEqual, "1")
		})

		Convey("An unknown id changes nothing", func() {
			So(f.engine.SwitchAudioTrack("9"), ShouldBeNil)
			So(f.engine.CurrentAudioTrack().MustGet().ID, ShouldEqual, "1")
			So(f.host.Count(event.AudioTrackChanged), ShouldEqual, 0)
		})

		Convey("The active id changes nothing", func() {
			So(f.engine.SwitchAudioTrack("1"), ShouldBeNil)
			So(f.host.Count(event.AudioTrackChanged), ShouldEqual, 0)
		})

		Convey("Switching enables exactly one track", func() {
			So(f.engine.SwitchAudioTrack("2"), ShouldBeNil)
			So(f.engine.CurrentAudioTrack().MustGet().ID, ShouldEqual, "2")
			So(f.el.Tracks.TrackByID("1").Enabled(), ShouldBeFalse)

			evt, _ := f.host.Last(event.AudioTrackChanged)
			So(evt.Payload, ShouldResemble, player.AudioTrackDescriptor{ID: "2", Language: "pt", Label: "Português", Kind: "translation"})
		})

		Convey("Track list changes publish the available tracks", func() {
			f.el.Tracks.Add(&mediatest.Track{TrackID: "3", Lang: "es"})
			evt, _ := f.host.Last(event.AudioTracksAvailable)
			So(evt.Payload, ShouldHaveLength, 3)

			f.el.Tracks.Remove("3")
			So(f.host.Count(event.AudioTracksAvailable), ShouldEqual, 2)
		})
	})

	Convey("Given an element without audio track support", t, func() {
		el := mediatest.NewElement()
		e := player.NewEngine(el, &event.Recorder{}, loop.NewManual(), player.Config{})
		So(e.AudioTracks(), ShouldBeEmpty)
		So(e.CurrentAudioTrack().IsAbsent(), ShouldBeTrue)
		So(e.SwitchAudioTrack("1"), ShouldBeNil)
	})
}

func TestStopAndDestroy(t *testing.T) {
	Convey("Given a playing source", t, func() {
		f := newFixture(player.Config{Src: vodURL})
		So(f.engine.Play(), ShouldBeNil)

		Convey("Stop pauses, detaches and reports", func() {
			So(f.engine.Stop(), ShouldBeNil)
			So(f.el.PauseCalls, ShouldEqual, 1)
			So(f.el.Sources, ShouldBeEmpty)
			So(f.el.LoadedURLs[len(f.el.LoadedURLs)-1], ShouldEqual, "")
			So(f.engine.IsStopped(), ShouldBeTrue)
			So(f.engine.State(), ShouldEqual, player.Stopped)
			So(f.host.Count(event.Stop), ShouldEqual, 1)

			Convey("And Play attaches the source again", func() {
				So(f.engine.Play(), ShouldBeNil)
				So(f.engine.IsStopped(), ShouldBeFalse)
				So(f.el.Attached().URL, ShouldEqual, vodURL)
			})

			Convey("A late canplay stays silent and the next source gets its own ready", func() {
				f.el.State = media.HaveEnoughData
				f.el.Emit(media.CanPlay)
				f.clock.Advance(time.Second)
				So(f.host.Count(event.Ready), ShouldEqual, 0)
				So(f.engine.IsReady(), ShouldBeFalse)
				So(f.clock.Pending(), ShouldEqual, 0)

				So(f.engine.Play(), ShouldBeNil)
				f.el.State = media.HaveEnoughData
				f.el.Emit(media.CanPlay)
				So(f.host.Count(event.Ready), ShouldEqual, 1)
				So(f.engine.IsReady(), ShouldBeTrue)
			})
		})

		Convey("Destroy is terminal and silent", func() {
			f.el.Emit(media.CanPlay)
			So(f.clock.Pending(), ShouldEqual, 1)

			So(f.engine.Destroy(), ShouldBeNil)
			So(f.engine.IsDestroyed(), ShouldBeTrue)
			So(f.engine.SourceURL(), ShouldEqual, "")
			So(f.el.Sources, ShouldBeEmpty)
			So(f.el.Listeners(), ShouldEqual, 0)
			So(f.el.Tracks.Listeners(), ShouldEqual, 0)
			So(f.engine.State(), ShouldEqual, player.Destroyed)

			f.host.Reset()
			f.el.State = media.HaveEnoughData
			f.clock.Advance(time.Minute)
			f.el.Emit(media.Waiting)
			f.el.Tracks.Add(&mediatest.Track{TrackID: "3"})
			So(f.host.Events(), ShouldBeEmpty)

			So(f.engine.Destroy(), ShouldBeNil)
			So(errors.Is(f.engine.Play(), player.ErrDestroyed), ShouldBeTrue)
			So(errors.Is(f.engine.SetSource(liveURL), player.ErrDestroyed), ShouldBeTrue)
			So(errors.Is(f.engine.Seek(1), player.ErrDestroyed), ShouldBeTrue)
		})
	})
}

type counter struct {
	events  map[string]int
	retries int
}

func (c *counter) PlaybackEvent(kind string) { c.events[kind]++ }
func (c *counter) ReadyRetry()               { c.retries++ }

func TestObserver(t *testing.T) {
	Convey("Given an observed engine", t, func() {
		c := &counter{events: map[string]int{}}
		f := newFixture(player.Config{Src: vodURL}, player.WithObserver(c))

		f.el.Emit(media.CanPlay)
		f.el.State = media.HaveFutureData
		f.clock.Advance(100 * time.Millisecond)

		So(c.retries, ShouldEqual, 1)
		So(c.events[string(event.Ready)], ShouldEqual, 1)
	})
}

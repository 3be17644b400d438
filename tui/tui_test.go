package tui

import (
	"io"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/internal/ui"
	"github.com/tvplay-cli/tvplay/log"
	"github.com/tvplay-cli/tvplay/loop"
	"github.com/tvplay-cli/tvplay/media"
	"github.com/tvplay-cli/tvplay/media/mediatest"
	"github.com/tvplay-cli/tvplay/player"

	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	log.Use(io.Discard, "debug", false)
}

// inline runs every call on the caller's goroutine.
type inline struct{}

func (inline) Do(fn func()) bool {
	fn()
	return true
}

type stopped struct{}

func (stopped) Do(func()) bool { return false }

func press(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run feeds msg to b, then every message its commands produce. Commands
// scheduled by notifications and spinner ticks sleep, so they are not run.
func run(b *bubble, msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]

		_, cmd := b.Update(m)
		if _, ok := m.(ui.NotificationMsg); ok {
			continue
		}
		queue = append(queue, collect(cmd)...)
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	switch out := cmd().(type) {
	case tea.BatchMsg:
		var msgs []tea.Msg
		for _, c := range out {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	case nil, spinner.TickMsg:
		return nil
	default:
		return []tea.Msg{out}
	}
}

func TestConsole(t *testing.T) {
	Convey("Given a console over a VOD playback", t, func() {
		el := mediatest.NewElement()
		el.Dur = 120
		el.Tracks = mediatest.NewTrackList(
			&mediatest.Track{TrackID: "1", Lang: "en", TrackLabel: "English", IsEnabled: true},
			&mediatest.Track{TrackID: "2", Lang: "fr"},
		)
		bus := event.NewBus()
		engine := player.NewEngine(el, bus, loop.NewManual(), player.Config{Src: "https://cdn.example/movie.mp4"})

		b := newBubble(&Session{Title: "movie.mp4", Playback: engine, Bus: bus, Runner: inline{}})
		b.resize(80, 24)

		Convey("It waits for the ready event", func() {
			So(b.state, ShouldEqual, loadingState)
			So(b.View(), ShouldContainSubstring, "Loading")

			run(b, eventMsg{event.Event{Kind: event.Ready}})
			So(b.state, ShouldEqual, playingState)
			So(b.status.total, ShouldEqual, 120)
			So(b.status.track, ShouldEqual, "1")
			So(b.View(), ShouldContainSubstring, "0:00 / 2:00")
		})

		Convey("A ready status read leaves the loading view", func() {
			run(b, statusMsg{ready: true, total: 120})
			So(b.state, ShouldEqual, playingState)
		})

		Convey("When playing", func() {
			run(b, eventMsg{event.Event{Kind: event.Ready}})

			Convey("Space toggles playback on the engine", func() {
				run(b, press(" "))
				So(el.PlayCalls, ShouldEqual, 1)
				So(b.status.playing, ShouldBeTrue)

				run(b, press(" "))
				So(el.PauseCalls, ShouldEqual, 1)
				So(b.status.playing, ShouldBeFalse)
			})

			Convey("Arrows seek by ten seconds without going below zero", func() {
				el.Time = 30
				run(b, press("l"))
				So(el.SeekTargets, ShouldResemble, []float64{40})

				el.Time = 4
				run(b, press("h"))
				So(el.SeekTargets, ShouldResemble, []float64{40, 0})
			})

			Convey("The audio key cycles tracks", func() {
				run(b, press("a"))
				So(el.Tracks.TrackByID("2").Enabled(), ShouldBeTrue)
				So(b.status.track, ShouldEqual, "2")
			})

			Convey("Time updates move the clock", func() {
				run(b, eventMsg{event.Event{Kind: event.TimeUpdate, Payload: event.TimeProgress{Current: 61, Total: 120}}})
				So(b.View(), ShouldContainSubstring, "1:01 / 2:00")
			})

			Convey("Stop shows the stopped view", func() {
				run(b, press("s"))
				run(b, eventMsg{event.Event{Kind: event.Stop}})
				So(b.state, ShouldEqual, stoppedState)
				So(engine.IsStopped(), ShouldBeTrue)
			})

			Convey("A warning becomes a notification", func() {
				run(b, eventMsg{event.Event{Kind: event.Error, Payload: &player.Error{Code: "drm:timeout", Description: "DRM: No answer", Level: event.LevelWarn}}})
				So(b.state, ShouldEqual, playingState)
				So(b.notifier.Current(), ShouldEqual, "DRM: No answer")
			})

			Convey("A fatal error switches to the error view", func() {
				run(b, eventMsg{event.Event{Kind: event.Error, Payload: &player.Error{Code: "media:4", Description: "unsupported", Level: event.LevelFatal}}})
				So(b.state, ShouldEqual, errorState)
				So(b.View(), ShouldContainSubstring, "media:4")

				run(b, press(" "))
				So(el.PlayCalls, ShouldEqual, 0)
			})
		})

		Convey("Quitting stops the program", func() {
			_, cmd := b.Update(press("q"))
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})

		Convey("A stopped loop is reported", func() {
			b.session.Runner = stopped{}
			run(b, press(" "))
			So(b.notifier.Current(), ShouldEqual, errLoopStopped.Error())
		})

		Convey("Live streams show the live badge", func() {
			el.Dur = media.Unbounded
			el.Ranges = media.Ranges{{Start: 0, End: 300}}
			run(b, eventMsg{event.Event{Kind: event.Ready}})

			So(b.status.live, ShouldBeTrue)
			run(b, eventMsg{event.Event{Kind: event.DVRStatusChanged, Payload: true}})
			So(b.View(), ShouldContainSubstring, "behind the live edge")
		})
	})
}

// Package sim replays a scripted session against the in-memory element and
// DRM agent, on a manual clock. It shows how the engine reacts to a backend
// without starting one.
package sim

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/drm/drmtest"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/loop"
	"github.com/tvplay-cli/tvplay/media"
	"github.com/tvplay-cli/tvplay/media/mediatest"
	"github.com/tvplay-cli/tvplay/player"
)

const (
	vodDuration = 120.0
	liveWindow  = 600.0
)

// Options describe the scripted session.
type Options struct {
	URL  string
	Live bool

	// LicenseURL, when set, makes the engine negotiate a license first.
	LicenseURL string
	// DRMCode is the result code the agent answers with. Zero grants the license.
	DRMCode int
	// DRMDelay is how long the agent takes to answer. Zero leaves it silent.
	DRMDelay time.Duration
	// DRMTimeout fails a silent negotiation after this long.
	DRMTimeout time.Duration
}

// Step is one published event.
type Step struct {
	At      time.Duration `json:"at"`
	Kind    event.Kind    `json:"event"`
	State   string        `json:"state"`
	Payload string        `json:"payload,omitempty"`
}

func (s Step) String() string {
	out := fmt.Sprintf("%8s  %-26s %s", s.At, s.Kind, s.State)
	if s.Payload != "" {
		out += "  " + s.Payload
	}
	return out
}

// Result is the trace of a session.
type Result struct {
	Steps       []Step            `json:"steps"`
	Final       string            `json:"final"`
	DRMMessages []drmtest.Message `json:"drm_messages,omitempty"`
}

// Kinds lists the published event kinds in order.
func (r Result) Kinds() []event.Kind {
	return lo.Map(r.Steps, func(s Step, _ int) event.Kind { return s.Kind })
}

// action runs at a point of the script.
type action struct {
	at time.Duration
	fn func()
}

// Run plays the script to completion and returns what the host saw.
func Run(opts Options) Result {
	if opts.URL == "" {
		opts.URL = lo.Ternary(opts.Live, "https://cdn.example/live.ism/Manifest", "https://cdn.example/movie.mp4")
	}

	var (
		clock  = loop.NewManual()
		el     = mediatest.NewElement()
		agents []*drmtest.Agent
		result Result
		engine *player.Engine
	)

	el.Tracks = mediatest.NewTrackList(
		&mediatest.Track{TrackID: "1", Lang: "en", TrackLabel: "English", IsEnabled: true},
	)

	host := event.HostFunc(func(e event.Event) {
		// The constructor attaches the source and may publish before it returns.
		state := player.Initial.String()
		if engine != nil {
			state = engine.State().String()
		}
		result.Steps = append(result.Steps, Step{
			At:      clock.Now(),
			Kind:    e.Kind,
			State:   state,
			Payload: describe(e.Payload),
		})
	})

	cfg := player.Config{Src: opts.URL}
	if opts.LicenseURL != "" {
		cfg.DRM = &drm.Config{LicenseServerURL: opts.LicenseURL}
	}

	negotiator := drm.NewNegotiator(drmtest.Factory(&agents, func(a *drmtest.Agent) {
		if opts.DRMDelay > 0 {
			a.Respond = drmtest.AnswerAfter(clock, opts.DRMDelay, opts.DRMCode)
		}
	}), drm.Options{
		Container: drm.NewAgentSet(),
		Scheduler: clock,
		Timeout:   opts.DRMTimeout,
	})

	engine = player.NewEngine(el, host, clock, cfg, player.WithNegotiator(negotiator))

	var start time.Duration
	if opts.LicenseURL != "" {
		start = opts.DRMDelay
	}

	if err := engine.Play(); err != nil {
		return result
	}
	for _, a := range script(opts, engine, el, start) {
		fn := a.fn
		clock.AfterFunc(a.at, func() {
			// The element only reacts to an attached source.
			if !engine.State().HasSource() {
				return
			}
			fn()
		})
	}

	clock.AfterFunc(start+10*time.Second, func() {
		result.Final = engine.State().String()
		_ = engine.Destroy()
	})
	clock.Advance(start + 20*time.Second)

	for _, a := range agents {
		result.DRMMessages = append(result.DRMMessages, a.Messages...)
	}
	return result
}

// script is the backend's side of a session: metadata, readiness, a few
// seconds of playback with a stall, an audio switch, then a seek towards the
// end. A VOD ends on its own, a live stream is stopped. Times are relative
// to the license answer.
func script(opts Options, engine *player.Engine, el *mediatest.Element, start time.Duration) []action {
	at := func(d time.Duration) time.Duration { return start + d }

	actions := []action{
		{at(300 * time.Millisecond), func() {
			el.Set(func(e *mediatest.Element) {
				e.State = media.HaveMetadata
				if opts.Live {
					e.Dur = media.Unbounded
					e.Ranges = media.Ranges{{Start: 0, End: liveWindow}}
					e.Time = liveWindow
				} else {
					e.Dur = vodDuration
					e.Ranges = media.Ranges{{Start: 0, End: vodDuration}}
				}
			})
			el.Emit(media.LoadedMetadata)
			el.Tracks.Add(&mediatest.Track{TrackID: "2", Lang: "fr", TrackLabel: "Français"})
		}},
		{at(600 * time.Millisecond), func() {
			el.Set(func(e *mediatest.Element) { e.State = media.HaveEnoughData })
			el.Emit(media.CanPlay)
			el.Emit(media.Playing)
		}},
	}

	for i := 1; i <= 3; i++ {
		actions = append(actions, action{at(time.Duration(i) * time.Second), func() {
			el.Set(func(e *mediatest.Element) { e.Time++ })
			el.Emit(media.TimeUpdate)
		}})
	}

	actions = append(actions,
		action{at(4 * time.Second), func() { el.Emit(media.Waiting) }},
		action{at(4500 * time.Millisecond), func() { el.Emit(media.CanPlay) }},
		action{at(5 * time.Second), func() { _ = engine.SwitchAudioTrack("2") }},
		action{at(6 * time.Second), func() {
			target := lo.Ternary(opts.Live, liveWindow/2, vodDuration-2)
			el.Emit(media.Seeking)
			_ = engine.Seek(target)
			el.Emit(media.Seeked)
		}},
	)

	if opts.Live {
		actions = append(actions, action{at(8 * time.Second), func() { _ = engine.Stop() }})
	} else {
		actions = append(actions, action{at(8 * time.Second), func() {
			el.Set(func(e *mediatest.Element) {
				e.Time = vodDuration
				e.IsEnded = true
				e.IsPaused = true
			})
			el.Emit(media.EndedEvent)
		}})
	}

	return actions
}

func describe(payload any) string {
	switch p := payload.(type) {
	case nil:
		return ""
	case event.TimeProgress:
		return fmt.Sprintf("%.0f/%.0f", p.Current, p.Total)
	case event.Metadata:
		return fmt.Sprintf("duration=%v", p.Duration)
	case *player.Error:
		return fmt.Sprintf("%s %s: %s", p.Level, p.Code, p.Description)
	case player.AudioTrackDescriptor:
		return "audio=" + p.ID
	case []player.AudioTrackDescriptor:
		return fmt.Sprintf("%d tracks", len(p))
	default:
		return fmt.Sprintf("%v", p)
	}
}

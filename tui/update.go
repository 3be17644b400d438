package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/internal/ui"
	"github.com/tvplay-cli/tvplay/player"
)

var errLoopStopped = errors.New("the playback loop has stopped")

// eventMsg carries a normalized playback event into the program.
type eventMsg struct {
	event.Event
}

// statusMsg is a fresh status read on the loop.
type statusMsg status

// seekable is implemented by playbacks whose seek origin is not zero.
type seekable interface {
	SeekableStart() (float64, error)
}

// readiness is implemented by playbacks exposing their lifecycle flags.
type readiness interface {
	IsReady() bool
	IsBuffering() bool
}

func (b *bubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.refresh())
}

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if cmd := b.notifier.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		cmds = append(cmds, cmd)
	case statusMsg:
		next := status(msg)
		next.dvr = b.status.dvr
		b.status = next
		// Ready may have been published before the console subscribed.
		if next.ready && b.state == loadingState {
			b.setState(playingState)
		}
	case eventMsg:
		cmds = append(cmds, b.onEvent(msg.Event))
	case error:
		cmds = append(cmds, ui.Notify(msg.Error()))
	case tea.KeyMsg:
		cmds = append(cmds, b.onKey(msg))
	}

	return b, tea.Batch(cmds...)
}

func (b *bubble) onEvent(e event.Event) tea.Cmd {
	switch e.Kind {
	case event.Ready:
		if b.state == loadingState {
			b.setState(playingState)
		}
		return b.refresh()
	case event.Play:
		b.status.playing = true
		if b.state == stoppedState {
			b.setState(loadingState)
		}
	case event.Pause:
		b.status.playing = false
	case event.Buffering:
		b.status.buffering = true
	case event.BufferFull:
		b.status.buffering = false
	case event.TimeUpdate:
		if p, ok := e.Payload.(event.TimeProgress); ok {
			b.status.current = p.Current
			b.status.total = p.Total
		}
	case event.LoadedMetadata:
		if m, ok := e.Payload.(event.Metadata); ok {
			b.status.total = m.Duration
		}
	case event.DVRStatusChanged:
		if dvr, ok := e.Payload.(bool); ok {
			b.status.dvr = dvr
		}
	case event.AudioTracksAvailable:
		if tracks, ok := e.Payload.([]player.AudioTrackDescriptor); ok {
			b.status.tracks = tracks
		}
	case event.AudioTrackChanged:
		if track, ok := e.Payload.(player.AudioTrackDescriptor); ok {
			b.status.track = track.ID
			return ui.Notify(fmt.Sprintf("Audio: %s", trackName(track)))
		}
	case event.Ended:
		b.status.playing = false
		b.setState(stoppedState)
		return ui.Notify("Playback ended")
	case event.Stop:
		b.status.playing = false
		b.setState(stoppedState)
	case event.Error:
		perr, ok := e.Payload.(*player.Error)
		if !ok {
			return nil
		}
		if perr.Fatal() {
			b.lastError = perr
			b.setState(errorState)
			return nil
		}
		return ui.Notify(perr.Description)
	}
	return nil
}

func (b *bubble) onKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keymap.forceQuit), key.Matches(msg, b.keymap.quit):
		return tea.Quit
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return nil
	}

	if b.state == errorState {
		return nil
	}

	switch {
	case key.Matches(msg, b.keymap.playPause):
		return b.exec(func(p player.Playback) error {
			if p.IsPlaying() {
				return p.Pause()
			}
			return p.Play()
		})
	case key.Matches(msg, b.keymap.stop):
		return b.exec(player.Playback.Stop)
	case key.Matches(msg, b.keymap.back):
		return b.exec(seekBy(-seekStep))
	case key.Matches(msg, b.keymap.forward):
		return b.exec(seekBy(seekStep))
	case key.Matches(msg, b.keymap.audio):
		return b.exec(nextAudioTrack)
	}
	return nil
}

// exec runs fn on the loop and reports its error, or the refreshed status.
func (b *bubble) exec(fn func(p player.Playback) error) tea.Cmd {
	return func() tea.Msg {
		var (
			err  error
			snap status
		)
		ran := b.session.Runner.Do(func() {
			err = fn(b.session.Playback)
			snap = read(b.session.Playback)
		})
		if !ran {
			return errLoopStopped
		}
		if err != nil {
			return err
		}
		return statusMsg(snap)
	}
}

func (b *bubble) refresh() tea.Cmd {
	return b.exec(func(player.Playback) error { return nil })
}

func read(p player.Playback) status {
	s := status{
		current: p.CurrentTime(),
		total:   p.Duration(),
		playing: p.IsPlaying(),
		live:    p.MediaType() == player.Live,
		tracks:  p.AudioTracks(),
	}
	if track, ok := p.CurrentAudioTrack().Get(); ok {
		s.track = track.ID
	}
	if r, ok := p.(readiness); ok {
		s.ready = r.IsReady()
		s.buffering = r.IsBuffering()
	}
	return s
}

// seekBy moves delta seconds from the current position, clamped to the start
// of the seekable window.
func seekBy(delta float64) func(p player.Playback) error {
	return func(p player.Playback) error {
		position := p.CurrentTime()
		if s, ok := p.(seekable); ok {
			if start, err := s.SeekableStart(); err == nil {
				position -= start
			}
		}
		return p.Seek(max(0, position+delta))
	}
}

// nextAudioTrack switches to the track after the active one, wrapping around.
func nextAudioTrack(p player.Playback) error {
	tracks := p.AudioTracks()
	if len(tracks) < 2 {
		return nil
	}

	current, _ := p.CurrentAudioTrack().Get()
	_, index, ok := lo.FindIndexOf(tracks, func(t player.AudioTrackDescriptor) bool {
		return t.ID == current.ID
	})
	if !ok {
		index = -1
	}
	return p.SwitchAudioTrack(tracks[(index+1)%len(tracks)].ID)
}

func trackName(t player.AudioTrackDescriptor) string {
	switch {
	case t.Label != "" && t.Language != "":
		return fmt.Sprintf("%s (%s)", t.Label, t.Language)
	case t.Label != "":
		return t.Label
	case t.Language != "":
		return t.Language
	default:
		return "#" + t.ID
	}
}

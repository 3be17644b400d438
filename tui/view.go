package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
	"github.com/tvplay-cli/tvplay/color"
	"github.com/tvplay-cli/tvplay/icon"
	"github.com/tvplay-cli/tvplay/player"
	"github.com/tvplay-cli/tvplay/style"
	"github.com/tvplay-cli/tvplay/util"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *bubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case playingState:
		output = b.viewPlaying()
	case stoppedState:
		output = b.viewStopped()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *bubble) title() string {
	return style.Fg(color.Title)(util.Ellipsize(b.session.Title, max(10, b.width-8)))
}

func (b *bubble) viewLoading() string {
	return b.renderLines([]string{
		style.Title("Loading"),
		"",
		b.title(),
		"",
		b.spinnerC.View() + " Waiting for the stream to become ready",
	})
}

func (b *bubble) viewPlaying() string {
	s := b.status

	stateIcon := lo.Ternary(s.playing, icon.Get(icon.Play), icon.Get(icon.Pause))
	if s.buffering {
		stateIcon = b.spinnerC.View() + " " + icon.Get(icon.Buffering)
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		b.title(),
		"",
		stateIcon + "  " + b.clock(),
	}

	if !s.live {
		ratio := 0.0
		if s.total > 0 {
			ratio = util.Clamp(s.current/s.total, 0, 1)
		}
		lines = append(lines, "", b.progressC.ViewAs(ratio))
	}

	if len(s.tracks) > 0 {
		lines = append(lines, "", b.viewTracks())
	}

	return b.renderLines(lines)
}

func (b *bubble) clock() string {
	s := b.status
	if !s.live {
		return fmt.Sprintf("%s / %s", util.FormatClock(s.current), util.FormatClock(s.total))
	}

	live := style.Fg(color.Live)(icon.Get(icon.Live))
	if s.dvr {
		return fmt.Sprintf("%s %s", live, style.Faint("behind the live edge"))
	}
	return live
}

func (b *bubble) viewTracks() string {
	names := lo.Map(b.status.tracks, func(t player.AudioTrackDescriptor, _ int) string {
		if t.ID == b.status.track {
			return style.Bold(style.Fg(color.Track)(trackName(t)))
		}
		return style.Faint(trackName(t))
	})
	return "Audio: " + strings.Join(names, "  ")
}

func (b *bubble) viewStopped() string {
	return b.renderLines([]string{
		style.Title("Stopped"),
		"",
		b.title(),
		"",
		icon.Get(icon.Stop) + "  " + style.Faint("Press space to play again"),
	})
}

func (b *bubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(color.Red).Bold(true)

	var body string
	if b.lastError != nil {
		body = fmt.Sprintf("%s (%s)", b.lastError.Description, b.lastError.Code)
	}

	return b.renderLines([]string{
		style.ErrorTitle("Error"),
		"",
		icon.Get(icon.Fail) + " Playback failed:",
		"",
		wrap.String(errorStyle.Render(body), max(20, b.width-4)),
	})
}

func (b *bubble) renderLines(lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if b.height > h+3 {
		l += strings.Repeat("\n", b.height-h-3)
	}
	l += "\n" + b.helpC.View(b.keymap)

	return paddingStyle.Render(l)
}

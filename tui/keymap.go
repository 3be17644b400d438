package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/tvplay-cli/tvplay/color"
	"github.com/tvplay-cli/tvplay/style"
)

type keymap struct {
	state state

	quit, forceQuit,
	playPause, stop,
	back, forward,
	audio,
	showHelp key.Binding
}

func (k *keymap) setState(s state) {
	k.state = s
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp(style.Fg(color.Shortcut)("space"), style.Fg(color.Shortcut)("play/pause")),
		),
		stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "-10s"),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+10s"),
		),
		audio: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "audio track"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *keymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch k.state {
	case loadingState:
		return h(k.quit), h(k.quit, k.forceQuit)
	case playingState:
		return h(k.playPause, k.back, k.forward, k.quit),
			h(k.playPause, k.stop, k.back, k.forward, k.audio, k.quit, k.forceQuit)
	case stoppedState:
		return h(k.playPause, k.quit), h(k.playPause, k.quit, k.forceQuit)
	case errorState:
		return h(k.quit), h(k.quit, k.forceQuit)
	default:
		return h(), h()
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *keymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

// Package tui provides the terminal playback console.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/player"
)

// Runner executes fn on the goroutine owning the playback and waits for it.
// *loop.Loop implements it.
type Runner interface {
	Do(fn func()) bool
}

// Session is the playback the console drives.
type Session struct {
	Title    string
	Playback player.Playback
	Bus      *event.Bus
	Runner   Runner

	// Done, when set, ends the console once closed.
	Done <-chan struct{}
}

// Run shows the console until the user quits or Done is closed.
func Run(s *Session) error {
	bubble := newBubble(s)
	program := tea.NewProgram(bubble, tea.WithAltScreen())

	off := s.Bus.OnAny(func(e event.Event) {
		program.Send(eventMsg{e})
	})
	defer off()

	finished := make(chan struct{})
	defer close(finished)
	if s.Done != nil {
		go func() {
			select {
			case <-s.Done:
				program.Quit()
			case <-finished:
			}
		}()
	}

	_, err := program.Run()
	return err
}

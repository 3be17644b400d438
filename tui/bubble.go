package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/tvplay-cli/tvplay/internal/ui"
	"github.com/tvplay-cli/tvplay/player"
	"github.com/tvplay-cli/tvplay/style"
)

type state int

const (
	loadingState state = iota
	playingState
	stoppedState
	errorState
)

// seekStep is the distance covered by one seek key press, in seconds.
const seekStep = 10.0

// status mirrors the playback as last observed on the loop.
type status struct {
	ready     bool
	current   float64
	total     float64
	playing   bool
	buffering bool
	live      bool
	dvr       bool
	tracks    []player.AudioTrackDescriptor
	track     string
}

type bubble struct {
	state   state
	session *Session
	keymap  *keymap

	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model
	notifier  *ui.Model

	status    status
	lastError *player.Error

	width, height int
}

func newBubble(s *Session) *bubble {
	b := &bubble{
		session:   s,
		keymap:    newKeymap(),
		spinnerC:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progressC: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		helpC:     help.New(),
		notifier:  &ui.Model{},
	}
	b.spinnerC.Style = style.New().Foreground(style.LoadingColor)
	b.setState(loadingState)
	return b
}

func (b *bubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *bubble) resize(width, height int) {
	b.width = width
	b.height = height
	b.helpC.Width = width
	b.progressC.Width = max(10, width-4)
}

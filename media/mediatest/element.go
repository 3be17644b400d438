// Package mediatest provides a scriptable media.Element for tests and simulations.
package mediatest

import (
	"math"
	"sync"

	"github.com/tvplay-cli/tvplay/media"
)

// Element is an in-memory media.Element. Tests set its readable state
// directly and raise native events with Emit; commands are recorded.
type Element struct {
	mu sync.Mutex

	State     media.ReadyState
	Time      float64
	Dur       float64
	IsPaused  bool
	IsEnded   bool
	Ranges    media.TimeRanges
	Tracks    *TrackList
	Err       *media.MediaError
	PlayError error

	Sources     []*media.Source
	LoadCalls   int
	LoadedURLs  []string
	PlayCalls   int
	PauseCalls  int
	SeekTargets []float64

	listeners map[int]func(media.Event)
	next      int
}

// NewElement returns a paused element with unknown duration and no tracks.
func NewElement() *Element {
	return &Element{
		Dur:       math.NaN(),
		IsPaused:  true,
		Ranges:    media.Ranges{},
		listeners: map[int]func(media.Event){},
	}
}

func (e *Element) AppendSource(s *media.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Sources = append(e.Sources, s)
}

func (e *Element) RemoveSource(s *media.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, cur := range e.Sources {
		if cur == s {
			e.Sources = append(e.Sources[:i], e.Sources[i+1:]...)
			return
		}
	}
}

// Attached returns the currently attached source, or nil.
func (e *Element) Attached() *media.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Sources) == 0 {
		return nil
	}
	return e.Sources[len(e.Sources)-1]
}

func (e *Element) Load() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.LoadCalls++
	url := ""
	if len(e.Sources) > 0 {
		url = e.Sources[len(e.Sources)-1].URL
	}
	e.LoadedURLs = append(e.LoadedURLs, url)
	e.State = media.HaveNothing
}

func (e *Element) Play() <-chan error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.PlayCalls++
	e.IsPaused = false

	ch := make(chan error, 1)
	ch <- e.PlayError
	close(ch)
	return ch
}

func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.PauseCalls++
	e.IsPaused = true
}

func (e *Element) ReadyState() media.ReadyState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.State
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Time
}

func (e *Element) SetCurrentTime(t float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Time = t
	e.SeekTargets = append(e.SeekTargets, t)
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Dur
}

func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.IsPaused
}

func (e *Element) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.IsEnded
}

func (e *Element) Seekable() media.TimeRanges {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Ranges
}

func (e *Element) AudioTracks() media.AudioTrackList {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Tracks == nil {
		return nil
	}
	return e.Tracks
}

func (e *Element) Error() *media.MediaError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Err
}

func (e *Element) Subscribe(fn func(media.Event)) func() {
	e.mu.Lock()
	id := e.next
	e.next++
	e.listeners[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Listeners returns the number of active subscriptions.
func (e *Element) Listeners() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Emit raises a native event synchronously on the calling goroutine.
func (e *Element) Emit(kind media.EventKind) {
	e.mu.Lock()
	evt := media.Event{Kind: kind, Duration: e.Dur}
	fns := make([]func(media.Event), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

// Set mutates the element under its lock, for state changes made while events are in flight.
func (e *Element) Set(fn func(e *Element)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e)
}

// BrokenRanges is a TimeRanges whose accessors always fail, as when no seekable data exists yet.
type BrokenRanges struct{}

func (BrokenRanges) Len() int                   { return 0 }
func (BrokenRanges) Start(int) (float64, error) { return 0, media.ErrIndexSize }
func (BrokenRanges) End(int) (float64, error)   { return 0, media.ErrIndexSize }

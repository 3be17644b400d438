package mediatest

import (
	"sync"

	"github.com/tvplay-cli/tvplay/media"
)

// Track is an in-memory media.AudioTrack.
type Track struct {
	TrackID, Lang, TrackLabel, TrackKind string
	IsEnabled                           bool
}

func (t *Track) ID() string        { return t.TrackID }
func (t *Track) Language() string  { return t.Lang }
func (t *Track) Label() string     { return t.TrackLabel }
func (t *Track) Kind() string      { return t.TrackKind }
func (t *Track) Enabled() bool     { return t.IsEnabled }
func (t *Track) SetEnabled(v bool) { t.IsEnabled = v }

// TrackList is an in-memory media.AudioTrackList.
type TrackList struct {
	mu        sync.Mutex
	tracks    []*Track
	listeners map[int]func(media.TrackListChange)
	next      int
}

// NewTrackList returns a list holding tracks.
func NewTrackList(tracks ...*Track) *TrackList {
	return &TrackList{tracks: tracks, listeners: map[int]func(media.TrackListChange){}}
}

func (l *TrackList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tracks)
}

func (l *TrackList) At(i int) media.AudioTrack {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tracks[i]
}

func (l *TrackList) TrackByID(id string) media.AudioTrack {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.tracks {
		if t.TrackID == id {
			return t
		}
	}
	return nil
}

func (l *TrackList) OnChange(fn func(media.TrackListChange)) func() {
	l.mu.Lock()
	id := l.next
	l.next++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

// Listeners returns the number of active change listeners.
func (l *TrackList) Listeners() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.listeners)
}

// Add appends t and raises addtrack.
func (l *TrackList) Add(t *Track) {
	l.mu.Lock()
	l.tracks = append(l.tracks, t)
	fns := l.snapshot()
	l.mu.Unlock()

	for _, fn := range fns {
		fn(media.TrackListChange{Added: true, Track: t})
	}
}

// Remove drops the track with id and raises removetrack.
func (l *TrackList) Remove(id string) {
	l.mu.Lock()
	var removed *Track
	for i, t := range l.tracks {
		if t.TrackID == id {
			removed = t
			l.tracks = append(l.tracks[:i], l.tracks[i+1:]...)
			break
		}
	}
	fns := l.snapshot()
	l.mu.Unlock()

	if removed == nil {
		return
	}
	for _, fn := range fns {
		fn(media.TrackListChange{Track: removed})
	}
}

func (l *TrackList) snapshot() []func(media.TrackListChange) {
	fns := make([]func(media.TrackListChange), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	return fns
}

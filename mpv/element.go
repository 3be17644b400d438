// Package mpv implements media.Element on top of an mpv process driven over
// its JSON IPC socket.
package mpv

import (
	"strconv"
	"sync"

	"github.com/samber/lo"
	"github.com/tvplay-cli/tvplay/log"
	"github.com/tvplay-cli/tvplay/media"
)

// Element is a media.Element backed by mpv.
//
// Notifications arrive on the listener goroutine and are handed to post, which
// must run them on the engine's loop. Commands are issued from the loop.
type Element struct {
	client   *Client
	listener *Listener
	post     func(func()) bool
	log      *log.Entry

	mu   sync.Mutex
	snap snapshot

	src     *media.Source
	tracks  *trackList
	events  map[int]func(media.Event)
	nextSub int
}

// NewElement returns an element talking to the mpv instance on socket.
func NewElement(socket string, post func(func()) bool) *Element {
	e := &Element{
		client: NewClient(socket),
		post:   post,
		log:    log.Component("mpv"),
		snap:   newSnapshot(),
		events: map[int]func(media.Event){},
	}
	e.tracks = &trackList{el: e, listeners: map[int]func(media.TrackListChange){}}
	e.listener = NewListener(socket, e.receive)
	return e
}

// Start begins mirroring mpv's state.
func (e *Element) Start() error {
	return e.listener.Start()
}

// Close stops the notification listener. The mpv process is left running.
func (e *Element) Close() {
	e.listener.Stop()
}

func (e *Element) receive(n Notification) {
	if !e.post(func() { e.dispatch(n) }) {
		e.log.Debugf("Dropping %s notification, the loop has stopped", n.Event)
	}
}

func (e *Element) dispatch(n Notification) {
	e.mu.Lock()
	out := e.snap.apply(n)
	src := e.src
	e.mu.Unlock()

	for _, change := range out.changes {
		e.tracks.notify(change)
	}

	if out.sourceErr != nil {
		if src != nil {
			src.Fail(out.sourceErr)
		} else {
			out.events = append(out.events, media.ErrorEvent)
		}
	}

	for _, kind := range out.events {
		e.emit(kind)
	}
}

func (e *Element) emit(kind media.EventKind) {
	e.mu.Lock()
	evt := media.Event{Kind: kind, Duration: e.snap.duration}
	fns := lo.Values(e.events)
	e.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

func (e *Element) AppendSource(s *media.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.src = s
}

func (e *Element) RemoveSource(s *media.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.src == s {
		e.src = nil
	}
}

// Load replaces the current file with the attached source, or stops mpv
// when there is nothing to fetch.
func (e *Element) Load() {
	e.mu.Lock()
	src := e.src
	e.snap.ready = media.HaveNothing
	e.snap.err = nil
	e.mu.Unlock()

	if src == nil || src.URL == "" {
		if _, err := e.client.Command("stop"); err != nil {
			e.log.Warnf("Could not stop mpv: %s", err)
		}
		return
	}

	target, err := sanitizeMediaTarget(src.URL)
	if err != nil {
		e.log.Errorf("Refusing to load %q: %s", src.URL, err)
		e.post(func() {
			src.Fail(&media.MediaError{Code: media.ErrSrcNotSupported, Message: err.Error()})
		})
		return
	}

	if _, err := e.client.Command("loadfile", target, "replace"); err != nil {
		e.log.Errorf("Could not load %s: %s", target, err)
		e.post(func() {
			src.Fail(&media.MediaError{Code: media.ErrNetwork, Message: err.Error()})
		})
	}
}

// Play unpauses mpv. The request runs off the loop; its outcome is delivered on the channel.
func (e *Element) Play() <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- e.client.Set("pause", false)
	}()
	return done
}

func (e *Element) Pause() {
	if err := e.client.Set("pause", true); err != nil {
		e.log.Warnf("Could not pause: %s", err)
	}
}

func (e *Element) ReadyState() media.ReadyState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.ready
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.time
}

func (e *Element) SetCurrentTime(t float64) {
	e.mu.Lock()
	e.snap.time = t
	e.mu.Unlock()

	if _, err := e.client.Command("seek", t, "absolute"); err != nil {
		e.log.Warnf("Could not seek to %v: %s", t, err)
	}
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.duration
}

func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.paused
}

func (e *Element) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.ended
}

func (e *Element) Seekable() media.TimeRanges {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.seekable
}

func (e *Element) AudioTracks() media.AudioTrackList {
	return e.tracks
}

func (e *Element) Error() *media.MediaError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.err
}

func (e *Element) Subscribe(fn func(media.Event)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.events[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.events, id)
		e.mu.Unlock()
	}
}

// selectAudio switches mpv's audio track. aid "no" disables audio.
func (e *Element) selectAudio(id int, enabled bool) {
	e.mu.Lock()
	current, ok := lo.Find(e.snap.tracks, func(t trackInfo) bool { return t.ID == id })
	if !ok || current.Selected == enabled {
		e.mu.Unlock()
		return
	}
	for i := range e.snap.tracks {
		e.snap.tracks[i].Selected = enabled && e.snap.tracks[i].ID == id
	}
	e.mu.Unlock()

	aid := lo.Ternary[any](enabled, id, "no")
	if err := e.client.Set("aid", aid); err != nil {
		e.log.Warnf("Could not switch the audio track to %v: %s", aid, err)
	}
}

type trackList struct {
	el        *Element
	listeners map[int]func(media.TrackListChange)
	next      int
}

func (l *trackList) Len() int {
	l.el.mu.Lock()
	defer l.el.mu.Unlock()
	return len(l.el.snap.tracks)
}

func (l *trackList) At(i int) media.AudioTrack {
	l.el.mu.Lock()
	defer l.el.mu.Unlock()
	if i < 0 || i >= len(l.el.snap.tracks) {
		return nil
	}
	return &audioTrack{el: l.el, id: l.el.snap.tracks[i].ID}
}

func (l *trackList) TrackByID(id string) media.AudioTrack {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil
	}

	l.el.mu.Lock()
	defer l.el.mu.Unlock()
	if !lo.ContainsBy(l.el.snap.tracks, func(t trackInfo) bool { return t.ID == n }) {
		return nil
	}
	return &audioTrack{el: l.el, id: n}
}

func (l *trackList) OnChange(fn func(media.TrackListChange)) func() {
	l.el.mu.Lock()
	id := l.next
	l.next++
	l.listeners[id] = fn
	l.el.mu.Unlock()

	return func() {
		l.el.mu.Lock()
		delete(l.listeners, id)
		l.el.mu.Unlock()
	}
}

func (l *trackList) notify(change media.TrackListChange) {
	l.el.mu.Lock()
	fns := lo.Values(l.listeners)
	l.el.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// audioTrack is a live handle on a track-list entry, resolved on every read.
type audioTrack struct {
	el *Element
	id int
}

func (t *audioTrack) info() trackInfo {
	t.el.mu.Lock()
	defer t.el.mu.Unlock()
	info, _ := lo.Find(t.el.snap.tracks, func(i trackInfo) bool { return i.ID == t.id })
	return info
}

func (t *audioTrack) ID() string              { return strconv.Itoa(t.id) }
func (t *audioTrack) Language() string        { return t.info().Language }
func (t *audioTrack) Label() string           { return t.info().Title }
func (t *audioTrack) Kind() string            { return kindOf(t.info()) }
func (t *audioTrack) Enabled() bool           { return t.info().Selected }
func (t *audioTrack) SetEnabled(enabled bool) { t.el.selectAudio(t.id, enabled) }

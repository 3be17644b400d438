package player

import (
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/media"
)

// eventTable maps every native element event to its handler.
func (e *Engine) eventTable() map[media.EventKind]func(media.Event) {
	return map[media.EventKind]func(media.Event){
		media.CanPlay:        e.onCanPlay,
		media.CanPlayThrough: e.onInfo,
		media.LoadStart:      e.onInfo,
		media.LoadedMetadata: e.onLoadedMetadata,
		media.LoadedData:     e.onInfo,
		media.Waiting:        e.onWaiting,
		media.Stalled:        e.onInfo,
		media.Emptied:        e.onInfo,
		media.PlayEvent:      e.onPlay,
		media.Playing:        e.onPlaying,
		media.PauseEvent:     e.onPause,
		media.RateChange:     e.onInfo,
		media.VolumeChange:   e.onInfo,
		media.Seeking:        e.onSeeking,
		media.Seeked:         e.onSeeked,
		media.Progress:       e.onDebug,
		media.TimeUpdate:     e.onTimeUpdate,
		media.DurationChange: e.onInfo,
		media.Abort:          e.onInfo,
		media.Suspend:        e.onInfo,
		media.EndedEvent:     e.onEnded,
		media.ErrorEvent:     e.onError,
	}
}

func (e *Engine) handle(evt media.Event) {
	if e.isDestroyed {
		return
	}

	h, ok := e.handlers[evt.Kind]
	if !ok {
		e.log.Debugf("No handler for media element event %s", evt.Kind)
		return
	}
	h(evt)
}

func (e *Engine) onInfo(evt media.Event) {
	e.log.Infof("The media element %s event is triggered", evt.Kind)
}

// onDebug is used for events fired several times per second.
func (e *Engine) onDebug(evt media.Event) {
	e.log.Debugf("The media element %s event is triggered", evt.Kind)
}

func (e *Engine) onCanPlay(evt media.Event) {
	e.onInfo(evt)
	if e.src == nil {
		e.log.Debugf("Ignoring %s with no source attached", evt.Kind)
		return
	}
	if !e.isReady {
		e.signalizeReady()
	}
	if e.isBuffering {
		e.isBuffering = false
		e.transition(e.settledState())
		e.trigger(event.BufferFull, nil)
	}
}

func (e *Engine) onLoadedMetadata(evt media.Event) {
	e.onInfo(evt)
	e.trigger(event.LoadedMetadata, event.Metadata{Duration: evt.Duration})
}

func (e *Engine) onWaiting(evt media.Event) {
	e.onInfo(evt)
	e.isBuffering = true
	e.transition(Buffering)
	e.trigger(event.Buffering, nil)
}

func (e *Engine) onPlay(evt media.Event) {
	e.onInfo(evt)
	e.trigger(event.PlayIntent, nil)
}

func (e *Engine) onPlaying(evt media.Event) {
	e.onInfo(evt)
	e.transition(Playing)
	e.trigger(event.Play, nil)
}

func (e *Engine) onPause(evt media.Event) {
	e.onInfo(evt)
	e.transition(Paused)
	e.trigger(event.Pause, nil)
}

func (e *Engine) onSeeking(evt media.Event) {
	e.onInfo(evt)
	e.transition(Seeking)
	e.trigger(event.Seek, nil)
}

func (e *Engine) onSeeked(evt media.Event) {
	e.onInfo(evt)
	e.transition(e.settledState())
	e.trigger(event.Seeked, nil)
}

func (e *Engine) onTimeUpdate(evt media.Event) {
	e.onDebug(evt)
	e.trigger(event.TimeUpdate, event.TimeProgress{Current: e.el.CurrentTime(), Total: e.Duration()})
}

// onEnded detaches the source but keeps its URL, so Play starts over.
func (e *Engine) onEnded(evt media.Event) {
	e.onInfo(evt)
	e.teardown()
	e.transition(Ended)
	e.trigger(event.Ended, nil)
}

// onError reports the source error, else the element error, else an unknown fault.
func (e *Engine) onError(evt media.Event) {
	e.log.Warnf("The media element %s event is triggered", evt.Kind)

	raw := e.el.Error()
	if e.src != nil && e.src.Error() != nil {
		raw = e.src.Error()
	}

	e.transition(Errored)
	e.trigger(event.Error, mediaError(raw))
}

// settledState is the state to return to once buffering or seeking completes.
func (e *Engine) settledState() State {
	if e.IsPlaying() {
		return Playing
	}
	return Paused
}

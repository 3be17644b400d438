// Package media describes the media element the playback engine drives.
//
// The element is an opaque collaborator: it owns decoding and networking,
// exposes readable state, accepts a handful of commands and reports what
// happens through native events. Backends (mpv, the scriptable test element)
// implement Element; the engine never depends on a concrete backend.
package media

import "math"

// ReadyState mirrors HTMLMediaElement.readyState.
type ReadyState int

const (
	HaveNothing ReadyState = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

func (r ReadyState) String() string {
	switch r {
	case HaveNothing:
		return "HAVE_NOTHING"
	case HaveMetadata:
		return "HAVE_METADATA"
	case HaveCurrentData:
		return "HAVE_CURRENT_DATA"
	case HaveFutureData:
		return "HAVE_FUTURE_DATA"
	case HaveEnoughData:
		return "HAVE_ENOUGH_DATA"
	default:
		return "UNKNOWN"
	}
}

// Unbounded is the duration an element reports for live streams.
var Unbounded = math.Inf(1)

// Element is the media element contract consumed by the playback engine.
//
// Implementations deliver events through the listener registered with
// Subscribe; they must do so on the caller's loop (see loop.Loop), never
// concurrently with other engine calls.
type Element interface {
	// AppendSource attaches s as the element's source child.
	AppendSource(s *Source)
	// RemoveSource detaches s if it is attached.
	RemoveSource(s *Source)
	// Load resets the element and starts fetching the attached source, if any.
	// Loading with no usable source cancels in-flight fetches.
	Load()

	// Play requests playback. The returned channel, when non-nil, receives
	// the outcome of the request once and is then closed.
	Play() <-chan error
	Pause()

	ReadyState() ReadyState
	CurrentTime() float64
	SetCurrentTime(t float64)
	// Duration is NaN when unknown and Unbounded for live streams.
	Duration() float64
	Paused() bool
	Ended() bool
	Seekable() TimeRanges
	// AudioTracks returns nil when the backend has no audio track support.
	AudioTracks() AudioTrackList
	// Error returns the last media error or nil.
	Error() *MediaError

	// Subscribe registers fn for every native event and returns its remover.
	Subscribe(fn func(Event)) (unsubscribe func())
}

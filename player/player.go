// Package player binds a media element to the normalized playback lifecycle.
// The Engine translates native element events and readiness transitions into
// host events, negotiates DRM before attaching protected sources, and tracks
// live, DVR and audio track state.
package player

import (
	"github.com/samber/mo"
	"github.com/tvplay-cli/tvplay/mime"
)

// MediaType distinguishes on-demand from live content.
type MediaType string

const (
	VOD  MediaType = "vod"
	Live MediaType = "live"
)

// Playback is the capability surface a host drives.
type Playback interface {
	// Name identifies the playback in event sources and logs.
	Name() string

	// Load tears down the current source and attaches url, even when it is unchanged.
	Load(url string) error

	// Play clears the stopped flag, re-attaches the current source if needed and requests playback.
	Play() error

	// Pause suspends playback.
	Pause() error

	// Seek moves to t seconds, relative to the start of the seekable window.
	Seek(t float64) error

	// SwitchAudioTrack exclusively enables the audio track with the given id.
	SwitchAudioTrack(id string) error

	// Stop pauses and tears down the current source, keeping its URL for a later Play.
	Stop() error

	// Destroy releases every resource. It is idempotent and irreversible.
	Destroy() error

	// CurrentTime is the element's playback position in seconds.
	CurrentTime() float64

	// Duration is the media duration, or the DVR window span for live content.
	Duration() float64

	// IsPlaying reports whether the element is neither paused nor ended.
	IsPlaying() bool

	// MediaType is Live when the element reports an unbounded duration.
	MediaType() MediaType

	// AudioTracks describes the element's audio tracks, recomputed on every call.
	AudioTracks() []AudioTrackDescriptor

	// CurrentAudioTrack is the first enabled audio track.
	CurrentAudioTrack() mo.Option[AudioTrackDescriptor]
}

// CanPlay reports whether url can be played, given an optional explicit MIME type.
func CanPlay(url, mimeType string) bool {
	return mime.CanPlay(url, mimeType)
}

var _ Playback = (*Engine)(nil)

// Package event defines the normalized playback events published to the host
// and a small bus implementing the host's trigger/listen contract.
package event

// Kind identifies a normalized playback event.
type Kind string

const (
	Ready                Kind = "playback:ready"
	PlayIntent           Kind = "playback:play:intent"
	Play                 Kind = "playback:play"
	Pause                Kind = "playback:pause"
	Seek                 Kind = "playback:seek"
	Seeked               Kind = "playback:seeked"
	Buffering            Kind = "playback:buffering"
	BufferFull           Kind = "playback:bufferfull"
	TimeUpdate           Kind = "playback:timeupdate"
	LoadedMetadata       Kind = "playback:loadedmetadata"
	Ended                Kind = "playback:ended"
	Stop                 Kind = "playback:stop"
	Error                Kind = "playback:error"
	DVRStatusChanged     Kind = "playback:dvr"
	StatsAdd             Kind = "playback:stats:add"
	AudioTrackChanged    Kind = "playback:audio:changed"
	AudioTracksAvailable Kind = "playback:audio:available"
)

// Event is a normalized notification. Payload types per kind:
//
//	TimeUpdate           TimeProgress
//	LoadedMetadata       Metadata
//	DVRStatusChanged     bool (true while away from the live edge)
//	StatsAdd             map[string]any
//	Error                *player.Error
//	AudioTrackChanged    player.AudioTrackDescriptor
//	AudioTracksAvailable []player.AudioTrackDescriptor
type Event struct {
	Kind    Kind
	Source  string
	Payload any
}

// TimeProgress is the TimeUpdate payload.
type TimeProgress struct {
	Current float64
	Total   float64
}

// Metadata is the LoadedMetadata payload.
type Metadata struct {
	Duration float64
}

// Level is the severity of a host-facing error.
type Level string

const (
	LevelFatal Level = "FATAL"
	LevelWarn  Level = "WARN"
)

// Host receives normalized events from a playback.
type Host interface {
	Trigger(e Event)
}

// HostFunc adapts a function to Host.
type HostFunc func(e Event)

func (f HostFunc) Trigger(e Event) { f(e) }

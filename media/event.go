package media

// EventKind enumerates the native media element events.
type EventKind int

const (
	CanPlay EventKind = iota
	CanPlayThrough
	LoadStart
	LoadedMetadata
	LoadedData
	Waiting
	Stalled
	Emptied
	PlayEvent
	Playing
	PauseEvent
	RateChange
	VolumeChange
	Seeking
	Seeked
	Progress
	TimeUpdate
	DurationChange
	Abort
	Suspend
	EndedEvent
	ErrorEvent
)

var eventNames = [...]string{
	CanPlay:        "canplay",
	CanPlayThrough: "canplaythrough",
	LoadStart:      "loadstart",
	LoadedMetadata: "loadedmetadata",
	LoadedData:     "loadeddata",
	Waiting:        "waiting",
	Stalled:        "stalled",
	Emptied:        "emptied",
	PlayEvent:      "play",
	Playing:        "playing",
	PauseEvent:     "pause",
	RateChange:     "ratechange",
	VolumeChange:   "volumechange",
	Seeking:        "seeking",
	Seeked:         "seeked",
	Progress:       "progress",
	TimeUpdate:     "timeupdate",
	DurationChange: "durationchange",
	Abort:          "abort",
	Suspend:        "suspend",
	EndedEvent:     "ended",
	ErrorEvent:     "error",
}

// EventKinds lists every native event kind in declaration order.
func EventKinds() []EventKind {
	kinds := make([]EventKind, len(eventNames))
	for i := range eventNames {
		kinds[i] = EventKind(i)
	}
	return kinds
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is a native notification raised by an Element.
type Event struct {
	Kind EventKind
	// Duration carries the element duration at the time of the event, for
	// loadedmetadata and durationchange.
	Duration float64
}

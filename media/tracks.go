package media

// AudioTrack is one entry of an element's native audio track list.
type AudioTrack interface {
	ID() string
	Language() string
	Label() string
	Kind() string
	Enabled() bool
	SetEnabled(enabled bool)
}

// TrackListChange is raised when a track is added to or removed from the list.
type TrackListChange struct {
	Added bool
	Track AudioTrack
}

// AudioTrackList is the element's live audio track list.
type AudioTrackList interface {
	Len() int
	At(i int) AudioTrack
	// TrackByID returns nil for unknown ids.
	TrackByID(id string) AudioTrack
	// OnChange registers fn for addtrack/removetrack and returns its remover.
	OnChange(fn func(TrackListChange)) (remove func())
}

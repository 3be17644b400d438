package mpv

import (
	"math"
	"strconv"

	"github.com/samber/lo"
	"github.com/tvplay-cli/tvplay/media"
)

// trackInfo is an audio entry of mpv's track-list.
type trackInfo struct {
	ID       int
	Language string
	Title    string
	Default  bool
	Selected bool
}

// snapshot mirrors the mpv properties the element exposes.
type snapshot struct {
	ready      media.ReadyState
	time       float64
	duration   float64
	paused     bool
	ended      bool
	seeking    bool
	buffering  bool
	fileLoaded bool
	seekable   media.Ranges
	err        *media.MediaError
	tracks     []trackInfo
}

func newSnapshot() snapshot {
	return snapshot{
		ready:    media.HaveNothing,
		duration: math.NaN(),
		paused:   true,
		seekable: media.Ranges{},
	}
}

// outcome is what one notification produced.
type outcome struct {
	events  []media.EventKind
	changes []media.TrackListChange
	// sourceErr is set when the loaded file failed.
	sourceErr *media.MediaError
}

// apply folds n into s and returns the native events it stands for.
func (s *snapshot) apply(n Notification) outcome {
	var out outcome
	emit := func(kinds ...media.EventKind) {
		out.events = append(out.events, kinds...)
	}

	switch n.Event {
	case "start-file":
		*s = snapshot{
			ready:    media.HaveNothing,
			duration: math.NaN(),
			paused:   s.paused,
			seekable: media.Ranges{},
			tracks:   s.tracks,
		}
		emit(media.LoadStart)

	case "file-loaded":
		s.fileLoaded = true
		s.ready = media.HaveMetadata
		if math.IsNaN(s.duration) {
			s.duration = media.Unbounded
		}
		emit(media.DurationChange, media.LoadedMetadata, media.LoadedData)

	case "playback-restart":
		s.ready = media.HaveEnoughData
		s.buffering = false
		emit(media.CanPlay, media.CanPlayThrough)

	case "end-file":
		switch n.Reason {
		case "error":
			s.err = &media.MediaError{Code: media.ErrSrcNotSupported, Message: lo.Ternary(n.FileError != "", n.FileError, "playback failed")}
			out.sourceErr = s.err
		case "eof":
			if !s.ended {
				s.ended = true
				emit(media.EndedEvent)
			}
		case "stop", "redirect":
			s.ready = media.HaveNothing
			emit(media.Emptied)
		}

	case "property-change":
		s.applyProperty(n, emit, &out)
	}

	return out
}

func (s *snapshot) applyProperty(n Notification, emit func(...media.EventKind), out *outcome) {
	switch n.Name {
	case "time-pos":
		if v, ok := n.Data.(float64); ok {
			s.time = v
			emit(media.TimeUpdate)
		}

	case "duration":
		v, ok := n.Data.(float64)
		switch {
		case ok:
			s.duration = v
		case s.fileLoaded:
			s.duration = media.Unbounded
		default:
			s.duration = math.NaN()
		}
		emit(media.DurationChange)

	case "pause":
		paused, ok := n.Data.(bool)
		if !ok || paused == s.paused {
			return
		}
		s.paused = paused
		if paused {
			emit(media.PauseEvent)
			return
		}
		s.ended = false
		emit(media.PlayEvent)
		if s.fileLoaded && !s.buffering {
			emit(media.Playing)
		}

	case "paused-for-cache":
		waiting, ok := n.Data.(bool)
		if !ok || waiting == s.buffering {
			return
		}
		s.buffering = waiting
		if waiting {
			s.ready = media.HaveCurrentData
			emit(media.Waiting)
			return
		}
		s.ready = media.HaveEnoughData
		emit(media.CanPlay)
		if !s.paused {
			emit(media.Playing)
		}

	case "seeking":
		seeking, ok := n.Data.(bool)
		if !ok || seeking == s.seeking {
			return
		}
		s.seeking = seeking
		emit(lo.Ternary(seeking, media.Seeking, media.Seeked))

	case "eof-reached":
		if reached, ok := n.Data.(bool); ok && reached && !s.ended {
			s.ended = true
			emit(media.EndedEvent)
		}

	case "demuxer-cache-state":
		s.seekable = parseSeekable(n.Data)
		emit(media.Progress)

	case "track-list":
		next := parseAudioTracks(n.Data)
		out.changes = diffTracks(s.tracks, next)
		s.tracks = next

	case "volume":
		emit(media.VolumeChange)

	case "speed":
		emit(media.RateChange)
	}
}

func parseSeekable(data any) media.Ranges {
	state, ok := data.(map[string]any)
	if !ok {
		return media.Ranges{}
	}

	raw, _ := state["seekable-ranges"].([]any)
	ranges := make(media.Ranges, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		start, okStart := m["start"].(float64)
		end, okEnd := m["end"].(float64)
		if okStart && okEnd {
			ranges = append(ranges, media.Range{Start: start, End: end})
		}
	}
	return ranges
}

func parseAudioTracks(data any) []trackInfo {
	list, _ := data.([]any)

	tracks := make([]trackInfo, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok || m["type"] != "audio" {
			continue
		}

		id, _ := m["id"].(float64)
		lang, _ := m["lang"].(string)
		title, _ := m["title"].(string)
		def, _ := m["default"].(bool)
		selected, _ := m["selected"].(bool)
		tracks = append(tracks, trackInfo{
			ID:       int(id),
			Language: lang,
			Title:    title,
			Default:  def,
			Selected: selected,
		})
	}
	return tracks
}

// diffTracks reports tracks present in only one of prev and next. Selection
// changes are not list changes.
func diffTracks(prev, next []trackInfo) []media.TrackListChange {
	id := func(t trackInfo) int { return t.ID }
	prevIDs := lo.Map(prev, func(t trackInfo, _ int) int { return id(t) })
	nextIDs := lo.Map(next, func(t trackInfo, _ int) int { return id(t) })

	var changes []media.TrackListChange
	for _, t := range next {
		if !lo.Contains(prevIDs, t.ID) {
			changes = append(changes, media.TrackListChange{Added: true, Track: &staticTrack{info: t}})
		}
	}
	for _, t := range prev {
		if !lo.Contains(nextIDs, t.ID) {
			changes = append(changes, media.TrackListChange{Track: &staticTrack{info: t}})
		}
	}
	return changes
}

// staticTrack describes a track in a change notification. It cannot be toggled.
type staticTrack struct {
	info trackInfo
}

func (t *staticTrack) ID() string       { return strconv.Itoa(t.info.ID) }
func (t *staticTrack) Language() string { return t.info.Language }
func (t *staticTrack) Label() string    { return t.info.Title }
func (t *staticTrack) Kind() string     { return kindOf(t.info) }
func (t *staticTrack) Enabled() bool    { return t.info.Selected }
func (t *staticTrack) SetEnabled(bool)  {}

func kindOf(t trackInfo) string {
	if t.Default {
		return "main"
	}
	return "alternative"
}

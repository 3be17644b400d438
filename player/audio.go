package player

import (
	"github.com/samber/mo"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/media"
)

// AudioTrackDescriptor describes one audio track to the host.
type AudioTrackDescriptor struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
}

func describe(t media.AudioTrack) AudioTrackDescriptor {
	return AudioTrackDescriptor{
		ID:       t.ID(),
		Language: t.Language(),
		Label:    t.Label(),
		Kind:     t.Kind(),
	}
}

// AudioTracks reads the element's track list on every call.
func (e *Engine) AudioTracks() []AudioTrackDescriptor {
	list := e.el.AudioTracks()
	if list == nil {
		return []AudioTrackDescriptor{}
	}

	tracks := make([]AudioTrackDescriptor, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		tracks = append(tracks, describe(list.At(i)))
	}
	return tracks
}

func (e *Engine) CurrentAudioTrack() mo.Option[AudioTrackDescriptor] {
	list := e.el.AudioTracks()
	if list == nil {
		return mo.None[AudioTrackDescriptor]()
	}

	for i := 0; i < list.Len(); i++ {
		if t := list.At(i); t.Enabled() {
			return mo.Some(describe(t))
		}
	}
	return mo.None[AudioTrackDescriptor]()
}

// SwitchAudioTrack enables the track with id and disables every other one.
// Unknown ids and the already active track are ignored.
func (e *Engine) SwitchAudioTrack(id string) error {
	if e.isDestroyed {
		return ErrDestroyed
	}

	list := e.el.AudioTracks()
	if list == nil {
		return nil
	}

	track := list.TrackByID(id)
	if track == nil || track.Enabled() {
		e.log.Debugf("Audio track %q is unknown or already active", id)
		return nil
	}

	for i := 0; i < list.Len(); i++ {
		t := list.At(i)
		t.SetEnabled(t.ID() == id)
	}

	e.trigger(event.AudioTrackChanged, describe(track))
	return nil
}

func (e *Engine) listenAudioTracks() {
	list := e.el.AudioTracks()
	if list == nil {
		return
	}

	e.removeTrackChange = list.OnChange(func(media.TrackListChange) {
		if e.isDestroyed {
			return
		}
		e.trigger(event.AudioTracksAvailable, e.AudioTracks())
	})
}

package history

import (
	"fmt"
	"math"
	"time"
)

// Entry is the saved playback state of one source URL.
type Entry struct {
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	MediaType string    `json:"media_type"`
	Position  float64   `json:"position"`
	Duration  float64   `json:"duration"`
	WatchedAt time.Time `json:"watched_at"`
}

// Resumable reports whether playback can continue from Position. Live
// streams always restart at the live edge.
func (e *Entry) Resumable() bool {
	return e.MediaType != "live" && e.Position > 0 && !e.finished()
}

func (e *Entry) finished() bool {
	return e.Duration > 0 && e.Position >= e.Duration-1
}

// Percentage is the watched share of a VOD source, 0 when unknown.
func (e *Entry) Percentage() float64 {
	if e.Duration <= 0 || math.IsInf(e.Duration, 0) || math.IsNaN(e.Duration) {
		return 0
	}
	return math.Min(100, e.Position/e.Duration*100)
}

func (e *Entry) String() string {
	if e.MediaType == "live" {
		return fmt.Sprintf("%s [live]", e.URL)
	}
	return fmt.Sprintf("%s : %.0f%%", e.URL, e.Percentage())
}

package player

import (
	"errors"
	"fmt"

	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/media"
)

var (
	// ErrDestroyed is returned by every operation after Destroy.
	ErrDestroyed = errors.New("player: playback destroyed")

	// ErrNegativeSeek is returned when seeking before zero. Nothing else happens.
	ErrNegativeSeek = errors.New("player: negative seek time")

	// ErrNoSource is returned when attaching an empty URL.
	ErrNoSource = errors.New("player: empty source url")
)

const unknown = "unknown"

// Error is the payload of an event.Error notification.
type Error struct {
	// Code is "media:<native code>", "media:unknown" or "drm:<kind>".
	Code        string
	Description string
	Level       event.Level
	Raw         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error {
	return e.Raw
}

// Fatal reports whether the error ends the session.
func (e *Error) Fatal() bool {
	return e.Level == event.LevelFatal
}

func mediaError(raw *media.MediaError) *Error {
	if raw == nil {
		return &Error{
			Code:        "media:" + unknown,
			Description: unknown,
			Level:       event.LevelFatal,
		}
	}

	return &Error{
		Code:        fmt.Sprintf("media:%d", raw.Code),
		Description: raw.Message,
		Level:       event.LevelFatal,
		Raw:         raw,
	}
}

func drmError(err error, level event.Level) *Error {
	var drmErr *drm.Error
	if errors.As(err, &drmErr) {
		return &Error{
			Code:        "drm:" + drmErr.Kind.String(),
			Description: drmErr.Message,
			Level:       level,
			Raw:         err,
		}
	}

	code := "drm:" + unknown
	if errors.Is(err, drm.ErrRequestInFlight) {
		code = "drm:request_in_flight"
	}
	return &Error{Code: code, Description: err.Error(), Level: level, Raw: err}
}

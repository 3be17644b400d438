package player

import (
	"math"

	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/media"
)

// MediaType is Live exactly when the element reports an unbounded duration.
func (e *Engine) MediaType() MediaType {
	if math.IsInf(e.el.Duration(), 1) {
		return Live
	}
	return VOD
}

func (e *Engine) IsLive() bool {
	return e.MediaType() == Live
}

// Duration returns the element duration for on-demand content. For live
// content it is the span from the first seekable start to the last seekable
// end, or the raw duration when the ranges are unavailable.
func (e *Engine) Duration() float64 {
	if !e.IsLive() {
		return e.el.Duration()
	}
	return e.liveDuration()
}

func (e *Engine) liveDuration() float64 {
	ranges := e.el.Seekable()
	if ranges == nil {
		return e.el.Duration()
	}

	end, err := ranges.End(ranges.Len() - 1)
	if err != nil {
		e.log.Warnf("Fail to determine live duration: %s", err)
		return e.el.Duration()
	}
	start, err := ranges.Start(0)
	if err != nil {
		e.log.Warnf("Fail to determine live duration: %s", err)
		return e.el.Duration()
	}
	return end - start
}

// DVRSize is the minimum live window, in seconds, for DVR to be enabled.
func (e *Engine) DVRSize() float64 {
	return e.cfg.MinimumDVRSize
}

// DVREnabled reports whether the session is live with a window of at least DVRSize.
func (e *Engine) DVREnabled() bool {
	return e.IsLive() && e.Duration() >= e.DVRSize()
}

// updateDVR publishes whether playback is behind the live edge.
func (e *Engine) updateDVR(status bool) {
	e.trigger(event.DVRStatusChanged, status)
	e.trigger(event.StatsAdd, map[string]any{"dvr": status})
}

// SeekableStart is the start of the first seekable range. Seek targets are
// relative to it.
func (e *Engine) SeekableStart() (float64, error) {
	ranges := e.el.Seekable()
	if ranges == nil {
		return 0, media.ErrIndexSize
	}
	return ranges.Start(0)
}

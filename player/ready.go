package player

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tvplay-cli/tvplay/event"
)

func newReadinessBackOff(cfg Config) *backoff.ExponentialBackOff {
	ceiling := time.Duration(math.MaxInt64)
	if cfg.ReadyBackoffCeiling > 0 {
		ceiling = cfg.ReadyBackoffCeiling
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     cfg.ReadyBackoff,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         ceiling,
	}
	b.Reset()
	return b
}

// signalizeReady emits the ready event once the element reaches the ready
// threshold, polling with a doubling delay until it does. At most one poll
// chain runs per attached source.
func (e *Engine) signalizeReady() {
	if e.readyPending {
		return
	}

	e.readiness.Reset()
	e.pollReady(e.session)
}

func (e *Engine) pollReady(session uint64) {
	e.readyPending = false
	e.cancelReady = nil
	if session != e.session || e.isDestroyed || e.isReady || e.src == nil {
		return
	}

	if e.el.ReadyState() < e.cfg.ReadyThreshold {
		delay := e.readiness.NextBackOff()
		e.log.Debugf("Ready state %s is below %s, retrying in %s", e.el.ReadyState(), e.cfg.ReadyThreshold, delay)

		e.readyPending = true
		e.cancelReady = e.scheduler.AfterFunc(delay, func() {
			e.pollReady(session)
		})
		if e.observer != nil {
			e.observer.ReadyRetry()
		}
		return
	}

	e.isReady = true
	if e.state == SourceAttached {
		e.transition(Ready)
	}
	e.trigger(event.Ready, nil)
}

func (e *Engine) stopReadiness() {
	if e.cancelReady != nil {
		e.cancelReady()
		e.cancelReady = nil
	}
	e.readyPending = false
}

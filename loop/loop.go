// Package loop serializes playback work onto a single goroutine.
//
// The engine and the DRM negotiator are single-threaded state machines: every
// public call, element event, agent callback and timer must run on the same
// logical timeline. Backends post work with Post; timers created through
// AfterFunc fire by posting back onto the loop.
package loop

import (
	"context"
	"sync"
	"time"
)

// Scheduler creates one-shot timers whose callbacks run on the owner's timeline.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Loop is an unbounded FIFO executor drained by Run.
type Loop struct {
	mu      sync.Mutex
	tasks   []func()
	stopped bool
	wake    chan struct{}
}

// New returns an idle loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn without blocking. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from the loop goroutine itself.
func (l *Loop) Do(fn func()) bool {
	done := make(chan struct{})
	if !l.Post(func() { defer close(done); fn() }) {
		return false
	}
	<-done
	return true
}

// AfterFunc schedules fn on the loop after d. Cancelling prevents fn from
// running if it has not started yet.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() {
	var (
		mu        sync.Mutex
		cancelled bool
	)
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			mu.Lock()
			skip := cancelled
			mu.Unlock()
			if !skip {
				fn()
			}
		})
	})
	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		t.Stop()
	}
}

// Run executes posted tasks until ctx is done. Tasks still queued at that
// point are discarded and later Posts are refused.
func (l *Loop) Run(ctx context.Context) {
	for {
		l.mu.Lock()
		batch := l.tasks
		l.tasks = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.tasks = nil
			l.mu.Unlock()
			return
		case <-l.wake:
		}
	}
}

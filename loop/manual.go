package loop

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by explicit Advance calls. Callbacks run on
// the goroutine calling Advance, which keeps tests deterministic.
type Manual struct {
	now     time.Duration
	seq     int
	pending []*manualTimer
	// Delays records every requested delay in creation order.
	Delays []time.Duration
}

type manualTimer struct {
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// NewManual returns a scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) func() {
	t := &manualTimer{at: m.now + d, seq: m.seq, fn: fn}
	m.seq++
	m.pending = append(m.pending, t)
	m.Delays = append(m.Delays, d)
	return func() { t.cancelled = true }
}

// Now is the time elapsed since NewManual.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Advance moves the clock forward by d, firing due timers in deadline order.
// Timers scheduled by fired callbacks also fire if they fall within the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.at
		if !t.cancelled {
			t.fn()
		}
	}
	m.now = target
}

// Pending returns the number of live timers.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Duration) *manualTimer {
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at == m.pending[j].at {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].at < m.pending[j].at
	})
	if len(m.pending) == 0 || m.pending[0].at > target {
		return nil
	}
	t := m.pending[0]
	m.pending = m.pending[1:]
	return t
}

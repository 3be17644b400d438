package event

import "sync"

// Bus fans events out to listeners registered per kind or for every kind.
// Listeners run synchronously on the triggering goroutine, in registration order.
type Bus struct {
	mu        sync.RWMutex
	listeners []listener
	next      int
}

type listener struct {
	id   int
	kind Kind // empty for all kinds
	fn   func(Event)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// On registers fn for events of kind k and returns its remover.
func (b *Bus) On(k Kind, fn func(Event)) (off func()) {
	return b.add(k, fn)
}

// OnAny registers fn for every event and returns its remover.
func (b *Bus) OnAny(fn func(Event)) (off func()) {
	return b.add("", fn)
}

func (b *Bus) add(k Kind, fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners = append(b.listeners, listener{id: id, kind: k, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Trigger delivers e to the matching listeners.
func (b *Bus) Trigger(e Event) {
	b.mu.RLock()
	matched := make([]func(Event), 0, len(b.listeners))
	for _, l := range b.listeners {
		if l.kind == "" || l.kind == e.Kind {
			matched = append(matched, l.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range matched {
		fn(e)
	}
}

// Recorder is a Host that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Trigger(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]Kind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Last returns the most recent event of kind k.
func (r *Recorder) Last(k Kind) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == k {
			return r.events[i], true
		}
	}
	return Event{}, false
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

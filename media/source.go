package media

import "sync"

// Source is the attached media resource: a URL plus its MIME type.
// It raises its own error notifications, distinct from the element's.
type Source struct {
	URL  string
	Type string

	mu        sync.Mutex
	err       *MediaError
	listeners map[int]func(*MediaError)
	next      int
}

// NewSource returns a source for url with MIME type mimeType.
func NewSource(url, mimeType string) *Source {
	return &Source{URL: url, Type: mimeType, listeners: map[int]func(*MediaError){}}
}

// OnError registers fn for source errors and returns its remover.
func (s *Source) OnError(fn func(*MediaError)) (remove func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Fail records err and notifies the registered listeners. Backends call it
// when the resource itself cannot be fetched or decoded.
func (s *Source) Fail(err *MediaError) {
	s.mu.Lock()
	s.err = err
	fns := make([]func(*MediaError), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(err)
	}
}

// Error returns the last recorded source error or nil.
func (s *Source) Error() *MediaError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Clear blanks the URL so a subsequent element Load fetches nothing.
func (s *Source) Clear() {
	s.URL = ""
}

package media

import (
	"errors"
	"fmt"
)

// ErrIndexSize is returned by TimeRanges accessors for out-of-range indices.
var ErrIndexSize = errors.New("index size error")

// Native MediaError codes.
const (
	ErrAborted         = 1
	ErrNetwork         = 2
	ErrDecode          = 3
	ErrSrcNotSupported = 4
)

// MediaError is the error reported by an element or a source.
type MediaError struct {
	Code    int
	Message string
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media error %d: %s", e.Code, e.Message)
}

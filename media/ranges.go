package media

// TimeRanges mirrors the HTML TimeRanges accessor semantics: Start and End
// fail with ErrIndexSize for indices outside [0, Len()).
type TimeRanges interface {
	Len() int
	Start(i int) (float64, error)
	End(i int) (float64, error)
}

// Range is a closed [Start, End] interval in seconds.
type Range struct {
	Start float64
	End   float64
}

// Ranges is a TimeRanges backed by a slice.
type Ranges []Range

func (r Ranges) Len() int { return len(r) }

func (r Ranges) Start(i int) (float64, error) {
	if i < 0 || i >= len(r) {
		return 0, ErrIndexSize
	}
	return r[i].Start, nil
}

func (r Ranges) End(i int) (float64, error) {
	if i < 0 || i >= len(r) {
		return 0, ErrIndexSize
	}
	return r[i].End, nil
}

package player

import "github.com/samber/lo"

// State is the engine's lifecycle state.
type State int

const (
	Initial State = iota
	SourceAttaching
	DrmPending
	SourceAttached
	Ready
	Buffering
	Playing
	Paused
	Seeking
	Stopped
	Ended
	Errored
	Destroyed
)

var stateNames = [...]string{
	Initial:         "initial",
	SourceAttaching: "source_attaching",
	DrmPending:      "drm_pending",
	SourceAttached:  "source_attached",
	Ready:           "ready",
	Buffering:       "buffering",
	Playing:         "playing",
	Paused:          "paused",
	Seeking:         "seeking",
	Stopped:         "stopped",
	Ended:           "ended",
	Errored:         "errored",
	Destroyed:       "destroyed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// active are the states in which a source is attached to the element.
var active = []State{SourceAttached, Ready, Buffering, Playing, Paused, Seeking}

// transitions lists the targets reachable from each state, besides
// Destroyed which every state but Destroyed may reach.
var transitions = map[State][]State{
	Initial:         {SourceAttaching, Stopped},
	SourceAttaching: {DrmPending, SourceAttached, Errored, Stopped},
	DrmPending:      {SourceAttached, SourceAttaching, Errored, Stopped},
	SourceAttached:  {Ready, Buffering, Playing, Paused, Seeking, Ended, Errored, Stopped, SourceAttaching},
	Ready:           {Buffering, Playing, Paused, Seeking, Ended, Errored, Stopped, SourceAttaching},
	Buffering:       {Ready, Playing, Paused, Seeking, Ended, Errored, Stopped, SourceAttaching},
	Playing:         {Buffering, Paused, Seeking, Ended, Errored, Stopped, SourceAttaching},
	Paused:          {Buffering, Playing, Seeking, Ended, Errored, Stopped, SourceAttaching},
	Seeking:         {Buffering, Playing, Paused, Ended, Errored, Stopped, SourceAttaching},
	Stopped:         {SourceAttaching},
	Ended:           {SourceAttaching, Stopped},
	Errored:         {SourceAttaching, Stopped},
}

// CanTransition reports whether the engine may move from s to next.
func (s State) CanTransition(next State) bool {
	if s == Destroyed {
		return false
	}
	if next == Destroyed {
		return true
	}
	return lo.Contains(transitions[s], next)
}

// HasSource reports whether s implies an attached source.
func (s State) HasSource() bool {
	return lo.Contains(active, s)
}

package drm

import (
	"sync"

	"github.com/samber/lo"
)

// Agent is a platform DRM agent handle.
type Agent interface {
	// SendDRMMessage dispatches a message. A non-nil error means the dispatch
	// itself failed and no callback will follow.
	SendDRMMessage(messageType, payload, systemID string) error

	// OnRightsError replaces the onDRMRightsError slot. A nil fn clears it.
	OnRightsError(fn func(code int))

	// OnMessageResult replaces the onDRMMessageResult slot. A nil fn clears it.
	OnMessageResult(fn func(id, message string, code int))
}

// Factory creates a new agent handle.
type Factory func() Agent

// Container holds attached agents.
type Container interface {
	Append(a Agent)
	Remove(a Agent)
}

// AgentSet is a Container safe for concurrent use.
type AgentSet struct {
	mu     sync.Mutex
	agents []Agent
}

// DefaultContainer receives agents when no container is supplied.
var DefaultContainer = NewAgentSet()

func NewAgentSet() *AgentSet {
	return &AgentSet{}
}

func (s *AgentSet) Append(a Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !lo.Contains(s.agents, a) {
		s.agents = append(s.agents, a)
	}
}

func (s *AgentSet) Remove(a Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.agents = lo.Without(s.agents, a)
}

func (s *AgentSet) Contains(a Agent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Contains(s.agents, a)
}

func (s *AgentSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.agents)
}

// NullAgent is an agent on a platform without DRM dispatch. Every dispatch
// fails with ErrDispatchUnsupported, leaving the outcome to the negotiator's
// dispatch failure policy.
type NullAgent struct{}

func NewNullAgent() Agent {
	return &NullAgent{}
}

func (*NullAgent) SendDRMMessage(string, string, string) error {
	return ErrDispatchUnsupported
}

func (*NullAgent) OnRightsError(func(int)) {}

func (*NullAgent) OnMessageResult(func(string, string, int)) {}

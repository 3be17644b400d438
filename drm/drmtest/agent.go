// Package drmtest provides a scriptable drm.Agent.
package drmtest

import (
	"time"

	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/loop"
)

// Message is a recorded dispatch.
type Message struct {
	Type     string
	Payload  string
	SystemID string
}

// Agent records dispatched messages and lets tests fire its callback slots.
type Agent struct {
	Messages []Message

	// DispatchErr, when set, is returned by SendDRMMessage.
	DispatchErr error

	// Respond, when set, is called after every successful dispatch.
	Respond func(a *Agent, m Message)

	rights func(code int)
	result func(id, message string, code int)
}

func NewAgent() *Agent {
	return &Agent{}
}

func (a *Agent) SendDRMMessage(messageType, payload, systemID string) error {
	if a.DispatchErr != nil {
		return a.DispatchErr
	}

	m := Message{Type: messageType, Payload: payload, SystemID: systemID}
	a.Messages = append(a.Messages, m)
	if a.Respond != nil {
		a.Respond(a, m)
	}
	return nil
}

func (a *Agent) OnRightsError(fn func(code int))                   { a.rights = fn }
func (a *Agent) OnMessageResult(fn func(id, msg string, code int)) { a.result = fn }

// RightsError fires the onDRMRightsError slot if one is set.
func (a *Agent) RightsError(code int) {
	if a.rights != nil {
		a.rights(code)
	}
}

// MessageResult fires the onDRMMessageResult slot if one is set.
func (a *Agent) MessageResult(id, message string, code int) {
	if a.result != nil {
		a.result(id, message, code)
	}
}

// Wired reports whether both callback slots are set.
func (a *Agent) Wired() bool {
	return a.rights != nil && a.result != nil
}

// Last returns the most recent message, or the zero Message.
func (a *Agent) Last() Message {
	if len(a.Messages) == 0 {
		return Message{}
	}
	return a.Messages[len(a.Messages)-1]
}

// Factory returns a drm.Factory handing out fresh agents and recording them in created.
func Factory(created *[]*Agent, configure func(a *Agent)) drm.Factory {
	return func() drm.Agent {
		a := NewAgent()
		if configure != nil {
			configure(a)
		}
		*created = append(*created, a)
		return a
	}
}

// AnswerAfter returns a responder that reports code through onDRMMessageResult
// after delay on s.
func AnswerAfter(s loop.Scheduler, delay time.Duration, code int) func(a *Agent, m Message) {
	return func(a *Agent, m Message) {
		s.AfterFunc(delay, func() {
			a.MessageResult("1", "", code)
		})
	}
}

package drm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/tvplay-cli/tvplay/log"
	"github.com/tvplay-cli/tvplay/loop"
)

// DispatchPolicy decides the outcome of a license request whose dispatch fails synchronously.
type DispatchPolicy int

const (
	// DispatchSucceed reports success: some platforms set up the license on their own.
	DispatchSucceed DispatchPolicy = iota
	// DispatchFail reports a DispatchFailure error.
	DispatchFail
)

// ParseDispatchPolicy accepts "succeed" and "fail".
func ParseDispatchPolicy(s string) (DispatchPolicy, error) {
	switch s {
	case "", "succeed":
		return DispatchSucceed, nil
	case "fail":
		return DispatchFail, nil
	default:
		return 0, fmt.Errorf("unknown dispatch failure policy %q", s)
	}
}

// Concurrency decides what happens to a license request issued while another transaction is pending.
type Concurrency int

const (
	// Queue runs transactions one after another in arrival order.
	Queue Concurrency = iota
	// Reject refuses the new request with ErrRequestInFlight.
	Reject
)

// ParseConcurrency accepts "queue" and "reject".
func ParseConcurrency(s string) (Concurrency, error) {
	switch s {
	case "", "queue":
		return Queue, nil
	case "reject":
		return Reject, nil
	default:
		return 0, fmt.Errorf("unknown drm concurrency policy %q", s)
	}
}

// Observer is notified of every settled transaction. outcome is "success" or a Kind name.
type Observer interface {
	DRMTransaction(mode, outcome string)
}

// Options tune a Negotiator. The zero value queues transactions, treats
// dispatch failures as success, never times out and attaches agents to DefaultContainer.
type Options struct {
	Container       Container
	DispatchFailure DispatchPolicy
	Concurrency     Concurrency

	// Timeout fails a transaction when the agent stays silent for this long. It requires Scheduler.
	Timeout   time.Duration
	Scheduler loop.Scheduler

	Observer Observer
}

type transaction struct {
	id        string
	mode      Mode
	payload   string
	onSuccess func()
	onFailure func(error)
	settled   bool
	cancel    func()
}

// Negotiator runs DRM transactions against a single owned agent.
//
// It is not safe for concurrent use: calls and agent callbacks must share
// one goroutine, such as a loop.Loop.
type Negotiator struct {
	factory Factory
	opts    Options
	log     *log.Entry

	agent   mo.Option[Agent]
	active  *transaction
	pending []*transaction
}

// NewNegotiator returns a negotiator creating agents with factory on demand.
func NewNegotiator(factory Factory, opts Options) *Negotiator {
	if opts.Container == nil {
		opts.Container = DefaultContainer
	}

	return &Negotiator{
		factory: factory,
		opts:    opts,
		log:     log.Component("drm"),
		agent:   mo.None[Agent](),
	}
}

// HasAgent reports whether the negotiator currently owns an agent.
func (n *Negotiator) HasAgent() bool {
	return n.agent.IsPresent()
}

// Busy reports whether a transaction is active or waiting.
func (n *Negotiator) Busy() bool {
	return n.active != nil || len(n.pending) > 0
}

// requesting reports whether a license request, as opposed to a clear, is
// active or waiting.
func (n *Negotiator) requesting() bool {
	if n.active != nil && n.active.mode != Clear {
		return true
	}
	return lo.ContainsBy(n.pending, func(tx *transaction) bool { return tx.mode != Clear })
}

// RequestLicense acquires a license described by cfg. Exactly one of
// onSuccess and onFailure runs once the transaction settles, possibly before
// RequestLicense returns. A returned error means no transaction was created.
func (n *Negotiator) RequestLicense(cfg Config, onSuccess func(), onFailure func(error)) error {
	mode, payload, err := cfg.Envelope()
	if err != nil {
		return err
	}

	if n.opts.Concurrency == Reject && n.requesting() {
		n.log.Warnf("Rejecting %s request, a transaction is already in flight", mode)
		return ErrRequestInFlight
	}

	n.enqueue(mode, payload, onSuccess, onFailure)
	return nil
}

// ClearLicense drops the active license. Without an agent and with nothing
// pending it succeeds synchronously and dispatches nothing. Clears are always
// queued, regardless of the concurrency policy.
func (n *Negotiator) ClearLicense(onSuccess func(), onFailure func(error)) {
	if !n.HasAgent() && !n.Busy() {
		n.log.Warnf("No DRM license has been configured, nothing to clear")
		n.observe(Clear, "success")
		if onSuccess != nil {
			onSuccess()
		}
		return
	}

	n.enqueue(Clear, ClearEnvelope(), onSuccess, onFailure)
}

func (n *Negotiator) enqueue(mode Mode, payload string, onSuccess func(), onFailure func(error)) {
	tx := &transaction{
		id:        uuid.NewString(),
		mode:      mode,
		payload:   payload,
		onSuccess: onSuccess,
		onFailure: onFailure,
	}

	if n.Busy() {
		n.log.WithField("transaction", tx.id).Infof("Queueing %s behind the transaction in flight", mode)
	}

	n.pending = append(n.pending, tx)
	n.pump()
}

func (n *Negotiator) pump() {
	for n.active == nil && len(n.pending) > 0 {
		tx := n.pending[0]
		n.pending = n.pending[1:]
		n.start(tx)
	}
}

func (n *Negotiator) start(tx *transaction) {
	n.active = tx
	entry := n.log.WithField("transaction", tx.id)

	if tx.mode == Clear && !n.HasAgent() {
		entry.Infof("Agent already removed, clear is a no-op")
		n.succeed(tx)
		return
	}

	agent := n.ensureAgent()
	if tx.mode == Clear {
		agent.OnRightsError(func(code int) {
			entry.Infof("onDRMRightsError during clear with code %d", code)
			n.succeed(tx)
		})
		agent.OnMessageResult(func(id, message string, code int) {
			entry.Infof("onDRMMessageResult during clear: id=%s message=%q code=%d", id, message, code)
			n.removeAgent()
			n.succeed(tx)
		})
	} else {
		agent.OnRightsError(func(code int) {
			if code >= rightsValidThreshold {
				entry.Infof("onDRMRightsError with code %d ignored", code)
				return
			}
			err := RightsError(code)
			entry.Errorf("Error at onDRMRightsError call: %s", err.Message)
			n.fail(tx, err)
		})
		agent.OnMessageResult(func(id, message string, code int) {
			entry.Infof("onDRMMessageResult: id=%s message=%q code=%d", id, message, code)
			if code == 0 {
				n.succeed(tx)
				return
			}
			err := ResultError(code)
			entry.Errorf("Error at onDRMMessageResult call: %s", err.Message)
			n.fail(tx, err)
		})
	}

	if n.opts.Timeout > 0 && n.opts.Scheduler != nil {
		tx.cancel = n.opts.Scheduler.AfterFunc(n.opts.Timeout, func() {
			if tx.settled {
				return
			}
			entry.Errorf("Agent did not answer the %s message within %s", tx.mode, n.opts.Timeout)
			n.fail(tx, &Error{
				Kind:    Timeout,
				Code:    -1,
				Message: fmt.Sprintf("DRM: No answer within %s", n.opts.Timeout),
				Err:     ErrTimeout,
			})
		})
	}

	err := agent.SendDRMMessage(MessageType, tx.payload, SystemID)
	if err == nil || tx.settled {
		return
	}

	dispatchErr := &Error{Kind: DispatchFailure, Code: -1, Message: err.Error(), Err: err}
	if tx.mode == Clear {
		entry.Errorf("Error at sendDRMMessage call: %s", err)
		n.fail(tx, dispatchErr)
		return
	}

	entry.Warnf("Error at sendDRMMessage call: %s", err)
	n.removeAgent()
	if n.opts.DispatchFailure == DispatchSucceed {
		n.succeed(tx)
		return
	}
	n.fail(tx, dispatchErr)
}

func (n *Negotiator) ensureAgent() Agent {
	if agent, ok := n.agent.Get(); ok {
		return agent
	}

	agent := n.factory()
	n.opts.Container.Append(agent)
	n.agent = mo.Some(agent)
	return agent
}

func (n *Negotiator) removeAgent() {
	agent, ok := n.agent.Get()
	if !ok {
		return
	}

	agent.OnRightsError(nil)
	agent.OnMessageResult(nil)
	n.opts.Container.Remove(agent)
	n.agent = mo.None[Agent]()
}

func (n *Negotiator) succeed(tx *transaction) {
	if !n.settle(tx, "success") {
		return
	}
	if tx.onSuccess != nil {
		tx.onSuccess()
	}
	n.pump()
}

func (n *Negotiator) fail(tx *transaction, err *Error) {
	if !n.settle(tx, err.Kind.String()) {
		return
	}
	if tx.onFailure != nil {
		tx.onFailure(err)
	}
	n.pump()
}

// settle marks tx finished. It reports false when tx was already settled,
// which drops late agent callbacks.
func (n *Negotiator) settle(tx *transaction, outcome string) bool {
	if tx.settled {
		return false
	}

	tx.settled = true
	if tx.cancel != nil {
		tx.cancel()
	}
	if n.active == tx {
		n.active = nil
	}
	n.observe(tx.mode, outcome)
	return true
}

func (n *Negotiator) observe(mode Mode, outcome string) {
	if n.opts.Observer != nil {
		n.opts.Observer.DRMTransaction(mode.String(), outcome)
	}
}

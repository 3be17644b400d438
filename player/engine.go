package player

import (
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/tvplay-cli/tvplay/constant"
	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/log"
	"github.com/tvplay-cli/tvplay/loop"
	"github.com/tvplay-cli/tvplay/media"
	"github.com/tvplay-cli/tvplay/mime"
)

// Negotiator acquires and clears DRM licenses. *drm.Negotiator implements it.
type Negotiator interface {
	RequestLicense(cfg drm.Config, onSuccess func(), onFailure func(error)) error
	ClearLicense(onSuccess func(), onFailure func(error))
}

// Observer is notified of published events and readiness retries.
type Observer interface {
	PlaybackEvent(kind string)
	ReadyRetry()
}

// Option customizes an Engine.
type Option func(e *Engine)

// WithNegotiator sets the DRM negotiator. Without it, an engine configured
// for DRM negotiates against drm.NullAgent.
func WithNegotiator(n Negotiator) Option {
	return func(e *Engine) {
		e.negotiator = n
	}
}

// WithObserver reports published events and readiness retries to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// Engine is the playback state machine.
//
// It is not safe for concurrent use. Every method, element event, source
// error, DRM callback and scheduler callback must run on the same goroutine,
// normally a loop.Loop.
type Engine struct {
	el         media.Element
	host       event.Host
	scheduler  loop.Scheduler
	negotiator Negotiator
	observer   Observer
	cfg        Config
	log        *log.Entry

	handlers map[media.EventKind]func(media.Event)

	state        State
	src          *media.Source
	url          string
	mimeType     string
	playbackType mo.Option[MediaType]

	isReady       bool
	isBuffering   bool
	isStopped     bool
	isDestroyed   bool
	drmConfigured bool
	drmPending    bool

	// session increments on every teardown; callbacks captured under an
	// older value are stale and must do nothing.
	session uint64

	readiness    *backoff.ExponentialBackOff
	readyPending bool
	cancelReady  func()

	unsubscribe       func()
	removeSourceError func()
	removeTrackChange func()
}

// NewEngine binds el to host. Timers are created on s. When cfg.Src is set
// the source is attached immediately.
func NewEngine(el media.Element, host event.Host, s loop.Scheduler, cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()

	e := &Engine{
		el:           el,
		host:         host,
		scheduler:    s,
		cfg:          cfg,
		log:          log.Component("playback"),
		state:        Initial,
		playbackType: mo.None[MediaType](),
		readiness:    newReadinessBackOff(cfg),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.negotiator == nil && cfg.needsDRM() {
		e.negotiator = drm.NewNegotiator(drm.NewNullAgent, drm.Options{Scheduler: s})
	}

	e.handlers = e.eventTable()
	e.unsubscribe = el.Subscribe(e.handle)
	e.listenAudioTracks()

	if cfg.Src != "" {
		if err := e.SetSource(cfg.Src); err != nil {
			e.log.Warnf("Could not attach the initial source: %s", err)
		}
	}

	return e
}

func (e *Engine) Name() string {
	return constant.PlaybackName
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// SourceURL returns the current source URL, kept across Stop and cleared by Destroy.
func (e *Engine) SourceURL() string {
	return e.url
}

// MimeType returns the MIME type resolved for the current source.
func (e *Engine) MimeType() string {
	return e.mimeType
}

func (e *Engine) IsReady() bool     { return e.isReady }
func (e *Engine) IsBuffering() bool { return e.isBuffering }
func (e *Engine) IsStopped() bool   { return e.isStopped }
func (e *Engine) IsDestroyed() bool { return e.isDestroyed }

// DRMConfigured reports whether a license is active for the attached source.
func (e *Engine) DRMConfigured() bool {
	return e.drmConfigured
}

// SetSource attaches url unless it is already attached. A different source
// is torn down first.
func (e *Engine) SetSource(url string) error {
	if e.isDestroyed {
		return ErrDestroyed
	}
	if url == "" {
		return ErrNoSource
	}
	if e.src != nil && e.src.URL == url {
		e.log.Debugf("Source %s is already attached", url)
		return nil
	}

	if e.src != nil {
		e.teardown()
	}
	e.isReady = false
	e.isBuffering = false

	mimeType, ok := mime.ForExtension(mime.Extension(url))
	if !ok {
		e.log.Warnf("No MIME type is known for %s", url)
	}

	e.log = log.Component("playback").WithField("session", uuid.NewString())
	e.url = url
	e.mimeType = mimeType
	e.src = media.NewSource(url, mimeType)

	src := e.src
	e.removeSourceError = src.OnError(func(*media.MediaError) {
		if e.src == src {
			e.onError(media.Event{Kind: media.ErrorEvent})
		}
	})

	e.transition(SourceAttaching)
	e.attachSource()
	return nil
}

// attachSource appends the pending source, negotiating a license first when required.
func (e *Engine) attachSource() {
	if e.cfg.needsDRM() && !e.drmConfigured {
		e.requestLicense()
		return
	}

	e.el.AppendSource(e.src)
	e.el.Load()
	e.transition(SourceAttached)
}

func (e *Engine) requestLicense() {
	session := e.session
	stale := func() bool {
		return session != e.session || e.isDestroyed
	}

	e.drmPending = true
	e.transition(DrmPending)

	err := e.negotiator.RequestLicense(*e.cfg.DRM, func() {
		if stale() {
			e.log.Infof("Dropping a license granted to a torn down source")
			return
		}
		e.drmPending = false
		e.drmConfigured = true
		e.attachSource()
	}, func(err error) {
		if stale() {
			e.log.Infof("Dropping a license failure for a torn down source: %s", err)
			return
		}
		e.onDrmError(err)
	})
	if err != nil {
		e.onDrmError(err)
	}
}

func (e *Engine) onDrmError(err error) {
	e.drmPending = false
	e.drmConfigured = false
	e.log.Errorf("DRM negotiation failed: %s", err)
	e.transition(Errored)
	e.trigger(event.Error, drmError(err, event.LevelFatal))
}

// Load tears down the current source and attaches url.
func (e *Engine) Load(url string) error {
	if e.isDestroyed {
		return ErrDestroyed
	}

	e.teardown()
	return e.SetSource(url)
}

func (e *Engine) Play() error {
	if e.isDestroyed {
		return ErrDestroyed
	}

	e.isStopped = false
	if e.url != "" {
		if err := e.SetSource(e.url); err != nil {
			return err
		}
	}

	done := e.el.Play()
	if done == nil {
		return nil
	}

	entry := e.log
	go func() {
		if err := <-done; err != nil {
			entry.Warnf("The play request was rejected: %s", err)
		}
	}()
	return nil
}

func (e *Engine) Pause() error {
	if e.isDestroyed {
		return ErrDestroyed
	}

	e.el.Pause()
	if e.DVREnabled() {
		e.updateDVR(true)
	}
	return nil
}

func (e *Engine) Seek(t float64) error {
	if e.isDestroyed {
		return ErrDestroyed
	}
	if t < 0 {
		e.log.Warnf("Attempting to seek to a negative time (%v). Ignoring this operation.", t)
		return ErrNegativeSeek
	}

	if e.DVREnabled() {
		e.updateDVR(t < e.Duration()-e.cfg.LiveStateThreshold)
	}

	target := t
	if start, err := e.SeekableStart(); err != nil {
		e.log.Warnf("The seekable start is not available: %s", err)
	} else {
		target += start
	}

	e.el.SetCurrentTime(target)
	return nil
}

func (e *Engine) Stop() error {
	if e.isDestroyed {
		return ErrDestroyed
	}

	if err := e.Pause(); err != nil {
		return err
	}
	e.isStopped = true
	e.teardown()
	e.transition(Stopped)
	e.trigger(event.Stop, nil)
	return nil
}

// Destroy tears down the source, detaches every listener and forgets the URL.
func (e *Engine) Destroy() error {
	if e.isDestroyed {
		return nil
	}

	e.isDestroyed = true
	e.teardown()
	e.transition(Destroyed)

	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	if e.removeTrackChange != nil {
		e.removeTrackChange()
		e.removeTrackChange = nil
	}
	e.url = ""
	e.mimeType = ""
	return nil
}

// teardown detaches the current source and clears any license. The clear is
// not awaited.
func (e *Engine) teardown() {
	e.isReady = false
	e.isBuffering = false
	e.session++
	e.stopReadiness()

	if e.drmConfigured || e.drmPending {
		e.drmConfigured = false
		e.drmPending = false
		e.clearLicense()
	}

	if e.src == nil {
		return
	}

	if e.removeSourceError != nil {
		e.removeSourceError()
		e.removeSourceError = nil
	}
	e.src.Clear()
	e.el.Load()
	e.el.RemoveSource(e.src)
	e.src = nil
}

func (e *Engine) clearLicense() {
	entry := e.log
	e.negotiator.ClearLicense(func() {
		entry.Infof("DRM license cleared")
	}, func(err error) {
		entry.Errorf("Could not clear the DRM license: %s", err)
		e.trigger(event.Error, drmError(err, event.LevelWarn))
	})
}

func (e *Engine) CurrentTime() float64 {
	return e.el.CurrentTime()
}

func (e *Engine) IsPlaying() bool {
	return !e.el.Paused() && !e.el.Ended()
}

func (e *Engine) Ended() bool {
	return e.el.Ended()
}

// PlaybackType returns the host override, or MediaType when none is set.
func (e *Engine) PlaybackType() MediaType {
	return e.playbackType.OrElse(e.MediaType())
}

// SetPlaybackType overrides the reported playback type.
func (e *Engine) SetPlaybackType(t MediaType) {
	e.playbackType = mo.Some(t)
}

// transition moves to next when the state table allows it. Illegal moves
// are logged and ignored.
func (e *Engine) transition(next State) {
	if e.state == next {
		return
	}
	if !e.state.CanTransition(next) {
		e.log.Debugf("Ignoring transition %s -> %s", e.state, next)
		return
	}
	e.state = next
}

func (e *Engine) trigger(kind event.Kind, payload any) {
	if e.isDestroyed {
		return
	}
	if e.observer != nil {
		e.observer.PlaybackEvent(string(kind))
	}
	e.host.Trigger(event.Event{Kind: kind, Source: e.Name(), Payload: payload})
}

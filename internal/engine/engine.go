// Package engine runs the once-per-second evaluation loop that turns run
// snapshots into spoken prompts.
//
// The engine owns a single goroutine. Each tick it reads the latest
// snapshot, evaluates the enabled triggers whose cooldown has elapsed,
// enqueues the prompts they generate, and — when the sink is idle — dequeues
// one prompt and speaks it. At most one utterance is ever in flight; the
// bounded queue provides the backpressure.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
	"github.com/StrideLab/VoiceCoach/internal/queue"
	"github.com/StrideLab/VoiceCoach/internal/speech"
	"github.com/StrideLab/VoiceCoach/internal/trigger"
)

// DefaultTickInterval is the evaluation cadence when none is configured.
const DefaultTickInterval = time.Second

// Opts holds optional engine configuration.
type Opts struct {
	// TickInterval is the evaluation cadence. Defaults to DefaultTickInterval.
	TickInterval time.Duration
	// QueueSize bounds the prompt queue. Defaults to queue.DefaultMaxSize.
	QueueSize int
	// Clock supplies the current time for trigger evaluation; tests inject a
	// fake. Defaults to time.Now.
	Clock func() time.Time
}

// Option configures optional engine settings.
type Option func(*Opts)

// WithTickInterval overrides the evaluation cadence.
func WithTickInterval(d time.Duration) Option {
	return func(o *Opts) {
		o.TickInterval = d
	}
}

// WithQueueSize overrides the prompt queue bound.
func WithQueueSize(n int) Option {
	return func(o *Opts) {
		o.QueueSize = n
	}
}

// WithClock overrides the time source used for trigger evaluation.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		o.Clock = now
	}
}

// Engine drives trigger evaluation and prompt dispatch over the latest run
// snapshot. Producers replace the snapshot through UpdateSnapshot; the loop
// never blocks waiting for a newer one. All methods are safe for concurrent
// use.
type Engine struct {
	registry *trigger.Registry
	sink     speech.Sink
	queue    *queue.PromptQueue

	tickInterval time.Duration
	now          func() time.Time

	snapMu      sync.RWMutex
	snapshot    models.RunStateSnapshot
	hasSnapshot bool

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	// sinkMu serializes sink calls so a SpeakImmediately cannot interleave
	// with the loop between its idle check and its Speak.
	sinkMu sync.Mutex

	speakMu     sync.Mutex
	inFlight    bool
	generation  uint64
	spokenCount int

	cbMu       sync.Mutex
	onSpoken   []func(models.QueuedPrompt)
	onEnqueued []func(models.QueuedPrompt)
}

// NewEngine builds an engine over the given trigger set and speech sink.
func NewEngine(registry *trigger.Registry, sink speech.Sink, opts ...Option) *Engine {
	cfg := Opts{
		TickInterval: DefaultTickInterval,
		QueueSize:    queue.DefaultMaxSize,
		Clock:        time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	return &Engine{
		registry:     registry,
		sink:         sink,
		queue:        queue.NewPromptQueue(cfg.QueueSize),
		tickInterval: cfg.TickInterval,
		now:          cfg.Clock,
	}
}

// Start resets trigger cooldowns, clears the spoken count, drops any
// snapshot left over from a previous session, and launches the evaluation
// loop. Starting a running engine is a no-op.
func (e *Engine) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		slog.Debug("Engine Start already running")
		return
	}

	e.registry.ResetCooldowns()
	e.speakMu.Lock()
	e.spokenCount = 0
	e.speakMu.Unlock()
	e.snapMu.Lock()
	e.snapshot = models.RunStateSnapshot{}
	e.hasSnapshot = false
	e.snapMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.running = true

	go e.loop(ctx, done)
	slog.Info("Engine Start", "tick_interval", e.tickInterval)
}

// Stop halts the evaluation loop, cancels any in-flight utterance, and
// drops every pending prompt. The spoken count survives until the next
// Start so a session summary can read it. Safe to call when not running;
// the queue and sink are still cleared.
func (e *Engine) Stop() {
	e.runMu.Lock()
	if e.running {
		e.cancel()
		<-e.done
		e.running = false
	}
	e.runMu.Unlock()

	e.sinkMu.Lock()
	e.speakMu.Lock()
	e.generation++ // orphan any in-flight completion callback
	e.inFlight = false
	e.speakMu.Unlock()
	e.sink.Cancel()
	e.sinkMu.Unlock()

	e.queue.Clear()
	slog.Info("Engine Stop", "spoken", e.SpokenCount())
}

// IsRunning reports whether the evaluation loop is active.
func (e *Engine) IsRunning() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.running
}

// UpdateSnapshot replaces the engine's view of the run. Last write wins.
func (e *Engine) UpdateSnapshot(snap models.RunStateSnapshot) {
	e.snapMu.Lock()
	e.snapshot = snap
	e.hasSnapshot = true
	e.snapMu.Unlock()
}

// CurrentSnapshot returns the latest snapshot. The second return value is
// false until the first UpdateSnapshot.
func (e *Engine) CurrentSnapshot() (models.RunStateSnapshot, bool) {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snapshot, e.hasSnapshot
}

// Enqueue validates a prompt and adds it to the queue. Invalid prompts are
// dropped with a warning; the evaluation loop must not die for a malformed
// announcement.
func (e *Engine) Enqueue(p models.QueuedPrompt) {
	if err := p.Validate(); err != nil {
		slog.Warn("Engine Enqueue dropping invalid prompt", "type", p.Type, "error", err)
		return
	}
	e.queue.Enqueue(p)
	for _, cb := range e.enqueuedCallbacks() {
		cb(p)
	}
}

// QueueLen returns the number of prompts waiting to be spoken.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// SpeakImmediately bypasses the queue and cooldowns: it cancels any current
// utterance and speaks the message now. Used for responses to the runner's
// own requests, which must not wait behind scheduled announcements. Works
// whether or not the loop is running.
func (e *Engine) SpeakImmediately(message string) {
	if message == "" {
		return
	}
	p := models.NewPrompt(models.PromptTypeCustom, message)
	p.Priority = models.PriorityCritical

	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()

	e.speakMu.Lock()
	e.generation++
	gen := e.generation
	e.inFlight = true
	e.speakMu.Unlock()

	e.sink.Cancel()
	slog.Debug("Engine SpeakImmediately", "id", p.ID)
	e.sink.Speak(p.Message, func() { e.utteranceDone(gen, p) })
}

// OnSpoken registers a callback invoked after an utterance's completion
// callback fires. Callbacks run on the completing goroutine and must not
// block.
func (e *Engine) OnSpoken(fn func(models.QueuedPrompt)) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.onSpoken = append(e.onSpoken, fn)
}

// OnEnqueued registers a callback invoked after a prompt enters the queue.
func (e *Engine) OnEnqueued(fn func(models.QueuedPrompt)) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.onEnqueued = append(e.onEnqueued, fn)
}

// SpokenCount returns the number of utterances completed since Start.
func (e *Engine) SpokenCount() int {
	e.speakMu.Lock()
	defer e.speakMu.Unlock()
	return e.spokenCount
}

// loop ticks at the configured cadence until ctx is cancelled. The
// inter-tick delay subtracts the time a tick spent working so the cadence
// does not drift.
func (e *Engine) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		started := time.Now()
		e.tick()

		delay := e.tickInterval - time.Since(started)
		if delay < 0 {
			delay = 0
		}
		timer.Reset(delay)
	}
}

// tick performs one evaluation pass. A paused run suppresses both trigger
// evaluation and dispatch so nothing is spoken mid-pause. Dispatch does not
// wait for a snapshot: manually enqueued announcements are speakable before
// the first telemetry arrives.
func (e *Engine) tick() {
	snap, ok := e.CurrentSnapshot()
	if ok && snap.Paused {
		return
	}
	if ok {
		e.evaluate(snap, e.now())
	}
	e.dispatch()
}

// evaluate runs every enabled trigger whose cooldown has elapsed against
// the snapshot and enqueues the prompts of those that fire.
func (e *Engine) evaluate(snap models.RunStateSnapshot, now time.Time) {
	for _, t := range e.registry.EnabledTriggers() {
		if last := t.LastFired(); !last.IsZero() && now.Sub(last) < t.Cooldown() {
			continue
		}
		if !t.ShouldFire(snap, now) {
			continue
		}
		p := t.GeneratePrompt(snap)
		t.MarkFired(now)
		slog.Debug("Engine evaluate trigger fired", "trigger", t.ID(), "prompt", p.ID)
		e.Enqueue(p)
	}
}

// dispatch speaks the head of the queue when no utterance is in flight.
func (e *Engine) dispatch() {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()

	e.speakMu.Lock()
	if e.inFlight || e.sink.IsSpeaking() {
		e.speakMu.Unlock()
		return
	}
	p, ok := e.queue.Dequeue()
	if !ok {
		e.speakMu.Unlock()
		return
	}
	e.inFlight = true
	e.generation++
	gen := e.generation
	e.speakMu.Unlock()

	slog.Debug("Engine dispatch speaking", "id", p.ID, "type", p.Type)
	e.sink.Speak(p.Message, func() { e.utteranceDone(gen, p) })
}

// utteranceDone is the completion callback for every Speak the engine
// issues. The generation check discards completions that were superseded by
// an interrupt or a Stop.
func (e *Engine) utteranceDone(gen uint64, p models.QueuedPrompt) {
	e.speakMu.Lock()
	if gen != e.generation {
		e.speakMu.Unlock()
		return
	}
	e.inFlight = false
	e.spokenCount++
	e.speakMu.Unlock()

	for _, cb := range e.spokenCallbacks() {
		cb(p)
	}
}

func (e *Engine) spokenCallbacks() []func(models.QueuedPrompt) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	out := make([]func(models.QueuedPrompt), len(e.onSpoken))
	copy(out, e.onSpoken)
	return out
}

func (e *Engine) enqueuedCallbacks() []func(models.QueuedPrompt) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	out := make([]func(models.QueuedPrompt), len(e.onEnqueued))
	copy(out, e.onEnqueued)
	return out
}

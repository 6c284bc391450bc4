// Package coach wires the coaching stack into a single session facade:
// telemetry flows in, trackers and triggers turn it into spoken prompts,
// and voice transcripts flow back as classified intents. The coordinator
// owns the collaborators' lifecycles so callers deal with one object.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/engine"
	"github.com/StrideLab/VoiceCoach/internal/models"
	"github.com/StrideLab/VoiceCoach/internal/recorder"
	"github.com/StrideLab/VoiceCoach/internal/settings"
	"github.com/StrideLab/VoiceCoach/internal/speech"
	"github.com/StrideLab/VoiceCoach/internal/tracking"
	"github.com/StrideLab/VoiceCoach/internal/trigger"
	"github.com/StrideLab/VoiceCoach/internal/util"
	"github.com/StrideLab/VoiceCoach/internal/voice"
)

// CommandFunc receives control intents heard over voice. The registered
// function owns the run itself: pausing, resuming, and stopping recording
// happen outside the coaching stack.
type CommandFunc func(kind models.IntentKind)

// DebriefGenerator produces the spoken post-run debrief from a session
// summary. genai.Client satisfies it; when generation fails the
// coordinator falls back to a static template.
type DebriefGenerator interface {
	GenerateDebrief(ctx context.Context, summary models.SessionSummary) (string, error)
}

// Coordinator runs one coaching session end to end. It feeds telemetry to
// the split and zone trackers, publishes composed snapshots to the trigger
// engine, routes finished prompts into conversation state, manages the
// voice-capture window after check-ins, and records session events.
type Coordinator struct {
	cfg      settings.Settings
	registry *trigger.Registry
	engine   *engine.Engine
	sink     speech.Sink
	source   speech.Source
	parser   *voice.IntentParser
	convo    *voice.ConversationContext
	splits   *tracking.SplitTracker
	zones    *tracking.ZoneTimeTracker
	store    recorder.Store
	debrief  DebriefGenerator
	command  CommandFunc
	now      func() time.Time

	engineOpts []engine.Option

	mu         sync.Mutex
	sessionID  string
	startedAt  time.Time
	muted      bool
	lastSample models.TelemetrySample
	hasSample  bool

	listenMu     sync.Mutex
	listenGen    uint64
	window       *listenWindow
	maxTimer     *time.Timer
	silenceTimer *time.Timer
	silenceGrace time.Duration
}

// Option configures optional coordinator collaborators.
type Option func(*Coordinator)

// WithSource attaches a speech-recognition source for voice input. Without
// one the coordinator never opens a capture window; HandleTranscript still
// accepts externally supplied text.
func WithSource(src speech.Source) Option {
	return func(c *Coordinator) {
		c.source = src
	}
}

// WithRecorder sets the session event store. Defaults to in-memory.
func WithRecorder(store recorder.Store) Option {
	return func(c *Coordinator) {
		if store != nil {
			c.store = store
		}
	}
}

// WithDebriefGenerator sets the post-run debrief generator.
func WithDebriefGenerator(g DebriefGenerator) Option {
	return func(c *Coordinator) {
		c.debrief = g
	}
}

// WithCommandFunc registers the sink for control intents.
func WithCommandFunc(fn CommandFunc) Option {
	return func(c *Coordinator) {
		c.command = fn
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithEngineOptions forwards options to the trigger engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(c *Coordinator) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

// NewCoordinator builds the coaching stack for the given settings: the
// built-in trigger set, the engine, both trackers, the intent parser, and
// conversation state. The sink is required; voice input, event recording,
// and the debrief generator are optional.
func NewCoordinator(cfg settings.Settings, sink speech.Sink, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:          cfg,
		sink:         sink,
		parser:       voice.NewIntentParser(),
		store:        recorder.NewInMemoryStore(),
		now:          time.Now,
		silenceGrace: defaultSilenceGrace,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.convo = voice.NewConversationContext(voice.WithClock(c.now))
	c.splits = tracking.NewSplitTracker(cfg.DistanceUnit,
		tracking.WithSplitCallback(c.onSplit),
		tracking.WithHeartRateSource(c.latestHeartRate),
	)
	c.zones = tracking.NewZoneTimeTracker(cfg.MaxHeartRate,
		tracking.WithTransitionCallback(c.onZoneTransition),
	)
	c.registry = trigger.NewRegistry(cfg)
	c.engine = engine.NewEngine(c.registry, sink, c.engineOpts...)
	c.engine.OnSpoken(c.onPromptSpoken)
	return c
}

// StartSession begins a new coaching session and returns its ID. Calling
// it while a session is active returns the active session's ID.
func (c *Coordinator) StartSession() string {
	c.mu.Lock()
	if c.sessionID != "" {
		id := c.sessionID
		c.mu.Unlock()
		return id
	}
	c.sessionID = util.GenerateSessionID()
	c.startedAt = c.now()
	c.muted = false
	c.hasSample = false
	id := c.sessionID
	c.mu.Unlock()

	c.splits.Reset()
	c.zones.Reset()
	c.convo.Reset()
	c.engine.Start()

	c.recordEvent(recorder.EventSessionStarted, "session started", nil)
	slog.Info("Coordinator StartSession", "session", id)
	return id
}

// SessionID returns the active session's ID, or "" when none is running.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Muted reports whether spoken acknowledgments are suppressed.
func (c *Coordinator) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Coordinator) setMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	c.mu.Unlock()
}

// UpdateTelemetry folds one raw sample into the trackers and publishes the
// composed snapshot to the engine. Samples arriving outside an active
// session are dropped. Zone time accrues even while paused, because heart
// rate keeps telling the truth; splits do not, because distance is frozen.
func (c *Coordinator) UpdateTelemetry(sample models.TelemetrySample) {
	c.mu.Lock()
	active := c.sessionID != ""
	if active {
		c.lastSample = sample
		c.hasSample = true
	}
	c.mu.Unlock()
	if !active {
		return
	}

	now := c.now()
	if sample.HeartRate != nil {
		c.zones.Update(*sample.HeartRate, now)
	}
	if !sample.Paused {
		c.splits.Update(sample.Distance, sample.CurrentPace, now)
	}

	c.engine.UpdateSnapshot(c.composeSnapshot(sample, now))
}

// composeSnapshot merges a raw sample with tracker-derived state into the
// snapshot the triggers evaluate.
func (c *Coordinator) composeSnapshot(sample models.TelemetrySample, now time.Time) models.RunStateSnapshot {
	snap := models.RunStateSnapshot{
		Elapsed:         sample.Elapsed,
		Paused:          sample.Paused,
		Distance:        sample.Distance,
		CurrentPace:     sample.CurrentPace,
		AveragePace:     sample.AveragePace,
		Speed:           sample.Speed,
		HeartRate:       sample.HeartRate,
		CompletedSplits: c.splits.CompletedCount(),
		Unit:            c.cfg.DistanceUnit,
	}
	if target := c.cfg.TargetPace.Std(); target > 0 {
		snap.TargetPace = &target
	}
	if last, ok := c.splits.LastSplit(); ok {
		snap.LastSplitPace = last.Pace
	}
	if zone, ok := c.zones.CurrentZone(); ok {
		z := zone
		snap.CurrentZone = &z
		t := c.zones.TimeInCurrentZone(now)
		snap.TimeInZone = &t
	}
	if zone, ok := c.zones.PreviousZone(); ok {
		z := zone
		snap.PreviousZone = &z
	}
	return snap
}

// latestHeartRate feeds the split tracker the most recent heart-rate
// reading, or nil when none has arrived.
func (c *Coordinator) latestHeartRate() *int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasSample || c.lastSample.HeartRate == nil {
		return nil
	}
	hr := *c.lastSample.HeartRate
	return &hr
}

// onPromptSpoken runs after the engine finishes speaking a prompt. It feeds
// conversation state, records the event, and opens the capture window after
// a response-expecting prompt. It must not speak through the engine.
func (c *Coordinator) onPromptSpoken(p models.QueuedPrompt) {
	c.convo.AddPrompt(p)
	c.recordEvent(recorder.EventPromptSpoken, p.Message, map[string]string{
		"prompt_type": string(p.Type),
		"priority":    p.Priority.String(),
	})
	if p.ExpectsResponse && c.cfg.EnableVoiceInput && c.cfg.AutoListenAfterCheckIn {
		c.beginListening()
	}
}

// onSplit records each completed split as it happens.
func (c *Coordinator) onSplit(split models.Split) {
	detail := fmt.Sprintf("split %d at %s", split.Number, models.SpokenPace(split.Pace, c.cfg.DistanceUnit))
	c.recordEvent(recorder.EventSplitCompleted, detail, map[string]string{
		"number": strconv.Itoa(split.Number),
		"pace":   split.Pace.String(),
	})
}

// onZoneTransition records each heart-rate zone change as it happens.
func (c *Coordinator) onZoneTransition(tr models.ZoneTransition) {
	c.recordEvent(recorder.EventZoneTransition, fmt.Sprintf("%s to %s", tr.From, tr.To), map[string]string{
		"direction": string(tr.Direction),
	})
}

// HandleTranscript classifies a voice transcript and routes the resulting
// intent. It serves both the capture window and externally supplied text,
// such as typed input.
func (c *Coordinator) HandleTranscript(text string) models.VoiceIntent {
	if strings.TrimSpace(text) == "" {
		return models.VoiceIntent{Kind: models.IntentUnknown}
	}
	intent := c.parser.ParseWithContext(text, c.convo)
	c.convo.AddResponse(intent)
	c.recordEvent(recorder.EventIntentHeard, intent.Transcript, map[string]string{
		"intent": string(intent.Kind),
	})
	slog.Debug("Coordinator HandleTranscript classified", "intent", intent.Kind)
	c.routeIntent(intent)
	return intent
}

func (c *Coordinator) routeIntent(intent models.VoiceIntent) {
	kind := intent.Kind
	switch {
	case kind.IsCommand():
		c.applyCommand(kind)
	case kind.IsStatRequest():
		c.answerStat(kind)
	case kind.IsFeeling():
		c.speakAck(feelingAck(kind))
	case kind == models.IntentYes || kind == models.IntentNo:
		c.speakAck("Got it.")
	}
	// Unknown intents get no spoken response.
}

// applyCommand forwards every control intent to the command sink and
// applies the mute state locally. The run itself belongs to the command
// sink; stop gets no ack because the debrief follows it.
func (c *Coordinator) applyCommand(kind models.IntentKind) {
	switch kind {
	case models.IntentCommandMute:
		c.setMuted(true)
	case models.IntentCommandUnmute:
		c.setMuted(false)
	}

	c.recordEvent(recorder.EventCommand, string(kind), nil)
	if fn := c.command; fn != nil {
		fn(kind)
	}
	slog.Info("Coordinator applyCommand", "command", kind)

	switch kind {
	case models.IntentCommandPause:
		c.speakAck("Pausing your run.")
	case models.IntentCommandResume:
		c.speakAck("Resuming. Let's go.")
	case models.IntentCommandUnmute:
		c.speakAck("Coaching is back on.")
	}
}

// answerStat replies to a stat request from the latest snapshot. Before
// the first telemetry sample there is nothing to report.
func (c *Coordinator) answerStat(kind models.IntentKind) {
	snap, ok := c.engine.CurrentSnapshot()
	if !ok {
		c.speakAck("I don't have run data yet.")
		return
	}
	c.speakAck(statAnswer(kind, snap))
}

// speakAck speaks a short conversational reply unless the coach is muted.
func (c *Coordinator) speakAck(msg string) {
	if c.Muted() {
		slog.Debug("Coordinator speakAck suppressed while muted")
		return
	}
	c.engine.SpeakImmediately(msg)
}

// statAnswer renders one spoken reply per stat request kind.
func statAnswer(kind models.IntentKind, snap models.RunStateSnapshot) string {
	switch kind {
	case models.IntentStatHeartRate:
		if snap.HeartRate == nil {
			return "No heart rate reading right now."
		}
		answer := fmt.Sprintf("Heart rate %d beats per minute", *snap.HeartRate)
		if snap.CurrentZone != nil {
			answer += ", " + snap.CurrentZone.String()
		}
		return answer + "."
	case models.IntentStatPace:
		if snap.CurrentPace <= 0 {
			return "No pace reading yet."
		}
		return "Current pace " + models.SpokenPace(snap.CurrentPace, snap.Unit) + "."
	case models.IntentStatDistance:
		return "You have covered " + models.SpokenDistance(snap.Distance, snap.Unit) + "."
	case models.IntentStatTime:
		return "Elapsed time " + models.SpokenDuration(snap.Elapsed) + "."
	case models.IntentStatSummary:
		return summaryAnswer(snap)
	}
	return ""
}

// summaryAnswer is the spoken response to "how am I doing".
func summaryAnswer(snap models.RunStateSnapshot) string {
	parts := []string{
		models.SpokenDistance(snap.Distance, snap.Unit) + " in " + models.SpokenDuration(snap.Elapsed),
	}
	if snap.AveragePace > 0 {
		parts = append(parts, "average pace "+models.SpokenPace(snap.AveragePace, snap.Unit))
	}
	if snap.HeartRate != nil {
		parts = append(parts, fmt.Sprintf("heart rate %d", *snap.HeartRate))
	}
	return strings.Join(parts, ", ") + "."
}

// feelingAck maps how the runner feels to a short spoken response.
func feelingAck(kind models.IntentKind) string {
	switch kind {
	case models.IntentFeelingGreat:
		return "Love to hear it. Keep riding that feeling."
	case models.IntentFeelingGood:
		return "Good. Stay smooth and keep it up."
	case models.IntentFeelingOkay:
		return "Okay. Settle in and find your rhythm."
	case models.IntentFeelingTired:
		return "Hang in there. Ease off a touch and focus on your form."
	case models.IntentFeelingBad:
		return "Listen to your body. Slow down, and walk if you need to."
	}
	return "Got it."
}

// Announce enqueues a custom announcement through the normal prompt flow.
func (c *Coordinator) Announce(message string) {
	c.engine.Enqueue(models.NewPrompt(models.PromptTypeCustom, message))
}

// AnnounceLandmark enqueues a course landmark announcement.
func (c *Coordinator) AnnounceLandmark(name string) {
	c.engine.Enqueue(models.NewPrompt(models.PromptTypeLandmark, "You are passing "+name+"."))
}

// AnnounceHydration enqueues a hydration reminder.
func (c *Coordinator) AnnounceHydration() {
	c.engine.Enqueue(models.NewPrompt(models.PromptTypeHydration, "Time to take a drink."))
}

// recordEvent logs a session event, dropping it with a warning when the
// store fails. Recording never blocks coaching.
func (c *Coordinator) recordEvent(et recorder.EventType, detail string, metadata map[string]string) {
	c.mu.Lock()
	id := c.sessionID
	c.mu.Unlock()
	if c.store == nil || id == "" {
		return
	}
	ev := recorder.NewEvent(id, et, detail)
	ev.Metadata = metadata
	if err := c.store.LogEvent(ev); err != nil {
		slog.Warn("Coordinator recordEvent failed", "type", et, "error", err)
	}
}

// Reset abandons the current session without a debrief: the engine stops,
// trackers and conversation state clear, and any capture window closes.
func (c *Coordinator) Reset() {
	c.CancelListening()
	c.engine.Stop()
	c.splits.Reset()
	c.zones.Reset()
	c.convo.Reset()

	c.mu.Lock()
	c.sessionID = ""
	c.startedAt = time.Time{}
	c.muted = false
	c.hasSample = false
	c.mu.Unlock()
	slog.Info("Coordinator Reset session state cleared")
}

package coach

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/engine"
	"github.com/StrideLab/VoiceCoach/internal/models"
	"github.com/StrideLab/VoiceCoach/internal/recorder"
	"github.com/StrideLab/VoiceCoach/internal/settings"
	"github.com/StrideLab/VoiceCoach/internal/speech"
)

// quietEngine keeps the trigger loop out of direct-drive tests: the first
// tick runs immediately, the next not for an hour.
func quietEngine() Option {
	return WithEngineOptions(engine.WithTickInterval(time.Hour))
}

func testSettings() settings.Settings {
	cfg := settings.Default()
	cfg.VoiceInputTimeout = settings.Duration(200 * time.Millisecond)
	return cfg
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// commandRecorder captures forwarded control intents; the capture window
// routes them from its own goroutine.
type commandRecorder struct {
	mu    sync.Mutex
	kinds []models.IntentKind
}

func (r *commandRecorder) record(kind models.IntentKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *commandRecorder) list() []models.IntentKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.IntentKind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

type stubDebrief struct {
	text string
	err  error

	mu  sync.Mutex
	got models.SessionSummary
}

func (s *stubDebrief) GenerateDebrief(_ context.Context, summary models.SessionSummary) (string, error) {
	s.mu.Lock()
	s.got = summary
	s.mu.Unlock()
	return s.text, s.err
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func heartRate(v int) *int {
	return &v
}

func sampleAt(elapsed time.Duration, meters float64) models.TelemetrySample {
	return models.TelemetrySample{
		Elapsed:     elapsed,
		Distance:    meters,
		CurrentPace: 9 * time.Minute,
		AveragePace: 9 * time.Minute,
		Speed:       3.0,
	}
}

func sessionEvents(t *testing.T, store recorder.Store, sessionID string) []recorder.SessionEvent {
	t.Helper()
	events, err := store.EventsForSession(sessionID)
	if err != nil {
		t.Fatalf("EventsForSession() error = %v", err)
	}
	return events
}

func countEvents(events []recorder.SessionEvent, et recorder.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == et {
			n++
		}
	}
	return n
}

func lastSpoken(sink *speech.ScriptedSink) string {
	spoken := sink.Spoken()
	if len(spoken) == 0 {
		return ""
	}
	return spoken[len(spoken)-1]
}

func TestCoordinatorSessionLifecycle(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	store := recorder.NewInMemoryStore()
	c := NewCoordinator(testSettings(), sink, quietEngine(), WithRecorder(store))

	id := c.StartSession()
	if id == "" {
		t.Fatal("StartSession returned an empty session ID")
	}
	if got := c.SessionID(); got != id {
		t.Errorf("SessionID() = %q; want %q", got, id)
	}
	if again := c.StartSession(); again != id {
		t.Errorf("second StartSession returned %q; want the active session %q", again, id)
	}
	if !c.engine.IsRunning() {
		t.Fatal("engine not running after StartSession")
	}

	c.UpdateTelemetry(sampleAt(10*time.Minute, 2000))

	summary := c.FinishSession(context.Background())
	if summary.SessionID != id {
		t.Errorf("summary.SessionID = %q; want %q", summary.SessionID, id)
	}
	if summary.Distance != 2000 {
		t.Errorf("summary.Distance = %v; want 2000", summary.Distance)
	}
	if c.SessionID() != "" {
		t.Error("session still active after FinishSession")
	}
	if c.engine.IsRunning() {
		t.Error("engine still running after FinishSession")
	}

	events := sessionEvents(t, store, id)
	if countEvents(events, recorder.EventSessionStarted) != 1 {
		t.Error("missing session_started event")
	}
	if countEvents(events, recorder.EventSessionFinished) != 1 {
		t.Error("missing session_finished event")
	}

	if again := c.FinishSession(context.Background()); again.SessionID != "" {
		t.Errorf("FinishSession with no session returned ID %q; want empty", again.SessionID)
	}
}

func TestCoordinatorTelemetryComposesSnapshot(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC))
	cfg := testSettings()
	cfg.TargetPace = settings.Duration(9 * time.Minute)
	c := NewCoordinator(cfg, speech.NewScriptedSink(true), quietEngine(), WithClock(clock.Now))
	c.StartSession()
	defer c.Reset()

	sample := sampleAt(5*time.Minute, 1000)
	sample.HeartRate = heartRate(150)
	c.UpdateTelemetry(sample)

	snap, ok := c.engine.CurrentSnapshot()
	if !ok {
		t.Fatal("no snapshot published after UpdateTelemetry")
	}
	if snap.Distance != 1000 {
		t.Errorf("snap.Distance = %v; want 1000", snap.Distance)
	}
	if snap.Unit != models.UnitMiles {
		t.Errorf("snap.Unit = %q; want miles", snap.Unit)
	}
	if snap.TargetPace == nil || *snap.TargetPace != 9*time.Minute {
		t.Errorf("snap.TargetPace = %v; want 9m", snap.TargetPace)
	}
	if snap.HeartRate == nil || *snap.HeartRate != 150 {
		t.Errorf("snap.HeartRate = %v; want 150", snap.HeartRate)
	}
	if snap.CurrentZone == nil || *snap.CurrentZone != models.Zone4 {
		t.Errorf("snap.CurrentZone = %v; want zone 4", snap.CurrentZone)
	}
	if snap.TimeInZone == nil {
		t.Error("snap.TimeInZone = nil; want a duration")
	}
	if snap.CompletedSplits != 0 {
		t.Errorf("snap.CompletedSplits = %d; want 0", snap.CompletedSplits)
	}
}

func TestCoordinatorIgnoresTelemetryWhenIdle(t *testing.T) {
	c := NewCoordinator(testSettings(), speech.NewScriptedSink(true), quietEngine())

	c.UpdateTelemetry(sampleAt(time.Minute, 500))

	if _, ok := c.engine.CurrentSnapshot(); ok {
		t.Error("snapshot published without an active session")
	}
	if c.splits.CompletedCount() != 0 {
		t.Error("split tracker advanced without an active session")
	}
}

func TestCoordinatorSplitFlowsIntoSnapshotAndStore(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC))
	store := recorder.NewInMemoryStore()
	c := NewCoordinator(testSettings(), speech.NewScriptedSink(true),
		quietEngine(), WithRecorder(store), WithClock(clock.Now))
	id := c.StartSession()
	defer c.Reset()

	c.UpdateTelemetry(sampleAt(0, 0))
	clock.Advance(9 * time.Minute)
	c.UpdateTelemetry(sampleAt(9*time.Minute, 1610))

	snap, ok := c.engine.CurrentSnapshot()
	if !ok {
		t.Fatal("no snapshot published")
	}
	if snap.CompletedSplits != 1 {
		t.Fatalf("snap.CompletedSplits = %d; want 1", snap.CompletedSplits)
	}
	if snap.LastSplitPace <= 0 {
		t.Errorf("snap.LastSplitPace = %v; want > 0", snap.LastSplitPace)
	}

	events := sessionEvents(t, store, id)
	if countEvents(events, recorder.EventSplitCompleted) != 1 {
		t.Error("missing split_completed event")
	}
}

func TestCoordinatorStatAnswers(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	c := NewCoordinator(testSettings(), sink, quietEngine())
	c.StartSession()
	defer c.Reset()

	sample := sampleAt(30*time.Minute, 4827)
	sample.HeartRate = heartRate(150)
	c.UpdateTelemetry(sample)

	cases := []struct {
		transcript string
		wantKind   models.IntentKind
		wantSpoken string
	}{
		{"what's my pace", models.IntentStatPace, "per mile"},
		{"how far have I gone", models.IntentStatDistance, "miles"},
		{"heart rate", models.IntentStatHeartRate, "150"},
		{"how long have I been running", models.IntentStatTime, "30 minutes"},
		{"how am I doing", models.IntentStatSummary, "average pace"},
	}
	for _, tc := range cases {
		intent := c.HandleTranscript(tc.transcript)
		if intent.Kind != tc.wantKind {
			t.Errorf("HandleTranscript(%q).Kind = %q; want %q", tc.transcript, intent.Kind, tc.wantKind)
			continue
		}
		if got := lastSpoken(sink); !strings.Contains(got, tc.wantSpoken) {
			t.Errorf("answer to %q = %q; want it to contain %q", tc.transcript, got, tc.wantSpoken)
		}
	}
}

func TestCoordinatorStatAnswerBeforeTelemetry(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	c := NewCoordinator(testSettings(), sink, quietEngine())
	c.StartSession()
	defer c.Reset()

	c.HandleTranscript("what's my pace")
	if got := lastSpoken(sink); !strings.Contains(got, "don't have run data") {
		t.Errorf("answer before telemetry = %q; want the no-data reply", got)
	}
}

func TestCoordinatorMuteGatesAcks(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	rec := &commandRecorder{}
	c := NewCoordinator(testSettings(), sink, quietEngine(), WithCommandFunc(rec.record))
	c.StartSession()
	defer c.Reset()
	c.UpdateTelemetry(sampleAt(10*time.Minute, 2000))

	c.HandleTranscript("mute")
	if !c.Muted() {
		t.Fatal("not muted after the mute command")
	}

	before := sink.SpokenCount()
	c.HandleTranscript("how far have I gone")
	c.HandleTranscript("feeling good")
	if got := sink.SpokenCount(); got != before {
		t.Errorf("spoke %d replies while muted; want 0", got-before)
	}

	c.HandleTranscript("unmute")
	if c.Muted() {
		t.Fatal("still muted after the unmute command")
	}
	if got := lastSpoken(sink); !strings.Contains(got, "back on") {
		t.Errorf("unmute ack = %q; want it to confirm coaching is back on", got)
	}

	kinds := rec.list()
	if len(kinds) != 2 || kinds[0] != models.IntentCommandMute || kinds[1] != models.IntentCommandUnmute {
		t.Errorf("forwarded commands = %v; want [mute unmute]", kinds)
	}
}

func TestCoordinatorCommandsForwarded(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	rec := &commandRecorder{}
	store := recorder.NewInMemoryStore()
	c := NewCoordinator(testSettings(), sink, quietEngine(),
		WithCommandFunc(rec.record), WithRecorder(store))
	id := c.StartSession()
	defer c.Reset()

	c.HandleTranscript("pause")
	c.HandleTranscript("resume")
	c.HandleTranscript("stop")

	want := []models.IntentKind{
		models.IntentCommandPause,
		models.IntentCommandResume,
		models.IntentCommandStop,
	}
	kinds := rec.list()
	if len(kinds) != len(want) {
		t.Fatalf("forwarded %d commands; want %d", len(kinds), len(want))
	}
	for i, kind := range want {
		if kinds[i] != kind {
			t.Errorf("command[%d] = %q; want %q", i, kinds[i], kind)
		}
	}

	events := sessionEvents(t, store, id)
	if got := countEvents(events, recorder.EventCommand); got != 3 {
		t.Errorf("recorded %d command events; want 3", got)
	}

	// Pause and resume get a spoken ack; stop stays quiet for the debrief.
	if got := sink.SpokenCount(); got != 2 {
		t.Errorf("SpokenCount() = %d; want 2", got)
	}
}

func TestCoordinatorAnnouncements(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	c := NewCoordinator(testSettings(), sink,
		WithEngineOptions(engine.WithTickInterval(5*time.Millisecond)))
	c.StartSession()
	defer c.Reset()

	c.Announce("Halfway there.")
	c.AnnounceLandmark("the old stone bridge")
	c.AnnounceHydration()

	waitFor(t, 2*time.Second, func() bool { return sink.SpokenCount() >= 3 },
		"announcements were not all spoken")

	all := strings.Join(sink.Spoken(), " | ")
	for _, want := range []string{"Halfway there.", "the old stone bridge", "drink"} {
		if !strings.Contains(all, want) {
			t.Errorf("spoken %q; missing %q", all, want)
		}
	}
}

func TestCoordinatorCheckInConversation(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	source := speech.NewScriptedSource(speech.Transcript{Text: "pretty tired", Final: true})
	store := recorder.NewInMemoryStore()
	c := NewCoordinator(testSettings(), sink, WithSource(source), WithRecorder(store),
		WithEngineOptions(engine.WithTickInterval(5*time.Millisecond)))
	id := c.StartSession()
	defer c.Reset()

	prompt := models.NewPrompt(models.PromptTypeCheckIn, "How are you feeling?")
	prompt.ExpectsResponse = true
	c.engine.Enqueue(prompt)

	waitFor(t, 2*time.Second, func() bool { return source.Starts() >= 1 },
		"capture window never opened after the check-in")
	waitFor(t, 2*time.Second, func() bool {
		return strings.Contains(lastSpoken(sink), "Hang in there")
	}, "tired acknowledgment never spoken")
	waitFor(t, 2*time.Second, func() bool { return !c.IsListening() },
		"capture window never closed")

	events := sessionEvents(t, store, id)
	if countEvents(events, recorder.EventPromptSpoken) < 1 {
		t.Error("missing prompt_spoken event")
	}
	if countEvents(events, recorder.EventIntentHeard) != 1 {
		t.Error("missing intent_heard event")
	}
}

func TestCoordinatorFinishSessionSpeaksGeneratedDebrief(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	gen := &stubDebrief{text: "Strong run today. Well done."}
	c := NewCoordinator(testSettings(), sink, quietEngine(), WithDebriefGenerator(gen))
	id := c.StartSession()
	c.UpdateTelemetry(sampleAt(28*time.Minute, 4827))

	summary := c.FinishSession(context.Background())

	if got := lastSpoken(sink); got != "Strong run today. Well done." {
		t.Errorf("debrief spoken = %q; want the generated text", got)
	}
	gen.mu.Lock()
	got := gen.got
	gen.mu.Unlock()
	if got.SessionID != id {
		t.Errorf("generator saw session %q; want %q", got.SessionID, id)
	}
	if summary.Distance != 4827 {
		t.Errorf("summary.Distance = %v; want 4827", summary.Distance)
	}
}

func TestCoordinatorFinishSessionFallsBackOnGeneratorError(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	gen := &stubDebrief{err: errors.New("api down")}
	c := NewCoordinator(testSettings(), sink, quietEngine(), WithDebriefGenerator(gen))
	c.StartSession()
	c.UpdateTelemetry(sampleAt(28*time.Minute, 4827))

	c.FinishSession(context.Background())

	got := lastSpoken(sink)
	if !strings.HasPrefix(got, "Run complete.") {
		t.Fatalf("debrief spoken = %q; want the static fallback", got)
	}
	if !strings.Contains(got, "3.0 miles") {
		t.Errorf("fallback debrief = %q; want it to include the distance", got)
	}
}

func TestCoordinatorFinishSessionMutedSkipsDebrief(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	c := NewCoordinator(testSettings(), sink, quietEngine())
	c.StartSession()
	c.UpdateTelemetry(sampleAt(10*time.Minute, 2000))
	c.HandleTranscript("mute")

	before := sink.SpokenCount()
	summary := c.FinishSession(context.Background())

	if got := sink.SpokenCount(); got != before {
		t.Error("debrief spoken while muted")
	}
	if summary.Distance != 2000 {
		t.Errorf("summary.Distance = %v; want 2000 even when muted", summary.Distance)
	}
}

func TestCoordinatorResetClearsState(t *testing.T) {
	sink := speech.NewScriptedSink(true)
	c := NewCoordinator(testSettings(), sink, quietEngine())
	c.StartSession()
	c.UpdateTelemetry(sampleAt(9*time.Minute, 1610))
	c.HandleTranscript("mute")

	c.Reset()

	if c.SessionID() != "" {
		t.Error("session still active after Reset")
	}
	if c.engine.IsRunning() {
		t.Error("engine still running after Reset")
	}
	if c.Muted() {
		t.Error("mute survived Reset")
	}
	if c.splits.CompletedCount() != 0 {
		t.Error("split tracker survived Reset")
	}
	if len(c.convo.History()) != 0 {
		t.Error("conversation history survived Reset")
	}
}

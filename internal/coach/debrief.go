package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
	"github.com/StrideLab/VoiceCoach/internal/recorder"
)

// FinishSession ends the active session: the engine stops, the spoken
// debrief plays directly on the sink, the finish event is recorded, and
// the session summary is returned. Calling it with no active session
// returns a zero summary. The context bounds debrief generation and
// playback; cancellation cuts the speech off.
func (c *Coordinator) FinishSession(ctx context.Context) models.SessionSummary {
	c.mu.Lock()
	id := c.sessionID
	c.mu.Unlock()
	if id == "" {
		return models.SessionSummary{}
	}

	c.CancelListening()
	summary := c.buildSummary()
	c.engine.Stop()

	if c.Muted() {
		slog.Debug("Coordinator FinishSession debrief suppressed while muted")
	} else if text := c.debriefText(ctx, summary); text != "" {
		c.speakDebrief(ctx, text)
	}

	c.recordEvent(recorder.EventSessionFinished, "session finished", map[string]string{
		"distance_meters": fmt.Sprintf("%.0f", summary.Distance),
		"prompts_spoken":  strconv.Itoa(summary.PromptsSpoken),
	})

	c.mu.Lock()
	c.sessionID = ""
	c.startedAt = time.Time{}
	c.mu.Unlock()

	slog.Info("Coordinator FinishSession", "session", id,
		"distance_meters", summary.Distance, "prompts_spoken", summary.PromptsSpoken)
	return summary
}

// speakDebrief plays the debrief on the sink and waits for it to finish.
// The engine is already stopped, so nothing else competes for the sink.
func (c *Coordinator) speakDebrief(ctx context.Context, text string) {
	done := make(chan struct{})
	c.sink.Speak(text, func() {
		close(done)
	})
	select {
	case <-done:
	case <-ctx.Done():
		c.sink.Cancel()
	}
}

// buildSummary snapshots the trackers and counters into a session summary.
func (c *Coordinator) buildSummary() models.SessionSummary {
	c.mu.Lock()
	id := c.sessionID
	started := c.startedAt
	sample := c.lastSample
	hasSample := c.hasSample
	c.mu.Unlock()

	summary := models.SessionSummary{
		SessionID:        id,
		StartedAt:        started,
		Unit:             c.cfg.DistanceUnit,
		Splits:           c.splits.Splits(),
		ZoneDistribution: c.zones.ZoneDistribution(),
		PromptsSpoken:    c.engine.SpokenCount(),
	}
	if hasSample {
		summary.Duration = sample.Elapsed
		summary.Distance = sample.Distance
		summary.AveragePace = sample.AveragePace
	}
	return summary
}

// debriefText asks the configured generator for the debrief and falls back
// to the static template when none is configured or generation fails.
func (c *Coordinator) debriefText(ctx context.Context, summary models.SessionSummary) string {
	if c.debrief != nil {
		text, err := c.debrief.GenerateDebrief(ctx, summary)
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			slog.Warn("Coordinator debriefText generation failed, using fallback", "error", err)
		}
	}
	return staticDebrief(summary)
}

// staticDebrief renders the debrief without a generator.
func staticDebrief(summary models.SessionSummary) string {
	if summary.Distance <= 0 {
		return "Run complete. Great work getting out there."
	}
	text := "Run complete. " + models.SpokenDistance(summary.Distance, summary.Unit) +
		" in " + models.SpokenDuration(summary.Duration) + "."
	if summary.AveragePace > 0 {
		text += " Average pace " + models.SpokenPace(summary.AveragePace, summary.Unit) + "."
	}
	switch n := len(summary.Splits); {
	case n == 1:
		text += " One split completed."
	case n > 1:
		text += fmt.Sprintf(" %d splits completed.", n)
	}
	text += " Great work out there."
	return text
}

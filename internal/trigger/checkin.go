package trigger

import (
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// CheckInTrigger periodically asks the runner how they feel. Its cooldown
// equals the configured interval, so after the first firing the question
// repeats at most once per interval.
type CheckInTrigger struct {
	baseTrigger
	interval time.Duration
}

var _ Trigger = (*CheckInTrigger)(nil)

// NewCheckInTrigger creates a check-in prompt on the given interval.
func NewCheckInTrigger(interval time.Duration) *CheckInTrigger {
	return &CheckInTrigger{
		baseTrigger: newBaseTrigger(IDCheckIn, interval),
		interval:    interval,
	}
}

// ShouldFire reports whether enough of the run has elapsed for a check-in.
func (t *CheckInTrigger) ShouldFire(snap models.RunStateSnapshot, now time.Time) bool {
	return snap.Elapsed >= t.interval
}

// GeneratePrompt asks the question and flags that a response is expected.
func (t *CheckInTrigger) GeneratePrompt(snap models.RunStateSnapshot) models.QueuedPrompt {
	p := models.NewPrompt(models.PromptTypeCheckIn, "Quick check-in. How are you feeling?")
	p.ExpectsResponse = true
	return p
}

// Reset clears firing state. The trigger keeps no observation memory.
func (t *CheckInTrigger) Reset() {
	t.resetFiring()
}

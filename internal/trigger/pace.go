package trigger

import (
	"fmt"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// PaceDriftTrigger alerts when instantaneous pace deviates from the
// reference pace by more than a fractional threshold. The reference is the
// snapshot's target pace when one is set, otherwise the running average.
type PaceDriftTrigger struct {
	baseTrigger
	threshold float64
}

var _ Trigger = (*PaceDriftTrigger)(nil)

// NewPaceDriftTrigger creates a drift alert with the given fractional
// threshold, e.g. 0.10 for ten percent.
func NewPaceDriftTrigger(threshold float64) *PaceDriftTrigger {
	return &PaceDriftTrigger{
		baseTrigger: newBaseTrigger(IDPaceDrift, DefaultPaceDriftCooldown),
		threshold:   threshold,
	}
}

// referencePace picks the comparison pace and its spoken name. A zero
// return means no reference is available yet.
func referencePace(snap models.RunStateSnapshot) (time.Duration, string) {
	if snap.TargetPace != nil && *snap.TargetPace > 0 {
		return *snap.TargetPace, "target pace"
	}
	return snap.AveragePace, "average pace"
}

// ShouldFire reports whether pace has drifted past the threshold. Unknown
// current or reference pace means the condition is not met.
func (t *PaceDriftTrigger) ShouldFire(snap models.RunStateSnapshot, now time.Time) bool {
	if snap.CurrentPace <= 0 {
		return false
	}
	ref, _ := referencePace(snap)
	if ref <= 0 {
		return false
	}

	drift := snap.CurrentPace - ref
	if drift < 0 {
		drift = -drift
	}
	return float64(drift)/float64(ref) > t.threshold
}

// GeneratePrompt states the drift direction and magnitude.
func (t *PaceDriftTrigger) GeneratePrompt(snap models.RunStateSnapshot) models.QueuedPrompt {
	ref, refName := referencePace(snap)
	diff := snap.CurrentPace - ref

	var msg string
	if diff > 0 {
		msg = fmt.Sprintf("You're %s slower than your %s. Pick it up a little.",
			models.SpokenPace(diff, snap.Unit), refName)
	} else {
		msg = fmt.Sprintf("You're %s faster than your %s. Ease off if this doesn't feel sustainable.",
			models.SpokenPace(-diff, snap.Unit), refName)
	}

	return models.NewPrompt(models.PromptTypePaceDrift, msg)
}

// Reset clears firing state. The trigger keeps no observation memory.
func (t *PaceDriftTrigger) Reset() {
	t.resetFiring()
}

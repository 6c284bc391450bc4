package trigger

import (
	"fmt"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
	"github.com/StrideLab/VoiceCoach/internal/settings"
)

// SplitTrigger announces completed splits. It fires whenever the snapshot's
// completed-split count moves past the last count it observed.
type SplitTrigger struct {
	baseTrigger
	detail settings.SplitDetail

	// Observation memory, confined to the evaluation loop.
	lastCount     int
	prevSplitPace time.Duration
	paceDelta     *time.Duration
}

var _ Trigger = (*SplitTrigger)(nil)

// NewSplitTrigger creates a split announcer with the given verbosity.
func NewSplitTrigger(detail settings.SplitDetail) *SplitTrigger {
	return &SplitTrigger{
		baseTrigger: newBaseTrigger(IDSplit, DefaultSplitCooldown),
		detail:      detail,
	}
}

// ShouldFire reports whether a new split has completed since the last
// observation, and records the pace delta against the previously observed
// split for the detailed announcement.
func (t *SplitTrigger) ShouldFire(snap models.RunStateSnapshot, now time.Time) bool {
	if snap.CompletedSplits <= t.lastCount {
		return false
	}

	t.paceDelta = nil
	if t.lastCount > 0 && t.prevSplitPace > 0 && snap.LastSplitPace > 0 {
		delta := snap.LastSplitPace - t.prevSplitPace
		t.paceDelta = &delta
	}
	t.lastCount = snap.CompletedSplits
	t.prevSplitPace = snap.LastSplitPace
	return true
}

// GeneratePrompt builds the split announcement at the configured verbosity.
func (t *SplitTrigger) GeneratePrompt(snap models.RunStateSnapshot) models.QueuedPrompt {
	msg := fmt.Sprintf("%s %d complete.", capitalize(snap.Unit.Singular()), snap.CompletedSplits)

	pace := snap.LastSplitPace
	if pace == 0 {
		pace = snap.CurrentPace
	}
	if pace > 0 {
		msg += " Pace " + models.SpokenPace(pace, snap.Unit) + "."
	}

	if t.detail == settings.SplitDetailDetailed {
		if d := t.paceDelta; d != nil && (*d >= time.Second || *d <= -time.Second) {
			word := "slower"
			if *d < 0 {
				word = "faster"
			}
			msg += fmt.Sprintf(" That's %s %s than your last %s.", models.SpokenDuration(*d), word, snap.Unit.Singular())
		}
		if snap.HeartRate != nil {
			msg += fmt.Sprintf(" Heart rate %d.", *snap.HeartRate)
		}
	}

	return models.NewPrompt(models.PromptTypeSplit, msg)
}

// Reset clears firing state and observation memory.
func (t *SplitTrigger) Reset() {
	t.resetFiring()
	t.lastCount = 0
	t.prevSplitPace = 0
	t.paceDelta = nil
}

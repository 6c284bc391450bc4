package trigger

import (
	"fmt"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// ZoneTransitionTrigger announces entry into configured alert zones. Entry
// is edge-detected against the zone seen on the previous evaluation, so
// re-entering an alert zone after leaving it announces again (subject to
// cooldown), while staying put does not.
type ZoneTransitionTrigger struct {
	baseTrigger
	alertZones map[models.HRZone]bool

	// Observation memory, confined to the evaluation loop.
	lastSeen models.HRZone
}

var _ Trigger = (*ZoneTransitionTrigger)(nil)

// NewZoneTransitionTrigger creates a transition announcer for the given
// alert zone set.
func NewZoneTransitionTrigger(alertZones map[models.HRZone]bool) *ZoneTransitionTrigger {
	return &ZoneTransitionTrigger{
		baseTrigger: newBaseTrigger(IDZoneTransition, DefaultZoneTransitionCooldown),
		alertZones:  alertZones,
	}
}

// ShouldFire reports whether the snapshot shows entry into an alert zone.
// Without a classified zone the condition is not met.
func (t *ZoneTransitionTrigger) ShouldFire(snap models.RunStateSnapshot, now time.Time) bool {
	if snap.CurrentZone == nil {
		return false
	}
	zone := *snap.CurrentZone
	entered := zone != t.lastSeen && t.alertZones[zone]
	t.lastSeen = zone
	return entered
}

// GeneratePrompt names the newly entered zone.
func (t *ZoneTransitionTrigger) GeneratePrompt(snap models.RunStateSnapshot) models.QueuedPrompt {
	zone := models.ZoneNone
	if snap.CurrentZone != nil {
		zone = *snap.CurrentZone
	}
	msg := fmt.Sprintf("You've just entered %s.", zone)
	if zone == models.Zone5 {
		msg += " This is your maximum effort range."
	}
	return models.NewPrompt(models.PromptTypeZoneTransition, msg)
}

// Reset clears firing state and the last-seen zone.
func (t *ZoneTransitionTrigger) Reset() {
	t.resetFiring()
	t.lastSeen = models.ZoneNone
}

// ZoneDurationTrigger warns when the runner has held a high zone past its
// configured threshold. The cooldown spaces out repeat warnings while the
// runner stays in the zone.
type ZoneDurationTrigger struct {
	baseTrigger
	warnAfter map[models.HRZone]time.Duration
}

var _ Trigger = (*ZoneDurationTrigger)(nil)

// NewZoneDurationTrigger creates a sustained-intensity warning for the
// zones present in warnAfter.
func NewZoneDurationTrigger(warnAfter map[models.HRZone]time.Duration) *ZoneDurationTrigger {
	return &ZoneDurationTrigger{
		baseTrigger: newBaseTrigger(IDZoneDuration, DefaultZoneDurationCooldown),
		warnAfter:   warnAfter,
	}
}

// ShouldFire reports whether time in the current zone exceeds that zone's
// warning threshold.
func (t *ZoneDurationTrigger) ShouldFire(snap models.RunStateSnapshot, now time.Time) bool {
	if snap.CurrentZone == nil || snap.TimeInZone == nil {
		return false
	}
	threshold, watched := t.warnAfter[*snap.CurrentZone]
	if !watched || threshold <= 0 {
		return false
	}
	return *snap.TimeInZone >= threshold
}

// GeneratePrompt warns about the sustained effort.
func (t *ZoneDurationTrigger) GeneratePrompt(snap models.RunStateSnapshot) models.QueuedPrompt {
	zone := models.ZoneNone
	if snap.CurrentZone != nil {
		zone = *snap.CurrentZone
	}
	held := time.Duration(0)
	if snap.TimeInZone != nil {
		held = *snap.TimeInZone
	}
	msg := fmt.Sprintf("You've been in %s for %s. Consider easing off.", zone, models.SpokenDuration(held))
	return models.NewPrompt(models.PromptTypeZoneDuration, msg)
}

// Reset clears firing state. The trigger keeps no observation memory.
func (t *ZoneDurationTrigger) Reset() {
	t.resetFiring()
}

// Package trigger implements the cooldown-gated announcement predicates
// evaluated against each run snapshot, and the registry that owns them.
package trigger

import (
	"strings"
	"sync"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// Registry identifiers for the built-in triggers.
const (
	IDSplit          = "split"
	IDPaceDrift      = "pace_drift"
	IDZoneTransition = "zone_transition"
	IDZoneDuration   = "zone_duration"
	IDCheckIn        = "check_in"
)

// Default cooldowns per trigger. The check-in trigger uses its configured
// interval as cooldown instead.
const (
	DefaultSplitCooldown          = 30 * time.Second
	DefaultPaceDriftCooldown      = 2 * time.Minute
	DefaultZoneTransitionCooldown = time.Minute
	DefaultZoneDurationCooldown   = 5 * time.Minute
)

// Trigger is a named, cooldown-gated predicate over a run snapshot that
// produces a prompt when it fires.
type Trigger interface {
	// ID returns the registry identifier.
	ID() string
	// Enabled reports whether the engine should evaluate this trigger.
	Enabled() bool
	// SetEnabled toggles evaluation.
	SetEnabled(enabled bool)
	// Cooldown returns the minimum interval between firings.
	Cooldown() time.Duration
	// LastFired returns the time of the most recent firing, zero if never.
	LastFired() time.Time
	// MarkFired stamps the firing time. The engine calls this after
	// enqueueing the generated prompt.
	MarkFired(at time.Time)
	// ShouldFire evaluates the firing condition. The engine calls it only
	// from the evaluation loop and only once the cooldown has elapsed, so
	// implementations may update loop-confined observation state here.
	// Missing optional snapshot data means "do not fire", never an error.
	ShouldFire(snap models.RunStateSnapshot, now time.Time) bool
	// GeneratePrompt builds the announcement for a firing. Called directly
	// after a true ShouldFire with the same snapshot.
	GeneratePrompt(snap models.RunStateSnapshot) models.QueuedPrompt
	// Reset clears firing state and observation memory for a new session.
	// Must only be called while the engine loop is stopped.
	Reset()
}

// baseTrigger carries the identity, enablement, and firing state shared by
// every variant. Enablement and lastFired are mutex-guarded because
// SetEnabled may be called while the evaluation loop reads them.
type baseTrigger struct {
	id       string
	cooldown time.Duration

	mu        sync.Mutex
	enabled   bool
	lastFired time.Time
}

func newBaseTrigger(id string, cooldown time.Duration) baseTrigger {
	return baseTrigger{id: id, cooldown: cooldown, enabled: true}
}

func (b *baseTrigger) ID() string {
	return b.id
}

func (b *baseTrigger) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

func (b *baseTrigger) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

func (b *baseTrigger) Cooldown() time.Duration {
	return b.cooldown
}

func (b *baseTrigger) LastFired() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastFired
}

func (b *baseTrigger) MarkFired(at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastFired = at
}

// resetFiring clears the firing timestamp.
func (b *baseTrigger) resetFiring() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastFired = time.Time{}
}

// capitalize upper-cases the first letter of a spoken word, e.g. "mile"
// becomes "Mile" at the start of a sentence.
func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

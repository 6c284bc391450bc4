package trigger

import (
	"log/slog"
	"sync"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
	"github.com/StrideLab/VoiceCoach/internal/settings"
)

// Registry owns the trigger set and is the engine's iteration surface.
// Enablement may be toggled concurrently with the evaluation loop; the
// registry and the triggers' own locks make that safe.
type Registry struct {
	mu      sync.RWMutex
	ordered []Trigger
	byID    map[string]Trigger
}

// NewRegistry builds the built-in trigger set from settings. Evaluation
// order follows registration order: splits, pace drift, zone entry, zone
// duration, check-in.
func NewRegistry(s settings.Settings) *Registry {
	r := &Registry{byID: make(map[string]Trigger)}

	split := NewSplitTrigger(s.SplitDetail)
	split.SetEnabled(s.AnnounceSplits && s.SplitDetail != settings.SplitDetailOff)
	r.Register(split)

	pace := NewPaceDriftTrigger(s.PaceDriftThreshold)
	pace.SetEnabled(s.PaceAlerts)
	r.Register(pace)

	zoneEntry := NewZoneTransitionTrigger(s.AlertZoneSet())
	zoneEntry.SetEnabled(s.ZoneAlerts)
	r.Register(zoneEntry)

	zoneHold := NewZoneDurationTrigger(map[models.HRZone]time.Duration{
		models.Zone4: s.Zone4WarningTime.Std(),
		models.Zone5: s.Zone5WarningTime.Std(),
	})
	zoneHold.SetEnabled(s.ZoneDurationWarnings)
	r.Register(zoneHold)

	checkIn := NewCheckInTrigger(s.CheckInInterval.Std())
	checkIn.SetEnabled(s.EnableCheckIns)
	r.Register(checkIn)

	return r
}

// NewEmptyRegistry returns a registry with no triggers. Callers register
// their own set; used where the built-in set from settings is not wanted.
func NewEmptyRegistry() *Registry {
	return &Registry{byID: make(map[string]Trigger)}
}

// Register adds a trigger to the set. Registering an ID that already exists
// replaces the previous trigger in place, keeping its evaluation position.
func (r *Registry) Register(t Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID()]; exists {
		for i, existing := range r.ordered {
			if existing.ID() == t.ID() {
				r.ordered[i] = t
				break
			}
		}
	} else {
		r.ordered = append(r.ordered, t)
	}
	r.byID[t.ID()] = t
	slog.Debug("Registry Register trigger", "id", t.ID(), "enabled", t.Enabled())
}

// Get returns the trigger with the given ID.
func (r *Registry) Get(id string) (Trigger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	return t, ok
}

// SetEnabled toggles a trigger by ID and reports whether the ID was known.
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	r.mu.RLock()
	t, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		slog.Warn("Registry SetEnabled unknown trigger", "id", id)
		return false
	}
	t.SetEnabled(enabled)
	slog.Debug("Registry SetEnabled", "id", id, "enabled", enabled)
	return true
}

// EnabledTriggers returns the enabled triggers in evaluation order. The
// slice is a copy; the engine iterates it without holding the registry lock.
func (r *Registry) EnabledTriggers() []Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Trigger, 0, len(r.ordered))
	for _, t := range r.ordered {
		if t.Enabled() {
			out = append(out, t)
		}
	}
	return out
}

// All returns every registered trigger in evaluation order.
func (r *Registry) All() []Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Trigger, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ResetCooldowns resets every trigger's firing timestamp and observation
// memory so a previous session cannot suppress announcements in a new one.
// Must only be called while the engine loop is stopped.
func (r *Registry) ResetCooldowns() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.ordered {
		t.Reset()
	}
	slog.Debug("Registry ResetCooldowns", "triggers", len(r.ordered))
}

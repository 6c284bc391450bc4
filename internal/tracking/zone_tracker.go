package tracking

import (
	"log/slog"
	"sync"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// Zone boundaries as a fraction of maximum heart rate. The highest matching
// zone wins; below the zone 1 boundary the rate maps to no zone.
const (
	zone1Threshold = 0.50
	zone2Threshold = 0.60
	zone3Threshold = 0.70
	zone4Threshold = 0.80
	zone5Threshold = 0.90
)

// TransitionCallback is invoked on each detected zone change.
type TransitionCallback func(models.ZoneTransition)

// ZoneTimeTracker classifies heart-rate samples into training zones and
// accumulates time per zone. Time between two samples is attributed to the
// zone that was current when the earlier sample arrived.
type ZoneTimeTracker struct {
	mu           sync.Mutex
	maxHeartRate int
	current      models.HRZone
	previous     models.HRZone
	hasCurrent   bool
	hasPrevious  bool
	entryTime    time.Time
	lastSample   time.Time
	durations    map[models.HRZone]time.Duration
	transitions  []models.ZoneTransition
	onTransition TransitionCallback
}

// ZoneTrackerOption configures optional tracker behavior.
type ZoneTrackerOption func(*ZoneTimeTracker)

// WithTransitionCallback registers a callback invoked on each zone change.
func WithTransitionCallback(cb TransitionCallback) ZoneTrackerOption {
	return func(t *ZoneTimeTracker) {
		t.onTransition = cb
	}
}

// NewZoneTimeTracker creates a tracker for the given maximum heart rate.
func NewZoneTimeTracker(maxHeartRate int, opts ...ZoneTrackerOption) *ZoneTimeTracker {
	t := &ZoneTimeTracker{
		maxHeartRate: maxHeartRate,
		durations:    newZoneDurations(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func newZoneDurations() map[models.HRZone]time.Duration {
	return map[models.HRZone]time.Duration{
		models.Zone1: 0,
		models.Zone2: 0,
		models.Zone3: 0,
		models.Zone4: 0,
		models.Zone5: 0,
	}
}

// Classify maps a heart rate to its training zone by percentage of maximum.
func (t *ZoneTimeTracker) Classify(heartRate int) models.HRZone {
	if t.maxHeartRate <= 0 || heartRate <= 0 {
		return models.ZoneNone
	}
	pct := float64(heartRate) / float64(t.maxHeartRate)
	switch {
	case pct >= zone5Threshold:
		return models.Zone5
	case pct >= zone4Threshold:
		return models.Zone4
	case pct >= zone3Threshold:
		return models.Zone3
	case pct >= zone2Threshold:
		return models.Zone2
	case pct >= zone1Threshold:
		return models.Zone1
	default:
		return models.ZoneNone
	}
}

// Update classifies one heart-rate sample. Elapsed time since the previous
// sample is added to the previously current zone's total; a change of zone
// records a ZoneTransition and resets the zone entry timestamp.
func (t *ZoneTimeTracker) Update(heartRate int, now time.Time) {
	zone := t.Classify(heartRate)

	t.mu.Lock()

	var fired *models.ZoneTransition
	if t.hasCurrent {
		t.durations[t.current] += now.Sub(t.lastSample)
		if zone != t.current {
			tr := models.NewZoneTransition(t.current, zone, now)
			t.transitions = append(t.transitions, tr)
			t.previous = t.current
			t.hasPrevious = true
			t.entryTime = now
			fired = &tr
			slog.Debug("ZoneTimeTracker Update zone transition", "from", tr.From, "to", tr.To, "direction", tr.Direction, "heart_rate", heartRate)
		}
	} else {
		t.entryTime = now
	}

	t.current = zone
	t.hasCurrent = true
	t.lastSample = now

	cb := t.onTransition
	t.mu.Unlock()

	if fired != nil && cb != nil {
		cb(*fired)
	}
}

// CurrentZone returns the zone of the most recent sample. The second return
// value is false before any sample has been seen.
func (t *ZoneTimeTracker) CurrentZone() (models.HRZone, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.hasCurrent
}

// PreviousZone returns the zone that was current before the last transition.
func (t *ZoneTimeTracker) PreviousZone() (models.HRZone, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.previous, t.hasPrevious
}

// TimeInCurrentZone returns how long the current zone has been held.
func (t *ZoneTimeTracker) TimeInCurrentZone(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasCurrent {
		return 0
	}
	return now.Sub(t.entryTime)
}

// TotalInZone returns the time accumulated in a zone through the most
// recent sample.
func (t *ZoneTimeTracker) TotalInZone(z models.HRZone) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.durations[z]
}

// ZoneDistribution returns each training zone's share of the time spent in
// zones 1 through 5. Time below zone 1 is excluded. The map is empty when
// no in-zone time has accumulated.
func (t *ZoneTimeTracker) ZoneDistribution() map[models.HRZone]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total time.Duration
	for z := models.Zone1; z <= models.Zone5; z++ {
		total += t.durations[z]
	}
	if total == 0 {
		return map[models.HRZone]float64{}
	}

	dist := make(map[models.HRZone]float64, 5)
	for z := models.Zone1; z <= models.Zone5; z++ {
		if t.durations[z] > 0 {
			dist[z] = float64(t.durations[z]) / float64(total)
		}
	}
	return dist
}

// Transitions returns a copy of all recorded zone transitions.
func (t *ZoneTimeTracker) Transitions() []models.ZoneTransition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.ZoneTransition, len(t.transitions))
	copy(out, t.transitions)
	return out
}

// Reset restores zero state for a new session.
func (t *ZoneTimeTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = models.ZoneNone
	t.previous = models.ZoneNone
	t.hasCurrent = false
	t.hasPrevious = false
	t.entryTime = time.Time{}
	t.lastSample = time.Time{}
	t.durations = newZoneDurations()
	t.transitions = nil
}

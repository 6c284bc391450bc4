// Package tracking derives split and heart-rate-zone events from the raw
// distance and heart-rate streams feeding a run session.
package tracking

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// SplitCallback is invoked each time a split completes.
type SplitCallback func(models.Split)

// SplitTracker derives completed splits from monotonically non-decreasing
// cumulative distance. At most one split completes per Update call even when
// distance jumps by more than one unit in a single update; the remainder is
// credited to subsequent calls, which reflects realistic update cadence.
type SplitTracker struct {
	mu                 sync.Mutex
	unitDistance       float64
	splitStart         time.Time
	splitStartDistance float64
	started            bool
	splits             []models.Split
	onSplit            SplitCallback
	heartRateSource    func() *int
}

// SplitTrackerOption configures optional tracker behavior.
type SplitTrackerOption func(*SplitTracker)

// WithSplitCallback registers a callback invoked after each completed split.
func WithSplitCallback(cb SplitCallback) SplitTrackerOption {
	return func(t *SplitTracker) {
		t.onSplit = cb
	}
}

// WithHeartRateSource lets completed splits record the heart rate at the
// moment of completion. The source returns nil when no reading is available.
func WithHeartRateSource(src func() *int) SplitTrackerOption {
	return func(t *SplitTracker) {
		t.heartRateSource = src
	}
}

// NewSplitTracker creates a tracker whose split length follows the unit.
func NewSplitTracker(unit models.DistanceUnit, opts ...SplitTrackerOption) *SplitTracker {
	t := &SplitTracker{unitDistance: unit.Meters()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update feeds the latest cumulative distance (meters) and instantaneous
// pace. The first call initializes the split-start markers. When cumulative
// distance has crossed the next unit boundary, exactly one split is
// completed and the callback invoked.
func (t *SplitTracker) Update(totalDistance float64, currentPace time.Duration, now time.Time) {
	t.mu.Lock()

	if !t.started {
		t.started = true
		t.splitStart = now
		t.splitStartDistance = 0
	}

	var completed *models.Split
	whole := int(math.Floor(totalDistance / t.unitDistance))
	if whole > len(t.splits) {
		split := t.completeSplit(totalDistance, currentPace, now)
		completed = &split
	}

	cb := t.onSplit
	t.mu.Unlock()

	if completed != nil && cb != nil {
		cb(*completed)
	}
}

// completeSplit records one split and resets the start markers. Caller holds
// the mutex.
func (t *SplitTracker) completeSplit(totalDistance float64, currentPace time.Duration, now time.Time) models.Split {
	split := models.Split{
		Number:    len(t.splits) + 1,
		Distance:  t.unitDistance,
		Duration:  now.Sub(t.splitStart),
		Pace:      currentPace,
		Timestamp: now,
	}
	if len(t.splits) > 0 {
		delta := currentPace - t.splits[len(t.splits)-1].Pace
		split.PaceDelta = &delta
	}
	if t.heartRateSource != nil {
		split.HeartRate = t.heartRateSource()
	}

	t.splits = append(t.splits, split)
	t.splitStart = now
	t.splitStartDistance = totalDistance

	slog.Debug("SplitTracker Update completed split", "number", split.Number, "duration", split.Duration, "pace", split.Pace)
	return split
}

// CompletedCount returns the number of splits recorded so far.
func (t *SplitTracker) CompletedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.splits)
}

// LastSplit returns the most recent split, if any.
func (t *SplitTracker) LastSplit() (models.Split, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.splits) == 0 {
		return models.Split{}, false
	}
	return t.splits[len(t.splits)-1], true
}

// Splits returns a copy of all recorded splits.
func (t *SplitTracker) Splits() []models.Split {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Split, len(t.splits))
	copy(out, t.splits)
	return out
}

// CurrentSplitDistance returns how far into the current split the given
// cumulative distance lies.
func (t *SplitTracker) CurrentSplitDistance(totalDistance float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := totalDistance - t.splitStartDistance
	if d < 0 {
		return 0
	}
	return d
}

// Reset clears all state for a new session.
func (t *SplitTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = false
	t.splitStart = time.Time{}
	t.splitStartDistance = 0
	t.splits = nil
}

package tracking

import (
	"testing"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

func TestClassify(t *testing.T) {
	tracker := NewZoneTimeTracker(200)

	tests := []struct {
		heartRate int
		want      models.HRZone
	}{
		{95, models.ZoneNone}, // 47.5% of max
		{100, models.Zone1},   // exactly 50%
		{105, models.Zone1},
		{125, models.Zone2},
		{145, models.Zone3},
		{165, models.Zone4},
		{185, models.Zone5},
		{210, models.Zone5}, // above max still zone 5
		{0, models.ZoneNone},
	}

	for _, tt := range tests {
		if got := tracker.Classify(tt.heartRate); got != tt.want {
			t.Errorf("Classify(%d) = %v; want %v", tt.heartRate, got, tt.want)
		}
	}
}

func TestClassifyWithoutMaxHeartRate(t *testing.T) {
	tracker := NewZoneTimeTracker(0)
	if got := tracker.Classify(150); got != models.ZoneNone {
		t.Errorf("Classify(150) with zero max = %v; want %v", got, models.ZoneNone)
	}
}

func TestZoneTransitionUpAndAccumulatedTime(t *testing.T) {
	var fired []models.ZoneTransition
	tracker := NewZoneTimeTracker(200, WithTransitionCallback(func(tr models.ZoneTransition) {
		fired = append(fired, tr)
	}))

	// Two samples hold zone 2 for 100 seconds, then the third crosses into zone 4.
	base := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)
	tracker.Update(125, base)
	tracker.Update(125, base.Add(60*time.Second))
	tracker.Update(165, base.Add(100*time.Second))

	transitions := tracker.Transitions()
	if len(transitions) != 1 {
		t.Fatalf("Transitions() has %d entries; want exactly 1", len(transitions))
	}
	tr := transitions[0]
	if tr.From != models.Zone2 || tr.To != models.Zone4 {
		t.Errorf("transition = %v -> %v; want zone 2 -> zone 4", tr.From, tr.To)
	}
	if tr.Direction != models.DirectionUp {
		t.Errorf("transition direction = %v; want %v", tr.Direction, models.DirectionUp)
	}

	if got, want := tracker.TotalInZone(models.Zone2), 100*time.Second; got != want {
		t.Errorf("TotalInZone(zone 2) = %v; want %v (all time before the crossing)", got, want)
	}

	if len(fired) != 1 {
		t.Errorf("callback fired %d times; want 1", len(fired))
	}
}

func TestTimeInCurrentZone(t *testing.T) {
	tracker := NewZoneTimeTracker(200)
	base := time.Now()

	tracker.Update(125, base)
	tracker.Update(165, base.Add(100*time.Second))

	if got, want := tracker.TimeInCurrentZone(base.Add(160*time.Second)), 60*time.Second; got != want {
		t.Errorf("TimeInCurrentZone() = %v; want %v", got, want)
	}

	// Staying in the zone must not reset the entry timestamp.
	tracker.Update(170, base.Add(130*time.Second))
	if got, want := tracker.TimeInCurrentZone(base.Add(160*time.Second)), 60*time.Second; got != want {
		t.Errorf("TimeInCurrentZone() after same-zone sample = %v; want %v", got, want)
	}
}

func TestCurrentAndPreviousZone(t *testing.T) {
	tracker := NewZoneTimeTracker(200)

	if _, ok := tracker.CurrentZone(); ok {
		t.Error("CurrentZone() reported a zone before any sample")
	}

	base := time.Now()
	tracker.Update(125, base)

	zone, ok := tracker.CurrentZone()
	if !ok || zone != models.Zone2 {
		t.Errorf("CurrentZone() = %v, %v; want zone 2, true", zone, ok)
	}
	if _, ok := tracker.PreviousZone(); ok {
		t.Error("PreviousZone() reported a zone before any transition")
	}

	tracker.Update(165, base.Add(time.Minute))
	prev, ok := tracker.PreviousZone()
	if !ok || prev != models.Zone2 {
		t.Errorf("PreviousZone() = %v, %v; want zone 2, true", prev, ok)
	}
}

func TestZoneDistribution(t *testing.T) {
	tracker := NewZoneTimeTracker(200)
	base := time.Now()

	if got := tracker.ZoneDistribution(); len(got) != 0 {
		t.Errorf("ZoneDistribution() before samples = %v; want empty", got)
	}

	// 60 seconds in zone 2, then 40 seconds in zone 4.
	tracker.Update(125, base)
	tracker.Update(165, base.Add(60*time.Second))
	tracker.Update(165, base.Add(100*time.Second))

	dist := tracker.ZoneDistribution()
	if got := dist[models.Zone2]; got < 0.599 || got > 0.601 {
		t.Errorf("zone 2 share = %v; want 0.6", got)
	}
	if got := dist[models.Zone4]; got < 0.399 || got > 0.401 {
		t.Errorf("zone 4 share = %v; want 0.4", got)
	}
	if _, present := dist[models.Zone5]; present {
		t.Error("zone 5 present in distribution with zero time")
	}
}

func TestZoneTrackerReset(t *testing.T) {
	tracker := NewZoneTimeTracker(200)
	base := time.Now()

	tracker.Update(125, base)
	tracker.Update(165, base.Add(time.Minute))

	tracker.Reset()
	if _, ok := tracker.CurrentZone(); ok {
		t.Error("CurrentZone() reported a zone after Reset()")
	}
	if got := tracker.TotalInZone(models.Zone2); got != 0 {
		t.Errorf("TotalInZone(zone 2) after Reset() = %v; want 0", got)
	}
	if got := len(tracker.Transitions()); got != 0 {
		t.Errorf("Transitions() after Reset() has %d entries; want 0", got)
	}
}

package models

import (
	"testing"
	"time"
)

func TestSpokenDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds only", 45 * time.Second, "45 seconds"},
		{"one second", time.Second, "1 second"},
		{"zero", 0, "0 seconds"},
		{"minutes and seconds", 8*time.Minute + 45*time.Second, "8 minutes 45 seconds"},
		{"exact minute", time.Minute, "1 minute"},
		{"exact minutes", 5 * time.Minute, "5 minutes"},
		{"hours and minutes", time.Hour + 2*time.Minute, "1 hour 2 minutes"},
		{"hours drop seconds", time.Hour + 2*time.Minute + 30*time.Second, "1 hour 2 minutes"},
		{"exact hour", 2 * time.Hour, "2 hours"},
		{"negative spoken by magnitude", -90 * time.Second, "1 minute 30 seconds"},
		{"sub-second rounds", 400 * time.Millisecond, "0 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpokenDuration(tt.d); got != tt.want {
				t.Errorf("SpokenDuration(%v) = %q; want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestSpokenPace(t *testing.T) {
	got := SpokenPace(9*time.Minute+10*time.Second, UnitMiles)
	want := "9 minutes 10 seconds per mile"
	if got != want {
		t.Errorf("SpokenPace() = %q; want %q", got, want)
	}

	got = SpokenPace(5*time.Minute, UnitKilometers)
	want = "5 minutes per kilometer"
	if got != want {
		t.Errorf("SpokenPace() = %q; want %q", got, want)
	}
}

func TestSpokenDistance(t *testing.T) {
	tests := []struct {
		name   string
		meters float64
		unit   DistanceUnit
		want   string
	}{
		{"fractional miles", 5149.9, UnitMiles, "3.2 miles"},
		{"exactly one mile", MetersPerMile, UnitMiles, "1 mile"},
		{"fractional kilometers", 3300, UnitKilometers, "3.3 kilometers"},
		{"exactly one kilometer", 1000, UnitKilometers, "1 kilometer"},
		{"zero", 0, UnitMiles, "0.0 miles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpokenDistance(tt.meters, tt.unit); got != tt.want {
				t.Errorf("SpokenDistance(%v, %v) = %q; want %q", tt.meters, tt.unit, got, tt.want)
			}
		})
	}
}

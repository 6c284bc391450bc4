package models

import "time"

// Split records one completed unit-distance segment of the run. Immutable
// once created; the tracker's split list only grows during a session.
type Split struct {
	Number    int            `json:"number"`
	Distance  float64        `json:"distance_meters"`
	Duration  time.Duration  `json:"duration"`
	Pace      time.Duration  `json:"pace"`
	Timestamp time.Time      `json:"timestamp"`
	HeartRate *int           `json:"heart_rate,omitempty"`
	Elevation *float64       `json:"elevation,omitempty"`
	Cadence   *int           `json:"cadence,omitempty"`
	PaceDelta *time.Duration `json:"pace_delta,omitempty"`
}

// TransitionDirection classifies a zone change as up, down, or none.
type TransitionDirection string

const (
	DirectionUp   TransitionDirection = "up"
	DirectionDown TransitionDirection = "down"
	DirectionNone TransitionDirection = "none"
)

// ZoneTransition records one heart-rate zone change.
type ZoneTransition struct {
	From      HRZone              `json:"from"`
	To        HRZone              `json:"to"`
	Timestamp time.Time           `json:"timestamp"`
	Direction TransitionDirection `json:"direction"`
}

// NewZoneTransition constructs a transition with its direction derived from
// the zone ordering.
func NewZoneTransition(from, to HRZone, at time.Time) ZoneTransition {
	dir := DirectionNone
	switch {
	case to > from:
		dir = DirectionUp
	case to < from:
		dir = DirectionDown
	}
	return ZoneTransition{From: from, To: to, Timestamp: at, Direction: dir}
}

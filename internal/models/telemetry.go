package models

import "time"

// TelemetrySample is one raw reading from the run-recording session, before
// the coordinator folds tracker-derived fields into a RunStateSnapshot.
// Pointer fields are nil when the sensor has not reported.
type TelemetrySample struct {
	Elapsed     time.Duration `json:"elapsed"`
	Paused      bool          `json:"paused"`
	Distance    float64       `json:"distance_meters"`
	CurrentPace time.Duration `json:"current_pace"`
	AveragePace time.Duration `json:"average_pace"`
	Speed       float64       `json:"speed_mps"`
	HeartRate   *int          `json:"heart_rate,omitempty"`
}

// SessionSummary describes a finished session: the aggregate numbers spoken
// in the debrief and persisted by the recorder.
type SessionSummary struct {
	SessionID        string             `json:"session_id"`
	StartedAt        time.Time          `json:"started_at"`
	Duration         time.Duration      `json:"duration"`
	Distance         float64            `json:"distance_meters"`
	Unit             DistanceUnit       `json:"unit"`
	AveragePace      time.Duration      `json:"average_pace"`
	Splits           []Split            `json:"splits,omitempty"`
	ZoneDistribution map[HRZone]float64 `json:"zone_distribution,omitempty"`
	PromptsSpoken    int                `json:"prompts_spoken"`
}

// DistanceInUnits converts the total distance into the session's unit.
func (s SessionSummary) DistanceInUnits() float64 {
	return s.Distance / s.Unit.Meters()
}

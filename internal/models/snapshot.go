package models

import "time"

// DistanceUnit selects the unit length used for splits and spoken distances.
type DistanceUnit string

const (
	// UnitMiles measures splits in statute miles.
	UnitMiles DistanceUnit = "miles"
	// UnitKilometers measures splits in kilometers.
	UnitKilometers DistanceUnit = "kilometers"
)

// Unit lengths in meters.
const (
	MetersPerMile      = 1609.344
	MetersPerKilometer = 1000.0
)

// IsValidDistanceUnit checks if the given distance unit is supported.
func IsValidDistanceUnit(u DistanceUnit) bool {
	switch u {
	case UnitMiles, UnitKilometers:
		return true
	default:
		return false
	}
}

// Meters returns the unit length in meters.
func (u DistanceUnit) Meters() float64 {
	if u == UnitKilometers {
		return MetersPerKilometer
	}
	return MetersPerMile
}

// Singular returns the spoken singular form, e.g. "mile".
func (u DistanceUnit) Singular() string {
	if u == UnitKilometers {
		return "kilometer"
	}
	return "mile"
}

// Plural returns the spoken plural form, e.g. "miles".
func (u DistanceUnit) Plural() string {
	if u == UnitKilometers {
		return "kilometers"
	}
	return "miles"
}

// HRZone is a heart-rate intensity bucket derived from percentage of maximum
// heart rate. ZoneNone means the rate is below the lowest zone boundary.
type HRZone int

const (
	ZoneNone HRZone = 0
	Zone1    HRZone = 1
	Zone2    HRZone = 2
	Zone3    HRZone = 3
	Zone4    HRZone = 4
	Zone5    HRZone = 5
)

// IsValidZone reports whether z is one of the five training zones.
func IsValidZone(z HRZone) bool {
	return z >= Zone1 && z <= Zone5
}

// String returns the spoken zone name.
func (z HRZone) String() string {
	switch z {
	case Zone1:
		return "zone 1"
	case Zone2:
		return "zone 2"
	case Zone3:
		return "zone 3"
	case Zone4:
		return "zone 4"
	case Zone5:
		return "zone 5"
	default:
		return "no zone"
	}
}

// RunStateSnapshot is an immutable description of one instant of a run.
// Producers replace the engine's current snapshot wholesale; there is no
// partial mutation. Pace fields hold time per unit distance; a zero pace
// means the value is not yet known. Pointer fields are nil when the source
// sensor has not reported.
type RunStateSnapshot struct {
	Elapsed         time.Duration  `json:"elapsed"`
	Paused          bool           `json:"paused"`
	Distance        float64        `json:"distance_meters"`
	CurrentPace     time.Duration  `json:"current_pace"`
	AveragePace     time.Duration  `json:"average_pace"`
	TargetPace      *time.Duration `json:"target_pace,omitempty"`
	CompletedSplits int            `json:"completed_splits"`
	LastSplitPace   time.Duration  `json:"last_split_pace"`
	Speed           float64        `json:"speed_mps"`
	HeartRate       *int           `json:"heart_rate,omitempty"`
	CurrentZone     *HRZone        `json:"current_zone,omitempty"`
	PreviousZone    *HRZone        `json:"previous_zone,omitempty"`
	TimeInZone      *time.Duration `json:"time_in_zone,omitempty"`
	Unit            DistanceUnit   `json:"unit"`
}

// DistanceInUnits converts the cumulative distance into the snapshot's unit.
func (s RunStateSnapshot) DistanceInUnits() float64 {
	return s.Distance / s.Unit.Meters()
}

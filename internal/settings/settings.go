// Package settings loads and validates the coaching configuration consumed
// by the trigger set, engine, and coordinator. Settings come from an
// optional YAML file layered over defaults, with environment overrides for
// the options most often tuned per run.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/StrideLab/VoiceCoach/internal/models"
	"github.com/StrideLab/VoiceCoach/internal/util"
)

// SplitDetail selects how much a split announcement says.
type SplitDetail string

const (
	// SplitDetailOff disables split announcements entirely.
	SplitDetailOff SplitDetail = "off"
	// SplitDetailBasic announces split number and pace.
	SplitDetailBasic SplitDetail = "basic"
	// SplitDetailDetailed adds pace delta and heart rate when present.
	SplitDetailDetailed SplitDetail = "detailed"
)

// IsValidSplitDetail checks if the given detail level is supported.
func IsValidSplitDetail(d SplitDetail) bool {
	switch d {
	case SplitDetailOff, SplitDetailBasic, SplitDetailDetailed:
		return true
	default:
		return false
	}
}

// Duration wraps time.Duration so YAML fields accept strings like "5m" or
// "90s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back to its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Validation error variables.
var (
	ErrInvalidDistanceUnit    = errors.New("invalid distance unit")
	ErrInvalidSplitDetail     = errors.New("invalid split detail level")
	ErrInvalidDriftThreshold  = errors.New("pace drift threshold must be greater than 0 and at most 1")
	ErrInvalidAlertZone       = errors.New("alert zones must be between 1 and 5")
	ErrInvalidMaxHeartRate    = errors.New("max heart rate must be positive when zone features are enabled")
	ErrInvalidWarningTime     = errors.New("zone warning times must be positive when duration warnings are enabled")
	ErrInvalidCheckInInterval = errors.New("check-in interval must be positive when check-ins are enabled")
	ErrInvalidVoiceTimeout    = errors.New("voice input timeout must be positive when voice input is enabled")
)

// Settings holds every coaching option read by the core at its decision
// points. Values are read-only once loaded.
type Settings struct {
	// Split announcements
	AnnounceSplits bool                `yaml:"announce_splits"`
	SplitDetail    SplitDetail         `yaml:"split_detail"`
	DistanceUnit   models.DistanceUnit `yaml:"distance_unit"`

	// Pace alerts
	PaceAlerts         bool     `yaml:"pace_alerts"`
	PaceDriftThreshold float64  `yaml:"pace_drift_threshold"`
	TargetPace         Duration `yaml:"target_pace"` // zero means no target

	// Heart-rate zones
	MaxHeartRate         int      `yaml:"max_heart_rate"`
	ZoneAlerts           bool     `yaml:"zone_alerts"`
	AlertOnZones         []int    `yaml:"alert_on_zones"`
	ZoneDurationWarnings bool     `yaml:"zone_duration_warnings"`
	Zone4WarningTime     Duration `yaml:"zone4_warning_time"`
	Zone5WarningTime     Duration `yaml:"zone5_warning_time"`

	// Check-ins and voice input
	EnableCheckIns         bool     `yaml:"enable_check_ins"`
	CheckInInterval        Duration `yaml:"check_in_interval"`
	EnableVoiceInput       bool     `yaml:"enable_voice_input"`
	AutoListenAfterCheckIn bool     `yaml:"auto_listen_after_check_in"`
	VoiceInputTimeout      Duration `yaml:"voice_input_timeout"`
}

// Default returns the settings used when no file or override supplies a
// value. The max heart rate is a generic adult default and should be
// personalized through the settings file.
func Default() Settings {
	return Settings{
		AnnounceSplits:         true,
		SplitDetail:            SplitDetailBasic,
		DistanceUnit:           models.UnitMiles,
		PaceAlerts:             true,
		PaceDriftThreshold:     0.10,
		MaxHeartRate:           185,
		ZoneAlerts:             true,
		AlertOnZones:           []int{4, 5},
		ZoneDurationWarnings:   true,
		Zone4WarningTime:       Duration(8 * time.Minute),
		Zone5WarningTime:       Duration(3 * time.Minute),
		EnableCheckIns:         true,
		CheckInInterval:        Duration(5 * time.Minute),
		EnableVoiceInput:       true,
		AutoListenAfterCheckIn: true,
		VoiceInputTimeout:      Duration(10 * time.Second),
	}
}

// Load reads settings from the given YAML file layered over Default(),
// applies environment overrides, and validates the result. An empty path
// skips the file and uses defaults plus overrides.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
		}
	}
	s.applyEnvOverrides()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// applyEnvOverrides layers VOICECOACH_* environment variables over the
// loaded values.
func (s *Settings) applyEnvOverrides() {
	if unit := os.Getenv("VOICECOACH_DISTANCE_UNIT"); unit != "" {
		s.DistanceUnit = models.DistanceUnit(unit)
	}
	if maxHR := os.Getenv("VOICECOACH_MAX_HEART_RATE"); maxHR != "" {
		if v, err := strconv.Atoi(maxHR); err == nil {
			s.MaxHeartRate = v
		}
	}
	if target := os.Getenv("VOICECOACH_TARGET_PACE"); target != "" {
		if v, err := time.ParseDuration(target); err == nil {
			s.TargetPace = Duration(v)
		}
	}
	s.CheckInInterval = Duration(util.ParseDurationEnv("VOICECOACH_CHECK_IN_INTERVAL", s.CheckInInterval.Std()))
	s.VoiceInputTimeout = Duration(util.ParseDurationEnv("VOICECOACH_VOICE_INPUT_TIMEOUT", s.VoiceInputTimeout.Std()))
	s.EnableVoiceInput = util.ParseBoolEnv("VOICECOACH_ENABLE_VOICE_INPUT", s.EnableVoiceInput)
	s.EnableCheckIns = util.ParseBoolEnv("VOICECOACH_ENABLE_CHECK_INS", s.EnableCheckIns)
}

// Validate checks cross-field consistency. Feature gates relax the checks
// for disabled features.
func (s *Settings) Validate() error {
	if !models.IsValidDistanceUnit(s.DistanceUnit) {
		return ErrInvalidDistanceUnit
	}
	if !IsValidSplitDetail(s.SplitDetail) {
		return ErrInvalidSplitDetail
	}
	if s.PaceAlerts && (s.PaceDriftThreshold <= 0 || s.PaceDriftThreshold > 1) {
		return ErrInvalidDriftThreshold
	}
	for _, z := range s.AlertOnZones {
		if !models.IsValidZone(models.HRZone(z)) {
			return ErrInvalidAlertZone
		}
	}
	if (s.ZoneAlerts || s.ZoneDurationWarnings) && s.MaxHeartRate <= 0 {
		return ErrInvalidMaxHeartRate
	}
	if s.ZoneDurationWarnings && (s.Zone4WarningTime <= 0 || s.Zone5WarningTime <= 0) {
		return ErrInvalidWarningTime
	}
	if s.EnableCheckIns && s.CheckInInterval <= 0 {
		return ErrInvalidCheckInInterval
	}
	if s.EnableVoiceInput && s.VoiceInputTimeout <= 0 {
		return ErrInvalidVoiceTimeout
	}
	return nil
}

// AlertZoneSet returns the configured alert zones as a set.
func (s *Settings) AlertZoneSet() map[models.HRZone]bool {
	set := make(map[models.HRZone]bool, len(s.AlertOnZones))
	for _, z := range s.AlertOnZones {
		set[models.HRZone(z)] = true
	}
	return set
}

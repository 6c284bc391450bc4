package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if s.DistanceUnit != models.UnitMiles {
		t.Errorf("default unit = %v; want %v", s.DistanceUnit, models.UnitMiles)
	}
	if s.CheckInInterval.Std() != 5*time.Minute {
		t.Errorf("default check-in interval = %v; want 5m", s.CheckInInterval.Std())
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coach.yaml")
	content := `
distance_unit: kilometers
split_detail: detailed
pace_drift_threshold: 0.15
target_pace: 5m30s
max_heart_rate: 192
alert_on_zones: [5]
zone5_warning_time: 2m
check_in_interval: 10m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if s.DistanceUnit != models.UnitKilometers {
		t.Errorf("DistanceUnit = %v; want kilometers", s.DistanceUnit)
	}
	if s.SplitDetail != SplitDetailDetailed {
		t.Errorf("SplitDetail = %v; want detailed", s.SplitDetail)
	}
	if s.PaceDriftThreshold != 0.15 {
		t.Errorf("PaceDriftThreshold = %v; want 0.15", s.PaceDriftThreshold)
	}
	if s.TargetPace.Std() != 5*time.Minute+30*time.Second {
		t.Errorf("TargetPace = %v; want 5m30s", s.TargetPace.Std())
	}
	if s.MaxHeartRate != 192 {
		t.Errorf("MaxHeartRate = %d; want 192", s.MaxHeartRate)
	}
	if len(s.AlertOnZones) != 1 || s.AlertOnZones[0] != 5 {
		t.Errorf("AlertOnZones = %v; want [5]", s.AlertOnZones)
	}
	if s.CheckInInterval.Std() != 10*time.Minute {
		t.Errorf("CheckInInterval = %v; want 10m", s.CheckInInterval.Std())
	}
	// Untouched fields keep their defaults.
	if !s.AnnounceSplits {
		t.Error("AnnounceSplits lost its default")
	}
	if s.Zone4WarningTime.Std() != 8*time.Minute {
		t.Errorf("Zone4WarningTime = %v; want default 8m", s.Zone4WarningTime.Std())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() with missing file succeeded; want error")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coach.yaml")
	if err := os.WriteFile(path, []byte("check_in_interval: not-a-duration\n"), 0o644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid duration succeeded; want error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOICECOACH_DISTANCE_UNIT", "kilometers")
	t.Setenv("VOICECOACH_MAX_HEART_RATE", "190")
	t.Setenv("VOICECOACH_CHECK_IN_INTERVAL", "7m")
	t.Setenv("VOICECOACH_ENABLE_VOICE_INPUT", "false")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.DistanceUnit != models.UnitKilometers {
		t.Errorf("DistanceUnit = %v; want kilometers", s.DistanceUnit)
	}
	if s.MaxHeartRate != 190 {
		t.Errorf("MaxHeartRate = %d; want 190", s.MaxHeartRate)
	}
	if s.CheckInInterval.Std() != 7*time.Minute {
		t.Errorf("CheckInInterval = %v; want 7m", s.CheckInInterval.Std())
	}
	if s.EnableVoiceInput {
		t.Error("EnableVoiceInput = true; want false from env override")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{
			name:    "bad unit",
			mutate:  func(s *Settings) { s.DistanceUnit = "furlongs" },
			wantErr: ErrInvalidDistanceUnit,
		},
		{
			name:    "bad split detail",
			mutate:  func(s *Settings) { s.SplitDetail = "verbose" },
			wantErr: ErrInvalidSplitDetail,
		},
		{
			name:    "zero drift threshold",
			mutate:  func(s *Settings) { s.PaceDriftThreshold = 0 },
			wantErr: ErrInvalidDriftThreshold,
		},
		{
			name:    "drift threshold above one",
			mutate:  func(s *Settings) { s.PaceDriftThreshold = 1.5 },
			wantErr: ErrInvalidDriftThreshold,
		},
		{
			name:    "drift threshold ignored when pace alerts off",
			mutate:  func(s *Settings) { s.PaceAlerts = false; s.PaceDriftThreshold = 0 },
			wantErr: nil,
		},
		{
			name:    "alert zone out of range",
			mutate:  func(s *Settings) { s.AlertOnZones = []int{4, 6} },
			wantErr: ErrInvalidAlertZone,
		},
		{
			name:    "zone features require max heart rate",
			mutate:  func(s *Settings) { s.MaxHeartRate = 0 },
			wantErr: ErrInvalidMaxHeartRate,
		},
		{
			name: "max heart rate ignored when zone features off",
			mutate: func(s *Settings) {
				s.MaxHeartRate = 0
				s.ZoneAlerts = false
				s.ZoneDurationWarnings = false
			},
			wantErr: nil,
		},
		{
			name:    "zero warning time",
			mutate:  func(s *Settings) { s.Zone5WarningTime = 0 },
			wantErr: ErrInvalidWarningTime,
		},
		{
			name:    "zero check-in interval",
			mutate:  func(s *Settings) { s.CheckInInterval = 0 },
			wantErr: ErrInvalidCheckInInterval,
		},
		{
			name:    "zero voice timeout",
			mutate:  func(s *Settings) { s.VoiceInputTimeout = 0 },
			wantErr: ErrInvalidVoiceTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAlertZoneSet(t *testing.T) {
	s := Default()
	set := s.AlertZoneSet()
	if !set[models.Zone4] || !set[models.Zone5] {
		t.Errorf("AlertZoneSet() = %v; want zones 4 and 5", set)
	}
	if set[models.Zone3] {
		t.Error("AlertZoneSet() contains zone 3; want only configured zones")
	}
}

package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewPromptDerivesPriority(t *testing.T) {
	tests := []struct {
		pt   PromptType
		want PromptPriority
	}{
		{PromptTypeSplit, PriorityMedium},
		{PromptTypePaceDrift, PriorityHigh},
		{PromptTypeZoneTransition, PriorityMedium},
		{PromptTypeZoneDuration, PriorityHigh},
		{PromptTypeCheckIn, PriorityLow},
		{PromptTypeLandmark, PriorityLow},
		{PromptTypeHydration, PriorityMedium},
		{PromptTypeCustom, PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(string(tt.pt), func(t *testing.T) {
			p := NewPrompt(tt.pt, "message")
			if p.Priority != tt.want {
				t.Errorf("NewPrompt(%v).Priority = %v; want %v", tt.pt, p.Priority, tt.want)
			}
			if !strings.HasPrefix(p.ID, "pr_") {
				t.Errorf("NewPrompt() ID = %v, want pr_ prefix", p.ID)
			}
			if p.CreatedAt.IsZero() {
				t.Error("NewPrompt() CreatedAt is zero")
			}
		})
	}
}

func TestQueuedPromptValidate(t *testing.T) {
	tests := []struct {
		name    string
		prompt  QueuedPrompt
		wantErr error
	}{
		{
			name:   "valid prompt",
			prompt: NewPrompt(PromptTypeSplit, "Mile 1 complete."),
		},
		{
			name:    "empty message",
			prompt:  QueuedPrompt{Type: PromptTypeSplit, Priority: PriorityMedium},
			wantErr: ErrEmptyMessage,
		},
		{
			name:    "invalid type",
			prompt:  QueuedPrompt{Type: PromptType("bogus"), Priority: PriorityMedium, Message: "hi"},
			wantErr: ErrInvalidPromptType,
		},
		{
			name:    "priority out of range",
			prompt:  QueuedPrompt{Type: PromptTypeCustom, Priority: 9, Message: "hi"},
			wantErr: ErrInvalidPriority,
		},
		{
			name:    "message too long",
			prompt:  QueuedPrompt{Type: PromptTypeCustom, Priority: PriorityMedium, Message: strings.Repeat("a", MaxMessageLength+1)},
			wantErr: ErrMessageTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prompt.Validate()
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

func TestIsValidPromptType(t *testing.T) {
	tests := []struct {
		pt       PromptType
		expected bool
	}{
		{PromptTypeSplit, true},
		{PromptTypePaceDrift, true},
		{PromptTypeZoneTransition, true},
		{PromptTypeZoneDuration, true},
		{PromptTypeCheckIn, true},
		{PromptTypeLandmark, true},
		{PromptTypeHydration, true},
		{PromptTypeCustom, true},
		{PromptType("invalid"), false},
		{PromptType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.pt), func(t *testing.T) {
			result := IsValidPromptType(tt.pt)
			if result != tt.expected {
				t.Errorf("IsValidPromptType(%v) = %v; want %v", tt.pt, result, tt.expected)
			}
		})
	}
}

func TestNewZoneTransitionDirection(t *testing.T) {
	at := time.Now()
	tests := []struct {
		name string
		from HRZone
		to   HRZone
		want TransitionDirection
	}{
		{"up", Zone2, Zone4, DirectionUp},
		{"down", Zone5, Zone3, DirectionDown},
		{"none", Zone3, Zone3, DirectionNone},
		{"from no zone", ZoneNone, Zone1, DirectionUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewZoneTransition(tt.from, tt.to, at)
			if tr.Direction != tt.want {
				t.Errorf("NewZoneTransition(%v, %v).Direction = %v; want %v", tt.from, tt.to, tr.Direction, tt.want)
			}
			if !tr.Timestamp.Equal(at) {
				t.Errorf("NewZoneTransition() Timestamp = %v; want %v", tr.Timestamp, at)
			}
		})
	}
}

func TestHRZoneString(t *testing.T) {
	tests := []struct {
		zone HRZone
		want string
	}{
		{Zone1, "zone 1"},
		{Zone4, "zone 4"},
		{Zone5, "zone 5"},
		{ZoneNone, "no zone"},
		{HRZone(9), "no zone"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.zone.String(); got != tt.want {
				t.Errorf("HRZone(%d).String() = %q; want %q", tt.zone, got, tt.want)
			}
		})
	}
}

func TestDistanceUnit(t *testing.T) {
	if got := UnitMiles.Meters(); got != MetersPerMile {
		t.Errorf("UnitMiles.Meters() = %v; want %v", got, MetersPerMile)
	}
	if got := UnitKilometers.Meters(); got != MetersPerKilometer {
		t.Errorf("UnitKilometers.Meters() = %v; want %v", got, MetersPerKilometer)
	}
	if UnitMiles.Singular() != "mile" || UnitKilometers.Singular() != "kilometer" {
		t.Error("DistanceUnit.Singular() returned wrong word")
	}
	if !IsValidDistanceUnit(UnitMiles) || !IsValidDistanceUnit(UnitKilometers) {
		t.Error("IsValidDistanceUnit() rejected a valid unit")
	}
	if IsValidDistanceUnit(DistanceUnit("furlongs")) {
		t.Error("IsValidDistanceUnit() accepted an invalid unit")
	}
}

func TestDistanceInUnits(t *testing.T) {
	s := RunStateSnapshot{Distance: 3218.688, Unit: UnitMiles}
	if got := s.DistanceInUnits(); got < 1.999 || got > 2.001 {
		t.Errorf("DistanceInUnits() = %v; want ~2.0", got)
	}

	s = RunStateSnapshot{Distance: 2500, Unit: UnitKilometers}
	if got := s.DistanceInUnits(); got != 2.5 {
		t.Errorf("DistanceInUnits() = %v; want 2.5", got)
	}
}

func TestIntentKindClassification(t *testing.T) {
	tests := []struct {
		kind    IntentKind
		feeling bool
		stat    bool
		command bool
	}{
		{IntentFeelingBad, true, false, false},
		{IntentFeelingGreat, true, false, false},
		{IntentStatPace, false, true, false},
		{IntentStatSummary, false, true, false},
		{IntentCommandStop, false, false, true},
		{IntentCommandUnmute, false, false, true},
		{IntentYes, false, false, false},
		{IntentUnknown, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.IsFeeling(); got != tt.feeling {
				t.Errorf("IsFeeling() = %v; want %v", got, tt.feeling)
			}
			if got := tt.kind.IsStatRequest(); got != tt.stat {
				t.Errorf("IsStatRequest() = %v; want %v", got, tt.stat)
			}
			if got := tt.kind.IsCommand(); got != tt.command {
				t.Errorf("IsCommand() = %v; want %v", got, tt.command)
			}
		})
	}
}

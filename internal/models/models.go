// Package models defines the core data structures for VoiceCoach.
//
// It includes types for run snapshots, queued prompts, splits, zone
// transitions, and voice intents, which are shared across modules.
package models

import (
	"errors"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/util"
)

// PromptType identifies what kind of announcement a prompt carries.
type PromptType string

const (
	// PromptTypeSplit announces a completed split.
	PromptTypeSplit PromptType = "split"
	// PromptTypePaceDrift alerts that pace has drifted from the reference pace.
	PromptTypePaceDrift PromptType = "pace_drift"
	// PromptTypeZoneTransition announces entry into a heart-rate zone.
	PromptTypeZoneTransition PromptType = "zone_transition"
	// PromptTypeZoneDuration warns about sustained time in a high zone.
	PromptTypeZoneDuration PromptType = "zone_duration"
	// PromptTypeCheckIn asks the runner how they feel and expects a response.
	PromptTypeCheckIn PromptType = "check_in"
	// PromptTypeLandmark announces a named landmark or course feature.
	PromptTypeLandmark PromptType = "landmark"
	// PromptTypeHydration reminds the runner to drink.
	PromptTypeHydration PromptType = "hydration"
	// PromptTypeCustom carries caller-provided announcement text.
	PromptTypeCustom PromptType = "custom"
)

// PromptPriority orders prompts in the queue. Higher values survive eviction.
type PromptPriority int

const (
	// PriorityLow marks droppable chatter such as check-ins and landmarks.
	PriorityLow PromptPriority = 1
	// PriorityMedium marks routine progress announcements.
	PriorityMedium PromptPriority = 2
	// PriorityHigh marks actionable alerts such as pace drift and zone warnings.
	PriorityHigh PromptPriority = 3
	// PriorityCritical marks announcements that must never be evicted.
	PriorityCritical PromptPriority = 4
)

// Validation constants for input validation
const (
	// MaxMessageLength defines the maximum allowed length for prompt message text
	MaxMessageLength = 1024
)

// Error variables for better error handling and testability
var (
	ErrEmptyMessage      = errors.New("prompt message cannot be empty")
	ErrInvalidPromptType = errors.New("invalid prompt type")
	ErrInvalidPriority   = errors.New("invalid prompt priority")
	ErrMessageTooLong    = errors.New("prompt message exceeds maximum length")
)

// IsValidPromptType checks if the given prompt type is supported.
func IsValidPromptType(pt PromptType) bool {
	switch pt {
	case PromptTypeSplit, PromptTypePaceDrift, PromptTypeZoneTransition,
		PromptTypeZoneDuration, PromptTypeCheckIn, PromptTypeLandmark,
		PromptTypeHydration, PromptTypeCustom:
		return true
	default:
		return false
	}
}

// IsValidPriority checks if the given priority is within the supported range.
func IsValidPriority(p PromptPriority) bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// String returns a human-readable name for logging.
func (p PromptPriority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "invalid"
	}
}

// PriorityForType returns the default priority derived from a prompt type.
// Zone-duration and pace-drift prompts outrank routine announcements so they
// survive queue eviction; check-ins and landmarks are the first to be dropped.
func PriorityForType(pt PromptType) PromptPriority {
	switch pt {
	case PromptTypeZoneDuration, PromptTypePaceDrift:
		return PriorityHigh
	case PromptTypeCheckIn, PromptTypeLandmark:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// QueuedPrompt represents one unit of spoken output waiting in the queue.
type QueuedPrompt struct {
	ID              string            `json:"id"`
	Type            PromptType        `json:"type"`
	Priority        PromptPriority    `json:"priority"`
	Message         string            `json:"message"`
	ExpectsResponse bool              `json:"expects_response,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewPrompt constructs a prompt with a generated ID, the type's derived
// priority, and the current time. Callers may override Priority or
// ExpectsResponse on the returned value before enqueueing.
func NewPrompt(pt PromptType, message string) QueuedPrompt {
	return QueuedPrompt{
		ID:        util.GeneratePromptID(),
		Type:      pt,
		Priority:  PriorityForType(pt),
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// Validate performs validation on a QueuedPrompt structure.
func (p *QueuedPrompt) Validate() error {
	if p.Message == "" {
		return ErrEmptyMessage
	}
	if len(p.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !IsValidPromptType(p.Type) {
		return ErrInvalidPromptType
	}
	if !IsValidPriority(p.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

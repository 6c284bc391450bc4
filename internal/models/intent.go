package models

import "time"

// IntentKind is the closed set of classifications a voice transcript can
// resolve to: five feeling levels, five stat requests, five control
// commands, yes/no, and an unknown catch-all.
type IntentKind string

const (
	// Feeling responses, typically replies to a check-in prompt.
	IntentFeelingGreat IntentKind = "feeling_great"
	IntentFeelingGood  IntentKind = "feeling_good"
	IntentFeelingOkay  IntentKind = "feeling_okay"
	IntentFeelingTired IntentKind = "feeling_tired"
	IntentFeelingBad   IntentKind = "feeling_bad"

	// Stat requests, answered immediately from the live snapshot.
	IntentStatHeartRate IntentKind = "stat_heart_rate"
	IntentStatPace      IntentKind = "stat_pace"
	IntentStatDistance  IntentKind = "stat_distance"
	IntentStatTime      IntentKind = "stat_time"
	IntentStatSummary   IntentKind = "stat_summary"

	// Control commands, forwarded to the session's command sink.
	IntentCommandPause  IntentKind = "command_pause"
	IntentCommandResume IntentKind = "command_resume"
	IntentCommandStop   IntentKind = "command_stop"
	IntentCommandMute   IntentKind = "command_mute"
	IntentCommandUnmute IntentKind = "command_unmute"

	// Bare confirmations.
	IntentYes IntentKind = "yes"
	IntentNo  IntentKind = "no"

	// IntentUnknown carries transcripts no rule matched.
	IntentUnknown IntentKind = "unknown"
)

// IsFeeling reports whether the kind is one of the five feeling levels.
func (k IntentKind) IsFeeling() bool {
	switch k {
	case IntentFeelingGreat, IntentFeelingGood, IntentFeelingOkay,
		IntentFeelingTired, IntentFeelingBad:
		return true
	default:
		return false
	}
}

// IsStatRequest reports whether the kind asks for a live run statistic.
func (k IntentKind) IsStatRequest() bool {
	switch k {
	case IntentStatHeartRate, IntentStatPace, IntentStatDistance,
		IntentStatTime, IntentStatSummary:
		return true
	default:
		return false
	}
}

// IsCommand reports whether the kind is a session control command.
func (k IntentKind) IsCommand() bool {
	switch k {
	case IntentCommandPause, IntentCommandResume, IntentCommandStop,
		IntentCommandMute, IntentCommandUnmute:
		return true
	default:
		return false
	}
}

// VoiceIntent is the result of parsing one transcript. Transcript always
// carries the original text, including for recognized intents.
type VoiceIntent struct {
	Kind       IntentKind `json:"kind"`
	Transcript string     `json:"transcript"`
}

// ConversationRole identifies who produced a conversation turn.
type ConversationRole string

const (
	RoleCoach  ConversationRole = "coach"
	RoleRunner ConversationRole = "runner"
)

// ConversationTurn is one entry in the bounded conversation history.
// PromptType is set for coach turns, Intent for runner turns.
type ConversationTurn struct {
	Role       ConversationRole `json:"role"`
	Content    string           `json:"content"`
	PromptType PromptType       `json:"prompt_type,omitempty"`
	Intent     IntentKind       `json:"intent,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

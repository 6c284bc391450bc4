// Package voice classifies runner transcripts into intents and keeps the
// short conversation state that gives casual replies their meaning.
package voice

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// rule maps keyword vocabulary onto an intent. Entries in words match
// whole tokens of the transcript; entries in phrases match as substrings
// of the normalized text, which lets multi-word expressions carry
// punctuation and spacing.
type rule struct {
	kind    models.IntentKind
	words   []string
	phrases []string
}

// policyTable is evaluated top to bottom and the first matching rule wins.
// The ordering is behavior, not style: commands outrank stat requests,
// stat requests outrank feelings, and within feelings the negative levels
// come first so "tired and a bit bad" classifies as bad rather than tired.
// Unmute precedes mute so its phrases are never swallowed by the shorter
// mute vocabulary.
var policyTable = []rule{
	{
		kind:    models.IntentCommandStop,
		words:   []string{"stop", "end", "finish"},
		phrases: []string{"i'm done", "im done", "that's it", "thats it"},
	},
	{
		kind:    models.IntentCommandUnmute,
		words:   []string{"unmute"},
		phrases: []string{"voice back on", "coaching back on", "talk to me again"},
	},
	{
		kind:    models.IntentCommandMute,
		words:   []string{"mute", "quiet", "hush", "silence"},
		phrases: []string{"shut up", "no more talking"},
	},
	{
		kind:    models.IntentCommandPause,
		words:   []string{"pause", "hold"},
		phrases: []string{"hold on", "take a break"},
	},
	{
		kind:    models.IntentCommandResume,
		words:   []string{"resume", "continue", "unpause"},
		phrases: []string{"keep going", "let's go", "lets go", "start again"},
	},
	{
		kind:    models.IntentStatHeartRate,
		words:   []string{"heartrate", "pulse", "bpm"},
		phrases: []string{"heart rate", "what's my heart", "whats my heart"},
	},
	{
		kind:    models.IntentStatPace,
		words:   []string{"pace", "speed", "fast", "slow"},
		phrases: []string{"minutes per mile", "minutes per kilometer"},
	},
	{
		kind:    models.IntentStatDistance,
		words:   []string{"distance"},
		phrases: []string{"how far", "how many miles", "how many kilometers"},
	},
	{
		kind:    models.IntentStatTime,
		words:   []string{"time", "duration", "elapsed"},
		phrases: []string{"how long"},
	},
	{
		kind:    models.IntentStatSummary,
		words:   []string{"stats", "summary", "update", "status"},
		phrases: []string{"how am i doing", "how's it going", "hows it going"},
	},
	{
		kind:    models.IntentFeelingBad,
		words:   []string{"bad", "awful", "terrible", "horrible", "rough", "hurting", "hurt", "sick", "dizzy", "cramping", "cramp"},
		phrases: []string{"not good", "not great", "not well", "not so good"},
	},
	{
		kind:    models.IntentFeelingTired,
		words:   []string{"tired", "exhausted", "fatigued", "drained", "beat", "winded", "heavy"},
		phrases: []string{"worn out", "out of gas", "legs are gone"},
	},
	{
		kind:  models.IntentFeelingGreat,
		words: []string{"great", "amazing", "fantastic", "awesome", "incredible", "excellent", "strong"},
	},
	{
		kind:  models.IntentFeelingGood,
		words: []string{"good", "fine", "well", "solid", "nice"},
	},
	{
		kind:    models.IntentFeelingOkay,
		words:   []string{"okay", "ok", "alright", "decent"},
		phrases: []string{"so so", "hanging in"},
	},
	{
		kind:  models.IntentYes,
		words: []string{"yes", "yeah", "yep", "yup", "sure", "definitely", "absolutely"},
	},
	{
		kind:  models.IntentNo,
		words: []string{"no", "nope", "nah"},
	},
}

// Sentiment vocabulary for the context fallback. These are interjections
// and run slang that rarely survive the keyword pass but do carry a mood
// when the coach just asked how the runner feels.
var (
	negativeSentimentWords = []string{"ugh", "meh", "blah", "oof", "ouch", "ow", "struggling", "suffering", "dying", "brutal"}
	positiveSentimentWords = []string{"ha", "haha", "woo", "woohoo", "yay", "sweet", "lovely", "cruising", "flying"}
)

// IntentParser classifies transcripts with the fixed-order keyword policy.
// The zero value is ready to use; parsing is stateless and safe for
// concurrent use.
type IntentParser struct{}

// NewIntentParser returns a parser.
func NewIntentParser() *IntentParser {
	return &IntentParser{}
}

// Parse classifies a transcript without conversation context. The returned
// intent always carries the original transcript text.
func (p *IntentParser) Parse(transcript string) models.VoiceIntent {
	norm := normalizeText(transcript)
	if kind, ok := matchPolicy(norm); ok {
		return models.VoiceIntent{Kind: kind, Transcript: transcript}
	}
	return models.VoiceIntent{Kind: models.IntentUnknown, Transcript: transcript}
}

// ParseWithContext additionally consults the conversation. When the coach
// just asked a check-in, the response window is still open, and the keyword
// pass yielded unknown, a sentiment pass tries to classify the casual
// replies the vocabulary misses ("ugh", "ha!").
func (p *IntentParser) ParseWithContext(transcript string, cc *ConversationContext) models.VoiceIntent {
	intent := p.Parse(transcript)
	if intent.Kind != models.IntentUnknown || cc == nil {
		return intent
	}
	if cc.LastPromptType() != models.PromptTypeCheckIn || !cc.AwaitingResponse() {
		return intent
	}
	if kind, ok := classifySentiment(normalizeText(transcript)); ok {
		slog.Debug("IntentParser ParseWithContext sentiment fallback", "kind", kind, "transcript", transcript)
		return models.VoiceIntent{Kind: kind, Transcript: transcript}
	}
	return intent
}

// normalizeText lower-cases and trims a transcript for matching.
func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokenize splits normalized text into letter/digit runs, which strips the
// punctuation speech-to-text likes to attach to words.
func tokenize(norm string) []string {
	return strings.FieldsFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// matchPolicy runs the policy table against the normalized transcript.
func matchPolicy(norm string) (models.IntentKind, bool) {
	tokens := tokenize(norm)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}

	for _, r := range policyTable {
		for _, w := range r.words {
			if _, ok := set[w]; ok {
				return r.kind, true
			}
		}
		for _, ph := range r.phrases {
			if strings.Contains(norm, ph) {
				return r.kind, true
			}
		}
	}
	return models.IntentUnknown, false
}

// classifySentiment is the check-in fallback: negative interjections mean
// bad, positive interjections or an exclamation mark mean good.
func classifySentiment(norm string) (models.IntentKind, bool) {
	tokens := tokenize(norm)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}

	for _, w := range negativeSentimentWords {
		if _, ok := set[w]; ok {
			return models.IntentFeelingBad, true
		}
	}
	for _, w := range positiveSentimentWords {
		if _, ok := set[w]; ok {
			return models.IntentFeelingGood, true
		}
	}
	if strings.Contains(norm, "!") {
		return models.IntentFeelingGood, true
	}
	return models.IntentUnknown, false
}

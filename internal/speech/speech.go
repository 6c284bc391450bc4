// Package speech defines the narrow interfaces to the text-to-speech and
// speech-recognition collaborators, along with in-process implementations
// used by the demo binary and tests.
package speech

import "errors"

// ErrListeningUnavailable indicates the recognizer cannot start, e.g. no
// microphone or permission denied.
var ErrListeningUnavailable = errors.New("speech recognition unavailable")

// Transcript is one recognition result. Final marks the end of an
// utterance; non-final transcripts are interim hypotheses.
type Transcript struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Sink is the text-to-speech collaborator. Speak is asynchronous: it
// returns promptly and invokes onComplete exactly once when the utterance
// finishes. Cancel stops any in-progress utterance without invoking its
// completion callback. Callers never issue a second Speak while IsSpeaking
// reports true.
type Sink interface {
	Speak(text string, onComplete func())
	IsSpeaking() bool
	Cancel()
}

// Source is the speech-recognition collaborator. StartListening and
// StopListening bracket capture; results arrive on the Transcripts channel,
// which the source owns and never closes while in use.
type Source interface {
	StartListening() error
	StopListening()
	Transcripts() <-chan Transcript
}

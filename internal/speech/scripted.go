package speech

import (
	"sync"
)

// ScriptedSink is an in-memory Sink for tests. It records every utterance
// and either completes each one synchronously (autoComplete) or holds it
// until the test calls Complete, which lets tests observe the engine's
// single-utterance backpressure.
type ScriptedSink struct {
	mu           sync.Mutex
	autoComplete bool
	speaking     bool
	pending      func()
	spoken       []string
	cancelled    int
}

var _ Sink = (*ScriptedSink)(nil)

// NewScriptedSink creates a scripted sink. With autoComplete true, each
// Speak invokes its completion callback before returning.
func NewScriptedSink(autoComplete bool) *ScriptedSink {
	return &ScriptedSink{autoComplete: autoComplete}
}

// Speak records the text. The completion callback runs synchronously when
// autoComplete is set, otherwise it is held for Complete.
func (s *ScriptedSink) Speak(text string, onComplete func()) {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	if s.autoComplete {
		s.speaking = false
		s.pending = nil
		s.mu.Unlock()
		if onComplete != nil {
			onComplete()
		}
		return
	}
	s.speaking = true
	s.pending = onComplete
	s.mu.Unlock()
}

// IsSpeaking reports whether an utterance is waiting for Complete.
func (s *ScriptedSink) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Cancel drops the current utterance without running its completion.
func (s *ScriptedSink) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaking = false
	s.pending = nil
	s.cancelled++
}

// Complete finishes the current utterance, invoking its completion
// callback. It reports whether an utterance was pending.
func (s *ScriptedSink) Complete() bool {
	s.mu.Lock()
	done := s.pending
	s.pending = nil
	s.speaking = false
	s.mu.Unlock()

	if done == nil {
		return false
	}
	done()
	return true
}

// Spoken returns a copy of every recorded utterance in order.
func (s *ScriptedSink) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}

// SpokenCount returns how many utterances Speak has received.
func (s *ScriptedSink) SpokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spoken)
}

// CancelledCount returns how many times Cancel was called.
func (s *ScriptedSink) CancelledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// ScriptedSource is an in-memory Source for tests. Each StartListening
// delivers the next scripted transcript; tests may also Emit transcripts
// while a listening window is open.
type ScriptedSource struct {
	mu        sync.Mutex
	listening bool
	script    []Transcript
	next      int
	startErr  error
	starts    int
	stops     int
	ch        chan Transcript
}

var _ Source = (*ScriptedSource)(nil)

// NewScriptedSource creates a source that replays the given transcripts,
// one per listening window, in order.
func NewScriptedSource(script ...Transcript) *ScriptedSource {
	return &ScriptedSource{
		script: script,
		ch:     make(chan Transcript, 8),
	}
}

// FailWith makes every subsequent StartListening return err.
func (s *ScriptedSource) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startErr = err
}

// StartListening opens a listening window and queues the next scripted
// transcript for delivery.
func (s *ScriptedSource) StartListening() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.listening = true
	s.starts++
	if s.next < len(s.script) {
		tr := s.script[s.next]
		s.next++
		select {
		case s.ch <- tr:
		default:
		}
	}
	return nil
}

// StopListening closes the listening window.
func (s *ScriptedSource) StopListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = false
	s.stops++
}

// Transcripts returns the delivery channel.
func (s *ScriptedSource) Transcripts() <-chan Transcript {
	return s.ch
}

// Emit delivers a transcript if a listening window is open and reports
// whether it was delivered.
func (s *ScriptedSource) Emit(tr Transcript) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.listening {
		return false
	}
	select {
	case s.ch <- tr:
		return true
	default:
		return false
	}
}

// Listening reports whether a window is currently open.
func (s *ScriptedSource) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Starts returns how many listening windows have been opened.
func (s *ScriptedSource) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// Stops returns how many listening windows have been closed.
func (s *ScriptedSource) Stops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

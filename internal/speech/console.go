package speech

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// defaultWordRate approximates a TTS engine's speaking speed.
const defaultWordRate = 330 * time.Millisecond

// ConsoleSink prints announcements and simulates the time a TTS engine
// would take to speak them, paced by word count. It satisfies the Sink
// contract including cancellation: a cancelled utterance's completion
// callback never runs.
type ConsoleSink struct {
	mu         sync.Mutex
	wordRate   time.Duration
	writer     io.Writer
	speaking   bool
	timer      *time.Timer
	generation uint64
}

var _ Sink = (*ConsoleSink)(nil)

// ConsoleSinkOption configures a ConsoleSink.
type ConsoleSinkOption func(*ConsoleSink)

// WithWordRate overrides the simulated per-word speaking time.
func WithWordRate(rate time.Duration) ConsoleSinkOption {
	return func(s *ConsoleSink) {
		if rate > 0 {
			s.wordRate = rate
		}
	}
}

// WithWriter redirects output, e.g. to a buffer in tests.
func WithWriter(w io.Writer) ConsoleSinkOption {
	return func(s *ConsoleSink) {
		s.writer = w
	}
}

// NewConsoleSink creates a console-backed speech sink.
func NewConsoleSink(opts ...ConsoleSinkOption) *ConsoleSink {
	s := &ConsoleSink{
		wordRate: defaultWordRate,
		writer:   os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Speak prints the text and schedules the completion callback after the
// simulated utterance duration.
func (s *ConsoleSink) Speak(text string, onComplete func()) {
	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	duration := time.Duration(words) * s.wordRate

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	s.speaking = true

	fmt.Fprintf(s.writer, "[coach] %s\n", text)
	s.timer = time.AfterFunc(duration, func() {
		s.mu.Lock()
		if s.generation != gen {
			// A Cancel or newer Speak superseded this utterance.
			s.mu.Unlock()
			return
		}
		s.speaking = false
		s.timer = nil
		s.mu.Unlock()

		if onComplete != nil {
			onComplete()
		}
	})
	s.mu.Unlock()

	slog.Debug("ConsoleSink Speak", "words", words, "duration", duration)
}

// IsSpeaking reports whether a simulated utterance is in progress.
func (s *ConsoleSink) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Cancel stops the current utterance. Its completion callback will not run.
func (s *ConsoleSink) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.speaking = false
}

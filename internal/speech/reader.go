package speech

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ReaderSource adapts a line-oriented reader into the Source contract. The
// demo binary uses it over stdin, treating each typed line as a final
// transcript. Lines read while no listening window is open go to the
// optional unheard handler, which lets a console user issue commands at any
// time without waiting for a check-in.
type ReaderSource struct {
	mu        sync.Mutex
	listening bool
	onUnheard func(string)
	ch        chan Transcript
}

var _ Source = (*ReaderSource)(nil)

// NewReaderSource creates a source that scans lines from r on a background
// goroutine for the lifetime of the reader.
func NewReaderSource(r io.Reader) *ReaderSource {
	s := &ReaderSource{
		ch: make(chan Transcript, 4),
	}
	go s.scan(r)
	return s
}

// SetUnheardFunc registers a handler for lines that arrive outside a
// listening window. Set it before any lines are read.
func (s *ReaderSource) SetUnheardFunc(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnheard = fn
}

// StartListening opens a listening window.
func (s *ReaderSource) StartListening() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = true
	return nil
}

// StopListening closes the listening window.
func (s *ReaderSource) StopListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = false
}

// Transcripts returns the delivery channel.
func (s *ReaderSource) Transcripts() <-chan Transcript {
	return s.ch
}

// scan reads lines until the reader ends, routing each to the transcript
// channel or the unheard handler depending on the listening state.
func (s *ReaderSource) scan(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		s.mu.Lock()
		listening := s.listening
		unheard := s.onUnheard
		s.mu.Unlock()

		if listening {
			select {
			case s.ch <- Transcript{Text: line, Final: true}:
			default:
				slog.Warn("ReaderSource scan dropped transcript", "length", len(line))
			}
			continue
		}
		if unheard != nil {
			unheard(line)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("ReaderSource scan ended", "error", err)
	}
}

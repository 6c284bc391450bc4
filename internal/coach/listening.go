package coach

import (
	"log/slog"
	"strings"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/speech"
)

// defaultSilenceGrace ends a capture window early once the runner stops
// talking. Shorter than the hard voice-input timeout so an ignored
// check-in does not leave the microphone open for the full window.
const defaultSilenceGrace = 4 * time.Second

// defaultListenWindow caps the capture window when settings carry no
// usable voice-input timeout.
const defaultListenWindow = 10 * time.Second

// listenWindow is one bounded voice-capture attempt. The done channel
// releases the transcript consumer when the window closes without one.
type listenWindow struct {
	gen         uint64
	done        chan struct{}
	lastPartial string
}

// beginListening opens a bounded capture window on the speech source. The
// window closes on the first final transcript, after silenceGrace with no
// speech, or at the voice-input timeout, whichever comes first. A window
// that is already open stays as it is.
func (c *Coordinator) beginListening() {
	if c.source == nil {
		return
	}

	c.listenMu.Lock()
	if c.window != nil {
		c.listenMu.Unlock()
		return
	}
	if err := c.source.StartListening(); err != nil {
		c.listenMu.Unlock()
		slog.Warn("Coordinator beginListening failed to start source", "error", err)
		return
	}
	c.listenGen++
	w := &listenWindow{gen: c.listenGen, done: make(chan struct{})}
	c.window = w

	maxWait := c.cfg.VoiceInputTimeout.Std()
	if maxWait <= 0 {
		maxWait = defaultListenWindow
	}
	c.maxTimer = time.AfterFunc(maxWait, func() {
		c.endListening(w.gen, "", "timeout")
	})
	c.silenceTimer = time.AfterFunc(c.silenceGrace, func() {
		c.endListening(w.gen, "", "silence")
	})
	c.listenMu.Unlock()

	slog.Debug("Coordinator beginListening window opened", "timeout", maxWait)
	go c.consumeTranscripts(w)
}

// consumeTranscripts drains the source until the window closes. A final
// transcript closes the window; partial transcripts extend the silence
// deadline and are kept as a fallback for the timeout path.
func (c *Coordinator) consumeTranscripts(w *listenWindow) {
	ch := c.source.Transcripts()
	for {
		select {
		case <-w.done:
			return
		case tr, ok := <-ch:
			if !ok {
				c.endListening(w.gen, "", "source closed")
				return
			}
			if tr.Final {
				c.endListening(w.gen, tr.Text, "transcript")
				return
			}
			c.notePartial(w.gen, tr)
		}
	}
}

// notePartial extends the silence deadline while speech keeps arriving and
// remembers the text in case the window later times out mid-sentence.
func (c *Coordinator) notePartial(gen uint64, tr speech.Transcript) {
	c.listenMu.Lock()
	defer c.listenMu.Unlock()
	if c.window == nil || c.window.gen != gen {
		return
	}
	c.window.lastPartial = tr.Text
	if c.silenceTimer != nil {
		c.silenceTimer.Reset(c.silenceGrace)
	}
}

// endListening closes the capture window exactly once per generation and
// routes whatever was heard. A timeout with only partial speech routes the
// partial text; a window that heard nothing routes nothing.
func (c *Coordinator) endListening(gen uint64, text, reason string) {
	partial, open := c.closeWindow(gen)
	if !open {
		return
	}
	c.source.StopListening()

	if text == "" {
		text = partial
	}
	slog.Debug("Coordinator endListening window closed", "reason", reason, "heard", text != "")
	if strings.TrimSpace(text) == "" {
		return
	}
	c.HandleTranscript(text)
}

// CancelListening closes any open capture window without routing a
// transcript.
func (c *Coordinator) CancelListening() {
	if c.source == nil {
		return
	}
	if _, open := c.closeWindow(0); open {
		c.source.StopListening()
	}
}

// IsListening reports whether a capture window is open.
func (c *Coordinator) IsListening() bool {
	c.listenMu.Lock()
	defer c.listenMu.Unlock()
	return c.window != nil
}

// closeWindow tears down the active window when gen matches it (gen 0
// matches any window). It returns the last partial transcript heard and
// whether a window was actually open.
func (c *Coordinator) closeWindow(gen uint64) (string, bool) {
	c.listenMu.Lock()
	defer c.listenMu.Unlock()
	w := c.window
	if w == nil || (gen != 0 && w.gen != gen) {
		return "", false
	}
	c.window = nil
	if c.maxTimer != nil {
		c.maxTimer.Stop()
		c.maxTimer = nil
	}
	if c.silenceTimer != nil {
		c.silenceTimer.Stop()
		c.silenceTimer = nil
	}
	close(w.done)
	return w.lastPartial, true
}

package voice

import (
	"sync"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// Conversation defaults.
const (
	// DefaultMaxTurns bounds the retained history.
	DefaultMaxTurns = 10
	// DefaultResponseWindow is how long after a response-expecting prompt a
	// reply is still treated as an answer to it.
	DefaultResponseWindow = 30 * time.Second
)

// ConversationContext remembers the recent exchange between coach and
// runner: the last prompt spoken, whether it still awaits an answer, and a
// bounded history of turns. The coordinator writes it from speech and
// transcript callbacks while the parser reads it, so every accessor locks.
type ConversationContext struct {
	mu             sync.Mutex
	maxTurns       int
	responseWindow time.Duration
	now            func() time.Time

	lastPromptType models.PromptType
	lastPromptAt   time.Time
	awaiting       bool
	turns          []models.ConversationTurn
}

// ContextOption configures optional conversation behavior.
type ContextOption func(*ConversationContext)

// WithMaxTurns overrides the history bound.
func WithMaxTurns(n int) ContextOption {
	return func(c *ConversationContext) {
		if n > 0 {
			c.maxTurns = n
		}
	}
}

// WithResponseWindow overrides how long a prompt awaits its answer.
func WithResponseWindow(d time.Duration) ContextOption {
	return func(c *ConversationContext) {
		if d > 0 {
			c.responseWindow = d
		}
	}
}

// WithClock overrides the time source; tests inject a fake.
func WithClock(now func() time.Time) ContextOption {
	return func(c *ConversationContext) {
		c.now = now
	}
}

// NewConversationContext creates an empty conversation.
func NewConversationContext(opts ...ContextOption) *ConversationContext {
	c := &ConversationContext{
		maxTurns:       DefaultMaxTurns,
		responseWindow: DefaultResponseWindow,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddPrompt records a coach turn. A prompt that expects a response opens
// the response window; any other prompt closes it, because the coach has
// moved on.
func (c *ConversationContext) AddPrompt(p models.QueuedPrompt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.lastPromptType = p.Type
	c.lastPromptAt = now
	c.awaiting = p.ExpectsResponse
	c.appendTurn(models.ConversationTurn{
		Role:       models.RoleCoach,
		Content:    p.Message,
		PromptType: p.Type,
		Timestamp:  now,
	})
}

// AddResponse records a runner turn and closes the response window.
func (c *ConversationContext) AddResponse(intent models.VoiceIntent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.awaiting = false
	c.appendTurn(models.ConversationTurn{
		Role:      models.RoleRunner,
		Content:   intent.Transcript,
		Intent:    intent.Kind,
		Timestamp: c.now(),
	})
}

// LastPromptType returns the type of the most recent coach prompt, empty
// before the first one.
func (c *ConversationContext) LastPromptType() models.PromptType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPromptType
}

// LastPromptAt returns when the most recent coach prompt was spoken.
func (c *ConversationContext) LastPromptAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPromptAt
}

// AwaitingResponse reports whether a response-expecting prompt is still
// inside its response window.
func (c *ConversationContext) AwaitingResponse() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.awaiting {
		return false
	}
	return c.now().Sub(c.lastPromptAt) <= c.responseWindow
}

// History returns a copy of the retained turns, oldest first.
func (c *ConversationContext) History() []models.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.ConversationTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Reset clears the conversation for a new session.
func (c *ConversationContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastPromptType = ""
	c.lastPromptAt = time.Time{}
	c.awaiting = false
	c.turns = nil
}

// appendTurn adds a turn and drops the oldest past the bound. Caller holds
// the lock.
func (c *ConversationContext) appendTurn(turn models.ConversationTurn) {
	c.turns = append(c.turns, turn)
	if len(c.turns) > c.maxTurns {
		c.turns = c.turns[len(c.turns)-c.maxTurns:]
	}
}

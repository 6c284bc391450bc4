// Package genai generates spoken coaching copy with the OpenAI API. Its
// main consumer is the post-run debrief; callers fall back to canned text
// when no client is configured.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// Client defaults.
const (
	DefaultModel               = openai.ChatModelGPT4oMini
	DefaultTemperature         = 0.7
	DefaultMaxCompletionTokens = 200
)

// Sentinel errors.
var (
	// ErrAPIKeyNotSet is returned by NewClient when no key is configured.
	ErrAPIKeyNotSet = errors.New("OPENAI_API_KEY not set")
	// ErrNoChoicesReturned is returned when the API answers with no choices.
	ErrNoChoicesReturned = errors.New("no choices returned")
)

// debriefSystemPrompt frames every debrief completion.
const debriefSystemPrompt = "You are a supportive running coach speaking to a runner who just finished. " +
	"Summarize the run in two or three short spoken sentences. Be specific about the numbers you are " +
	"given, keep the tone warm, and do not use emojis or markdown."

// chatService defines the minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openAIChatAdapter narrows the SDK client to chatService.
type openAIChatAdapter struct {
	client openai.Client
}

func (a openAIChatAdapter) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Client wraps the OpenAI chat-completion service.
type Client struct {
	chat                chatService
	model               openai.ChatModel
	temperature         float64
	maxCompletionTokens int64
}

// Opts holds client configuration options.
type Opts struct {
	// APIKey authenticates against the OpenAI API. Falls back to the
	// OPENAI_API_KEY environment variable.
	APIKey string
	// Model selects the completion model.
	Model openai.ChatModel
	// Temperature controls sampling randomness.
	Temperature float64
	// MaxCompletionTokens bounds the response length.
	MaxCompletionTokens int64
}

// Option configures client creation.
type Option func(*Opts)

// WithAPIKey sets the API key explicitly.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(o *Opts) {
		o.Model = openai.ChatModel(model)
	}
}

// NewClient initializes a GenAI client. The API key comes from the options
// or the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		Model:               DefaultModel,
		Temperature:         DefaultTemperature,
		MaxCompletionTokens: DefaultMaxCompletionTokens,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		slog.Error("GenAI NewClient API key not set")
		return nil, ErrAPIKeyNotSet
	}

	api := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("GenAI NewClient ready", "model", cfg.Model)
	return &Client{
		chat:                openAIChatAdapter{client: api},
		model:               cfg.Model,
		temperature:         cfg.Temperature,
		maxCompletionTokens: cfg.MaxCompletionTokens,
	}, nil
}

// GeneratePrompt returns a completion for the given system and user prompts.
func (c *Client) GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := c.model
	if model == "" {
		model = DefaultModel
	}
	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	}
	if c.temperature > 0 {
		params.Temperature = openai.Float(c.temperature)
	}
	if c.maxCompletionTokens > 0 {
		params.MaxCompletionTokens = openai.Int(c.maxCompletionTokens)
	}

	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("GenAI GeneratePrompt failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("GenAI GeneratePrompt empty response")
		return "", ErrNoChoicesReturned
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateDebrief produces the spoken post-run debrief from a session
// summary.
func (c *Client) GenerateDebrief(ctx context.Context, summary models.SessionSummary) (string, error) {
	out, err := c.GeneratePrompt(ctx, debriefSystemPrompt, debriefUserPrompt(summary))
	if err != nil {
		return "", fmt.Errorf("failed to generate debrief: %w", err)
	}
	slog.Debug("GenAI GenerateDebrief succeeded", "session", summary.SessionID, "length", len(out))
	return out, nil
}

// debriefUserPrompt flattens the summary into the facts the model may use.
func debriefUserPrompt(s models.SessionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Distance: %s.\n", models.SpokenDistance(s.Distance, s.Unit))
	fmt.Fprintf(&b, "Duration: %s.\n", models.SpokenDuration(s.Duration))
	if s.AveragePace > 0 {
		fmt.Fprintf(&b, "Average pace: %s.\n", models.SpokenPace(s.AveragePace, s.Unit))
	}
	if n := len(s.Splits); n > 0 {
		fmt.Fprintf(&b, "Splits completed: %d.\n", n)
		if last := s.Splits[n-1]; last.Pace > 0 {
			fmt.Fprintf(&b, "Last split pace: %s.\n", models.SpokenPace(last.Pace, s.Unit))
		}
	}
	if len(s.ZoneDistribution) > 0 {
		var zones []string
		for z := models.Zone1; z <= models.Zone5; z++ {
			if share, ok := s.ZoneDistribution[z]; ok && share > 0 {
				zones = append(zones, fmt.Sprintf("%s %d%%", z, int(math.Round(share*100))))
			}
		}
		if len(zones) > 0 {
			fmt.Fprintf(&b, "Heart rate zones: %s.\n", strings.Join(zones, ", "))
		}
	}
	fmt.Fprintf(&b, "Coaching prompts spoken: %d.", s.PromptsSpoken)
	return b.String()
}

package llm

import (
	"context"

	"pin-support-be/pkg/capability"

	"golang.org/x/time/rate"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// LLMProvider defines the contract for any completion backend. Failures are
// reported as *capability.Error.
type LLMProvider interface {
	// Chat sends an ordered conversation and returns the model's reply
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

type rateLimitedProvider struct {
	next    LLMProvider
	limiter *rate.Limiter
}

// WithRateLimit throttles calls to next. A nil limiter returns next unchanged.
func WithRateLimit(next LLMProvider, limiter *rate.Limiter) LLMProvider {
	if limiter == nil {
		return next
	}
	return &rateLimitedProvider{next: next, limiter: limiter}
}

func (p *rateLimitedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", capability.Wrap("ratelimit", "complete", 0, err)
	}
	return p.next.Chat(ctx, history, options...)
}

func (p *rateLimitedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return p.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, options...)
}

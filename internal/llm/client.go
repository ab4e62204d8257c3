package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the backend answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates free-form text using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error)
	// GenerateJSON generates JSON-constrained output using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// GenerateOptions tunes a single generation request.
type GenerateOptions struct {
	SystemInstruction string
	Temperature       float32
}

// Option mutates GenerateOptions.
type Option func(*GenerateOptions)

// WithSystemInstruction sets a system prompt that frames the model's role.
func WithSystemInstruction(instruction string) Option {
	return func(o *GenerateOptions) {
		o.SystemInstruction = instruction
	}
}

// WithTemperature overrides the default sampling temperature.
func WithTemperature(temperature float32) Option {
	return func(o *GenerateOptions) {
		o.Temperature = temperature
	}
}

// defaultTemperature keeps scoring output stable between runs.
const defaultTemperature float32 = 0.1

func applyOptions(opts []Option) GenerateOptions {
	o := GenerateOptions{Temperature: defaultTemperature}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderGenAI:
		return NewGenAIClient(ctx, config, apiKey)
	case ProviderREST:
		return NewRESTClient(config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}
}

// Factory builds a Client for a caller-supplied API key. Sessions carry their own key,
// so clients are created per user action rather than once per process.
type Factory func(ctx context.Context, apiKey string) (Client, error)

// NewFactory returns a Factory bound to config.
func NewFactory(config *Config) Factory {
	return func(ctx context.Context, apiKey string) (Client, error) {
		return NewClient(ctx, config, apiKey)
	}
}

// Package llm provides centralized LLM configuration and client abstractions.
// Callers pick a model tier; the provider decides which backend serves it.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction, basic summarization
	TierLite ModelTier = "lite"
	// TierStandard is for structured scoring output such as match analysis
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form rewriting such as CV tailoring
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM backend implementation
type Provider string

const (
	// ProviderGemini uses the github.com/google/generative-ai-go SDK
	ProviderGemini Provider = "gemini"
	// ProviderGenAI uses the unified google.golang.org/genai SDK
	ProviderGenAI Provider = "genai"
	// ProviderREST posts directly to the Gemini REST generateContent endpoint
	ProviderREST Provider = "rest"
)

// DefaultRESTBaseURL is the public Gemini REST endpoint root.
const DefaultRESTBaseURL = "https://generativelanguage.googleapis.com"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// BaseURL is only used by ProviderREST.
	BaseURL string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		BaseURL: DefaultRESTBaseURL,
	}
}

// ParseProvider converts a user-supplied provider name into a Provider.
// An empty name selects the default provider.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderGenAI:
		return ProviderGenAI, nil
	case ProviderREST:
		return ProviderREST, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q (expected gemini, genai, or rest)", name)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := c.clone()
	newConfig.Models[tier] = model
	return newConfig
}

// WithAllModels returns a new Config where every tier uses the same model.
func (c *Config) WithAllModels(model string) *Config {
	newConfig := c.clone()
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		newConfig.Models[tier] = model
	}
	return newConfig
}

// WithProvider returns a new Config targeting a different provider.
func (c *Config) WithProvider(provider Provider) *Config {
	newConfig := c.clone()
	newConfig.Provider = provider
	return newConfig
}

func (c *Config) clone() *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string, len(c.Models)),
		BaseURL:  c.BaseURL,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	return newConfig
}

package llm

import (
	"context"
	"fmt"
	"strings"

	genaisdk "google.golang.org/genai"
)

// GenAIClient implements Client on top of the unified google.golang.org/genai SDK.
type GenAIClient struct {
	client *genaisdk.Client
	config *Config
}

// NewGenAIClient creates a client for the Gemini Developer API backend.
func NewGenAIClient(ctx context.Context, config *Config, apiKey string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genaisdk.NewClient(ctx, &genaisdk.ClientConfig{
		APIKey:  apiKey,
		Backend: genaisdk.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GenAIClient{client: client, config: config}, nil
}

// GenerateContent generates free-form text.
func (c *GenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	return c.generate(ctx, prompt, tier, "", applyOptions(opts))
}

// GenerateJSON generates output constrained to application/json.
func (c *GenAIClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	text, err := c.generate(ctx, prompt, tier, "application/json", applyOptions(opts))
	if err != nil {
		return "", err
	}
	return StripCodeFence(text), nil
}

// GetModel returns the model name for a tier
func (c *GenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the genai client holds no closable resources.
func (c *GenAIClient) Close() error {
	return nil
}

func (c *GenAIClient) generate(ctx context.Context, prompt string, tier ModelTier, mimeType string, o GenerateOptions) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	temperature := o.Temperature
	cfg := &genaisdk.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: mimeType,
	}
	if o.SystemInstruction != "" {
		cfg.SystemInstruction = genaisdk.NewContentFromText(o.SystemInstruction, genaisdk.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelName, genaisdk.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("nil response: %w", ErrEmptyResponse)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content in response: %w", ErrEmptyResponse)
	}
	return text, nil
}

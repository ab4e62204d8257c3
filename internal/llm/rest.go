package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// APIError is returned when the REST endpoint answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("model API returned HTTP %d: %s", e.StatusCode, body)
}

// RESTClient implements Client by calling the Gemini generateContent REST endpoint directly.
type RESTClient struct {
	http   *resty.Client
	config *Config
	apiKey string
}

type restPart struct {
	Text string `json:"text"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restGenerationConfig struct {
	Temperature      float32 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type restRequest struct {
	Contents          []restContent        `json:"contents"`
	SystemInstruction *restContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  restGenerationConfig `json:"generationConfig"`
}

// NewRESTClient creates a REST-backed client. config.BaseURL overrides the public endpoint.
func NewRESTClient(config *Config, apiKey string) (*RESTClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultRESTBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")

	return &RESTClient{http: client, config: config, apiKey: apiKey}, nil
}

// GenerateContent generates free-form text.
func (c *RESTClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	return c.generate(ctx, prompt, tier, "", applyOptions(opts))
}

// GenerateJSON generates output constrained to application/json.
func (c *RESTClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	text, err := c.generate(ctx, prompt, tier, "application/json", applyOptions(opts))
	if err != nil {
		return "", err
	}
	return StripCodeFence(text), nil
}

// GetModel returns the model name for a tier
func (c *RESTClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op for the REST client.
func (c *RESTClient) Close() error {
	return nil
}

func (c *RESTClient) generate(ctx context.Context, prompt string, tier ModelTier, mimeType string, o GenerateOptions) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	body := restRequest{
		Contents: []restContent{{Role: "user", Parts: []restPart{{Text: prompt}}}},
		GenerationConfig: restGenerationConfig{
			Temperature:      o.Temperature,
			ResponseMIMEType: mimeType,
		},
	}
	if o.SystemInstruction != "" {
		body.SystemInstruction = &restContent{Parts: []restPart{{Text: o.SystemInstruction}}}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetPathParam("model", modelName).
		SetBody(body).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("failed to call model API: %w", err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	parts := gjson.Get(resp.String(), "candidates.0.content.parts.#.text")
	var sb strings.Builder
	for _, p := range parts.Array() {
		sb.WriteString(p.String())
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content in response: %w", ErrEmptyResponse)
	}
	return text, nil
}

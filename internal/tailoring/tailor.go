// Package tailoring rewrites a CV for a specific job and renders the change markup.
package tailoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/prompts"
	"github.com/jonathan/career-assistant/internal/types"
)

// DefaultTimeout bounds a single tailoring call.
const DefaultTimeout = 30 * time.Second

// rewriteTemperature is used for the rewrite call.
const rewriteTemperature float32 = 0.4

const promptKey = "tailor-cv"

// Tailor asks the model for an ATS-oriented rewrite of a CV.
type Tailor struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
}

// Option configures a Tailor.
type Option func(*Tailor)

// WithTier selects the model tier used for rewriting.
func WithTier(tier llm.ModelTier) Option {
	return func(t *Tailor) { t.tier = tier }
}

// WithTimeout overrides DefaultTimeout. Zero disables the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(t *Tailor) { t.timeout = d }
}

// NewTailor creates a Tailor backed by client.
func NewTailor(client llm.Client, opts ...Option) *Tailor {
	t := &Tailor{
		client:  client,
		tier:    llm.TierAdvanced,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Generate returns the rewritten CV as opaque markup. The model output is not
// validated beyond being non-empty; a failure is returned as *TailoringError.
func (t *Tailor) Generate(ctx context.Context, cvText, jobText string) (types.TailoredCV, error) {
	if strings.TrimSpace(cvText) == "" {
		return "", &TailoringError{Message: "CV text is empty"}
	}
	if strings.TrimSpace(jobText) == "" {
		return "", &TailoringError{Message: "job description is empty"}
	}

	prompt, err := prompts.Render(prompts.TailoringFile, promptKey, map[string]string{
		"CV":             cvText,
		"JobDescription": jobText,
	})
	if err != nil {
		return "", &TailoringError{Message: "prompt unavailable", Cause: err}
	}
	system, err := prompts.Get(prompts.TailoringFile, prompts.SystemKey)
	if err != nil {
		return "", &TailoringError{Message: "prompt unavailable", Cause: err}
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	raw, err := t.client.GenerateContent(ctx, prompt, t.tier,
		llm.WithSystemInstruction(system),
		llm.WithTemperature(rewriteTemperature),
	)
	if err != nil {
		return "", &TailoringError{Message: describeBackendError(err), Cause: err}
	}

	markup := llm.StripCodeFence(raw)
	if strings.TrimSpace(markup) == "" {
		return "", &TailoringError{Message: "model returned an empty response"}
	}
	return types.TailoredCV(markup), nil
}

func describeBackendError(err error) string {
	var apiErr *llm.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("AI backend returned HTTP %d", apiErr.StatusCode)
	case errors.Is(err, llm.ErrEmptyResponse):
		return "model returned an empty response"
	case errors.Is(err, context.DeadlineExceeded):
		return "AI request timed out"
	case errors.Is(err, context.Canceled):
		return "AI request was cancelled"
	default:
		return "AI request failed"
	}
}

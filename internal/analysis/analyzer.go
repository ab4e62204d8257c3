// Package analysis scores how well a CV matches a job description.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/prompts"
	"github.com/jonathan/career-assistant/internal/schemas"
	"github.com/jonathan/career-assistant/internal/types"
)

// DefaultTimeout bounds a single analysis call.
const DefaultTimeout = 30 * time.Second

const promptKey = "match-analysis"

// Analyzer asks the model for a structured match analysis.
type Analyzer struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTier selects the model tier used for analysis.
func WithTier(tier llm.ModelTier) Option {
	return func(a *Analyzer) { a.tier = tier }
}

// WithTimeout overrides DefaultTimeout. Zero disables the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

// NewAnalyzer creates an Analyzer backed by client.
func NewAnalyzer(client llm.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:  client,
		tier:    llm.TierStandard,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze compares cvText with jobText. It makes exactly one model call; any failure,
// including output that violates the result schema, is returned as *AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, cvText, jobText string) (*types.AnalysisResult, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, &AnalysisError{Message: "CV text is empty"}
	}
	if strings.TrimSpace(jobText) == "" {
		return nil, &AnalysisError{Message: "job description is empty"}
	}

	prompt, err := prompts.Render(prompts.AnalysisFile, promptKey, map[string]string{
		"CV":             cvText,
		"JobDescription": jobText,
	})
	if err != nil {
		return nil, &AnalysisError{Message: "prompt unavailable", Cause: err}
	}
	system, err := prompts.Get(prompts.AnalysisFile, prompts.SystemKey)
	if err != nil {
		return nil, &AnalysisError{Message: "prompt unavailable", Cause: err}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	raw, err := a.client.GenerateJSON(ctx, prompt, a.tier, llm.WithSystemInstruction(system))
	if err != nil {
		return nil, &AnalysisError{Message: describeBackendError(err), Cause: err}
	}

	return Parse(raw)
}

// Parse validates raw model output against the match analysis schema and decodes it.
// Scores outside 0-100 or non-integer scores are rejected, never clamped.
func Parse(raw string) (*types.AnalysisResult, error) {
	cleaned := llm.StripCodeFence(raw)
	if cleaned == "" {
		return nil, &AnalysisError{Message: "model returned an empty response", Raw: raw}
	}
	// Prose around the object or a second value makes the whole body invalid.
	if !json.Valid([]byte(cleaned)) {
		return nil, &AnalysisError{Message: "model response is not valid JSON", Raw: raw}
	}

	if err := schemas.Validate(schemas.MatchAnalysis, cleaned); err != nil {
		var docErr *schemas.DocumentError
		if errors.As(err, &docErr) {
			return nil, &AnalysisError{Message: "model response is not valid JSON", Raw: raw, Cause: err}
		}
		return nil, &AnalysisError{Message: "model response does not match the expected schema", Raw: raw, Cause: err}
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &AnalysisError{Message: "model response could not be decoded", Raw: raw, Cause: err}
	}
	if err := result.Validate(); err != nil {
		return nil, &AnalysisError{Message: "model response failed validation", Raw: raw, Cause: err}
	}

	return &result, nil
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

// Package llmtest provides a function-field fake of llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/career-assistant/internal/llm"
)

// Call records one request made through MockClient.
type Call struct {
	Method  string
	Prompt  string
	Tier    llm.ModelTier
	Options llm.GenerateOptions
}

// MockClient implements llm.Client for testing
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GetModelFunc        func(tier llm.ModelTier) string
	CloseFunc           func() error

	mu    sync.Mutex
	calls []Call
}

var _ llm.Client = (*MockClient)(nil)

func (m *MockClient) record(method, prompt string, tier llm.ModelTier, opts []llm.Option) {
	o := llm.GenerateOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: method, Prompt: prompt, Tier: tier, Options: o})
	m.mu.Unlock()
}

func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error) {
	m.record("GenerateContent", prompt, tier, opts)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error) {
	m.record("GenerateJSON", prompt, tier, opts)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return `{"match_score": 50, "shared_skills": [], "missing_keywords": [], "role_relevance": "Mock relevance"}`, nil
}

func (m *MockClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

func (m *MockClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns a copy of every recorded request.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Factory returns an llm.Factory that always hands out m and records the keys it was given.
func (m *MockClient) Factory(keys *[]string) llm.Factory {
	var mu sync.Mutex
	return func(_ context.Context, apiKey string) (llm.Client, error) {
		if keys != nil {
			mu.Lock()
			*keys = append(*keys, apiKey)
			mu.Unlock()
		}
		return m, nil
	}
}

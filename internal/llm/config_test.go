package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	// Empty config should return empty string
	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))

	// New config should have custom model
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))

	// Other tiers should be copied
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
}

func TestModelTierConstants(t *testing.T) {
	assert.Equal(t, ModelTier("lite"), TierLite)
	assert.Equal(t, ModelTier("standard"), TierStandard)
	assert.Equal(t, ModelTier("advanced"), TierAdvanced)
}

func TestWithAllModels(t *testing.T) {
	config := DefaultConfig().WithAllModels("gemini-2.0-flash")

	assert.Equal(t, "gemini-2.0-flash", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.0-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.0-flash", config.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-pro", DefaultConfig().GetModel(TierAdvanced))
}

func TestWithProvider(t *testing.T) {
	config := DefaultConfig()
	restConfig := config.WithProvider(ProviderREST)

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, ProviderREST, restConfig.Provider)
	assert.Equal(t, DefaultRESTBaseURL, restConfig.BaseURL)
}

func TestProviderConstants(t *testing.T) {
	assert.Equal(t, Provider("gemini"), ProviderGemini)
	assert.Equal(t, Provider("genai"), ProviderGenAI)
	assert.Equal(t, Provider("rest"), ProviderREST)
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{"", ProviderGemini, false},
		{"gemini", ProviderGemini, false},
		{" GenAI ", ProviderGenAI, false},
		{"rest", ProviderREST, false},
		{"openai", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(t.Context(), &Config{Provider: "bogus"}, "key")
	assert.Error(t, err)
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(t.Context(), DefaultConfig().WithProvider(ProviderREST), "")
	assert.Error(t, err)
}

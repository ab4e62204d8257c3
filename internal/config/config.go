// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/career-assistant/internal/llm"
)

// Environment variables consulted for the AI key, in priority order.
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// Config represents settings that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// AI backend
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`             // Gemini API key
	Provider    string `json:"provider,omitempty" yaml:"provider,omitempty"`           // gemini, genai or rest
	Model       string `json:"model,omitempty" yaml:"model,omitempty"`                 // Overrides every tier's model
	RESTBaseURL string `json:"rest_base_url,omitempty" yaml:"rest_base_url,omitempty"` // Only for the rest provider

	// Timeouts
	AITimeoutSeconds     int `json:"ai_timeout_seconds,omitempty" yaml:"ai_timeout_seconds,omitempty"`
	ScrapeTimeoutSeconds int `json:"scrape_timeout_seconds,omitempty" yaml:"scrape_timeout_seconds,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Retry blocked pages with a headless browser
	Verbose    bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`         // Print detailed debug information

	// Server
	Port              int `json:"port,omitempty" yaml:"port,omitempty"`
	SessionTTLMinutes int `json:"session_ttl_minutes,omitempty" yaml:"session_ttl_minutes,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Provider:             string(llm.ProviderGemini),
		AITimeoutSeconds:     30,
		ScrapeTimeoutSeconds: 10,
		Port:                 8080,
		SessionTTLMinutes:    120,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required values such as the API key are checked later by ResolveAPIKey.
func (c *Config) Validate() error {
	if _, err := llm.ParseProvider(c.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.AITimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'ai_timeout_seconds' must be non-negative")
	}
	if c.ScrapeTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'scrape_timeout_seconds' must be non-negative")
	}
	if c.SessionTTLMinutes < 0 {
		return fmt.Errorf("config error: 'session_ttl_minutes' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}

	if c.RESTBaseURL != "" {
		u, err := url.Parse(c.RESTBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'rest_base_url' is not an absolute URL: %s", c.RESTBaseURL)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.RESTBaseURL == "" {
		result.RESTBaseURL = defaults.RESTBaseURL
	}

	if result.AITimeoutSeconds == 0 {
		result.AITimeoutSeconds = defaults.AITimeoutSeconds
	}
	if result.ScrapeTimeoutSeconds == 0 {
		result.ScrapeTimeoutSeconds = defaults.ScrapeTimeoutSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.SessionTTLMinutes == 0 {
		result.SessionTTLMinutes = defaults.SessionTTLMinutes
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// AITimeout returns the per-call AI deadline.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// ScrapeTimeout returns the job page fetch deadline.
func (c *Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.ScrapeTimeoutSeconds) * time.Second
}

// SessionTTL returns how long idle server sessions are kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// LLMConfig builds the model configuration for the selected provider.
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return nil, &ConfigurationError{Message: "invalid provider", Cause: err}
	}

	out := llm.DefaultConfig().WithProvider(provider)
	if c.Model != "" {
		out = out.WithAllModels(c.Model)
	}
	if c.RESTBaseURL != "" {
		out.BaseURL = c.RESTBaseURL
	}
	return out, nil
}

// ResolveAPIKey picks the AI key: flag, then config file, then GEMINI_API_KEY, then GOOGLE_API_KEY.
func ResolveAPIKey(flagValue string, cfg *Config) (string, error) {
	if key := strings.TrimSpace(flagValue); key != "" {
		return key, nil
	}
	if cfg != nil {
		if key := strings.TrimSpace(cfg.APIKey); key != "" {
			return key, nil
		}
	}
	for _, name := range apiKeyEnvVars {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key, nil
		}
	}
	return "", &ConfigurationError{Message: ErrMissingAPIKey}
}

// EnvAPIKey returns the key from the environment only, or "".
func EnvAPIKey() string {
	key, err := ResolveAPIKey("", nil)
	if err != nil {
		return ""
	}
	return key
}

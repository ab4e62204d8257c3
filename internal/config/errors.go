package config

import "fmt"

// ConfigurationError reports missing or invalid settings, most commonly a missing AI API key.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// ErrMissingAPIKey is the message used when no AI key could be found.
const ErrMissingAPIKey = "no AI API key: pass --api-key, set api_key in the config file, or export GEMINI_API_KEY"

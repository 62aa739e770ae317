package llm

import (
	"context"
	"errors"
	"os"
)

// ErrMissingAPIKey is returned when a provider's key is not configured.
var ErrMissingAPIKey = errors.New("llm API key not set")

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Option keys understood by every provider.
const (
	OptModel       = "model"
	OptTemperature = "temperature"
	OptMaxTokens   = "max_tokens"
	OptAPIKey      = "api_key"
)

const defaultMaxTokens = 4096

func optString(options map[string]interface{}, key, fallback string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return fallback
}

// optFloat returns the option as a float; temperature 0 is a legal value so
// presence is reported separately.
func optFloat(options map[string]interface{}, key string) (float64, bool) {
	switch v := options[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func optInt(options map[string]interface{}, key string, fallback int) int {
	switch v := options[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}

// apiKey returns the api_key option, or the first non-empty env variable.
func apiKey(options map[string]interface{}, envVars ...string) string {
	if key := optString(options, OptAPIKey, ""); key != "" {
		return key
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

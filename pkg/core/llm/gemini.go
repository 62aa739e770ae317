package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google's Gemini models.
type GeminiProvider struct {
	Model string // e.g. "gemini-2.0-flash"
}

// Ensure interface compliance
var _ Provider = (*GeminiProvider)(nil)

// GenerateResponse sends a generateContent request through the GenAI SDK.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	key := apiKey(options, "GEMINI_API_KEY")
	if key == "" {
		return "", fmt.Errorf("gemini: %w (GEMINI_API_KEY)", ErrMissingAPIKey)
	}

	model := p.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	model = optString(options, OptModel, model)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(optInt(options, OptMaxTokens, defaultMaxTokens)),
	}
	if temp, ok := optFloat(options, OptTemperature); ok {
		config.Temperature = genai.Ptr(float32(temp))
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	zerolog.Ctx(ctx).Debug().Str("provider", "gemini").Str("model", model).Msg("generating")
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}

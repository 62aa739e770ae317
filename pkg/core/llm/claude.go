package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

// ClaudeProvider implements the Provider interface for Anthropic models.
type ClaudeProvider struct {
	Model string
	// BaseURL overrides the API host, for tests and proxies.
	BaseURL string
}

var _ Provider = (*ClaudeProvider)(nil)

func (p *ClaudeProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	key := apiKey(options, "ANTHROPIC_API_KEY")
	if key == "" {
		return "", fmt.Errorf("claude: %w (ANTHROPIC_API_KEY)", ErrMissingAPIKey)
	}

	model := p.Model
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	model = optString(options, OptModel, model)

	opts := []option.RequestOption{option.WithAPIKey(key)}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(optInt(options, OptMaxTokens, defaultMaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if temp, ok := optFloat(options, OptTemperature); ok {
		params.Temperature = anthropic.Float(temp)
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	zerolog.Ctx(ctx).Debug().Str("provider", "claude").Str("model", model).Msg("generating")
	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}
	return text.String(), nil
}

func (p *ClaudeProvider) AdaptInstructions(raw string) string {
	return raw
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ChatProvider talks to any OpenAI-compatible chat completions API through
// go-openai. OpenAI, DeepSeek, Qwen (DashScope compatible mode), Kimi and
// Doubao differ only in base URL, model and key variable.
type ChatProvider struct {
	Name string
	// BaseURL is the API root; the client appends /chat/completions.
	BaseURL      string
	DefaultModel string
	KeyEnv       []string
	// Style is prepended to the system prompt by AdaptInstructions.
	Style string

	HTTPClient *http.Client
}

var _ Provider = (*ChatProvider)(nil)

func NewOpenAIProvider() *ChatProvider {
	return &ChatProvider{
		Name:         "openai",
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4.1",
		KeyEnv:       []string{"OPENAI_API_KEY"},
	}
}

func NewDeepSeekProvider() *ChatProvider {
	return &ChatProvider{
		Name:         "deepseek",
		BaseURL:      "https://api.deepseek.com/v1",
		DefaultModel: "deepseek-chat",
		KeyEnv:       []string{"DEEPSEEK_API_KEY"},
	}
}

func NewQwenProvider() *ChatProvider {
	return &ChatProvider{
		Name:         "qwen",
		BaseURL:      "https://dashscope.aliyuncs.com/compatible-mode/v1",
		DefaultModel: "qwen-max",
		KeyEnv:       []string{"DASHSCOPE_API_KEY", "QWEN_API_KEY"},
	}
}

// NewKimiProvider is tuned for long-context financial documents.
func NewKimiProvider() *ChatProvider {
	return &ChatProvider{
		Name:         "kimi",
		BaseURL:      "https://api.moonshot.cn/v1",
		DefaultModel: "moonshot-v1-32k",
		KeyEnv:       []string{"MOONSHOT_API_KEY"},
		Style:        "Write in English. Keep every figure exactly as given.",
	}
}

// NewDoubaoProvider needs the Ark endpoint id as the model in production.
func NewDoubaoProvider() *ChatProvider {
	return &ChatProvider{
		Name:         "doubao",
		BaseURL:      "https://ark.cn-beijing.volces.com/api/v3",
		DefaultModel: "doubao-pro-32k",
		KeyEnv:       []string{"ARK_API_KEY"},
		Style:        "Write in English. Keep every figure exactly as given.",
	}
}

func (p *ChatProvider) client(key string) *openai.Client {
	cfg := openai.DefaultConfig(key)
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	if p.HTTPClient != nil {
		cfg.HTTPClient = p.HTTPClient
	} else {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return openai.NewClientWithConfig(cfg)
}

// chatTemperature maps a requested temperature onto the request field.
// go-openai drops a zero temperature from the body, which servers then read
// as their default of 1, so zero is sent as the smallest positive float32.
func chatTemperature(temp float64) float32 {
	if temp <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(temp)
}

func (p *ChatProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	key := apiKey(options, p.KeyEnv...)
	if key == "" {
		return "", fmt.Errorf("%s: %w (%v)", p.Name, ErrMissingAPIKey, p.KeyEnv)
	}

	req := openai.ChatCompletionRequest{
		Model:     optString(options, OptModel, p.DefaultModel),
		MaxTokens: optInt(options, OptMaxTokens, defaultMaxTokens),
	}
	if systemPrompt != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	if temp, ok := optFloat(options, OptTemperature); ok {
		req.Temperature = chatTemperature(temp)
	}

	zerolog.Ctx(ctx).Debug().Str("provider", p.Name).Str("model", req.Model).Msg("generating")
	resp, err := p.client(key).CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.wrapError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s returned no choices", p.Name)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *ChatProvider) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error: status=%d: %w", p.Name, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s API error: status=%d: %w", p.Name, reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("%s API call failed: %w", p.Name, err)
}

func (p *ChatProvider) AdaptInstructions(raw string) string {
	if p.Style == "" {
		return raw
	}
	if raw == "" {
		return p.Style
	}
	return p.Style + "\n\n" + raw
}

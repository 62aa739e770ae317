package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"corporate_analyst/pkg/core/llm"

	"github.com/rs/zerolog"
)

// Agent names.
const (
	Narrative = "narrative"
)

type Config struct {
	ActiveProvider string                 `yaml:"active_provider" validate:"omitempty,oneof=gemini openai deepseek qwen kimi doubao claude"`
	Model          string                 `yaml:"model"`
	Temperature    float64                `yaml:"temperature" validate:"gte=0,lte=2"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

// Manager routes agent prompts to LLM providers. The active provider can be
// switched at runtime, so access is guarded.
type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
}

// DefaultProviders returns every provider the manager knows by name.
func DefaultProviders() map[string]llm.Provider {
	return map[string]llm.Provider{
		"gemini":   &llm.GeminiProvider{},
		"claude":   &llm.ClaudeProvider{},
		"openai":   llm.NewOpenAIProvider(),
		"deepseek": llm.NewDeepSeekProvider(),
		"qwen":     llm.NewQwenProvider(),
		"kimi":     llm.NewKimiProvider(),
		"doubao":   llm.NewDoubaoProvider(),
	}
}

func NewManager(config Config) *Manager {
	return NewManagerWithProviders(config, DefaultProviders())
}

// NewManagerWithProviders is NewManager with an explicit provider set.
func NewManagerWithProviders(config Config, providers map[string]llm.Provider) *Manager {
	if config.ActiveProvider == "" {
		config.ActiveProvider = "gemini"
	}
	return &Manager{config: config, providers: providers}
}

// GetProvider resolves the provider for an agent: its own override first,
// then the global active provider.
func (m *Manager) GetProvider(agentType string) (llm.Provider, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p, agentConfig.Provider, nil
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p, m.config.ActiveProvider, nil
	}
	return nil, "", fmt.Errorf("no provider configured for agent %s (active %q)", agentType, m.config.ActiveProvider)
}

// GetProviderByName retrieves a provider instance by its name (e.g. "deepseek", "gemini").
func (m *Manager) GetProviderByName(name string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providers[name]
}

// ExecutePrompt adapts the system prompt to the chosen model and sends it.
// Model and temperature come from config unless options set them.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider, name, err := m.GetProvider(agentType)
	if err != nil {
		return "", err
	}

	opts := m.defaultOptions(agentType)
	for k, v := range options {
		opts[k] = v
	}

	zerolog.Ctx(ctx).Debug().Str("agent", agentType).Str("provider", name).Msg("executing prompt")
	return provider.GenerateResponse(ctx, rawPrompt, provider.AdaptInstructions(rawSystemPrompt), opts)
}

func (m *Manager) defaultOptions(agentType string) map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	opts := map[string]interface{}{
		llm.OptTemperature: m.config.Temperature,
	}
	model := m.config.Model
	if ac, ok := m.config.Agents[agentType]; ok && ac.Model != "" {
		model = ac.Model
	}
	if model != "" {
		opts[llm.OptModel] = model
	}
	return opts
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// ProviderNames lists the registered providers, sorted.
func (m *Manager) ProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

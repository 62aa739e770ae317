package narrative

import (
	"context"
	"errors"
	"testing"

	"corporate_analyst/pkg/core/agent"
	"corporate_analyst/pkg/core/llm"
	"corporate_analyst/pkg/core/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	reply   string
	err     error
	calls   int
	agent   string
	prompt  string
	system  string
	options map[string]interface{}
}

func (s *stubExecutor) ExecutePrompt(_ context.Context, agentType, rawPrompt, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	s.calls++
	s.agent, s.prompt, s.system, s.options = agentType, rawPrompt, rawSystemPrompt, options
	return s.reply, s.err
}

func library(t *testing.T) *prompt.Registry {
	t.Helper()
	r, err := prompt.NewLibrary("")
	require.NoError(t, err)
	return r
}

func TestWriter_Generate(t *testing.T) {
	exec := &stubExecutor{reply: "```markdown\n## 1. Executive Summary\nBuy.\n```"}
	w := NewWriter(exec, library(t))

	report, err := w.Generate(context.Background(), " msft ", "Gross Margin: 69.76%")
	require.NoError(t, err)
	assert.Equal(t, "## 1. Executive Summary\nBuy.", report)

	assert.Equal(t, agent.Narrative, exec.agent)
	assert.Contains(t, exec.prompt, "TICKER: MSFT")
	assert.Contains(t, exec.prompt, "Gross Margin: 69.76%")
	assert.NotEmpty(t, exec.system)
	assert.Equal(t, 0.0, exec.options[llm.OptTemperature])
}

func TestWriter_Validation(t *testing.T) {
	exec := &stubExecutor{reply: "x"}
	w := NewWriter(exec, library(t))

	_, err := w.Generate(context.Background(), "  ", "text")
	assert.ErrorIs(t, err, ErrEmptyTicker)
	_, err = w.Generate(context.Background(), "AAPL", "\n")
	assert.ErrorIs(t, err, ErrEmptyAnalysis)
	assert.Zero(t, exec.calls)
}

func TestWriter_ProviderErrorIsWrappedNotRetried(t *testing.T) {
	exec := &stubExecutor{err: llm.ErrMissingAPIKey}
	w := NewWriter(exec, library(t))

	_, err := w.Generate(context.Background(), "AAPL", "text")
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Equal(t, 1, exec.calls)

	exec = &stubExecutor{reply: "   "}
	_, err = NewWriter(exec, library(t)).Generate(context.Background(), "AAPL", "text")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, llm.ErrMissingAPIKey))
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("## Risk Factors\n\n- Macro\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "<li>Macro</li>")
	assert.NotContains(t, html, "<script>")
}

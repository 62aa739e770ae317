// Package narrative turns the plain-text analysis into a long-form equity
// research report through an LLM.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"corporate_analyst/pkg/core/agent"
	"corporate_analyst/pkg/core/llm"
	"corporate_analyst/pkg/core/prompt"
	"corporate_analyst/pkg/core/utils"

	"github.com/rs/zerolog"
)

// DefaultFileName is the download name of the narrative document.
const DefaultFileName = "equity_research_report.docx"

var (
	ErrEmptyTicker   = errors.New("ticker is required")
	ErrEmptyAnalysis = errors.New("analysis text is required")
)

// Executor sends a prompt on behalf of a named agent. *agent.Manager
// satisfies it.
type Executor interface {
	ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error)
}

// Writer renders the report prompt and calls the model once. Failures are
// returned wrapped; nothing is retried.
type Writer struct {
	exec    Executor
	prompts *prompt.Registry
}

func NewWriter(exec Executor, prompts *prompt.Registry) *Writer {
	return &Writer{exec: exec, prompts: prompts}
}

// Generate returns the markdown report for ticker built from analysisText.
func (w *Writer) Generate(ctx context.Context, ticker, analysisText string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", ErrEmptyTicker
	}
	if strings.TrimSpace(analysisText) == "" {
		return "", ErrEmptyAnalysis
	}

	pt, err := w.prompts.GetPrompt(prompt.EquityResearchReport)
	if err != nil {
		return "", err
	}
	userPrompt, err := prompt.RenderUserPrompt(pt, prompt.NewContext().
		Set("Ticker", ticker).
		Set("AnalysisText", analysisText))
	if err != nil {
		return "", err
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().Str("ticker", ticker).Msg("generating narrative report")

	out, err := w.exec.ExecutePrompt(ctx, agent.Narrative, userPrompt, pt.SystemPrompt, map[string]interface{}{
		llm.OptTemperature: 0.0,
	})
	if err != nil {
		logger.Error().Err(err).Str("ticker", ticker).Msg("narrative generation failed")
		return "", fmt.Errorf("narrative generation for %s failed: %w", ticker, err)
	}

	report := utils.CleanMarkdown(out)
	if report == "" {
		return "", fmt.Errorf("narrative generation for %s returned no text", ticker)
	}
	if !utils.HasHeadings(report) {
		logger.Warn().Str("ticker", ticker).Msg("narrative report has no section headings")
	}
	return report, nil
}

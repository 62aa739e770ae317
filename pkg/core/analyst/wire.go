package analyst

import (
	"context"
	"errors"
	"fmt"

	"corporate_analyst/pkg/core/agent"
	"corporate_analyst/pkg/core/config"
	"corporate_analyst/pkg/core/marketdata"
	"corporate_analyst/pkg/core/narrative"
	"corporate_analyst/pkg/core/prompt"
	"corporate_analyst/pkg/core/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Components is everything a binary needs, built from config.
type Components struct {
	Service *Service
	Agents  *agent.Manager
	Metrics *Metrics
	// Close releases the database pool, if one was opened.
	Close func()
}

// Build wires the market data provider, the LLM agents, the prompt library
// and the optional rating log. A database that cannot be reached disables
// the rating log instead of failing startup.
func Build(ctx context.Context, cfg config.Config, reg prometheus.Registerer) (*Components, error) {
	logger := zerolog.Ctx(ctx)

	data, err := marketdata.New(cfg.MarketData)
	if err != nil {
		return nil, err
	}

	prompts, err := prompt.NewLibrary(cfg.Prompts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt library: %w", err)
	}
	logger.Info().Int("prompts", prompts.Count()).Msg("prompt library loaded")

	agents := agent.NewManager(cfg.LLM)
	metrics := NewMetrics(reg)
	c := &Components{Agents: agents, Metrics: metrics, Close: func() {}}

	opts := []Option{
		WithMetrics(metrics),
		WithNarrative(narrative.NewWriter(agents, prompts)),
	}

	pool, err := store.Connect(ctx, cfg.Database)
	switch {
	case errors.Is(err, store.ErrDisabled):
		logger.Debug().Msg("rating log disabled")
	case err != nil:
		logger.Warn().Err(err).Msg("rating log unavailable, continuing without it")
	default:
		ratings := store.NewRatingLog(pool)
		if err := ratings.Migrate(ctx); err != nil {
			logger.Warn().Err(err).Msg("rating log migration failed, continuing without it")
			pool.Close()
		} else {
			opts = append(opts, WithRatingLog(ratings))
			c.Close = pool.Close
		}
	}

	c.Service = NewService(data, opts...)
	logger.Info().
		Str("market_data", data.Name()).
		Str("llm", agents.GetActiveProvider()).
		Msg("analyst service ready")
	return c, nil
}

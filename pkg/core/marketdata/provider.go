// Package marketdata fetches company info and financial statement tables for
// a ticker from an upstream source.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"corporate_analyst/pkg/core/statement"
	"corporate_analyst/pkg/models"
)

var (
	// ErrNotFound means the upstream does not know the ticker.
	ErrNotFound = errors.New("ticker not found")
	// ErrRateLimited means the upstream refused the request for rate reasons.
	ErrRateLimited = errors.New("market data rate limited")
)

// Statements holds the three statement tables of a company, most recent
// period first. Any of them may be nil or empty.
type Statements struct {
	Income   *statement.Table `json:"income"`
	Balance  *statement.Table `json:"balance"`
	CashFlow *statement.Table `json:"cash_flow"`
}

// Provider is an upstream source of fundamentals.
type Provider interface {
	Name() string
	Info(ctx context.Context, ticker string) (models.CompanyInfo, error)
	Statements(ctx context.Context, ticker string) (*Statements, error)
}

// Provider kinds.
const (
	KindYahoo = "yahoo"
	KindFile  = "file"
)

// Config selects and tunes the provider.
type Config struct {
	Provider          string        `yaml:"provider" validate:"omitempty,oneof=yahoo file"`
	FileDir           string        `yaml:"file_dir" validate:"required_if=Provider file"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond int           `yaml:"requests_per_second" validate:"gte=0"`
}

// New builds the provider named by cfg.Provider. Yahoo is the default.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", KindYahoo:
		var opts []YahooOption
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.RequestsPerSecond > 0 {
			opts = append(opts, WithRateLimit(cfg.RequestsPerSecond))
		}
		return NewYahooProvider(opts...), nil
	case KindFile:
		return NewFileProvider(cfg.FileDir), nil
	default:
		return nil, fmt.Errorf("unknown market data provider %q", cfg.Provider)
	}
}

package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"corporate_analyst/pkg/core/statement"
	"corporate_analyst/pkg/core/utils"
	"corporate_analyst/pkg/models"

	"github.com/rs/zerolog"
)

// fixture is the on-disk layout of a FileProvider ticker file. Statement
// tables use either the {"periods", "rows"} form or an ordered object of
// label -> values.
type fixture struct {
	Info     models.CompanyInfo `json:"info"`
	Income   json.RawMessage    `json:"income"`
	Balance  json.RawMessage    `json:"balance"`
	CashFlow json.RawMessage    `json:"cash_flow"`
}

// FileProvider serves fundamentals from <dir>/<TICKER>.json or .hjson. The
// files may be hand-edited: trailing commas, comments and Hjson are
// accepted.
type FileProvider struct {
	dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

func (p *FileProvider) Name() string { return KindFile }

func (p *FileProvider) Info(ctx context.Context, ticker string) (models.CompanyInfo, error) {
	fx, err := p.load(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return fx.Info, nil
}

func (p *FileProvider) Statements(ctx context.Context, ticker string) (*Statements, error) {
	fx, err := p.load(ctx, ticker)
	if err != nil {
		return &Statements{}, err
	}
	st := &Statements{}
	for _, part := range []struct {
		name string
		raw  json.RawMessage
		dst  **statement.Table
	}{
		{"income", fx.Income, &st.Income},
		{"balance", fx.Balance, &st.Balance},
		{"cash_flow", fx.CashFlow, &st.CashFlow},
	} {
		if len(part.raw) == 0 || string(part.raw) == "null" {
			continue
		}
		t := statement.NewTable()
		if err := t.UnmarshalJSON(part.raw); err != nil {
			return st, fmt.Errorf("failed to read %s table for %s: %w", part.name, ticker, err)
		}
		*part.dst = t
	}
	return st, nil
}

func (p *FileProvider) load(ctx context.Context, ticker string) (*fixture, error) {
	name := strings.ToUpper(strings.TrimSpace(ticker))
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: invalid ticker %q", ErrNotFound, ticker)
	}

	for _, ext := range []string{".json", ".hjson"} {
		path := filepath.Join(p.dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading market data fixture")
		var fx fixture
		if _, err := utils.SmartParse(string(data), &fx); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return &fx, nil
	}
	return nil, fmt.Errorf("%w: no fixture for %s in %s", ErrNotFound, name, p.dir)
}

// Package config loads the application configuration: defaults, then the
// YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"corporate_analyst/pkg/core/agent"
	"corporate_analyst/pkg/core/logging"
	"corporate_analyst/pkg/core/marketdata"
	"corporate_analyst/pkg/core/store"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is where the binaries look for the config file.
const DefaultPath = "config/analyst.yaml"

type ServerConfig struct {
	Addr         string        `yaml:"addr" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
}

type PromptsConfig struct {
	// Dir overrides the embedded prompt library when set.
	Dir string `yaml:"dir"`
}

type ExportConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Log        logging.Config    `yaml:"log"`
	MarketData marketdata.Config `yaml:"market_data"`
	LLM        agent.Config      `yaml:"llm"`
	Prompts    PromptsConfig     `yaml:"prompts"`
	Export     ExportConfig      `yaml:"export"`
	Database   store.Config      `yaml:"database"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Log:        logging.Config{Level: "info"},
		MarketData: marketdata.Config{Provider: marketdata.KindYahoo, Timeout: 15 * time.Second, RequestsPerSecond: 2},
		LLM: agent.Config{
			ActiveProvider: "gemini",
			Agents: map[string]agent.AgentConfig{
				agent.Narrative: {Description: "Writes the equity research report"},
			},
		},
		Export:   ExportConfig{Dir: "reports"},
		Database: store.Config{ConnectTimeout: 5 * time.Second},
	}
}

// Load reads .env (when present) and the YAML file at path. A missing file
// is not an error; defaults and environment still apply.
func Load(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg, os.LookupEnv)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set("ANALYST_ADDR", &cfg.Server.Addr)
	set("ANALYST_LOG_LEVEL", &cfg.Log.Level)
	set("ANALYST_MARKET_DATA_PROVIDER", &cfg.MarketData.Provider)
	set("ANALYST_MARKET_DATA_DIR", &cfg.MarketData.FileDir)
	set("ANALYST_LLM_PROVIDER", &cfg.LLM.ActiveProvider)
	set("ANALYST_EXPORT_DIR", &cfg.Export.Dir)
	set("DATABASE_URL", &cfg.Database.URL)
}

var validate = validator.New()

// Validate checks every section's constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

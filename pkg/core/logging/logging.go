// Package logging configures zerolog for the binaries and provides the HTTP
// access log middleware.
package logging

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Pretty bool   `yaml:"pretty"`
}

// Setup installs the global logger and returns a context carrying it.
// Libraries log through zerolog.Ctx(ctx), which falls back to the same
// logger when a context has none.
func Setup(cfg Config) context.Context {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// only the last directory of the caller
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		parts := strings.Split(file, "/")
		if len(parts) > 1 {
			return strings.Join(parts[len(parts)-2:], "/") + ":" + strconv.Itoa(line)
		}
		return file + ":" + strconv.Itoa(line)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var base zerolog.Logger
	if cfg.Pretty {
		zerolog.TimeFieldFormat = time.RFC3339
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		base = zerolog.New(os.Stderr)
	}

	logger := base.With().Timestamp().Str("@tag", tag()).Caller().Logger()
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	return logger.WithContext(context.Background())
}

func tag() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "analyst"
	}
	return filepath.Base(os.Args[0])
}

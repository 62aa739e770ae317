package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corporate_analyst/pkg/api/server"
	"corporate_analyst/pkg/core/analyst"
	"corporate_analyst/pkg/core/config"
	"corporate_analyst/pkg/core/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	ctx := logging.Setup(cfg.Log)
	logger := zerolog.Ctx(ctx)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}

	comps, err := analyst.Build(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start analyst service")
	}
	defer comps.Close()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.NewRouter(server.Deps{
			Service:    comps.Service,
			Agents:     comps.Agents,
			MarketData: cfg.MarketData.Provider,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("API server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		comps.Close()
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/conorfennell/todoagenda/internal/config"
	"github.com/conorfennell/todoagenda/internal/logging"
	"github.com/conorfennell/todoagenda/internal/storage"
	"github.com/conorfennell/todoagenda/internal/validation"
	"github.com/conorfennell/todoagenda/internal/web"
)

func main() {
	// 1. Load configuration from defaults, file, env and flags
	fs := config.NewFlagSet(os.Args[0])
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// 2. Open the database
	db, err := storage.Open(storage.DSN(cfg.Database.Path, cfg.Database.BusyTimeout))
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer db.Close()
	log.Info().Str("path", cfg.Database.Path).Msg("Database opened successfully")

	// 3. Build the HTTP server
	policy := validation.Lenient
	if cfg.Dates.Strict {
		policy = validation.Strict
	}
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: web.NewServer(db, web.Options{
			DatePolicy:  policy,
			Metrics:     cfg.Metrics.Enabled,
			CORSOrigins: cfg.Server.CORSOrigins,
			RateLimit:   cfg.Server.RateLimit,
			RateWindow:  cfg.Server.RateWindow,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 4. Serve until interrupted, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Bool("strict_dates", cfg.Dates.Strict).Msg("Server running")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
			db.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"rmlong/internal/config"
	"rmlong/internal/database"
	"rmlong/internal/exitcodes"
	"rmlong/internal/fsops"
	"rmlong/internal/limiter"
	"rmlong/internal/logging"
	"rmlong/internal/metrics"
	"rmlong/internal/remover"
	"rmlong/internal/safety"
)

// openFS returns the filesystem commands operate on; tests swap it for a fake
var openFS = fsops.Native

// app holds everything a removal command needs, built from config and flags
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	closer  io.Closer
	db      *database.RemovalDB
	remover *remover.Remover
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, withCode(exitcodes.InvalidConfig, err)
		}
		cfg = loaded
	}

	if flags.dryRun {
		cfg.DryRun = true
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(flags.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, withCode(exitcodes.InvalidConfig, err)
	}
	return cfg, nil
}

func newApp(flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, withCode(exitcodes.InvalidConfig, err)
	}

	a := &app{cfg: cfg, logger: logger, closer: closer}

	metrics.Init()
	if cfg.MetricsEnabled() {
		if err := metrics.StartServer(cfg.PrometheusAddress(), logger); err != nil {
			a.Close()
			return nil, withCode(exitcodes.RuntimeError, fmt.Errorf("start metrics server: %w", err))
		}
	}

	opts := []remover.Option{
		remover.WithLogger(logger),
		remover.WithValidator(safety.NewValidator(cfg.AllowedRoots, cfg.ProtectedPaths)),
		remover.WithDryRun(cfg.DryRun),
		remover.WithDirOrder(cfg.Order()),
	}

	if lim := limiter.New(cfg.ResourceLimits.MaxDeletesPerSecond, cfg.ResourceLimits.Burst); lim != nil {
		opts = append(opts, remover.WithLimiter(lim))
	}

	if cfg.DatabasePath != "" {
		db, err := database.NewRemovalDB(cfg.DatabasePath)
		if err != nil {
			a.Close()
			return nil, withCode(exitcodes.RuntimeError, err)
		}
		a.db = db
		opts = append(opts, remover.WithRecorder(db))
	}

	if cfg.DryRun {
		logger.Info().Msg("DRY RUN MODE: nothing will be deleted")
	}

	a.remover = remover.New(openFS(), opts...)
	return a, nil
}

// Close releases the database, the metrics server and the log file
func (a *app) Close() {
	metrics.Shutdown(context.Background(), a.logger)
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("failed to close database")
		}
	}
	if err := a.closer.Close(); err != nil {
		a.logger.Error().Err(err).Msg("failed to close log file")
	}
}

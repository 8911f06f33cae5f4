// Package cli provides common CLI initialization utilities shared by
// cmd/spendtrend and cmd/alert-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendtrend/internal/config"
	"spendtrend/internal/ingest"
	"spendtrend/internal/log"
	"spendtrend/internal/sources"
	"spendtrend/internal/sources/csvfile"
	"spendtrend/internal/sources/google"
	"spendtrend/internal/sources/postgres"
	"spendtrend/internal/sources/sqlite"
)

// SetupLogger builds the process logger. debug wins over level; an unknown
// level falls back to info. Logs go to stderr so command output stays clean.
func SetupLogger(level string, debug bool) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if debug {
		lvl = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: lvl, Output: os.Stderr, Component: log.ComponentApp})
	log.SetDefault(logger)
	if err != nil && !debug {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads path, or ./.env when path is empty. A missing default
// file is fine; a missing explicit file is not.
func LoadEnvFile(path string) error {
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAliases returns the default alias table extended by path, if set.
func LoadAliases(path string) (ingest.Aliases, error) {
	if path == "" {
		return ingest.DefaultAliases(), nil
	}
	return ingest.LoadAliasFile(path)
}

// OpenSources resolves the ledger sources for a run. Explicit files win;
// otherwise cfg.LedgerSource decides. The returned closer releases any
// database handles and is never nil.
func OpenSources(ctx context.Context, cfg *config.Config, files []string, logger *log.Logger) ([]sources.Source, func(), error) {
	noop := func() {}

	if len(files) > 0 {
		srcs := make([]sources.Source, 0, len(files))
		for _, f := range files {
			srcs = append(srcs, csvfile.New(f))
		}
		return srcs, noop, nil
	}

	switch cfg.LedgerSource {
	case config.SourceCSV:
		if strings.TrimSpace(cfg.LedgerPath) == "" {
			return nil, noop, errors.New("no ledger given: pass --file or set LEDGER_PATH")
		}
		var srcs []sources.Source
		for _, p := range strings.Split(cfg.LedgerPath, ",") {
			if p = strings.TrimSpace(p); p != "" {
				srcs = append(srcs, csvfile.New(p))
			}
		}
		return srcs, noop, nil

	case config.SourceSQLite:
		src, err := sqlite.Open(cfg.SQLiteDBPath, cfg.SQLiteQuery)
		if err != nil {
			return nil, noop, err
		}
		return []sources.Source{src}, func() { _ = src.Close() }, nil

	case config.SourcePostgres:
		src, err := postgres.Open(ctx, cfg.PostgresURL, cfg.PostgresQuery)
		if err != nil {
			return nil, noop, err
		}
		return []sources.Source{src}, src.Close, nil

	case config.SourceSheets:
		client, err := google.New(ctx, google.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			LedgerRange:   cfg.GoogleLedgerRange,
			AlertsSheet:   cfg.GoogleAlertsSheet,
			Logger:        logger,
		})
		if err != nil {
			return nil, noop, err
		}
		return []sources.Source{client}, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown ledger source %q", cfg.LedgerSource)
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// The returned context is cancelled on SIGINT or SIGTERM, after cleanup
// has run or timeout has passed, whichever comes first. The channel is
// closed once shutdown has finished.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

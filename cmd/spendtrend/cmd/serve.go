package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"spendtrend/internal/amqp"
	"spendtrend/internal/cache"
	"spendtrend/internal/cli"
	"spendtrend/internal/config"
	apphttp "spendtrend/internal/http"
	"spendtrend/internal/ingest"
	"spendtrend/internal/log"
	"spendtrend/internal/middleware/ratelimit"
	"spendtrend/internal/services"
	"spendtrend/internal/session"
	"spendtrend/internal/sources"
)

var trustedProxies []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyses over a JSON API",
	Long: `Start the HTTP API. Ledgers are uploaded to POST /api/ledgers and
analyzed under /api/ledgers/{id}/...

Ledgers given with --file are loaded at startup into a session whose id
is logged.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringSliceVar(&trustedProxies, "trusted-proxy", nil, "extra proxy CIDR whose X-Forwarded-For is honored")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	aliases, err := cli.LoadAliases(cfg.AliasFile)
	if err != nil {
		return err
	}

	sessions := session.NewStore(session.Options{
		TTL:        cfg.SessionTTL,
		MaxEntries: cfg.SessionMax,
		Logger:     logger,
	})

	var publisher services.AlertPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Budget alerts disabled, AMQP unavailable", "error", err)
		} else {
			publisher = amqpClient
		}
	}

	if len(ledgerFiles) > 0 {
		if err := preload(cmd.Context(), cfg, aliases, sessions); err != nil {
			return err
		}
	}

	reports := services.NewReportService(publisher, logger)
	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		MaxUploadBytes: cfg.MaxUploadBytes,
		DefaultBudget:  cfg.DefaultBudget,
		DefaultHorizon: cfg.DefaultHorizon,
		Aliases:        aliases,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		TrustedProxies: trustedProxies,
		Logger:         logger,
	}, sessions, reports)
	if err != nil {
		return err
	}

	janitor := cache.NewJanitor(logger, sessions.Cleaner(), reports.Cleaner())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", log.FieldError, err)
			}
		}
	})
	go janitor.Run(ctx, time.Minute)

	logger.Info("Starting spendtrend server",
		"port", cfg.Port,
		"session_ttl", cfg.SessionTTL,
		"alerts", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	<-janitor.Done()
	logger.Info("Server stopped gracefully")
	return nil
}

func preload(ctx context.Context, cfg *config.Config, aliases ingest.Aliases, sessions *session.Store) error {
	srcs, closeSources, err := cli.OpenSources(ctx, cfg, ledgerFiles, logger)
	if err != nil {
		return err
	}
	defer closeSources()

	ledger, stats, err := sources.LoadAll(ctx, srcs, aliases, logger)
	if err != nil {
		return err
	}
	sess := sessions.Create(sourceLabel(srcs), ledger, stats)
	logger.Info("Preloaded ledger", log.FieldSessionID, sess.ID, log.FieldRowsKept, stats.Kept)
	return nil
}

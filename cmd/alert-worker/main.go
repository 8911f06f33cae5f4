package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spendtrend/internal/amqp"
	"spendtrend/internal/cli"
	"spendtrend/internal/log"
	"spendtrend/internal/services"
	"spendtrend/internal/sources/google"
)

func main() {
	var (
		envFile string
		debug   bool
	)
	rootCmd := &cobra.Command{
		Use:   "alert-worker",
		Short: "Store budget alerts published by spendtrend",
		Long: `alert-worker consumes budget alerts from the AMQP queue and appends
each one to GOOGLE_ALERTS_SHEET, or logs it when Sheets is not configured.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(envFile, debug)
		},
	}
	rootCmd.Flags().StringVar(&envFile, "config", "", "env file to load (default is .env)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(envFile string, debug bool) error {
	if err := cli.LoadEnvFile(envFile); err != nil {
		return err
	}
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), debug).WithComponent(log.ComponentWorker)
	logger.Info("Starting alert-worker")

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the alert worker")
	}

	var sink services.AlertSink
	if cfg.GoogleSpreadsheetID != "" && cfg.GoogleAlertsSheet != "" {
		client, err := google.New(context.Background(), google.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			AlertsSheet:   cfg.GoogleAlertsSheet,
			Logger:        logger,
		})
		if err != nil {
			return fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		sink = client
		logger.Info("Appending alerts to Google Sheets", "sheet", cfg.GoogleAlertsSheet)
	} else {
		sink = services.NewLogSink(logger)
		logger.Info("Google Sheets disabled - alerts are only logged")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer amqpClient.Close()

	processor := services.NewAlertProcessor(sink, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	err = amqpClient.ConsumeBudgetAlerts(ctx, processor.Handle)
	processed, failed := processor.Stats()
	logger.Info("Alert worker stopped", "processed", processed, "failed", failed)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("message consumption failed: %w", err)
	}
	<-done
	return nil
}

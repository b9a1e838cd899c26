package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/backend"
	"saldo/internal/cli"
	gsheet "saldo/internal/sheets/google"
	"saldo/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel).WithComponent("worker")
	if err := cfg.ValidateWorker(); err != nil {
		cli.Fatal(logger, "Worker configuration validation failed", err)
	}
	logger.Info("Starting saldo-worker")

	// The worker only reads the ledger; it never publishes.
	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	if backendConfig.Type != backend.SQLiteBackend {
		cli.Fatal(logger, "Worker needs the shared sqlite ledger", fmt.Errorf("backend %q", backendConfig.Type))
	}
	backendConfig.AMQPURL = ""
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", backendConfig.Type)
	}

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}

	exporter := worker.NewExportWorker(result.Service, sheetsClient)
	refresher := worker.NewSummaryRefresher(exporter, cfg.ExportInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := refresher.Stop(ctx); err != nil {
			logger.Warn("Summary refresher stop", "error", err)
		}
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	// Missed messages are covered by the summary rewrite; a failure here is
	// not fatal.
	if err := exporter.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
	}

	if err := refresher.Start(ctx); err != nil {
		cli.Fatal(logger, "Failed to start summary refresher", err)
	}

	go func() {
		err := amqpClient.ConsumeSettlements(ctx, cfg.ExportBatchSize, exporter.HandleSettlementMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"batch_size", cfg.ExportBatchSize,
		"summary_interval", cfg.ExportInterval)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

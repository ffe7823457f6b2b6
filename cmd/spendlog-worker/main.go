package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/backend"
	"spendlog/internal/cli"
	"spendlog/internal/persistence"
	"spendlog/internal/sheets"
	gsheet "spendlog/internal/sheets/google"
	"spendlog/internal/sheets/memory"
	"spendlog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting spendlog-worker")

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend is process-local; the worker will only ever see an empty list")
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", "error", err)
			}
		}()
	}

	var exporter sheets.TransactionExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		exporter = memory.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, exports are kept in memory only")
	}

	syncWorker := worker.NewSyncWorker(persistence.New(res.Store, cfg.StorageKey), exporter)

	logger.Info("Performing startup sync")
	if err := syncWorker.SyncNow(ctx); err != nil {
		logger.Error("Startup sync failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeTransactionEvents(gctx, syncWorker.HandleTransactionEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP_URL not set, relying on periodic sync only", "interval", cfg.SyncInterval)
	}

	g.Go(func() error {
		syncWorker.RunPeriodic(gctx, cfg.SyncInterval)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

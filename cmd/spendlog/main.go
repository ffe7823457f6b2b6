package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/assistant"
	"spendlog/internal/backend"
	"spendlog/internal/cli"
	apphttp "spendlog/internal/http"
	"spendlog/internal/kv"
	applog "spendlog/internal/log"
	"spendlog/internal/persistence"
	"spendlog/internal/services"
	"spendlog/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

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

	adapter := persistence.New(res.Store, cfg.StorageKey)
	st := store.New(ctx, adapter)

	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	completer := assistant.NewClient(assistant.Config{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.AssistantBaseURL,
		Model:       cfg.AssistantModel,
		MaxTokens:   cfg.AssistantMaxTokens,
		Temperature: float32(cfg.AssistantTemperature),
	})
	if !completer.Configured() {
		logger.Warn("GROQ_API_KEY not set, the assistant will ask for a key")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Transactions:          services.NewTransactionService(st, publisher),
		Chat:                  assistant.NewSession(completer, st.List),
		ChatRequestsPerMinute: cfg.ChatRequestsPerMinute,
		TrustedProxies:        cfg.TrustedProxies,
		Ready:                 readyCheck(res.Store, adapter.Key()),
		Logger:                applog.New(applog.Config{Component: applog.ComponentHTTP, Handler: logger.Handler()}),
	})
	srv.ReadTimeout = 10 * time.Second
	// Chat completions can take a while; there is no client-side timeout.
	srv.WriteTimeout = 2 * time.Minute
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spendlog server", applog.FieldOperation, applog.OpStartup, "port", cfg.Port, "backend", cfg.DataBackend, "transactions", st.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	runErr := g.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := st.Close(shutdownCtx); err != nil {
		logger.Error("Failed to flush pending writes", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
	}
	if amqpClient != nil {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", "error", err)
		}
	}
	if res.Cleanup != nil {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup error", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("Server error", "error", runErr, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

// readyCheck reports the backend as ready when the storage key can be read.
func readyCheck(s kv.Store, key string) func(context.Context) error {
	return func(ctx context.Context) error {
		if _, err := s.Get(ctx, key); err != nil && !errors.Is(err, kv.ErrNotFound) {
			return fmt.Errorf("storage: %w", err)
		}
		return nil
	}
}

package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg, nil)
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	stores, err := backend.NewFactory(logger.Logger.With(applog.FieldComponent, applog.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}

	// Events are optional; without a broker nothing is mirrored.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without events", applog.FieldError, err)
		} else {
			publisher = client
			logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewTransactionService(stores.Transactions, stores.Budgets, publisher, logger, services.Options{
		RecentLimit: cfg.RecentLimit,
		Cleanup:     stores.Cleanup,
	})
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to release resources", applog.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(svc, apphttp.Options{
		Addr:               net.JoinHostPort("", cfg.Port),
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		TrustedProxies:     cfg.TrustedProxies,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ResponseEnvelope:   cfg.ResponseEnvelope,
		Logger:             logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"budgets_enabled", cfg.BudgetsEnabled,
			"events", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		return
	}
	logger.Info("Server stopped gracefully")
}

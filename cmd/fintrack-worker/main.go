package main

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, nil)
	if err != nil {
		cli.Fatal(logger, "Worker configuration validation failed", err)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	ledger, err := google.New(ctx, google.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		TransactionsSheet:  cfg.GoogleSheetName,
		BudgetsSheet:       cfg.GoogleBudgetSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	logger.Info("Starting fintrack-worker",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"queue", cfg.AMQPQueue)

	if err := worker.NewLedgerWorker(ledger, logger).Run(ctx, client); err != nil {
		logger.Error("Ledger worker stopped with error", applog.FieldError, err)
		return
	}
	logger.Info("Ledger worker stopped")
}

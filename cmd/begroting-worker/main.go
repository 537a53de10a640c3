package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"begroting/internal/amqp"
	"begroting/internal/config"
	"begroting/internal/log"
	"begroting/internal/sheets"
	gsheet "begroting/internal/sheets/google"
	mem "begroting/internal/sheets/memory"
	"begroting/internal/storage"
	"begroting/internal/worker"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	logger.Info("starting begroting-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("sqlite init failed", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var source sheets.TransactionSource
	switch cfg.DataBackend {
	case "sheets":
		// Member names route person cells onto self/spouse; without a
		// stored setup the sheet's own shared markers still work.
		var selfName, spouseName string
		if setup, err := repo.LoadSetup(context.Background()); err == nil && setup != nil {
			selfName = setup.SelfName
			spouseName = setup.SpouseName
		}
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			ReadRange:     cfg.GoogleSheetRange,
			APIKey:        cfg.GoogleAPIKey,
			SelfName:      selfName,
			SpouseName:    spouseName,
		}, logger)
		if err != nil {
			logger.Error("sheets client init failed", log.FieldError, err)
			os.Exit(1)
		}
		source = client
		logger.Info("using sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		source = mem.New(time.Now(), 42)
		logger.Info("using memory backend with generated sample data")
	}

	// AMQP is optional; without it the worker runs on the timer alone.
	var broker worker.Broker
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("amqp unavailable, timer-only mode", log.FieldError, err)
	} else {
		defer amqpClient.Close()
		broker = amqpClient
	}

	w := worker.NewRefreshWorker(source, repo, broker, cfg.RefreshInterval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"begroting/internal/amqp"
	"begroting/internal/cache"
	"begroting/internal/config"
	"begroting/internal/derive"
	apphttp "begroting/internal/http"
	"begroting/internal/log"
	"begroting/internal/services"
	"begroting/internal/sheets"
	gsheet "begroting/internal/sheets/google"
	mem "begroting/internal/sheets/memory"
	"begroting/internal/storage"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	logger.Info("starting begroting server")

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

	// The fallback source serves requests while the stored snapshot is
	// still empty: the live feed on the sheets backend, generated sample
	// data otherwise.
	var fallback sheets.TransactionSource
	switch cfg.DataBackend {
	case "sheets":
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			ReadRange:     cfg.GoogleSheetRange,
			APIKey:        cfg.GoogleAPIKey,
		}, logger)
		if err != nil {
			logger.Error("sheets client init failed", log.FieldError, err)
			os.Exit(1)
		}
		fallback = client
		logger.Info("using sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		fallback = mem.New(time.Now(), 42)
		logger.Info("using memory backend with generated sample data")
	}

	engine := derive.NewEngine(logger)
	caches := cache.NewManager()
	for _, c := range engine.Caches() {
		caches.Register(c)
	}
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	// AMQP is optional; without it configuration changes simply do not
	// announce themselves to the worker.
	var publisher services.Publisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("amqp unavailable, events disabled", log.FieldError, err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	setups := services.NewSetupService(repo, publisher, engine, logger)
	advisor := services.NewAdvisorService(cfg.AdvisorDelay, logger)

	srv := apphttp.NewServer(":"+cfg.Port, repo, fallback, engine, setups, advisor, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("server listening", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped")
}

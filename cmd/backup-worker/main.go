package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/xiaofeng1coin/jizhangxt/internal/amqp"
	"github.com/xiaofeng1coin/jizhangxt/internal/config"
	applog "github.com/xiaofeng1coin/jizhangxt/internal/log"
	"github.com/xiaofeng1coin/jizhangxt/internal/sheets"
	gsheet "github.com/xiaofeng1coin/jizhangxt/internal/sheets/google"
	"github.com/xiaofeng1coin/jizhangxt/internal/store"
	"github.com/xiaofeng1coin/jizhangxt/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logCfg := applog.DefaultConfig()
	logCfg.Component = applog.ComponentWorker
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	logger.Info("Starting backup-worker")

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads the same snapshot store the server writes.
	st, err := store.Open(cfg.DataBackend, cfg.DataDir, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open snapshot store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer st.Close()

	// Google Sheets mirror is optional
	var mirror sheets.RecordMirror
	if cfg.MirrorConfigured() {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets mirror disabled - no spreadsheet configured")
	}

	// AMQP consumption is optional; without it the worker relies on the
	// periodic ticker alone.
	var consumer worker.ChangeConsumer
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		consumer = amqpClient
		logger.Info("AMQP consumption enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP consumption disabled - no AMQP_URL provided")
	}

	w := worker.NewBackupWorker(st, cfg.BackupDir, cfg.BackupKeep, mirror)

	// Take one backup on startup so a fresh deployment has a restore point
	// before the first tick.
	if err := w.Backup(context.Background()); err != nil {
		logger.Error("Startup backup failed", "error", err)
		// Don't exit - continue with normal operation
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Backup worker running", "backup_dir", cfg.BackupDir, "interval", cfg.BackupInterval.String(), "keep", cfg.BackupKeep)
	if err := w.Run(ctx, consumer, cfg.BackupInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

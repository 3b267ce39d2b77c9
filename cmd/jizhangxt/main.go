package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/xiaofeng1coin/jizhangxt/internal/amqp"
	"github.com/xiaofeng1coin/jizhangxt/internal/config"
	apphttp "github.com/xiaofeng1coin/jizhangxt/internal/http"
	applog "github.com/xiaofeng1coin/jizhangxt/internal/log"
	"github.com/xiaofeng1coin/jizhangxt/internal/services"
	"github.com/xiaofeng1coin/jizhangxt/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Open the snapshot store
	st, err := store.Open(cfg.DataBackend, cfg.DataDir, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open snapshot store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	logger.Info("Snapshot store ready", "backend", cfg.DataBackend)

	opts := []services.Option{
		services.WithStrictCategories(cfg.StrictCategories),
	}

	// AMQP publishing is optional; without it mutations simply go unannounced.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		opts = append(opts, services.WithPublisher(amqpClient))
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	ledger := services.NewLedgerService(st, opts...)
	defer ledger.Close()

	srv := apphttp.NewServer(":"+cfg.Port, ledger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting jizhangxt server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/secretstuffs/internal/database"
	"github.com/hugh/secretstuffs/internal/mailer"
	"github.com/hugh/secretstuffs/internal/store"
	"github.com/hugh/secretstuffs/internal/tasks"
	"github.com/hugh/secretstuffs/pkg/config"
	"github.com/hugh/secretstuffs/pkg/queue"
	"github.com/hugh/secretstuffs/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting secretstuffs worker")

	if err := util.ValidateCronExpr(cfg.Reset.PurgeCron); err != nil {
		logger.Error("invalid RESET_TOKEN_PURGE_CRON", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	m, err := mailer.NewFromConfig(&cfg.Mail, logger)
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, cfg.Worker.Concurrency)

	// Create task handler
	handler := tasks.NewHandler(store.New(db), m, logger)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Periodic purge of expired reset tokens
	scheduler := queue.NewScheduler(&cfg.Redis)
	entryID, err := scheduler.Register(cfg.Reset.PurgeCron, tasks.NewPurgeResetTokensTask())
	if err != nil {
		logger.Error("failed to register purge schedule", "error", err)
		os.Exit(1)
	}
	if next, err := util.NextCronTime(cfg.Reset.PurgeCron, time.Now()); err == nil {
		logger.Info("reset token purge scheduled", "entry_id", entryID, "cron", cfg.Reset.PurgeCron, "next_run", next)
	}

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(mux); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	logger.Info("worker started, waiting for tasks...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	scheduler.Shutdown()
	srv.Shutdown()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}

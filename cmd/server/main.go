package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/secretstuffs/internal/api"
	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/internal/avatars"
	"github.com/hugh/secretstuffs/internal/database"
	"github.com/hugh/secretstuffs/internal/mailer"
	"github.com/hugh/secretstuffs/internal/store"
	"github.com/hugh/secretstuffs/internal/tasks"
	"github.com/hugh/secretstuffs/internal/users"
	"github.com/hugh/secretstuffs/pkg/config"
	"github.com/hugh/secretstuffs/pkg/queue"
	"github.com/hugh/secretstuffs/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
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

	logger.Info("starting secretstuffs server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(context.Background(), db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient = nil
	}

	// Outgoing mail goes through the worker when configured and Redis is up
	var notifier auth.Notifier
	var asynqClient *asynq.Client
	if cfg.Mail.Async && redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
		notifier = tasks.NewQueueNotifier(asynqClient)
		logger.Info("account emails are queued for the worker")
	} else {
		if cfg.Mail.Async {
			logger.Warn("MAIL_ASYNC set but Redis is unavailable, sending mail inline")
		}
		m, err := mailer.NewFromConfig(&cfg.Mail, logger)
		if err != nil {
			logger.Error("failed to create mailer", "error", err)
			os.Exit(1)
		}
		notifier = m
	}

	// Initialize services
	st := store.New(db)
	jwtService := auth.NewJWTService(auth.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Validity: cfg.JWT.Expiry(),
		Issuer:   cfg.JWT.Issuer,
	}, time.Now)
	authService := auth.NewService(st, jwtService, notifier, auth.ServiceConfig{
		PublicURL:     cfg.Server.PublicURL,
		ResetTokenTTL: cfg.Reset.Expiry(),
		Hasher:        auth.NewBcryptHasher(cfg.Bcrypt.Cost),
		Logger:        logger,
	})
	userService := users.NewService(st, logger)

	var avatarService *avatars.Service
	if cfg.Avatars.Enabled() {
		avatarService, err = avatars.New(context.Background(), &cfg.Avatars, logger)
		if err != nil {
			logger.Error("failed to configure avatar uploads", "error", err)
			os.Exit(1)
		}
	}

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		JWTService:     jwtService,
		AuthService:    authService,
		UserService:    userService,
		AvatarService:  avatarService,
		FrontendURL:    cfg.Server.FrontendURL,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitReqs:  cfg.RateLimit.Requests,
		RateLimitSecs:  cfg.RateLimit.WindowSeconds,
		AuthLimitReqs:  cfg.RateLimit.AuthRequests,
		AuthLimitSecs:  cfg.RateLimit.AuthWindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}

	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}

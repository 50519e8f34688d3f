package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/secretstuffs/internal/api/handlers"
	"github.com/hugh/secretstuffs/internal/api/middleware"
	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/internal/avatars"
	"github.com/hugh/secretstuffs/internal/users"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	UserService    *users.Service
	AvatarService  *avatars.Service // nil disables avatar uploads
	FrontendURL    string
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
	AuthLimitReqs  int      // Tighter limit on credential and email endpoints
	AuthLimitSecs  int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.FrontendURL)
	userHandler := handlers.NewUserHandler(cfg.UserService, cfg.AuthService, cfg.AvatarService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/verify-email", authHandler.VerifyEmail)

			r.Group(func(r chi.Router) {
				if cfg.AuthLimitReqs > 0 {
					r.Use(middleware.RateLimit(cfg.AuthLimitReqs, cfg.AuthLimitSecs))
				}
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/resend-verification-email", authHandler.ResendVerificationEmail)
				r.Post("/forgot-password", authHandler.ForgotPassword)
				r.Post("/reset-password", authHandler.ResetPassword)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/", userHandler.List)
			r.Get("/me", userHandler.Me)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireVerified)
				r.Put("/update", userHandler.Update)
				r.Put("/change-password", userHandler.ChangePassword)
				r.Delete("/delete/{email}", userHandler.Delete)
				r.Post("/me/avatar-upload", userHandler.AvatarUpload)
			})

			r.Get("/{email}", userHandler.Get)
		})
	})

	return &Router{r}
}

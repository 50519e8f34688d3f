//go:build ignore

package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/hugh/secretstuffs/internal/auth"
	"github.com/hugh/secretstuffs/internal/database"
	"github.com/hugh/secretstuffs/internal/mailer"
	"github.com/hugh/secretstuffs/internal/store"
	"github.com/hugh/secretstuffs/pkg/config"
	"github.com/hugh/secretstuffs/pkg/util"
	"github.com/joho/godotenv"
)

// Seeds an already verified account for local development.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	ctx := context.Background()

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(ctx, db, logger); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := envOr("SEED_EMAIL", "dev@example.com")
	password := envOr("SEED_PASSWORD", "devpassword123")

	// no mail leaves the machine while seeding
	m, err := mailer.New(mailer.NewLogTransport(logger), logger)
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}

	st := store.New(db)
	jwtService := auth.NewJWTService(auth.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Validity: cfg.JWT.Expiry(),
		Issuer:   cfg.JWT.Issuer,
	}, nil)
	authService := auth.NewService(st, jwtService, m, auth.ServiceConfig{
		PublicURL: cfg.Server.PublicURL,
		Hasher:    auth.NewBcryptHasher(cfg.Bcrypt.Cost),
		Logger:    logger,
	})

	_, err = authService.Register(ctx, auth.RegisterInput{
		FirstName: "Dev",
		LastName:  "User",
		Email:     email,
		Password:  password,
	})
	switch {
	case errors.Is(err, auth.ErrEmailAlreadyTaken):
		log.Printf("user %s already exists", email)
	case err != nil:
		log.Fatalf("failed to create user: %v", err)
	}

	if _, err := st.Users().Activate(ctx, email); err != nil {
		log.Fatalf("failed to activate user: %v", err)
	}

	log.Printf("seeded verified user %s", email)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

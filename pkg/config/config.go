package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Reset     ResetConfig
	Mail      MailConfig
	Avatars   AvatarConfig
	RateLimit RateLimitConfig
	Bcrypt    BcryptConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	LogLevel       string // overrides the env based default when set
	PublicURL      string // base URL used in links sent by email
	FrontendURL    string // where verify-email redirects to
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
	Issuer      string
}

type ResetConfig struct {
	ExpiryMinutes int
	PurgeCron     string
}

type MailConfig struct {
	Provider      string // mailjet, smtp or log
	Async         bool   // queue mail for the worker instead of sending inline
	FromAddress   string
	FromName      string
	MailjetKey    string
	MailjetSecret string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
}

type AvatarConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	PresignTTL    int // seconds
}

type RateLimitConfig struct {
	Requests          int
	WindowSeconds     int
	AuthRequests      int
	AuthWindowSeconds int
}

type BcryptConfig struct {
	Cost int
}

type WorkerConfig struct {
	Concurrency int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (r *ResetConfig) Expiry() time.Duration {
	return time.Duration(r.ExpiryMinutes) * time.Minute
}

func (a *AvatarConfig) Enabled() bool {
	return a.Bucket != ""
}

func (a *AvatarConfig) TTL() time.Duration {
	return time.Duration(a.PresignTTL) * time.Second
}

func (m *MailConfig) SMTPAddr() string {
	return fmt.Sprintf("%s:%d", m.SMTPHost, m.SMTPPort)
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("SERVER_PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("SERVER_FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("SERVER_ALLOWED_ORIGINS", "")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "secretstuffs")
	v.SetDefault("DATABASE_PASSWORD", "secretstuffs_secret")
	v.SetDefault("DATABASE_NAME", "secretstuffs")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production-at-least-64-bytes-long-for-hs512-signing!!")
	v.SetDefault("JWT_EXPIRY_HOURS", 10)
	v.SetDefault("JWT_ISSUER", "secretstuffs")
	v.SetDefault("RESET_TOKEN_EXPIRY_MINUTES", 60)
	v.SetDefault("RESET_TOKEN_PURGE_CRON", "*/15 * * * *")
	v.SetDefault("MAIL_PROVIDER", "log")
	v.SetDefault("MAIL_ASYNC", false)
	v.SetDefault("MAIL_FROM_ADDRESS", "no-reply@secretstuffs.local")
	v.SetDefault("MAIL_FROM_NAME", "SecretStuffs")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("AVATAR_REGION", "us-east-1")
	v.SetDefault("AVATAR_PRESIGN_TTL_SECONDS", 900)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_AUTH_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_AUTH_WINDOW_SECONDS", 60)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("WORKER_CONCURRENCY", 10)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetInt("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			PublicURL:      strings.TrimRight(v.GetString("SERVER_PUBLIC_URL"), "/"),
			FrontendURL:    strings.TrimRight(v.GetString("SERVER_FRONTEND_URL"), "/"),
			AllowedOrigins: splitList(v.GetString("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
			Issuer:      v.GetString("JWT_ISSUER"),
		},
		Reset: ResetConfig{
			ExpiryMinutes: v.GetInt("RESET_TOKEN_EXPIRY_MINUTES"),
			PurgeCron:     v.GetString("RESET_TOKEN_PURGE_CRON"),
		},
		Mail: MailConfig{
			Provider:      v.GetString("MAIL_PROVIDER"),
			Async:         v.GetBool("MAIL_ASYNC"),
			FromAddress:   v.GetString("MAIL_FROM_ADDRESS"),
			FromName:      v.GetString("MAIL_FROM_NAME"),
			MailjetKey:    v.GetString("MAILJET_KEY"),
			MailjetSecret: v.GetString("MAILJET_SECRET"),
			SMTPHost:      v.GetString("SMTP_HOST"),
			SMTPPort:      v.GetInt("SMTP_PORT"),
			SMTPUser:      v.GetString("SMTP_USER"),
			SMTPPassword:  v.GetString("SMTP_PASSWORD"),
		},
		Avatars: AvatarConfig{
			Bucket:        v.GetString("AVATAR_BUCKET"),
			Region:        v.GetString("AVATAR_REGION"),
			Endpoint:      v.GetString("AVATAR_ENDPOINT"),
			AccessKey:     v.GetString("AVATAR_ACCESS_KEY"),
			SecretKey:     v.GetString("AVATAR_SECRET_KEY"),
			PublicBaseURL: strings.TrimRight(v.GetString("AVATAR_PUBLIC_BASE_URL"), "/"),
			PresignTTL:    v.GetInt("AVATAR_PRESIGN_TTL_SECONDS"),
		},
		RateLimit: RateLimitConfig{
			Requests:          v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds:     v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			AuthRequests:      v.GetInt("RATE_LIMIT_AUTH_REQUESTS"),
			AuthWindowSeconds: v.GetInt("RATE_LIMIT_AUTH_WINDOW_SECONDS"),
		},
		Bcrypt: BcryptConfig{
			Cost: v.GetInt("BCRYPT_COST"),
		},
		Worker: WorkerConfig{
			Concurrency: v.GetInt("WORKER_CONCURRENCY"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.JWT.ExpiryHours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", cfg.JWT.ExpiryHours)
	}
	if cfg.Reset.ExpiryMinutes <= 0 {
		return nil, fmt.Errorf("RESET_TOKEN_EXPIRY_MINUTES must be positive, got %d", cfg.Reset.ExpiryMinutes)
	}

	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

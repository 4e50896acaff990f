// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"custodial-wallet/pkg/db"

	"github.com/joho/godotenv"
)

// AppConfig holds all application-wide configuration. It is loaded once at
// startup and passed down explicitly; nothing below main reads the environment.
type AppConfig struct {
	ServerPort      string
	LogLevel        string
	ShutdownTimeout time.Duration

	DB       db.Config
	Paystack PaystackConfig
	Auth     AuthConfig

	// RedisURL enables the HTTP idempotency cache when set.
	RedisURL       string
	IdempotencyTTL time.Duration

	CORSAllowedOrigins []string
}

// PaystackConfig holds gateway credentials. SecretKey doubles as the webhook
// signing secret.
type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Timeout     time.Duration
}

// AuthConfig configures the bearer token verifier.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one is present.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	return loadFromEnv()
}

func loadFromEnv() (*AppConfig, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	gatewayTimeout, err := getDuration("GATEWAY_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	idempotencyTTL, err := getDuration("IDEMPOTENCY_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	connLifetime, err := getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: shutdownTimeout,
		DB: db.Config{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            dbPort,
			User:            getEnv("DB_USER", "user"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "walletdb"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			ConnMaxLifetime: connLifetime,
		},
		Paystack: PaystackConfig{
			SecretKey:   os.Getenv("PAYSTACK_SECRET_KEY"),
			BaseURL:     strings.TrimRight(getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"), "/"),
			CallbackURL: os.Getenv("PAYSTACK_CALLBACK_URL"),
			Timeout:     gatewayTimeout,
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			JWTIssuer: os.Getenv("JWT_ISSUER"),
		},
		RedisURL:           os.Getenv("REDIS_URL"),
		IdempotencyTTL:     idempotencyTTL,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.Paystack.SecretKey == "" {
		return nil, errors.New("PAYSTACK_SECRET_KEY is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	router "custodial-wallet/internal/api"
	"custodial-wallet/internal/api/handler"
	"custodial-wallet/internal/auth"
	"custodial-wallet/internal/config"
	"custodial-wallet/internal/gateway/paystack"
	"custodial-wallet/internal/metrics"
	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/repository/postgres"
	"custodial-wallet/internal/service"
	"custodial-wallet/internal/util"
	"custodial-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config  *config.AppConfig
	Logger  *slog.Logger
	DB      *sqlx.DB
	Redis   *redis.Client
	Metrics *metrics.Ledger

	// Repositories
	UserRepository        repository.UserRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	APIKeyRepository      repository.APIKeyRepository

	// Gateway
	Paystack         *paystack.Client
	PaystackWebhooks *paystack.Webhooks

	// Services
	WalletService     service.WalletService
	DepositService    service.DepositService
	SettlementService service.SettlementService
	TransferService   service.TransferService
	APIKeyService     *auth.APIKeyService
	TokenVerifier     *auth.TokenVerifier

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components, HTTP included.
func (app *Application) Initialize(ctx context.Context) error {
	if err := app.InitializeCore(ctx); err != nil {
		return err
	}

	// Redis is optional; without it the idempotency middleware is skipped.
	if app.Config.RedisURL != "" {
		opts, err := redis.ParseURL(app.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Redis = client
		app.Logger.Info("Redis connection established.")
	}

	validate := validator.New()
	app.HTTPHandler = router.NewRouter(router.RouterDeps{
		Wallets:        handler.NewWalletHandler(app.WalletService, app.DepositService, app.TransferService, validate, app.Logger),
		Webhooks:       handler.NewWebhookHandler(app.SettlementService, app.Logger),
		Keys:           handler.NewKeyHandler(app.APIKeyService, validate, app.Logger),
		Tokens:         app.TokenVerifier,
		APIKeys:        app.APIKeyService,
		Metrics:        app.Metrics,
		Logger:         app.Logger,
		Origins:        app.Config.CORSAllowedOrigins,
		Redis:          app.Redis,
		IdempotencyTTL: app.Config.IdempotencyTTL,
	})
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// InitializeCore loads configuration and builds everything below the HTTP
// layer. Operator tooling stops here.
func (app *Application) InitializeCore(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	app.Logger = util.InitLogger(cfg.LogLevel)
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.WalletRepository = postgres.NewWalletRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.APIKeyRepository = postgres.NewAPIKeyRepository()

	// 5. Gateway and metrics
	app.Metrics = metrics.New()
	app.Paystack = paystack.NewClient(paystack.Config{
		SecretKey:   cfg.Paystack.SecretKey,
		BaseURL:     cfg.Paystack.BaseURL,
		CallbackURL: cfg.Paystack.CallbackURL,
		Timeout:     cfg.Paystack.Timeout,
	})
	app.PaystackWebhooks = paystack.NewWebhooks(cfg.Paystack.SecretKey)

	// 6. Initialize Services
	tx := service.NewTxFuncs(app.DB)
	app.WalletService = service.NewWalletService(tx, app.DB,
		app.UserRepository, app.WalletRepository, app.TransactionRepository, app.Logger)
	app.DepositService = service.NewDepositService(app.DB,
		app.UserRepository, app.WalletRepository, app.TransactionRepository, app.Paystack, app.Metrics, app.Logger)
	app.SettlementService = service.NewSettlementService(tx,
		app.WalletRepository, app.TransactionRepository, app.PaystackWebhooks, app.Paystack, app.Metrics, app.Logger)
	app.TransferService = service.NewTransferService(tx, app.DB,
		app.WalletRepository, app.TransactionRepository, app.Metrics, app.Logger)
	app.APIKeyService = auth.NewAPIKeyService(app.DB, app.APIKeyRepository, app.Logger)
	app.TokenVerifier = auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	app.Logger.Info("Services initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}

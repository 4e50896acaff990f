// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"custodial-wallet/internal/api/handler"
	mw "custodial-wallet/internal/api/middleware"
	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/metrics"
)

// RouterDeps collects everything the HTTP surface is built from.
type RouterDeps struct {
	Wallets  *handler.WalletHandler
	Webhooks *handler.WebhookHandler
	Keys     *handler.KeyHandler

	Tokens  mw.TokenVerifier
	APIKeys mw.KeyAuthenticator
	Metrics *metrics.Ledger
	Logger  *slog.Logger
	Origins []string

	// Idempotency is skipped when Redis is nil.
	Redis          *redis.Client
	IdempotencyTTL time.Duration
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(d.Logger, d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	origins := d.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", mw.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"Idempotent-Replayed"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", d.Metrics.Handler())

	authenticate := mw.Authenticate(d.Tokens, d.APIKeys, d.Logger)
	idempotent := func(next http.Handler) http.Handler { return next }
	if d.Redis != nil {
		idempotent = mw.Idempotency(d.Redis, d.IdempotencyTTL, d.Logger)
	}

	r.Route("/wallet", func(r chi.Router) {
		// The gateway authenticates with its body signature, not a credential.
		r.Post("/paystack/webhook", d.Webhooks.Paystack)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.With(mw.RequirePermission(domain.PermissionDeposit), idempotent).Post("/deposit", d.Wallets.Deposit)
			r.With(mw.RequirePermission(domain.PermissionTransfer), idempotent).Post("/transfer", d.Wallets.Transfer)

			r.With(mw.RequirePermission(domain.PermissionRead)).Get("/deposit/{reference}/status", d.Wallets.DepositStatus)
			r.With(mw.RequirePermission(domain.PermissionRead)).Get("/balance", d.Wallets.Balance)
			r.With(mw.RequirePermission(domain.PermissionRead)).Get("/transactions", d.Wallets.Transactions)
		})
	})

	r.Route("/keys", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/create", d.Keys.Create)
		r.Post("/rollover", d.Keys.Rollover)
	})

	return r
}

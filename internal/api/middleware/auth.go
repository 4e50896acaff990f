// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"custodial-wallet/internal/api/types"
	"custodial-wallet/internal/auth"
	"custodial-wallet/internal/domain"
)

// APIKeyHeader carries a raw sk_live_ key.
const APIKeyHeader = "x-api-key"

// TokenVerifier resolves a bearer token to a principal.
type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// KeyAuthenticator resolves a raw API key to a principal.
type KeyAuthenticator interface {
	Authenticate(ctx context.Context, rawKey string) (*auth.Principal, error)
}

// Authenticate accepts either an Authorization bearer token or an x-api-key
// header and stores the resulting principal in the request context. A request
// presenting both is judged by the bearer token.
func Authenticate(tokens TokenVerifier, keys KeyAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				p   *auth.Principal
				err error
			)
			switch {
			case bearerToken(r) != "":
				p, err = tokens.Verify(bearerToken(r))
			case r.Header.Get(APIKeyHeader) != "":
				p, err = keys.Authenticate(r.Context(), r.Header.Get(APIKeyHeader))
			default:
				writeError(w, http.StatusUnauthorized, "No credentials provided")
				return
			}
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, "Invalid or expired credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequirePermission rejects principals lacking perm. It must run after
// Authenticate.
func RequirePermission(perm domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !p.Can(perm) {
				writeError(w, http.StatusForbidden, "Missing permission: "+string(perm))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: message})
}

// internal/api/middleware/idempotency.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"custodial-wallet/internal/auth"

	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader names the client-chosen key for a POST.
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v1:"
	inProgressMarker     = "__in_progress__"
	cacheOpTimeout       = 2 * time.Second
)

type storedResponse struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// Idempotency replays the stored response for a repeated Idempotency-Key and
// answers 409 while the first request is still running. Keys are scoped to
// the authenticated user. Requests without the header pass through, and 5xx
// responses are not stored so the client may retry them.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > 255 {
				writeError(w, http.StatusBadRequest, "Idempotency-Key too long")
				return
			}

			cacheKey := idempotencyPrefix + scope(r) + ":" + r.URL.Path + ":" + key

			ctx, cancel := context.WithTimeout(r.Context(), cacheOpTimeout)
			defer cancel()

			cached, err := cache.Get(ctx, cacheKey).Result()
			if err == nil {
				replay(w, cached, key, logger)
				return
			}
			if !errors.Is(err, redis.Nil) {
				logger.Error("idempotency lookup failed", slog.String("key", key), slog.Any("error", err))
				writeError(w, http.StatusServiceUnavailable, "Idempotency store failure")
				return
			}

			reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
			if err != nil {
				logger.Error("idempotency reservation failed", slog.String("key", key), slog.Any("error", err))
				writeError(w, http.StatusServiceUnavailable, "Idempotency store failure")
				return
			}
			if !reserved {
				// Lost the race to a concurrent request with the same key.
				writeError(w, http.StatusConflict, "Duplicate request currently processing")
				return
			}

			// A panicking handler must not leave the key reserved for the whole TTL.
			defer func() {
				if p := recover(); p != nil {
					releaseCtx, releaseCancel := context.WithTimeout(context.Background(), cacheOpTimeout)
					defer releaseCancel()
					if err := cache.Del(releaseCtx, cacheKey).Err(); err != nil {
						logger.Error("failed to release idempotency key after panic", slog.String("key", key), slog.Any("error", err))
					}
					panic(p)
				}
			}()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			persistCtx, persistCancel := context.WithTimeout(context.Background(), cacheOpTimeout)
			defer persistCancel()

			if rec.status >= http.StatusInternalServerError {
				cache.Del(persistCtx, cacheKey)
				return
			}

			stored := storedResponse{
				Status:  rec.status,
				Body:    rec.body.String(),
				Headers: map[string]string{},
			}
			for header, values := range w.Header() {
				if len(values) > 0 && !strings.EqualFold(header, "Content-Length") {
					stored.Headers[header] = values[0]
				}
			}

			payload, err := json.Marshal(stored)
			if err != nil {
				logger.Error("failed to encode idempotent response", slog.String("key", key), slog.Any("error", err))
				cache.Del(persistCtx, cacheKey)
				return
			}
			if err := cache.Set(persistCtx, cacheKey, payload, ttl).Err(); err != nil {
				logger.Error("failed to persist idempotent response", slog.String("key", key), slog.Any("error", err))
				cache.Del(persistCtx, cacheKey)
			}
		})
	}
}

func replay(w http.ResponseWriter, cached, key string, logger *slog.Logger) {
	if cached == inProgressMarker {
		writeError(w, http.StatusConflict, "Duplicate request currently processing")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(cached), &stored); err != nil {
		logger.Warn("failed to decode stored idempotent response", slog.String("key", key), slog.Any("error", err))
		writeError(w, http.StatusConflict, "Duplicate request")
		return
	}

	for header, value := range stored.Headers {
		w.Header().Set(header, value)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write([]byte(stored.Body))
}

func scope(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.UserID.String()
	}
	return "anonymous"
}

// recorder tees the response so it can be stored after the handler returns.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

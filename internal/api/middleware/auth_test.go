// internal/api/middleware/auth_test.go
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"custodial-wallet/internal/auth"
	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubTokens map[string]*auth.Principal

func (s stubTokens) Verify(token string) (*auth.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, util.ErrUnauthorized
}

type stubKeys map[string]*auth.Principal

func (s stubKeys) Authenticate(_ context.Context, raw string) (*auth.Principal, error) {
	if p, ok := s[raw]; ok {
		return p, nil
	}
	return nil, util.ErrUnauthorized
}

func TestAuthenticate(t *testing.T) {
	bearerUser := &auth.Principal{UserID: uuid.New(), Permissions: domain.AllPermissions, Method: auth.MethodBearer}
	keyUser := &auth.Principal{UserID: uuid.New(), Permissions: []domain.Permission{domain.PermissionRead}, Method: auth.MethodAPIKey}

	var seen *auth.Principal
	h := Authenticate(stubTokens{"good": bearerUser}, stubKeys{"sk_live_a_b": keyUser}, util.DiscardLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = auth.FromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

	cases := []struct {
		name    string
		headers map[string]string
		code    int
		want    *auth.Principal
	}{
		{"Bearer token", map[string]string{"Authorization": "Bearer good"}, http.StatusNoContent, bearerUser},
		{"API key", map[string]string{APIKeyHeader: "sk_live_a_b"}, http.StatusNoContent, keyUser},
		{"Bearer wins over key", map[string]string{"Authorization": "Bearer good", APIKeyHeader: "sk_live_a_b"}, http.StatusNoContent, bearerUser},
		{"Bad token", map[string]string{"Authorization": "Bearer bad"}, http.StatusUnauthorized, nil},
		{"Bad key", map[string]string{APIKeyHeader: "sk_live_x_y"}, http.StatusUnauthorized, nil},
		{"Nothing", nil, http.StatusUnauthorized, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/wallet/balance", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.want, seen)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	h := RequirePermission(domain.PermissionTransfer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	readOnly := &auth.Principal{UserID: uuid.New(), Permissions: []domain.Permission{domain.PermissionRead}}
	transferer := &auth.Principal{UserID: uuid.New(), Permissions: []domain.Permission{domain.PermissionTransfer}}

	req := httptest.NewRequest(http.MethodPost, "/wallet/transfer", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(auth.WithPrincipal(req.Context(), readOnly)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(auth.WithPrincipal(req.Context(), transferer)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// internal/auth/principal.go
package auth

import (
	"context"

	"custodial-wallet/internal/domain"

	"github.com/google/uuid"
)

// Method names how a principal authenticated.
type Method string

const (
	MethodBearer Method = "bearer"
	MethodAPIKey Method = "api_key"
)

// Principal is the authenticated caller handed to the ledger.
type Principal struct {
	UserID      uuid.UUID
	Permissions []domain.Permission
	Method      Method
	// KeyID is set for API-key principals.
	KeyID uuid.UUID
}

// Can reports whether the principal holds perm.
func (p *Principal) Can(perm domain.Permission) bool {
	for _, have := range p.Permissions {
		if have == perm {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

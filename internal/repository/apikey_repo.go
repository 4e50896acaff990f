// internal/repository/apikey_repo.go
package repository

import (
	"context"
	"time"

	"custodial-wallet/internal/domain"

	"github.com/google/uuid"
)

// APIKeyRepository stores machine credentials, indexed by their public prefix.
type APIKeyRepository interface {
	CreateAPIKey(ctx context.Context, q DBExecutor, key *domain.APIKey) error
	GetAPIKeyByPrefix(ctx context.Context, q DBExecutor, prefix string) (*domain.APIKey, error)
	GetAPIKeyByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.APIKey, error)
	CountActiveAPIKeys(ctx context.Context, q DBExecutor, userID uuid.UUID, now time.Time) (int, error)
}

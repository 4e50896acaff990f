// internal/repository/postgres/apikey_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/util"

	"github.com/google/uuid"
)

const apiKeyColumns = `id, user_id, name, prefix, key_hash, permissions, expires_at, revoked, created_at`

// APIKeyRepository implements repository.APIKeyRepository for PostgreSQL.
type APIKeyRepository struct{}

// NewAPIKeyRepository creates a new APIKeyRepository.
func NewAPIKeyRepository() repository.APIKeyRepository {
	return &APIKeyRepository{}
}

// CreateAPIKey stores a hashed credential.
func (r *APIKeyRepository) CreateAPIKey(ctx context.Context, q repository.DBExecutor, key *domain.APIKey) error {
	query := `INSERT INTO api_keys (` + apiKeyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		key.ID, key.UserID, key.Name, key.Prefix, key.KeyHash,
		key.Permissions, key.ExpiresAt, key.Revoked, key.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", classify(err))
	}
	return nil
}

// GetAPIKeyByPrefix is the indexed lookup step of key authentication.
func (r *APIKeyRepository) GetAPIKeyByPrefix(ctx context.Context, q repository.DBExecutor, prefix string) (*domain.APIKey, error) {
	return r.getOne(ctx, q, `WHERE prefix = $1`, prefix)
}

// GetAPIKeyByID retrieves a key by its ID.
func (r *APIKeyRepository) GetAPIKeyByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.APIKey, error) {
	return r.getOne(ctx, q, `WHERE id = $1`, id)
}

func (r *APIKeyRepository) getOne(ctx context.Context, q repository.DBExecutor, where string, arg interface{}) (*domain.APIKey, error) {
	var key domain.APIKey
	if err := q.GetContext(ctx, &key, `SELECT `+apiKeyColumns+` FROM api_keys `+where, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return &key, nil
}

// CountActiveAPIKeys counts unrevoked, unexpired keys owned by userID.
func (r *APIKeyRepository) CountActiveAPIKeys(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, now time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM api_keys WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2`
	if err := q.GetContext(ctx, &count, query, userID, now); err != nil {
		return 0, fmt.Errorf("failed to count active api keys for user %s: %w", userID, err)
	}
	return count, nil
}

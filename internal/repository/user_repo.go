// internal/repository/user_repo.go
package repository

import (
	"context"

	"custodial-wallet/internal/domain"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	GetUserByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, q DBExecutor, email string) (*domain.User, error)
}

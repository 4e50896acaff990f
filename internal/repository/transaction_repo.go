// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"custodial-wallet/internal/domain"

	"github.com/google/uuid"
)

// TransactionRepository defines the interface for transaction log operations.
type TransactionRepository interface {
	// CreateTransaction appends a record. A reused reference yields util.ErrDuplicateEntry.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	GetTransactionByReference(ctx context.Context, q DBExecutor, reference string) (*domain.Transaction, error)
	// GetTransactionByReferenceForUpdate takes an exclusive row lock held until q's transaction ends.
	GetTransactionByReferenceForUpdate(ctx context.Context, q DBExecutor, reference string) (*domain.Transaction, error)
	GetDepositByReference(ctx context.Context, q DBExecutor, reference string) (*domain.Transaction, error)
	// UpdateTransactionStatus moves a record from one status to another and
	// yields util.ErrConcurrentUpdate if it is no longer in from.
	UpdateTransactionStatus(ctx context.Context, q DBExecutor, id uuid.UUID, from, to domain.TransactionStatus) error
	// GetTransactionsByWalletID returns one page, newest first, plus the total count.
	GetTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
}

// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/util"

	"github.com/google/uuid"
)

const transactionColumns = `id, wallet_id, type, amount, status, reference, metadata, created_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := q.ExecContext(ctx, query,
		transaction.ID,
		transaction.WalletID,
		transaction.Type,
		transaction.Amount,
		transaction.Status,
		transaction.Reference,
		transaction.Metadata,
		transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction %s: %w", transaction.Reference, classify(err))
	}
	return nil
}

// GetTransactionByReference retrieves a transaction by its unique reference.
func (r *TransactionRepository) GetTransactionByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	return r.getOne(ctx, q, `SELECT `+transactionColumns+` FROM transactions WHERE reference = $1`, reference)
}

// GetTransactionByReferenceForUpdate locks the row until the surrounding
// transaction ends, so concurrent settlements of one reference run one at a time.
func (r *TransactionRepository) GetTransactionByReferenceForUpdate(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	return r.getOne(ctx, q, `SELECT `+transactionColumns+` FROM transactions WHERE reference = $1 FOR UPDATE`, reference)
}

// GetDepositByReference retrieves a deposit-type transaction by reference.
func (r *TransactionRepository) GetDepositByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	return r.getOne(ctx, q,
		`SELECT `+transactionColumns+` FROM transactions WHERE reference = $1 AND type = $2`,
		reference, domain.TransactionTypeDeposit)
}

func (r *TransactionRepository) getOne(ctx context.Context, q repository.DBExecutor, query string, args ...interface{}) (*domain.Transaction, error) {
	var transaction domain.Transaction
	if err := q.GetContext(ctx, &transaction, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by reference %v: %w", args[0], classify(err))
	}
	return &transaction, nil
}

// UpdateTransactionStatus performs a status transition guarded on the current status.
func (r *TransactionRepository) UpdateTransactionStatus(ctx context.Context, q repository.DBExecutor, id uuid.UUID, from, to domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $1 WHERE id = $2 AND status = $3`
	result, err := q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %s: %w", id, classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating transaction %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %s is no longer %s: %w", id, from, util.ErrConcurrentUpdate)
	}
	return nil
}

// GetTransactionsByWalletID retrieves a page of a wallet's history, newest first.
// It performs two queries: one for the page and one for the total count.
func (r *TransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transactions, query, walletID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for wallet %s: %w", walletID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, walletID); err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for wallet %s: %w", walletID, err)
	}

	return transactions, totalCount, nil
}

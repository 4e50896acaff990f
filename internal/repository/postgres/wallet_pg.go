// internal/repository/postgres/wallet_pg.go
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
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, user_id, wallet_number, balance, created_at`

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository() repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet. The wallet_number clash is absorbed by
// ON CONFLICT so a retry inside the same transaction stays possible; a second
// wallet for the same user is util.ErrWalletExists.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumns + `) VALUES ($1, $2, $3, $4, $5)
              ON CONFLICT (wallet_number) DO NOTHING`
	result, err := q.ExecContext(ctx, query, wallet.ID, wallet.UserID, wallet.WalletNumber, wallet.Balance, wallet.CreatedAt)
	if err != nil {
		if constraintName(err) == "wallets_user_id_key" {
			return util.ErrWalletExists
		}
		return fmt.Errorf("failed to create wallet: %w", classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after creating wallet: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("wallet number %s: %w", wallet.WalletNumber, util.ErrDuplicateEntry)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	return r.getOne(ctx, q, `WHERE id = $1`, id)
}

// GetWalletByUserID retrieves the wallet owned by userID.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	return r.getOne(ctx, q, `WHERE user_id = $1`, userID)
}

// GetWalletByNumber retrieves a wallet by its public wallet number.
func (r *WalletRepository) GetWalletByNumber(ctx context.Context, q repository.DBExecutor, walletNumber string) (*domain.Wallet, error) {
	return r.getOne(ctx, q, `WHERE wallet_number = $1`, walletNumber)
}

func (r *WalletRepository) getOne(ctx context.Context, q repository.DBExecutor, where string, arg interface{}) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets ` + where
	if err := q.GetContext(ctx, &wallet, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet (%s, %v): %w", where, arg, err)
	}
	return &wallet, nil
}

// LockWallets locks the given wallet rows in id order.
func (r *WalletRepository) LockWallets(ctx context.Context, q repository.DBExecutor, ids ...uuid.UUID) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	var locked []uuid.UUID
	query := `SELECT id FROM wallets WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`
	if err := q.SelectContext(ctx, &locked, query, pq.Array(keys)); err != nil {
		return fmt.Errorf("failed to lock wallets: %w", classify(err))
	}
	if len(locked) != len(uniqueIDs(ids)) {
		return util.ErrWalletNotFound
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// AdjustBalance applies delta in one statement. The guard is evaluated by the
// database against the row it has locked for the update, so there is no gap
// between checking the balance and writing it.
func (r *WalletRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, delta decimal.Decimal, cond repository.BalanceCondition) (decimal.Decimal, error) {
	query := `UPDATE wallets SET balance = balance + $1 WHERE id = $2 RETURNING balance`
	if cond == repository.RequireSufficient {
		query = `UPDATE wallets SET balance = balance + $1 WHERE id = $2 AND balance + $1 >= 0 RETURNING balance`
	}

	var balance decimal.Decimal
	err := q.GetContext(ctx, &balance, query, delta, walletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if cond == repository.RequireSufficient {
				return decimal.Zero, util.ErrInsufficientFunds
			}
			return decimal.Zero, util.ErrWalletNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to adjust balance for wallet %s: %w", walletID, classify(err))
	}
	return balance, nil
}

// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"custodial-wallet/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCondition guards a balance adjustment.
type BalanceCondition int

const (
	// AnyBalance applies the delta unconditionally. Used for credits.
	AnyBalance BalanceCondition = iota
	// RequireSufficient applies the delta only if the result stays >= 0.
	RequireSufficient
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet inserts wallet. A taken wallet number yields
	// util.ErrDuplicateEntry without aborting q's transaction, so the caller
	// can retry with a fresh number.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	GetWalletByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Wallet, error)
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.Wallet, error)
	GetWalletByNumber(ctx context.Context, q DBExecutor, walletNumber string) (*domain.Wallet, error)
	// LockWallets takes row locks on ids in a fixed order, so two
	// transactions locking the same pair can never wait on each other.
	LockWallets(ctx context.Context, q DBExecutor, ids ...uuid.UUID) error

	// AdjustBalance is the only balance-mutating primitive. It applies delta
	// as a single conditional UPDATE and returns the new balance. With
	// RequireSufficient, a wallet that cannot cover the debit yields
	// util.ErrInsufficientFunds and nothing is written.
	AdjustBalance(ctx context.Context, q DBExecutor, walletID uuid.UUID, delta decimal.Decimal, cond BalanceCondition) (decimal.Decimal, error)
}

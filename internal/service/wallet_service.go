// internal/service/wallet_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/util"

	"github.com/google/uuid"
)

// MaxWalletNumberAttempts bounds the wallet number collision-retry loop.
const MaxWalletNumberAttempts = 10

// Page bounds for transaction history.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// WalletService provisions wallets and serves the read side of the ledger.
type WalletService interface {
	CreateUserAndWallet(ctx context.Context, email, name string) (*domain.User, *domain.Wallet, error)
	CreateWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetWalletByUser(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetWalletByNumber(ctx context.Context, walletNumber string) (*domain.Wallet, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
	GetDepositStatus(ctx context.Context, reference string) (*domain.Transaction, error)
}

type walletService struct {
	tx              TxFuncs
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	generateNumber  func() (string, error)
	logger          *slog.Logger
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	tx TxFuncs,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	logger *slog.Logger,
) WalletService {
	return &walletService{
		tx:              tx,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		generateNumber:  domain.GenerateWalletNumber,
		logger:          logger,
	}
}

// CreateUserAndWallet registers a user and their zero-balance wallet in one
// transaction, so a user never exists without a wallet.
func (s *walletService) CreateUserAndWallet(ctx context.Context, email, name string) (*domain.User, *domain.Wallet, error) {
	if email == "" {
		return nil, nil, util.ErrInvalidInput
	}

	user := domain.NewUser(email, name)
	var wallet *domain.Wallet
	err := s.tx.inTx(ctx, "create user and wallet", func(q repository.DBExecutor) error {
		if err := s.userRepo.CreateUser(ctx, q, user); err != nil {
			return fmt.Errorf("create user and wallet: failed to create user: %w", err)
		}
		var err error
		wallet, err = s.createWallet(ctx, q, user.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user provisioned", "user_id", user.ID, "wallet_id", wallet.ID, "wallet_number", wallet.WalletNumber)
	return user, wallet, nil
}

// CreateWallet provisions a wallet for an existing user.
func (s *walletService) CreateWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	if _, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	var wallet *domain.Wallet
	err := s.tx.inTx(ctx, "create wallet", func(q repository.DBExecutor) error {
		var err error
		wallet, err = s.createWallet(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// createWallet allocates a unique wallet number. Each attempt is a single
// insert-if-absent, so the unique index is the arbiter between racing inserts.
func (s *walletService) createWallet(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	for attempt := 1; attempt <= MaxWalletNumberAttempts; attempt++ {
		number, err := s.generateNumber()
		if err != nil {
			return nil, fmt.Errorf("create wallet: %w", err)
		}

		wallet := domain.NewWallet(userID, number)
		err = s.walletRepo.CreateWallet(ctx, q, wallet)
		if err == nil {
			return wallet, nil
		}
		if !errors.Is(err, util.ErrDuplicateEntry) {
			return nil, fmt.Errorf("create wallet: %w", err)
		}
		s.logger.Warn("wallet number collision", "user_id", userID, "attempt", attempt)
	}

	s.logger.Error("wallet number space exhausted", "user_id", userID, "attempts", MaxWalletNumberAttempts)
	return nil, util.ErrWalletNumberExhausted
}

// GetWalletByUser returns the wallet owned by userID.
func (s *walletService) GetWalletByUser(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	return s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
}

// GetWalletByNumber returns the wallet addressed by walletNumber.
func (s *walletService) GetWalletByNumber(ctx context.Context, walletNumber string) (*domain.Wallet, error) {
	if !domain.ValidWalletNumber(walletNumber) {
		return nil, util.ErrInvalidWalletNumber
	}
	return s.walletRepo.GetWalletByNumber(ctx, s.dbExecutor, walletNumber)
}

// GetBalance returns the user's wallet with its current balance.
func (s *walletService) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return wallet, nil
}

// GetTransactions returns one page of the user's history, newest first.
// A non-positive limit means DefaultPageLimit.
func (s *walletService) GetTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("get transactions: %w", err)
	}

	transactions, total, err := s.transactionRepo.GetTransactionsByWalletID(ctx, s.dbExecutor, wallet.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("get transactions: %w", err)
	}
	return transactions, total, nil
}

// GetDepositStatus reports a deposit's state. It never settles anything.
func (s *walletService) GetDepositStatus(ctx context.Context, reference string) (*domain.Transaction, error) {
	if reference == "" {
		return nil, util.ErrInvalidInput
	}
	return s.transactionRepo.GetDepositByReference(ctx, s.dbExecutor, reference)
}

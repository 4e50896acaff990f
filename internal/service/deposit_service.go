// internal/service/deposit_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/gateway"
	"custodial-wallet/internal/metrics"
	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxReferenceAttempts bounds reference regeneration on a unique collision.
const maxReferenceAttempts = 3

// DepositInitiation is returned to the payer to complete checkout.
type DepositInitiation struct {
	Reference        string          `json:"reference"`
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
}

// DepositService starts gateway-funded top-ups. It never touches a balance;
// crediting happens only in SettlementService.
type DepositService interface {
	InitiateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*DepositInitiation, error)
}

type depositService struct {
	dbExecutor      repository.DBExecutor
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	gateway         gateway.Client
	metrics         *metrics.Ledger
	logger          *slog.Logger
	now             func() time.Time
}

// NewDepositService creates a new instance of DepositService.
func NewDepositService(
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	gatewayClient gateway.Client,
	ledgerMetrics *metrics.Ledger,
	logger *slog.Logger,
) DepositService {
	return &depositService{
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		gateway:         gatewayClient,
		metrics:         ledgerMetrics,
		logger:          logger,
		now:             time.Now,
	}
}

// InitiateDeposit records a pending deposit and asks the gateway for a
// checkout. amount is in the gateway's minor unit and must be whole.
func (s *depositService) InitiateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*DepositInitiation, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if !amount.IsInteger() {
		return nil, util.ErrInvalidAmount
	}

	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("initiate deposit: %w", err)
	}
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("initiate deposit: %w", err)
	}

	pending, err := s.recordPending(ctx, userID, wallet, amount)
	if err != nil {
		return nil, err
	}

	auth, err := s.gateway.Initialize(ctx, gateway.InitializeRequest{
		Email:     user.Email,
		Amount:    amount.IntPart(),
		Reference: pending.Reference,
	})
	if err != nil {
		// The pending row stays: the gateway may have accepted the request
		// before failing, and a pending deposit carries no balance effect.
		s.logger.Error("gateway initialize failed", "reference", pending.Reference, "user_id", userID, "error", err)
		return nil, fmt.Errorf("initiate deposit: %w", err)
	}

	s.metrics.DepositInitiated()
	s.logger.Info("deposit initiated", "reference", pending.Reference, "wallet_id", wallet.ID, "amount", amount.String())

	return &DepositInitiation{
		Reference:        pending.Reference,
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Amount:           amount,
	}, nil
}

func (s *depositService) recordPending(ctx context.Context, userID uuid.UUID, wallet *domain.Wallet, amount decimal.Decimal) (*domain.Transaction, error) {
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		pending := domain.NewPendingDeposit(wallet.ID, amount, domain.DepositReference(userID, s.now()))
		err := s.transactionRepo.CreateTransaction(ctx, s.dbExecutor, pending)
		if err == nil {
			return pending, nil
		}
		if !errors.Is(err, util.ErrDuplicateEntry) {
			return nil, fmt.Errorf("initiate deposit: %w", err)
		}
		s.logger.Warn("deposit reference collision", "reference", pending.Reference, "attempt", attempt)
	}
	return nil, util.ErrReferenceCollision
}

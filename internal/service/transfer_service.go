// internal/service/transfer_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/metrics"
	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferResult is the committed outcome of a transfer.
type TransferResult struct {
	Out           *domain.Transaction
	In            *domain.Transaction
	SenderBalance decimal.Decimal
}

// TransferService moves value between two wallets.
type TransferService interface {
	Transfer(ctx context.Context, senderUserID uuid.UUID, recipientWalletNumber string, amount decimal.Decimal) (*TransferResult, error)
}

type transferService struct {
	tx              TxFuncs
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	metrics         *metrics.Ledger
	logger          *slog.Logger
	now             func() time.Time
}

// NewTransferService creates a new instance of TransferService.
func NewTransferService(
	tx TxFuncs,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	ledgerMetrics *metrics.Ledger,
	logger *slog.Logger,
) TransferService {
	return &transferService{
		tx:              tx,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		metrics:         ledgerMetrics,
		logger:          logger,
		now:             time.Now,
	}
}

// Transfer debits the sender's wallet and credits the recipient's, writing
// both ledger legs in the same transaction.
func (s *transferService) Transfer(ctx context.Context, senderUserID uuid.UUID, recipientWalletNumber string, amount decimal.Decimal) (*TransferResult, error) {
	result, err := s.transfer(ctx, senderUserID, recipientWalletNumber, amount)
	s.metrics.Transfer(transferResultLabel(err))
	return result, err
}

func (s *transferService) transfer(ctx context.Context, senderUserID uuid.UUID, recipientWalletNumber string, amount decimal.Decimal) (*TransferResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if !domain.ValidWalletNumber(recipientWalletNumber) {
		return nil, util.ErrInvalidWalletNumber
	}

	sender, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, senderUserID)
	if err != nil {
		return nil, fmt.Errorf("transfer: sender: %w", err)
	}
	recipient, err := s.walletRepo.GetWalletByNumber(ctx, s.dbExecutor, recipientWalletNumber)
	if err != nil {
		if errors.Is(err, util.ErrWalletNotFound) {
			return nil, util.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("transfer: recipient: %w", err)
	}
	if sender.ID == recipient.ID {
		return nil, util.ErrSameWalletTransfer
	}
	// Fast-path rejection only; the guarded debit below is what holds under concurrency.
	if sender.Balance.LessThan(amount) {
		return nil, util.ErrInsufficientFunds
	}

	out, in, err := domain.NewTransferLegs(sender, recipient, amount, domain.TransferReferences(s.now()))
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	var senderBalance decimal.Decimal
	err = s.tx.inTx(ctx, "transfer", func(q repository.DBExecutor) error {
		if err := s.walletRepo.LockWallets(ctx, q, sender.ID, recipient.ID); err != nil {
			return fmt.Errorf("transfer: %w", err)
		}

		senderBalance, err = s.walletRepo.AdjustBalance(ctx, q, sender.ID, amount.Neg(), repository.RequireSufficient)
		if err != nil {
			if errors.Is(err, util.ErrInsufficientFunds) {
				s.logger.Warn("concurrent debit rejected", "wallet_id", sender.ID, "amount", amount.String())
				return util.ErrInsufficientFunds
			}
			return fmt.Errorf("transfer: debit: %w", err)
		}
		if _, err := s.walletRepo.AdjustBalance(ctx, q, recipient.ID, amount, repository.AnyBalance); err != nil {
			return fmt.Errorf("transfer: credit: %w", err)
		}

		if err := s.transactionRepo.CreateTransaction(ctx, q, out); err != nil {
			return fmt.Errorf("transfer: out leg: %w", err)
		}
		if err := s.transactionRepo.CreateTransaction(ctx, q, in); err != nil {
			return fmt.Errorf("transfer: in leg: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		"from_wallet_id", sender.ID, "to_wallet_id", recipient.ID,
		"amount", amount.String(), "reference", out.Reference)

	return &TransferResult{Out: out, In: in, SenderBalance: senderBalance}, nil
}

func transferResultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, util.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, util.ErrSameWalletTransfer):
		return "self_transfer"
	case errors.Is(err, util.ErrRecipientNotFound), errors.Is(err, util.ErrWalletNotFound):
		return "not_found"
	case errors.Is(err, util.ErrInvalidAmount), errors.Is(err, util.ErrInvalidWalletNumber):
		return "invalid"
	case errors.Is(err, util.ErrConcurrentUpdate):
		return "conflict"
	default:
		return "error"
	}
}

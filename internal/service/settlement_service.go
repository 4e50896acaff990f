// internal/service/settlement_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/gateway"
	"custodial-wallet/internal/metrics"
	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/util"

	"github.com/shopspring/decimal"
)

// SettlementOutcome describes what a notification did to the ledger.
type SettlementOutcome string

const (
	OutcomeRejected         SettlementOutcome = "rejected"
	OutcomeIgnored          SettlementOutcome = "ignored"
	OutcomeUnknownReference SettlementOutcome = "unknown_reference"
	OutcomeDuplicate        SettlementOutcome = "duplicate"
	OutcomeAmountMismatch   SettlementOutcome = "amount_mismatch"
	OutcomeSettled          SettlementOutcome = "settled"
	OutcomeError            SettlementOutcome = "error"
)

// SettlementService turns payment notifications into exactly-once credits.
type SettlementService interface {
	// HandleWebhook returns util.ErrInvalidSignature when the body is not
	// authentic. Any other error is an internal fault; the transport should
	// still acknowledge the delivery.
	HandleWebhook(ctx context.Context, body []byte, signature string) (SettlementOutcome, error)
	// ReconcileDeposit asks the gateway for reference's status and settles it
	// if the payment succeeded. Operator tooling only.
	ReconcileDeposit(ctx context.Context, reference string) (SettlementOutcome, error)
}

type settlementService struct {
	tx              TxFuncs
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	notifications   gateway.Notifications
	gateway         gateway.Client
	metrics         *metrics.Ledger
	logger          *slog.Logger
}

// NewSettlementService creates a new instance of SettlementService.
func NewSettlementService(
	tx TxFuncs,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	notifications gateway.Notifications,
	gatewayClient gateway.Client,
	ledgerMetrics *metrics.Ledger,
	logger *slog.Logger,
) SettlementService {
	return &settlementService{
		tx:              tx,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		notifications:   notifications,
		gateway:         gatewayClient,
		metrics:         ledgerMetrics,
		logger:          logger,
	}
}

func (s *settlementService) HandleWebhook(ctx context.Context, body []byte, signature string) (SettlementOutcome, error) {
	if !s.notifications.Verify(body, signature) {
		s.metrics.Settlement(string(OutcomeRejected))
		s.logger.Warn("webhook signature mismatch", "body_bytes", len(body))
		return OutcomeRejected, util.ErrInvalidSignature
	}

	event, err := s.notifications.Parse(body)
	if err != nil {
		s.logger.Warn("undecodable webhook acknowledged", "error", err)
		return s.record(OutcomeIgnored), nil
	}
	if !event.IsSuccessfulCharge() {
		s.logger.Info("non-settling webhook acknowledged", "event", event.Kind, "status", event.Status, "reference", event.Reference)
		return s.record(OutcomeIgnored), nil
	}

	return s.settle(ctx, event.Reference, event.Amount)
}

func (s *settlementService) ReconcileDeposit(ctx context.Context, reference string) (SettlementOutcome, error) {
	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return OutcomeError, fmt.Errorf("reconcile deposit: %w", err)
	}
	if !verification.Succeeded() {
		s.logger.Info("gateway reports unsettled payment", "reference", reference, "status", verification.Status)
		return OutcomeIgnored, nil
	}
	return s.settle(ctx, reference, verification.Amount)
}

// settle runs the locked pending -> success transition. The row lock on the
// transaction serializes concurrent deliveries of one reference, so the
// status check below sees the result of any earlier settlement.
func (s *settlementService) settle(ctx context.Context, reference string, notifiedAmount int64) (SettlementOutcome, error) {
	outcome := OutcomeError
	var credited *domain.Transaction
	var newBalance decimal.Decimal

	err := s.tx.inTx(ctx, "settle deposit", func(q repository.DBExecutor) error {
		pending, err := s.transactionRepo.GetTransactionByReferenceForUpdate(ctx, q, reference)
		if errors.Is(err, util.ErrTransactionNotFound) {
			outcome = OutcomeUnknownReference
			return nil
		}
		if err != nil {
			return fmt.Errorf("settle deposit: %w", err)
		}

		switch {
		case pending.Type != domain.TransactionTypeDeposit:
			outcome = OutcomeUnknownReference
			return nil
		case pending.Status == domain.TransactionStatusSuccess:
			outcome = OutcomeDuplicate
			return nil
		case pending.Status != domain.TransactionStatusPending:
			outcome = OutcomeIgnored
			return nil
		case !pending.Amount.Equal(decimal.NewFromInt(notifiedAmount)):
			outcome = OutcomeAmountMismatch
			return nil
		}

		if err := s.transactionRepo.UpdateTransactionStatus(ctx, q, pending.ID, domain.TransactionStatusPending, domain.TransactionStatusSuccess); err != nil {
			return fmt.Errorf("settle deposit: %w", err)
		}
		newBalance, err = s.walletRepo.AdjustBalance(ctx, q, pending.WalletID, pending.Amount, repository.AnyBalance)
		if err != nil {
			return fmt.Errorf("settle deposit: failed to credit wallet %s: %w", pending.WalletID, err)
		}

		credited = pending
		outcome = OutcomeSettled
		return nil
	})
	if err != nil {
		s.metrics.Settlement(string(OutcomeError))
		s.logger.Error("deposit settlement failed, left pending", "reference", reference, "error", err)
		return OutcomeError, err
	}

	switch outcome {
	case OutcomeSettled:
		s.logger.Info("deposit settled", "reference", reference, "wallet_id", credited.WalletID,
			"amount", credited.Amount.String(), "balance", newBalance.String())
	case OutcomeUnknownReference:
		s.logger.Warn("settlement for unknown reference acknowledged", "reference", reference)
	case OutcomeDuplicate:
		s.logger.Info("duplicate settlement acknowledged", "reference", reference)
	case OutcomeAmountMismatch:
		s.logger.Error("settlement amount differs from recorded deposit, left pending",
			"reference", reference, "notified_amount", notifiedAmount)
	default:
		s.logger.Info("settlement ignored for terminal transaction", "reference", reference)
	}
	return s.record(outcome), nil
}

func (s *settlementService) record(outcome SettlementOutcome) SettlementOutcome {
	s.metrics.Settlement(string(outcome))
	return outcome
}

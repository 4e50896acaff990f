// internal/service/transfer_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/metrics"
	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type transferMocks struct {
	tx           *MockTxController
	exec         *MockDBExecutor
	wallets      *MockWalletRepository
	transactions *MockTransactionRepository
	metrics      *metrics.Ledger
}

func newTestTransferService() (TransferService, transferMocks) {
	m := transferMocks{
		tx:           new(MockTxController),
		exec:         new(MockDBExecutor),
		wallets:      new(MockWalletRepository),
		transactions: new(MockTransactionRepository),
		metrics:      metrics.New(),
	}
	svc := NewTransferService(mockTx(m.tx), m.exec, m.wallets, m.transactions, m.metrics, util.DiscardLogger())
	return svc, m
}

// transfersWithResult reads wallet_transfers_total{result=...} from l's registry.
func transfersWithResult(t *testing.T, l *metrics.Ledger, result string) float64 {
	t.Helper()
	families, err := l.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "wallet_transfers_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "result" && label.GetValue() == result {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestTransfer(t *testing.T) {
	senderUserID := uuid.New()
	sender := &domain.Wallet{ID: uuid.New(), UserID: senderUserID, WalletNumber: "1000000000001", Balance: decimal.NewFromInt(1000)}
	recipient := &domain.Wallet{ID: uuid.New(), UserID: uuid.New(), WalletNumber: "1000000000002", Balance: decimal.NewFromInt(10)}
	amount := decimal.NewFromInt(300)

	t.Run("SuccessfulTransfer", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestTransferService()

		var legs []*domain.Transaction
		m.tx.On("Commit").Return(nil).Once()
		m.tx.On("Rollback").Return(nil).Maybe()
		m.wallets.On("GetWalletByUserID", ctx, m.exec, senderUserID).Return(sender, nil).Once()
		m.wallets.On("GetWalletByNumber", ctx, m.exec, recipient.WalletNumber).Return(recipient, nil).Once()
		m.wallets.On("LockWallets", ctx, mock.Anything, []uuid.UUID{sender.ID, recipient.ID}).Return(nil).Once()
		debit := m.wallets.On("AdjustBalance", ctx, mock.Anything, sender.ID, decEq(amount.Neg()), repository.RequireSufficient).
			Return(decimal.NewFromInt(700), nil).Once()
		m.wallets.On("AdjustBalance", ctx, mock.Anything, recipient.ID, decEq(amount), repository.AnyBalance).
			Return(decimal.NewFromInt(310), nil).Once().NotBefore(debit)
		m.transactions.On("CreateTransaction", ctx, mock.Anything, mock.AnythingOfType("*domain.Transaction")).
			Run(func(args mock.Arguments) { legs = append(legs, args.Get(2).(*domain.Transaction)) }).
			Return(nil).Twice()

		result, err := svc.Transfer(ctx, senderUserID, recipient.WalletNumber, amount)
		require.NoError(t, err)

		assert.True(t, result.SenderBalance.Equal(decimal.NewFromInt(700)))
		require.Len(t, legs, 2)
		assert.Equal(t, domain.TransactionTypeTransferOut, legs[0].Type)
		assert.Equal(t, sender.ID, legs[0].WalletID)
		assert.True(t, legs[0].Amount.Equal(amount.Neg()))
		assert.Equal(t, domain.TransactionTypeTransferIn, legs[1].Type)
		assert.Equal(t, recipient.ID, legs[1].WalletID)
		assert.True(t, legs[1].Amount.Equal(amount))
		assert.Equal(t, result.Out, legs[0])
		assert.Equal(t, result.In, legs[1])
		assert.Equal(t, float64(1), transfersWithResult(t, m.metrics, "success"))

		mock.AssertExpectationsForObjects(t, m.tx, m.wallets, m.transactions)
	})

	t.Run("InsufficientBalancePreCheck", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestTransferService()
		poor := &domain.Wallet{ID: uuid.New(), UserID: senderUserID, WalletNumber: "1000000000003", Balance: decimal.NewFromInt(100)}

		m.wallets.On("GetWalletByUserID", ctx, m.exec, senderUserID).Return(poor, nil).Once()
		m.wallets.On("GetWalletByNumber", ctx, m.exec, recipient.WalletNumber).Return(recipient, nil).Once()

		_, err := svc.Transfer(ctx, senderUserID, recipient.WalletNumber, decimal.NewFromInt(150))
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)

		m.wallets.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.transactions.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentDrainDetectedByGuardedDebit", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestTransferService()

		m.tx.On("Rollback").Return(nil).Once()
		m.wallets.On("GetWalletByUserID", ctx, m.exec, senderUserID).Return(sender, nil).Once()
		m.wallets.On("GetWalletByNumber", ctx, m.exec, recipient.WalletNumber).Return(recipient, nil).Once()
		m.wallets.On("LockWallets", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		m.wallets.On("AdjustBalance", ctx, mock.Anything, sender.ID, decEq(amount.Neg()), repository.RequireSufficient).
			Return(decimal.Zero, util.ErrInsufficientFunds).Once()

		_, err := svc.Transfer(ctx, senderUserID, recipient.WalletNumber, amount)
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)

		m.tx.AssertNotCalled(t, "Commit")
		m.wallets.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, recipient.ID, mock.Anything, mock.Anything)
		m.transactions.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, float64(1), transfersWithResult(t, m.metrics, "insufficient_funds"))
	})

	t.Run("LegWriteFailureRollsBackEverything", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestTransferService()

		m.tx.On("Rollback").Return(nil).Once()
		m.wallets.On("GetWalletByUserID", ctx, m.exec, senderUserID).Return(sender, nil).Once()
		m.wallets.On("GetWalletByNumber", ctx, m.exec, recipient.WalletNumber).Return(recipient, nil).Once()
		m.wallets.On("LockWallets", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		m.wallets.On("AdjustBalance", ctx, mock.Anything, sender.ID, mock.Anything, repository.RequireSufficient).
			Return(decimal.NewFromInt(700), nil).Once()
		m.wallets.On("AdjustBalance", ctx, mock.Anything, recipient.ID, mock.Anything, repository.AnyBalance).
			Return(decimal.NewFromInt(310), nil).Once()
		m.transactions.On("CreateTransaction", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		m.transactions.On("CreateTransaction", ctx, mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		_, err := svc.Transfer(ctx, senderUserID, recipient.WalletNumber, amount)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "in leg")
		m.tx.AssertNotCalled(t, "Commit")
		mock.AssertExpectationsForObjects(t, m.tx)
	})

	t.Run("SelfTransferRejected", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestTransferService()

		m.wallets.On("GetWalletByUserID", ctx, m.exec, senderUserID).Return(sender, nil).Once()
		m.wallets.On("GetWalletByNumber", ctx, m.exec, sender.WalletNumber).Return(sender, nil).Once()

		_, err := svc.Transfer(ctx, senderUserID, sender.WalletNumber, amount)
		assert.ErrorIs(t, err, util.ErrSameWalletTransfer)
		m.wallets.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownRecipient", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestTransferService()

		m.wallets.On("GetWalletByUserID", ctx, m.exec, senderUserID).Return(sender, nil).Once()
		m.wallets.On("GetWalletByNumber", ctx, m.exec, "9999999999999").Return(nil, util.ErrWalletNotFound).Once()

		_, err := svc.Transfer(ctx, senderUserID, "9999999999999", amount)
		assert.ErrorIs(t, err, util.ErrRecipientNotFound)
	})

	t.Run("UnknownSender", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestTransferService()

		m.wallets.On("GetWalletByUserID", ctx, m.exec, senderUserID).Return(nil, util.ErrWalletNotFound).Once()

		_, err := svc.Transfer(ctx, senderUserID, recipient.WalletNumber, amount)
		assert.ErrorIs(t, err, util.ErrWalletNotFound)
		assert.NotErrorIs(t, err, util.ErrRecipientNotFound)
	})

	t.Run("ValidationFailures", func(t *testing.T) {
		svc, m := newTestTransferService()

		_, err := svc.Transfer(context.Background(), senderUserID, recipient.WalletNumber, decimal.Zero)
		assert.ErrorIs(t, err, util.ErrInvalidAmount)

		_, err = svc.Transfer(context.Background(), senderUserID, recipient.WalletNumber, decimal.RequireFromString("1.001"))
		assert.ErrorIs(t, err, util.ErrInvalidAmount)

		_, err = svc.Transfer(context.Background(), senderUserID, "123", amount)
		assert.ErrorIs(t, err, util.ErrInvalidWalletNumber)

		m.wallets.AssertNotCalled(t, "GetWalletByUserID", mock.Anything, mock.Anything, mock.Anything)
	})
}

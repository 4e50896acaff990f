// internal/service/wallet_service_test.go
package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type walletServiceMocks struct {
	tx          *MockTxController
	exec        *MockDBExecutor
	users       *MockUserRepository
	wallets     *MockWalletRepository
	transaction *MockTransactionRepository
}

func newTestWalletService() (*walletService, walletServiceMocks) {
	m := walletServiceMocks{
		tx:          new(MockTxController),
		exec:        new(MockDBExecutor),
		users:       new(MockUserRepository),
		wallets:     new(MockWalletRepository),
		transaction: new(MockTransactionRepository),
	}
	svc := NewWalletService(mockTx(m.tx), m.exec, m.users, m.wallets, m.transaction, util.DiscardLogger()).(*walletService)
	return svc, m
}

// sequence returns a number generator yielding numbers in order.
func sequence(numbers ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(numbers) {
			return "", errors.New("sequence exhausted")
		}
		n := numbers[i]
		i++
		return n, nil
	}
}

func TestCreateUserAndWallet(t *testing.T) {
	t.Run("SuccessfulProvisioning", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestWalletService()
		svc.generateNumber = sequence("1000000000001")

		m.tx.On("Commit").Return(nil).Once()
		m.tx.On("Rollback").Return(nil).Maybe()
		m.users.On("CreateUser", ctx, mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil).Once()
		m.wallets.On("CreateWallet", ctx, mock.Anything, mock.MatchedBy(func(w *domain.Wallet) bool {
			return w.WalletNumber == "1000000000001" && w.Balance.IsZero()
		})).Return(nil).Once()

		user, wallet, err := svc.CreateUserAndWallet(ctx, "ada@example.com", "Ada")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, user.ID, wallet.UserID)
		assert.Equal(t, "1000000000001", wallet.WalletNumber)

		mock.AssertExpectationsForObjects(t, m.tx, m.users, m.wallets)
	})

	t.Run("RetriesWalletNumberCollision", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestWalletService()
		svc.generateNumber = sequence("1000000000001", "1000000000002")

		m.tx.On("Commit").Return(nil).Once()
		m.tx.On("Rollback").Return(nil).Maybe()
		m.users.On("CreateUser", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		m.wallets.On("CreateWallet", ctx, mock.Anything, mock.MatchedBy(func(w *domain.Wallet) bool {
			return w.WalletNumber == "1000000000001"
		})).Return(fmt.Errorf("wallet number taken: %w", util.ErrDuplicateEntry)).Once()
		m.wallets.On("CreateWallet", ctx, mock.Anything, mock.MatchedBy(func(w *domain.Wallet) bool {
			return w.WalletNumber == "1000000000002"
		})).Return(nil).Once()

		_, wallet, err := svc.CreateUserAndWallet(ctx, "ada@example.com", "Ada")
		require.NoError(t, err)
		assert.Equal(t, "1000000000002", wallet.WalletNumber)

		mock.AssertExpectationsForObjects(t, m.tx, m.users, m.wallets)
	})

	t.Run("ExhaustedWalletNumbersRollsBack", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestWalletService()
		svc.generateNumber = func() (string, error) { return "1000000000001", nil }

		m.tx.On("Rollback").Return(nil).Once()
		m.users.On("CreateUser", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		m.wallets.On("CreateWallet", ctx, mock.Anything, mock.Anything).
			Return(util.ErrDuplicateEntry).Times(MaxWalletNumberAttempts)

		_, _, err := svc.CreateUserAndWallet(ctx, "ada@example.com", "Ada")
		assert.ErrorIs(t, err, util.ErrWalletNumberExhausted)

		m.tx.AssertNotCalled(t, "Commit")
		mock.AssertExpectationsForObjects(t, m.tx, m.users, m.wallets)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newTestWalletService()

		m.tx.On("Rollback").Return(nil).Once()
		m.users.On("CreateUser", ctx, mock.Anything, mock.Anything).Return(util.ErrDuplicateEntry).Once()

		_, _, err := svc.CreateUserAndWallet(ctx, "ada@example.com", "Ada")
		assert.ErrorIs(t, err, util.ErrDuplicateEntry)
		m.wallets.AssertNotCalled(t, "CreateWallet", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptyEmail", func(t *testing.T) {
		svc, _ := newTestWalletService()
		_, _, err := svc.CreateUserAndWallet(context.Background(), "", "Ada")
		assert.ErrorIs(t, err, util.ErrInvalidInput)
	})
}

func TestCreateWallet_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestWalletService()
	userID := uuid.New()

	m.users.On("GetUserByID", ctx, m.exec, userID).Return(nil, util.ErrUserNotFound).Once()

	_, err := svc.CreateWallet(ctx, userID)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
	mock.AssertExpectationsForObjects(t, m.users)
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Found", func(t *testing.T) {
		svc, m := newTestWalletService()
		wallet := &domain.Wallet{ID: uuid.New(), UserID: userID, Balance: decimal.NewFromInt(1000)}
		m.wallets.On("GetWalletByUserID", ctx, m.exec, userID).Return(wallet, nil).Once()

		got, err := svc.GetBalance(ctx, userID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("NoWallet", func(t *testing.T) {
		svc, m := newTestWalletService()
		m.wallets.On("GetWalletByUserID", ctx, m.exec, userID).Return(nil, util.ErrWalletNotFound).Once()

		_, err := svc.GetBalance(ctx, userID)
		assert.ErrorIs(t, err, util.ErrWalletNotFound)
	})
}

func TestGetTransactions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), UserID: userID}

	cases := []struct {
		name                  string
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{"Defaults", 0, 0, DefaultPageLimit, 0},
		{"Explicit", 10, 20, 10, 20},
		{"Clamped", 1000, -5, MaxPageLimit, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, m := newTestWalletService()
			rows := []domain.Transaction{{Reference: "DEP_1"}}
			m.wallets.On("GetWalletByUserID", ctx, m.exec, userID).Return(wallet, nil).Once()
			m.transaction.On("GetTransactionsByWalletID", ctx, m.exec, wallet.ID, tc.wantLimit, tc.wantOffset).
				Return(rows, int64(1), nil).Once()

			got, total, err := svc.GetTransactions(ctx, userID, tc.limit, tc.offset)
			require.NoError(t, err)
			assert.Equal(t, rows, got)
			assert.Equal(t, int64(1), total)
			mock.AssertExpectationsForObjects(t, m.wallets, m.transaction)
		})
	}

	t.Run("NoWallet", func(t *testing.T) {
		svc, m := newTestWalletService()
		m.wallets.On("GetWalletByUserID", ctx, m.exec, userID).Return(nil, util.ErrWalletNotFound).Once()

		_, _, err := svc.GetTransactions(ctx, userID, 0, 0)
		assert.ErrorIs(t, err, util.ErrWalletNotFound)
		m.transaction.AssertNotCalled(t, "GetTransactionsByWalletID", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetDepositStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("ReportsWithoutSettling", func(t *testing.T) {
		svc, m := newTestWalletService()
		pending := domain.NewPendingDeposit(uuid.New(), decimal.NewFromInt(500), "DEP_1")
		m.transaction.On("GetDepositByReference", ctx, m.exec, "DEP_1").Return(pending, nil).Once()

		got, err := svc.GetDepositStatus(ctx, "DEP_1")
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusPending, got.Status)

		m.wallets.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.tx.AssertNotCalled(t, "Commit")
	})

	t.Run("Unknown", func(t *testing.T) {
		svc, m := newTestWalletService()
		m.transaction.On("GetDepositByReference", ctx, m.exec, "DEP_x").Return(nil, util.ErrTransactionNotFound).Once()

		_, err := svc.GetDepositStatus(ctx, "DEP_x")
		assert.ErrorIs(t, err, util.ErrTransactionNotFound)
	})
}

func TestGetWalletByNumber_Malformed(t *testing.T) {
	svc, m := newTestWalletService()
	_, err := svc.GetWalletByNumber(context.Background(), "12ab")
	assert.ErrorIs(t, err, util.ErrInvalidWalletNumber)
	m.wallets.AssertNotCalled(t, "GetWalletByNumber", mock.Anything, mock.Anything, mock.Anything)
}

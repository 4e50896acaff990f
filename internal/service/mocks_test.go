// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/gateway"
	"custodial-wallet/internal/repository"
	"custodial-wallet/pkg/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return m.Called(ctx, dest, query, args).Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return m.Called(ctx, dest, query, args).Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockTxController embeds MockDBExecutor so it satisfies repository.DBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	return m.Called().Error(0)
}

func (m *MockTxController) Rollback() error {
	return m.Called().Error(0)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return &sqlx.Tx{}, nil
}

// mockTx returns TxFuncs that hand out txController and route commit and
// rollback through it.
func mockTx(txController *MockTxController) TxFuncs {
	return TxFuncs{
		Beginner: new(MockDBBeginner),
		Begin: func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return txController, nil
		},
		Commit: func(tx db.TxController) error {
			return tx.Commit()
		},
		Rollback: func(tx db.TxController) {
			_ = tx.Rollback()
		},
	}
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	return m.Called(ctx, q, user).Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	args := m.Called(ctx, q, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	return m.Called(ctx, q, wallet).Error(0)
}

func (m *MockWalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	return m.wallet(m.Called(ctx, q, id))
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	return m.wallet(m.Called(ctx, q, userID))
}

func (m *MockWalletRepository) GetWalletByNumber(ctx context.Context, q repository.DBExecutor, walletNumber string) (*domain.Wallet, error) {
	return m.wallet(m.Called(ctx, q, walletNumber))
}

func (m *MockWalletRepository) wallet(args mock.Arguments) (*domain.Wallet, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) LockWallets(ctx context.Context, q repository.DBExecutor, ids ...uuid.UUID) error {
	return m.Called(ctx, q, ids).Error(0)
}

func (m *MockWalletRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, delta decimal.Decimal, cond repository.BalanceCondition) (decimal.Decimal, error) {
	args := m.Called(ctx, q, walletID, delta, cond)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	return m.Called(ctx, q, transaction).Error(0)
}

func (m *MockTransactionRepository) GetTransactionByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, q, reference))
}

func (m *MockTransactionRepository) GetTransactionByReferenceForUpdate(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, q, reference))
}

func (m *MockTransactionRepository) GetDepositByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, q, reference))
}

func (m *MockTransactionRepository) transaction(args mock.Arguments) (*domain.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransactionStatus(ctx context.Context, q repository.DBExecutor, id uuid.UUID, from, to domain.TransactionStatus) error {
	return m.Called(ctx, q, id, from, to).Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, walletID, limit, offset)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

// MockGateway is a mock implementation of gateway.Client.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.Authorization, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Authorization), args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, reference string) (*gateway.Verification, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Verification), args.Error(1)
}

// decEq matches a decimal argument by numeric value.
func decEq(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(got decimal.Decimal) bool { return got.Equal(want) })
}

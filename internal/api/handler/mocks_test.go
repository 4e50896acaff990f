// internal/api/handler/mocks_test.go
package handler

import (
	"context"

	"custodial-wallet/internal/auth"
	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) CreateUserAndWallet(ctx context.Context, email, name string) (*domain.User, *domain.Wallet, error) {
	args := m.Called(ctx, email, name)
	u, _ := args.Get(0).(*domain.User)
	w, _ := args.Get(1).(*domain.Wallet)
	return u, w, args.Error(2)
}

func (m *MockWalletService) CreateWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(*domain.Wallet)
	return w, args.Error(1)
}

func (m *MockWalletService) GetWalletByUser(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(*domain.Wallet)
	return w, args.Error(1)
}

func (m *MockWalletService) GetWalletByNumber(ctx context.Context, walletNumber string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletNumber)
	w, _ := args.Get(0).(*domain.Wallet)
	return w, args.Error(1)
}

func (m *MockWalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(*domain.Wallet)
	return w, args.Error(1)
}

func (m *MockWalletService) GetTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	txns, _ := args.Get(0).([]domain.Transaction)
	return txns, args.Get(1).(int64), args.Error(2)
}

func (m *MockWalletService) GetDepositStatus(ctx context.Context, reference string) (*domain.Transaction, error) {
	args := m.Called(ctx, reference)
	t, _ := args.Get(0).(*domain.Transaction)
	return t, args.Error(1)
}

type MockDepositService struct {
	mock.Mock
}

func (m *MockDepositService) InitiateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*service.DepositInitiation, error) {
	args := m.Called(ctx, userID, amount.String())
	d, _ := args.Get(0).(*service.DepositInitiation)
	return d, args.Error(1)
}

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Transfer(ctx context.Context, senderUserID uuid.UUID, recipientWalletNumber string, amount decimal.Decimal) (*service.TransferResult, error) {
	args := m.Called(ctx, senderUserID, recipientWalletNumber, amount.String())
	r, _ := args.Get(0).(*service.TransferResult)
	return r, args.Error(1)
}

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) HandleWebhook(ctx context.Context, body []byte, signature string) (service.SettlementOutcome, error) {
	args := m.Called(ctx, string(body), signature)
	return args.Get(0).(service.SettlementOutcome), args.Error(1)
}

func (m *MockSettlementService) ReconcileDeposit(ctx context.Context, reference string) (service.SettlementOutcome, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(service.SettlementOutcome), args.Error(1)
}

type MockKeyIssuer struct {
	mock.Mock
}

func (m *MockKeyIssuer) Issue(ctx context.Context, userID uuid.UUID, name string, perms []domain.Permission, expiry string) (*auth.IssuedKey, error) {
	args := m.Called(ctx, userID, name, perms, expiry)
	k, _ := args.Get(0).(*auth.IssuedKey)
	return k, args.Error(1)
}

func (m *MockKeyIssuer) Rollover(ctx context.Context, userID, expiredKeyID uuid.UUID, expiry string) (*auth.IssuedKey, error) {
	args := m.Called(ctx, userID, expiredKeyID, expiry)
	k, _ := args.Get(0).(*auth.IssuedKey)
	return k, args.Error(1)
}

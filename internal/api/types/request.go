// internal/api/types/request.go
package types

import "github.com/shopspring/decimal"

// DepositRequest represents the request body for POST /wallet/deposit.
// Amount is in the gateway's minor unit.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest represents the request body for POST /wallet/transfer.
type TransferRequest struct {
	WalletNumber string          `json:"wallet_number" validate:"required,len=13,numeric"`
	Amount       decimal.Decimal `json:"amount"`
}

// CreateAPIKeyRequest represents the request body for POST /keys/create.
type CreateAPIKeyRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Permissions []string `json:"permissions" validate:"required,min=1,dive,oneof=deposit transfer read"`
	Expiry      string   `json:"expiry" validate:"required,max=6"`
}

// RolloverAPIKeyRequest represents the request body for POST /keys/rollover.
type RolloverAPIKeyRequest struct {
	ExpiredKeyID string `json:"expired_key_id" validate:"required,uuid"`
	Expiry       string `json:"expiry" validate:"required,max=6"`
}

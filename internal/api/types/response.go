// internal/api/types/response.go
package types

import (
	"time"

	"custodial-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// PaginatedResponse defines a generic structure for paginated API responses.
// T represents the type of data contained in the 'Data' slice.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BalanceResponse is returned by GET /wallet/balance.
type BalanceResponse struct {
	WalletNumber string          `json:"wallet_number"`
	Balance      decimal.Decimal `json:"balance"`
}

// DepositStatusResponse is returned by GET /wallet/deposit/{reference}/status.
type DepositStatusResponse struct {
	Reference string                   `json:"reference"`
	Status    domain.TransactionStatus `json:"status"`
	Amount    decimal.Decimal          `json:"amount"`
}

// TransferResponse is returned by POST /wallet/transfer.
type TransferResponse struct {
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	Reference    string          `json:"reference"`
	Amount       decimal.Decimal `json:"amount"`
	Balance      decimal.Decimal `json:"balance"`
	CompletedAt  time.Time       `json:"completed_at"`
	Counterparty string          `json:"recipient_wallet_number"`
}

// WebhookAck is the only body a webhook sender ever receives on success.
type WebhookAck struct {
	Status bool `json:"status"`
}

// internal/util/errors.go
package util

import "errors"

// Validation errors. Rejected before any state change.
var (
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInvalidAmount       = errors.New("amount must be a positive whole number of minor units")
	ErrInvalidWalletNumber = errors.New("wallet number must be 13 digits with no leading zero")
)

// Not-found errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrRecipientNotFound   = errors.New("recipient wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Conflict errors.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrSameWalletTransfer = errors.New("cannot transfer to the same wallet")
	ErrWalletExists       = errors.New("user already has a wallet")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrConcurrentUpdate   = errors.New("concurrent update conflict, retry the request")
	ErrBalanceOverflow    = errors.New("balance exceeds the storable range")
)

// Integrity and provisioning errors.
var (
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrReferenceCollision    = errors.New("could not allocate a unique transaction reference")
	ErrWalletNumberExhausted = errors.New("could not allocate a unique wallet number")
	ErrGateway               = errors.New("payment gateway error")
)

// Identity boundary errors.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTooManyKeys  = errors.New("maximum number of active API keys reached")
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

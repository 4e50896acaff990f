// internal/domain/wallet.go
package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// WalletNumberLength is the fixed number of digits in a public wallet number.
const WalletNumberLength = 13

// Wallet is a user's custodial balance. Each user owns exactly one wallet,
// addressed externally by its immutable WalletNumber.
type Wallet struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.UUID       `db:"user_id" json:"user_id"`
	WalletNumber string          `db:"wallet_number" json:"wallet_number"`
	Balance      decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(38, 2), never negative
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// NewWallet creates a zero-balance wallet for userID.
func NewWallet(userID uuid.UUID, walletNumber string) *Wallet {
	return &Wallet{
		ID:           uuid.New(),
		UserID:       userID,
		WalletNumber: walletNumber,
		Balance:      decimal.Zero,
		CreatedAt:    time.Now().UTC(),
	}
}

var walletNumberSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(WalletNumberLength-1), nil)

// GenerateWalletNumber returns a random 13 digit number without a leading zero.
func GenerateWalletNumber() (string, error) {
	// [0, 9*10^12) shifted by 10^12 lands in [10^12, 10^13).
	upper := new(big.Int).Mul(walletNumberSpace, big.NewInt(9))
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("failed to read random wallet number: %w", err)
	}
	return n.Add(n, walletNumberSpace).String(), nil
}

// ValidWalletNumber reports whether s has the shape of a wallet number: 13
// digits, the first non-zero.
func ValidWalletNumber(s string) bool {
	if len(s) != WalletNumberLength || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

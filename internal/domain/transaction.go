// internal/domain/transaction.go
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// TransactionType defines the kind of monetary movement.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
)

// TransactionStatus defines the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// IsTerminal reports whether no further status transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}

// Transaction is one monetary movement on exactly one wallet. Amount is signed:
// credits are positive, transfer_out legs are negative.
type Transaction struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	WalletID  uuid.UUID          `db:"wallet_id" json:"wallet_id"`
	Type      TransactionType    `db:"type" json:"type"`
	Amount    decimal.Decimal    `db:"amount" json:"amount"`
	Status    TransactionStatus  `db:"status" json:"status"`
	Reference string             `db:"reference" json:"reference"`
	Metadata  types.NullJSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}

// NewPendingDeposit creates the pending record written before a gateway call.
func NewPendingDeposit(walletID uuid.UUID, amount decimal.Decimal, reference string) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		WalletID:  walletID,
		Type:      TransactionTypeDeposit,
		Amount:    amount,
		Status:    TransactionStatusPending,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	}
}

// TransferCounterparty is recorded in each transfer leg's metadata.
type TransferCounterparty struct {
	RecipientWalletNumber string     `json:"recipient_wallet_number,omitempty"`
	RecipientWalletID     *uuid.UUID `json:"recipient_wallet_id,omitempty"`
	SenderWalletNumber    string     `json:"sender_wallet_number,omitempty"`
	SenderWalletID        *uuid.UUID `json:"sender_wallet_id,omitempty"`
	CounterpartReference  string     `json:"counterpart_reference"`
}

// NewTransferLegs builds the settled out/in pair for a transfer of amount from
// sender to recipient. Both legs share one timestamp and one creation time.
func NewTransferLegs(sender, recipient *Wallet, amount decimal.Decimal, refs TransferRefs) (out, in *Transaction, err error) {
	now := time.Now().UTC()

	outMeta, err := json.Marshal(TransferCounterparty{
		RecipientWalletNumber: recipient.WalletNumber,
		RecipientWalletID:     &recipient.ID,
		CounterpartReference:  refs.In,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode transfer_out metadata: %w", err)
	}
	inMeta, err := json.Marshal(TransferCounterparty{
		SenderWalletNumber:   sender.WalletNumber,
		SenderWalletID:       &sender.ID,
		CounterpartReference: refs.Out,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode transfer_in metadata: %w", err)
	}

	out = &Transaction{
		ID:        uuid.New(),
		WalletID:  sender.ID,
		Type:      TransactionTypeTransferOut,
		Amount:    amount.Neg(),
		Status:    TransactionStatusSuccess,
		Reference: refs.Out,
		Metadata:  types.NullJSONText{JSONText: outMeta, Valid: true},
		CreatedAt: now,
	}
	in = &Transaction{
		ID:        uuid.New(),
		WalletID:  recipient.ID,
		Type:      TransactionTypeTransferIn,
		Amount:    amount,
		Status:    TransactionStatusSuccess,
		Reference: refs.In,
		Metadata:  types.NullJSONText{JSONText: inMeta, Valid: true},
		CreatedAt: now,
	}
	return out, in, nil
}

// internal/service/tx.go
package service

import (
	"context"
	"fmt"

	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/util"
	"custodial-wallet/pkg/db"

	"github.com/shopspring/decimal"
)

// TxFuncs bundles the injected transaction primitives. Production code uses
// NewTxFuncs; tests substitute closures returning a mock controller.
type TxFuncs struct {
	Beginner db.DBTxBeginner
	Begin    db.BeginTxFunc
	Commit   db.CommitTxFunc
	Rollback db.RollbackTxFunc
}

// NewTxFuncs wires the pkg/db transaction manager to beginner.
func NewTxFuncs(beginner db.DBTxBeginner) TxFuncs {
	return TxFuncs{
		Beginner: beginner,
		Begin:    db.BeginTx,
		Commit:   db.CommitTx,
		Rollback: db.RollbackTx,
	}
}

// inTx runs fn inside one database transaction. fn's error aborts and rolls
// back every write it made; op prefixes infrastructure errors.
func (t TxFuncs) inTx(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := t.Begin(ctx, t.Beginner)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer t.Rollback(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := t.Commit(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}

// maxAmount bounds a single amount to what transactions.amount NUMERIC(15, 2)
// can hold. Balances are wider.
var maxAmount = decimal.New(1, 13)

// validateAmount accepts positive amounts with at most two decimal places.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThanOrEqual(maxAmount) {
		return util.ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(2)) {
		return util.ErrInvalidAmount
	}
	return nil
}

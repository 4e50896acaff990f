// internal/repository/postgres/errors.go
package postgres

import (
	"errors"

	"custodial-wallet/internal/util"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the ledger reacts to.
const (
	codeNumericOutOfRange    = "22003"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// classify maps driver errors onto application sentinels. Errors it does not
// recognise are returned as-is.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		return errors.Join(util.ErrDuplicateEntry, err)
	case codeCheckViolation:
		// wallets_balance_non_negative backs up the conditional decrement.
		return errors.Join(util.ErrInsufficientFunds, err)
	case codeNumericOutOfRange:
		return errors.Join(util.ErrBalanceOverflow, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return errors.Join(util.ErrConcurrentUpdate, err)
	}
	return err
}

// constraintName returns the violated constraint, if err carries one.
func constraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

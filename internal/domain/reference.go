// internal/domain/reference.go
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Reference prefixes. They make a reference self-describing in audits.
const (
	DepositReferencePrefix     = "DEP_"
	TransferOutReferencePrefix = "TRF_OUT_"
	TransferInReferencePrefix  = "TRF_IN_"
)

// correlationSuffix is a ULID: 48 bits of millisecond time followed by 80
// random bits, so collisions need the same millisecond and the same entropy.
func correlationSuffix(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

// DepositReference mints DEP_<userID>_<ulid>.
func DepositReference(userID uuid.UUID, now time.Time) string {
	var b strings.Builder
	b.WriteString(DepositReferencePrefix)
	b.WriteString(userID.String())
	b.WriteByte('_')
	b.WriteString(correlationSuffix(now))
	return b.String()
}

// TransferRefs holds the paired references of one transfer.
type TransferRefs struct {
	Out string
	In  string
}

// TransferReferences mints TRF_OUT_<ulid> and TRF_IN_<ulid> sharing a suffix.
func TransferReferences(now time.Time) TransferRefs {
	suffix := correlationSuffix(now)
	return TransferRefs{
		Out: TransferOutReferencePrefix + suffix,
		In:  TransferInReferencePrefix + suffix,
	}
}

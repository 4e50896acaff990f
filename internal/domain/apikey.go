// internal/domain/apikey.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Permission grants access to one class of wallet operation.
type Permission string

const (
	PermissionDeposit  Permission = "deposit"
	PermissionTransfer Permission = "transfer"
	PermissionRead     Permission = "read"
)

// AllPermissions is granted to interactive (bearer token) sessions.
var AllPermissions = []Permission{PermissionDeposit, PermissionTransfer, PermissionRead}

// ValidPermission reports whether p is a known permission.
func ValidPermission(p Permission) bool {
	switch p {
	case PermissionDeposit, PermissionTransfer, PermissionRead:
		return true
	}
	return false
}

// APIKey is a stored machine credential. Only a bcrypt hash of the secret is
// kept; Prefix is the indexed lookup handle embedded in the raw key.
type APIKey struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	UserID      uuid.UUID      `db:"user_id" json:"user_id"`
	Name        string         `db:"name" json:"name"`
	Prefix      string         `db:"prefix" json:"prefix"`
	KeyHash     string         `db:"key_hash" json:"-"`
	Permissions pq.StringArray `db:"permissions" json:"permissions"`
	ExpiresAt   time.Time      `db:"expires_at" json:"expires_at"`
	Revoked     bool           `db:"revoked" json:"revoked"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Active reports whether the key may still authenticate at now.
func (k *APIKey) Active(now time.Time) bool {
	return !k.Revoked && now.Before(k.ExpiresAt)
}

// Grants reports whether the key carries permission p.
func (k *APIKey) Grants(p Permission) bool {
	for _, have := range k.Permissions {
		if Permission(have) == p {
			return true
		}
	}
	return false
}

// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the wallet owner. Email is the payer identity handed to the gateway.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewUser creates a new User instance.
func NewUser(email, name string) *User {
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

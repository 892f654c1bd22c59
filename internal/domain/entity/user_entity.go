package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account status values for a user.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in Password.
// Balance is mutated only by the scoring transaction; at any instant it
// equals the sum of the user's wallet entries.
type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	Role      string
	Balance   decimal.Decimal
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the account may log in and submit answers.
func (u *User) IsActive() bool { return u.Status == StatusActive }

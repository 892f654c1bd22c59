package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Attempt records one user's scored submission for one question.
// At most one attempt exists per (UserID, QuestionID) pair; the outcome
// is immutable once written.
type Attempt struct {
	ID         int64
	UserID     int64
	QuestionID int64
	Correct    bool
	CreatedAt  time.Time
}

// WalletEntry is an append-only record of a credit to a user's balance.
// One entry is written per correct attempt; entries are never updated
// or deleted.
type WalletEntry struct {
	ID        int64
	UserID    int64
	Amount    decimal.Decimal
	CreatedAt time.Time
}

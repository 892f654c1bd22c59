package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
)

// ScoringRepository is the transactional boundary of the reward engine.
//
// RecordAttempt persists one scored submission as a single atomic unit:
// the attempt row, the question counter increments, and — when correct —
// the wallet entry plus the balance credit. Implementations must enforce
// the one-attempt-per-(user, question) invariant inside the same
// transaction or lock scope as the insert and return ErrDuplicate when
// it is violated, so that concurrent submissions for the same pair
// serialize to exactly one success.
type ScoringRepository interface {
	// RecordAttempt returns the user's post-transaction balance. The
	// balance is only meaningful when correct is true and reward is
	// non-zero; for wrong answers it is decimal.Zero.
	RecordAttempt(ctx context.Context, userID, questionID int64, correct bool, reward decimal.Decimal) (decimal.Decimal, error)
	// AttemptsByUser returns all attempts for a user, oldest first.
	AttemptsByUser(ctx context.Context, userID int64) ([]entity.Attempt, error)
	// WalletEntriesByUser returns the user's credit history, oldest first.
	WalletEntriesByUser(ctx context.Context, userID int64) ([]entity.WalletEntry, error)
}

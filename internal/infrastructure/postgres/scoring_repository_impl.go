package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
	"github.com/quizpay/quizpay-api/internal/domain/repository"
)

// ScoringRepository drives the reward transaction. All four mutations
// for a correct answer (attempt row, question counters, wallet entry,
// balance credit) commit as one unit or not at all.
type ScoringRepository struct {
	pool *pgxpool.Pool
}

func NewScoringRepository(pool *pgxpool.Pool) *ScoringRepository {
	return &ScoringRepository{pool: pool}
}

// RecordAttempt inserts the attempt first so the UNIQUE (user_id,
// question_id) index serializes concurrent submissions for the same
// pair: the loser of the race blocks until the winner commits, then
// fails with a unique violation mapped to ErrDuplicate. Counter and
// balance updates are single atomic statements, so no increment is ever
// lost under concurrency.
func (r *ScoringRepository) RecordAttempt(ctx context.Context, userID, questionID int64, correct bool, reward decimal.Decimal) (decimal.Decimal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO attempts (user_id, question_id, correct)
		VALUES ($1, $2, $3)
	`, userID, questionID, correct); err != nil {
		if isUniqueViolation(err) {
			return decimal.Zero, repository.ErrDuplicate
		}
		return decimal.Zero, err
	}

	var counterSQL string
	if correct {
		counterSQL = `
			UPDATE questions
			SET views = views + 1,
			    correct_guess_count = correct_guess_count + 1,
			    updated_at = now()
			WHERE id = $1`
	} else {
		counterSQL = `
			UPDATE questions
			SET views = views + 1,
			    wrong_guess_count = wrong_guess_count + 1,
			    updated_at = now()
			WHERE id = $1`
	}
	res, err := tx.Exec(ctx, counterSQL, questionID)
	if err != nil {
		return decimal.Zero, err
	}
	if res.RowsAffected() == 0 {
		return decimal.Zero, repository.ErrNotFound
	}

	balance := decimal.Zero
	if correct {
		if _, err := tx.Exec(ctx, `
			INSERT INTO wallet_entries (user_id, amount)
			VALUES ($1, $2)
		`, userID, reward.String()); err != nil {
			return decimal.Zero, err
		}

		var raw string
		if err := tx.QueryRow(ctx, `
			UPDATE users
			SET balance = balance + $1, updated_at = now()
			WHERE id = $2
			RETURNING balance::text
		`, reward.String(), userID).Scan(&raw); err != nil {
			return decimal.Zero, err
		}
		if balance, err = decimal.NewFromString(raw); err != nil {
			return decimal.Zero, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *ScoringRepository) AttemptsByUser(ctx context.Context, userID int64) ([]entity.Attempt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, question_id, correct, created_at
		FROM attempts
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []entity.Attempt
	for rows.Next() {
		var a entity.Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.Correct, &a.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (r *ScoringRepository) WalletEntriesByUser(ctx context.Context, userID int64) ([]entity.WalletEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, amount::text, created_at
		FROM wallet_entries
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []entity.WalletEntry
	for rows.Next() {
		var e entity.WalletEntry
		var amount string
		if err := rows.Scan(&e.ID, &e.UserID, &amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ repository.ScoringRepository = (*ScoringRepository)(nil)

package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
	"github.com/quizpay/quizpay-api/internal/domain/repository"
)

type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func (r *QuestionRepository) Create(ctx context.Context, q *entity.Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO questions (category, question, options, answer)
		VALUES ($1, $2, $3, $4)
		RETURNING id, views, correct_guess_count, wrong_guess_count, created_at, updated_at
	`, q.Category, q.Text, opts, q.Answer)

	if err := row.Scan(&q.ID, &q.Views, &q.CorrectGuessCount, &q.WrongGuessCount,
		&q.CreatedAt, &q.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*entity.Question, error) {
	return r.getOne(ctx, `
		SELECT id, category, question, options, answer,
		       views, correct_guess_count, wrong_guess_count, created_at, updated_at
		FROM questions
		WHERE id = $1
	`, id)
}

// Random selects one uniformly-random question in the category. Display
// does not touch the view counter; views move only when an answer is scored.
func (r *QuestionRepository) Random(ctx context.Context, category string) (*entity.Question, error) {
	return r.getOne(ctx, `
		SELECT id, category, question, options, answer,
		       views, correct_guess_count, wrong_guess_count, created_at, updated_at
		FROM questions
		WHERE category = $1
		ORDER BY random()
		LIMIT 1
	`, category)
}

func (r *QuestionRepository) getOne(ctx context.Context, query string, arg any) (*entity.Question, error) {
	q := &entity.Question{}
	var opts []byte

	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&q.ID, &q.Category, &q.Text, &opts, &q.Answer,
		&q.Views, &q.CorrectGuessCount, &q.WrongGuessCount, &q.CreatedAt, &q.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(opts, &q.Options); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuestionRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM questions ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

var _ repository.QuestionRepository = (*QuestionRepository)(nil)

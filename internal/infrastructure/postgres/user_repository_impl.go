package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
	"github.com/quizpay/quizpay-api/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, user_role, balance::text, status, created_at, updated_at
	`, u.Name, u.Email, u.Password)

	var balance string
	if err := row.Scan(&u.ID, &u.Role, &balance, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return scanBalance(balance, &u.Balance)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT id, name, email, password, user_role, balance::text, status, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT id, name, email, password, user_role, balance::text, status, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	var balance string

	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role,
		&balance, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := scanBalance(balance, &u.Balance); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) ListActive(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, password, user_role, balance::text, status, created_at, updated_at
		FROM users
		WHERE status = $1
		ORDER BY id
	`, entity.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var u entity.User
		var balance string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role,
			&balance, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if err := scanBalance(balance, &u.Balance); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update writes profile fields only. Balance is owned by the scoring
// transaction and never touched here.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, updated_at = $3
		WHERE id = $4
	`, u.Name, u.Email, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET status = $1, updated_at = now()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanBalance(s string, d *decimal.Decimal) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

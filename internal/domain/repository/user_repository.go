package repository

import (
	"context"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Balance is deliberately absent from Update: it is owned by the scoring
// transaction in ScoringRepository.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListActive(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	SetStatus(ctx context.Context, id int64, status string) error
}

package repository

import (
	"context"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
)

// QuestionRepository manages question content. Counters are excluded
// here on purpose; they move only inside the scoring transaction.
type QuestionRepository interface {
	Create(ctx context.Context, q *entity.Question) error
	GetByID(ctx context.Context, id int64) (*entity.Question, error)
	// Random returns one uniformly-random question in the category.
	Random(ctx context.Context, category string) (*entity.Question, error)
	Categories(ctx context.Context) ([]string, error)
}

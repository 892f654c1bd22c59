package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
	"github.com/quizpay/quizpay-api/internal/domain/repository"
)

func seedStore(t *testing.T) (*Store, *entity.User, *entity.Question) {
	t.Helper()
	s := NewStore()
	ctx := context.Background()

	u := &entity.User{Name: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, s.Create(ctx, u))

	q := &entity.Question{
		Category: "geography",
		Text:     "What is the capital of France?",
		Options:  map[string]string{"a": "Paris", "b": "London"},
		Answer:   "a",
	}
	require.NoError(t, s.Questions().Create(ctx, q))
	return s, u, q
}

func TestRecordAttemptRewardsOnce(t *testing.T) {
	s, u, q := seedStore(t)
	ctx := context.Background()
	reward := decimal.NewFromInt(100)

	balance, err := s.RecordAttempt(ctx, u.ID, q.ID, true, reward)
	require.NoError(t, err)
	assert.True(t, balance.Equal(reward))

	_, err = s.RecordAttempt(ctx, u.ID, q.ID, true, reward)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	stored, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(reward))
}

func TestRecordAttemptWrongAnswerNoCredit(t *testing.T) {
	s, u, q := seedStore(t)
	ctx := context.Background()

	balance, err := s.RecordAttempt(ctx, u.ID, q.ID, false, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	entries, err := s.WalletEntriesByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	stored, err := s.Questions().GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Views)
	assert.Equal(t, int64(1), stored.WrongGuessCount)
}

func TestRecordAttemptUnknownQuestion(t *testing.T) {
	s, u, _ := seedStore(t)

	_, err := s.RecordAttempt(context.Background(), u.ID, 9999, true, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordAttemptConcurrent(t *testing.T) {
	s, u, q := seedStore(t)
	ctx := context.Background()
	reward := decimal.NewFromInt(100)

	const workers = 64
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.RecordAttempt(ctx, u.ID, q.ID, true, reward)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins int
	for err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, repository.ErrDuplicate)
		}
	}
	assert.Equal(t, 1, wins)

	attempts, err := s.AttemptsByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)

	stored, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(reward))
}

func TestAttemptsByUserOrdered(t *testing.T) {
	s, u, q := seedStore(t)
	ctx := context.Background()

	q2 := &entity.Question{
		Category: "geography",
		Text:     "What is the capital of Germany?",
		Options:  map[string]string{"a": "Paris", "b": "Berlin"},
		Answer:   "b",
	}
	require.NoError(t, s.Questions().Create(ctx, q2))

	_, err := s.RecordAttempt(ctx, u.ID, q.ID, true, decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = s.RecordAttempt(ctx, u.ID, q2.ID, false, decimal.Zero)
	require.NoError(t, err)

	attempts, err := s.AttemptsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.True(t, attempts[0].ID < attempts[1].ID)
	assert.Equal(t, q.ID, attempts[0].QuestionID)
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	s, u, _ := seedStore(t)
	ctx := context.Background()

	other := &entity.User{Name: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, s.Create(ctx, other))

	u.Email = "bob@example.com"
	assert.ErrorIs(t, s.Update(ctx, u), repository.ErrDuplicate)
}

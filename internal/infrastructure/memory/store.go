package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
	"github.com/quizpay/quizpay-api/internal/domain/repository"
)

type attemptKey struct {
	userID     int64
	questionID int64
}

// Store is an in-memory implementation of the user, question, and
// scoring repositories. A single mutex gives RecordAttempt the same
// semantics the Postgres store gets from its transaction plus the
// UNIQUE (user_id, question_id) index: the duplicate check, the attempt
// insert, the counter increments, and the balance credit happen in one
// critical section.
type Store struct {
	mu sync.Mutex

	users       map[int64]*entity.User
	questions   map[int64]*entity.Question
	attempted   map[attemptKey]struct{}
	attemptList []entity.Attempt
	wallet      []entity.WalletEntry

	nextUserID     int64
	nextQuestionID int64
	nextAttemptID  int64
	nextWalletID   int64

	rnd *rand.Rand
}

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]*entity.User),
		questions: make(map[int64]*entity.Question),
		attempted: make(map[attemptKey]struct{}),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// --- repository.UserRepository ---

func (s *Store) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	if u.Role == "" {
		u.Role = "user"
	}
	if u.Status == "" {
		u.Status = entity.StatusActive
	}
	u.Balance = decimal.Zero
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListActive(_ context.Context) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []entity.User
	for id := int64(1); id <= s.nextUserID; id++ {
		if u, ok := s.users[id]; ok && u.Status == entity.StatusActive {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *Store) Update(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	existing.Name = u.Name
	existing.Email = u.Email
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SetStatus(_ context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now()
	return nil
}

// --- repository.QuestionRepository ---

func (s *Store) CreateQuestion(_ context.Context, q *entity.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.questions {
		if existing.Text == q.Text {
			return repository.ErrDuplicate
		}
	}
	s.nextQuestionID++
	q.ID = s.nextQuestionID
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *Store) GetQuestionByID(_ context.Context, id int64) (*entity.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *Store) RandomQuestion(_ context.Context, category string) (*entity.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*entity.Question
	for _, q := range s.questions {
		if q.Category == category {
			matched = append(matched, q)
		}
	}
	if len(matched) == 0 {
		return nil, repository.ErrNotFound
	}
	cp := *matched[s.rnd.Intn(len(matched))]
	return &cp, nil
}

func (s *Store) QuestionCategories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var categories []string
	for id := int64(1); id <= s.nextQuestionID; id++ {
		q, ok := s.questions[id]
		if !ok {
			continue
		}
		if _, dup := seen[q.Category]; !dup {
			seen[q.Category] = struct{}{}
			categories = append(categories, q.Category)
		}
	}
	return categories, nil
}

// --- repository.ScoringRepository ---

func (s *Store) RecordAttempt(_ context.Context, userID, questionID int64, correct bool, reward decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{userID: userID, questionID: questionID}
	if _, exists := s.attempted[key]; exists {
		return decimal.Zero, repository.ErrDuplicate
	}
	q, ok := s.questions[questionID]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}

	s.nextAttemptID++
	s.attempted[key] = struct{}{}
	s.attemptList = append(s.attemptList, entity.Attempt{
		ID:         s.nextAttemptID,
		UserID:     userID,
		QuestionID: questionID,
		Correct:    correct,
		CreatedAt:  time.Now(),
	})

	q.Views++
	if correct {
		q.CorrectGuessCount++
	} else {
		q.WrongGuessCount++
	}
	q.UpdatedAt = time.Now()

	if !correct {
		return decimal.Zero, nil
	}

	u, ok := s.users[userID]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	s.nextWalletID++
	s.wallet = append(s.wallet, entity.WalletEntry{
		ID:        s.nextWalletID,
		UserID:    userID,
		Amount:    reward,
		CreatedAt: time.Now(),
	})
	u.Balance = u.Balance.Add(reward)
	u.UpdatedAt = time.Now()
	return u.Balance, nil
}

func (s *Store) AttemptsByUser(_ context.Context, userID int64) ([]entity.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var attempts []entity.Attempt
	for _, a := range s.attemptList {
		if a.UserID == userID {
			attempts = append(attempts, a)
		}
	}
	return attempts, nil
}

func (s *Store) WalletEntriesByUser(_ context.Context, userID int64) ([]entity.WalletEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []entity.WalletEntry
	for _, e := range s.wallet {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Adapters expose the Store under each repository interface without
// method-name collisions on question operations.

type QuestionStore struct{ *Store }

func (s QuestionStore) Create(ctx context.Context, q *entity.Question) error {
	return s.CreateQuestion(ctx, q)
}

func (s QuestionStore) GetByID(ctx context.Context, id int64) (*entity.Question, error) {
	return s.GetQuestionByID(ctx, id)
}

func (s QuestionStore) Random(ctx context.Context, category string) (*entity.Question, error) {
	return s.RandomQuestion(ctx, category)
}

func (s QuestionStore) Categories(ctx context.Context) ([]string, error) {
	return s.QuestionCategories(ctx)
}

// Questions returns the store viewed as a QuestionRepository.
func (s *Store) Questions() repository.QuestionRepository { return QuestionStore{s} }

var (
	_ repository.UserRepository     = (*Store)(nil)
	_ repository.ScoringRepository  = (*Store)(nil)
	_ repository.QuestionRepository = QuestionStore{}
)

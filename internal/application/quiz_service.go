package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
	repo "github.com/quizpay/quizpay-api/internal/domain/repository"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrDuplicateAttempt = errors.New("question already attempted")
	ErrNoAttempts       = errors.New("no attempts yet")
	ErrQuestionExists   = errors.New("question already exists")
	ErrNoCategories     = errors.New("no categories")
)

// RewardAmount is the fixed credit for a correct answer. Deliberately a
// constant rather than configuration; no per-question reward exists.
var RewardAmount = decimal.NewFromInt(100)

// QuizService is the scoring engine plus its read-side companions
// (stats aggregation, random selection, question management).
type QuizService struct {
	Questions repo.QuestionRepository
	Scoring   repo.ScoringRepository
	Users     repo.UserRepository
	Logger    *logrus.Logger
	ES        *elasticsearch.Client
	ESIndex   string
}

func NewQuizService(questions repo.QuestionRepository, scoring repo.ScoringRepository, users repo.UserRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *QuizService {
	return &QuizService{
		Questions: questions,
		Scoring:   scoring,
		Users:     users,
		Logger:    logger,
		ES:        es,
		ESIndex:   esIndex,
	}
}

// AnswerResult is the outcome of one submission. A wrong answer is a
// successful operation, not an error; it discloses the correct answer.
type AnswerResult struct {
	Correct       bool
	AmountEarned  decimal.Decimal
	TotalBalance  decimal.Decimal
	CorrectAnswer string // populated only when Correct is false
}

// SubmitAnswer scores one submission. Comparison is exact and
// case-sensitive. The store either commits every mutation for this
// attempt or none of them; duplicates surface as ErrDuplicateAttempt
// before any reward is granted.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID, questionID int64, answer string) (*AnswerResult, error) {
	q, err := s.Questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("load question: %w", err)
	}

	correct := q.Answer == answer
	reward := decimal.Zero
	if correct {
		reward = RewardAmount
	}

	balance, err := s.Scoring.RecordAttempt(ctx, userID, questionID, correct, reward)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateAttempt
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"user_id":     userID,
				"question_id": questionID,
			}).Error("record attempt failed")
		}
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	res := &AnswerResult{Correct: correct, AmountEarned: reward, TotalBalance: balance}
	if !correct {
		res.CorrectAnswer = q.Answer
	}
	return res, nil
}

// UserStats aggregates a user's attempt history.
type UserStats struct {
	TotalAttempted     int             `json:"total_attempted"`
	CorrectCount       int             `json:"correct_count"`
	WrongCount         int             `json:"wrong_count"`
	AccuracyPercentage float64         `json:"accuracy_percentage"`
	TotalEarnings      decimal.Decimal `json:"total_earnings"`
}

// GetUserStats computes totals and accuracy from the attempt records.
// A user with zero attempts is a not-found condition, not empty stats.
func (s *QuizService) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	attempts, err := s.Scoring.AttemptsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	if len(attempts) == 0 {
		return nil, ErrNoAttempts
	}

	stats := &UserStats{TotalAttempted: len(attempts), TotalEarnings: decimal.Zero}
	for _, a := range attempts {
		if a.Correct {
			stats.CorrectCount++
		} else {
			stats.WrongCount++
		}
	}
	stats.AccuracyPercentage = roundTwo(float64(stats.CorrectCount) / float64(stats.TotalAttempted) * 100)

	u, err := s.Users.GetByID(ctx, userID)
	switch {
	case err == nil:
		stats.TotalEarnings = u.Balance
	case errors.Is(err, repo.ErrNotFound):
		// attempts without a user row; earnings stay zero
	default:
		return nil, fmt.Errorf("load user: %w", err)
	}
	return stats, nil
}

// GetRandomQuestion picks one uniformly-random question in the
// category. Selection never mutates counters; views move only when an
// answer is scored.
func (s *QuizService) GetRandomQuestion(ctx context.Context, category string) (*entity.Question, error) {
	q, err := s.Questions.Random(ctx, category)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("random question: %w", err)
	}
	return q, nil
}

type AddQuestionInput struct {
	Category string
	Text     string
	Options  map[string]string
	Answer   string
}

// AddQuestion stores a new question; duplicate question text is rejected.
func (s *QuizService) AddQuestion(ctx context.Context, in AddQuestionInput) (*entity.Question, error) {
	q := &entity.Question{
		Category: in.Category,
		Text:     in.Text,
		Options:  in.Options,
		Answer:   in.Answer,
	}
	if err := s.Questions.Create(ctx, q); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrQuestionExists
		}
		return nil, fmt.Errorf("create question: %w", err)
	}
	_ = s.indexQuestion(ctx, q)
	return q, nil
}

// Categories lists the distinct categories; an empty catalogue is a
// not-found condition.
func (s *QuizService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.Questions.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	return categories, nil
}

// indexQuestion pushes question content to Elasticsearch for search.
// The answer is never indexed. Best-effort: failures are logged, the
// write already committed.
func (s *QuizService) indexQuestion(ctx context.Context, q *entity.Question) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         q.ID,
		"category":   q.Category,
		"question":   q.Text,
		"created_at": q.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESIndex,
		DocumentID: fmt.Sprintf("%d", q.ID),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("question_id", q.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("question_id", q.ID).Warn("es index response error")
	}
	return nil
}

// SearchQuestions performs a multi_match search on question text and category.
func (s *QuizService) SearchQuestions(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"question^2", "category"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func roundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/quizpay/quizpay-api/internal/domain/entity"
	repo "github.com/quizpay/quizpay-api/internal/domain/repository"
	"github.com/quizpay/quizpay-api/pkg/helpers"
	"github.com/quizpay/quizpay-api/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountInactive    = errors.New("account is inactive")
)

// UserService handles registration, authentication, and profile CRUD.
// It is glue around the scoring core: the only balance reads happen via
// the repository, never through cached state.
type UserService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
	Pub    *helpers.RabbitPublisher
}

func NewUserService(r repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher) *UserService {
	return &UserService{Repo: r, JWT: jwt, Redis: rdb, Logger: logger, Pub: pub}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Register creates a new active user and enqueues a welcome email.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Name: name, Email: email, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.Pub != nil {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: "welcome",
			Data:     map[string]any{"Name": u.Name},
		}
		if pErr := s.Pub.PublishJSON(ctx, job); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("email", u.Email).Warn("welcome email enqueue failed")
		}
	}
	return u, nil
}

// Authenticate validates email/password without issuing tokens.
// Inactive accounts cannot log in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive() {
		return nil, ErrAccountInactive
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates an access/refresh pair and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	uid := strconv.FormatInt(u.ID, 10)
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(uid, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(uid, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(uid)
		fields := map[string]any{
			"user_id":    uid,
			"email":      u.Email,
			"name":       u.Name,
			"sid":        sid,
			"created_at": nowRFC3339(),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

type LoginResponse struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return &LoginResponse{UserID: u.ID, Email: u.Email, Name: u.Name}, pair, nil
}

// Refresh rotates the session and both tokens.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil || !u.IsActive() {
		return TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		key := sessionKey(claims.UserID)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.IssueTokens(ctx, u)
}

// Logout drops the Redis session.
func (s *UserService) Logout(ctx context.Context, userID int64) {
	if s.Redis == nil {
		return
	}
	_ = s.Redis.Del(ctx, sessionKey(strconv.FormatInt(userID, 10))).Err()
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ListUsers returns all active users.
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.Repo.ListActive(ctx)
}

type UpdateProfileInput struct {
	Name  string
	Email string
}

// UpdateProfile changes name/email; balance and status are out of reach here.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if s.Redis != nil {
		uid := strconv.FormatInt(u.ID, 10)
		key := sessionKey(uid)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"name":       u.Name,
			"email":      u.Email,
			"updated_at": nowRFC3339(),
		})
		if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return u, nil
}

// Deactivate soft-deletes the account (status -> inactive) and drops
// the session so outstanding tokens stop working.
func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	if err := s.Repo.SetStatus(ctx, userID, entity.StatusInactive); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.Logout(ctx, userID)
	return nil
}

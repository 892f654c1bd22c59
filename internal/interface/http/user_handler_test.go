package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/quizpay/quizpay-api/internal/application"
	"github.com/quizpay/quizpay-api/internal/infrastructure/memory"
	"github.com/quizpay/quizpay-api/internal/interface/middleware"
	"github.com/quizpay/quizpay-api/pkg/helpers"
	"github.com/quizpay/quizpay-api/pkg/validation"
)

func newUserEnv(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	svc := app.NewUserService(store, jwt, rdb, logger, nil)
	h := NewUserHandler(svc, logger, "localhost", false)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/refresh", h.Refresh)

	auth := api.Group("/", middleware.Auth(rdb, jwt))
	auth.POST("/logout", h.Logout)
	auth.GET("/profile", h.GetProfile)
	auth.PUT("/profile", h.UpdateProfile)
	auth.DELETE("/profile", h.Deactivate)
	auth.GET("/users", h.List)

	return r
}

func doJSON(r *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r *gin.Engine, name, email, password string) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/register", gin.H{
		"name": name, "email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func login(t *testing.T, r *gin.Engine, email, password string) []*http.Cookie {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/login", gin.H{
		"email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := w.Result()
	defer func() { _ = res.Body.Close() }()
	cookies := res.Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestRegisterValidation(t *testing.T) {
	r := newUserEnv(t)

	w := doJSON(r, http.MethodPost, "/api/register", gin.H{
		"name": "alice", "email": "not-an-email", "password": "password123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/register", gin.H{
		"name": "alice", "email": "alice@example.com", "password": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmailEndpoint(t *testing.T) {
	r := newUserEnv(t)
	register(t, r, "alice", "alice@example.com", "password123")

	w := doJSON(r, http.MethodPost, "/api/register", gin.H{
		"name": "other", "email": "alice@example.com", "password": "password456",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginSetsCookiesAndProfileWorks(t *testing.T) {
	r := newUserEnv(t)
	register(t, r, "alice", "alice@example.com", "password123")
	cookies := login(t, r, "alice@example.com", "password123")

	var hasAccess, hasRefresh bool
	for _, ck := range cookies {
		switch ck.Name {
		case "access_token":
			hasAccess = ck.Value != ""
		case "refresh_token":
			hasRefresh = ck.Value != ""
		}
	}
	assert.True(t, hasAccess)
	assert.True(t, hasRefresh)

	w := doJSON(r, http.MethodGet, "/api/profile", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
}

func TestLoginBadCredentials(t *testing.T) {
	r := newUserEnv(t)
	register(t, r, "alice", "alice@example.com", "password123")

	w := doJSON(r, http.MethodPost, "/api/login", gin.H{
		"email": "alice@example.com", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileRequiresAuth(t *testing.T) {
	r := newUserEnv(t)

	w := doJSON(r, http.MethodGet, "/api/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfileEndpoint(t *testing.T) {
	r := newUserEnv(t)
	register(t, r, "alice", "alice@example.com", "password123")
	cookies := login(t, r, "alice@example.com", "password123")

	w := doJSON(r, http.MethodPut, "/api/profile", gin.H{"name": "alicia"}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alicia")
}

func TestDeactivateEndsSession(t *testing.T) {
	r := newUserEnv(t)
	register(t, r, "alice", "alice@example.com", "password123")
	cookies := login(t, r, "alice@example.com", "password123")

	w := doJSON(r, http.MethodDelete, "/api/profile", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	// The session is gone, so the old cookies no longer authenticate.
	w = doJSON(r, http.MethodGet, "/api/profile", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// And the account cannot log back in.
	w = doJSON(r, http.MethodPost, "/api/login", gin.H{
		"email": "alice@example.com", "password": "password123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	r := newUserEnv(t)
	register(t, r, "alice", "alice@example.com", "password123")
	cookies := login(t, r, "alice@example.com", "password123")

	w := doJSON(r, http.MethodPost, "/api/refresh", nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsersEndpoint(t *testing.T) {
	r := newUserEnv(t)
	register(t, r, "alice", "alice@example.com", "password123")
	register(t, r, "bob", "bob@example.com", "password123")
	cookies := login(t, r, "alice@example.com", "password123")

	w := doJSON(r, http.MethodGet, "/api/users", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bob@example.com")
}

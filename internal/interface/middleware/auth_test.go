package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizpay/quizpay-api/pkg/helpers"
)

func authTestRouter(t *testing.T) (*gin.Engine, *helpers.JWTManager, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	r := gin.New()
	r.GET("/protected", Auth(rdb, jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64(CtxUserIDKey)})
	})
	return r, jwt, mr
}

func TestAuthMissingToken(t *testing.T) {
	r, _, _ := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthBearerToken(t *testing.T) {
	r, jwt, mr := authTestRouter(t)

	token, _, err := jwt.GenerateAccessToken("42", "sid-1")
	require.NoError(t, err)
	mr.HSet("user:session:42", "sid", "sid-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
}

func TestAuthCookieToken(t *testing.T) {
	r, jwt, mr := authTestRouter(t)

	token, _, err := jwt.GenerateAccessToken("7", "sid-7")
	require.NoError(t, err)
	mr.HSet("user:session:7", "sid", "sid-7")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthSessionMismatch(t *testing.T) {
	r, jwt, mr := authTestRouter(t)

	token, _, err := jwt.GenerateAccessToken("42", "sid-old")
	require.NoError(t, err)
	mr.HSet("user:session:42", "sid", "sid-new")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthNoSession(t *testing.T) {
	r, jwt, _ := authTestRouter(t)

	token, _, err := jwt.GenerateAccessToken("42", "sid-1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthGarbageToken(t *testing.T) {
	r, _, _ := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

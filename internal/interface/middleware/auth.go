package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/quizpay/quizpay-api/pkg/helpers"
	"github.com/quizpay/quizpay-api/pkg/response"
)

// CtxUserIDKey is the Gin context key holding the authenticated user id (int64).
const CtxUserIDKey = "userID"

// Auth resolves the bearer credential into a user id before any handler
// runs: it validates the access token (cookie first, Authorization
// header as fallback) and requires a live session in Redis bound to the
// token's session id. On success the int64 user id is set in the Gin
// context; the scoring engine trusts it verbatim.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}
		uid, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		if rdb != nil {
			key := "user:session:" + claims.UserID
			data, err := rdb.HGetAll(c.Request.Context(), key).Result()
			if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				c.Abort()
				return
			}
		}

		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

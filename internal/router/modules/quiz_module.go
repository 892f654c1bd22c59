package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizpay/quizpay-api/internal/container"
	handlers "github.com/quizpay/quizpay-api/internal/interface/http"
	"github.com/quizpay/quizpay-api/internal/interface/middleware"
	"github.com/quizpay/quizpay-api/pkg/helpers"
)

// QuizModule wires the quiz HTTP handlers into routes. Everything is
// behind auth: answering and stats are per-user, and questions carry
// their answers server-side.

type QuizModule struct {
	Handler *handlers.QuizHandler
	JWT     *helpers.JWTManager
}

func NewQuizModule(h *handlers.QuizHandler, jwt *helpers.JWTManager) *QuizModule {
	return &QuizModule{Handler: h, JWT: jwt}
}

func (m *QuizModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))

	answerLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil)

	{
		auth.POST("/questions", m.Handler.AddQuestion)
		auth.GET("/categories", m.Handler.Categories)
		auth.GET("/questions/random", m.Handler.RandomQuestion)
		auth.POST("/questions/answer", answerLimiter, m.Handler.SubmitAnswer)
		auth.GET("/questions/search", m.Handler.Search)
		auth.GET("/stats", m.Handler.Stats)
	}
}

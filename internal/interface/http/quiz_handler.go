package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	quizapp "github.com/quizpay/quizpay-api/internal/application"
	"github.com/quizpay/quizpay-api/internal/domain/entity"
	"github.com/quizpay/quizpay-api/internal/interface/middleware"
	"github.com/quizpay/quizpay-api/pkg/response"
	"github.com/quizpay/quizpay-api/pkg/validation"
)

type QuizHandler struct {
	Svc    *quizapp.QuizService
	Logger *logrus.Logger
}

func NewQuizHandler(svc *quizapp.QuizService, logger *logrus.Logger) *QuizHandler {
	return &QuizHandler{Svc: svc, Logger: logger}
}

type addQuestionRequest struct {
	Category string            `json:"category" binding:"required"`
	Question string            `json:"question" binding:"required"`
	Options  map[string]string `json:"options" binding:"required,min=2"`
	Answer   string            `json:"answer" binding:"required"`
}

type answerRequest struct {
	QuestionID int64  `json:"question_id" binding:"required,gt=0"`
	Answer     string `json:"answer" binding:"required"`
}

// questionView hides the answer and the scoring counters.
func questionView(q *entity.Question) gin.H {
	return gin.H{
		"id":       q.ID,
		"category": q.Category,
		"question": q.Text,
		"options":  q.Options,
	}
}

// AddQuestion POST /api/questions
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	var req addQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if _, ok := req.Options[req.Answer]; !ok {
		response.Error[any](c, http.StatusBadRequest, "answer must be one of the option keys", nil)
		return
	}
	q, err := h.Svc.AddQuestion(c.Request.Context(), quizapp.AddQuestionInput{
		Category: req.Category,
		Text:     req.Question,
		Options:  req.Options,
		Answer:   req.Answer,
	})
	if err != nil {
		if errors.Is(err, quizapp.ErrQuestionExists) {
			response.Error[any](c, http.StatusBadRequest, "question already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("add question failed")
		response.Error[any](c, http.StatusInternalServerError, "transaction failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": q.ID}, "question created successfully")
}

// Categories GET /api/categories
func (h *QuizHandler) Categories(c *gin.Context) {
	cats, err := h.Svc.Categories(c.Request.Context())
	if err != nil {
		if errors.Is(err, quizapp.ErrNoCategories) {
			response.Error[any](c, http.StatusNotFound, "no categories available", nil)
			return
		}
		h.Logger.WithError(err).Error("list categories failed")
		response.Error[any](c, http.StatusInternalServerError, "transaction failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": cats, "count": len(cats)}, "categories")
}

// RandomQuestion GET /api/questions/random?category=X
func (h *QuizHandler) RandomQuestion(c *gin.Context) {
	q, err := h.Svc.GetRandomQuestion(c.Request.Context(), c.Query("category"))
	if err != nil {
		if errors.Is(err, quizapp.ErrQuestionNotFound) {
			response.Error[any](c, http.StatusNotFound, "no questions found", nil)
			return
		}
		h.Logger.WithError(err).Error("random question failed")
		response.Error[any](c, http.StatusInternalServerError, "transaction failed", nil)
		return
	}
	response.Success(c, http.StatusOK, questionView(q), "question")
}

// SubmitAnswer POST /api/questions/answer
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetInt64(middleware.CtxUserIDKey)
	res, err := h.Svc.SubmitAnswer(c.Request.Context(), uid, req.QuestionID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, quizapp.ErrQuestionNotFound):
			response.Error[any](c, http.StatusNotFound, "question not found", nil)
		case errors.Is(err, quizapp.ErrDuplicateAttempt):
			response.Error[any](c, http.StatusConflict, "question already answered", nil)
		default:
			h.Logger.WithError(err).Error("submit answer failed")
			response.Error[any](c, http.StatusInternalServerError, "transaction failed", nil)
		}
		return
	}
	if res.Correct {
		response.Success(c, http.StatusOK, gin.H{
			"correct":       true,
			"amount_earned": res.AmountEarned,
			"total_balance": res.TotalBalance,
		}, "correct answer")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"correct":        false,
		"correct_answer": res.CorrectAnswer,
	}, "wrong answer")
}

// Stats GET /api/stats
func (h *QuizHandler) Stats(c *gin.Context) {
	uid := c.GetInt64(middleware.CtxUserIDKey)
	stats, err := h.Svc.GetUserStats(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, quizapp.ErrNoAttempts) {
			response.Error[any](c, http.StatusNotFound, "not yet started", nil)
			return
		}
		h.Logger.WithError(err).Error("stats failed")
		response.Error[any](c, http.StatusInternalServerError, "transaction failed", nil)
		return
	}
	response.Success(c, http.StatusOK, stats, "stats")
}

// Search GET /api/questions/search?q=...
func (h *QuizHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	hits, err := h.Svc.SearchQuestions(c.Request.Context(), query, 20)
	if err != nil {
		h.Logger.WithError(err).Error("search failed")
		response.Error[any](c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": hits}, "search results")
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/quizpay/quizpay-api/internal/application"
	"github.com/quizpay/quizpay-api/internal/domain/entity"
	"github.com/quizpay/quizpay-api/internal/interface/middleware"
	"github.com/quizpay/quizpay-api/pkg/helpers"
	"github.com/quizpay/quizpay-api/pkg/response"
	"github.com/quizpay/quizpay-api/pkg/validation"
)

type UserHandler struct {
	Svc     *userapp.UserService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *userapp.UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

func userView(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"status":     u.Status,
		"balance":    u.Balance,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Register POST /api/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userapp.ErrEmailTaken) {
			response.Error[any](c, http.StatusBadRequest, "email already registered", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, "transaction failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": u.ID, "email": u.Email}, "user created successfully")
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userapp.ErrAccountInactive) {
			response.Error[any](c, http.StatusUnauthorized, "unauthorized account", nil)
			return
		}
		response.Error[any](c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, res, "login successful")
}

// Refresh POST /api/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed")
}

// Logout POST /api/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetInt64(middleware.CtxUserIDKey))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetInt64(middleware.CtxUserIDKey))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile")
}

// UpdateProfile PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetInt64(middleware.CtxUserIDKey),
		userapp.UpdateProfileInput{Name: req.Name, Email: req.Email})
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, userapp.ErrEmailTaken):
			response.Error[any](c, http.StatusBadRequest, "email already registered", nil)
		default:
			h.Logger.WithError(err).Error("update profile failed")
			response.Error[any](c, http.StatusInternalServerError, "transaction failed", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile updated")
}

// Deactivate DELETE /api/profile (soft delete)
func (h *UserHandler) Deactivate(c *gin.Context) {
	uid := c.GetInt64(middleware.CtxUserIDKey)
	if err := h.Svc.Deactivate(c.Request.Context(), uid); err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("deactivate failed")
		response.Error[any](c, http.StatusInternalServerError, "transaction failed", nil)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted successfully")
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list users failed")
		response.Error[any](c, http.StatusInternalServerError, "transaction failed", nil)
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userView(&users[i]))
	}
	response.Success(c, http.StatusOK, out, "users")
}

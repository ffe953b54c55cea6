package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-optimizer/internal/shared/auth"
	"resume-optimizer/internal/shared/server/middleware"
	"resume-optimizer/internal/shared/server/respond"
)

// UsageCounter reports the number of completed analyses for a user.
type UsageCounter interface {
	CountForUser(ctx context.Context, userID string) (int, error)
}

// Handler wires HTTP handlers to the users service.
type Handler struct {
	Svc    *Service
	Tokens *auth.TokenManager
	Usage  UsageCounter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, tokens *auth.TokenManager, usage UsageCounter) *Handler {
	return &Handler{Svc: svc, Tokens: tokens, Usage: usage}
}

// RegisterAuthRoutes attaches the unauthenticated signup/login routes.
func (h *Handler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.signup)
	rg.POST("/auth/token", h.token)
}

// RegisterRoutes attaches routes that require authentication.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.me)
}

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "email and password are required", nil)
		return
	}

	user, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusBadRequest, "email_taken", "Email already registered", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create account", nil)
		}
		return
	}

	h.issueToken(c, user)
}

func (h *Handler) token(c *gin.Context) {
	// OAuth2 password grant form: "username" carries the email.
	email := c.PostForm("username")
	password := c.PostForm("password")
	if email == "" || password == "" {
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "username and password are required", nil)
		return
	}

	user, err := h.Svc.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Incorrect email or password", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to authenticate", nil)
		}
		return
	}

	h.issueToken(c, user)
}

func (h *Handler) issueToken(c *gin.Context, user User) {
	token, err := h.Tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	respond.OK(c, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "unknown account", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}

	usageCount := 0
	if h.Usage != nil {
		count, err := h.Usage.CountForUser(c.Request.Context(), user.ID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load usage", nil)
			return
		}
		usageCount = count
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"usage_count": usageCount,
	})
}

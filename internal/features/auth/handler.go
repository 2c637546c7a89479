package auth

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/middleware"
	"github.com/eduflow/eduflow-server-go/pkg/cache"
	"github.com/eduflow/eduflow-server-go/pkg/email"
	"github.com/eduflow/eduflow-server-go/pkg/response"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db       *gorm.DB
	tokens   TokenConfig
	denylist cache.Client
	mailer   email.Sender
	logger   *slog.Logger
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, tokens TokenConfig, denylist cache.Client, mailer email.Sender, logger *slog.Logger) *Handler {
	return &Handler{
		db:       db,
		tokens:   tokens,
		denylist: denylist,
		mailer:   mailer,
		logger:   logger,
	}
}

// Register creates a new account and returns the user with a token pair.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email     string  `json:"email"`
		FirstName string  `json:"firstName"`
		LastName  string  `json:"lastName"`
		Phone     *string `json:"phone"`
		City      *string `json:"city"`
		Password  string  `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid registration payload", err)
		return
	}

	result, err := Register(h.db, RegisterInput{
		Email:     strings.TrimSpace(strings.ToLower(req.Email)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
		City:      req.City,
		Password:  req.Password,
	}, h.tokens)
	if err != nil {
		h.respondError(c, err, "registration failed")
		return
	}

	h.sendWelcome(c, result.User)

	response.Created(c, h.serialize(result), "Account created successfully.")
}

// Login authenticates a user and returns a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid login payload", err)
		return
	}

	result, err := Login(h.db, LoginInput{
		Email:    strings.TrimSpace(strings.ToLower(req.Email)),
		Password: req.Password,
	}, h.tokens)
	if err != nil {
		h.respondError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, h.serialize(result), "Logged in successfully.", nil)
}

// Logout clears the stored refresh token and denylists the presented access
// token until it expires on its own.
func (h *Handler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" || token == authHeader {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	claims, err := Logout(h.db, token, h.tokens)
	if err != nil {
		h.respondError(c, err, "logout failed")
		return
	}

	if claims.ExpiresAt != nil {
		if err := middleware.RevokeToken(c, h.denylist, token, claims.ExpiresAt.Time); err != nil {
			h.logger.Warn("failed to denylist access token", slog.String("error", err.Error()))
		}
	}

	response.Success(c, http.StatusOK, true, "Logged out successfully.", nil)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "refresh token required", err)
		return
	}

	pair, err := RefreshAccessToken(h.db, req.RefreshToken, h.tokens)
	if err != nil {
		h.respondError(c, err, "token refresh failed")
		return
	}

	response.Success(c, http.StatusOK, pair, "", nil)
}

func (h *Handler) serialize(result *AuthResponse) gin.H {
	return gin.H{
		"user":         result.User.Serialize(result.User.ID),
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}
}

func (h *Handler) sendWelcome(c *gin.Context, usr *user.User) {
	if h.mailer == nil {
		return
	}

	subject, html, text := email.Welcome(usr.FirstName)
	if err := h.mailer.Send(c.Request.Context(), email.Options{
		To:      usr.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}); err != nil {
		// Registration succeeded; the welcome mail is best-effort.
		h.logger.Warn("failed to send welcome email",
			slog.String("email", usr.Email),
			slog.String("error", err.Error()))
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = "Email and password are required."
	case errors.Is(err, ErrInvalidEmail):
		status = http.StatusBadRequest
		message = "Invalid email format."
	case errors.Is(err, ErrWeakPassword), errors.Is(err, user.ErrInvalidPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters."
	case errors.Is(err, user.ErrEmailTaken):
		status = http.StatusConflict
		message = "Email already exists."
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid email or password."
	case errors.Is(err, ErrInactiveAccount):
		status = http.StatusForbidden
		message = "Your account is inactive. Please contact support."
	case errors.Is(err, ErrInvalidToken), errors.Is(err, user.ErrUserNotFound):
		status = http.StatusUnauthorized
		message = "Invalid or expired token."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

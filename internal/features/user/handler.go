package user

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/middleware"
	"github.com/eduflow/eduflow-server-go/pkg/pagination"
	"github.com/eduflow/eduflow-server-go/pkg/response"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// Handler processes user HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a user handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns paginated user profiles. Any authenticated user may browse;
// other people's profiles come back in the reduced public shape.
func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)
	filters := ListFilters{
		Keyword:    c.Query("filterKeyword"),
		ActiveOnly: c.Query("activeOnly") == "true",
	}

	users, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list users", err)
		return
	}

	profiles := make([]interface{}, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Serialize(actor.ID))
	}

	response.Success(c, http.StatusOK, profiles, "", pagination.MetadataFrom(total, params))
}

// Me returns the authenticated user's own profile.
func (h *Handler) Me(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	usr, err := Get(h.db, actor.ID)
	if err != nil {
		h.respondError(c, err, "failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, usr.Serialize(actor.ID), "", nil)
}

// UpdateMe modifies the authenticated user's own profile.
func (h *Handler) UpdateMe(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	h.applyUpdate(c, actor.ID, actor)
}

// GetByID fetches a single profile, redacted unless it is the viewer's own.
func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	usr, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	response.Success(c, http.StatusOK, usr.Serialize(actor.ID), "", nil)
}

// Update modifies a user account. Users edit themselves; admins edit anyone.
func (h *Handler) Update(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if id != actor.ID && actor.Role() != types.RoleAdmin {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied.", nil)
		return
	}

	h.applyUpdate(c, id, actor)
}

// Delete removes a user account. Users delete themselves; admins delete anyone.
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if id != actor.ID && actor.Role() != types.RoleAdmin {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied.", nil)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete user")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) applyUpdate(c *gin.Context, id uuid.UUID, actor *middleware.User) {
	var req struct {
		Email       *string `json:"email"`
		FirstName   *string `json:"firstName"`
		LastName    *string `json:"lastName"`
		Phone       *string `json:"phone"`
		City        *string `json:"city"`
		AvatarURL   *string `json:"avatarUrl"`
		Password    *string `json:"password"`
		IsActive    *bool   `json:"isActive"`
		IsModerator *bool   `json:"isModerator"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user payload", err)
		return
	}

	input := UpdateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}

	if req.Phone != nil {
		input.PhoneProvided = true
		input.Phone = req.Phone
	}
	if req.City != nil {
		input.CityProvided = true
		input.City = req.City
	}
	if req.AvatarURL != nil {
		input.AvatarProvided = true
		input.AvatarURL = req.AvatarURL
	}

	// Only admins flip account flags.
	if actor.Role() == types.RoleAdmin {
		input.Active = req.IsActive
		input.IsModerator = req.IsModerator
	} else if req.IsActive != nil || req.IsModerator != nil {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied: account flags are admin-only.", nil)
		return
	}

	usr, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update user")
		return
	}

	response.Success(c, http.StatusOK, usr.Serialize(actor.ID), "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrEmailTaken):
		status = http.StatusConflict
		message = "Email already exists."
	case errors.Is(err, ErrInvalidPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters."
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusBadRequest
		message = "Invalid email or password."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

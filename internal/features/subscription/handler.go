package subscription

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/middleware"
	"github.com/eduflow/eduflow-server-go/internal/policy"
	"github.com/eduflow/eduflow-server-go/pkg/pagination"
	"github.com/eduflow/eduflow-server-go/pkg/response"
)

// Handler processes subscription HTTP requests. Subscriptions are strictly
// self-service; every query runs through SubscriptionScope.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a subscription handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns the caller's own subscriptions.
func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)
	scoped := h.db.Scopes(policy.SubscriptionScope(actor.ID))

	subs, total, err := List(scoped, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, subs, "", pagination.MetadataFrom(total, params))
}

// Subscribe subscribes the caller to a course. Repeat calls return the
// existing subscription with 200 instead of 201.
func (h *Handler) Subscribe(c *gin.Context) {
	actor, courseID, ok := h.resolveCourse(c)
	if !ok {
		return
	}

	sub, created, err := Subscribe(h.db, actor.ID, courseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to subscribe", err)
		return
	}

	if created {
		response.Created(c, sub, "Subscribed successfully.")
		return
	}
	response.Success(c, http.StatusOK, sub, "Already subscribed.", nil)
}

// Unsubscribe removes the caller's subscription to a course.
func (h *Handler) Unsubscribe(c *gin.Context) {
	actor, courseID, ok := h.resolveCourse(c)
	if !ok {
		return
	}

	if err := Unsubscribe(h.db, actor.ID, courseID); err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Subscription not found.", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to unsubscribe", err)
		return
	}

	response.Success(c, http.StatusOK, true, "Unsubscribed successfully.", nil)
}

// resolveCourse parses the courseId param and checks the course exists.
// Subscribing works on any existing course regardless of content visibility.
func (h *Handler) resolveCourse(c *gin.Context) (*middleware.User, uuid.UUID, bool) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return actor, uuid.Nil, false
	}

	crs, err := course.Get(h.db, id)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found.", err)
		} else {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		}
		return actor, uuid.Nil, false
	}

	return actor, crs.ID, true
}

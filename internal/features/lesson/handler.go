package lesson

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

// Notifier enqueues course-update notifications. Delivery happens in the
// background; lesson creation never waits on mail.
type Notifier interface {
	EnqueueCourseUpdate(courseID uuid.UUID, lessonTitle string)
}

// Handler processes lesson HTTP requests.
type Handler struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
}

// NewHandler constructs a lesson handler instance.
func NewHandler(db *gorm.DB, notifier Notifier, logger *slog.Logger) *Handler {
	return &Handler{db: db, notifier: notifier, logger: logger}
}

// ListByCourse returns the lessons of a course in display order. The course
// itself must be visible to the caller.
func (h *Handler) ListByCourse(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	courseID, ok := h.visibleCourse(c, actor)
	if !ok {
		return
	}

	params := pagination.Extract(c)
	filters := ListFilters{
		CourseID: courseID,
		Keyword:  c.Query("filterKeyword"),
	}

	lessons, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list lessons", err)
		return
	}

	response.Success(c, http.StatusOK, lessons, "", pagination.MetadataFrom(total, params))
}

// Create appends a lesson to a course and queues the subscriber
// notification.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	if decision := policy.EvaluateContent(actor.Role(), policy.ActionCreate, false); !decision.Allowed() {
		h.respondDecision(c, decision)
		return
	}

	courseID, ok := h.visibleCourse(c, actor)
	if !ok {
		return
	}

	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		PreviewURL  *string `json:"previewUrl"`
		VideoURL    *string `json:"videoUrl"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	lsn, err := Create(h.db, CreateInput{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		PreviewURL:  req.PreviewURL,
		VideoURL:    req.VideoURL,
		OwnerID:     actor.ID,
	})
	if err != nil {
		h.respondError(c, err, "failed to create lesson")
		return
	}

	if h.notifier != nil {
		h.notifier.EnqueueCourseUpdate(lsn.CourseID, lsn.Title)
	}

	response.Created(c, lsn, "Lesson created successfully.")
}

// GetByID returns a single lesson.
func (h *Handler) GetByID(c *gin.Context) {
	_, lsn, ok := h.fetch(c, policy.ActionReadDetail)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, lsn, "", nil)
}

// Update modifies a lesson.
func (h *Handler) Update(c *gin.Context) {
	_, lsn, ok := h.fetch(c, policy.ActionUpdate)
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		PreviewURL  *string `json:"previewUrl"`
		VideoURL    *string `json:"videoUrl"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	input := UpdateInput{Title: req.Title}
	if req.Description != nil {
		input.DescProvided = true
		input.Description = req.Description
	}
	if req.PreviewURL != nil {
		input.PreviewProvided = true
		input.PreviewURL = req.PreviewURL
	}
	if req.VideoURL != nil {
		input.VideoProvided = true
		input.VideoURL = req.VideoURL
	}

	updated, err := Update(h.db, lsn.ID, input)
	if err != nil {
		h.respondError(c, err, "failed to update lesson")
		return
	}

	response.Success(c, http.StatusOK, updated, "Lesson updated successfully.", nil)
}

// Delete removes a lesson. Owners and admins only.
func (h *Handler) Delete(c *gin.Context) {
	_, lsn, ok := h.fetch(c, policy.ActionDelete)
	if !ok {
		return
	}

	if err := Delete(h.db, lsn.ID); err != nil {
		h.respondError(c, err, "failed to delete lesson")
		return
	}

	response.Success(c, http.StatusOK, true, "Lesson deleted successfully.", nil)
}

// visibleCourse resolves the courseId route param through the caller's
// visibility scope, so hidden courses read as missing.
func (h *Handler) visibleCourse(c *gin.Context, actor *middleware.User) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return uuid.Nil, false
	}

	scoped := h.db.Scopes(policy.ContentScope(actor.Role(), actor.ID))
	crs, err := course.Get(scoped, id)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found.", err)
		} else {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		}
		return uuid.Nil, false
	}

	return crs.ID, true
}

func (h *Handler) fetch(c *gin.Context, action policy.Action) (*middleware.User, Lesson, bool) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return nil, Lesson{}, false
	}

	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return actor, Lesson{}, false
	}

	scoped := h.db.Scopes(policy.ContentScope(actor.Role(), actor.ID))
	lsn, err := Get(scoped, id)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return actor, Lesson{}, false
	}

	decision := policy.EvaluateContent(actor.Role(), action, policy.IsOwner(lsn.OwnerID, actor.ID))
	if !decision.Allowed() {
		h.respondDecision(c, decision)
		return actor, Lesson{}, false
	}

	return actor, lsn, true
}

func (h *Handler) respondDecision(c *gin.Context, decision policy.Decision) {
	switch decision {
	case policy.DenyNotFound:
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Lesson not found.", nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied.", nil)
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrLessonNotFound):
		status = http.StatusNotFound
		message = "Lesson not found."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Lesson title is required."
	case errors.Is(err, ErrInvalidVideoURL):
		status = http.StatusBadRequest
		message = "Video URL must be a YouTube link."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

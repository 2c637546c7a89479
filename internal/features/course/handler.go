package course

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/middleware"
	"github.com/eduflow/eduflow-server-go/internal/policy"
	"github.com/eduflow/eduflow-server-go/pkg/pagination"
	"github.com/eduflow/eduflow-server-go/pkg/response"
)

// Handler processes course HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a course handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns the courses visible to the requesting user.
func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)
	filters := ListFilters{Keyword: c.Query("filterKeyword")}

	scoped := h.db.Scopes(policy.ContentScope(actor.Role(), actor.ID))
	courses, total, err := List(scoped, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	serialized, err := h.serializeList(c, actor.ID, courses)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	response.Success(c, http.StatusOK, serialized, "", pagination.MetadataFrom(total, params))
}

// Create adds a new course owned by the requesting user. Moderators cannot
// create content.
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

	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		PreviewURL  *string `json:"previewUrl"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	crs, err := Create(h.db, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		PreviewURL:  req.PreviewURL,
		OwnerID:     actor.ID,
	})
	if err != nil {
		h.respondError(c, err, "failed to create course")
		return
	}

	response.Created(c, Serialized{Course: crs, Lessons: []LessonSummary{}}, "Course created successfully.")
}

// GetByID returns a single course with its lessons. Courses outside the
// caller's visible set read as missing.
func (h *Handler) GetByID(c *gin.Context) {
	actor, crs, ok := h.fetch(c, policy.ActionReadDetail)
	if !ok {
		return
	}

	serialized, err := h.serializeDetail(c, actor.ID, crs)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	response.Success(c, http.StatusOK, serialized, "", nil)
}

// Update modifies a course. Owners and moderators may edit; moderators may
// edit ownerless courses too.
func (h *Handler) Update(c *gin.Context) {
	actor, crs, ok := h.fetch(c, policy.ActionUpdate)
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		PreviewURL  *string `json:"previewUrl"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
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

	updated, err := Update(h.db, crs.ID, input)
	if err != nil {
		h.respondError(c, err, "failed to update course")
		return
	}

	serialized, err := h.serializeDetail(c, actor.ID, updated)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	response.Success(c, http.StatusOK, serialized, "Course updated successfully.", nil)
}

// Delete removes a course. Owners and admins only; moderators are read/write
// but never delete.
func (h *Handler) Delete(c *gin.Context) {
	_, crs, ok := h.fetch(c, policy.ActionDelete)
	if !ok {
		return
	}

	if err := Delete(h.db, crs.ID); err != nil {
		h.respondError(c, err, "failed to delete course")
		return
	}

	response.Success(c, http.StatusOK, true, "Course deleted successfully.", nil)
}

// fetch loads the course through the caller's visibility scope and applies
// the decision table for the intended action.
func (h *Handler) fetch(c *gin.Context, action policy.Action) (*middleware.User, Course, bool) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return nil, Course{}, false
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return actor, Course{}, false
	}

	scoped := h.db.Scopes(policy.ContentScope(actor.Role(), actor.ID))
	crs, err := Get(scoped, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return actor, Course{}, false
	}

	decision := policy.EvaluateContent(actor.Role(), action, policy.IsOwner(crs.OwnerID, actor.ID))
	if !decision.Allowed() {
		h.respondDecision(c, decision)
		return actor, Course{}, false
	}

	return actor, crs, true
}

func (h *Handler) serializeList(c *gin.Context, viewerID uuid.UUID, courses []Course) ([]Serialized, error) {
	ids := make([]uuid.UUID, 0, len(courses))
	for i := range courses {
		ids = append(ids, courses[i].ID)
	}

	counts, err := LessonCounts(h.db.WithContext(c.Request.Context()), ids)
	if err != nil {
		return nil, err
	}

	subscribed, err := SubscribedSet(h.db.WithContext(c.Request.Context()), viewerID, ids)
	if err != nil {
		return nil, err
	}

	serialized := make([]Serialized, 0, len(courses))
	for i := range courses {
		serialized = append(serialized, Serialized{
			Course:       courses[i],
			LessonsCount: counts[courses[i].ID],
			IsSubscribed: subscribed[courses[i].ID],
		})
	}
	return serialized, nil
}

func (h *Handler) serializeDetail(c *gin.Context, viewerID uuid.UUID, crs Course) (Serialized, error) {
	lessons, err := Lessons(h.db.WithContext(c.Request.Context()), crs.ID)
	if err != nil {
		return Serialized{}, err
	}

	subscribed, err := SubscribedSet(h.db.WithContext(c.Request.Context()), viewerID, []uuid.UUID{crs.ID})
	if err != nil {
		return Serialized{}, err
	}

	return Serialized{
		Course:       crs,
		Lessons:      lessons,
		LessonsCount: len(lessons),
		IsSubscribed: subscribed[crs.ID],
	}, nil
}

func (h *Handler) respondDecision(c *gin.Context, decision policy.Decision) {
	switch decision {
	case policy.DenyNotFound:
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found.", nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied.", nil)
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Course title is required."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

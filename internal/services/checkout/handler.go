package checkout

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/middleware"
	"github.com/eduflow/eduflow-server-go/pkg/response"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// defaultAmount is charged when the client does not supply one. Courses
// carry no price column; the amount comes from the purchase request.
var defaultAmount = types.NewMoney(10.00)

// Handler processes checkout HTTP requests.
type Handler struct {
	db      *gorm.DB
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a checkout handler instance.
func NewHandler(db *gorm.DB, service *Service, logger *slog.Logger) *Handler {
	return &Handler{db: db, service: service, logger: logger}
}

// CreateSession starts a Stripe checkout for a course. Any authenticated
// user may buy any existing course.
func (h *Handler) CreateSession(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	if !h.service.Enabled() {
		response.ErrorWithLog(h.logger, c, http.StatusServiceUnavailable, "Online payments are not configured.", nil)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	crs, err := course.Get(h.db, id)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found.", err)
		} else {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		}
		return
	}

	var req struct {
		Amount *types.Money `json:"amount"`
	}
	// The body is optional; an empty request buys at the default amount.
	_ = c.ShouldBindJSON(&req)

	amount := defaultAmount
	if req.Amount != nil {
		if req.Amount.IsNegative() || req.Amount.IsZero() {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "amount must be positive", nil)
			return
		}
		amount = *req.Amount
	}

	description := "Course purchase"
	if crs.Description != nil && *crs.Description != "" {
		description = *crs.Description
	}

	sess, err := h.service.CreateCourseSession(crs.ID.String(), actor.ID.String(), crs.Title, description, amount)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadGateway, "failed to create checkout session", err)
		return
	}

	response.Created(c, sess, "Checkout session created.")
}

// RegisterRoutes attaches the checkout endpoint to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticate gin.HandlerFunc) {
	group := router.Group("/courses/:courseId/checkout")
	group.Use(authenticate)
	group.POST("", handler.CreateSession)
}

package payment

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
	"github.com/eduflow/eduflow-server-go/pkg/request"
	"github.com/eduflow/eduflow-server-go/pkg/response"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// Handler processes payment HTTP requests. Reads run through PaymentScope;
// every mutation is admin-only per the decision table.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a payment handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns the payments visible to the caller: own payments for regular
// users, everything for moderators and admins.
func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	filters, err := h.extractFilters(c)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payment filters", err)
		return
	}

	params := pagination.Extract(c)
	scoped := h.db.Scopes(policy.PaymentScope(actor.Role(), actor.ID))

	payments, total, err := List(scoped, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, payments, "", pagination.MetadataFrom(total, params))
}

// Create records a payment. Admin only: payments are entered by staff, not
// self-reported.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	if decision := policy.EvaluatePayment(actor.Role(), policy.ActionCreate, false); !decision.Allowed() {
		h.respondDecision(c, decision)
		return
	}

	var req struct {
		UserID       uuid.UUID   `json:"userId"`
		PaidCourseID *uuid.UUID  `json:"paidCourseId"`
		PaidLessonID *uuid.UUID  `json:"paidLessonId"`
		Amount       types.Money `json:"amount"`
		Method       string      `json:"method"`
		Status       string      `json:"status"`
		PaymentDate  *string     `json:"paymentDate"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payment payload", err)
		return
	}

	paymentDate, err := request.ParseRFC3339Ptr(req.PaymentDate)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payment date", err)
		return
	}

	pmt, err := Create(h.db, CreateInput{
		UserID:       req.UserID,
		PaidCourseID: req.PaidCourseID,
		PaidLessonID: req.PaidLessonID,
		Amount:       req.Amount,
		Method:       types.PaymentMethod(req.Method),
		Status:       types.PaymentStatus(req.Status),
		PaymentDate:  paymentDate,
	})
	if err != nil {
		h.respondError(c, err, "failed to create payment")
		return
	}

	response.Created(c, pmt, "Payment recorded successfully.")
}

// GetByID returns a single payment.
func (h *Handler) GetByID(c *gin.Context) {
	_, pmt, ok := h.fetch(c, policy.ActionReadDetail)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, pmt, "", nil)
}

// Update modifies a payment. Admin only.
func (h *Handler) Update(c *gin.Context) {
	_, pmt, ok := h.fetch(c, policy.ActionUpdate)
	if !ok {
		return
	}

	var req struct {
		Amount      *types.Money `json:"amount"`
		Method      *string      `json:"method"`
		Status      *string      `json:"status"`
		PaymentDate *string      `json:"paymentDate"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payment payload", err)
		return
	}

	paymentDate, err := request.ParseRFC3339Ptr(req.PaymentDate)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payment date", err)
		return
	}

	input := UpdateInput{
		Amount:      req.Amount,
		PaymentDate: paymentDate,
	}
	if req.Method != nil {
		method := types.PaymentMethod(*req.Method)
		input.Method = &method
	}
	if req.Status != nil {
		status := types.PaymentStatus(*req.Status)
		input.Status = &status
	}

	updated, err := Update(h.db, pmt.ID, input)
	if err != nil {
		h.respondError(c, err, "failed to update payment")
		return
	}

	response.Success(c, http.StatusOK, updated, "Payment updated successfully.", nil)
}

// Delete removes a payment. Admin only.
func (h *Handler) Delete(c *gin.Context) {
	_, pmt, ok := h.fetch(c, policy.ActionDelete)
	if !ok {
		return
	}

	if err := Delete(h.db, pmt.ID); err != nil {
		h.respondError(c, err, "failed to delete payment")
		return
	}

	response.Success(c, http.StatusOK, true, "Payment deleted successfully.", nil)
}

func (h *Handler) fetch(c *gin.Context, action policy.Action) (*middleware.User, Payment, bool) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return nil, Payment{}, false
	}

	id, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payment id", err)
		return actor, Payment{}, false
	}

	scoped := h.db.Scopes(policy.PaymentScope(actor.Role(), actor.ID))
	pmt, err := Get(scoped, id)
	if err != nil {
		h.respondError(c, err, "failed to load payment")
		return actor, Payment{}, false
	}

	decision := policy.EvaluatePayment(actor.Role(), action, pmt.UserID == actor.ID)
	if !decision.Allowed() {
		h.respondDecision(c, decision)
		return actor, Payment{}, false
	}

	return actor, pmt, true
}

func (h *Handler) extractFilters(c *gin.Context) (ListFilters, error) {
	filters := ListFilters{
		Method: types.PaymentMethod(c.Query("method")),
		Status: types.PaymentStatus(c.Query("status")),
	}

	if raw := c.Query("courseId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, err
		}
		filters.CourseID = &id
	}

	if raw := c.Query("lessonId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, err
		}
		filters.LessonID = &id
	}

	dateFrom, err := request.ParseDatePtr(c.Query("dateFrom"))
	if err != nil {
		return filters, err
	}
	filters.DateFrom = dateFrom

	dateTo, err := request.ParseDatePtr(c.Query("dateTo"))
	if err != nil {
		return filters, err
	}
	filters.DateTo = dateTo

	return filters, nil
}

func (h *Handler) respondDecision(c *gin.Context, decision policy.Decision) {
	switch decision {
	case policy.DenyNotFound:
		response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Payment not found.", nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Access denied.", nil)
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrPaymentNotFound):
		status = http.StatusNotFound
		message = "Payment not found."
	case errors.Is(err, ErrTargetRequired):
		status = http.StatusBadRequest
		message = "Payment must reference exactly one course or lesson."
	case errors.Is(err, ErrInvalidMethod):
		status = http.StatusBadRequest
		message = "Invalid payment method."
	case errors.Is(err, ErrInvalidStatus):
		status = http.StatusBadRequest
		message = "Invalid payment status."
	case errors.Is(err, ErrInvalidAmount):
		status = http.StatusBadRequest
		message = "Payment amount must not be negative."
	case errors.Is(err, ErrUserRequired):
		status = http.StatusBadRequest
		message = "Payment user is required."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

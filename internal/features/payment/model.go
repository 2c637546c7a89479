package payment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/pkg/pagination"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// Payment records money received for a course or a lesson, never both and
// never neither.
type Payment struct {
	types.BaseModel

	UserID       uuid.UUID           `gorm:"type:uuid;not null;column:user_id;index" json:"userId"`
	PaidCourseID *uuid.UUID          `gorm:"type:uuid;column:paid_course_id;index" json:"paidCourseId,omitempty"`
	PaidLessonID *uuid.UUID          `gorm:"type:uuid;column:paid_lesson_id;index" json:"paidLessonId,omitempty"`
	Amount       types.Money         `gorm:"type:numeric(10,2);not null" json:"amount"`
	Method       types.PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Status       types.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentDate  time.Time           `gorm:"column:payment_date;index" json:"paymentDate"`
}

// TableName overrides the default table name.
func (Payment) TableName() string { return "payments" }

// ListFilters defines payment query filters, matching the admin list view of
// the payments dashboard.
type ListFilters struct {
	CourseID *uuid.UUID
	LessonID *uuid.UUID
	Method   types.PaymentMethod
	Status   types.PaymentStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// CreateInput carries data for recording a new payment.
type CreateInput struct {
	UserID       uuid.UUID
	PaidCourseID *uuid.UUID
	PaidLessonID *uuid.UUID
	Amount       types.Money
	Method       types.PaymentMethod
	Status       types.PaymentStatus
	PaymentDate  *time.Time
}

// UpdateInput captures mutable payment fields. The course/lesson target is
// fixed at creation.
type UpdateInput struct {
	Amount      *types.Money
	Method      *types.PaymentMethod
	Status      *types.PaymentStatus
	PaymentDate *time.Time
}

// List retrieves paginated payments with filters. Visibility narrowing
// happens through the db handle the caller passes in.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Payment, int64, error) {
	query := db.Model(&Payment{})

	if filters.CourseID != nil {
		query = query.Where("paid_course_id = ?", *filters.CourseID)
	}
	if filters.LessonID != nil {
		query = query.Where("paid_lesson_id = ?", *filters.LessonID)
	}
	if filters.Method != "" {
		query = query.Where("method = ?", filters.Method)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("payment_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("payment_date <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []Payment
	err := query.
		Order("payment_date DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&payments).Error

	return payments, total, err
}

// Get retrieves a payment by ID.
func Get(db *gorm.DB, id uuid.UUID) (Payment, error) {
	var pmt Payment
	if err := db.First(&pmt, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return pmt, ErrPaymentNotFound
		}
		return pmt, err
	}
	return pmt, nil
}

// Create records a new payment after validating the target invariant.
func Create(db *gorm.DB, input CreateInput) (Payment, error) {
	if input.UserID == uuid.Nil {
		return Payment{}, ErrUserRequired
	}

	if (input.PaidCourseID == nil) == (input.PaidLessonID == nil) {
		return Payment{}, ErrTargetRequired
	}

	if !input.Method.Valid() {
		return Payment{}, ErrInvalidMethod
	}

	status := input.Status
	if status == "" {
		status = types.PaymentStatusPending
	}
	if !status.Valid() {
		return Payment{}, ErrInvalidStatus
	}

	if input.Amount.IsNegative() {
		return Payment{}, ErrInvalidAmount
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	pmt := Payment{
		UserID:       input.UserID,
		PaidCourseID: input.PaidCourseID,
		PaidLessonID: input.PaidLessonID,
		Amount:       input.Amount,
		Method:       input.Method,
		Status:       status,
		PaymentDate:  paymentDate,
	}

	if err := db.Create(&pmt).Error; err != nil {
		return Payment{}, err
	}

	return pmt, nil
}

// Update modifies an existing payment.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Payment, error) {
	pmt, err := Get(db, id)
	if err != nil {
		return pmt, err
	}

	if input.Amount != nil {
		if input.Amount.IsNegative() {
			return pmt, ErrInvalidAmount
		}
		pmt.Amount = *input.Amount
	}

	if input.Method != nil {
		if !input.Method.Valid() {
			return pmt, ErrInvalidMethod
		}
		pmt.Method = *input.Method
	}

	if input.Status != nil {
		if !input.Status.Valid() {
			return pmt, ErrInvalidStatus
		}
		pmt.Status = *input.Status
	}

	if input.PaymentDate != nil {
		pmt.PaymentDate = *input.PaymentDate
	}

	if err := db.Save(&pmt).Error; err != nil {
		return pmt, err
	}

	return pmt, nil
}

// Delete removes a payment.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Payment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// MarkStalePending fails pending payments whose payment date is older than
// the cutoff. Returns the number of rows flipped.
func MarkStalePending(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Model(&Payment{}).
		Where("status = ? AND payment_date < ?", types.PaymentStatusPending, cutoff).
		Update("status", types.PaymentStatusFailed)
	return result.RowsAffected, result.Error
}

// DeleteOldFailed removes failed payments whose payment date is older than
// the cutoff. Returns the number of rows deleted.
func DeleteOldFailed(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.
		Where("status = ? AND payment_date < ?", types.PaymentStatusFailed, cutoff).
		Delete(&Payment{})
	return result.RowsAffected, result.Error
}

package payment_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/features/lesson"
	"github.com/eduflow/eduflow-server-go/internal/features/payment"
	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/policy"
	"github.com/eduflow/eduflow-server-go/internal/testutil"
	"github.com/eduflow/eduflow-server-go/pkg/pagination"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

type fixture struct {
	user   user.User
	course course.Course
	lesson lesson.Lesson
}

func seed(t *testing.T, db *gorm.DB, email string) fixture {
	t.Helper()
	usr, err := user.Create(db, user.CreateInput{Email: email, Password: "password123"})
	require.NoError(t, err)
	crs, err := course.Create(db, course.CreateInput{Title: "Paid course", OwnerID: usr.ID})
	require.NoError(t, err)
	lsn, err := lesson.Create(db, lesson.CreateInput{CourseID: crs.ID, Title: "Paid lesson", OwnerID: usr.ID})
	require.NoError(t, err)
	return fixture{user: usr, course: crs, lesson: lsn}
}

func TestCreateEnforcesExactlyOneTarget(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := seed(t, db, "payer@example.com")

	base := payment.CreateInput{
		UserID: fx.user.ID,
		Amount: types.NewMoney(49.99),
		Method: types.PaymentMethodCash,
	}

	// Neither target.
	_, err := payment.Create(db, base)
	assert.ErrorIs(t, err, payment.ErrTargetRequired)

	// Both targets.
	both := base
	both.PaidCourseID = &fx.course.ID
	both.PaidLessonID = &fx.lesson.ID
	_, err = payment.Create(db, both)
	assert.ErrorIs(t, err, payment.ErrTargetRequired)

	// Exactly one works.
	one := base
	one.PaidCourseID = &fx.course.ID
	pmt, err := payment.Create(db, one)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusPending, pmt.Status)
}

func TestCreateValidatesEnums(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := seed(t, db, "payer@example.com")

	input := payment.CreateInput{
		UserID:       fx.user.ID,
		PaidCourseID: &fx.course.ID,
		Amount:       types.NewMoney(10),
		Method:       "bitcoin",
	}
	_, err := payment.Create(db, input)
	assert.ErrorIs(t, err, payment.ErrInvalidMethod)

	input.Method = types.PaymentMethodTransfer
	input.Status = "chargeback"
	_, err = payment.Create(db, input)
	assert.ErrorIs(t, err, payment.ErrInvalidStatus)

	input.Status = ""
	input.Amount = types.NewMoney(-5)
	_, err = payment.Create(db, input)
	assert.ErrorIs(t, err, payment.ErrInvalidAmount)
}

func TestListFiltersCompose(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := seed(t, db, "payer@example.com")

	mk := func(target *uuid.UUID, lessonTarget *uuid.UUID, method types.PaymentMethod, status types.PaymentStatus, daysAgo int) {
		date := time.Now().AddDate(0, 0, -daysAgo)
		_, err := payment.Create(db, payment.CreateInput{
			UserID:       fx.user.ID,
			PaidCourseID: target,
			PaidLessonID: lessonTarget,
			Amount:       types.NewMoney(25),
			Method:       method,
			Status:       status,
			PaymentDate:  &date,
		})
		require.NoError(t, err)
	}

	mk(&fx.course.ID, nil, types.PaymentMethodCash, types.PaymentStatusPaid, 1)
	mk(&fx.course.ID, nil, types.PaymentMethodStripe, types.PaymentStatusPaid, 10)
	mk(nil, &fx.lesson.ID, types.PaymentMethodCash, types.PaymentStatusPending, 1)

	params := pagination.Params{Limit: 10}

	// Method filter.
	payments, total, err := payment.List(db, payment.ListFilters{Method: types.PaymentMethodCash}, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, payments, 2)

	// Course + status together.
	_, total, err = payment.List(db, payment.ListFilters{
		CourseID: &fx.course.ID,
		Status:   types.PaymentStatusPaid,
	}, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// Date range trims the older stripe payment.
	from := time.Now().AddDate(0, 0, -5)
	_, total, err = payment.List(db, payment.ListFilters{
		CourseID: &fx.course.ID,
		DateFrom: &from,
	}, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// Lesson filter.
	_, total, err = payment.List(db, payment.ListFilters{LessonID: &fx.lesson.ID}, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestPaymentScopeHidesOtherUsersRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := seed(t, db, "payer@example.com")
	other := seed(t, db, "other@example.com")

	mk := func(userID uuid.UUID, courseID uuid.UUID) {
		_, err := payment.Create(db, payment.CreateInput{
			UserID:       userID,
			PaidCourseID: &courseID,
			Amount:       types.NewMoney(10),
			Method:       types.PaymentMethodCash,
		})
		require.NoError(t, err)
	}
	mk(fx.user.ID, fx.course.ID)
	mk(other.user.ID, other.course.ID)

	params := pagination.Params{Limit: 10}

	scoped := db.Scopes(policy.PaymentScope(types.RoleRegular, fx.user.ID))
	_, total, err := payment.List(scoped, payment.ListFilters{}, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// Moderators see everything.
	scoped = db.Scopes(policy.PaymentScope(types.RoleModerator, fx.user.ID))
	_, total, err = payment.List(scoped, payment.ListFilters{}, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestMarkStalePendingAndCleanup(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := seed(t, db, "payer@example.com")

	mk := func(status types.PaymentStatus, age time.Duration) payment.Payment {
		date := time.Now().Add(-age)
		pmt, err := payment.Create(db, payment.CreateInput{
			UserID:       fx.user.ID,
			PaidCourseID: &fx.course.ID,
			Amount:       types.NewMoney(15),
			Method:       types.PaymentMethodTransfer,
			Status:       status,
			PaymentDate:  &date,
		})
		require.NoError(t, err)
		return pmt
	}

	stale := mk(types.PaymentStatusPending, 48*time.Hour)
	fresh := mk(types.PaymentStatusPending, 1*time.Hour)
	paid := mk(types.PaymentStatusPaid, 48*time.Hour)
	ancient := mk(types.PaymentStatusFailed, 400*24*time.Hour)

	flipped, err := payment.MarkStalePending(db, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), flipped)

	check := func(id uuid.UUID, want types.PaymentStatus) {
		pmt, err := payment.Get(db, id)
		require.NoError(t, err)
		assert.Equal(t, want, pmt.Status)
	}
	check(stale.ID, types.PaymentStatusFailed)
	check(fresh.ID, types.PaymentStatusPending)
	check(paid.ID, types.PaymentStatusPaid)

	deleted, err := payment.DeleteOldFailed(db, time.Now().Add(-365*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = payment.Get(db, ancient.ID)
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)

	// The freshly failed payment is younger than the cutoff and survives.
	check(stale.ID, types.PaymentStatusFailed)
}

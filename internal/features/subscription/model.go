package subscription

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eduflow/eduflow-server-go/pkg/pagination"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// Subscription links a user to a course. The pair is unique; its absence is
// the only "not subscribed" state, there is no status column.
type Subscription struct {
	types.BaseModel

	UserID   uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_user_course" json:"userId"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;column:course_id;uniqueIndex:idx_user_course" json:"courseId"`
}

// TableName overrides the default table name.
func (Subscription) TableName() string { return "subscriptions" }

// List retrieves the caller's subscriptions newest first.
func List(db *gorm.DB, params pagination.Params) ([]Subscription, int64, error) {
	query := db.Model(&Subscription{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []Subscription
	err := query.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&subs).Error

	return subs, total, err
}

// Subscribe records a subscription. Subscribing twice is a no-op that
// returns the existing row; created reports whether this call inserted it.
func Subscribe(db *gorm.DB, userID, courseID uuid.UUID) (Subscription, bool, error) {
	sub := Subscription{UserID: userID, CourseID: courseID}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&sub)
	if result.Error != nil {
		return Subscription{}, false, result.Error
	}

	if result.RowsAffected > 0 {
		return sub, true, nil
	}

	// The insert hit the existing pair; fetch it for the response. A fresh
	// struct, because sub already carries the ID the skipped insert generated
	// and First would match on it.
	var existing Subscription
	if err := db.First(&existing, "user_id = ? AND course_id = ?", userID, courseID).Error; err != nil {
		return Subscription{}, false, err
	}

	return existing, false, nil
}

// Unsubscribe removes a subscription.
func Unsubscribe(db *gorm.DB, userID, courseID uuid.UUID) error {
	result := db.Delete(&Subscription{}, "user_id = ? AND course_id = ?", userID, courseID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// SubscriberEmails returns the email addresses subscribed to a course.
func SubscriberEmails(db *gorm.DB, courseID uuid.UUID) ([]string, error) {
	var emails []string
	err := db.Table("subscriptions").
		Select("users.email").
		Joins("JOIN users ON users.id = subscriptions.user_id").
		Where("subscriptions.course_id = ?", courseID).
		Scan(&emails).Error
	return emails, err
}

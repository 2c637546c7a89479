package course

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/pkg/pagination"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// Course represents a course on the platform. The owner reference is
// nullable: deleting the owning user leaves the course behind ownerless.
type Course struct {
	types.BaseModel

	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	PreviewURL  *string    `gorm:"type:text;column:preview_url" json:"previewUrl,omitempty"`
	OwnerID     *uuid.UUID `gorm:"type:uuid;column:owner_id;index" json:"ownerId,omitempty"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// LessonSummary is a slim projection of the lessons table for embedding in
// course responses. The lesson feature keeps the full model.
type LessonSummary struct {
	ID         uuid.UUID `gorm:"column:id" json:"id"`
	CourseID   uuid.UUID `gorm:"column:course_id" json:"courseId"`
	Title      string    `gorm:"column:title" json:"title"`
	PreviewURL *string   `gorm:"column:preview_url" json:"previewUrl,omitempty"`
	Order      int       `gorm:"column:order" json:"order"`
}

// TableName maps the projection onto the lessons table.
func (LessonSummary) TableName() string { return "lessons" }

// Serialized is the response shape for a course.
type Serialized struct {
	Course
	Lessons      []LessonSummary `json:"lessons,omitempty"`
	LessonsCount int             `json:"lessonsCount"`
	IsSubscribed bool            `json:"isSubscribed"`
}

// ListFilters defines course query filters.
type ListFilters struct {
	Keyword string
	OwnerID *uuid.UUID
}

// CreateInput carries data for creating a new course.
type CreateInput struct {
	Title       string
	Description *string
	PreviewURL  *string
	OwnerID     uuid.UUID
}

// UpdateInput captures mutable course fields.
type UpdateInput struct {
	Title           *string
	DescProvided    bool
	Description     *string
	PreviewProvided bool
	PreviewURL      *string
}

// List retrieves paginated courses. Visibility narrowing happens through the
// db handle the caller passes in.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Course, int64, error) {
	query := db.Model(&Course{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}

	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []Course
	err := query.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&courses).Error

	return courses, total, err
}

// Get retrieves a course by ID.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var crs Course
	if err := db.First(&crs, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return crs, ErrCourseNotFound
		}
		return crs, err
	}
	return crs, nil
}

// Create inserts a new course owned by the creator.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Course{}, ErrTitleRequired
	}

	ownerID := input.OwnerID
	crs := Course{
		Title:       title,
		Description: input.Description,
		PreviewURL:  input.PreviewURL,
		OwnerID:     &ownerID,
	}

	if err := db.Create(&crs).Error; err != nil {
		return Course{}, err
	}

	return crs, nil
}

// Update modifies an existing course.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Course, error) {
	crs, err := Get(db, id)
	if err != nil {
		return crs, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return crs, ErrTitleRequired
		}
		crs.Title = title
	}

	if input.DescProvided {
		crs.Description = input.Description
	}

	if input.PreviewProvided {
		crs.PreviewURL = input.PreviewURL
	}

	if err := db.Save(&crs).Error; err != nil {
		return crs, err
	}

	return crs, nil
}

// Delete removes a course together with its lessons, subscriptions and the
// payments recorded against it.
func Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM payments WHERE paid_course_id = ? OR paid_lesson_id IN (SELECT id FROM lessons WHERE course_id = ?)",
			id, id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM subscriptions WHERE course_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM lessons WHERE course_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&Course{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCourseNotFound
		}
		return nil
	})
}

// Lessons loads the ordered lesson summaries for a course.
func Lessons(db *gorm.DB, courseID uuid.UUID) ([]LessonSummary, error) {
	var lessons []LessonSummary
	err := db.Where("course_id = ?", courseID).
		Order("\"order\" ASC").
		Find(&lessons).Error
	return lessons, err
}

// LessonCounts returns the lesson count per course for the given IDs.
func LessonCounts(db *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID uuid.UUID `gorm:"column:course_id"`
		Count    int       `gorm:"column:count"`
	}
	err := db.Table("lessons").
		Select("course_id, COUNT(*) AS count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.CourseID] = row.Count
	}
	return counts, nil
}

// SubscribedSet returns the subset of courseIDs the user is subscribed to.
func SubscribedSet(db *gorm.DB, userID uuid.UUID, courseIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	subscribed := make(map[uuid.UUID]bool, len(courseIDs))
	if len(courseIDs) == 0 {
		return subscribed, nil
	}

	var ids []uuid.UUID
	err := db.Table("subscriptions").
		Select("course_id").
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		subscribed[id] = true
	}
	return subscribed, nil
}

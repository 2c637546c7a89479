package lesson

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/pkg/pagination"
	"github.com/eduflow/eduflow-server-go/pkg/types"
	"github.com/eduflow/eduflow-server-go/pkg/validation"
)

// Lesson represents a single lesson inside a course. Ordering is assigned on
// creation and never renumbered afterwards, so gaps appear after deletes.
type Lesson struct {
	types.BaseModel

	CourseID    uuid.UUID  `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	PreviewURL  *string    `gorm:"type:text;column:preview_url" json:"previewUrl,omitempty"`
	VideoURL    *string    `gorm:"type:text;column:video_url" json:"videoUrl,omitempty"`
	OwnerID     *uuid.UUID `gorm:"type:uuid;column:owner_id;index" json:"ownerId,omitempty"`
	Order       int        `gorm:"not null;default:0" json:"order"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// ListFilters defines lesson query filters.
type ListFilters struct {
	CourseID uuid.UUID
	Keyword  string
}

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	CourseID    uuid.UUID
	Title       string
	Description *string
	PreviewURL  *string
	VideoURL    *string
	OwnerID     uuid.UUID
}

// UpdateInput captures mutable lesson fields. Order is not client-settable.
type UpdateInput struct {
	Title           *string
	DescProvided    bool
	Description     *string
	PreviewProvided bool
	PreviewURL      *string
	VideoProvided   bool
	VideoURL        *string
}

// List retrieves paginated lessons for a course in display order.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Lesson, int64, error) {
	query := db.Model(&Lesson{}).Where("course_id = ?", filters.CourseID)

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lessons []Lesson
	err := query.
		Order("\"order\" ASC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&lessons).Error

	return lessons, total, err
}

// Get retrieves a lesson by ID.
func Get(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var lsn Lesson
	if err := db.First(&lsn, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return lsn, ErrLessonNotFound
		}
		return lsn, err
	}
	return lsn, nil
}

// Create inserts a new lesson at the end of its course. The position comes
// from a max+1 query inside the insert transaction, starting at 1 for the
// first lesson of a course.
func Create(db *gorm.DB, input CreateInput) (Lesson, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Lesson{}, ErrTitleRequired
	}

	videoURL, err := normalizeVideoURL(input.VideoURL)
	if err != nil {
		return Lesson{}, err
	}

	ownerID := input.OwnerID
	lsn := Lesson{
		CourseID:    input.CourseID,
		Title:       title,
		Description: input.Description,
		PreviewURL:  input.PreviewURL,
		VideoURL:    videoURL,
		OwnerID:     &ownerID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(
			`SELECT COALESCE(MAX("order"), 0) + 1 FROM lessons WHERE course_id = ?`,
			input.CourseID,
		).Scan(&lsn.Order).Error; err != nil {
			return err
		}
		return tx.Create(&lsn).Error
	})
	if err != nil {
		return Lesson{}, err
	}

	return lsn, nil
}

// Update modifies an existing lesson.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Lesson, error) {
	lsn, err := Get(db, id)
	if err != nil {
		return lsn, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return lsn, ErrTitleRequired
		}
		lsn.Title = title
	}

	if input.DescProvided {
		lsn.Description = input.Description
	}

	if input.PreviewProvided {
		lsn.PreviewURL = input.PreviewURL
	}

	if input.VideoProvided {
		videoURL, err := normalizeVideoURL(input.VideoURL)
		if err != nil {
			return lsn, err
		}
		lsn.VideoURL = videoURL
	}

	if err := db.Save(&lsn).Error; err != nil {
		return lsn, err
	}

	return lsn, nil
}

// Delete removes a lesson. Remaining lessons keep their positions.
func Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM payments WHERE paid_lesson_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&Lesson{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLessonNotFound
		}
		return nil
	})
}

func normalizeVideoURL(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	if err := validation.ValidateVideoURL(trimmed); err != nil {
		return nil, ErrInvalidVideoURL
	}
	return &trimmed, nil
}

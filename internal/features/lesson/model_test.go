package lesson_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/features/lesson"
	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/testutil"
	"github.com/eduflow/eduflow-server-go/pkg/pagination"
)

func seed(t *testing.T, db *gorm.DB) (user.User, course.Course) {
	t.Helper()
	usr, err := user.Create(db, user.CreateInput{Email: "teach@example.com", Password: "password123"})
	require.NoError(t, err)
	crs, err := course.Create(db, course.CreateInput{Title: "Go from scratch", OwnerID: usr.ID})
	require.NoError(t, err)
	return usr, crs
}

func TestCreateAssignsSequentialOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	usr, crs := seed(t, db)

	for i, title := range []string{"Introduction", "Setup", "First program"} {
		lsn, err := lesson.Create(db, lesson.CreateInput{
			CourseID: crs.ID,
			Title:    title,
			OwnerID:  usr.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, i+1, lsn.Order)
	}
}

func TestOrderCountsPerCourse(t *testing.T) {
	db := testutil.NewTestDB(t)
	usr, crs := seed(t, db)

	other, err := course.Create(db, course.CreateInput{Title: "Another course", OwnerID: usr.ID})
	require.NoError(t, err)

	first, err := lesson.Create(db, lesson.CreateInput{CourseID: crs.ID, Title: "A", OwnerID: usr.ID})
	require.NoError(t, err)
	require.Equal(t, 1, first.Order)

	// A different course starts its own sequence.
	elsewhere, err := lesson.Create(db, lesson.CreateInput{CourseID: other.ID, Title: "B", OwnerID: usr.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, elsewhere.Order)
}

func TestDeleteLeavesGapInOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	usr, crs := seed(t, db)

	var lessons []lesson.Lesson
	for _, title := range []string{"One", "Two", "Three"} {
		lsn, err := lesson.Create(db, lesson.CreateInput{CourseID: crs.ID, Title: title, OwnerID: usr.ID})
		require.NoError(t, err)
		lessons = append(lessons, lsn)
	}

	require.NoError(t, lesson.Delete(db, lessons[1].ID))

	// No renumbering: the survivors keep 1 and 3, the next insert gets 4.
	remaining, _, err := lesson.List(db, lesson.ListFilters{CourseID: crs.ID}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, 1, remaining[0].Order)
	assert.Equal(t, 3, remaining[1].Order)

	next, err := lesson.Create(db, lesson.CreateInput{CourseID: crs.ID, Title: "Four", OwnerID: usr.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, next.Order)
}

func TestCreateValidatesVideoURL(t *testing.T) {
	db := testutil.NewTestDB(t)
	usr, crs := seed(t, db)

	bad := "https://vimeo.com/12345"
	_, err := lesson.Create(db, lesson.CreateInput{
		CourseID: crs.ID,
		Title:    "Bad video",
		VideoURL: &bad,
		OwnerID:  usr.ID,
	})
	assert.ErrorIs(t, err, lesson.ErrInvalidVideoURL)

	good := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	lsn, err := lesson.Create(db, lesson.CreateInput{
		CourseID: crs.ID,
		Title:    "Good video",
		VideoURL: &good,
		OwnerID:  usr.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, lsn.VideoURL)
	assert.Equal(t, good, *lsn.VideoURL)
}

func TestUpdateValidatesVideoURL(t *testing.T) {
	db := testutil.NewTestDB(t)
	usr, crs := seed(t, db)

	lsn, err := lesson.Create(db, lesson.CreateInput{CourseID: crs.ID, Title: "Lesson", OwnerID: usr.ID})
	require.NoError(t, err)

	bad := "ftp://youtube.com/watch?v=abc"
	_, err = lesson.Update(db, lsn.ID, lesson.UpdateInput{VideoProvided: true, VideoURL: &bad})
	assert.ErrorIs(t, err, lesson.ErrInvalidVideoURL)

	short := "https://youtu.be/dQw4w9WgXcQ"
	updated, err := lesson.Update(db, lsn.ID, lesson.UpdateInput{VideoProvided: true, VideoURL: &short})
	require.NoError(t, err)
	require.NotNil(t, updated.VideoURL)
	assert.Equal(t, short, *updated.VideoURL)
}

func TestCreateRequiresTitle(t *testing.T) {
	db := testutil.NewTestDB(t)
	usr, crs := seed(t, db)

	_, err := lesson.Create(db, lesson.CreateInput{CourseID: crs.ID, Title: "   ", OwnerID: usr.ID})
	assert.ErrorIs(t, err, lesson.ErrTitleRequired)
}

package course_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/features/subscription"
	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/middleware"
	"github.com/eduflow/eduflow-server-go/internal/testutil"
	"github.com/eduflow/eduflow-server-go/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func seedUser(t *testing.T, db *gorm.DB, email string, input user.CreateInput) *middleware.User {
	t.Helper()
	input.Email = email
	input.Password = "password123"
	usr, err := user.Create(db, input)
	require.NoError(t, err)
	return &middleware.User{
		ID:          usr.ID,
		Email:       usr.Email,
		IsStaff:     usr.IsStaff,
		IsSuperuser: usr.IsSuperuser,
		IsModerator: usr.IsModerator,
		Active:      true,
	}
}

func seedCourse(t *testing.T, db *gorm.DB, title string, ownerID uuid.UUID) course.Course {
	t.Helper()
	crs, err := course.Create(db, course.CreateInput{Title: title, OwnerID: ownerID})
	require.NoError(t, err)
	return crs
}

func requestCtx(actor *middleware.User, method, body string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	var reqBody *bytes.Buffer
	if body != "" {
		reqBody = bytes.NewBufferString(body)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	c.Request = httptest.NewRequest(method, "/", reqBody)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	if actor != nil {
		c.Set("user", actor)
	}
	return c, recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func TestListShowsOnlyOwnCoursesToRegularUsers(t *testing.T) {
	db := testutil.NewTestDB(t)
	handler := course.NewHandler(db, logger.Discard())

	alice := seedUser(t, db, "alice@example.com", user.CreateInput{})
	bob := seedUser(t, db, "bob@example.com", user.CreateInput{})
	seedCourse(t, db, "Alice's course", alice.ID)
	seedCourse(t, db, "Bob's course", bob.ID)

	c, recorder := requestCtx(alice, http.MethodGet, "", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	data := envelope["data"].([]interface{})
	require.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "Alice's course", first["title"])
}

func TestListShowsAllCoursesToModerators(t *testing.T) {
	db := testutil.NewTestDB(t)
	handler := course.NewHandler(db, logger.Discard())

	alice := seedUser(t, db, "alice@example.com", user.CreateInput{})
	mod := seedUser(t, db, "mod@example.com", user.CreateInput{IsModerator: true})
	seedCourse(t, db, "Course one", alice.ID)
	seedCourse(t, db, "Course two", alice.ID)

	c, recorder := requestCtx(mod, http.MethodGet, "", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Len(t, envelope["data"].([]interface{}), 2)
}

func TestGetHiddenCourseReadsAsNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	handler := course.NewHandler(db, logger.Discard())

	owner := seedUser(t, db, "owner@example.com", user.CreateInput{})
	stranger := seedUser(t, db, "stranger@example.com", user.CreateInput{})
	crs := seedCourse(t, db, "Private course", owner.ID)

	c, recorder := requestCtx(stranger, http.MethodGet, "",
		gin.Params{{Key: "courseId", Value: crs.ID.String()}})
	handler.GetByID(c)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestModeratorMayUpdateButNeverDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	handler := course.NewHandler(db, logger.Discard())

	owner := seedUser(t, db, "owner@example.com", user.CreateInput{})
	mod := seedUser(t, db, "mod@example.com", user.CreateInput{IsModerator: true})
	crs := seedCourse(t, db, "Editable course", owner.ID)

	params := gin.Params{{Key: "courseId", Value: crs.ID.String()}}

	c, recorder := requestCtx(mod, http.MethodPut, `{"title":"Renamed course"}`, params)
	handler.Update(c)
	require.Equal(t, http.StatusOK, recorder.Code)

	updated, err := course.Get(db, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed course", updated.Title)

	// Delete is visible to the moderator but still denied.
	c, recorder = requestCtx(mod, http.MethodDelete, "", params)
	handler.Delete(c)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestModeratorCannotCreate(t *testing.T) {
	db := testutil.NewTestDB(t)
	handler := course.NewHandler(db, logger.Discard())

	mod := seedUser(t, db, "mod@example.com", user.CreateInput{IsModerator: true})

	c, recorder := requestCtx(mod, http.MethodPost, `{"title":"New course"}`, nil)
	handler.Create(c)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestOwnerAndAdminMayDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	handler := course.NewHandler(db, logger.Discard())

	owner := seedUser(t, db, "owner@example.com", user.CreateInput{})
	admin := seedUser(t, db, "admin@example.com", user.CreateInput{IsStaff: true})

	mine := seedCourse(t, db, "Mine", owner.ID)
	c, recorder := requestCtx(owner, http.MethodDelete, "",
		gin.Params{{Key: "courseId", Value: mine.ID.String()}})
	handler.Delete(c)
	assert.Equal(t, http.StatusOK, recorder.Code)

	theirs := seedCourse(t, db, "Theirs", owner.ID)
	c, recorder = requestCtx(admin, http.MethodDelete, "",
		gin.Params{{Key: "courseId", Value: theirs.ID.String()}})
	handler.Delete(c)
	assert.Equal(t, http.StatusOK, recorder.Code)

	_, err := course.Get(db, theirs.ID)
	assert.ErrorIs(t, err, course.ErrCourseNotFound)
}

func TestOwnerlessCourseFallsBackToTableRights(t *testing.T) {
	db := testutil.NewTestDB(t)
	handler := course.NewHandler(db, logger.Discard())

	owner := seedUser(t, db, "owner@example.com", user.CreateInput{})
	regular := seedUser(t, db, "regular@example.com", user.CreateInput{})
	mod := seedUser(t, db, "mod@example.com", user.CreateInput{IsModerator: true})
	admin := seedUser(t, db, "admin@example.com", user.CreateInput{IsSuperuser: true})

	crs := seedCourse(t, db, "Orphan course", owner.ID)
	require.NoError(t, user.Delete(db, owner.ID))
	params := gin.Params{{Key: "courseId", Value: crs.ID.String()}}

	// Invisible to regular users entirely.
	c, recorder := requestCtx(regular, http.MethodGet, "", params)
	handler.GetByID(c)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	// Moderators may still update, nobody-owned or not.
	c, recorder = requestCtx(mod, http.MethodPut, `{"title":"Adopted course"}`, params)
	handler.Update(c)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// Only admins may delete it.
	c, recorder = requestCtx(mod, http.MethodDelete, "", params)
	handler.Delete(c)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	c, recorder = requestCtx(admin, http.MethodDelete, "", params)
	handler.Delete(c)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestDetailIncludesSubscriptionFlag(t *testing.T) {
	db := testutil.NewTestDB(t)
	handler := course.NewHandler(db, logger.Discard())

	owner := seedUser(t, db, "owner@example.com", user.CreateInput{})
	crs := seedCourse(t, db, "Subscribed course", owner.ID)

	_, _, err := subscription.Subscribe(db, owner.ID, crs.ID)
	require.NoError(t, err)

	c, recorder := requestCtx(owner, http.MethodGet, "",
		gin.Params{{Key: "courseId", Value: crs.ID.String()}})
	handler.GetByID(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, true, data["isSubscribed"])
	assert.Equal(t, float64(0), data["lessonsCount"])
}

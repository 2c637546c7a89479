package user_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/features/subscription"
	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/testutil"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

func createUser(t *testing.T, db *gorm.DB, email string, input user.CreateInput) user.User {
	t.Helper()
	input.Email = email
	if input.Password == "" {
		input.Password = "password123"
	}
	usr, err := user.Create(db, input)
	require.NoError(t, err)
	return usr
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	db := testutil.NewTestDB(t)

	createUser(t, db, "dup@example.com", user.CreateInput{})

	_, err := user.Create(db, user.CreateInput{Email: "dup@example.com", Password: "password123"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	db := testutil.NewTestDB(t)

	_, err := user.Create(db, user.CreateInput{Email: "short@example.com", Password: "short"})
	assert.ErrorIs(t, err, user.ErrInvalidPassword)
}

func TestCreateNormalizesEmail(t *testing.T) {
	db := testutil.NewTestDB(t)

	usr := createUser(t, db, "  Mixed.Case@Example.COM ", user.CreateInput{})
	assert.Equal(t, "mixed.case@example.com", usr.Email)

	found, err := user.GetByEmail(db, "MIXED.CASE@example.com")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, found.ID)
}

func TestComparePassword(t *testing.T) {
	db := testutil.NewTestDB(t)

	usr := createUser(t, db, "pw@example.com", user.CreateInput{Password: "correct-horse-battery"})

	assert.True(t, usr.ComparePassword("correct-horse-battery"))
	assert.False(t, usr.ComparePassword("wrong-password"))
}

func TestRoleResolution(t *testing.T) {
	tests := []struct {
		name string
		usr  user.User
		want types.Role
	}{
		{"plain account", user.User{}, types.RoleRegular},
		{"moderator flag", user.User{IsModerator: true}, types.RoleModerator},
		{"staff flag", user.User{IsStaff: true}, types.RoleAdmin},
		{"superuser flag", user.User{IsSuperuser: true}, types.RoleAdmin},
		{"staff wins over moderator", user.User{IsStaff: true, IsModerator: true}, types.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.usr.Role())
		})
	}
}

func TestSerializeRedactsForOtherViewers(t *testing.T) {
	db := testutil.NewTestDB(t)

	phone := "123456789"
	owner := createUser(t, db, "owner@example.com", user.CreateInput{Phone: &phone})
	viewer := createUser(t, db, "viewer@example.com", user.CreateInput{})

	self, ok := owner.Serialize(owner.ID).(user.Profile)
	require.True(t, ok)
	assert.True(t, self.IsSelf)
	assert.NotNil(t, self.Phone)

	public, ok := owner.Serialize(viewer.ID).(user.PublicProfile)
	require.True(t, ok)
	assert.False(t, public.IsSelf)
	assert.Equal(t, owner.Email, public.Email)
}

func TestUpdatePartialFields(t *testing.T) {
	db := testutil.NewTestDB(t)

	city := "Porto"
	usr := createUser(t, db, "update@example.com", user.CreateInput{City: &city, FirstName: "Ana"})

	newName := "Maria"
	updated, err := user.Update(db, usr.ID, user.UpdateInput{FirstName: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Maria", updated.FirstName)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Porto", *updated.City)
}

func TestDeleteDetachesOwnedContent(t *testing.T) {
	db := testutil.NewTestDB(t)

	owner := createUser(t, db, "gone@example.com", user.CreateInput{})
	other := createUser(t, db, "stays@example.com", user.CreateInput{})

	crs, err := course.Create(db, course.CreateInput{Title: "Orphaned course", OwnerID: owner.ID})
	require.NoError(t, err)

	_, _, err = subscription.Subscribe(db, owner.ID, crs.ID)
	require.NoError(t, err)
	_, _, err = subscription.Subscribe(db, other.ID, crs.ID)
	require.NoError(t, err)

	require.NoError(t, user.Delete(db, owner.ID))

	// The course survives without an owner.
	kept, err := course.Get(db, crs.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.OwnerID)

	// Only the deleted user's subscription is gone.
	emails, err := subscription.SubscriberEmails(db, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"stays@example.com"}, emails)
}

func TestDeactivateInactiveSkipsStaffAndFreshLogins(t *testing.T) {
	db := testutil.NewTestDB(t)

	old := time.Now().Add(-60 * 24 * time.Hour)
	recent := time.Now().Add(-2 * 24 * time.Hour)

	stale := createUser(t, db, "stale@example.com", user.CreateInput{})
	fresh := createUser(t, db, "fresh@example.com", user.CreateInput{})
	staff := createUser(t, db, "staff@example.com", user.CreateInput{IsStaff: true})
	never := createUser(t, db, "never@example.com", user.CreateInput{})

	require.NoError(t, user.TouchLastLogin(db, stale.ID, old))
	require.NoError(t, user.TouchLastLogin(db, fresh.ID, recent))
	require.NoError(t, user.TouchLastLogin(db, staff.ID, old))

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	count, err := user.DeactivateInactive(db, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	check := func(id uuid.UUID, wantActive bool) {
		usr, err := user.Get(db, id)
		require.NoError(t, err)
		assert.Equal(t, wantActive, usr.Active)
	}
	check(stale.ID, false)
	check(fresh.ID, true)
	check(staff.ID, true)
	check(never.ID, true)
}

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/auth"
	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/testutil"
	"github.com/eduflow/eduflow-server-go/internal/utils/jwt"
)

var testTokens = auth.DefaultTokens("access-secret", "refresh-secret")

func register(t *testing.T, db *gorm.DB, email string) *auth.AuthResponse {
	t.Helper()
	result, err := auth.Register(db, auth.RegisterInput{
		Email:     email,
		FirstName: "Test",
		Password:  "password123",
	}, testTokens)
	require.NoError(t, err)
	return result
}

func TestRegisterIssuesWorkingTokens(t *testing.T) {
	db := testutil.NewTestDB(t)

	result := register(t, db, "new@example.com")
	require.NotNil(t, result.User)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	claims, err := jwt.VerifyToken(result.AccessToken, testTokens.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	// Registration never grants elevated roles.
	assert.False(t, result.User.IsStaff)
	assert.False(t, result.User.IsModerator)
	assert.False(t, result.User.IsSuperuser)
}

func TestRegisterValidatesInput(t *testing.T) {
	db := testutil.NewTestDB(t)

	_, err := auth.Register(db, auth.RegisterInput{Email: "a@b.com"}, testTokens)
	assert.ErrorIs(t, err, auth.ErrMissingFields)

	_, err = auth.Register(db, auth.RegisterInput{Email: "not-an-email", Password: "password123"}, testTokens)
	assert.ErrorIs(t, err, auth.ErrInvalidEmail)

	_, err = auth.Register(db, auth.RegisterInput{Email: "a@b.com", Password: "short"}, testTokens)
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	register(t, db, "taken@example.com")
	_, err = auth.Register(db, auth.RegisterInput{Email: "taken@example.com", Password: "password123"}, testTokens)
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestLoginRecordsLastLogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	register(t, db, "login@example.com")

	result, err := auth.Login(db, auth.LoginInput{Email: "login@example.com", Password: "password123"}, testTokens)
	require.NoError(t, err)
	require.NotNil(t, result.User.LastLogin)

	stored, err := user.Get(db, result.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testutil.NewTestDB(t)
	register(t, db, "login@example.com")

	_, err := auth.Login(db, auth.LoginInput{Email: "login@example.com", Password: "wrong-password"}, testTokens)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// Unknown email reads the same as a bad password.
	_, err = auth.Login(db, auth.LoginInput{Email: "nobody@example.com", Password: "password123"}, testTokens)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	db := testutil.NewTestDB(t)
	result := register(t, db, "inactive@example.com")

	inactive := false
	_, err := user.Update(db, result.User.ID, user.UpdateInput{Active: &inactive})
	require.NoError(t, err)

	_, err = auth.Login(db, auth.LoginInput{Email: "inactive@example.com", Password: "password123"}, testTokens)
	assert.ErrorIs(t, err, auth.ErrInactiveAccount)
}

func TestRefreshRequiresStoredToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	result := register(t, db, "refresh@example.com")

	pair, err := auth.RefreshAccessToken(db, result.RefreshToken, testTokens)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, err := user.Get(db, result.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, pair.RefreshToken, *stored.RefreshToken)

	// A token signed with the wrong secret is rejected outright.
	forged, err := jwt.GenerateRefreshToken(result.User.ID, "other-secret", testTokens.RefreshTokenExpiry)
	require.NoError(t, err)
	_, err = auth.RefreshAccessToken(db, forged, testTokens)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLogoutClearsRefreshToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	result := register(t, db, "logout@example.com")

	claims, err := auth.Logout(db, result.AccessToken, testTokens)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	stored, err := user.Get(db, result.User.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)

	// The refresh token no longer matches anything stored.
	_, err = auth.RefreshAccessToken(db, result.RefreshToken, testTokens)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.Logout(db, "garbage.token.value", testTokens)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

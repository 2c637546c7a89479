package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/eduflow/eduflow-server-go/pkg/types"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name                              string
		isStaff, isSuperuser, isModerator bool
		want                              types.Role
	}{
		{"plain user", false, false, false, types.RoleRegular},
		{"moderator", false, false, true, types.RoleModerator},
		{"staff", true, false, false, types.RoleAdmin},
		{"superuser", false, true, false, types.RoleAdmin},
		{"staff and superuser", true, true, false, types.RoleAdmin},
		{"staff wins over moderator", true, false, true, types.RoleAdmin},
		{"superuser wins over moderator", false, true, true, types.RoleAdmin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.isStaff, tc.isSuperuser, tc.isModerator))
		})
	}
}

func TestEvaluateContentTable(t *testing.T) {
	cases := []struct {
		name    string
		role    types.Role
		action  Action
		isOwner bool
		want    Decision
	}{
		{"regular create", types.RoleRegular, ActionCreate, false, Allow},
		{"regular list", types.RoleRegular, ActionReadList, false, Allow},
		{"regular read own", types.RoleRegular, ActionReadDetail, true, Allow},
		{"regular read other", types.RoleRegular, ActionReadDetail, false, DenyNotFound},
		{"regular update own", types.RoleRegular, ActionUpdate, true, Allow},
		{"regular update other", types.RoleRegular, ActionUpdate, false, DenyNotFound},
		{"regular delete own", types.RoleRegular, ActionDelete, true, Allow},
		{"regular delete other", types.RoleRegular, ActionDelete, false, DenyNotFound},

		{"moderator create denied", types.RoleModerator, ActionCreate, false, DenyForbidden},
		{"moderator list", types.RoleModerator, ActionReadList, false, Allow},
		{"moderator read any", types.RoleModerator, ActionReadDetail, false, Allow},
		{"moderator update any", types.RoleModerator, ActionUpdate, false, Allow},
		{"moderator delete denied even as owner", types.RoleModerator, ActionDelete, true, DenyForbidden},

		{"admin create", types.RoleAdmin, ActionCreate, false, Allow},
		{"admin read any", types.RoleAdmin, ActionReadDetail, false, Allow},
		{"admin update any", types.RoleAdmin, ActionUpdate, false, Allow},
		{"admin delete any", types.RoleAdmin, ActionDelete, false, Allow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EvaluateContent(tc.role, tc.action, tc.isOwner))
		})
	}
}

func TestEvaluateContentOwnerlessRecord(t *testing.T) {
	// Records whose owner was deleted belong to nobody: moderators may still
	// update, only admins may delete.
	userID := uuid.New()
	assert.False(t, IsOwner(nil, userID))

	assert.Equal(t, Allow, EvaluateContent(types.RoleModerator, ActionUpdate, false))
	assert.Equal(t, DenyForbidden, EvaluateContent(types.RoleModerator, ActionDelete, false))
	assert.Equal(t, Allow, EvaluateContent(types.RoleAdmin, ActionDelete, false))
	assert.Equal(t, DenyNotFound, EvaluateContent(types.RoleRegular, ActionDelete, false))
}

func TestIsOwner(t *testing.T) {
	userID := uuid.New()
	other := uuid.New()

	assert.True(t, IsOwner(&userID, userID))
	assert.False(t, IsOwner(&other, userID))
	assert.False(t, IsOwner(nil, userID))
}

func TestEvaluatePayment(t *testing.T) {
	cases := []struct {
		name    string
		role    types.Role
		action  Action
		isOwner bool
		want    Decision
	}{
		{"regular reads own", types.RoleRegular, ActionReadDetail, true, Allow},
		{"regular reads other", types.RoleRegular, ActionReadDetail, false, DenyNotFound},
		{"moderator reads any", types.RoleModerator, ActionReadDetail, false, Allow},
		{"admin reads any", types.RoleAdmin, ActionReadDetail, false, Allow},

		{"regular create denied", types.RoleRegular, ActionCreate, false, DenyForbidden},
		{"moderator create denied", types.RoleModerator, ActionCreate, false, DenyForbidden},
		{"admin create", types.RoleAdmin, ActionCreate, false, Allow},

		{"regular update own denied", types.RoleRegular, ActionUpdate, true, DenyForbidden},
		{"moderator update denied", types.RoleModerator, ActionUpdate, false, DenyForbidden},
		{"admin update", types.RoleAdmin, ActionUpdate, false, Allow},

		{"moderator delete denied", types.RoleModerator, ActionDelete, false, DenyForbidden},
		{"admin delete", types.RoleAdmin, ActionDelete, false, Allow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EvaluatePayment(tc.role, tc.action, tc.isOwner))
		})
	}
}

func TestEvaluateSubscription(t *testing.T) {
	assert.Equal(t, Allow, EvaluateSubscription(ActionCreate, false))
	assert.Equal(t, Allow, EvaluateSubscription(ActionReadList, false))
	assert.Equal(t, Allow, EvaluateSubscription(ActionDelete, true))
	assert.Equal(t, DenyNotFound, EvaluateSubscription(ActionDelete, false))
}

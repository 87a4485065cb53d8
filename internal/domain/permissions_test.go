package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAllowsIsMonotonic(t *testing.T) {
	roles := []Role{RoleViewer, RoleMember, RoleModerator, RoleOwner}
	levels := []PermissionLevel{LevelEveryone, LevelMembers, LevelModerators, LevelOwner}

	for i, role := range roles {
		for j, level := range levels {
			assert.Equal(t, i >= j, role.Allows(level), "role %s vs level %s", role, level)
		}
	}
}

func TestRequiredLevelCoversEveryAction(t *testing.T) {
	p := DefaultPermissions("r1", TierFree)

	actions := []Action{
		ActionPlay, ActionPause, ActionSeek, ActionChangeVideo,
		ActionAddToQueue, ActionRemoveFromQueue, ActionReorderQueue, ActionClearQueue,
		ActionInviteUsers, ActionKickUsers, ActionChangeSettings,
	}
	for _, action := range actions {
		assert.True(t, p.RequiredLevel(action).IsValid(), "action %s", action)
	}

	assert.Equal(t, LevelOwner, p.RequiredLevel(Action("no_such_action")),
		"unknown actions must resolve to the strictest level")
}

func TestDefaultPermissionsByTier(t *testing.T) {
	free := DefaultPermissions("r1", TierFree)
	assert.Equal(t, "r1", free.RoomId)
	assert.Equal(t, LevelEveryone, free.CanPlay)
	assert.Equal(t, LevelMembers, free.CanRemoveFromQueue)
	assert.Equal(t, LevelOwner, free.CanClearQueue)

	premium := DefaultPermissions("r2", TierPremium)
	assert.Equal(t, LevelMembers, premium.CanPlay)
	assert.Equal(t, LevelModerators, premium.CanKickUsers)
	assert.Equal(t, LevelOwner, premium.CanChangeSettings)
}

func TestRoleValidation(t *testing.T) {
	assert.True(t, RoleViewer.IsValid())
	assert.True(t, RoleOwner.IsValid())
	assert.False(t, Role("admin").IsValid())

	assert.True(t, LevelEveryone.IsValid())
	assert.False(t, PermissionLevel("anyone").IsValid())
}

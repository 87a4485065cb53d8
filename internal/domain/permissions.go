package domain

// PermissionLevel is the minimum role tier required to perform an action
// category. Levels share the role ordering: everyone < members < moderators < owner.
type PermissionLevel string

const (
	LevelEveryone   PermissionLevel = "everyone"
	LevelMembers    PermissionLevel = "members"
	LevelModerators PermissionLevel = "moderators"
	LevelOwner      PermissionLevel = "owner"
)

var levelRank = map[PermissionLevel]int{
	LevelEveryone:   0,
	LevelMembers:    1,
	LevelModerators: 2,
	LevelOwner:      3,
}

func (l PermissionLevel) Rank() int {
	return levelRank[l]
}

func (l PermissionLevel) IsValid() bool {
	_, ok := levelRank[l]
	return ok
}

// Action is the closed set of gated action kinds.
type Action string

const (
	ActionPlay            Action = "play"
	ActionPause           Action = "pause"
	ActionSeek            Action = "seek"
	ActionChangeVideo     Action = "change_video"
	ActionAddToQueue      Action = "add_to_queue"
	ActionRemoveFromQueue Action = "remove_from_queue"
	ActionReorderQueue    Action = "reorder_queue"
	ActionClearQueue      Action = "clear_queue"
	ActionInviteUsers     Action = "invite_users"
	ActionKickUsers       Action = "kick_users"
	ActionChangeSettings  Action = "change_settings"
)

// RoomPermissions holds the required level for every action category of one room.
type RoomPermissions struct {
	RoomId             string          `json:"roomId"`
	CanPlay            PermissionLevel `json:"canPlay"`
	CanPause           PermissionLevel `json:"canPause"`
	CanSeek            PermissionLevel `json:"canSeek"`
	CanChangeVideo     PermissionLevel `json:"canChangeVideo"`
	CanAddToQueue      PermissionLevel `json:"canAddToQueue"`
	CanRemoveFromQueue PermissionLevel `json:"canRemoveFromQueue"`
	CanReorderQueue    PermissionLevel `json:"canReorderQueue"`
	CanClearQueue      PermissionLevel `json:"canClearQueue"`
	CanInviteUsers     PermissionLevel `json:"canInviteUsers"`
	CanKickUsers       PermissionLevel `json:"canKickUsers"`
	CanChangeSettings  PermissionLevel `json:"canChangeSettings"`
}

// RequiredLevel maps an action kind to its configured level. The switch is
// exhaustive over Action; unknown kinds fall back to owner so that a new
// action cannot ship ungated by accident.
func (p *RoomPermissions) RequiredLevel(action Action) PermissionLevel {
	switch action {
	case ActionPlay:
		return p.CanPlay
	case ActionPause:
		return p.CanPause
	case ActionSeek:
		return p.CanSeek
	case ActionChangeVideo:
		return p.CanChangeVideo
	case ActionAddToQueue:
		return p.CanAddToQueue
	case ActionRemoveFromQueue:
		return p.CanRemoveFromQueue
	case ActionReorderQueue:
		return p.CanReorderQueue
	case ActionClearQueue:
		return p.CanClearQueue
	case ActionInviteUsers:
		return p.CanInviteUsers
	case ActionKickUsers:
		return p.CanKickUsers
	case ActionChangeSettings:
		return p.CanChangeSettings
	default:
		return LevelOwner
	}
}

// DefaultPermissions returns the tier template applied at room creation.
// Free rooms are permissive; premium rooms default to members-only control.
func DefaultPermissions(roomId string, tier RoomTier) RoomPermissions {
	if tier == TierPremium {
		return RoomPermissions{
			RoomId:             roomId,
			CanPlay:            LevelMembers,
			CanPause:           LevelMembers,
			CanSeek:            LevelMembers,
			CanChangeVideo:     LevelMembers,
			CanAddToQueue:      LevelMembers,
			CanRemoveFromQueue: LevelMembers,
			CanReorderQueue:    LevelModerators,
			CanClearQueue:      LevelOwner,
			CanInviteUsers:     LevelMembers,
			CanKickUsers:       LevelModerators,
			CanChangeSettings:  LevelOwner,
		}
	}

	return RoomPermissions{
		RoomId:             roomId,
		CanPlay:            LevelEveryone,
		CanPause:           LevelEveryone,
		CanSeek:            LevelEveryone,
		CanChangeVideo:     LevelEveryone,
		CanAddToQueue:      LevelEveryone,
		CanRemoveFromQueue: LevelMembers,
		CanReorderQueue:    LevelModerators,
		CanClearQueue:      LevelOwner,
		CanInviteUsers:     LevelMembers,
		CanKickUsers:       LevelModerators,
		CanChangeSettings:  LevelOwner,
	}
}

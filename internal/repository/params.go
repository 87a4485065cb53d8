package repository

import "github.com/syncstream/server/internal/domain"

type CreateRoomParams struct {
	Room        domain.Room
	Permissions domain.RoomPermissions
	OwnerMember domain.RoomMember
}

// UpdateRoomPlaybackParams carries a partial playback update. Nil fields are
// left untouched.
type UpdateRoomPlaybackParams struct {
	RoomId           string
	CurrentVideoId   *string
	CurrentTimestamp *float64
	IsPlaying        *bool
}

type ReplaceQueueParams struct {
	RoomId string
	Items  []domain.QueueItem
}

type SetMembershipParams struct {
	RoomId string
	UserId string
	Role   domain.Role
}

type RemoveMembershipParams struct {
	RoomId string
	UserId string
}

package domain

// Role is a member's privilege tier within one room.
type Role string

const (
	RoleViewer    Role = "viewer"
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleOwner     Role = "owner"
)

var roleRank = map[Role]int{
	RoleViewer:    0,
	RoleMember:    1,
	RoleModerator: 2,
	RoleOwner:     3,
}

func (r Role) Rank() int {
	return roleRank[r]
}

func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Allows reports whether a role satisfies the given permission level.
func (r Role) Allows(level PermissionLevel) bool {
	return r.Rank() >= level.Rank()
}

type RoomMember struct {
	RoomId string `json:"roomId"`
	UserId string `json:"userId"`
	Role   Role   `json:"role"`
}

package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
)

// roleOf resolves the user's effective role in the room. The room's recorded
// owner is always "owner" regardless of the membership table; everyone else
// resolves through their membership row. ok is false for non-members.
func (s service) roleOf(ctx context.Context, st *roomState, roomId, userId string) (role domain.Role, ok bool, err error) {
	if userId == st.ownerId {
		return domain.RoleOwner, true, nil
	}

	member, err := s.roomRepo.GetMembership(ctx, roomId, userId)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get membership: %w", err)
	}

	return member.Role, true, nil
}

// authorize gates one action. Non-members are denied everything on private
// rooms and allowed only "everyone"-level actions on public ones; members are
// allowed iff their role rank meets the action's configured level.
func (s service) authorize(ctx context.Context, st *roomState, roomId, userId string, action domain.Action) error {
	required := domain.LevelEveryone
	if st.perms != nil {
		required = st.perms.RequiredLevel(action)
	}

	role, ok, err := s.roleOf(ctx, st, roomId, userId)
	if err != nil {
		return err
	}

	if !ok {
		if !st.isPublic {
			return ErrPermissionDenied
		}
		if required != domain.LevelEveryone {
			return ErrPermissionDenied
		}

		return nil
	}

	if !role.Allows(required) {
		return ErrPermissionDenied
	}

	return nil
}

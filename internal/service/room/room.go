package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
)

type CreateRoomParams struct {
	UserId   string
	Name     string
	Tier     domain.RoomTier
	IsPublic bool
}

type CreateRoomResponse struct {
	Room        domain.Room            `json:"room"`
	Permissions domain.RoomPermissions `json:"permissions"`
}

// CreateRoom creates the room, its tier-default permissions row and the
// owner's membership row atomically. The owner's effective role always
// resolves from the room's owner field, so the membership row carries a plain
// member role and exists for member listing only.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	tier := params.Tier
	if tier == "" {
		tier = domain.TierFree
	}

	room := domain.Room{
		Id:       uuid.NewString(),
		Name:     params.Name,
		OwnerId:  params.UserId,
		Tier:     tier,
		IsPublic: params.IsPublic,
	}
	perms := domain.DefaultPermissions(room.Id, tier)

	if err := s.roomRepo.CreateRoom(ctx, &repository.CreateRoomParams{
		Room:        room,
		Permissions: perms,
		OwnerMember: domain.RoomMember{
			RoomId: room.Id,
			UserId: params.UserId,
			Role:   domain.RoleMember,
		},
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	return CreateRoomResponse{Room: room, Permissions: perms}, nil
}

type GetRoomResponse struct {
	Room  domain.Room        `json:"room"`
	Queue []domain.QueueItem `json:"queue"`
}

func (s service) GetRoom(ctx context.Context, roomId string) (GetRoomResponse, error) {
	room, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return GetRoomResponse{}, ErrRoomNotFound
		}
		return GetRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	queue, err := s.roomRepo.ListQueue(ctx, roomId)
	if err != nil {
		return GetRoomResponse{}, fmt.Errorf("failed to list queue: %w", err)
	}

	return GetRoomResponse{Room: room, Queue: queue}, nil
}

type DeleteRoomParams struct {
	UserId string
	RoomId string
}

// DeleteRoom is owner-only. Live connections are detached and notified, and
// the runtime state is evicted together with the row.
func (s service) DeleteRoom(ctx context.Context, params *DeleteRoomParams) error {
	return s.withRoomState(ctx, params.RoomId, func(st *roomState) error {
		if params.UserId != st.ownerId {
			return ErrPermissionDenied
		}

		if err := s.roomRepo.DeleteRoom(ctx, params.RoomId); err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}

		for _, conn := range s.connRepo.GetConnsByRoomId(params.RoomId) {
			s.SendError(ctx, conn, "room has been deleted")
			if _, err := s.connRepo.SetRoom(conn, ""); err != nil {
				return fmt.Errorf("failed to clear connection room: %w", err)
			}
		}

		st.evicted = true
		s.states.remove(params.RoomId, st)

		return nil
	})
}

// UpdatePermissionsParams carries a partial permissions update; nil fields
// keep their current level.
type UpdatePermissionsParams struct {
	UserId string
	RoomId string

	CanPlay            *domain.PermissionLevel
	CanPause           *domain.PermissionLevel
	CanSeek            *domain.PermissionLevel
	CanChangeVideo     *domain.PermissionLevel
	CanAddToQueue      *domain.PermissionLevel
	CanRemoveFromQueue *domain.PermissionLevel
	CanReorderQueue    *domain.PermissionLevel
	CanClearQueue      *domain.PermissionLevel
	CanInviteUsers     *domain.PermissionLevel
	CanKickUsers       *domain.PermissionLevel
	CanChangeSettings  *domain.PermissionLevel
}

func (s service) UpdatePermissions(ctx context.Context, params *UpdatePermissionsParams) (domain.RoomPermissions, error) {
	var updated domain.RoomPermissions
	err := s.withRoomState(ctx, params.RoomId, func(st *roomState) error {
		if err := s.authorize(ctx, st, params.RoomId, params.UserId, domain.ActionChangeSettings); err != nil {
			return err
		}

		// a missing row is healed here from the tier defaults
		base := domain.DefaultPermissions(params.RoomId, st.tier)
		if st.perms != nil {
			base = *st.perms
		}

		apply := func(dst *domain.PermissionLevel, src *domain.PermissionLevel) {
			if src != nil {
				*dst = *src
			}
		}
		apply(&base.CanPlay, params.CanPlay)
		apply(&base.CanPause, params.CanPause)
		apply(&base.CanSeek, params.CanSeek)
		apply(&base.CanChangeVideo, params.CanChangeVideo)
		apply(&base.CanAddToQueue, params.CanAddToQueue)
		apply(&base.CanRemoveFromQueue, params.CanRemoveFromQueue)
		apply(&base.CanReorderQueue, params.CanReorderQueue)
		apply(&base.CanClearQueue, params.CanClearQueue)
		apply(&base.CanInviteUsers, params.CanInviteUsers)
		apply(&base.CanKickUsers, params.CanKickUsers)
		apply(&base.CanChangeSettings, params.CanChangeSettings)

		if err := s.roomRepo.UpdatePermissions(ctx, &base); err != nil {
			return fmt.Errorf("failed to update permissions: %w", err)
		}

		st.perms = &base
		updated = base

		return nil
	})
	if err != nil {
		return domain.RoomPermissions{}, err
	}

	return updated, nil
}

type AddMemberParams struct {
	UserId       string
	RoomId       string
	TargetUserId string
	Role         domain.Role
}

// AddMember grants or updates a membership, gated by canInviteUsers. Granting
// a role above one's own is rejected, and the owner's membership cannot be
// reassigned.
func (s service) AddMember(ctx context.Context, params *AddMemberParams) error {
	return s.withRoomState(ctx, params.RoomId, func(st *roomState) error {
		if err := s.authorize(ctx, st, params.RoomId, params.UserId, domain.ActionInviteUsers); err != nil {
			return err
		}
		if params.TargetUserId == st.ownerId {
			return ErrPermissionDenied
		}

		actorRole, ok, err := s.roleOf(ctx, st, params.RoomId, params.UserId)
		if err != nil {
			return err
		}
		if !ok || params.Role.Rank() > actorRole.Rank() {
			return ErrPermissionDenied
		}

		if err := s.roomRepo.SetMembership(ctx, &repository.SetMembershipParams{
			RoomId: params.RoomId,
			UserId: params.TargetUserId,
			Role:   params.Role,
		}); err != nil {
			return fmt.Errorf("failed to set membership: %w", err)
		}

		return nil
	})
}

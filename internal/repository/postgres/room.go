package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
	omitnilpointers "github.com/syncstream/server/pkg/omit-nil-pointers"
)

// CreateRoom inserts the room, its default permissions row and the owner's
// membership row in one transaction. Any failure rolls the whole creation back.
func (r repo) CreateRoom(ctx context.Context, params *repository.CreateRoomParams) error {
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		room := params.Room
		if _, err := tx.Exec(ctx, `
			INSERT INTO rooms (id, name, owner_id, tier, is_public, current_video_id, current_timestamp_sec, is_playing)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			room.Id, room.Name, room.OwnerId, room.Tier, room.IsPublic,
			room.CurrentVideoId, room.CurrentTimestamp, room.IsPlaying,
		); err != nil {
			return fmt.Errorf("failed to insert room: %w", err)
		}

		if err := insertPermissions(ctx, tx, &params.Permissions); err != nil {
			return fmt.Errorf("failed to insert permissions: %w", err)
		}

		member := params.OwnerMember
		if _, err := tx.Exec(ctx, `
			INSERT INTO room_members (room_id, user_id, role)
			VALUES ($1, $2, $3)`,
			member.RoomId, member.UserId, member.Role,
		); err != nil {
			return fmt.Errorf("failed to insert owner membership: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (domain.Room, error) {
	var room domain.Room
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, tier, is_public, current_video_id, current_timestamp_sec, is_playing
		FROM rooms
		WHERE id = $1`,
		roomId,
	).Scan(
		&room.Id, &room.Name, &room.OwnerId, &room.Tier, &room.IsPublic,
		&room.CurrentVideoId, &room.CurrentTimestamp, &room.IsPlaying,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, repository.ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

func (r repo) UpdateRoomPlayback(ctx context.Context, params *repository.UpdateRoomPlaybackParams) error {
	fields := omitnilpointers.OmitNilPointers(map[string]any{
		"current_video_id":      params.CurrentVideoId,
		"current_timestamp_sec": params.CurrentTimestamp,
		"is_playing":            params.IsPlaying,
	})
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields))
	args := []any{params.RoomId}
	for column, value := range fields {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	ct, err := r.pool.Exec(ctx,
		"UPDATE rooms SET "+strings.Join(sets, ", ")+" WHERE id = $1",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update room playback: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrRoomNotFound
	}

	return nil
}

func (r repo) DeleteRoom(ctx context.Context, roomId string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomId)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrRoomNotFound
	}

	return nil
}

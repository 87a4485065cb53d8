package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
)

func insertPermissions(ctx context.Context, tx pgx.Tx, p *domain.RoomPermissions) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO room_permissions (
			room_id,
			can_play, can_pause, can_seek, can_change_video,
			can_add_to_queue, can_remove_from_queue, can_reorder_queue, can_clear_queue,
			can_invite_users, can_kick_users, can_change_settings
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.RoomId,
		p.CanPlay, p.CanPause, p.CanSeek, p.CanChangeVideo,
		p.CanAddToQueue, p.CanRemoveFromQueue, p.CanReorderQueue, p.CanClearQueue,
		p.CanInviteUsers, p.CanKickUsers, p.CanChangeSettings,
	)

	return err
}

func (r repo) GetPermissions(ctx context.Context, roomId string) (domain.RoomPermissions, error) {
	var p domain.RoomPermissions
	err := r.pool.QueryRow(ctx, `
		SELECT
			room_id,
			can_play, can_pause, can_seek, can_change_video,
			can_add_to_queue, can_remove_from_queue, can_reorder_queue, can_clear_queue,
			can_invite_users, can_kick_users, can_change_settings
		FROM room_permissions
		WHERE room_id = $1`,
		roomId,
	).Scan(
		&p.RoomId,
		&p.CanPlay, &p.CanPause, &p.CanSeek, &p.CanChangeVideo,
		&p.CanAddToQueue, &p.CanRemoveFromQueue, &p.CanReorderQueue, &p.CanClearQueue,
		&p.CanInviteUsers, &p.CanKickUsers, &p.CanChangeSettings,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoomPermissions{}, repository.ErrPermissionsNotFound
		}
		return domain.RoomPermissions{}, fmt.Errorf("failed to get permissions: %w", err)
	}

	return p, nil
}

// UpdatePermissions upserts the full row; a missing row is recreated.
func (r repo) UpdatePermissions(ctx context.Context, p *domain.RoomPermissions) error {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO room_permissions (
			room_id,
			can_play, can_pause, can_seek, can_change_video,
			can_add_to_queue, can_remove_from_queue, can_reorder_queue, can_clear_queue,
			can_invite_users, can_kick_users, can_change_settings
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (room_id) DO UPDATE SET
			can_play = EXCLUDED.can_play,
			can_pause = EXCLUDED.can_pause,
			can_seek = EXCLUDED.can_seek,
			can_change_video = EXCLUDED.can_change_video,
			can_add_to_queue = EXCLUDED.can_add_to_queue,
			can_remove_from_queue = EXCLUDED.can_remove_from_queue,
			can_reorder_queue = EXCLUDED.can_reorder_queue,
			can_clear_queue = EXCLUDED.can_clear_queue,
			can_invite_users = EXCLUDED.can_invite_users,
			can_kick_users = EXCLUDED.can_kick_users,
			can_change_settings = EXCLUDED.can_change_settings`,
		p.RoomId,
		p.CanPlay, p.CanPause, p.CanSeek, p.CanChangeVideo,
		p.CanAddToQueue, p.CanRemoveFromQueue, p.CanReorderQueue, p.CanClearQueue,
		p.CanInviteUsers, p.CanKickUsers, p.CanChangeSettings,
	); err != nil {
		return fmt.Errorf("failed to update permissions: %w", err)
	}

	return nil
}

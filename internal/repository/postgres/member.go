package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
)

func (r repo) GetMembership(ctx context.Context, roomId, userId string) (domain.RoomMember, error) {
	var member domain.RoomMember
	err := r.pool.QueryRow(ctx, `
		SELECT room_id, user_id, role
		FROM room_members
		WHERE room_id = $1 AND user_id = $2`,
		roomId, userId,
	).Scan(&member.RoomId, &member.UserId, &member.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoomMember{}, repository.ErrMembershipNotFound
		}
		return domain.RoomMember{}, fmt.Errorf("failed to get membership: %w", err)
	}

	return member, nil
}

func (r repo) SetMembership(ctx context.Context, params *repository.SetMembershipParams) error {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO room_members (room_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_id, user_id) DO UPDATE SET role = EXCLUDED.role`,
		params.RoomId, params.UserId, params.Role,
	); err != nil {
		return fmt.Errorf("failed to set membership: %w", err)
	}

	return nil
}

func (r repo) RemoveMembership(ctx context.Context, params *repository.RemoveMembershipParams) error {
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM room_members
		WHERE room_id = $1 AND user_id = $2`,
		params.RoomId, params.UserId,
	)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrMembershipNotFound
	}

	return nil
}

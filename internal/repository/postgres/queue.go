package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
)

func (r repo) ListQueue(ctx context.Context, roomId string) ([]domain.QueueItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, room_id, video_id, video_title, position, added_by_id
		FROM queue_items
		WHERE room_id = $1
		ORDER BY position ASC`,
		roomId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer rows.Close()

	items := make([]domain.QueueItem, 0)
	for rows.Next() {
		var item domain.QueueItem
		if err := rows.Scan(&item.Id, &item.RoomId, &item.VideoId, &item.VideoTitle, &item.Order, &item.AddedBy); err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	return items, nil
}

// ReplaceQueue atomically supersedes the room's entire queue. Order values are
// taken as given; callers derive them from the supplied sequence.
func (r repo) ReplaceQueue(ctx context.Context, params *repository.ReplaceQueueParams) error {
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM queue_items WHERE room_id = $1`, params.RoomId); err != nil {
			return fmt.Errorf("failed to delete queue items: %w", err)
		}

		for _, item := range params.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO queue_items (id, room_id, video_id, video_title, position, added_by_id)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				item.Id, params.RoomId, item.VideoId, item.VideoTitle, item.Order, item.AddedBy,
			); err != nil {
				return fmt.Errorf("failed to insert queue item: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace queue: %w", err)
	}

	return nil
}

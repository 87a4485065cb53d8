package room

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
)

// Queue mutations recompute every order value, persist the whole queue, then
// commit it in memory, so other participants never observe gapped or
// duplicated orders. queue_updated is echoed to the sender too: their
// optimistic local view must be reconciled to the recomputed authoritative
// order.

type QueueVideo struct {
	VideoId    string `json:"videoId" validate:"required"`
	VideoTitle string `json:"videoTitle" validate:"required"`
}

type AddToQueueParams struct {
	Conn   *websocket.Conn
	RoomId string
	Video  QueueVideo
}

func (s service) AddToQueue(ctx context.Context, params *AddToQueueParams) error {
	userId, roomId, err := s.connInfo(params.Conn, params.RoomId)
	if err != nil {
		return err
	}

	return s.withRoomState(ctx, roomId, func(st *roomState) error {
		if err := s.authorize(ctx, st, roomId, userId, domain.ActionAddToQueue); err != nil {
			return err
		}

		if len(st.queue) >= s.queueLimit {
			return ErrQueueLimitReached
		}

		newQueue := make([]domain.QueueItem, len(st.queue), len(st.queue)+1)
		copy(newQueue, st.queue)
		newQueue = append(newQueue, domain.QueueItem{
			Id:         uuid.NewString(),
			RoomId:     roomId,
			VideoId:    params.Video.VideoId,
			VideoTitle: params.Video.VideoTitle,
			Order:      len(newQueue),
			AddedBy:    &userId,
		})

		return s.commitQueue(ctx, st, roomId, newQueue)
	})
}

type RemoveFromQueueParams struct {
	Conn    *websocket.Conn
	RoomId  string
	VideoId string
}

func (s service) RemoveFromQueue(ctx context.Context, params *RemoveFromQueueParams) error {
	userId, roomId, err := s.connInfo(params.Conn, params.RoomId)
	if err != nil {
		return err
	}

	return s.withRoomState(ctx, roomId, func(st *roomState) error {
		if err := s.authorize(ctx, st, roomId, userId, domain.ActionRemoveFromQueue); err != nil {
			return err
		}

		removeIdx := -1
		for i, item := range st.queue {
			if item.VideoId == params.VideoId {
				removeIdx = i
				break
			}
		}
		if removeIdx == -1 {
			return ErrQueueItemNotFound
		}

		newQueue := make([]domain.QueueItem, 0, len(st.queue)-1)
		for i, item := range st.queue {
			if i == removeIdx {
				continue
			}

			item.Order = len(newQueue)
			newQueue = append(newQueue, item)
		}

		return s.commitQueue(ctx, st, roomId, newQueue)
	})
}

type ReplaceQueueParams struct {
	Conn   *websocket.Conn
	RoomId string
	Queue  []QueueVideo
}

// ReplaceQueue fully supersedes the queue, used for bulk reorder and clear.
// An empty queue is gated as "clear", anything else as "reorder".
func (s service) ReplaceQueue(ctx context.Context, params *ReplaceQueueParams) error {
	userId, roomId, err := s.connInfo(params.Conn, params.RoomId)
	if err != nil {
		return err
	}

	return s.withRoomState(ctx, roomId, func(st *roomState) error {
		action := domain.ActionReorderQueue
		if len(params.Queue) == 0 {
			action = domain.ActionClearQueue
		}
		if err := s.authorize(ctx, st, roomId, userId, action); err != nil {
			return err
		}

		if len(params.Queue) > s.queueLimit {
			return ErrQueueLimitReached
		}

		// Items surviving the replace keep their id and attribution. The same
		// video may appear more than once, so each occurrence consumes one
		// existing item.
		existing := make(map[string][]domain.QueueItem, len(st.queue))
		for _, item := range st.queue {
			existing[item.VideoId] = append(existing[item.VideoId], item)
		}

		newQueue := make([]domain.QueueItem, 0, len(params.Queue))
		for i, video := range params.Queue {
			var item domain.QueueItem
			if items := existing[video.VideoId]; len(items) > 0 {
				item = items[0]
				existing[video.VideoId] = items[1:]
			} else {
				item = domain.QueueItem{
					Id:      uuid.NewString(),
					RoomId:  roomId,
					VideoId: video.VideoId,
					AddedBy: &userId,
				}
			}

			item.VideoTitle = video.VideoTitle
			item.Order = i
			newQueue = append(newQueue, item)
		}

		return s.commitQueue(ctx, st, roomId, newQueue)
	})
}

// commitQueue persists the recomputed queue, commits it in memory and emits
// queue_updated to all members including the sender. On persistence failure
// the in-memory queue is left exactly as it was.
func (s service) commitQueue(ctx context.Context, st *roomState, roomId string, newQueue []domain.QueueItem) error {
	if err := s.roomRepo.ReplaceQueue(ctx, &repository.ReplaceQueueParams{
		RoomId: roomId,
		Items:  newQueue,
	}); err != nil {
		return fmt.Errorf("failed to replace queue: %w", err)
	}

	st.queue = newQueue

	queue := make([]domain.QueueItem, len(newQueue))
	copy(queue, newQueue)
	s.broadcast(ctx, roomId, nil, &Message{
		Type:    "queue_updated",
		Payload: QueueUpdatedPayload{Queue: queue},
	})

	return nil
}

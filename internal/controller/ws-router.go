package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/service/room"
	"github.com/syncstream/server/pkg/ctxlogger"
	"github.com/syncstream/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsLoggingMw)
	mux.HandleError(c.wsErrorHandler)

	// membership
	wsrouter.HandleTyped(mux, "join_room", c.handleJoinRoom)
	wsrouter.HandleTyped(mux, "leave_room", c.handleLeaveRoom)
	wsrouter.HandleTyped(mux, "kick_user", c.handleKickUser)

	// playback
	wsrouter.HandleTyped(mux, "play", c.handlePlay)
	wsrouter.HandleTyped(mux, "pause", c.handlePause)
	wsrouter.HandleTyped(mux, "seek", c.handleSeek)
	wsrouter.HandleTyped(mux, "change_video", c.handleChangeVideo)

	// queue
	wsrouter.HandleTyped(mux, "add_to_queue", c.handleAddToQueue)
	wsrouter.HandleTyped(mux, "remove_from_queue", c.handleRemoveFromQueue)
	wsrouter.HandleTyped(mux, "update_queue", c.handleUpdateQueue)

	return mux
}

func (c controller) wsLoggingMw(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
		c.logger.DebugContext(ctx, "websocket message received")

		start := time.Now()
		err := next(ctx, conn, payload)

		c.logger.InfoContext(ctx, "websocket message handled",
			"processing_time_us", time.Since(start).Microseconds(),
			"err", err,
		)

		return err
	}
}

// wsErrorHandler converts every handler error into a single error event to
// the acting connection. Nothing propagated from a handler kills the server
// or the room; only transport failure ends the serve loop.
func (c controller) wsErrorHandler(ctx context.Context, conn *websocket.Conn, err error) error {
	var message string
	switch {
	case errors.Is(err, room.ErrPermissionDenied):
		message = "permission denied"
	case errors.Is(err, room.ErrRoomNotFound):
		message = "room not found"
	case errors.Is(err, room.ErrQueueItemNotFound):
		message = "queue item not found"
	case errors.Is(err, room.ErrQueueLimitReached):
		message = "queue limit reached"
	case errors.Is(err, room.ErrNotInRoom):
		message = "not in a room"
	case errors.Is(err, room.ErrNotAuthenticated):
		message = "not authenticated"
	case errors.Is(err, wsrouter.ErrUnknownMessageType):
		message = "unknown message type"
	case errors.Is(err, wsrouter.ErrMalformedPayload), errors.Is(err, errInvalidPayload):
		message = "invalid payload"
	default:
		c.logger.ErrorContext(ctx, "failed to handle websocket message", "err", err)
		message = "internal error"
	}

	c.roomService.SendError(ctx, conn, message)

	return nil
}

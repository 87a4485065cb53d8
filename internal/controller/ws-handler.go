package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/service/room"
	"github.com/syncstream/server/pkg/ctxlogger"
)

var errInvalidPayload = errors.New("invalid payload")

// ws upgrades the connection and authenticates it exactly once by redeeming
// the one-time ticket from the query string. A connection that fails here is
// closed before it can touch any room.
func (c controller) ws(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		c.writeError(w, http.StatusUnauthorized, "no ticket provided")
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "err", err)
		return
	}

	// the connection outlives the upgrade request
	ctx := context.WithoutCancel(r.Context())

	userId, err := c.roomService.Connect(ctx, &room.ConnectParams{Conn: conn, Token: ticket})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to authenticate connection", "err", err)
		conn.WriteJSON(room.Message{Type: "error", Payload: room.ErrorPayload{Message: "authentication failed"}})
		conn.Close()
		return
	}

	ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", userId))
	c.logger.InfoContext(ctx, "connection established")

	if err := c.getWSRouter().ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "connection closed", "reason", err)
	}

	c.roomService.Disconnect(ctx, conn)
	conn.Close()
}

type JoinRoomInput struct {
	RoomId string `json:"roomId" validate:"required"`
}

func (c controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, input JoinRoomInput) error {
	if _, ok := c.validate.Validate(&input); !ok {
		return errInvalidPayload
	}

	return c.roomService.JoinRoom(ctx, &room.JoinRoomParams{Conn: conn, RoomId: input.RoomId})
}

type LeaveRoomInput struct {
	RoomId string `json:"roomId"`
}

func (c controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, input LeaveRoomInput) error {
	return c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{Conn: conn, RoomId: input.RoomId})
}

type PlaybackInput struct {
	RoomId    string  `json:"roomId"`
	Timestamp float64 `json:"timestamp" validate:"gte=0"`
}

func (c controller) handlePlay(ctx context.Context, conn *websocket.Conn, input PlaybackInput) error {
	if _, ok := c.validate.Validate(&input); !ok {
		return errInvalidPayload
	}

	return c.roomService.Play(ctx, &room.PlayParams{Conn: conn, RoomId: input.RoomId, Timestamp: input.Timestamp})
}

func (c controller) handlePause(ctx context.Context, conn *websocket.Conn, input PlaybackInput) error {
	if _, ok := c.validate.Validate(&input); !ok {
		return errInvalidPayload
	}

	return c.roomService.Pause(ctx, &room.PauseParams{Conn: conn, RoomId: input.RoomId, Timestamp: input.Timestamp})
}

func (c controller) handleSeek(ctx context.Context, conn *websocket.Conn, input PlaybackInput) error {
	if _, ok := c.validate.Validate(&input); !ok {
		return errInvalidPayload
	}

	return c.roomService.Seek(ctx, &room.SeekParams{Conn: conn, RoomId: input.RoomId, Timestamp: input.Timestamp})
}

type ChangeVideoInput struct {
	RoomId    string  `json:"roomId"`
	VideoId   string  `json:"videoId" validate:"required"`
	Timestamp float64 `json:"timestamp" validate:"gte=0"`
}

func (c controller) handleChangeVideo(ctx context.Context, conn *websocket.Conn, input ChangeVideoInput) error {
	if _, ok := c.validate.Validate(&input); !ok {
		return errInvalidPayload
	}

	return c.roomService.ChangeVideo(ctx, &room.ChangeVideoParams{
		Conn:      conn,
		RoomId:    input.RoomId,
		VideoId:   input.VideoId,
		Timestamp: input.Timestamp,
	})
}

type AddToQueueInput struct {
	RoomId string          `json:"roomId"`
	Video  room.QueueVideo `json:"video" validate:"required"`
}

func (c controller) handleAddToQueue(ctx context.Context, conn *websocket.Conn, input AddToQueueInput) error {
	if _, ok := c.validate.Validate(&input); !ok {
		return errInvalidPayload
	}

	return c.roomService.AddToQueue(ctx, &room.AddToQueueParams{Conn: conn, RoomId: input.RoomId, Video: input.Video})
}

type RemoveFromQueueInput struct {
	RoomId  string `json:"roomId"`
	VideoId string `json:"videoId" validate:"required"`
}

func (c controller) handleRemoveFromQueue(ctx context.Context, conn *websocket.Conn, input RemoveFromQueueInput) error {
	if _, ok := c.validate.Validate(&input); !ok {
		return errInvalidPayload
	}

	return c.roomService.RemoveFromQueue(ctx, &room.RemoveFromQueueParams{
		Conn:    conn,
		RoomId:  input.RoomId,
		VideoId: input.VideoId,
	})
}

type UpdateQueueInput struct {
	RoomId string            `json:"roomId"`
	Queue  []room.QueueVideo `json:"queue" validate:"dive"`
}

func (c controller) handleUpdateQueue(ctx context.Context, conn *websocket.Conn, input UpdateQueueInput) error {
	if _, ok := c.validate.Validate(&input); !ok {
		return errInvalidPayload
	}

	return c.roomService.ReplaceQueue(ctx, &room.ReplaceQueueParams{Conn: conn, RoomId: input.RoomId, Queue: input.Queue})
}

type KickUserInput struct {
	RoomId string `json:"roomId"`
	UserId string `json:"userId" validate:"required"`
}

func (c controller) handleKickUser(ctx context.Context, conn *websocket.Conn, input KickUserInput) error {
	if _, ok := c.validate.Validate(&input); !ok {
		return errInvalidPayload
	}

	return c.roomService.KickUser(ctx, &room.KickUserParams{Conn: conn, RoomId: input.RoomId, UserId: input.UserId})
}

package room

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"
)

// broadcast delivers msg to every connection of the room, skipping exclude
// when non-nil. Delivery is best-effort: a failed write is logged and the
// connection's own read loop tears it down.
func (s service) broadcast(ctx context.Context, roomId string, exclude *websocket.Conn, msg *Message) {
	for _, conn := range s.connRepo.GetConnsByRoomId(roomId) {
		if conn == exclude {
			continue
		}

		if err := s.connRepo.Send(conn, msg); err != nil {
			slog.InfoContext(ctx, "failed to send message", "type", msg.Type, "err", err)
		}
	}
}

// SendError emits an error event to a single connection.
func (s service) SendError(ctx context.Context, conn *websocket.Conn, message string) {
	if err := s.connRepo.Send(conn, &Message{Type: "error", Payload: ErrorPayload{Message: message}}); err != nil {
		slog.InfoContext(ctx, "failed to send error message", "err", err)
	}
}

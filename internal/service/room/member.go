package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
	"github.com/syncstream/server/internal/repository/session"
)

const connectTokenLength = 32

// CreateConnectToken issues a one-time token binding the upcoming websocket
// handshake to an already-verified user identity.
func (s service) CreateConnectToken(ctx context.Context, userId string) (string, error) {
	token := s.generator.GenerateRandomString(connectTokenLength)
	if err := s.sessionRepo.SetConnectToken(ctx, &session.SetConnectTokenParams{
		Token:  token,
		UserId: userId,
		TTL:    s.connectTokenTTL,
	}); err != nil {
		return "", fmt.Errorf("failed to set connect token: %w", err)
	}

	return token, nil
}

type ConnectParams struct {
	Conn  *websocket.Conn
	Token string
}

// Connect redeems the connect token and registers the connection. This is the
// single authentication point of a connection's lifetime; a connection that
// never passed here cannot interact with any room.
func (s service) Connect(ctx context.Context, params *ConnectParams) (string, error) {
	userId, err := s.sessionRepo.PopConnectToken(ctx, params.Token)
	if err != nil {
		if errors.Is(err, session.ErrTokenNotFound) {
			return "", ErrInvalidConnectToken
		}
		return "", fmt.Errorf("failed to pop connect token: %w", err)
	}

	if err := s.connRepo.Add(params.Conn, userId); err != nil {
		return "", fmt.Errorf("failed to add connection: %w", err)
	}

	return userId, nil
}

type JoinRoomParams struct {
	Conn   *websocket.Conn
	RoomId string
}

// JoinRoom registers the connection in the room, sends the authoritative
// state snapshot to the joiner only and notifies the others. A connection
// belongs to at most one room: joining while in another room leaves it first.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) error {
	userId, err := s.connRepo.GetUserId(params.Conn)
	if err != nil {
		return ErrNotAuthenticated
	}

	prevRoomId, err := s.connRepo.GetRoomId(params.Conn)
	if err != nil {
		return ErrNotAuthenticated
	}
	if prevRoomId != "" && prevRoomId != params.RoomId {
		if err := s.detachFromRoom(ctx, params.Conn, userId, prevRoomId); err != nil {
			slog.InfoContext(ctx, "failed to leave previous room", "room_id", prevRoomId, "err", err)
		}
	}

	return s.withRoomState(ctx, params.RoomId, func(st *roomState) error {
		if _, err := s.connRepo.SetRoom(params.Conn, params.RoomId); err != nil {
			return fmt.Errorf("failed to assign connection to room: %w", err)
		}
		st.emptySince = time.Time{}

		if err := s.connRepo.Send(params.Conn, &Message{Type: "room_state", Payload: st.snapshot()}); err != nil {
			return fmt.Errorf("failed to send room state: %w", err)
		}

		// presence is best-effort
		s.broadcast(ctx, params.RoomId, params.Conn, &Message{
			Type:    "user_joined",
			Payload: PresencePayload{UserId: userId},
		})

		return nil
	})
}

type LeaveRoomParams struct {
	Conn   *websocket.Conn
	RoomId string
}

func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) error {
	userId, roomId, err := s.connInfo(params.Conn, params.RoomId)
	if err != nil {
		return err
	}

	return s.detachFromRoom(ctx, params.Conn, userId, roomId)
}

// Disconnect performs leave bookkeeping and drops the connection from the
// registry. Room state is kept; eviction is time-based to tolerate transient
// reconnects.
func (s service) Disconnect(ctx context.Context, conn *websocket.Conn) {
	userId, err := s.connRepo.GetUserId(conn)
	if err != nil {
		return
	}

	if roomId, err := s.connRepo.GetRoomId(conn); err == nil && roomId != "" {
		if err := s.detachFromRoom(ctx, conn, userId, roomId); err != nil {
			slog.InfoContext(ctx, "failed to detach connection from room", "room_id", roomId, "err", err)
		}
	}

	if _, _, err := s.connRepo.Remove(conn); err != nil {
		slog.InfoContext(ctx, "failed to remove connection", "err", err)
	}
}

func (s service) detachFromRoom(ctx context.Context, conn *websocket.Conn, userId, roomId string) error {
	err := s.withRoomState(ctx, roomId, func(st *roomState) error {
		if _, err := s.connRepo.SetRoom(conn, ""); err != nil {
			return fmt.Errorf("failed to clear connection room: %w", err)
		}
		if s.connRepo.CountByRoomId(roomId) == 0 {
			st.emptySince = time.Now()
		}

		s.broadcast(ctx, roomId, conn, &Message{
			Type:    "user_left",
			Payload: PresencePayload{UserId: userId},
		})

		return nil
	})
	if errors.Is(err, ErrRoomNotFound) {
		// room row is gone, just clear the assignment
		_, err = s.connRepo.SetRoom(conn, "")
	}

	return err
}

type KickUserParams struct {
	Conn   *websocket.Conn
	RoomId string
	UserId string
}

// KickUser removes the target's membership and detaches their live
// connection, if any. The room's owner cannot be kicked.
func (s service) KickUser(ctx context.Context, params *KickUserParams) error {
	userId, roomId, err := s.connInfo(params.Conn, params.RoomId)
	if err != nil {
		return err
	}

	return s.withRoomState(ctx, roomId, func(st *roomState) error {
		if err := s.authorize(ctx, st, roomId, userId, domain.ActionKickUsers); err != nil {
			return err
		}
		if params.UserId == st.ownerId {
			return ErrPermissionDenied
		}

		if err := s.roomRepo.RemoveMembership(ctx, &repository.RemoveMembershipParams{
			RoomId: roomId,
			UserId: params.UserId,
		}); err != nil && !errors.Is(err, repository.ErrMembershipNotFound) {
			return fmt.Errorf("failed to remove membership: %w", err)
		}

		if targetConn, err := s.connRepo.GetConnByUserId(roomId, params.UserId); err == nil {
			if _, err := s.connRepo.SetRoom(targetConn, ""); err != nil {
				return fmt.Errorf("failed to clear target connection room: %w", err)
			}
			s.SendError(ctx, targetConn, "you have been kicked from the room")
		}

		s.broadcast(ctx, roomId, nil, &Message{
			Type:    "user_left",
			Payload: PresencePayload{UserId: params.UserId},
		})

		return nil
	})
}

package room

import (
	"github.com/gorilla/websocket"
)

// connInfo resolves the connection's identity and bound room. The binding is
// authoritative; a non-empty requestedRoomId that differs from it is rejected.
func (s service) connInfo(conn *websocket.Conn, requestedRoomId string) (userId string, roomId string, err error) {
	userId, err = s.connRepo.GetUserId(conn)
	if err != nil {
		return "", "", ErrNotAuthenticated
	}

	roomId, err = s.connRepo.GetRoomId(conn)
	if err != nil || roomId == "" {
		return "", "", ErrNotInRoom
	}

	if requestedRoomId != "" && requestedRoomId != roomId {
		return "", "", ErrNotInRoom
	}

	return userId, roomId, nil
}

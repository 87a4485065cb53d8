package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/repository/connection"
)

type entry struct {
	userId string
	roomId string
	// writeMu serializes frame writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex
}

type repo struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*entry
	rooms map[string]map[*websocket.Conn]struct{}
}

func NewRepo() *repo {
	return &repo{
		conns: make(map[*websocket.Conn]*entry),
		rooms: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (r *repo) Add(conn *websocket.Conn, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; ok {
		return connection.ErrAlreadyExists
	}

	r.conns[conn] = &entry{userId: userId}

	return nil
}

// Remove drops the connection from the registry and reports the room it was
// detached from, if any.
func (r *repo) Remove(conn *websocket.Conn) (userId string, roomId string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[conn]
	if !ok {
		return "", "", connection.ErrNotFound
	}

	roomId = e.roomId
	r.detachLocked(conn, e)
	delete(r.conns, conn)

	return e.userId, roomId, nil
}

func (r *repo) GetUserId(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return e.userId, nil
}

func (r *repo) GetRoomId(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return e.roomId, nil
}

// SetRoom assigns the connection to a room and reports the previous
// assignment. An empty roomId detaches the connection.
func (r *repo) SetRoom(conn *websocket.Conn, roomId string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	prev := e.roomId
	r.detachLocked(conn, e)

	if roomId != "" {
		e.roomId = roomId
		set, ok := r.rooms[roomId]
		if !ok {
			set = make(map[*websocket.Conn]struct{})
			r.rooms[roomId] = set
		}
		set[conn] = struct{}{}
	}

	return prev, nil
}

func (r *repo) GetConnsByRoomId(roomId string) []*websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.rooms[roomId]
	conns := make([]*websocket.Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}

	return conns
}

func (r *repo) GetConnByUserId(roomId, userId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for conn := range r.rooms[roomId] {
		if e, ok := r.conns[conn]; ok && e.userId == userId {
			return conn, nil
		}
	}

	return nil, connection.ErrNotFound
}

func (r *repo) CountByRoomId(roomId string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[roomId])
}

// Send writes a JSON message to the connection, serialized against other
// senders to the same connection.
func (r *repo) Send(conn *websocket.Conn, v any) error {
	r.mu.RLock()
	e, ok := r.conns[conn]
	r.mu.RUnlock()
	if !ok {
		return connection.ErrNotFound
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	return conn.WriteJSON(v)
}

func (r *repo) detachLocked(conn *websocket.Conn, e *entry) {
	if e.roomId == "" {
		return
	}

	if set, ok := r.rooms[e.roomId]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(r.rooms, e.roomId)
		}
	}
	e.roomId = ""
}

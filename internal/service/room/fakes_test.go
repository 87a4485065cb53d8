package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
	"github.com/syncstream/server/internal/repository/connection/inmemory"
	sessionRedis "github.com/syncstream/server/internal/repository/session/redis"
)

// fakeRoomRepo mirrors the persistent store semantics in memory so the
// service flows can be exercised without a database. Setting failWrites makes
// every subsequent write fail, for exercising persistence-failure paths.
type fakeRoomRepo struct {
	mu         sync.Mutex
	rooms      map[string]domain.Room
	members    map[string]map[string]domain.Role
	perms      map[string]domain.RoomPermissions
	queues     map[string][]domain.QueueItem
	failWrites bool
}

var errStoreDown = errors.New("store unavailable")

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:   make(map[string]domain.Room),
		members: make(map[string]map[string]domain.Role),
		perms:   make(map[string]domain.RoomPermissions),
		queues:  make(map[string][]domain.QueueItem),
	}
}

func (f *fakeRoomRepo) CreateRoom(_ context.Context, params *repository.CreateRoomParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rooms[params.Room.Id] = params.Room
	f.perms[params.Room.Id] = params.Permissions
	f.members[params.Room.Id] = map[string]domain.Role{
		params.OwnerMember.UserId: params.OwnerMember.Role,
	}

	return nil
}

func (f *fakeRoomRepo) GetRoom(_ context.Context, roomId string) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[roomId]
	if !ok {
		return domain.Room{}, repository.ErrRoomNotFound
	}

	return room, nil
}

func (f *fakeRoomRepo) UpdateRoomPlayback(_ context.Context, params *repository.UpdateRoomPlaybackParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWrites {
		return errStoreDown
	}

	room, ok := f.rooms[params.RoomId]
	if !ok {
		return repository.ErrRoomNotFound
	}

	if params.CurrentVideoId != nil {
		room.CurrentVideoId = params.CurrentVideoId
	}
	if params.CurrentTimestamp != nil {
		room.CurrentTimestamp = *params.CurrentTimestamp
	}
	if params.IsPlaying != nil {
		room.IsPlaying = *params.IsPlaying
	}
	f.rooms[params.RoomId] = room

	return nil
}

func (f *fakeRoomRepo) DeleteRoom(_ context.Context, roomId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rooms[roomId]; !ok {
		return repository.ErrRoomNotFound
	}

	delete(f.rooms, roomId)
	delete(f.perms, roomId)
	delete(f.members, roomId)
	delete(f.queues, roomId)

	return nil
}

func (f *fakeRoomRepo) ListQueue(_ context.Context, roomId string) ([]domain.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]domain.QueueItem, len(f.queues[roomId]))
	copy(items, f.queues[roomId])

	return items, nil
}

func (f *fakeRoomRepo) ReplaceQueue(_ context.Context, params *repository.ReplaceQueueParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWrites {
		return errStoreDown
	}

	items := make([]domain.QueueItem, len(params.Items))
	copy(items, params.Items)
	f.queues[params.RoomId] = items

	return nil
}

func (f *fakeRoomRepo) GetMembership(_ context.Context, roomId, userId string) (domain.RoomMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	role, ok := f.members[roomId][userId]
	if !ok {
		return domain.RoomMember{}, repository.ErrMembershipNotFound
	}

	return domain.RoomMember{RoomId: roomId, UserId: userId, Role: role}, nil
}

func (f *fakeRoomRepo) SetMembership(_ context.Context, params *repository.SetMembershipParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.members[params.RoomId] == nil {
		f.members[params.RoomId] = make(map[string]domain.Role)
	}
	f.members[params.RoomId][params.UserId] = params.Role

	return nil
}

func (f *fakeRoomRepo) RemoveMembership(_ context.Context, params *repository.RemoveMembershipParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.members[params.RoomId][params.UserId]; !ok {
		return repository.ErrMembershipNotFound
	}

	delete(f.members[params.RoomId], params.UserId)

	return nil
}

func (f *fakeRoomRepo) GetPermissions(_ context.Context, roomId string) (domain.RoomPermissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	perms, ok := f.perms[roomId]
	if !ok {
		return domain.RoomPermissions{}, repository.ErrPermissionsNotFound
	}

	return perms, nil
}

func (f *fakeRoomRepo) UpdatePermissions(_ context.Context, p *domain.RoomPermissions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.perms[p.RoomId] = *p

	return nil
}

func (f *fakeRoomRepo) setFailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failWrites = fail
}

func (f *fakeRoomRepo) dropPermissions(roomId string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.perms, roomId)
}

// recordingConnRepo keeps the live registry semantics but records sends
// instead of writing to real sockets.
type recordingConnRepo struct {
	iConnRepo

	mu   sync.Mutex
	sent map[*websocket.Conn][]Message
}

func newRecordingConnRepo() *recordingConnRepo {
	return &recordingConnRepo{
		iConnRepo: inmemory.NewRepo(),
		sent:      make(map[*websocket.Conn][]Message),
	}
}

func (r *recordingConnRepo) Send(conn *websocket.Conn, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent[conn] = append(r.sent[conn], *(v.(*Message)))

	return nil
}

func (r *recordingConnRepo) messages(conn *websocket.Conn) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := make([]Message, len(r.sent[conn]))
	copy(msgs, r.sent[conn])

	return msgs
}

func (r *recordingConnRepo) messageTypes(conn *websocket.Conn) []string {
	types := []string{}
	for _, msg := range r.messages(conn) {
		types = append(types, msg.Type)
	}

	return types
}

func (r *recordingConnRepo) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = make(map[*websocket.Conn][]Message)
}

func newTestService(t *testing.T) (*service, *fakeRoomRepo, *recordingConnRepo) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	roomRepo := newFakeRoomRepo()
	connRepo := newRecordingConnRepo()
	s := NewService(roomRepo, connRepo, sessionRedis.NewRepo(rc), &Config{
		QueueLimit:      25,
		StateRetention:  time.Minute,
		ConnectTokenTTL: 10 * time.Second,
	})

	return s, roomRepo, connRepo
}

package room

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
	"github.com/syncstream/server/internal/repository/session"
	"github.com/syncstream/server/pkg/randstr"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrQueueItemNotFound   = errors.New("queue item not found")
	ErrQueueLimitReached   = errors.New("queue limit reached")
	ErrNotInRoom           = errors.New("not in a room")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrInvalidConnectToken = errors.New("invalid connect token")
)

type iRoomRepo interface {
	CreateRoom(context.Context, *repository.CreateRoomParams) error
	GetRoom(ctx context.Context, roomId string) (domain.Room, error)
	UpdateRoomPlayback(context.Context, *repository.UpdateRoomPlaybackParams) error
	DeleteRoom(ctx context.Context, roomId string) error
	ListQueue(ctx context.Context, roomId string) ([]domain.QueueItem, error)
	ReplaceQueue(context.Context, *repository.ReplaceQueueParams) error
	GetMembership(ctx context.Context, roomId, userId string) (domain.RoomMember, error)
	SetMembership(context.Context, *repository.SetMembershipParams) error
	RemoveMembership(context.Context, *repository.RemoveMembershipParams) error
	GetPermissions(ctx context.Context, roomId string) (domain.RoomPermissions, error)
	UpdatePermissions(context.Context, *domain.RoomPermissions) error
}

type iConnRepo interface {
	Add(conn *websocket.Conn, userId string) error
	Remove(conn *websocket.Conn) (userId string, roomId string, err error)
	GetUserId(conn *websocket.Conn) (string, error)
	GetRoomId(conn *websocket.Conn) (string, error)
	SetRoom(conn *websocket.Conn, roomId string) (string, error)
	GetConnsByRoomId(roomId string) []*websocket.Conn
	GetConnByUserId(roomId, userId string) (*websocket.Conn, error)
	CountByRoomId(roomId string) int
	Send(conn *websocket.Conn, v any) error
}

type iSessionRepo interface {
	SetConnectToken(context.Context, *session.SetConnectTokenParams) error
	PopConnectToken(ctx context.Context, token string) (string, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	QueueLimit      int
	StateRetention  time.Duration
	ConnectTokenTTL time.Duration
}

type service struct {
	roomRepo    iRoomRepo
	connRepo    iConnRepo
	sessionRepo iSessionRepo
	generator   iGenerator
	states      *stateRegistry

	queueLimit      int
	stateRetention  time.Duration
	connectTokenTTL time.Duration
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, sessionRepo iSessionRepo, cfg *Config) *service {
	s := service{
		roomRepo:        roomRepo,
		connRepo:        connRepo,
		sessionRepo:     sessionRepo,
		states:          newStateRegistry(),
		queueLimit:      cfg.QueueLimit,
		stateRetention:  cfg.StateRetention,
		connectTokenTTL: cfg.ConnectTokenTTL,
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}

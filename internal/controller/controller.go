package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/service/room"
	"github.com/syncstream/server/pkg/validator"
)

type iRoomService interface {
	// session
	CreateConnectToken(ctx context.Context, userId string) (string, error)
	Connect(context.Context, *room.ConnectParams) (string, error)
	Disconnect(ctx context.Context, conn *websocket.Conn)
	SendError(ctx context.Context, conn *websocket.Conn, message string)
	// membership
	JoinRoom(context.Context, *room.JoinRoomParams) error
	LeaveRoom(context.Context, *room.LeaveRoomParams) error
	KickUser(context.Context, *room.KickUserParams) error
	AddMember(context.Context, *room.AddMemberParams) error
	// playback
	Play(context.Context, *room.PlayParams) error
	Pause(context.Context, *room.PauseParams) error
	Seek(context.Context, *room.SeekParams) error
	ChangeVideo(context.Context, *room.ChangeVideoParams) error
	// queue
	AddToQueue(context.Context, *room.AddToQueueParams) error
	RemoveFromQueue(context.Context, *room.RemoveFromQueueParams) error
	ReplaceQueue(context.Context, *room.ReplaceQueueParams) error
	// room lifecycle
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoom(ctx context.Context, roomId string) (room.GetRoomResponse, error)
	DeleteRoom(context.Context, *room.DeleteRoomParams) error
	UpdatePermissions(context.Context, *room.UpdatePermissionsParams) (domain.RoomPermissions, error)
}

type iIdentityService interface {
	Verify(token string) (string, error)
}

type controller struct {
	roomService iRoomService
	identity    iIdentityService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewController(roomService iRoomService, identity iIdentityService, logger *slog.Logger) *controller {
	return &controller{
		roomService: roomService,
		identity:    identity,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.New(),
		logger:   logger,
	}
}

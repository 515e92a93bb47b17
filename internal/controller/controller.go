package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	GetRoom(context.Context, string) (domain.RoomSnapshot, error)
	GetStats(context.Context) (map[string]int64, error)
	ConnectMember(context.Context, *room.ConnectMemberParams) (*room.Session, error)
	DisconnectMember(context.Context, *room.DisconnectMemberParams) (room.DisconnectMemberResponse, error)
	SendChat(context.Context, *room.SendChatParams) error
	UpdateStatus(context.Context, *room.UpdateStatusParams) (room.UpdateStatusResponse, error)
	Pause(context.Context, *room.PauseParams) (room.UpdateStatusResponse, error)
	Resume(context.Context, *room.ResumeParams) (room.UpdateStatusResponse, error)
}

type Config struct {
	CORSAllowedOrigins []string
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

type controller struct {
	roomService        iRoomService
	upgrader           websocket.Upgrader
	validate           *validator.Validator
	wsmux              *wsrouter.WSRouter
	logger             *slog.Logger
	corsAllowedOrigins []string
	metricsHandler     http.Handler
}

func NewController(roomService iRoomService, logger *slog.Logger, cfg *Config) *controller {
	c := &controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:           validator.NewValidator(),
		logger:             logger,
		corsAllowedOrigins: cfg.CORSAllowedOrigins,
		metricsHandler:     cfg.MetricsHandler,
	}
	c.wsmux = c.getWSRouter()

	return c
}

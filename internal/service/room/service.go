package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/metrics"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/pkg/randstr"
)

var (
	ErrRoomNotFound   = room.ErrRoomNotFound
	ErrMemberNotFound = domain.ErrMemberNotFound
	ErrIDCollision    = errors.New("room id collision")
)

const (
	defaultRoomIDLength    = 6
	defaultDeliveryBuffer  = 2
	defaultDeliveryTimeout = 5 * time.Second
)

type iRoomRepo interface {
	Insert(*domain.Room) error
	WithRoom(roomID string, fn func(*domain.Room) error) error
	ViewRoom(roomID string, fn func(*domain.Room) error) error
	RemoveIfEmpty(roomID string) (bool, error)
	Count() int
}

type iStatsRepo interface {
	Incr(ctx context.Context, counter string) error
	GetAll(ctx context.Context) (map[string]int64, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	RoomIDLength    int
	DeliveryBuffer  int
	DeliveryTimeout time.Duration
	// Generator produces room ids; nil means random alphanumeric.
	Generator iGenerator
}

type service struct {
	roomRepo        iRoomRepo
	statsRepo       iStatsRepo
	generator       iGenerator
	metrics         *metrics.Metrics
	logger          *slog.Logger
	roomIDLength    int
	deliveryBuffer  int
	deliveryTimeout time.Duration
}

func NewService(roomRepo iRoomRepo, statsRepo iStatsRepo, m *metrics.Metrics, logger *slog.Logger, cfg *Config) *service {
	s := service{
		roomRepo:        roomRepo,
		statsRepo:       statsRepo,
		generator:       cfg.Generator,
		metrics:         m,
		logger:          logger,
		roomIDLength:    cfg.RoomIDLength,
		deliveryBuffer:  cfg.DeliveryBuffer,
		deliveryTimeout: cfg.DeliveryTimeout,
	}

	if s.generator == nil {
		s.generator = randstr.New(randstr.Alphanumeric)
	}
	if s.roomIDLength <= 0 {
		s.roomIDLength = defaultRoomIDLength
	}
	if s.deliveryBuffer <= 0 {
		s.deliveryBuffer = defaultDeliveryBuffer
	}
	if s.deliveryTimeout <= 0 {
		s.deliveryTimeout = defaultDeliveryTimeout
	}

	return &s
}

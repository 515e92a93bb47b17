package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/internal/repository/stats"
)

// CreateRoom makes a single attempt with a fresh id and fails with
// ErrIDCollision if that id is taken.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	roomID := s.generator.GenerateRandomString(s.roomIDLength)
	rm := domain.NewRoom(roomID, domain.Player{
		ID:   params.PlayerID,
		Name: params.PlayerName,
	}, params.DriftThresholdSecs)
	snapshot := rm.Snapshot()

	if err := s.roomRepo.Insert(rm); err != nil {
		if errors.Is(err, room.ErrRoomAlreadyExists) {
			s.logger.WarnContext(ctx, "room id collision", "room_id", roomID)
			return CreateRoomResponse{}, fmt.Errorf("failed to create room %s: %w", roomID, ErrIDCollision)
		}
		return CreateRoomResponse{}, fmt.Errorf("failed to insert room: %w", err)
	}

	s.logger.InfoContext(ctx, "room created", "room_id", roomID, "creator_id", params.PlayerID)
	s.metrics.RoomsCreated.Inc()
	s.incr(ctx, stats.RoomsCreated)

	return CreateRoomResponse{
		RoomID: roomID,
		Room:   snapshot,
	}, nil
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	var (
		joined   domain.Player
		snapshot domain.RoomSnapshot
		audience domain.Audience
	)
	if err := s.roomRepo.WithRoom(params.RoomID, func(rm *domain.Room) error {
		rm.AddMember(domain.Player{
			ID:   params.PlayerID,
			Name: params.PlayerName,
		})
		member, _ := rm.Find(params.PlayerID)
		joined = member.Player
		snapshot = rm.Snapshot()
		audience = rm.Audience()
		return nil
	}); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to join room: %w", err)
	}

	s.logger.InfoContext(ctx, "player joined", "room_id", params.RoomID, "player_id", joined.ID)
	s.incr(ctx, stats.PlayersJoined)

	s.broadcast(ctx, audience,
		domain.PlayerJoined{Player: joined, Room: snapshot},
		domain.Notice(joined, joined.Name+" Joined", domain.ColorGreen),
	)

	return JoinRoomResponse{
		JoinedPlayer: joined,
		Room:         snapshot,
	}, nil
}

func (s service) GetRoom(_ context.Context, roomID string) (domain.RoomSnapshot, error) {
	var snapshot domain.RoomSnapshot
	if err := s.roomRepo.ViewRoom(roomID, func(rm *domain.Room) error {
		snapshot = rm.Snapshot()
		return nil
	}); err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("failed to get room: %w", err)
	}

	return snapshot, nil
}

func (s service) GetStats(ctx context.Context) (map[string]int64, error) {
	counters, err := s.statsRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	counters["rooms_active"] = int64(s.roomRepo.Count())

	return counters, nil
}

package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/stats"
)

// DisconnectMember removes a player that asked to leave. Its live connection,
// if any, is told to stop through its outbox.
func (s service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) (DisconnectMemberResponse, error) {
	var removed domain.Membership
	if err := s.roomRepo.WithRoom(params.RoomID, func(rm *domain.Room) error {
		member, err := rm.RemoveMember(params.PlayerID)
		if err != nil {
			return err
		}
		if outbox := member.Delivery(); outbox != nil {
			outbox.Close()
		}
		removed = member
		return nil
	}); err != nil {
		return DisconnectMemberResponse{}, fmt.Errorf("failed to disconnect member: %w", err)
	}

	s.logger.InfoContext(ctx, "player removed", "room_id", params.RoomID, "player_id", params.PlayerID)

	isRoomDeleted, err := s.roomRepo.RemoveIfEmpty(params.RoomID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to prune room", "room_id", params.RoomID, "error", err)
	}
	if isRoomDeleted {
		s.roomRemoved(ctx, params.RoomID)
		return DisconnectMemberResponse{
			RemovedPlayer: removed.Player,
			IsRoomDeleted: true,
		}, nil
	}

	var (
		snapshot domain.RoomSnapshot
		audience domain.Audience
	)
	if err := s.roomRepo.ViewRoom(params.RoomID, func(rm *domain.Room) error {
		snapshot = rm.Snapshot()
		audience = rm.Audience()
		return nil
	}); err != nil {
		s.logger.InfoContext(ctx, "room gone before player removed broadcast", "room_id", params.RoomID, "error", err)
		return DisconnectMemberResponse{
			RemovedPlayer: removed.Player,
			IsRoomDeleted: errors.Is(err, ErrRoomNotFound),
		}, nil
	}

	s.broadcast(ctx, audience,
		domain.PlayerRemoved{Player: removed.Player, Room: snapshot},
		domain.Notice(removed.Player, removed.Player.Name+" Removed", domain.ColorRed),
	)

	return DisconnectMemberResponse{
		RemovedPlayer: removed.Player,
	}, nil
}

func (s service) SendChat(ctx context.Context, params *SendChatParams) error {
	var (
		sender   domain.Player
		audience domain.Audience
	)
	if err := s.roomRepo.ViewRoom(params.RoomID, func(rm *domain.Room) error {
		member, ok := rm.Find(params.PlayerID)
		if !ok {
			return fmt.Errorf("player %q is not in room: %w", params.PlayerID, ErrMemberNotFound)
		}
		sender = member.Player
		audience = rm.Audience()
		return nil
	}); err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	s.incr(ctx, stats.ChatMessages)
	s.broadcast(ctx, audience, domain.ChatMessage{
		Player:  sender,
		Message: params.Message,
	})

	return nil
}

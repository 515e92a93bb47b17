package room

import (
	"context"
	"fmt"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/stats"
)

// UpdateStatus records a playback report and broadcasts it only when the
// room's ready members disagree.
func (s service) UpdateStatus(ctx context.Context, params *UpdateStatusParams) (UpdateStatusResponse, error) {
	return s.reportStatus(ctx, params.RoomID, params.PlayerID, domain.Ready{
		Playing:      params.Playing,
		PositionSecs: params.PositionSecs,
	}, false)
}

func (s service) Pause(ctx context.Context, params *PauseParams) (UpdateStatusResponse, error) {
	return s.reportStatus(ctx, params.RoomID, params.PlayerID, domain.Ready{
		Playing:      false,
		PositionSecs: params.PositionSecs,
	}, true)
}

func (s service) Resume(ctx context.Context, params *ResumeParams) (UpdateStatusResponse, error) {
	return s.reportStatus(ctx, params.RoomID, params.PlayerID, domain.Ready{
		Playing:      true,
		PositionSecs: params.PositionSecs,
	}, true)
}

func (s service) reportStatus(ctx context.Context, roomID, playerID string, state domain.Ready, force bool) (UpdateStatusResponse, error) {
	var (
		hasDrift bool
		audience domain.Audience
	)
	if err := s.roomRepo.WithRoom(roomID, func(rm *domain.Room) error {
		if err := rm.SetState(playerID, state); err != nil {
			return err
		}
		hasDrift = rm.HasDrift()
		audience = rm.Audience()
		return nil
	}); err != nil {
		return UpdateStatusResponse{}, fmt.Errorf("failed to update status: %w", err)
	}

	if !force && !hasDrift {
		s.metrics.StatusUpdates.WithLabelValues("suppressed").Inc()
		s.incr(ctx, stats.StatusSuppressed)
		return UpdateStatusResponse{State: state}, nil
	}

	s.metrics.StatusUpdates.WithLabelValues("broadcast").Inc()
	s.incr(ctx, stats.StatusBroadcasts)
	s.broadcast(ctx, audience, domain.StatusUpdate{
		Playing:      state.Playing,
		PositionSecs: state.PositionSecs,
	})

	return UpdateStatusResponse{
		State:       state,
		Broadcasted: true,
	}, nil
}

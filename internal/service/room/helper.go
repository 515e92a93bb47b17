package room

import (
	"context"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/stats"
)

// broadcast fans events out after the room has been released. Delivery is
// detached from the caller's cancellation and bounded by the delivery timeout.
func (s service) broadcast(ctx context.Context, audience domain.Audience, events ...domain.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
	defer cancel()

	for _, event := range events {
		failed := audience.Broadcast(ctx, s.logger, event)
		s.metrics.EventsBroadcast.WithLabelValues(event.EventType()).Inc()
		if failed > 0 {
			s.metrics.DeliveriesFailed.Add(float64(failed))
		}
	}
}

func (s service) incr(ctx context.Context, counter string) {
	if err := s.statsRepo.Incr(ctx, counter); err != nil {
		s.logger.WarnContext(ctx, "failed to increment counter", "counter", counter, "error", err)
	}
}

func (s service) roomRemoved(ctx context.Context, roomID string) {
	s.logger.InfoContext(ctx, "room removed", "room_id", roomID)
	s.metrics.RoomsRemoved.Inc()
	s.incr(ctx, stats.RoomsRemoved)
}

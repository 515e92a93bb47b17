package domain

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/sourcegraph/conc"
)

type Recipient struct {
	PlayerID string
	Outbox   *Outbox
}

// Audience is a point-in-time copy of a room's connected members.
type Audience []Recipient

// Broadcast delivers event to every recipient concurrently. A failed delivery
// is logged and counted, and never affects the other recipients.
func (a Audience) Broadcast(ctx context.Context, logger *slog.Logger, event Event) int {
	var (
		wg     conc.WaitGroup
		failed atomic.Int64
	)
	for _, recipient := range a {
		wg.Go(func() {
			if err := recipient.Outbox.Send(ctx, event); err != nil {
				failed.Add(1)
				logger.WarnContext(ctx, "failed to deliver event",
					"player_id", recipient.PlayerID,
					"event", event.EventType(),
					"error", err,
				)
			}
		})
	}
	wg.Wait()

	return int(failed.Load())
}

// BroadcastAll sends events in order, each one fanned out before the next starts.
func (a Audience) BroadcastAll(ctx context.Context, logger *slog.Logger, events ...Event) int {
	failed := 0
	for _, event := range events {
		failed += a.Broadcast(ctx, logger, event)
	}

	return failed
}

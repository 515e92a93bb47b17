package room

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/stats"
)

// Session is one live connection of a room member. The events it yields end
// when the member is removed, replaced by a newer connection or closed.
type Session struct {
	ID     uuid.UUID
	RoomID string
	Player domain.Player

	outbox    *domain.Outbox
	announced chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
	teardown  func()
}

func (s *Session) Events() <-chan domain.Event {
	return s.outbox.Events()
}

// Done is closed once the session must stop reading events.
func (s *Session) Done() <-chan struct{} {
	return s.outbox.Done()
}

// Close starts the teardown. It is safe to call any number of times and
// returns without waiting; use Closed to wait for the teardown to finish.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.outbox.Close()
		go s.teardown()
	})
}

func (s *Session) Closed() <-chan struct{} {
	return s.closed
}

// ConnectMember attaches a live delivery to a joined member. A previous
// connection of the same member is stopped. The session is closed
// automatically once ctx is done.
func (s service) ConnectMember(ctx context.Context, params *ConnectMemberParams) (*Session, error) {
	outbox := domain.NewOutbox(s.deliveryBuffer)

	var (
		player   domain.Player
		replaced *domain.Outbox
		snapshot domain.RoomSnapshot
		audience domain.Audience
	)
	if err := s.roomRepo.WithRoom(params.RoomID, func(rm *domain.Room) error {
		member, ok := rm.Find(params.PlayerID)
		if !ok {
			return fmt.Errorf("player %q has not joined: %w", params.PlayerID, ErrMemberNotFound)
		}
		if err := rm.AttachDelivery(params.PlayerID, outbox); err != nil {
			return err
		}

		player = member.Player
		replaced = member.Delivery()
		snapshot = rm.Snapshot()
		audience = rm.Audience()
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to connect member: %w", err)
	}

	if replaced != nil {
		s.logger.InfoContext(ctx, "replacing previous connection", "room_id", params.RoomID, "player_id", params.PlayerID)
		replaced.Close()
	}

	sess := &Session{
		ID:        uuid.New(),
		RoomID:    params.RoomID,
		Player:    player,
		outbox:    outbox,
		announced: make(chan struct{}),
		closed:    make(chan struct{}),
	}
	teardownCtx := context.WithoutCancel(ctx)
	sess.teardown = func() {
		s.teardownSession(teardownCtx, sess)
	}
	context.AfterFunc(ctx, sess.Close)

	s.logger.InfoContext(ctx, "player connected",
		"room_id", params.RoomID,
		"player_id", params.PlayerID,
		"session_id", sess.ID.String(),
	)
	s.metrics.SessionsActive.Inc()
	s.incr(ctx, stats.PlayersConnected)

	// The new member is part of the audience, so the announcement must not
	// wait on the caller starting to read its events.
	go func() {
		defer close(sess.announced)
		s.broadcast(teardownCtx, audience,
			domain.PlayerConnected{Player: player, Room: snapshot},
			domain.Notice(player, player.Name+" Connected", domain.ColorGreen),
		)
	}()

	return sess, nil
}

func (s service) teardownSession(ctx context.Context, sess *Session) {
	defer close(sess.closed)
	defer s.metrics.SessionsActive.Dec()

	logger := s.logger.With(
		"room_id", sess.RoomID,
		"player_id", sess.Player.ID,
		"session_id", sess.ID.String(),
	)

	var stale bool
	err := s.roomRepo.WithRoom(sess.RoomID, func(rm *domain.Room) error {
		member, ok := rm.Find(sess.Player.ID)
		if !ok {
			return fmt.Errorf("player %q already left: %w", sess.Player.ID, ErrMemberNotFound)
		}
		// A newer connection owns the membership now.
		if member.Delivery() != sess.outbox {
			stale = true
			return nil
		}
		return rm.DetachDelivery(sess.Player.ID)
	})
	switch {
	case errors.Is(err, ErrRoomNotFound):
		logger.InfoContext(ctx, "room already removed")
		return
	case err != nil:
		// Pruning and the leave broadcast still run for a removed member.
		logger.InfoContext(ctx, "failed to detach player", "error", err)
	case stale:
		logger.InfoContext(ctx, "stale session closed")
		return
	}

	isRoomDeleted, err := s.roomRepo.RemoveIfEmpty(sess.RoomID)
	if err != nil {
		logger.WarnContext(ctx, "failed to prune room", "error", err)
		return
	}
	if isRoomDeleted {
		s.roomRemoved(ctx, sess.RoomID)
		return
	}

	<-sess.announced

	var (
		snapshot domain.RoomSnapshot
		audience domain.Audience
	)
	if err := s.roomRepo.ViewRoom(sess.RoomID, func(rm *domain.Room) error {
		snapshot = rm.Snapshot()
		audience = rm.Audience()
		return nil
	}); err != nil {
		logger.InfoContext(ctx, "room gone before player left broadcast", "error", err)
		return
	}

	logger.InfoContext(ctx, "player left")
	s.broadcast(ctx, audience,
		domain.PlayerLeft{Player: sess.Player, Room: snapshot},
		domain.Notice(sess.Player, sess.Player.Name+" Left", domain.ColorRed),
	)
}

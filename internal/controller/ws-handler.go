package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/rest"
	"github.com/sourcegraph/conc"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096

	closeCodeRemoved = 4001
)

var ErrValidationError = errors.New("validation error")

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// wsWriter serializes writes; gorilla allows one concurrent writer per conn.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w *wsWriter) writeControl(messageType int, data []byte) error {
	return w.conn.WriteControl(messageType, data, time.Now().Add(writeWait))
}

type wsWriterCtxKey struct{}

func (c controller) getWriterFromCtx(ctx context.Context) *wsWriter {
	writer, _ := ctx.Value(wsWriterCtxKey{}).(*wsWriter)
	return writer
}

func (c controller) connect(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	playerId := r.URL.Query().Get("player-id")
	if playerId == "" {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "player-id is required"})
		return
	}

	ctx := ctxlogger.AppendCtx(r.Context(),
		slog.String("room_id", roomId),
		slog.String("player_id", playerId),
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess, err := c.roomService.ConnectMember(ctx, &room.ConnectMemberParams{
		PlayerID: playerId,
		RoomID:   roomId,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	defer sess.Close()

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx = ctxlogger.AppendCtx(ctx, slog.String("session_id", sess.ID.String()))
	writer := &wsWriter{conn: conn}
	ctx = context.WithValue(ctx, wsWriterCtxKey{}, writer)
	ctx = context.WithValue(ctx, roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, playerIdCtxKey, playerId)

	var wg conc.WaitGroup
	wg.Go(func() {
		defer conn.Close()
		c.pumpEvents(ctx, writer, sess)
	})

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "connection closed", "error", err)
	}
	cancel()
	wg.Wait()
}

// pumpEvents relays session events to the connection until the session is
// stopped, the connection fails or ctx is done.
func (c controller) pumpEvents(ctx context.Context, writer *wsWriter, sess *room.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event := <-sess.Events():
			if err := writer.writeJSON(&Output{
				Type:    event.EventType(),
				Payload: event,
			}); err != nil {
				c.logger.InfoContext(ctx, "failed to write event", "error", err)
				return
			}
		case <-sess.Done():
			if err := writer.writeControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(closeCodeRemoved, "removed"),
			); err != nil {
				c.logger.InfoContext(ctx, "failed to write close message", "error", err)
			}
			return
		case <-ticker.C:
			if err := writer.writeControl(websocket.PingMessage, nil); err != nil {
				c.logger.InfoContext(ctx, "failed to write ping", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c controller) handleWSError(ctx context.Context, _ *websocket.Conn, err error) {
	c.logger.InfoContext(ctx, "websocket message failed", "error", err)

	writer := c.getWriterFromCtx(ctx)
	if writer == nil {
		return
	}

	if err := writer.writeJSON(&Output{
		Type: "ERROR",
		Payload: map[string]any{
			"message_type": c.getMessageType(ctx),
			"error":        err.Error(),
		},
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to write error", "error", err)
	}
}

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, conn *websocket.Conn, _ EmptyInput) error {
	return conn.SetReadDeadline(time.Now().Add(pongWait))
}

type ChatInput struct {
	Message string `json:"message" validate:"required,max=500"`
}

func (c controller) handleChat(ctx context.Context, _ *websocket.Conn, input ChatInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %v", ErrValidationError, validationErrors)
	}

	if err := c.roomService.SendChat(ctx, &room.SendChatParams{
		PlayerID: c.getPlayerIdFromCtx(ctx),
		RoomID:   c.getRoomIdFromCtx(ctx),
		Message:  input.Message,
	}); err != nil {
		return fmt.Errorf("failed to send chat: %w", err)
	}

	return nil
}

type UpdateStatusInput struct {
	IsPlaying    bool   `json:"is_playing"`
	PositionSecs uint64 `json:"position_secs"`
}

func (c controller) handleUpdateStatus(ctx context.Context, _ *websocket.Conn, input UpdateStatusInput) error {
	if _, err := c.roomService.UpdateStatus(ctx, &room.UpdateStatusParams{
		PlayerID:     c.getPlayerIdFromCtx(ctx),
		RoomID:       c.getRoomIdFromCtx(ctx),
		Playing:      input.IsPlaying,
		PositionSecs: input.PositionSecs,
	}); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	return nil
}

type PositionInput struct {
	PositionSecs uint64 `json:"position_secs"`
}

func (c controller) handlePause(ctx context.Context, _ *websocket.Conn, input PositionInput) error {
	if _, err := c.roomService.Pause(ctx, &room.PauseParams{
		PlayerID:     c.getPlayerIdFromCtx(ctx),
		RoomID:       c.getRoomIdFromCtx(ctx),
		PositionSecs: input.PositionSecs,
	}); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	return nil
}

func (c controller) handleResume(ctx context.Context, _ *websocket.Conn, input PositionInput) error {
	if _, err := c.roomService.Resume(ctx, &room.ResumeParams{
		PlayerID:     c.getPlayerIdFromCtx(ctx),
		RoomID:       c.getRoomIdFromCtx(ctx),
		PositionSecs: input.PositionSecs,
	}); err != nil {
		return fmt.Errorf("failed to resume: %w", err)
	}

	return nil
}

func (c controller) handleDisconnect(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	if _, err := c.roomService.DisconnectMember(ctx, &room.DisconnectMemberParams{
		PlayerID: c.getPlayerIdFromCtx(ctx),
		RoomID:   c.getRoomIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	return nil
}

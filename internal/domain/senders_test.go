package domain

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestBroadcastSkipsClosedOutbox(t *testing.T) {
	const n = 5
	audience := make(Audience, 0, n)
	for i := 0; i < n; i++ {
		audience = append(audience, Recipient{
			PlayerID: string(rune('a' + i)),
			Outbox:   NewOutbox(2),
		})
	}
	audience[2].Outbox.Close()

	failed := audience.Broadcast(context.Background(), discardLogger, StatusUpdate{Playing: true, PositionSecs: 9})
	assert.Equal(t, 1, failed)

	for i, recipient := range audience {
		if i == 2 {
			continue
		}
		select {
		case event := <-recipient.Outbox.Events():
			assert.Equal(t, StatusUpdate{Playing: true, PositionSecs: 9}, event)
		default:
			t.Fatalf("recipient %s did not receive the event", recipient.PlayerID)
		}
	}
}

func TestBroadcastStalledRecipientDoesNotBlockOthers(t *testing.T) {
	stalled := NewOutbox(0)
	healthy := NewOutbox(2)
	audience := Audience{
		{PlayerID: "stalled", Outbox: stalled},
		{PlayerID: "healthy", Outbox: healthy},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	failed := audience.Broadcast(ctx, discardLogger, StatusUpdate{})
	assert.Equal(t, 1, failed)
	assert.Len(t, healthy.Events(), 1)
}

func TestBroadcastAllKeepsOrder(t *testing.T) {
	outbox := NewOutbox(2)
	audience := Audience{{PlayerID: "p1", Outbox: outbox}}
	player := Player{ID: "p1", Name: "alice"}

	failed := audience.BroadcastAll(context.Background(), discardLogger,
		PlayerJoined{Player: player},
		Notice(player, "alice Joined", ColorGreen),
	)
	require.Zero(t, failed)

	first := <-outbox.Events()
	second := <-outbox.Events()
	assert.Equal(t, EventPlayerJoined, first.EventType())
	require.IsType(t, ChatMessage{}, second)
	assert.Equal(t, ColorGreen, *second.(ChatMessage).Color)
}

func TestOutboxSendAfterClose(t *testing.T) {
	outbox := NewOutbox(2)
	outbox.Close()
	outbox.Close()

	err := outbox.Send(context.Background(), StatusUpdate{})
	assert.ErrorIs(t, err, ErrOutboxClosed)
}

func TestReadinessStateJSON(t *testing.T) {
	b, err := json.Marshal(MemberSnapshot{
		Player: Player{ID: "p1", Name: "alice"},
		State:  Ready{Playing: true, PositionSecs: 3},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"player": {"id": "p1", "name": "alice"},
		"is_connected": false,
		"state": {"type": "ready", "playing": true, "position_secs": 3}
	}`, string(b))

	b, err = json.Marshal(MemberSnapshot{State: NotReady{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"player": {"id": "", "name": ""}, "is_connected": false, "state": {"type": "not_ready"}}`, string(b))
}

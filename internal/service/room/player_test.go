package room

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(t *testing.T, svc *service, roomID string, player domain.Player, playing bool, pos uint64) UpdateStatusResponse {
	t.Helper()

	resp, err := svc.UpdateStatus(context.Background(), &UpdateStatusParams{
		PlayerID:     player.ID,
		RoomID:       roomID,
		Playing:      playing,
		PositionSecs: pos,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Ready{Playing: playing, PositionSecs: pos}, resp.State)

	return resp
}

func TestUpdateStatusWithinThreshold(t *testing.T) {
	svc := newTestService(t, nil)
	roomID, sessions := setupRoom(t, svc, 5, alice, bob)

	assert.False(t, report(t, svc, roomID, alice, true, 10).Broadcasted, "a single ready member cannot drift")
	assert.False(t, report(t, svc, roomID, bob, true, 12).Broadcasted)
	assertNoEvent(t, sessions[0])
	assertNoEvent(t, sessions[1])

	assert.True(t, report(t, svc, roomID, bob, true, 20).Broadcasted)
	for _, sess := range sessions {
		assert.Equal(t, domain.StatusUpdate{Playing: true, PositionSecs: 20}, nextEvent(t, sess))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(svc.metrics.StatusUpdates.WithLabelValues("suppressed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.StatusUpdates.WithLabelValues("broadcast")))
}

func TestUpdateStatusPlayingMismatch(t *testing.T) {
	svc := newTestService(t, nil)
	roomID, sessions := setupRoom(t, svc, 5, alice, bob, carol)

	report(t, svc, roomID, alice, true, 10)
	resp := report(t, svc, roomID, bob, false, 10)
	assert.True(t, resp.Broadcasted)
	drain(t, 1, sessions...)

	resp = report(t, svc, roomID, carol, true, 10)
	assert.True(t, resp.Broadcasted, "differing playing flags always count as drift")
	for _, sess := range sessions {
		assert.Equal(t, domain.StatusUpdate{Playing: true, PositionSecs: 10}, nextEvent(t, sess))
	}
}

func TestPauseResumeAlwaysBroadcast(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	roomID, sessions := setupRoom(t, svc, 5, alice, bob)

	for i := 0; i < 2; i++ {
		resp, err := svc.Pause(ctx, &PauseParams{PlayerID: alice.ID, RoomID: roomID, PositionSecs: 42})
		require.NoError(t, err)
		assert.True(t, resp.Broadcasted)
		assert.Equal(t, domain.Ready{Playing: false, PositionSecs: 42}, resp.State)
		for _, sess := range sessions {
			assert.Equal(t, domain.StatusUpdate{Playing: false, PositionSecs: 42}, nextEvent(t, sess))
		}
	}

	resp, err := svc.Resume(ctx, &ResumeParams{PlayerID: bob.ID, RoomID: roomID, PositionSecs: 42})
	require.NoError(t, err)
	assert.True(t, resp.Broadcasted)
	for _, sess := range sessions {
		assert.Equal(t, domain.StatusUpdate{Playing: true, PositionSecs: 42}, nextEvent(t, sess))
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	roomID, _ := setupRoom(t, svc, 5, alice)

	_, err := svc.UpdateStatus(ctx, &UpdateStatusParams{PlayerID: alice.ID, RoomID: "nope00"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.UpdateStatus(ctx, &UpdateStatusParams{PlayerID: bob.ID, RoomID: roomID})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = svc.Pause(ctx, &PauseParams{PlayerID: bob.ID, RoomID: roomID})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestSyncScenario(t *testing.T) {
	svc := newTestService(t, nil)
	roomID, sessions := setupRoom(t, svc, 3, alice, bob)

	assert.False(t, report(t, svc, roomID, alice, true, 0).Broadcasted)
	assert.False(t, report(t, svc, roomID, bob, true, 0).Broadcasted)
	assert.False(t, report(t, svc, roomID, alice, true, 3).Broadcasted, "a difference equal to the threshold is not drift")
	assertNoEvent(t, sessions[0])

	assert.True(t, report(t, svc, roomID, alice, true, 4).Broadcasted)
	for _, sess := range sessions {
		assert.Equal(t, domain.StatusUpdate{Playing: true, PositionSecs: 4}, nextEvent(t, sess))
	}

	assert.True(t, report(t, svc, roomID, bob, false, 4).Broadcasted)
	drain(t, 1, sessions...)
	assert.False(t, report(t, svc, roomID, bob, true, 4).Broadcasted)
	assertNoEvent(t, sessions[1])
}

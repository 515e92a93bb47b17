package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrAndGetAll(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer rc.Close()

	repo := NewRepo(rc)
	ctx := context.Background()

	counters, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, counters)

	require.NoError(t, repo.Incr(ctx, stats.RoomsCreated))
	require.NoError(t, repo.Incr(ctx, stats.RoomsCreated))
	require.NoError(t, repo.Incr(ctx, stats.ChatMessages))

	counters, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		stats.RoomsCreated: 2,
		stats.ChatMessages: 1,
	}, counters)

	s.HSet(statsKey, "broken", "x")
	_, err = repo.GetAll(ctx)
	assert.Error(t, err)
}

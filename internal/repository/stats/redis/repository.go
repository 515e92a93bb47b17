package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const statsKey = "watchparty:stats"

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r repo) Incr(ctx context.Context, counter string) error {
	return r.rc.HIncrBy(ctx, statsKey, counter, 1).Err()
}

func (r repo) GetAll(ctx context.Context) (map[string]int64, error) {
	res, err := r.rc.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, err
	}

	counters := make(map[string]int64, len(res))
	for counter, raw := range res {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse counter %s: %w", counter, err)
		}
		counters[counter] = value
	}

	return counters, nil
}

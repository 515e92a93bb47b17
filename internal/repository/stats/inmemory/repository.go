package inmemory

import (
	"context"
	"maps"
	"sync"
)

type repo struct {
	counters map[string]int64
	mu       sync.Mutex
}

func NewRepo() *repo {
	return &repo{counters: make(map[string]int64)}
}

func (r *repo) Incr(_ context.Context, counter string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[counter]++
	return nil
}

func (r *repo) GetAll(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return maps.Clone(r.counters), nil
}

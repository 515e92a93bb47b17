package inmemory

import (
	"hash/maphash"
	"log/slog"
	"sync"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/room"
)

const shardsCount = 16

// entry guards one room. removed is set under mu when the room leaves the
// registry, so a caller that looked the entry up just before removal sees
// ErrRoomNotFound instead of mutating a detached room.
type entry struct {
	mu      sync.RWMutex
	room    *domain.Room
	removed bool
}

type shard struct {
	mu    sync.RWMutex
	rooms map[string]*entry
}

type repo struct {
	shards [shardsCount]*shard
	seed   maphash.Seed
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	r := &repo{
		seed:   maphash.MakeSeed(),
		logger: logger,
	}
	for i := range r.shards {
		r.shards[i] = &shard{rooms: make(map[string]*entry)}
	}

	return r
}

func (r *repo) shard(roomID string) *shard {
	return r.shards[maphash.String(r.seed, roomID)%shardsCount]
}

func (r *repo) get(roomID string) (*entry, error) {
	s := r.shard(roomID)
	s.mu.RLock()
	e, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return e, nil
}

// Insert adds rm unless its id is already taken.
func (r *repo) Insert(rm *domain.Room) error {
	funcName := "room.inmemory.Insert"
	s := r.shard(rm.ID())
	s.mu.Lock()
	defer s.mu.Unlock()

	r.logger.Debug(funcName, "room_id", rm.ID())
	if _, ok := s.rooms[rm.ID()]; ok {
		r.logger.Info(funcName, "room_id", rm.ID(), "error", room.ErrRoomAlreadyExists)
		return room.ErrRoomAlreadyExists
	}

	s.rooms[rm.ID()] = &entry{room: rm}
	return nil
}

// WithRoom runs fn with exclusive access to the room. fn must not block on I/O.
func (r *repo) WithRoom(roomID string, fn func(*domain.Room) error) error {
	e, err := r.get(roomID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return room.ErrRoomNotFound
	}

	return fn(e.room)
}

// ViewRoom runs fn with shared access to the room. fn must not modify it.
func (r *repo) ViewRoom(roomID string, fn func(*domain.Room) error) error {
	e, err := r.get(roomID)
	if err != nil {
		return err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.removed {
		return room.ErrRoomNotFound
	}

	return fn(e.room)
}

// RemoveIfEmpty deletes the room when nobody is connected to it and reports
// whether it did.
func (r *repo) RemoveIfEmpty(roomID string) (bool, error) {
	funcName := "room.inmemory.RemoveIfEmpty"
	s := r.shard(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.rooms[roomID]
	if !ok {
		return false, room.ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.room.IsEmpty() {
		return false, nil
	}

	e.removed = true
	delete(s.rooms, roomID)

	r.logger.Debug(funcName, "room_id", roomID, "result", "removed")
	return true, nil
}

func (r *repo) Count() int {
	count := 0
	for _, s := range r.shards {
		s.mu.RLock()
		count += len(s.rooms)
		s.mu.RUnlock()
	}

	return count
}

package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
)

// roomState is the authoritative runtime record of one active room. All reads
// and mutations happen under mu, including the persistence call of a mutation,
// so a room's actions are applied strictly one at a time.
type roomState struct {
	mu       sync.Mutex
	hydrated bool
	evicted  bool

	ownerId  string
	isPublic bool
	tier     domain.RoomTier
	// perms is nil when the room has no permissions row; a nil row requires
	// only "everyone" for every action (fail-open).
	perms *domain.RoomPermissions

	currentVideoId   *string
	currentTimestamp float64
	isPlaying        bool
	queue            []domain.QueueItem

	// emptySince is set when the last connection detaches and zeroed on join.
	emptySince time.Time
}

func (st *roomState) snapshot() RoomStatePayload {
	queue := make([]domain.QueueItem, len(st.queue))
	copy(queue, st.queue)

	return RoomStatePayload{
		CurrentVideoId:   st.currentVideoId,
		CurrentTimestamp: st.currentTimestamp,
		IsPlaying:        st.isPlaying,
		Queue:            queue,
	}
}

type stateRegistry struct {
	mu    sync.Mutex
	rooms map[string]*roomState
}

func newStateRegistry() *stateRegistry {
	return &stateRegistry{rooms: make(map[string]*roomState)}
}

func (r *stateRegistry) getOrCreate(roomId string) *roomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.rooms[roomId]
	if !ok {
		st = &roomState{}
		r.rooms[roomId] = st
	}

	return st
}

// remove deletes the entry only if the registry still holds the same one, so
// a state recreated after eviction is never dropped by a stale remover.
func (r *stateRegistry) remove(roomId string, st *roomState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[roomId] == st {
		delete(r.rooms, roomId)
	}
}

func (r *stateRegistry) list() map[string]*roomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := make(map[string]*roomState, len(r.rooms))
	for roomId, st := range r.rooms {
		rooms[roomId] = st
	}

	return rooms
}

// withRoomState runs fn while holding the room's serialization lock, lazily
// hydrating the state from the persistent store on first access. A join that
// races with eviction observes the evicted flag and retries against a fresh
// entry, never a half-evicted one.
func (s service) withRoomState(ctx context.Context, roomId string, fn func(st *roomState) error) error {
	for {
		st := s.states.getOrCreate(roomId)

		st.mu.Lock()
		if st.evicted {
			st.mu.Unlock()
			s.states.remove(roomId, st)
			continue
		}

		if !st.hydrated {
			if err := s.hydrateState(ctx, roomId, st); err != nil {
				st.evicted = true
				st.mu.Unlock()
				s.states.remove(roomId, st)
				return err
			}
		}

		err := fn(st)
		st.mu.Unlock()
		return err
	}
}

func (s service) hydrateState(ctx context.Context, roomId string, st *roomState) error {
	room, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to get room: %w", err)
	}

	queue, err := s.roomRepo.ListQueue(ctx, roomId)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}

	st.perms = nil
	perms, err := s.roomRepo.GetPermissions(ctx, roomId)
	switch {
	case err == nil:
		st.perms = &perms
	case errors.Is(err, repository.ErrPermissionsNotFound):
		slog.WarnContext(ctx, "room has no permissions row, treating every action as allowed", "room_id", roomId)
	default:
		return fmt.Errorf("failed to get permissions: %w", err)
	}

	st.ownerId = room.OwnerId
	st.isPublic = room.IsPublic
	st.tier = room.Tier
	st.currentVideoId = room.CurrentVideoId
	st.currentTimestamp = room.CurrentTimestamp
	st.isPlaying = room.IsPlaying
	st.queue = queue
	st.hydrated = true

	if s.connRepo.CountByRoomId(roomId) == 0 {
		st.emptySince = time.Now()
	}

	return nil
}

// RunStateEviction drops room states that had no connections for the
// configured retention window. Blocks until ctx is cancelled.
func (s service) RunStateEviction(ctx context.Context) {
	interval := s.stateRetention / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdleStates(ctx)
		}
	}
}

func (s service) evictIdleStates(ctx context.Context) {
	for roomId, st := range s.states.list() {
		st.mu.Lock()
		if !st.evicted && st.hydrated &&
			!st.emptySince.IsZero() && time.Since(st.emptySince) >= s.stateRetention &&
			s.connRepo.CountByRoomId(roomId) == 0 {
			st.evicted = true
			slog.DebugContext(ctx, "evicted idle room state", "room_id", roomId)
		}
		evicted := st.evicted
		st.mu.Unlock()

		if evicted {
			s.states.remove(roomId, st)
		}
	}
}

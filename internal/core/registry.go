package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gather/internal/domain"
)

// Registry is the process-wide room table. A single reader/writer lock
// guards every room mutation: no two mutations on the same room ever
// interleave, and a deleted room is atomically absent for all lookups.
// Hub publishing is independent of this lock.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]*Room
	backlog int
}

func NewRegistry(backlog int) *Registry {
	return &Registry{
		rooms:   make(map[domain.RoomID]*Room),
		backlog: backlog,
	}
}

// CreateRoom builds a room with the creator as its single initial online
// member and publishes it in the registry.
func (r *Registry) CreateRoom(username domain.Username, password *domain.Password) (*Room, domain.Username, string, error) {
	room := NewRoom(password, r.backlog)
	assigned, memberToken, err := room.AddMember(username, true)
	if err != nil {
		return nil, "", "", err
	}

	r.mu.Lock()
	r.rooms[room.ID()] = room
	r.mu.Unlock()

	log.Info().Str("module", "core.registry").Str("room_id", string(room.ID())).Str("username", string(assigned)).Msg("room created")
	return room, assigned, memberToken, nil
}

// Contains reports room existence without taking the write lock.
func (r *Registry) Contains(id domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[id]
	return ok
}

// Info is the read-only existence/password check backing GET.
func (r *Registry) Info(id domain.RoomID) (exists, hasPassword bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return false, false
	}
	return true, room.HasPassword()
}

// Hub hands out the room's broadcast hub under the read lock only, so
// publishing never serializes behind mutations.
func (r *Registry) Hub(id domain.RoomID) (*Hub, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, false
	}
	return room.Hub(), true
}

// WithRoom runs fn under the registry write lock. Every room mutation goes
// through here; a room deleted in the meantime yields ErrRoomNotFound.
func (r *Registry) WithRoom(id domain.RoomID, fn func(*Room) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	return fn(room)
}

// Delete removes the room when the owner token matches, waking every
// attached session via the hub.
func (r *Registry) Delete(id domain.RoomID, ownerToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	if !room.IsOwner(ownerToken) {
		return ErrForbidden
	}
	delete(r.rooms, id)
	room.Hub().Close()
	log.Info().Str("module", "core.registry").Str("room_id", string(id)).Msg("room deleted")
	return nil
}

// Sweep removes rooms whose last activity is older than ttl and returns
// how many were removed.
func (r *Registry) Sweep(ttl time.Duration) int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, room := range r.rooms {
		age := now.Sub(room.lastActivity)
		if age <= ttl {
			continue
		}
		delete(r.rooms, id)
		room.Hub().Close()
		removed++
		log.Info().Str("module", "core.registry").Str("room_id", string(id)).Dur("inactive", age).Msg("removed inactive room")
	}
	return removed
}

// Len reports the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

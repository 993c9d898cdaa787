package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pqchat/relay/internal/domain"
	"github.com/pqchat/relay/internal/metrics"
)

// Rooms is the room directory: room id to the set of member client ids.
// Rooms come into existence on first join and stay as empty sets after the
// last member leaves; absence and emptiness are equivalent for routing.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.ClientID]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[domain.RoomID]map[domain.ClientID]struct{})}
}

// Join adds the client to the room, creating the room if needed.
// Idempotent; leaving any previous room is the caller's responsibility.
func (r *Rooms) Join(roomID domain.RoomID, clientID domain.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[domain.ClientID]struct{})
		r.rooms[roomID] = members
		metrics.RoomsActive.Set(float64(len(r.rooms)))
	}
	members[clientID] = struct{}{}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("client", string(clientID)).Msg("member joined")
}

// Leave removes the client from the room. No-op when the room or the
// member does not exist.
func (r *Rooms) Leave(roomID domain.RoomID, clientID domain.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, clientID)
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("client", string(clientID)).Msg("member left")
}

// Members returns a snapshot of the room's member ids. The snapshot may be
// stale by the time a broadcast runs; routing tolerates that.
func (r *Rooms) Members(roomID domain.RoomID) []domain.ClientID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[roomID]
	out := make([]domain.ClientID, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

package app

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pqchat/relay/internal/core"
	"github.com/pqchat/relay/internal/domain"
	"github.com/pqchat/relay/internal/metrics"
)

// liveness is per-connection probe state. A zero awaitingSince means the
// connection answered its last probe.
type liveness struct {
	awaitingSince time.Time
}

// Registry owns the connection-to-client mapping and the liveness state of
// every open connection. Connections are tracked from accept; a client
// record exists only after a register frame.
type Registry struct {
	mu      sync.RWMutex
	conns   map[core.Conn]*liveness
	records map[core.Conn]*domain.Client
}

func NewRegistry() *Registry {
	return &Registry{
		conns:   make(map[core.Conn]*liveness),
		records: make(map[core.Conn]*domain.Client),
	}
}

// Track starts liveness bookkeeping for a freshly accepted connection.
func (r *Registry) Track(conn core.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn] = &liveness{}
	metrics.ConnectionsActive.Set(float64(len(r.conns)))
}

// Register creates or overwrites the client record for conn. An empty
// requestedID yields a server-generated short identifier. Identifier
// collisions across connections are not arbitrated; Resolve picks the
// first match.
func (r *Registry) Register(conn core.Conn, requestedID string, publicKey []byte) domain.ClientID {
	id := domain.ClientID(requestedID)
	if id == "" {
		id = shortID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[conn] = domain.NewClient(id, publicKey)
	metrics.ClientsRegistered.Set(float64(len(r.records)))
	log.Info().Str("module", "app.registry").Str("client", string(id)).Msg("registered client")
	return id
}

// ByConn returns the record for a connection, if registered.
func (r *Registry) ByConn(conn core.Conn) (*domain.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[conn]
	return rec, ok
}

// Resolve finds the connection currently owning a client id. Linear scan,
// first match wins; a missing id is not an error.
func (r *Registry) Resolve(id domain.ClientID) (core.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for conn, rec := range r.records {
		if rec.ID == id {
			return conn, true
		}
	}
	return nil, false
}

// RecordByID finds a record by client id, first match wins.
func (r *Registry) RecordByID(id domain.ClientID) (*domain.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return nil, false
}

// UpdateRoom points the record at its new room.
func (r *Registry) UpdateRoom(conn core.Conn, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[conn]
	if !ok {
		return false
	}
	rec.CurrentRoom = roomID
	log.Info().Str("module", "app.registry").Str("client", string(rec.ID)).Str("room", string(roomID)).Msg("updated room")
	return true
}

// Connections returns a snapshot of every tracked connection.
func (r *Registry) Connections() []core.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Conn, 0, len(r.conns))
	for conn := range r.conns {
		out = append(out, conn)
	}
	return out
}

// Remove drops the record and liveness state for conn. Room membership and
// the departure broadcast are the caller's responsibility.
func (r *Registry) Remove(conn core.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[conn]; ok {
		log.Info().Str("module", "app.registry").Str("client", string(rec.ID)).Msg("removed client")
	}
	delete(r.records, conn)
	delete(r.conns, conn)
	metrics.ConnectionsActive.Set(float64(len(r.conns)))
	metrics.ClientsRegistered.Set(float64(len(r.records)))
}

// MarkAwaiting flags conn as waiting for a probe ack. Returns false if the
// connection is unknown or already awaiting one.
func (r *Registry) MarkAwaiting(conn core.Conn, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	lv, ok := r.conns[conn]
	if !ok || !lv.awaitingSince.IsZero() {
		return false
	}
	lv.awaitingSince = now
	return true
}

// ClearAwaiting records a probe ack at any time.
func (r *Registry) ClearAwaiting(conn core.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lv, ok := r.conns[conn]; ok {
		lv.awaitingSince = time.Time{}
	}
}

// Expired returns connections that have been awaiting an ack for longer
// than window.
func (r *Registry) Expired(now time.Time, window time.Duration) []core.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Conn
	for conn, lv := range r.conns {
		if !lv.awaitingSince.IsZero() && now.Sub(lv.awaitingSince) > window {
			out = append(out, conn)
		}
	}
	return out
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// shortID synthesizes a short random client identifier.
func shortID() domain.ClientID {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		log.Panic().Err(err).Msg("failed to read random bytes")
	}
	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return domain.ClientID(b)
}

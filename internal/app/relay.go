package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/pqchat/relay/internal/core"
	"github.com/pqchat/relay/internal/domain"
	"github.com/pqchat/relay/internal/metrics"
	"github.com/pqchat/relay/internal/protocol"
)

// Relay coordinates the registry and the room directory: room moves,
// departure cleanup and room broadcasts. It is the single place where the
// leave/join/broadcast sequence is composed, so adapters stay thin.
type Relay struct {
	Registry *Registry
	Rooms    *Rooms
	Policy   Policy
}

func NewRelay(reg *Registry, rooms *Rooms, policy Policy) *Relay {
	return &Relay{Registry: reg, Rooms: rooms, Policy: policy}
}

// Broadcast delivers frame to every open connection whose record places it
// in roomID, except exclude. The scan is connection-driven so a closed or
// never-registered connection is never targeted, even if the member set is
// momentarily stale.
func (r *Relay) Broadcast(roomID domain.RoomID, frame core.Frame, exclude core.Conn) core.PublishResult {
	res := core.PublishResult{}
	for _, conn := range r.Registry.Connections() {
		if conn == exclude {
			continue
		}
		rec, ok := r.Registry.ByConn(conn)
		if !ok || rec.CurrentRoom != roomID {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, conn)
			continue
		}
		res.SentTo++
	}
	for _, slow := range res.Dropped {
		metrics.FramesDropped.Inc()
		if r.Policy == nil {
			continue
		}
		switch r.Policy.OnBackpressure(slow) {
		case KickPeer:
			r.Disconnect(slow)
			slow.Close()
		case DropFrame, NoAction:
		}
	}
	log.Debug().Str("module", "app.relay").Str("room", string(roomID)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// Join moves a registered client into roomID. If the client was already in
// a room it leaves first and that room is told, excluding the mover.
func (r *Relay) Join(conn core.Conn, roomID domain.RoomID) (*domain.Client, bool) {
	rec, ok := r.Registry.ByConn(conn)
	if !ok {
		return nil, false
	}
	if rec.InRoom() {
		r.leaveCurrent(conn, rec)
	}
	r.Rooms.Join(roomID, rec.ID)
	r.Registry.UpdateRoom(conn, roomID)
	return rec, true
}

// Disconnect runs the cleanup shared by explicit closes and liveness
// evictions: leave the current room, tell the room, drop the record.
// Safe to call more than once for the same connection.
func (r *Relay) Disconnect(conn core.Conn) {
	if rec, ok := r.Registry.ByConn(conn); ok && rec.InRoom() {
		r.leaveCurrent(conn, rec)
	}
	r.Registry.Remove(conn)
}

func (r *Relay) leaveCurrent(conn core.Conn, rec *domain.Client) {
	roomID := rec.CurrentRoom
	r.Rooms.Leave(roomID, rec.ID)
	r.Registry.UpdateRoom(conn, "")
	frame, err := json.Marshal(protocol.UserLeft{Type: protocol.TypeUserLeft, UserID: string(rec.ID)})
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("marshal user_left")
		return
	}
	r.Broadcast(roomID, frame, conn)
}

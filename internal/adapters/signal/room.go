package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/pqchat/relay/internal/core"
	"github.com/pqchat/relay/internal/domain"
	"github.com/pqchat/relay/internal/metrics"
	"github.com/pqchat/relay/internal/protocol"
)

// handleJoinRoom moves a registered sender into the named room. Any
// non-empty auth token is accepted as proof of knowledge of the room
// password; a real deployment must replace this with a verified
// credential without changing the frame shape.
func (ctl *Controller) handleJoinRoom(conn core.Conn, data []byte) {
	metrics.FramesTotal.WithLabelValues(protocol.TypeJoinRoom).Inc()

	var p protocol.JoinRoom
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "Failed to process message: "+err.Error())
		return
	}

	if _, ok := ctl.Relay.Registry.ByConn(conn); !ok {
		ctl.sendError(conn, "Not registered")
		return
	}
	if p.AuthToken == "" {
		ctl.sendError(conn, "Invalid room password")
		return
	}

	roomID := domain.RoomID(p.RoomID)
	rec, ok := ctl.Relay.Join(conn, roomID)
	if !ok {
		ctl.sendError(conn, "Not registered")
		return
	}
	log.Info().Str("module", "signal").Str("client", string(rec.ID)).Str("room", p.RoomID).Msg("join_room")

	// Member list is taken after the join, so it includes the sender.
	users := make([]protocol.RoomUser, 0, 4)
	for _, id := range ctl.Relay.Rooms.Members(roomID) {
		member, ok := ctl.Relay.Registry.RecordByID(id)
		if !ok {
			continue
		}
		users = append(users, protocol.RoomUser{
			ID:        string(member.ID),
			PublicKey: protocol.KeyBytes(member.PublicKey),
		})
	}
	ctl.sendJSON(conn, protocol.RoomJoined{
		Type:   protocol.TypeRoomJoined,
		RoomID: p.RoomID,
		Users:  users,
	})

	joined, err := json.Marshal(protocol.UserJoined{
		Type:      protocol.TypeUserJoined,
		UserID:    string(rec.ID),
		PublicKey: protocol.KeyBytes(rec.PublicKey),
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal user_joined")
		return
	}
	ctl.Relay.Broadcast(roomID, joined, conn)
}

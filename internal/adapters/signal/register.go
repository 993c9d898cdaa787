package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/pqchat/relay/internal/core"
	"github.com/pqchat/relay/internal/metrics"
	"github.com/pqchat/relay/internal/protocol"
)

// handleRegister creates or overwrites the client record for this
// connection. The supplied id is used verbatim; without one the server
// picks a short random identifier. There is no collision arbitration.
func (ctl *Controller) handleRegister(conn core.Conn, data []byte) {
	metrics.FramesTotal.WithLabelValues(protocol.TypeRegister).Inc()

	var p protocol.Register
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "Failed to process message: "+err.Error())
		return
	}

	id := ctl.Relay.Registry.Register(conn, p.ClientID, []byte(p.KyberPublicKey))
	log.Info().Str("module", "signal").Str("client", string(id)).Msg("register")

	ctl.sendJSON(conn, protocol.Registered{
		Type:     protocol.TypeRegistered,
		ClientID: string(id),
	})
}

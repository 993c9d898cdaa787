package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/pqchat/relay/internal/core"
	"github.com/pqchat/relay/internal/domain"
	"github.com/pqchat/relay/internal/metrics"
	"github.com/pqchat/relay/internal/protocol"
)

// handleKeyExchange forwards encapsulation material point-to-point. An
// unknown recipient is dropped silently so presence is not leaked to the
// sender.
func (ctl *Controller) handleKeyExchange(conn core.Conn, data []byte) {
	metrics.FramesTotal.WithLabelValues(protocol.TypeKeyExchange).Inc()

	var p protocol.KeyExchange
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "Failed to process message: "+err.Error())
		return
	}

	sender, ok := ctl.Relay.Registry.ByConn(conn)
	if !ok {
		ctl.sendError(conn, "Not registered")
		return
	}

	target, ok := ctl.Relay.Registry.Resolve(domain.ClientID(p.RecipientID))
	if !ok {
		log.Debug().Str("module", "signal").Str("recipient", p.RecipientID).Msg("key_exchange recipient not found")
		return
	}
	ctl.sendJSON(target, protocol.KeyExchangeForward{
		Type:      protocol.TypeKeyExchange,
		SenderID:  string(sender.ID),
		PublicKey: p.PublicKey,
	})
}

// handleMessage fans an encrypted payload out to its per-recipient
// entries. A sender never receives its own outbound copy back, and
// unmatched recipients are dropped silently.
func (ctl *Controller) handleMessage(conn core.Conn, data []byte) {
	metrics.FramesTotal.WithLabelValues(protocol.TypeMessage).Inc()

	var p protocol.Message
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "Failed to process message: "+err.Error())
		return
	}

	sender, ok := ctl.Relay.Registry.ByConn(conn)
	if !ok {
		ctl.sendError(conn, "Not registered")
		return
	}

	for _, entry := range p.Messages {
		if entry.RecipientID == string(sender.ID) {
			continue
		}
		target, ok := ctl.Relay.Registry.Resolve(domain.ClientID(entry.RecipientID))
		if !ok {
			continue
		}
		log.Debug().Str("module", "signal").Str("sender", string(sender.ID)).Str("recipient", entry.RecipientID).Msg("routing message")
		ctl.sendJSON(target, protocol.MessageForward{
			Type:          protocol.TypeMessage,
			SenderID:      string(sender.ID),
			EncryptedData: entry.EncryptedData,
			Timestamp:     p.Timestamp,
			PublicKey:     protocol.KeyBytes(sender.PublicKey),
		})
	}
}

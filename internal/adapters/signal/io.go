package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pqchat/relay/internal/core"
	"github.com/pqchat/relay/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Msg("readPump closing")
		ctl.Relay.Disconnect(c)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleFrame(c, data)
		}
	}
}

// handleFrame dispatches one inbound frame. A panic in a handler is
// converted into an error reply so a malformed message cannot take the
// connection or the process down.
func (ctl *Controller) handleFrame(conn core.Conn, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "signal").Interface("panic", r).Msg("frame handler panicked")
			ctl.sendError(conn, fmt.Sprintf("Failed to process message: %v", r))
		}
	}()

	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		ctl.sendError(conn, "Failed to process message: "+err.Error())
		return
	}

	switch env.Type {
	case protocol.TypeRegister:
		ctl.handleRegister(conn, data)
	case protocol.TypeJoinRoom:
		ctl.handleJoinRoom(conn, data)
	case protocol.TypeKeyExchange:
		ctl.handleKeyExchange(conn, data)
	case protocol.TypeMessage:
		ctl.handleMessage(conn, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown frame type")
	}
}

func (ctl *Controller) sendJSON(conn core.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = conn.TrySend(b)
}

func (ctl *Controller) sendError(conn core.Conn, msg string) {
	ctl.sendJSON(conn, protocol.NewError(msg))
}

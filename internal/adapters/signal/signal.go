// Package signal is the WebSocket adapter for the relay: it owns the
// transport endpoints and translates wire frames into registry, room and
// routing operations.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pqchat/relay/internal/app"
	"github.com/pqchat/relay/internal/config"
	"github.com/pqchat/relay/internal/core"
)

// Subprotocol is the token negotiated during the WebSocket handshake.
const Subprotocol = "pqchat"

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Relay *app.Relay
	Cfg   *config.Config
}

func NewController(relay *app.Relay, cfg *config.Config) *Controller {
	return &Controller{Relay: relay, Cfg: cfg}
}

// wsConn is a transport endpoint over a gorilla connection. It implements
// core.Conn; writes go through a buffered channel drained by writePump so
// a slow peer never stalls the caller.
type wsConn struct {
	conn         *websocket.Conn
	send         chan core.Frame
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Ping writes a control frame directly; gorilla allows WriteControl
// concurrently with the write pump.
func (c *wsConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	Subprotocols: []string{Subprotocol},
	CheckOrigin:  func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the connection's pumps.
// Liveness tracking begins here, before any registration frame arrives.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("remote", ws.RemoteAddr().String()).Msg("new WS connection")

	conn := &wsConn{
		conn:         ws,
		send:         make(chan core.Frame, ctl.Cfg.SendBuffer),
		writeTimeout: ctl.Cfg.WriteTimeout,
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)
	ws.SetPongHandler(func(string) error {
		ctl.Relay.Registry.ClearAwaiting(conn)
		return nil
	})

	ctl.Relay.Registry.Track(conn)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, conn)
}

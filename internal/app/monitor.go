package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pqchat/relay/internal/core"
	"github.com/pqchat/relay/internal/metrics"
)

// Monitor detects half-open connections: peers that vanished without a
// clean close would otherwise linger as phantom room members. Probes go
// out every PingPeriod; the shorter CheckPeriod sweep only judges a
// connection late once a full PingPeriod has passed without an ack, so an
// ack always has a whole cycle to arrive.
type Monitor struct {
	Registry *Registry
	Relay    *Relay

	PingPeriod  time.Duration
	CheckPeriod time.Duration
}

func NewMonitor(reg *Registry, relay *Relay, pingPeriod, checkPeriod time.Duration) *Monitor {
	return &Monitor{
		Registry:    reg,
		Relay:       relay,
		PingPeriod:  pingPeriod,
		CheckPeriod: checkPeriod,
	}
}

// Run drives the probe and check cycles until ctx is done. It runs
// independently of frame handling and never blocks on a peer.
func (m *Monitor) Run(ctx context.Context) {
	probe := time.NewTicker(m.PingPeriod)
	check := time.NewTicker(m.CheckPeriod)
	defer probe.Stop()
	defer check.Stop()

	log.Info().Str("module", "app.monitor").Dur("ping_period", m.PingPeriod).Dur("check_period", m.CheckPeriod).Msg("liveness monitor started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.monitor").Msg("liveness monitor stopped")
			return
		case <-probe.C:
			m.Probe(time.Now())
		case <-check.C:
			m.Sweep(time.Now())
		}
	}
}

// Probe marks every idle connection as awaiting an ack and sends it a
// liveness probe. Connections already awaiting one are left for Sweep.
func (m *Monitor) Probe(now time.Time) {
	for _, conn := range m.Registry.Connections() {
		if !m.Registry.MarkAwaiting(conn, now) {
			continue
		}
		if err := conn.Ping(); err != nil {
			log.Warn().Err(err).Str("module", "app.monitor").Msg("probe write failed")
			m.Evict(conn)
		}
	}
}

// Sweep force-closes every connection whose probe ack is a full ping
// period overdue, running the same cleanup as an explicit disconnect.
func (m *Monitor) Sweep(now time.Time) {
	for _, conn := range m.Registry.Expired(now, m.PingPeriod) {
		log.Info().Str("module", "app.monitor").Msg("evicting unresponsive connection")
		m.Evict(conn)
	}
}

// Evict runs the standard departure cleanup and closes the transport.
// Not reported to the evicted client.
func (m *Monitor) Evict(conn core.Conn) {
	m.Relay.Disconnect(conn)
	conn.Close()
	metrics.EvictionsTotal.Inc()
}

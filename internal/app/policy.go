package app

import "github.com/pqchat/relay/internal/core"

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickPeer
	NoAction
)

// Policy decides what happens to a peer whose send buffer is full.
type Policy interface {
	OnBackpressure(slow core.Conn) BackpressureAction
}

// DropPolicy loses the frame and leaves the peer connected; a peer that
// stays unresponsive is evicted by the liveness monitor, not the router.
type DropPolicy struct{}

func (DropPolicy) OnBackpressure(core.Conn) BackpressureAction {
	return DropFrame
}

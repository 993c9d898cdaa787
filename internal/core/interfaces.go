package core

// Frame is a raw wire payload (a JSON-encoded signaling frame).
type Frame []byte

// Conn abstracts a client transport endpoint (WebSocket).
// Owned by the adapter; the adapter must Close() it.
// Ping sends a transport-level liveness probe, distinct from any
// application frame.
type Conn interface {
	TrySend(Frame) error
	Ping() error
	Close()
}

// PublishResult reports delivery stats/backpressure to the relay.
type PublishResult struct {
	SentTo  int
	Dropped []Conn
}

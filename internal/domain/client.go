// Package domain contains entity types without logic, just meta-data.
package domain

type (
	ClientID string
	RoomID   string
)

// Client is one registered participant, keyed by its transport connection.
// PublicKey is opaque key material supplied at registration; the relay
// re-broadcasts it verbatim and never inspects it.
type Client struct {
	ID          ClientID
	PublicKey   []byte
	CurrentRoom RoomID
}

// NewClient avoids raw literals in adapters and keeps construction obvious.
func NewClient(id ClientID, publicKey []byte) *Client {
	return &Client{ID: id, PublicKey: publicKey}
}

// InRoom reports whether the client has joined any room yet.
func (c *Client) InRoom() bool { return c.CurrentRoom != "" }

// Package protocol defines the JSON frame envelope exchanged with clients.
//
// Every frame carries a mandatory "type" field. Opaque client payloads
// (encrypted bodies, encapsulation material in key_exchange frames) are
// carried as json.RawMessage and forwarded verbatim; registration key
// material crosses the wire as an array of integers 0-255 (KeyBytes).
package protocol

import "encoding/json"

// Frame type tokens, inbound and outbound.
const (
	TypeRegister    = "register"
	TypeJoinRoom    = "join_room"
	TypeKeyExchange = "key_exchange"
	TypeMessage     = "message"

	TypeRegistered = "registered"
	TypeRoomJoined = "room_joined"
	TypeUserJoined = "user_joined"
	TypeUserLeft   = "user_left"
	TypeError      = "error"
)

// Envelope is the minimal shape used to dispatch an inbound frame.
type Envelope struct {
	Type string `json:"type"`
}

// Register is sent once per connection to announce an identity and its
// public key material. ClientID may be empty; the server then picks one.
type Register struct {
	Type           string   `json:"type"`
	ClientID       string   `json:"clientId,omitempty"`
	KyberPublicKey KeyBytes `json:"kyberPublicKey"`
}

type JoinRoom struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	AuthToken string `json:"authToken"`
}

// KeyExchange addresses a single recipient. PublicKey is opaque to the
// relay and forwarded untouched (it may be a public key or a ciphertext).
type KeyExchange struct {
	Type        string          `json:"type"`
	RecipientID string          `json:"recipientId"`
	PublicKey   json.RawMessage `json:"publicKey"`
}

// Message carries one encrypted copy per recipient.
type Message struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId"`
	Messages  []MessageEntry  `json:"messages"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

type MessageEntry struct {
	RecipientID   string          `json:"recipientId"`
	EncryptedData json.RawMessage `json:"encryptedData"`
}

// --- outbound frames ---

type Registered struct {
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
}

type RoomJoined struct {
	Type   string     `json:"type"`
	RoomID string     `json:"roomId"`
	Users  []RoomUser `json:"users"`
}

// RoomUser is the member view sent in room_joined lists.
type RoomUser struct {
	ID        string   `json:"id"`
	PublicKey KeyBytes `json:"publicKey"`
}

type UserJoined struct {
	Type      string   `json:"type"`
	UserID    string   `json:"userId"`
	PublicKey KeyBytes `json:"publicKey"`
}

type UserLeft struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type KeyExchangeForward struct {
	Type      string          `json:"type"`
	SenderID  string          `json:"senderId"`
	PublicKey json.RawMessage `json:"publicKey"`
}

type MessageForward struct {
	Type          string          `json:"type"`
	SenderID      string          `json:"senderId"`
	EncryptedData json.RawMessage `json:"encryptedData"`
	Timestamp     json.RawMessage `json:"timestamp,omitempty"`
	PublicKey     KeyBytes        `json:"publicKey"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError builds the standard error reply frame.
func NewError(msg string) ErrorFrame {
	return ErrorFrame{Type: TypeError, Message: msg}
}

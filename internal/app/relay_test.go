package app

import (
	"encoding/json"
	"testing"

	"github.com/pqchat/relay/internal/core"
	"github.com/pqchat/relay/internal/domain"
	"github.com/pqchat/relay/internal/protocol"
)

func newTestRelay() *Relay {
	return NewRelay(NewRegistry(), NewRooms(), DropPolicy{})
}

func register(t *testing.T, r *Relay, id string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	r.Registry.Track(conn)
	r.Registry.Register(conn, id, []byte(id+"-key"))
	return conn
}

func frameTypes(frames []core.Frame) []string {
	var out []string
	for _, f := range frames {
		var env protocol.Envelope
		_ = json.Unmarshal(f, &env)
		out = append(out, env.Type)
	}
	return out
}

func TestJoinMovesBetweenRooms(t *testing.T) {
	relay := newTestRelay()
	alice := register(t, relay, "alice")

	if _, ok := relay.Join(alice, "r1"); !ok {
		t.Fatal("join r1 failed")
	}
	if _, ok := relay.Join(alice, "r2"); !ok {
		t.Fatal("join r2 failed")
	}

	if members := relay.Rooms.Members("r1"); len(members) != 0 {
		t.Fatalf("r1 members = %v, want empty after move", members)
	}
	if members := relay.Rooms.Members("r2"); len(members) != 1 || members[0] != "alice" {
		t.Fatalf("r2 members = %v, want [alice]", members)
	}
	rec, _ := relay.Registry.ByConn(alice)
	if rec.CurrentRoom != "r2" {
		t.Fatalf("currentRoom = %q, want r2", rec.CurrentRoom)
	}
}

func TestRoomMoveNotifiesOldRoom(t *testing.T) {
	relay := newTestRelay()
	alice := register(t, relay, "alice")
	bob := register(t, relay, "bob")

	relay.Join(alice, "r1")
	relay.Join(bob, "r1")
	relay.Join(alice, "r2")

	frames := bob.sent()
	if len(frames) == 0 {
		t.Fatal("bob received nothing")
	}
	var left protocol.UserLeft
	if err := json.Unmarshal(frames[len(frames)-1], &left); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if left.Type != protocol.TypeUserLeft || left.UserID != "alice" {
		t.Fatalf("got %+v, want user_left for alice", left)
	}
	// The mover itself hears nothing about its own departure.
	for _, f := range alice.sent() {
		var env protocol.Envelope
		_ = json.Unmarshal(f, &env)
		if env.Type == protocol.TypeUserLeft {
			t.Fatal("mover should not receive its own user_left")
		}
	}
}

func TestBroadcastSkipsExcludedAndOtherRooms(t *testing.T) {
	relay := newTestRelay()
	alice := register(t, relay, "alice")
	bob := register(t, relay, "bob")
	carol := register(t, relay, "carol")
	outsider := register(t, relay, "dave")

	relay.Join(alice, "r1")
	relay.Join(bob, "r1")
	relay.Join(carol, "r1")
	relay.Join(outsider, "r2")

	res := relay.Broadcast("r1", []byte(`{"type":"user_joined"}`), alice)
	if res.SentTo != 2 {
		t.Fatalf("sentTo = %d, want 2", res.SentTo)
	}
	if len(alice.sent()) != 0 {
		t.Fatal("excluded connection must not be targeted")
	}
	if len(outsider.sent()) != 0 {
		t.Fatal("other rooms must not be targeted")
	}
}

func TestBroadcastDropsOnBackpressure(t *testing.T) {
	relay := newTestRelay()
	alice := register(t, relay, "alice")
	bob := register(t, relay, "bob")
	bob.full = true

	relay.Join(alice, "r1")
	relay.Join(bob, "r1")

	res := relay.Broadcast("r1", []byte(`{"type":"user_joined"}`), alice)
	if len(res.Dropped) != 1 {
		t.Fatalf("dropped = %d, want 1", len(res.Dropped))
	}
	// DropPolicy keeps the slow peer connected; the monitor owns eviction.
	if bob.closed {
		t.Fatal("drop policy must not close the peer")
	}
	if _, ok := relay.Registry.ByConn(bob); !ok {
		t.Fatal("drop policy must not deregister the peer")
	}
}

func TestDisconnectCleansUpAndNotifies(t *testing.T) {
	relay := newTestRelay()
	alice := register(t, relay, "alice")
	bob := register(t, relay, "bob")
	relay.Join(alice, "r1")
	relay.Join(bob, "r1")

	relay.Disconnect(alice)

	if _, ok := relay.Registry.ByConn(alice); ok {
		t.Fatal("record should be removed")
	}
	for _, id := range relay.Rooms.Members("r1") {
		if id == domain.ClientID("alice") {
			t.Fatal("alice should be out of the room")
		}
	}
	var sawLeft bool
	for _, f := range bob.sent() {
		var env protocol.Envelope
		_ = json.Unmarshal(f, &env)
		if env.Type == protocol.TypeUserLeft {
			sawLeft = true
		}
	}
	if !sawLeft {
		t.Fatalf("bob frames = %v, want a user_left", frameTypes(bob.sent()))
	}

	// A second Disconnect for the same connection is a no-op.
	before := len(bob.sent())
	relay.Disconnect(alice)
	if len(bob.sent()) != before {
		t.Fatal("repeated disconnect must not re-broadcast")
	}
}

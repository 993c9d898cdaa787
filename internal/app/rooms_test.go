package app

import "testing"

func TestJoinIsIdempotent(t *testing.T) {
	rooms := NewRooms()
	rooms.Join("r1", "alice")
	rooms.Join("r1", "alice")
	rooms.Join("r1", "bob")

	members := rooms.Members("r1")
	if len(members) != 2 {
		t.Fatalf("members = %v, want 2 entries", members)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	rooms := NewRooms()
	rooms.Leave("ghost", "alice") // no room at all

	rooms.Join("r1", "alice")
	rooms.Leave("r1", "bob") // not a member
	rooms.Leave("r1", "alice")
	rooms.Leave("r1", "alice")

	if members := rooms.Members("r1"); len(members) != 0 {
		t.Fatalf("members = %v, want empty", members)
	}
}

func TestMembersOfUnknownRoomIsEmpty(t *testing.T) {
	rooms := NewRooms()
	if members := rooms.Members("nope"); len(members) != 0 {
		t.Fatalf("members = %v, want empty", members)
	}
}

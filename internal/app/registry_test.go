package app

import (
	"testing"
	"time"
)

func TestRegisterUsesRequestedID(t *testing.T) {
	reg := NewRegistry()
	conn := &fakeConn{}
	reg.Track(conn)

	id := reg.Register(conn, "alice", []byte{1, 2})
	if id != "alice" {
		t.Fatalf("id = %q, want alice", id)
	}
	rec, ok := reg.ByConn(conn)
	if !ok || rec.ID != "alice" {
		t.Fatalf("ByConn = %v, %v", rec, ok)
	}
}

func TestRegisterGeneratesStableID(t *testing.T) {
	reg := NewRegistry()
	conn := &fakeConn{}
	reg.Track(conn)

	id := reg.Register(conn, "", nil)
	if id == "" {
		t.Fatal("expected a generated id")
	}
	rec, ok := reg.ByConn(conn)
	if !ok || rec.ID != id {
		t.Fatalf("lookup returned %v, want %q", rec, id)
	}
	got, ok := reg.Resolve(id)
	if !ok || got != conn {
		t.Fatalf("Resolve(%q) = %v, %v", id, got, ok)
	}
}

func TestRegisterOverwritesRecord(t *testing.T) {
	reg := NewRegistry()
	conn := &fakeConn{}
	reg.Track(conn)

	reg.Register(conn, "old", nil)
	reg.Register(conn, "new", nil)
	rec, _ := reg.ByConn(conn)
	if rec.ID != "new" {
		t.Fatalf("record id = %q, want new", rec.ID)
	}
	if _, ok := reg.Resolve("old"); ok {
		t.Fatal("old id should no longer resolve")
	}
}

func TestResolveToleratesDuplicatesAndMisses(t *testing.T) {
	reg := NewRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	reg.Track(a)
	reg.Track(b)
	reg.Register(a, "dup", nil)
	reg.Register(b, "dup", nil)

	conn, ok := reg.Resolve("dup")
	if !ok {
		t.Fatal("Resolve(dup) should find a connection")
	}
	if conn != a && conn != b {
		t.Fatal("Resolve returned an unknown connection")
	}
	if _, ok := reg.Resolve("nobody"); ok {
		t.Fatal("missing id should not resolve")
	}
}

func TestRemoveDropsRecordAndTracking(t *testing.T) {
	reg := NewRegistry()
	conn := &fakeConn{}
	reg.Track(conn)
	reg.Register(conn, "alice", nil)

	reg.Remove(conn)
	if _, ok := reg.ByConn(conn); ok {
		t.Fatal("record should be gone")
	}
	if len(reg.Connections()) != 0 {
		t.Fatal("connection should be untracked")
	}
}

func TestLivenessMarkClearExpire(t *testing.T) {
	reg := NewRegistry()
	conn := &fakeConn{}
	reg.Track(conn)

	now := time.Now()
	if !reg.MarkAwaiting(conn, now) {
		t.Fatal("first mark should succeed")
	}
	if reg.MarkAwaiting(conn, now) {
		t.Fatal("second mark should report already awaiting")
	}
	if got := reg.Expired(now.Add(time.Minute), 30*time.Second); len(got) != 1 {
		t.Fatalf("expected 1 expired, got %d", len(got))
	}

	reg.ClearAwaiting(conn)
	if got := reg.Expired(now.Add(time.Minute), 30*time.Second); len(got) != 0 {
		t.Fatalf("expected 0 expired after ack, got %d", len(got))
	}
}

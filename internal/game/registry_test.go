package game

import "testing"

func TestRegisterDeduplicates(t *testing.T) {
	r := NewConnectionRegistry()

	if !r.Register("conn1") {
		t.Fatal("first registration must succeed")
	}
	if r.Register("conn1") {
		t.Fatal("duplicate registration must be refused")
	}
}

func TestUnregisterReturnsBoundRoom(t *testing.T) {
	r := NewConnectionRegistry()
	r.Register("conn1")
	r.Bind("conn1", "AAAAAA")

	roomID, ok := r.Unregister("conn1")
	if !ok || roomID != "AAAAAA" {
		t.Fatalf("expected (AAAAAA, true), got (%q, %v)", roomID, ok)
	}

	if _, ok := r.Unregister("conn1"); ok {
		t.Fatal("second unregister must report nothing to release")
	}
}

func TestUnregisterUnboundConnection(t *testing.T) {
	r := NewConnectionRegistry()
	r.Register("conn1")

	if _, ok := r.Unregister("conn1"); ok {
		t.Fatal("a connection that never joined a room has no room to release")
	}
}

func TestBindRequiresRegistration(t *testing.T) {
	r := NewConnectionRegistry()
	r.Bind("ghost", "AAAAAA")

	if n := r.RoomConnections("AAAAAA"); n != 0 {
		t.Fatalf("bind of an unregistered connection took effect: %d", n)
	}
}

func TestRoomConnections(t *testing.T) {
	r := NewConnectionRegistry()
	r.Register("conn1")
	r.Register("conn2")
	r.Register("conn3")
	r.Bind("conn1", "AAAAAA")
	r.Bind("conn2", "AAAAAA")
	r.Bind("conn3", "BBBBBB")

	if n := r.RoomConnections("AAAAAA"); n != 2 {
		t.Fatalf("expected 2 connections, got %d", n)
	}
	r.Unregister("conn2")
	if n := r.RoomConnections("AAAAAA"); n != 1 {
		t.Fatalf("expected 1 connection after unregister, got %d", n)
	}
}

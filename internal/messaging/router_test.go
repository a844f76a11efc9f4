package messaging

import "testing"

func TestRoomKeyOrderIndependent(t *testing.T) {
	if RoomKey(9, 4) != RoomKey(4, 9) {
		t.Error("room key must not depend on argument order")
	}
	if got, want := RoomKey(9, 4), "conv:4:9"; got != want {
		t.Errorf("RoomKey(9, 4) = %q, want %q", got, want)
	}
}

func TestRouterJoinLeave(t *testing.T) {
	router := NewRouter()
	room := RoomKey(1, 2)

	router.Join(1, room)
	router.Join(2, room)

	if !router.InRoom(1, room) || !router.InRoom(2, room) {
		t.Fatal("both users should be in the room after joining")
	}
	if got := len(router.Members(room)); got != 2 {
		t.Errorf("expected 2 members, got %d", got)
	}

	router.Leave(1, room)
	if router.InRoom(1, room) {
		t.Error("user 1 should have left the room")
	}
	if got := router.Members(room); len(got) != 1 || got[0] != 2 {
		t.Errorf("expected only user 2 remaining, got %v", got)
	}
}

func TestRouterDropUserRemovesAllMemberships(t *testing.T) {
	router := NewRouter()

	roomA := RoomKey(1, 2)
	roomB := RoomKey(1, 3)
	router.Join(1, roomA)
	router.Join(1, roomB)
	router.Join(2, roomA)

	router.DropUser(1)

	if router.InRoom(1, roomA) || router.InRoom(1, roomB) {
		t.Error("dropped user should be removed from every room")
	}
	if !router.InRoom(2, roomA) {
		t.Error("other members must be unaffected by the drop")
	}
}

// internal/messaging/router.go
//
// Deterministic conversation addressing. Each pair of identities maps to
// exactly one room key regardless of argument order, and each identity
// owns a personal channel for out-of-band notifications so senders are
// never double-notified about their own sends.

package messaging

import (
	"fmt"
	"sync"
)

// RoomKey returns the canonical, order-independent room address for a
// two-party conversation.
func RoomKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("conv:%d:%d", a, b)
}

// PersonalChannel returns the per-identity notification address.
func PersonalChannel(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// Router tracks which identities have joined which conversation rooms.
// Membership is per-connection state: dropping a user removes all of that
// user's memberships and nothing else.
type Router struct {
	mu    sync.RWMutex
	rooms map[string]map[int64]bool
}

func NewRouter() *Router {
	return &Router{rooms: make(map[string]map[int64]bool)}
}

func (r *Router) Join(userID int64, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[int64]bool)
		r.rooms[room] = members
	}
	members[userID] = true
}

func (r *Router) Leave(userID int64, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.rooms[room]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
}

// DropUser removes userID from every room. Called on disconnect; it
// cancels room memberships only and never touches persisted state.
func (r *Router) DropUser(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room, members := range r.rooms {
		delete(members, userID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
}

// Members returns a snapshot of the identities joined to a room.
func (r *Router) Members(room string) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]int64, 0, len(r.rooms[room]))
	for id := range r.rooms[room] {
		members = append(members, id)
	}
	return members
}

func (r *Router) InRoom(userID int64, room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[room][userID]
}

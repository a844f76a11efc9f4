// internal/messaging/hub.go

package messaging

import (
	"context"
	"encoding/json"
	"log"
)

// Hub fans events out to live connections. It owns no conversation
// state: the Registry knows who is connected, the Router knows who
// joined which room, and the Hub just moves bytes between them.
type Hub struct {
	registry Registry
	router   *Router
	presence *PresenceStore

	// connect hooks run after a connection is registered (unread replay,
	// presence announcements). Set during wiring, before the hub serves
	// any traffic.
	onConnect []func(ctx context.Context, userID int64)
}

func NewHub(registry Registry, router *Router, presence *PresenceStore) *Hub {
	return &Hub{
		registry: registry,
		router:   router,
		presence: presence,
	}
}

// OnConnect adds a hook invoked on every new registration.
func (h *Hub) OnConnect(hook func(ctx context.Context, userID int64)) {
	h.onConnect = append(h.onConnect, hook)
}

// Register installs the client's connection. Last connection wins: an
// existing connection for the same identity is closed and replaced.
// Presence writes and connect hooks outlive the handshake request, so
// they run on a fresh context; the handshake's request context is
// cancelled the moment the HTTP handler returns.
func (h *Hub) Register(client *Client) {
	h.registry.Register(client.userID, client)
	RecordConnection(h.registry.Len())

	if h.presence != nil {
		go func() {
			if err := h.presence.SetOnline(context.Background(), client.userID); err != nil {
				log.Printf("messaging: presence online for user %d: %v", client.userID, err)
			}
		}()
	}

	for _, hook := range h.onConnect {
		go hook(context.Background(), client.userID)
	}

	log.Printf("messaging: user %d connected (%d active)", client.userID, h.registry.Len())
}

// Unregister drops the client if it is still the current connection for
// its identity. Disconnect cancels room memberships only; persisted
// messages and match state are untouched.
func (h *Hub) Unregister(client *Client) {
	if !h.registry.Unregister(client.userID, client) {
		return
	}

	h.router.DropUser(client.userID)
	client.Close()
	RecordConnection(h.registry.Len())

	if h.presence != nil {
		go func() {
			if err := h.presence.SetOffline(context.Background(), client.userID); err != nil {
				log.Printf("messaging: presence offline for user %d: %v", client.userID, err)
			}
		}()
	}

	log.Printf("messaging: user %d disconnected (%d active)", client.userID, h.registry.Len())
}

// SendToUser delivers an event to the identity's personal channel.
// An offline recipient is not an error: the event's backing state is
// persisted and recovered by a fetch on the next connection.
func (h *Hub) SendToUser(userID int64, event Event) bool {
	conn, ok := h.registry.Get(userID)
	if !ok {
		return false
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("messaging: marshal event %q: %v", event.Type, err)
		return false
	}

	if !conn.Send(data) {
		// Send buffer saturated; the connection is wedged, drop it.
		conn.Close()
		h.registry.Unregister(userID, conn)
		return false
	}

	RecordEventDelivered(event.Type)
	return true
}

// SendToRoom delivers an event to every identity currently joined to the
// pair's conversation room, including the sender.
func (h *Hub) SendToRoom(a, b int64, event Event) {
	for _, userID := range h.router.Members(RoomKey(a, b)) {
		h.SendToUser(userID, event)
	}
}

func (h *Hub) JoinRoom(userID, otherID int64) {
	h.router.Join(userID, RoomKey(userID, otherID))
}

func (h *Hub) LeaveRoom(userID, otherID int64) {
	h.router.Leave(userID, RoomKey(userID, otherID))
}

func (h *Hub) IsUserOnline(userID int64) bool {
	_, ok := h.registry.Get(userID)
	return ok
}

func (h *Hub) ActiveConnections() int {
	return h.registry.Len()
}

// Shutdown closes every live connection.
func (h *Hub) Shutdown() {
	type lister interface{ All() []Connection }
	if l, ok := h.registry.(lister); ok {
		for _, conn := range l.All() {
			conn.Close()
		}
	}
}

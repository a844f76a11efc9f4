// internal/messaging/client.go

package messaging

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Buffered outbound frames per client.
	sendBufferSize = 256
)

// Client is one websocket connection for one authenticated identity.
// It implements Connection for the registry.
type Client struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	userID  int64
	service Service

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, service Service) *Client {
	return &Client{
		id:      uuid.NewString(),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		userID:  userID,
		service: service,
	}
}

func (c *Client) ID() string { return c.id }

// Send queues a frame without blocking. False means the buffer is full
// or the connection is already closed. The registry can hand out a
// handle that another goroutine closes concurrently, so the closed
// check and the channel send happen under the same lock.
func (c *Client) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if c.hub.presence != nil {
			go c.hub.presence.Refresh(context.Background(), c.userID)
		}
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("messaging: websocket error for user %d: %v", c.userID, err)
			}
			break
		}

		c.handleInbound(data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleInbound dispatches a client event. Malformed frames are dropped;
// the connection stays up.
func (c *Client) handleInbound(data []byte) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		log.Printf("messaging: bad frame from user %d: %v", c.userID, err)
		return
	}

	ctx := context.Background()

	switch event.Type {
	case EventJoinRoom:
		var payload RoomPayload
		if err := json.Unmarshal(event.Data, &payload); err == nil && payload.OtherID > 0 {
			c.hub.JoinRoom(c.userID, payload.OtherID)
		}

	case EventLeaveRoom:
		var payload RoomPayload
		if err := json.Unmarshal(event.Data, &payload); err == nil && payload.OtherID > 0 {
			c.hub.LeaveRoom(c.userID, payload.OtherID)
		}

	case EventTypingStart, EventTypingStop:
		var payload TypingRequestPayload
		if err := json.Unmarshal(event.Data, &payload); err == nil && payload.RecipientID > 0 {
			c.service.RelayTyping(ctx, c.userID, payload.RecipientID, event.Type == EventTypingStart)
		}

	case EventMessageRead:
		var payload ReadRequestPayload
		if err := json.Unmarshal(event.Data, &payload); err == nil && payload.MessageID != "" {
			if err := c.service.MarkRead(ctx, c.userID, payload.MessageID); err != nil {
				log.Printf("messaging: mark read %s by user %d: %v", payload.MessageID, c.userID, err)
			}
		}

	default:
		log.Printf("messaging: unknown event type %q from user %d", event.Type, c.userID)
	}
}

// internal/messaging/models.go

package messaging

import (
	"encoding/json"
	"log"
	"time"
)

// Message is a confirmed conversation message. The ID is the
// server-assigned authoritative identifier; provisional client-side ids
// never reach storage.
type Message struct {
	ID          string     `json:"id" db:"id"`
	MatchID     int64      `json:"match_id" db:"match_id"`
	SenderID    int64      `json:"sender_id" db:"sender_id"`
	RecipientID int64      `json:"recipient_id" db:"recipient_id"`
	Content     string     `json:"content" db:"content"`
	MessageType string     `json:"message_type" db:"message_type"`
	IsRead      bool       `json:"is_read" db:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Event is the websocket wire envelope.
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Outbound event types.
const (
	EventNewMessage             = "new_message"
	EventNewMessageNotification = "new_message_notification"
	EventMessageReadStatus      = "message_read_status"
	EventUserTyping             = "user_typing"
	EventNewMatch               = "new_match"
	EventNewLike                = "new_like"
)

// Inbound event types.
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
	EventMessageRead = "message_read"
)

// Event payloads.

type RoomPayload struct {
	OtherID int64 `json:"other_id"`
}

type TypingPayload struct {
	UserID   int64 `json:"user_id"`
	IsTyping bool  `json:"is_typing"`
}

type TypingRequestPayload struct {
	RecipientID int64 `json:"recipient_id"`
}

type ReadRequestPayload struct {
	MessageID string `json:"message_id"`
	SenderID  int64  `json:"sender_id"`
}

type ReadStatusPayload struct {
	MessageID string    `json:"message_id"`
	ReadAt    time.Time `json:"read_at"`
}

type NewMatchPayload struct {
	MatchID       int64  `json:"match_id"`
	CounterpartID int64  `json:"counterpart_id"`
	Message       string `json:"message"`
	ActionURL     string `json:"action_url"`
}

type NewLikePayload struct {
	CounterpartID int64  `json:"counterpart_id"`
	Message       string `json:"message"`
}

// NewEvent wraps a payload into the wire envelope.
func NewEvent(eventType string, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Data:      mustMarshalJSON(payload),
		Timestamp: time.Now(),
	}
}

func mustMarshalJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("messaging: marshal error: %v", err)
		return json.RawMessage(`{}`)
	}
	return data
}

// Request DTOs

type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" validate:"required,gt=0"`
	Content     string `json:"content" validate:"required,max=4000"`
	MessageType string `json:"message_type" validate:"omitempty,oneof=text image audio"`
}

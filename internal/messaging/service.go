// internal/messaging/service.go

package messaging

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/matching"
)

var (
	ErrMatchRequired     = errors.New("a mutual match is required to message this user")
	ErrInvalidRecipient  = errors.New("invalid recipient")
	ErrNotRecipient      = errors.New("only the recipient can mark a message read")
	ErrFeatureRestricted = errors.New("messaging not available for this account")
)

// MatchSource is the narrow view of the match engine the delivery layer
// needs: resolve the mutual match backing a conversation and refresh its
// interaction timestamp.
type MatchSource interface {
	MutualMatch(ctx context.Context, a, b int64) (*matching.MatchRecord, error)
	TouchMatch(ctx context.Context, matchID int64) error
}

// MessageGate is the subscription capability check for sends.
type MessageGate interface {
	CanMessage(ctx context.Context, userID int64) bool
}

// NotificationSink is the write-only notification-persistence
// collaborator. Calls are fire-and-forget; failures never block delivery.
type NotificationSink interface {
	Record(ctx context.Context, userID int64, kind string, payload interface{})
}

type Service interface {
	SendMessage(ctx context.Context, senderID int64, req *SendMessageRequest) (*Message, error)
	MarkRead(ctx context.Context, readerID int64, messageID string) error
	GetConversation(ctx context.Context, userID, otherID int64, limit int, before time.Time) ([]*Message, error)
	RelayTyping(ctx context.Context, userID, recipientID int64, isTyping bool)
	ReplayUnread(ctx context.Context, userID int64)
}

type deliveryService struct {
	repo    Repository
	matches MatchSource
	gate    MessageGate
	sink    NotificationSink
	hub     *Hub
}

func NewService(repo Repository, matches MatchSource, gate MessageGate, sink NotificationSink, hub *Hub) Service {
	return &deliveryService{
		repo:    repo,
		matches: matches,
		gate:    gate,
		sink:    sink,
		hub:     hub,
	}
}

// SendMessage persists a message and broadcasts the confirmed record.
// Persistence strictly happens-before broadcast, so a receiver can always
// recover the message by fetching even if every live emit is missed. The
// confirmed message goes to the conversation room (both participants,
// sender included; the sender's client uses the echo to confirm its
// provisional entry) and, separately, to the recipient's personal channel
// so recipients not currently in the room still get notified.
func (s *deliveryService) SendMessage(ctx context.Context, senderID int64, req *SendMessageRequest) (*Message, error) {
	if req.RecipientID <= 0 || req.RecipientID == senderID {
		return nil, ErrInvalidRecipient
	}
	if s.gate != nil && !s.gate.CanMessage(ctx, senderID) {
		return nil, ErrFeatureRestricted
	}

	match, err := s.matches.MutualMatch(ctx, senderID, req.RecipientID)
	if err != nil {
		if errors.Is(err, matching.ErrMatchNotFound) {
			return nil, ErrMatchRequired
		}
		return nil, err
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = "text"
	}

	msg := &Message{
		ID:          uuid.NewString(),
		MatchID:     match.ID,
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Content:     req.Content,
		MessageType: messageType,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.matches.TouchMatch(ctx, match.ID); err != nil {
		log.Printf("messaging: touch match %d: %v", match.ID, err)
	}

	s.hub.SendToRoom(senderID, req.RecipientID, NewEvent(EventNewMessage, msg))
	s.hub.SendToUser(req.RecipientID, NewEvent(EventNewMessageNotification, msg))

	if s.sink != nil {
		go s.sink.Record(context.Background(), req.RecipientID, EventNewMessageNotification, msg)
	}

	RecordMessageSent()
	return msg, nil
}

// MarkRead flips the read flag and notifies the sender's personal
// channel. Marking an already-read message is a no-op, not an error, and
// emits nothing.
func (s *deliveryService) MarkRead(ctx context.Context, readerID int64, messageID string) error {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.RecipientID != readerID {
		return ErrNotRecipient
	}
	if msg.IsRead {
		return nil
	}

	readAt := time.Now().UTC()
	transitioned, err := s.repo.MarkMessageRead(ctx, messageID, readAt)
	if err != nil {
		return err
	}
	if !transitioned {
		// Lost a race with another read marker; the winner emitted.
		return nil
	}

	s.hub.SendToUser(msg.SenderID, NewEvent(EventMessageReadStatus, ReadStatusPayload{
		MessageID: messageID,
		ReadAt:    readAt,
	}))

	RecordMessageRead()
	return nil
}

func (s *deliveryService) GetConversation(ctx context.Context, userID, otherID int64, limit int, before time.Time) ([]*Message, error) {
	if otherID <= 0 {
		return nil, ErrInvalidRecipient
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if before.IsZero() {
		before = time.Now().UTC().Add(time.Second)
	}

	return s.repo.GetConversationMessages(ctx, userID, otherID, limit, before)
}

// RelayTyping forwards a typing indicator to the recipient's personal
// channel. Indicators are ephemeral: nothing is persisted and an offline
// recipient simply misses them.
func (s *deliveryService) RelayTyping(ctx context.Context, userID, recipientID int64, isTyping bool) {
	s.hub.SendToUser(recipientID, NewEvent(EventUserTyping, TypingPayload{
		UserID:   userID,
		IsTyping: isTyping,
	}))
}

// ReplayUnread pushes notification events for messages that arrived while
// the user was offline. Runs as a hub connect hook.
func (s *deliveryService) ReplayUnread(ctx context.Context, userID int64) {
	messages, err := s.repo.GetUnreadMessages(ctx, userID)
	if err != nil {
		log.Printf("messaging: unread replay for user %d: %v", userID, err)
		return
	}

	for _, msg := range messages {
		s.hub.SendToUser(userID, NewEvent(EventNewMessageNotification, msg))
	}
}

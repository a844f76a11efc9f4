// internal/messaging/ledger.go
//
// ConversationLedger is the reference implementation of the client side
// of the send protocol: an optimistic provisional entry is displayed
// immediately, then collapsed in place when the server's confirmed echo
// of the same message arrives. Matching echo to provisional is
// best-effort (sender + content equality inside a bounded timestamp
// window); the processed-id set makes re-delivery of a confirmed message
// across rejoins and reconnects a no-op.

package messaging

import (
	"sync"
	"time"
)

// DefaultReconcileWindow bounds how far apart a provisional entry's
// client timestamp and its echo's server timestamp may be and still be
// treated as the same message.
const DefaultReconcileWindow = 90 * time.Second

// LedgerEntry is one message slot in the conversation view. Provisional
// entries carry a client-local id until their echo confirms them.
type LedgerEntry struct {
	Message     Message
	Provisional bool
	LocalID     string
}

type ConversationLedger struct {
	mu        sync.Mutex
	selfID    int64
	window    time.Duration
	entries   []*LedgerEntry
	processed map[string]bool
}

func NewConversationLedger(selfID int64, window time.Duration) *ConversationLedger {
	if window <= 0 {
		window = DefaultReconcileWindow
	}
	return &ConversationLedger{
		selfID:    selfID,
		window:    window,
		processed: make(map[string]bool),
	}
}

// AppendProvisional records an optimistic local send before the server
// has confirmed it.
func (l *ConversationLedger) AppendProvisional(localID, content string, at time.Time) *LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := &LedgerEntry{
		Message: Message{
			SenderID:  l.selfID,
			Content:   content,
			CreatedAt: at,
		},
		Provisional: true,
		LocalID:     localID,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// ApplyConfirmed folds a server-confirmed message into the view. Returns
// false when the authoritative id was already processed (rejoin or
// reconnect re-delivery). An own provisional entry matching by content
// inside the timestamp window is replaced in place instead of appending
// a duplicate.
func (l *ConversationLedger) ApplyConfirmed(msg *Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.processed[msg.ID] {
		return false
	}
	l.processed[msg.ID] = true

	if msg.SenderID == l.selfID {
		if entry := l.matchProvisional(msg); entry != nil {
			entry.Message = *msg
			entry.Provisional = false
			entry.LocalID = ""
			return true
		}
	}

	l.entries = append(l.entries, &LedgerEntry{Message: *msg})
	return true
}

// matchProvisional finds the oldest unconfirmed own entry with the same
// content whose timestamp is inside the window. Callers hold the lock.
func (l *ConversationLedger) matchProvisional(msg *Message) *LedgerEntry {
	for _, entry := range l.entries {
		if !entry.Provisional || entry.Message.Content != msg.Content {
			continue
		}

		delta := msg.CreatedAt.Sub(entry.Message.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= l.window {
			return entry
		}
	}
	return nil
}

// MergeFetched folds a fetched conversation page into the view, used
// after a reconnect to recover anything missed while offline. Already
// processed messages are skipped via the same id guard as live
// broadcasts, so a message confirmed before the disconnect appears
// exactly once.
func (l *ConversationLedger) MergeFetched(messages []*Message) int {
	applied := 0
	for _, msg := range messages {
		if l.ApplyConfirmed(msg) {
			applied++
		}
	}
	return applied
}

// MarkRead applies a read-status event to the matching entry.
func (l *ConversationLedger) MarkRead(messageID string, readAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		if entry.Message.ID == messageID && !entry.Message.IsRead {
			at := readAt
			entry.Message.IsRead = true
			entry.Message.ReadAt = &at
			return
		}
	}
}

// Entries snapshots the view in insertion order.
func (l *ConversationLedger) Entries() []LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LedgerEntry, len(l.entries))
	for i, entry := range l.entries {
		out[i] = *entry
	}
	return out
}

// PendingProvisional counts entries still awaiting confirmation.
func (l *ConversationLedger) PendingProvisional() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, entry := range l.entries {
		if entry.Provisional {
			n++
		}
	}
	return n
}

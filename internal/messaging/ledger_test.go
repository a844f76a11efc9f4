package messaging

import (
	"testing"
	"time"
)

func TestLedgerEchoCollapsesProvisional(t *testing.T) {
	base := time.Now()
	ledger := NewConversationLedger(1, 0)

	ledger.AppendProvisional("local-1", "hello there", base)

	echo := &Message{
		ID:        "msg-1",
		SenderID:  1,
		Content:   "hello there",
		CreatedAt: base.Add(2 * time.Second),
	}
	if !ledger.ApplyConfirmed(echo) {
		t.Fatal("first delivery of the echo should apply")
	}

	entries := ledger.Entries()
	if len(entries) != 1 {
		t.Fatalf("echo should collapse into the provisional entry, got %d entries", len(entries))
	}
	if entries[0].Provisional {
		t.Error("confirmed entry should no longer be provisional")
	}
	if entries[0].Message.ID != "msg-1" {
		t.Errorf("entry should carry the authoritative id, got %q", entries[0].Message.ID)
	}
	if ledger.PendingProvisional() != 0 {
		t.Error("no provisional entries should remain")
	}
}

func TestLedgerRedeliveryIsNoOp(t *testing.T) {
	ledger := NewConversationLedger(1, 0)

	msg := &Message{ID: "msg-1", SenderID: 2, Content: "hi", CreatedAt: time.Now()}
	if !ledger.ApplyConfirmed(msg) {
		t.Fatal("first delivery should apply")
	}
	// Rejoining the room replays the broadcast.
	if ledger.ApplyConfirmed(msg) {
		t.Error("re-delivered message should be ignored")
	}
	if got := len(ledger.Entries()); got != 1 {
		t.Errorf("expected 1 entry after re-delivery, got %d", got)
	}
}

func TestLedgerEchoOutsideWindowAppends(t *testing.T) {
	base := time.Now()
	ledger := NewConversationLedger(1, 30*time.Second)

	ledger.AppendProvisional("local-1", "delayed", base)

	echo := &Message{
		ID:        "msg-1",
		SenderID:  1,
		Content:   "delayed",
		CreatedAt: base.Add(31 * time.Second),
	}
	ledger.ApplyConfirmed(echo)

	if got := len(ledger.Entries()); got != 2 {
		t.Fatalf("out-of-window echo should append, got %d entries", got)
	}
	if ledger.PendingProvisional() != 1 {
		t.Error("the stale provisional entry should remain unconfirmed")
	}
}

func TestLedgerMergeFetchedAfterReconnect(t *testing.T) {
	base := time.Now()
	ledger := NewConversationLedger(1, 0)

	before := &Message{ID: "msg-1", SenderID: 2, Content: "seen live", CreatedAt: base}
	ledger.ApplyConfirmed(before)

	// The fetched page overlaps what was already delivered live.
	missed := &Message{ID: "msg-2", SenderID: 2, Content: "missed offline", CreatedAt: base.Add(time.Minute)}
	applied := ledger.MergeFetched([]*Message{before, missed})

	if applied != 1 {
		t.Errorf("only the missed message should apply, got %d", applied)
	}
	if got := len(ledger.Entries()); got != 2 {
		t.Errorf("expected 2 entries after merge, got %d", got)
	}
}

func TestLedgerMarkRead(t *testing.T) {
	ledger := NewConversationLedger(1, 0)
	ledger.ApplyConfirmed(&Message{ID: "msg-1", SenderID: 1, Content: "hi", CreatedAt: time.Now()})

	readAt := time.Now()
	ledger.MarkRead("msg-1", readAt)

	entries := ledger.Entries()
	if !entries[0].Message.IsRead {
		t.Fatal("message should be marked read")
	}
	if entries[0].Message.ReadAt == nil || !entries[0].Message.ReadAt.Equal(readAt) {
		t.Error("read timestamp should be recorded")
	}
}

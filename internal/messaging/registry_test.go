package messaging

import (
	"encoding/json"
	"sync"
	"testing"
)

// stubConn is a Connection double that records what was sent to it.
type stubConn struct {
	mu     sync.Mutex
	id     string
	frames [][]byte
	closed bool
	full   bool
}

func newStubConn(id string) *stubConn {
	return &stubConn{id: id}
}

func (c *stubConn) ID() string { return c.id }

func (c *stubConn) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return false
	}
	c.frames = append(c.frames, data)
	return true
}

func (c *stubConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *stubConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *stubConn) events(t *testing.T) []Event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Event, 0, len(c.frames))
	for _, frame := range c.frames {
		var event Event
		if err := json.Unmarshal(frame, &event); err != nil {
			t.Fatalf("stub received malformed frame: %v", err)
		}
		out = append(out, event)
	}
	return out
}

func TestRegistryLastConnectionWins(t *testing.T) {
	registry := NewMemoryRegistry()

	first := newStubConn("conn-1")
	second := newStubConn("conn-2")

	if replaced := registry.Register(7, first); replaced != nil {
		t.Errorf("first registration should replace nothing, got %v", replaced.ID())
	}

	replaced := registry.Register(7, second)
	if replaced == nil || replaced.ID() != "conn-1" {
		t.Fatalf("second registration should replace conn-1, got %v", replaced)
	}
	if !first.isClosed() {
		t.Error("replaced connection should be closed")
	}

	current, ok := registry.Get(7)
	if !ok || current.ID() != "conn-2" {
		t.Errorf("current connection should be conn-2, got %v", current)
	}
	if registry.Len() != 1 {
		t.Errorf("expected 1 registered identity, got %d", registry.Len())
	}
}

func TestRegistryStaleUnregisterIsIgnored(t *testing.T) {
	registry := NewMemoryRegistry()

	first := newStubConn("conn-1")
	second := newStubConn("conn-2")

	registry.Register(7, first)
	registry.Register(7, second)

	// The replaced connection's deferred teardown fires after its
	// successor registered; it must not evict the successor.
	if registry.Unregister(7, first) {
		t.Error("stale unregister should report false")
	}
	if _, ok := registry.Get(7); !ok {
		t.Fatal("current connection was wrongly evicted by a stale unregister")
	}

	if !registry.Unregister(7, second) {
		t.Error("current connection should unregister successfully")
	}
	if registry.Len() != 0 {
		t.Errorf("expected empty registry, got %d", registry.Len())
	}
}

func TestRegistryAllSnapshots(t *testing.T) {
	registry := NewMemoryRegistry()
	registry.Register(1, newStubConn("a"))
	registry.Register(2, newStubConn("b"))

	if got := len(registry.All()); got != 2 {
		t.Errorf("expected snapshot of 2 connections, got %d", got)
	}
}

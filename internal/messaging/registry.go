// internal/messaging/registry.go

package messaging

import "sync"

// Connection is the transport-facing handle the registry hands out.
// Send is non-blocking; a false return means the peer's buffer is full
// and the connection should be considered dead.
type Connection interface {
	ID() string
	Send(data []byte) bool
	Close()
}

// Registry maps an identity to its current connection. The in-memory
// implementation below is the single-process default; the interface is
// the seam a shared external registry would plug into for horizontal
// scaling.
type Registry interface {
	Register(userID int64, conn Connection) (replaced Connection)
	Unregister(userID int64, conn Connection) bool
	Get(userID int64) (Connection, bool)
	Len() int
}

// MemoryRegistry is a mutex-guarded identity -> connection map. This is
// the only cross-request shared mutable state in the process, so every
// access goes through the lock.
type MemoryRegistry struct {
	mu      sync.RWMutex
	clients map[int64]Connection
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{clients: make(map[int64]Connection)}
}

// Register stores conn as the user's current connection. A new connection
// for an already-registered identity replaces the prior mapping
// (last-connection-wins); the replaced handle is closed and returned.
func (r *MemoryRegistry) Register(userID int64, conn Connection) Connection {
	r.mu.Lock()
	old := r.clients[userID]
	r.clients[userID] = conn
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return old
}

// Unregister removes the mapping only if conn is still the current
// connection. A stale disconnect from a replaced connection must not
// evict its successor.
func (r *MemoryRegistry) Unregister(userID int64, conn Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.clients[userID]
	if !ok || current.ID() != conn.ID() {
		return false
	}
	delete(r.clients, userID)
	return true
}

func (r *MemoryRegistry) Get(userID int64) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.clients[userID]
	return conn, ok
}

func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// All snapshots the live connections; used for shutdown.
func (r *MemoryRegistry) All() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Connection, 0, len(r.clients))
	for _, conn := range r.clients {
		conns = append(conns, conn)
	}
	return conns
}

// internal/messaging/presence.go

package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// PresenceStore keeps online status in Redis so processes other than the
// one holding the websocket can observe it. Keys carry a TTL and are
// refreshed on pong, so a crashed process's entries age out on their own.
type PresenceStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPresenceStore(client *redis.Client, ttl time.Duration) *PresenceStore {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("presence:%d", userID)
}

func (p *PresenceStore) SetOnline(ctx context.Context, userID int64) error {
	return p.client.Set(ctx, presenceKey(userID), time.Now().UTC().Format(time.RFC3339), p.ttl).Err()
}

// Refresh extends the TTL of an online marker.
func (p *PresenceStore) Refresh(ctx context.Context, userID int64) error {
	return p.client.Expire(ctx, presenceKey(userID), p.ttl).Err()
}

func (p *PresenceStore) SetOffline(ctx context.Context, userID int64) error {
	return p.client.Del(ctx, presenceKey(userID)).Err()
}

func (p *PresenceStore) IsOnline(ctx context.Context, userID int64) (bool, error) {
	n, err := p.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

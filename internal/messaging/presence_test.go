package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestPresence(t *testing.T, ttl time.Duration) (*PresenceStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewPresenceStore(client, ttl), mr
}

func TestPresenceOnlineOffline(t *testing.T) {
	presence, _ := newTestPresence(t, time.Minute)
	ctx := context.Background()

	online, err := presence.IsOnline(ctx, 7)
	if err != nil {
		t.Fatalf("IsOnline: %v", err)
	}
	if online {
		t.Fatal("user should start offline")
	}

	if err := presence.SetOnline(ctx, 7); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if online, _ = presence.IsOnline(ctx, 7); !online {
		t.Error("user should be online after SetOnline")
	}

	if err := presence.SetOffline(ctx, 7); err != nil {
		t.Fatalf("SetOffline: %v", err)
	}
	if online, _ = presence.IsOnline(ctx, 7); online {
		t.Error("user should be offline after SetOffline")
	}
}

func TestPresenceMarkerExpires(t *testing.T) {
	presence, mr := newTestPresence(t, time.Minute)
	ctx := context.Background()

	if err := presence.SetOnline(ctx, 7); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}

	// A crashed process never calls SetOffline; the marker ages out.
	mr.FastForward(time.Minute + time.Second)

	online, err := presence.IsOnline(ctx, 7)
	if err != nil {
		t.Fatalf("IsOnline: %v", err)
	}
	if online {
		t.Error("marker should expire without refreshes")
	}
}

func TestPresenceRefreshExtendsTTL(t *testing.T) {
	presence, mr := newTestPresence(t, time.Minute)
	ctx := context.Background()

	if err := presence.SetOnline(ctx, 7); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}

	mr.FastForward(45 * time.Second)
	if err := presence.Refresh(ctx, 7); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	mr.FastForward(45 * time.Second)

	online, err := presence.IsOnline(ctx, 7)
	if err != nil {
		t.Fatalf("IsOnline: %v", err)
	}
	if !online {
		t.Error("refreshed marker should survive past the original TTL")
	}
}

package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/auth"
	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/common/utils"
)

const wsTestSecret = "ws-test-secret"

func issueAccessToken(t *testing.T, userID int64) string {
	t.Helper()

	now := time.Now()
	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    userID,
		Username:  "wsuser",
		Type:      "access",
		ExpiresAt: now.Add(time.Hour).Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
	}, wsTestSecret)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestConnectHooksOutliveHandshake(t *testing.T) {
	registry := NewMemoryRegistry()
	hub := NewHub(registry, NewRouter(), nil)
	svc := NewService(newFakeMsgRepo(), &fakeMatches{}, &fakeMessageGate{}, nil, hub)

	type hookRun struct {
		userID int64
		ctxErr error
	}
	runs := make(chan hookRun, 1)
	hub.OnConnect(func(ctx context.Context, userID int64) {
		// The handshake handler has long since returned by now; the
		// hook's context must still be live so replay and presence
		// writes can use it.
		time.Sleep(50 * time.Millisecond)
		runs <- hookRun{userID: userID, ctxErr: ctx.Err()}
	})

	wsHandler := NewWSHandler(hub, svc, auth.NewMiddleware(wsTestSecret), nil)
	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + issueAccessToken(t, 7)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case run := <-runs:
		if run.userID != 7 {
			t.Errorf("hook ran for user %d, want 7", run.userID)
		}
		if run.ctxErr != nil {
			t.Errorf("hook context should outlive the handshake, got %v", run.ctxErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("connect hook never ran")
	}
}

func TestServeWSRejectsBadTokens(t *testing.T) {
	hub := NewHub(NewMemoryRegistry(), NewRouter(), nil)
	svc := NewService(newFakeMsgRepo(), &fakeMatches{}, &fakeMessageGate{}, nil, hub)
	wsHandler := NewWSHandler(hub, svc, auth.NewMiddleware(wsTestSecret), nil)

	for _, query := range []string{"", "?token=not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/ws"+query, nil)
		rec := httptest.NewRecorder()
		wsHandler.ServeWS(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("query %q: expected 401, got %d", query, rec.Code)
		}
	}
}

func TestClientSendAfterCloseIsSafe(t *testing.T) {
	client := NewClient(nil, nil, 7, nil)

	if !client.Send([]byte("queued")) {
		t.Fatal("send to an open client should succeed")
	}

	client.Close()
	// A handle fetched from the registry before a replacement closed it
	// may still be sent to; this must refuse, not panic.
	if client.Send([]byte("after close")) {
		t.Error("send after close should report failure")
	}

	// Repeated close is a no-op.
	client.Close()
}

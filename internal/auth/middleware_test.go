package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/common/utils"
)

const testSecret = "test-secret"

func issueToken(t *testing.T, tokenType string) string {
	t.Helper()

	now := time.Now()
	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    7,
		Email:     "user@example.com",
		Username:  "user7",
		Type:      tokenType,
		ExpiresAt: now.Add(time.Hour).Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
	}, testSecret)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	middleware := NewMiddleware(testSecret)

	var gotUserID int64
	var gotOK bool
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, gotOK = GetUserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matching/matches", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "access"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !gotOK || gotUserID != 7 {
		t.Errorf("handler should see user 7, got (%d, %v)", gotUserID, gotOK)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	middleware := NewMiddleware(testSecret)
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for rejected requests")
	}))

	cases := []struct {
		name      string
		authorize func(r *http.Request)
	}{
		{"missing header", func(r *http.Request) {}},
		{"malformed header", func(r *http.Request) {
			r.Header.Set("Authorization", "Token abc")
		}},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not-a-jwt")
		}},
		{"refresh token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+issueToken(t, "refresh"))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/matching/matches", nil)
			tc.authorize(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthenticateTokenForHandshake(t *testing.T) {
	middleware := NewMiddleware(testSecret)

	userID, err := middleware.AuthenticateToken(issueToken(t, "access"))
	if err != nil {
		t.Fatalf("AuthenticateToken: %v", err)
	}
	if userID != 7 {
		t.Errorf("expected user 7, got %d", userID)
	}

	if _, err := middleware.AuthenticateToken(issueToken(t, "refresh")); err != ErrInvalidTokenType {
		t.Errorf("refresh token should be rejected, got %v", err)
	}
}

func TestExtractTokenQueryFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=abc123", nil)
	if got := ExtractToken(req); got != "abc123" {
		t.Errorf("query fallback = %q, want %q", got, "abc123")
	}

	// The header, when present, wins over the query parameter.
	req.Header.Set("Authorization", "Bearer headertoken")
	if got := ExtractToken(req); got != "headertoken" {
		t.Errorf("header token = %q, want %q", got, "headertoken")
	}
}

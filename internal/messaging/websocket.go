// internal/messaging/websocket.go

package messaging

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/auth"
)

// WSHandler upgrades authenticated HTTP requests to websocket
// connections and hands them to the hub.
type WSHandler struct {
	hub        *Hub
	service    Service
	middleware *auth.Middleware
	upgrader   websocket.Upgrader
}

func NewWSHandler(hub *Hub, service Service, middleware *auth.Middleware, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:        hub,
		service:    service,
		middleware: middleware,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeWS handles GET /ws. Browsers cannot set headers on websocket
// requests, so the token is accepted from the Authorization header or
// the "token" query parameter.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.middleware.AuthenticateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("messaging: websocket upgrade for user %d: %v", userID, err)
		return
	}

	client := NewClient(h.hub, conn, userID, h.service)
	h.hub.Register(client)
	client.Start()
}

// originChecker allows any origin when the list is empty, which keeps
// local development working without configuration.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}

	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

package messaging

import (
	"github.com/gorilla/mux"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, wsHandler *WSHandler, authMiddleware *auth.Middleware) {
	// Websocket endpoint does its own token handling; the upgrade request
	// cannot carry middleware-injected context across the hijack.
	router.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	api := router.PathPrefix("/api/v1/messages").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.SendMessage).Methods("POST")
	api.HandleFunc("/conversation/{userId}", handler.GetConversation).Methods("GET")
	api.HandleFunc("/{id}/read", handler.MarkRead).Methods("POST")
	api.HandleFunc("/presence/{userId}", handler.GetPresence).Methods("GET")
}

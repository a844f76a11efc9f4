package platform

import (
	"github.com/gorilla/mux"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *NotificationHandler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/notifications").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.GetUnread).Methods("GET")
	api.HandleFunc("/{id}/dismiss", handler.Dismiss).Methods("POST")
}

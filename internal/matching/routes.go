package matching

import (
	"github.com/gorilla/mux"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Like / reject actions
	api.HandleFunc("/like/{userId}", handler.Like).Methods("POST")
	api.HandleFunc("/reject/{userId}", handler.Reject).Methods("POST")

	// Suggestions
	api.HandleFunc("/suggested", handler.Suggested).Methods("GET")

	// Matches
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/matches/{id}/unmatch", handler.Unmatch).Methods("POST")
}

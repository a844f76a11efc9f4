// internal/messaging/handlers.go

package messaging

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/auth"
	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/common/utils"
)

type Handler struct {
	service Service
	hub     *Hub
}

func NewHandler(service Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// SendMessage handles POST /messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.SendMessage(r.Context(), userID, &req)
	if err != nil {
		h.respondServiceError(w, err, "Failed to send message")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, msg)
}

// GetConversation handles GET /messages/conversation/{userId}
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otherID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || otherID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	var before time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		before, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid before timestamp, expected RFC3339")
			return
		}
	}

	messages, err := h.service.GetConversation(r.Context(), userID, otherID, limit, before)
	if err != nil {
		h.respondServiceError(w, err, "Failed to load conversation")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, messages)
}

// MarkRead handles POST /messages/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	messageID := mux.Vars(r)["id"]
	if messageID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	if err := h.service.MarkRead(r.Context(), userID, messageID); err != nil {
		h.respondServiceError(w, err, "Failed to mark message read")
		return
	}

	utils.MessageResponse(w, "Marked read", http.StatusOK)
}

// GetPresence handles GET /presence/{userId}
func (h *Handler) GetPresence(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.GetUserIDFromContext(r.Context()); !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otherID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || otherID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	online := h.hub.IsUserOnline(otherID)
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"online": online})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidRecipient):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrMatchRequired), errors.Is(err, ErrNotRecipient), errors.Is(err, ErrFeatureRestricted):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrMessageNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

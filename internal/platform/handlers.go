// internal/platform/handlers.go

package platform

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/auth"
	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/common/utils"
)

// NotificationHandler serves the persisted notification feed.
type NotificationHandler struct {
	feed *NotificationFeed
}

func NewNotificationHandler(feed *NotificationFeed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

func (h *NotificationHandler) GetUnread(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.feed.Unread(r.Context(), userID, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	if entries == nil {
		entries = []FeedEntry{}
	}

	utils.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || entryID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.feed.Dismiss(r.Context(), userID, entryID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to dismiss notification")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// internal/matching/handlers.go

package matching

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/auth"
	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	targetID, err := pathUserID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid target user ID")
		return
	}

	result, err := h.service.Like(r.Context(), userID, targetID)
	if err != nil {
		respondServiceError(w, err, "Failed to process like")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	targetID, err := pathUserID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid target user ID")
		return
	}

	var dto RejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.service.Reject(r.Context(), userID, targetID, dto.DurationDays)
	if err != nil {
		respondServiceError(w, err, "Failed to reject user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"rejection": rec})
}

func (h *Handler) Suggested(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	suggestions, err := h.service.Suggestions(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err, "Failed to build suggestions")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, suggestions)
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matches, err := h.service.GetMatches(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, matches)
}

func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	if err := h.service.Unmatch(r.Context(), matchID, userID); err != nil {
		respondServiceError(w, err, "Failed to unmatch")
		return
	}

	utils.MessageResponse(w, "Unmatched", http.StatusOK)
}

func pathUserID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
}

func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidIdentifier):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrFeatureRestricted):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrTransientConflict):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrProfileNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

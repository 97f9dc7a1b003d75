package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

func (h *Handler) chatHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.services.Chat.History(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if history == nil {
		history = []models.ChatMessage{}
	}

	_, _ = utils.WriteJSON(w, history, http.StatusOK)
}

// clearChatHistory deletes the history. An optional ?keep=N query retains
// the newest N entries.
func (h *Handler) clearChatHistory(w http.ResponseWriter, r *http.Request) {
	keep := 0
	if raw := r.URL.Query().Get("keep"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.WriteJSONError(w, "keep must be a non-negative integer", "validation_failed", http.StatusBadRequest)
			return
		}
		keep = parsed
	}

	if err := h.services.Chat.ClearHistory(r.Context(), keep); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) chatSend(w http.ResponseWriter, r *http.Request) {
	var req models.ChatSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", "validation_failed", http.StatusBadRequest)
		return
	}

	resp, err := h.services.Chat.Send(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) listActivity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.WriteJSONError(w, "limit must be a non-negative integer", "validation_failed", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	activity, err := h.services.Activity.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if activity == nil {
		activity = []models.ActivityEntry{}
	}

	_, _ = utils.WriteJSON(w, activity, http.StatusOK)
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keyport-app/agent/internal/service"
	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

func (h *Handler) listCredentials(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.CredentialFilter{
		Tag:           query.Get("tag"),
		FavoritesOnly: query.Get("favorites") == "true",
		Status:        query.Get("status"),
	}

	credentials, err := h.services.Credentials.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if credentials == nil {
		credentials = []models.Credential{}
	}

	_, _ = utils.WriteJSON(w, credentials, http.StatusOK)
}

func (h *Handler) createCredential(w http.ResponseWriter, r *http.Request) {
	var credential models.Credential
	if err := json.NewDecoder(r.Body).Decode(&credential); err != nil {
		utils.WriteJSONError(w, "invalid request body", "validation_failed", http.StatusBadRequest)
		return
	}

	created, err := h.services.Credentials.Create(r.Context(), credential)
	if err != nil {
		h.writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) getCredential(w http.ResponseWriter, r *http.Request) {
	credential, err := h.services.Credentials.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, credential, http.StatusOK)
}

func (h *Handler) updateCredential(w http.ResponseWriter, r *http.Request) {
	var change service.CredentialChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		utils.WriteJSONError(w, "invalid request body", "validation_failed", http.StatusBadRequest)
		return
	}

	updated, err := h.services.Credentials.Update(r.Context(), chi.URLParam(r, "id"), change)
	if err != nil {
		h.writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) deleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Credentials.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

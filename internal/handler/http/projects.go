package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.services.Projects.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	_, _ = utils.WriteJSON(w, projects, http.StatusOK)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		utils.WriteJSONError(w, "invalid request body", "validation_failed", http.StatusBadRequest)
		return
	}

	created, err := h.services.Projects.Create(r.Context(), project)
	if err != nil {
		h.writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.services.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, project, http.StatusOK)
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		utils.WriteJSONError(w, "invalid request body", "validation_failed", http.StatusBadRequest)
		return
	}
	project.ID = chi.URLParam(r, "id")

	updated, err := h.services.Projects.Update(r.Context(), project)
	if err != nil {
		h.writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// projectEnv renders the project's env template with decrypted credential
// values and returns it as plain text, ready to be written to an .env file.
func (h *Handler) projectEnv(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.services.Projects.RenderEnv(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rendered))
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/keyport-app/agent/internal/events"
	"github.com/keyport-app/agent/internal/license"
	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	utils.WriteJSONError(w, err.Error(), codeFromError(err), statusFromError(err))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:  "ok",
		Mode:    h.mode.Get(),
		Version: h.version,
	}
	if installed, ok := h.bundle.Installed(); ok {
		resp.BundleVersion = installed.Version
		resp.BundleHash = installed.Hash
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) getMode(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSON(w, models.ModeRequest{Mode: h.mode.Get()}, http.StatusOK)
}

func (h *Handler) setMode(w http.ResponseWriter, r *http.Request) {
	var req models.ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", "validation_failed", http.StatusBadRequest)
		return
	}

	if err := h.mode.Set(req.Mode); err != nil {
		utils.WriteJSONError(w, err.Error(), "validation_failed", http.StatusBadRequest)
		return
	}

	_, _ = utils.WriteJSON(w, models.ModeRequest{Mode: h.mode.Get()}, http.StatusOK)
}

func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSON(w, h.bundle.Status(), http.StatusOK)
}

func (h *Handler) syncNow(w http.ResponseWriter, r *http.Request) {
	if err := h.bundle.CheckAndSync(r.Context()); err != nil {
		logger.FromRequest(r).Warn().Err(err).Msg("manual sync failed")
		h.writeError(w, err)
		return
	}

	status := h.bundle.Status()
	if status.State == models.SyncStateSynced {
		if installed, ok := h.bundle.Installed(); ok {
			h.services.Activity.Record(r.Context(), models.ActivityBundleSynced, installed.Version)
		}
	}

	_, _ = utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", "validation_failed", http.StatusBadRequest)
		return
	}

	lic, err := h.license.Activate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.services.Activity.Record(r.Context(), models.ActivityLogin, lic.Email)
	h.bus.Publish(events.TypeSessionChanged, lic.Summary())

	_, _ = utils.WriteJSON(w, lic.Summary(), http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	lic, _ := utils.GetLicenseFromContext(r.Context())

	// remote deactivation is best effort, local clearing always happens
	if err := h.license.Deactivate(r.Context(), lic.Key); err != nil {
		logger.FromRequest(r).Warn().Err(err).Msg("remote deactivation failed, license cleared locally")
	}

	h.services.Activity.Record(r.Context(), models.ActivityLogout, lic.Email)
	h.bus.Publish(events.TypeSessionChanged, nil)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	lic, ok := h.license.Load()
	if !ok {
		h.writeError(w, license.ErrNoLicense)
		return
	}

	_, _ = utils.WriteJSON(w, lic.Summary(), http.StatusOK)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	lic, _ := utils.GetLicenseFromContext(r.Context())

	refreshed, err := h.license.Validate(r.Context(), lic.Key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.bus.Publish(events.TypeSessionChanged, refreshed.Summary())

	_, _ = utils.WriteJSON(w, refreshed.Summary(), http.StatusOK)
}

// events streams bus notifications to the UI as server-sent events. Each
// connected UI surface holds one of these open for its lifetime.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteJSONError(w, "streaming not supported", "internal_error", http.StatusInternalServerError)
		return
	}

	// subscribe before the headers go out so no event published after the
	// client sees the stream open can be missed
	ch, cancel := h.bus.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

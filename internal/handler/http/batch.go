package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

// batchCall is one sub-call of a batch request.
type batchCall struct {
	Procedure string `json:"procedure"`
}

// batchResult is the local answer to one sub-call.
type batchResult struct {
	Procedure string `json:"procedure"`
	Result    any    `json:"result"`
}

// localProcedures is the fixed set of sub-calls answerable from local state.
// A batch is short-circuited only when every sub-call is in this set;
// otherwise the whole batch is forwarded unmodified. Partial local/partial
// remote splitting is deliberately not supported.
var localProcedures = map[string]struct{}{
	"desktop.health":      {},
	"desktop.mode":        {},
	"desktop.session":     {},
	"desktop.sync-status": {},
}

func (h *Handler) batch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteJSONError(w, "failed to read request body", "validation_failed", http.StatusBadRequest)
		return
	}

	var calls []batchCall
	if err := json.Unmarshal(body, &calls); err != nil || !h.allLocal(calls) {
		// restore the body and hand the whole batch to the remote service
		r.Body = io.NopCloser(bytes.NewReader(body))
		h.forward.ServeHTTP(w, r)
		return
	}

	results := make([]batchResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, batchResult{
			Procedure: call.Procedure,
			Result:    h.answerLocal(call.Procedure),
		})
	}

	_, _ = utils.WriteJSON(w, results, http.StatusOK)
}

func (h *Handler) allLocal(calls []batchCall) bool {
	if len(calls) == 0 {
		return false
	}
	for _, call := range calls {
		if _, ok := localProcedures[call.Procedure]; !ok {
			return false
		}
	}
	return true
}

func (h *Handler) answerLocal(procedure string) any {
	switch procedure {
	case "desktop.health":
		resp := models.HealthResponse{Status: "ok", Mode: h.mode.Get(), Version: h.version}
		if installed, ok := h.bundle.Installed(); ok {
			resp.BundleVersion = installed.Version
			resp.BundleHash = installed.Hash
		}
		return resp
	case "desktop.mode":
		return models.ModeRequest{Mode: h.mode.Get()}
	case "desktop.session":
		lic, ok := h.license.Load()
		if !ok {
			return nil
		}
		return lic.Summary()
	case "desktop.sync-status":
		return h.bundle.Status()
	default:
		return nil
	}
}

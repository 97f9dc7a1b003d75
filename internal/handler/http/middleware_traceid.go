// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// traceIDHeader carries the per-request correlation id. Local UI callers
// rarely send one, so the agent usually mints its own; the id is echoed on
// the response and stamped on every log line the request produces.
const traceIDHeader = "X-Trace-ID"

// withTraceID attaches a request-scoped child logger carrying the trace id
// to the request context. Handlers pick it up via [logger.FromRequest].
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		requestLogger := h.logger.GetChildLogger()
		requestLogger.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("trace_id", traceID)
		})

		w.Header().Set(traceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(requestLogger.WithContext(r.Context())))
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

package http

import (
	"context"
	"net/http"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/utils"
)

// auth gates local data endpoints on a cached license. Absence of a license
// fails closed with 401; downstream handlers can read the license from the
// request context via [utils.GetLicenseFromContext].
//
// No remote call happens here: the cached license is the authorization
// basis for local operation, online or offline. Revocation is enforced by
// the validate path clearing the cache.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		lic, ok := h.license.Load()
		if !ok {
			log.Warn().Str("uri", r.RequestURI).Msg("rejected request without license")
			utils.WriteJSONError(w, "no valid license, please log in", "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.LicenseCtxKey, lic)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

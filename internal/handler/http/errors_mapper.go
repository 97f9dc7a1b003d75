package http

import (
	"errors"
	"net/http"

	"github.com/keyport-app/agent/internal/bundle"
	"github.com/keyport-app/agent/internal/crypto"
	"github.com/keyport-app/agent/internal/license"
	"github.com/keyport-app/agent/internal/service"
	"github.com/keyport-app/agent/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrValidation:        http.StatusBadRequest,
	service.ErrNotAuthorized:     http.StatusUnauthorized,
	service.ErrCreditsExhausted:  http.StatusPaymentRequired,
	service.ErrRemoteUnavailable: http.StatusBadGateway,

	license.ErrInvalidCredentials: http.StatusUnauthorized,
	license.ErrRejected:           http.StatusUnauthorized,
	license.ErrNoLicense:          http.StatusUnauthorized,
	license.ErrRemoteUnavailable:  http.StatusBadGateway,

	bundle.ErrRemoteUnavailable: http.StatusBadGateway,
	bundle.ErrCorruptArchive:    http.StatusBadGateway,
	bundle.ErrSyncInProgress:    http.StatusConflict,

	store.ErrCredentialNotFound: http.StatusNotFound,
	store.ErrProjectNotFound:    http.StatusNotFound,
	store.ErrSettingNotFound:    http.StatusNotFound,

	store.ErrBuildingSQLQuery: http.StatusInternalServerError,
	store.ErrExecutingQuery:   http.StatusInternalServerError,
	store.ErrScanningRow:      http.StatusInternalServerError,
	store.ErrScanningRows:     http.StatusInternalServerError,

	crypto.ErrIntegrity: http.StatusInternalServerError,
}

// errorCodeMap provides the machine-readable tag for the structured error
// body. Errors without an entry fall back to "internal_error".
var errorCodeMap = map[error]string{
	service.ErrValidation:         "validation_failed",
	service.ErrNotAuthorized:      "unauthorized",
	service.ErrCreditsExhausted:   "credits_exhausted",
	service.ErrRemoteUnavailable:  "remote_unreachable",
	license.ErrInvalidCredentials: "invalid_credentials",
	license.ErrRejected:           "license_rejected",
	license.ErrNoLicense:          "unauthorized",
	license.ErrRemoteUnavailable:  "remote_unreachable",
	bundle.ErrRemoteUnavailable:   "remote_unreachable",
	bundle.ErrCorruptArchive:      "bundle_corrupt",
	bundle.ErrSyncInProgress:      "sync_in_progress",
	store.ErrCredentialNotFound:   "not_found",
	store.ErrProjectNotFound:      "not_found",
	store.ErrSettingNotFound:      "not_found",
	crypto.ErrIntegrity:           "integrity_error",
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

func codeFromError(err error) string {
	for target, code := range errorCodeMap {
		if errors.Is(err, target) {
			return code
		}
	}
	return "internal_error"
}

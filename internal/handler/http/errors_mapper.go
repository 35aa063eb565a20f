// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/service"
	"github.com/MKhiriev/go-sync-engine/internal/store"
)

// errorStatuses is checked in order; the first match wins.
var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{ErrInvalidCursor, http.StatusBadRequest},
	{ErrNoUserID, http.StatusBadRequest},

	{service.ErrTokenIsExpired, http.StatusUnauthorized},
	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},

	{store.ErrBatchNotFound, http.StatusNotFound},
	{store.ErrConflictNotFound, http.StatusNotFound},

	{store.ErrVersionConflict, http.StatusConflict},
	{service.ErrBatchInProgress, http.StatusConflict},
	{service.ErrBatchAlreadyFailed, http.StatusConflict},
	{service.ErrConflictAlreadyResolved, http.StatusConflict},

	{service.ErrStorage, http.StatusServiceUnavailable},
}

func statusFromError(err error) int {
	for _, candidate := range errorStatuses {
		if errors.Is(err, candidate.err) {
			return candidate.status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and answers with the matching status. Messages of
// server-side failures are not leaked to the caller.
func writeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	log := logger.FromRequest(r)
	status := statusFromError(err)

	if status >= http.StatusInternalServerError {
		log.Err(err).Str("func", fn).Int("status", status).Msg("request failed")
		http.Error(w, http.StatusText(status), status)
		return
	}

	log.Warn().Err(err).Str("func", fn).Int("status", status).Msg("request rejected")
	http.Error(w, err.Error(), status)
}

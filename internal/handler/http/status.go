// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/utils"
)

func (h *Handler) getSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		writeError(w, r, "*Handler.getSyncStatus", ErrNoUserID)
		return
	}

	since, err := parseCursor(r.URL.Query().Get("since"))
	if err != nil {
		writeError(w, r, "*Handler.getSyncStatus", err)
		return
	}

	status, err := h.services.StatusService.GetSyncStatus(ctx, userID, r.URL.Query().Get("device_id"), since)
	if err != nil {
		writeError(w, r, "*Handler.getSyncStatus", err)
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

// parseCursor reads the optional "since" parameter. An empty value means a
// full pull.
func parseCursor(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	since, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}

	return &since, nil
}

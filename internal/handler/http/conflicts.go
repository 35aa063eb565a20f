// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) getConflicts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		writeError(w, r, "*Handler.getConflicts", ErrNoUserID)
		return
	}

	conflicts, err := h.services.ConflictService.GetConflicts(ctx, userID)
	if err != nil {
		writeError(w, r, "*Handler.getConflicts", err)
		return
	}
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}

	utils.WriteJSON(w, conflicts, http.StatusOK)
}

func (h *Handler) resolveConflict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		writeError(w, r, "*Handler.resolveConflict", ErrNoUserID)
		return
	}

	var request models.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.resolveConflict").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	conflictID := chi.URLParam(r, "conflictID")
	if err := h.services.ConflictService.ResolveConflict(ctx, userID, conflictID, request); err != nil {
		writeError(w, r, "*Handler.resolveConflict", err)
		return
	}

	log.Debug().Str("conflict_id", conflictID).Str("resolution", string(request.Resolution)).Msg("conflict resolved")
	w.WriteHeader(http.StatusNoContent)
}

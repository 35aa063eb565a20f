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

func (h *Handler) queueSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		writeError(w, r, "*Handler.queueSync", ErrNoUserID)
		return
	}

	var request models.NewBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.queueSync").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	batch, err := h.services.SyncService.QueueSync(ctx, userID, request)
	if err != nil {
		writeError(w, r, "*Handler.queueSync", err)
		return
	}

	utils.WriteJSON(w, batch, http.StatusAccepted)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		writeError(w, r, "*Handler.sync", ErrNoUserID)
		return
	}

	var request models.NewBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.sync").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	result, err := h.services.SyncService.Sync(ctx, userID, request)
	writeProcessResult(w, r, "*Handler.sync", result, err)
}

func (h *Handler) processBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		writeError(w, r, "*Handler.processBatch", ErrNoUserID)
		return
	}

	result, err := h.services.SyncService.ProcessBatch(ctx, userID, chi.URLParam(r, "batchID"))
	writeProcessResult(w, r, "*Handler.processBatch", result, err)
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		writeError(w, r, "*Handler.getBatch", ErrNoUserID)
		return
	}

	batch, err := h.services.SyncService.GetBatch(ctx, userID, chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, r, "*Handler.getBatch", err)
		return
	}

	utils.WriteJSON(w, batch, http.StatusOK)
}

// writeProcessResult answers with the result of a processing call. A failed
// batch still carries its per-item outcomes, so they are sent along with the
// error status.
func writeProcessResult(w http.ResponseWriter, r *http.Request, fn string, result models.ProcessResult, err error) {
	if err == nil {
		utils.WriteJSON(w, result, http.StatusOK)
		return
	}

	if result.Status == models.BatchStatusFailed {
		logger.FromRequest(r).Err(err).Str("func", fn).Str("batch_id", result.BatchID).Msg("batch failed")
		utils.WriteJSON(w, result, statusFromError(err))
		return
	}

	writeError(w, r, fn, err)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/MKhiriev/go-sync-engine/models"
)

func (h *Handler) QueueSync(ctx context.Context, in *models.NewBatchRequest) (*models.SyncBatch, error) {
	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		return nil, ErrNoUserID
	}

	batch, err := h.services.SyncService.QueueSync(ctx, userID, *in)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (h *Handler) Sync(ctx context.Context, in *models.NewBatchRequest) (*models.ProcessResult, error) {
	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		return nil, ErrNoUserID
	}

	result, err := h.services.SyncService.Sync(ctx, userID, *in)
	return processResult(ctx, "*Handler.Sync", result, err)
}

func (h *Handler) ProcessBatch(ctx context.Context, in *BatchRequest) (*models.ProcessResult, error) {
	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		return nil, ErrNoUserID
	}

	result, err := h.services.SyncService.ProcessBatch(ctx, userID, in.BatchID)
	return processResult(ctx, "*Handler.ProcessBatch", result, err)
}

func (h *Handler) GetBatch(ctx context.Context, in *BatchRequest) (*models.SyncBatch, error) {
	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		return nil, ErrNoUserID
	}

	batch, err := h.services.SyncService.GetBatch(ctx, userID, in.BatchID)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// processResult drops the outcomes of a failed batch: a gRPC call carries
// either a response or a status. The batch stays readable via GetBatch.
func processResult(ctx context.Context, fn string, result models.ProcessResult, err error) (*models.ProcessResult, error) {
	if err != nil {
		if result.Status == models.BatchStatusFailed {
			logger.FromContext(ctx).Err(err).Str("func", fn).Str("batch_id", result.BatchID).Msg("batch failed")
		}
		return nil, err
	}
	return &result, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"

	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/MKhiriev/go-sync-engine/models"
)

func (h *Handler) GetSyncStatus(ctx context.Context, in *SyncStatusRequest) (*models.SyncStatus, error) {
	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		return nil, ErrNoUserID
	}

	status, err := h.services.StatusService.GetSyncStatus(ctx, userID, in.DeviceID, in.Since)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"

	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/MKhiriev/go-sync-engine/models"
)

func (h *Handler) GetConflicts(ctx context.Context, _ *ConflictsRequest) (*ConflictsResponse, error) {
	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		return nil, ErrNoUserID
	}

	conflicts, err := h.services.ConflictService.GetConflicts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	return &ConflictsResponse{Conflicts: conflicts}, nil
}

func (h *Handler) ResolveConflict(ctx context.Context, in *ResolveConflictRequest) (*ResolveConflictResponse, error) {
	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		return nil, ErrNoUserID
	}

	if err := h.services.ConflictService.ResolveConflict(ctx, userID, in.ConflictID, in.Resolution); err != nil {
		return nil, err
	}
	return &ResolveConflictResponse{}, nil
}

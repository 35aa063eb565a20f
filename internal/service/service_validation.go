// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/validators"
	"github.com/MKhiriev/go-sync-engine/models"
)

// SyncValidationService rejects malformed intake requests before they reach
// the wrapped SyncService. Nothing is persisted for a rejected request.
type SyncValidationService struct {
	inner     SyncService
	validator validators.Validator
}

func NewSyncValidationService(validator validators.Validator) SyncServiceWrapper {
	return &SyncValidationService{validator: validator}
}

func (v *SyncValidationService) Wrap(inner SyncService) SyncService {
	v.inner = inner
	return v
}

func (v *SyncValidationService) QueueSync(ctx context.Context, userID int64, request models.NewBatchRequest) (models.SyncBatch, error) {
	if err := v.validateRequest(ctx, userID, request); err != nil {
		return models.SyncBatch{}, err
	}
	return v.inner.QueueSync(ctx, userID, request)
}

func (v *SyncValidationService) Sync(ctx context.Context, userID int64, request models.NewBatchRequest) (models.ProcessResult, error) {
	if err := v.validateRequest(ctx, userID, request); err != nil {
		return models.ProcessResult{}, err
	}
	return v.inner.Sync(ctx, userID, request)
}

func (v *SyncValidationService) ProcessBatch(ctx context.Context, userID int64, batchID string) (models.ProcessResult, error) {
	if userID <= 0 {
		return models.ProcessResult{}, validationError(validators.ErrInvalidUserID)
	}
	return v.inner.ProcessBatch(ctx, userID, batchID)
}

func (v *SyncValidationService) GetBatch(ctx context.Context, userID int64, batchID string) (models.SyncBatch, error) {
	if userID <= 0 {
		return models.SyncBatch{}, validationError(validators.ErrInvalidUserID)
	}
	return v.inner.GetBatch(ctx, userID, batchID)
}

func (v *SyncValidationService) ProcessPending(ctx context.Context, limit int) (int, error) {
	return v.inner.ProcessPending(ctx, limit)
}

func (v *SyncValidationService) validateRequest(ctx context.Context, userID int64, request models.NewBatchRequest) error {
	if userID <= 0 {
		return validationError(validators.ErrInvalidUserID)
	}
	if err := v.validator.Validate(ctx, request); err != nil {
		return validationError(err)
	}
	return nil
}

// ConflictValidationService checks resolution requests.
type ConflictValidationService struct {
	inner     ConflictService
	validator validators.Validator
}

func NewConflictValidationService(validator validators.Validator) ConflictServiceWrapper {
	return &ConflictValidationService{validator: validator}
}

func (v *ConflictValidationService) Wrap(inner ConflictService) ConflictService {
	v.inner = inner
	return v
}

func (v *ConflictValidationService) GetConflicts(ctx context.Context, userID int64) ([]models.Conflict, error) {
	if userID <= 0 {
		return nil, validationError(validators.ErrInvalidUserID)
	}
	return v.inner.GetConflicts(ctx, userID)
}

func (v *ConflictValidationService) ResolveConflict(ctx context.Context, userID int64, conflictID string, request models.ResolveRequest) error {
	if userID <= 0 {
		return validationError(validators.ErrInvalidUserID)
	}
	if err := v.validator.Validate(ctx, request); err != nil {
		return validationError(err)
	}
	return v.inner.ResolveConflict(ctx, userID, conflictID, request)
}

// StatusValidationService checks status requests.
type StatusValidationService struct {
	inner StatusService
}

func NewStatusValidationService() StatusServiceWrapper {
	return &StatusValidationService{}
}

func (v *StatusValidationService) Wrap(inner StatusService) StatusService {
	v.inner = inner
	return v
}

func (v *StatusValidationService) GetSyncStatus(ctx context.Context, userID int64, deviceID string, lastSyncedAt *time.Time) (models.SyncStatus, error) {
	if userID <= 0 {
		return models.SyncStatus{}, validationError(validators.ErrInvalidUserID)
	}
	if deviceID == "" {
		return models.SyncStatus{}, validationError(validators.ErrEmptyDeviceID)
	}
	return v.inner.GetSyncStatus(ctx, userID, deviceID, lastSyncedAt)
}

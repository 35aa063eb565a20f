// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-sync-engine/models"
)

// SyncService accepts client batches and applies them to the record store.
type SyncService interface {
	// QueueSync validates and stores a batch as pending without applying it.
	QueueSync(ctx context.Context, userID int64, request models.NewBatchRequest) (models.SyncBatch, error)

	// Sync queues a batch and processes it immediately.
	Sync(ctx context.Context, userID int64, request models.NewBatchRequest) (models.ProcessResult, error)

	// ProcessBatch moves a pending batch through processing to a terminal
	// state. Processing a completed batch returns its stored result.
	ProcessBatch(ctx context.Context, userID int64, batchID string) (models.ProcessResult, error)

	GetBatch(ctx context.Context, userID int64, batchID string) (models.SyncBatch, error)

	// ProcessPending processes up to limit pending batches of any user and
	// reports how many reached a terminal state.
	ProcessPending(ctx context.Context, limit int) (int, error)
}

// ConflictService lists and resolves conflicts.
type ConflictService interface {
	GetConflicts(ctx context.Context, userID int64) ([]models.Conflict, error)
	ResolveConflict(ctx context.Context, userID int64, conflictID string, request models.ResolveRequest) error
}

// StatusService reports what changed since a device last synced.
type StatusService interface {
	GetSyncStatus(ctx context.Context, userID int64, deviceID string, lastSyncedAt *time.Time) (models.SyncStatus, error)
}

// AppInfoService exposes the server version and intake limits.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetAppInfo(ctx context.Context) models.AppInfo
}

// AuthService issues and verifies bearer tokens.
type AuthService interface {
	CreateToken(ctx context.Context, userID int64, ttl time.Duration) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// SyncServiceWrapper decorates a SyncService, e.g. with validation.
type SyncServiceWrapper interface {
	Wrap(SyncService) SyncService
}

// ConflictServiceWrapper decorates a ConflictService.
type ConflictServiceWrapper interface {
	Wrap(ConflictService) ConflictService
}

// StatusServiceWrapper decorates a StatusService.
type StatusServiceWrapper interface {
	Wrap(StatusService) StatusService
}

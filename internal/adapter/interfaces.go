// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"time"

	"github.com/MKhiriev/go-sync-engine/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/sync_adapter_mock.go -package=mock

// SyncAdapter is the client side of the sync API.
type SyncAdapter interface {
	// QueueSync submits a batch without processing it.
	QueueSync(ctx context.Context, request models.NewBatchRequest) (models.SyncBatch, error)

	// Sync submits a batch and waits for its result. A batch that failed on
	// the server is returned together with an error wrapping [ErrBatchFailed].
	Sync(ctx context.Context, request models.NewBatchRequest) (models.ProcessResult, error)

	ProcessBatch(ctx context.Context, batchID string) (models.ProcessResult, error)
	GetBatch(ctx context.Context, batchID string) (models.SyncBatch, error)

	GetConflicts(ctx context.Context) ([]models.Conflict, error)
	ResolveConflict(ctx context.Context, conflictID string, request models.ResolveRequest) error

	// GetSyncStatus pulls changes for deviceID. A nil since asks for
	// everything.
	GetSyncStatus(ctx context.Context, deviceID string, since *time.Time) (models.SyncStatus, error)

	GetServerInfo(ctx context.Context) (models.AppInfo, error)
}

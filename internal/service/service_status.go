// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/store"
	"github.com/MKhiriev/go-sync-engine/models"
)

type statusService struct {
	store store.Store
	now   func() time.Time

	overlap time.Duration

	logger *logger.Logger
}

func NewStatusService(storage store.Store, cfg config.Sync, logger *logger.Logger) StatusService {
	overlap := cfg.StatusCursorOverlap
	if overlap <= 0 {
		overlap = config.DefaultStatusCursorOverlap
	}

	return &statusService{
		store:   storage,
		now:     serverNow,
		overlap: overlap,
		logger:  logger,
	}
}

// GetSyncStatus returns every record changed after lastSyncedAt together
// with the server time the device must send back on its next pull.
//
// The server time is read before the query, so a write racing with the
// query is delivered again on the next pull rather than skipped. It is also
// held back behind the oldest transaction still open on the database: a
// batch stamps its changes when it applies them but publishes them only on
// commit.
func (s *statusService) GetSyncStatus(ctx context.Context, userID int64, deviceID string, lastSyncedAt *time.Time) (models.SyncStatus, error) {
	log := logger.FromContext(ctx)

	serverTime, err := s.cursorTime(ctx)
	if err != nil {
		return models.SyncStatus{}, storageError(err)
	}

	var since *time.Time
	if lastSyncedAt != nil {
		utc := lastSyncedAt.UTC()
		since = &utc
	}

	records, err := s.store.Records().GetChangedRecords(ctx, userID, since)
	if err != nil {
		return models.SyncStatus{}, storageError(err)
	}

	openConflicts, err := s.store.Conflicts().CountOpenConflicts(ctx, userID)
	if err != nil {
		return models.SyncStatus{}, storageError(err)
	}

	pendingBatches, err := s.store.Batches().CountBatches(ctx, userID, models.BatchStatusPending)
	if err != nil {
		return models.SyncStatus{}, storageError(err)
	}

	err = s.store.Devices().UpsertCursor(ctx, models.DeviceCursor{
		UserID:       userID,
		DeviceID:     deviceID,
		LastSyncedAt: serverTime,
	})
	if err != nil {
		return models.SyncStatus{}, storageError(err)
	}

	log.Debug().
		Str("func", "statusService.GetSyncStatus").
		Int64("user_id", userID).
		Str("device_id", deviceID).
		Int("records", len(records)).
		Msg("sync status served")

	return models.SyncStatus{
		UserID:         userID,
		DeviceID:       deviceID,
		Records:        records,
		ServerTime:     serverTime,
		OpenConflicts:  openConflicts,
		PendingBatches: pendingBatches,
	}, nil
}

// cursorTime returns the server time handed out as the next pull cursor.
// Must be called before the changed records are read.
func (s *statusService) cursorTime(ctx context.Context) (time.Time, error) {
	now := s.now()

	horizon, err := s.store.WriteHorizon(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if horizon == nil {
		return now, nil
	}

	held := horizon.Add(-s.overlap).UTC().Truncate(time.Microsecond)
	if !held.Before(now) {
		return now, nil
	}

	logger.FromContext(ctx).Debug().
		Str("func", "statusService.cursorTime").
		Time("open_tx_started_at", *horizon).
		Time("server_time", held).
		Msg("cursor held back behind open transaction")

	return held, nil
}

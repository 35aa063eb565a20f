// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/store"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/sethvargo/go-retry"
)

// conflictService implements the conflict resolver.
//
// Client and manual resolutions re-read the record and write against its
// current version, never the version captured at detection. The record
// write and the open -> resolved transition share one transaction, so a
// lost race leaves the conflict open.
type conflictService struct {
	store store.Store
	now   func() time.Time

	maxAttempts  int
	retryBackoff time.Duration

	logger *logger.Logger
}

func NewConflictService(storage store.Store, cfg config.Sync, logger *logger.Logger) ConflictService {
	backoff := cfg.ResolveRetryBackoff
	if backoff <= 0 {
		backoff = config.DefaultResolveRetryBackoff
	}

	return &conflictService{
		store:        storage,
		now:          serverNow,
		maxAttempts:  max(cfg.ResolveMaxAttempts, 1),
		retryBackoff: backoff,
		logger:       logger,
	}
}

func (c *conflictService) GetConflicts(ctx context.Context, userID int64) ([]models.Conflict, error) {
	conflicts, err := c.store.Conflicts().ListOpenConflicts(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	return conflicts, nil
}

// ResolveConflict applies request to an open conflict. With
// request.MaxAttempts above one, a resolution that loses the version race is
// re-attempted with exponential backoff, up to the configured cap.
func (c *conflictService) ResolveConflict(ctx context.Context, userID int64, conflictID string, request models.ResolveRequest) error {
	log := logger.FromContext(ctx)

	attempts := min(max(request.MaxAttempts, 1), c.maxAttempts)
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(c.retryBackoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.resolveOnce(ctx, userID, conflictID, request)
		if errors.Is(err, store.ErrVersionConflict) {
			log.Debug().
				Str("func", "conflictService.ResolveConflict").
				Str("conflict_id", conflictID).
				Int("attempt", attempt).
				Msg("resolution lost the version race")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return storageError(err)
	}

	log.Info().
		Str("func", "conflictService.ResolveConflict").
		Str("conflict_id", conflictID).
		Str("resolution", string(request.Resolution)).
		Msg("conflict resolved")

	return nil
}

func (c *conflictService) resolveOnce(ctx context.Context, userID int64, conflictID string, request models.ResolveRequest) error {
	return c.store.WithinTx(ctx, func(tx store.Store) error {
		conflict, err := tx.Conflicts().GetConflict(ctx, userID, conflictID)
		if err != nil {
			return err
		}

		if conflict.Status == models.ConflictStatusResolved {
			if request.Resolution == models.ResolutionServer &&
				conflict.Resolution != nil && *conflict.Resolution == models.ResolutionServer {
				return nil
			}
			return ErrConflictAlreadyResolved
		}

		resolution := models.ConflictResolution{
			UserID:     userID,
			ConflictID: conflictID,
			Resolution: request.Resolution,
			At:         c.now(),
		}

		switch request.Resolution {
		case models.ResolutionClient:
			err = c.overwrite(ctx, tx, conflict, conflict.ClientDeleted, conflict.ClientData)
		case models.ResolutionManual:
			data := tombstoneData(request.Deleted, request.Data)
			resolution.ResolvedData = data
			err = c.overwrite(ctx, tx, conflict, request.Deleted, data)
		}
		if err != nil {
			return err
		}

		err = tx.Conflicts().MarkResolved(ctx, resolution)
		if errors.Is(err, store.ErrConflictNotOpen) {
			return ErrConflictAlreadyResolved
		}
		return err
	})
}

// overwrite writes the chosen side over whatever version the record holds now.
func (c *conflictService) overwrite(ctx context.Context, tx store.Store, conflict models.Conflict, deleted bool, data models.Payload) error {
	current, err := getRecord(ctx, tx, conflict.UserID, conflict.RecordID)
	if err != nil {
		return err
	}

	var expected int64
	if current != nil {
		expected = current.Version
	}

	_, err = tx.Records().PutRecord(ctx, models.RecordWrite{
		UserID:          conflict.UserID,
		RecordID:        conflict.RecordID,
		ExpectedVersion: expected,
		Deleted:         deleted,
		Data:            data,
		Hash:            contentHash(data),
		ClientID:        conflict.ClientID,
		At:              c.now(),
	})
	return err
}

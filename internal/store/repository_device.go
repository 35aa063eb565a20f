// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/models"
)

type deviceRepository struct {
	q       querier
	dialect string
}

func (d *deviceRepository) UpsertCursor(ctx context.Context, cursor models.DeviceCursor) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpsertDeviceCursorQuery(d.dialect, cursor)
	if err != nil {
		log.Err(err).Str("func", "deviceRepository.UpsertCursor").Msg("failed to build query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = d.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "deviceRepository.UpsertCursor").
			Int64("user_id", cursor.UserID).
			Str("device_id", cursor.DeviceID).
			Msg("failed to upsert device cursor")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/models"
)

// conflictRepository is the SQL implementation of [ConflictRepository].
type conflictRepository struct {
	q       querier
	dialect string
}

func (c *conflictRepository) CreateConflict(ctx context.Context, conflict models.Conflict) error {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertConflictQuery(c.dialect, conflict)
	if err != nil {
		log.Err(err).Str("func", "conflictRepository.CreateConflict").Msg("failed to build query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = c.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "conflictRepository.CreateConflict").
			Int64("user_id", conflict.UserID).
			Str("record_id", conflict.RecordID).
			Str("batch_id", conflict.BatchID).
			Msg("failed to insert conflict")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (c *conflictRepository) GetConflict(ctx context.Context, userID int64, conflictID string) (models.Conflict, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetConflictQuery(c.dialect, userID, conflictID)
	if err != nil {
		log.Err(err).Str("func", "conflictRepository.GetConflict").Msg("failed to build query")
		return models.Conflict{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	conflict, err := scanConflict(c.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conflict{}, ErrConflictNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.GetConflict").
			Int64("user_id", userID).
			Str("conflict_id", conflictID).
			Msg("failed to get conflict")
		return models.Conflict{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return conflict, nil
}

func (c *conflictRepository) ListOpenConflicts(ctx context.Context, userID int64) ([]models.Conflict, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListOpenConflictsQuery(c.dialect, userID)
	if err != nil {
		log.Err(err).Str("func", "conflictRepository.ListOpenConflicts").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.ListOpenConflicts").
			Int64("user_id", userID).
			Msg("failed to execute query for open conflicts")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	conflicts := make([]models.Conflict, 0, 16)
	for rows.Next() {
		conflict, scanErr := scanConflict(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "conflictRepository.ListOpenConflicts").
				Int64("user_id", userID).
				Msg("failed to scan conflict row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		conflicts = append(conflicts, conflict)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "conflictRepository.ListOpenConflicts").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return conflicts, nil
}

func (c *conflictRepository) MarkResolved(ctx context.Context, resolution models.ConflictResolution) error {
	log := logger.FromContext(ctx)

	query, args, err := buildResolveConflictQuery(c.dialect, resolution)
	if err != nil {
		log.Err(err).Str("func", "conflictRepository.MarkResolved").Msg("failed to build query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := c.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.MarkResolved").
			Int64("user_id", resolution.UserID).
			Str("conflict_id", resolution.ConflictID).
			Msg("failed to resolve conflict")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrConflictNotOpen
	}

	return nil
}

func (c *conflictRepository) CountOpenConflicts(ctx context.Context, userID int64) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountOpenConflictsQuery(c.dialect, userID)
	if err != nil {
		log.Err(err).Str("func", "conflictRepository.CountOpenConflicts").Msg("failed to build query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err = c.q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "conflictRepository.CountOpenConflicts").
			Int64("user_id", userID).
			Msg("failed to count open conflicts")
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return count, nil
}

func scanConflict(row rowScanner) (models.Conflict, error) {
	var (
		conflict   models.Conflict
		status     string
		resolution sql.NullString
		resolvedAt sql.NullTime
	)

	err := row.Scan(
		&conflict.ID,
		&conflict.UserID,
		&conflict.RecordID,
		&conflict.BatchID,
		&conflict.ClientID,
		&conflict.ClientVersion,
		&conflict.ServerVersion,
		&conflict.ClientData,
		&conflict.ClientDeleted,
		&conflict.ServerData,
		&conflict.ServerDeleted,
		&conflict.SameContent,
		&status,
		&resolution,
		&conflict.ResolvedData,
		&conflict.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return models.Conflict{}, err
	}

	conflict.Status = models.ConflictStatus(status)
	if resolution.Valid {
		r := models.Resolution(resolution.String)
		conflict.Resolution = &r
	}
	if resolvedAt.Valid {
		at := resolvedAt.Time
		conflict.ResolvedAt = &at
	}

	return conflict, nil
}

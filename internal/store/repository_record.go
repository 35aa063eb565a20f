// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/models"
)

// recordRepository is the SQL implementation of [RecordRepository].
// The change log is written by a trigger on sync_records, so it commits or
// rolls back together with the record row.
type recordRepository struct {
	q       querier
	dialect string
}

func (r *recordRepository) GetRecord(ctx context.Context, userID int64, recordID string) (models.ServerRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetRecordQuery(r.dialect, userID, recordID)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.GetRecord").Msg("failed to build query")
		return models.ServerRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	record, err := scanRecord(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ServerRecord{}, ErrRecordNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.GetRecord").
			Int64("user_id", userID).
			Str("record_id", recordID).
			Msg("failed to get record")
		return models.ServerRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return record, nil
}

func (r *recordRepository) PutRecord(ctx context.Context, write models.RecordWrite) (models.ServerRecord, error) {
	log := logger.FromContext(ctx)

	var (
		query string
		args  []any
		err   error
	)
	if write.ExpectedVersion == 0 {
		query, args, err = buildInsertRecordQuery(r.dialect, write)
	} else {
		query, args, err = buildUpdateRecordQuery(r.dialect, write)
	}
	if err != nil {
		log.Err(err).Str("func", "recordRepository.PutRecord").Msg("failed to build query")
		return models.ServerRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	record, err := scanRecord(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug().
			Str("func", "recordRepository.PutRecord").
			Int64("user_id", write.UserID).
			Str("record_id", write.RecordID).
			Int64("expected_version", write.ExpectedVersion).
			Msg("compare-and-set lost")
		return models.ServerRecord{}, ErrVersionConflict
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.PutRecord").
			Int64("user_id", write.UserID).
			Str("record_id", write.RecordID).
			Int64("expected_version", write.ExpectedVersion).
			Msg("failed to put record")
		return models.ServerRecord{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return record, nil
}

func (r *recordRepository) GetChangedRecords(ctx context.Context, userID int64, since *time.Time) ([]models.ServerRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetChangedRecordsQuery(r.dialect, userID, since)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.GetChangedRecords").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.GetChangedRecords").
			Int64("user_id", userID).
			Msg("failed to execute query for changed records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.ServerRecord, 0, 50)
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recordRepository.GetChangedRecords").
				Int64("user_id", userID).
				Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "recordRepository.GetChangedRecords").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}

func scanRecord(row rowScanner) (models.ServerRecord, error) {
	var record models.ServerRecord
	err := row.Scan(
		&record.UserID,
		&record.ID,
		&record.Version,
		&record.Deleted,
		&record.Data,
		&record.Hash,
		&record.UpdatedAt,
		&record.UpdatedByClientID,
	)
	return record, err
}

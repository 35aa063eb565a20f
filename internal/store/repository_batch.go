// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/models"
)

// batchRepository is the SQL implementation of [BatchRepository]. Items and
// results are stored as JSON documents.
type batchRepository struct {
	q       querier
	dialect string
}

func (b *batchRepository) CreateBatch(ctx context.Context, batch models.SyncBatch) error {
	log := logger.FromContext(ctx)

	items, err := json.Marshal(batch.Items)
	if err != nil {
		log.Err(err).Str("func", "batchRepository.CreateBatch").Str("batch_id", batch.ID).Msg("failed to encode items")
		return fmt.Errorf("%w: %w", ErrEncodingColumn, err)
	}

	query, args, err := buildInsertBatchQuery(b.dialect, batch, items)
	if err != nil {
		log.Err(err).Str("func", "batchRepository.CreateBatch").Msg("failed to build query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = b.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "batchRepository.CreateBatch").
			Int64("user_id", batch.UserID).
			Str("batch_id", batch.ID).
			Msg("failed to insert batch")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (b *batchRepository) GetBatch(ctx context.Context, userID int64, batchID string) (models.SyncBatch, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetBatchQuery(b.dialect, userID, batchID)
	if err != nil {
		log.Err(err).Str("func", "batchRepository.GetBatch").Msg("failed to build query")
		return models.SyncBatch{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	batch, err := scanBatch(b.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncBatch{}, ErrBatchNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "batchRepository.GetBatch").
			Int64("user_id", userID).
			Str("batch_id", batchID).
			Msg("failed to get batch")
		return models.SyncBatch{}, err
	}

	return batch, nil
}

func (b *batchRepository) TransitionBatch(ctx context.Context, transition models.BatchTransition) error {
	log := logger.FromContext(ctx)

	if !transition.From.CanTransitionTo(transition.To) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidBatchTransition, transition.From, transition.To)
	}

	var result []byte
	if transition.Result != nil {
		encoded, err := json.Marshal(transition.Result)
		if err != nil {
			log.Err(err).Str("func", "batchRepository.TransitionBatch").Str("batch_id", transition.BatchID).Msg("failed to encode result")
			return fmt.Errorf("%w: %w", ErrEncodingColumn, err)
		}
		result = encoded
	}

	query, args, err := buildTransitionBatchQuery(b.dialect, transition, result)
	if err != nil {
		log.Err(err).Str("func", "batchRepository.TransitionBatch").Msg("failed to build query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := b.q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "batchRepository.TransitionBatch").
			Str("batch_id", transition.BatchID).
			Str("from", string(transition.From)).
			Str("to", string(transition.To)).
			Msg("failed to update batch status")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrBatchStatusConflict
	}

	return nil
}

// ListPendingBatches skips rows whose items cannot be decoded and moves them
// to failed once the page is read, so they never block the queue.
func (b *batchRepository) ListPendingBatches(ctx context.Context, limit uint64) ([]models.SyncBatch, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListPendingBatchesQuery(b.dialect, limit)
	if err != nil {
		log.Err(err).Str("func", "batchRepository.ListPendingBatches").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := b.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "batchRepository.ListPendingBatches").Msg("failed to execute query for pending batches")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var undecodable []models.BatchTransition
	batches := make([]models.SyncBatch, 0, limit)
	for rows.Next() {
		batch, scanErr := scanBatch(rows)
		if errors.Is(scanErr, ErrDecodingColumn) {
			log.Warn().Err(scanErr).
				Str("func", "batchRepository.ListPendingBatches").
				Str("batch_id", batch.ID).
				Msg("skipping undecodable batch")
			undecodable = append(undecodable, models.BatchTransition{
				UserID:  batch.UserID,
				BatchID: batch.ID,
				From:    models.BatchStatusPending,
				To:      models.BatchStatusFailed,
				Error:   scanErr.Error(),
				At:      time.Now().UTC().Truncate(time.Microsecond),
			})
			continue
		}
		if scanErr != nil {
			log.Err(scanErr).Str("func", "batchRepository.ListPendingBatches").Msg("failed to scan batch row")
			return nil, scanErr
		}
		batches = append(batches, batch)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "batchRepository.ListPendingBatches").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	// SQLite has a single connection, which the open cursor holds.
	_ = rows.Close()

	for _, transition := range undecodable {
		if err = b.TransitionBatch(ctx, transition); err != nil && !errors.Is(err, ErrBatchStatusConflict) {
			log.Err(err).
				Str("func", "batchRepository.ListPendingBatches").
				Str("batch_id", transition.BatchID).
				Msg("failed to mark undecodable batch as failed")
		}
	}

	return batches, nil
}

func (b *batchRepository) CountBatches(ctx context.Context, userID int64, status models.BatchStatus) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountBatchesQuery(b.dialect, userID, status)
	if err != nil {
		log.Err(err).Str("func", "batchRepository.CountBatches").Msg("failed to build query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err = b.q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "batchRepository.CountBatches").
			Int64("user_id", userID).
			Str("status", string(status)).
			Msg("failed to count batches")
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return count, nil
}

// scanBatch reads a row selected with batchColumns. sql.ErrNoRows is
// returned unwrapped.
func scanBatch(row rowScanner) (models.SyncBatch, error) {
	var (
		batch  models.SyncBatch
		status string
		items  []byte
		result []byte
	)

	err := row.Scan(
		&batch.ID,
		&batch.UserID,
		&batch.ClientID,
		&batch.Timestamp,
		&items,
		&status,
		&result,
		&batch.Error,
		&batch.CreatedAt,
		&batch.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncBatch{}, err
	}
	if err != nil {
		return models.SyncBatch{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	batch.Status = models.BatchStatus(status)

	// on a decoding error the scalar columns are still returned
	if err = json.Unmarshal(items, &batch.Items); err != nil {
		batch.Items = nil
		return batch, fmt.Errorf("%w: items: %w", ErrDecodingColumn, err)
	}
	if len(result) > 0 {
		batch.Result = &models.ProcessResult{}
		if err = json.Unmarshal(result, batch.Result); err != nil {
			batch.Result = nil
			return batch, fmt.Errorf("%w: result: %w", ErrDecodingColumn, err)
		}
	}

	return batch, nil
}

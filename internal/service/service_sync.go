// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/store"
	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/MKhiriev/go-sync-engine/internal/validators"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/sethvargo/go-retry"
)

// failedBatchMessage is reported for every item of a failed batch.
const failedBatchMessage = "batch failed, resubmit unchanged"

// syncService implements batch intake and the batch processor.
//
// A batch is claimed with a pending -> processing compare-and-set on its
// status, so at most one caller processes it. All item writes, the new
// conflicts and the processing -> completed transition then commit in one
// transaction; a storage failure rolls all of them back and the batch is
// marked failed.
type syncService struct {
	store     store.Store
	validator validators.Validator
	ids       idGenerator
	now       func() time.Time

	txMaxRetries   int
	txRetryBackoff time.Duration

	logger *logger.Logger
}

func NewSyncService(storage store.Store, cfg config.Sync, logger *logger.Logger) SyncService {
	backoff := cfg.TxRetryBackoff
	if backoff <= 0 {
		backoff = config.DefaultTxRetryBackoff
	}

	return &syncService{
		store:          storage,
		validator:      validators.NewSyncValidator(cfg.MaxBatchItems, cfg.MaxPayloadBytes),
		ids:            utils.NewUUIDGenerator(),
		now:            serverNow,
		txMaxRetries:   max(cfg.TxMaxRetries, 0),
		txRetryBackoff: backoff,
		logger:         logger,
	}
}

func (s *syncService) QueueSync(ctx context.Context, userID int64, request models.NewBatchRequest) (models.SyncBatch, error) {
	return s.createBatch(ctx, userID, request, models.BatchStatusPending)
}

// Sync stores the batch already claimed, so no other caller or the drain
// worker can pick it up between intake and processing.
func (s *syncService) Sync(ctx context.Context, userID int64, request models.NewBatchRequest) (models.ProcessResult, error) {
	batch, err := s.createBatch(ctx, userID, request, models.BatchStatusProcessing)
	if err != nil {
		return models.ProcessResult{}, err
	}

	return s.process(ctx, batch)
}

func (s *syncService) createBatch(ctx context.Context, userID int64, request models.NewBatchRequest, status models.BatchStatus) (models.SyncBatch, error) {
	log := logger.FromContext(ctx)

	now := s.now()
	timestamp := request.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}

	batch := models.SyncBatch{
		ID:        s.ids.Generate(),
		UserID:    userID,
		ClientID:  request.ClientID,
		Timestamp: timestamp.UTC(),
		Items:     request.Items,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Batches().CreateBatch(ctx, batch); err != nil {
		log.Err(err).
			Str("func", "syncService.createBatch").
			Int64("user_id", userID).
			Str("client_id", request.ClientID).
			Msg("failed to store batch")
		return models.SyncBatch{}, storageError(err)
	}

	log.Debug().
		Str("func", "syncService.createBatch").
		Str("batch_id", batch.ID).
		Str("status", string(status)).
		Int("items", len(batch.Items)).
		Msg("batch stored")

	return batch, nil
}

func (s *syncService) GetBatch(ctx context.Context, userID int64, batchID string) (models.SyncBatch, error) {
	batch, err := s.store.Batches().GetBatch(ctx, userID, batchID)
	if err != nil {
		return models.SyncBatch{}, storageError(err)
	}
	return batch, nil
}

func (s *syncService) ProcessBatch(ctx context.Context, userID int64, batchID string) (models.ProcessResult, error) {
	log := logger.FromContext(ctx)

	batch, err := s.store.Batches().GetBatch(ctx, userID, batchID)
	if err != nil {
		return models.ProcessResult{}, storageError(err)
	}

	if batch.Status.IsTerminal() {
		if batch.Status == models.BatchStatusFailed {
			return storedResult(batch), ErrBatchAlreadyFailed
		}
		return storedResult(batch), nil
	}
	if batch.Status == models.BatchStatusProcessing {
		return models.ProcessResult{}, ErrBatchInProgress
	}

	err = s.store.Batches().TransitionBatch(ctx, models.BatchTransition{
		UserID:  userID,
		BatchID: batchID,
		From:    models.BatchStatusPending,
		To:      models.BatchStatusProcessing,
		At:      s.now(),
	})
	if errors.Is(err, store.ErrBatchStatusConflict) {
		return models.ProcessResult{}, ErrBatchInProgress
	}
	if err != nil {
		log.Err(err).Str("func", "syncService.ProcessBatch").Str("batch_id", batchID).Msg("failed to claim batch")
		return models.ProcessResult{}, storageError(err)
	}
	batch.Status = models.BatchStatusProcessing

	return s.process(ctx, batch)
}

// process runs a claimed batch to a terminal state.
func (s *syncService) process(ctx context.Context, batch models.SyncBatch) (models.ProcessResult, error) {
	log := logger.FromContext(ctx)
	userID, batchID := batch.UserID, batch.ID

	// a claimed batch always runs to a terminal state
	ctx = context.WithoutCancel(ctx)

	result, err := s.applyWithRetry(ctx, batch)
	if err == nil {
		log.Info().
			Str("func", "syncService.process").
			Str("batch_id", batchID).
			Int("applied", result.Applied).
			Int("conflicts", result.Conflicts).
			Int("errors", result.Errors).
			Msg("batch completed")
		return result, nil
	}

	log.Err(err).Str("func", "syncService.process").Str("batch_id", batchID).Msg("batch failed")

	failed := failedResult(batch)
	markErr := s.store.Batches().TransitionBatch(ctx, models.BatchTransition{
		UserID:  userID,
		BatchID: batchID,
		From:    models.BatchStatusProcessing,
		To:      models.BatchStatusFailed,
		Result:  &failed,
		Error:   err.Error(),
		At:      s.now(),
	})
	if markErr != nil {
		log.Err(markErr).Str("func", "syncService.process").Str("batch_id", batchID).Msg("failed to mark batch as failed")
	}

	return failed, fmt.Errorf("%w: %w", ErrStorage, err)
}

func (s *syncService) ProcessPending(ctx context.Context, limit int) (int, error) {
	log := logger.FromContext(ctx)

	if limit <= 0 {
		return 0, nil
	}

	batches, err := s.store.Batches().ListPendingBatches(ctx, uint64(limit))
	if err != nil {
		return 0, storageError(err)
	}

	processed := 0
	for _, batch := range batches {
		if err = ctx.Err(); err != nil {
			return processed, err
		}

		result, processErr := s.ProcessBatch(ctx, batch.UserID, batch.ID)
		switch {
		case processErr == nil, result.Status == models.BatchStatusFailed:
			processed++
		case errors.Is(processErr, ErrBatchInProgress):
		default:
			log.Warn().Err(processErr).
				Str("func", "syncService.ProcessPending").
				Str("batch_id", batch.ID).
				Msg("skipping batch")
		}
	}

	return processed, nil
}

// applyWithRetry re-runs the whole batch transaction while the store
// reports a transient failure.
func (s *syncService) applyWithRetry(ctx context.Context, batch models.SyncBatch) (models.ProcessResult, error) {
	log := logger.FromContext(ctx)

	var result models.ProcessResult
	backoff := retry.WithMaxRetries(uint64(s.txMaxRetries), retry.NewExponential(s.txRetryBackoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		applied, err := s.apply(ctx, batch)
		if err != nil {
			if s.store.Classify(err) == store.Retryable {
				log.Warn().Err(err).
					Str("func", "syncService.applyWithRetry").
					Str("batch_id", batch.ID).
					Int("attempt", attempt).
					Msg("transient storage failure, retrying batch")
				return retry.RetryableError(err)
			}
			return err
		}
		result = applied
		return nil
	})

	return result, err
}

// apply processes every item of batch in order inside one transaction.
func (s *syncService) apply(ctx context.Context, batch models.SyncBatch) (models.ProcessResult, error) {
	var result models.ProcessResult

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		result = models.ProcessResult{
			BatchID:  batch.ID,
			Status:   models.BatchStatusCompleted,
			Outcomes: make([]models.ItemOutcome, 0, len(batch.Items)),
		}
		written := make(map[string]appliedWrite, len(batch.Items))

		for i, item := range batch.Items {
			outcome, err := s.applyItem(ctx, tx, batch, i, item, written)
			if err != nil {
				return err
			}
			result.Add(outcome)
		}

		return tx.Batches().TransitionBatch(ctx, models.BatchTransition{
			UserID:  batch.UserID,
			BatchID: batch.ID,
			From:    models.BatchStatusProcessing,
			To:      models.BatchStatusCompleted,
			Result:  &result,
			At:      s.now(),
		})
	})

	return result, err
}

// appliedWrite remembers an item of the current batch that was written, so
// that later items for the same record authored against the same base can be
// rebased onto it.
type appliedWrite struct {
	baseVersion int64
	version     int64
}

func (s *syncService) applyItem(
	ctx context.Context,
	tx store.Store,
	batch models.SyncBatch,
	index int,
	item models.SyncItem,
	written map[string]appliedWrite,
) (models.ItemOutcome, error) {
	log := logger.FromContext(ctx)

	outcome := models.ItemOutcome{Index: index, RecordID: item.ID}

	if err := s.validator.Validate(ctx, item); err != nil {
		outcome.Status = models.OutcomeError
		outcome.Error = err.Error()
		return outcome, nil
	}

	current, err := getRecord(ctx, tx, batch.UserID, item.ID)
	if err != nil {
		return outcome, err
	}

	candidate := item
	if prev, ok := written[item.ID]; ok && prev.baseVersion == item.BaseVersion {
		candidate.BaseVersion = prev.version
	}

	if DetectConflict(candidate, current).IsClean() {
		record, putErr := tx.Records().PutRecord(ctx, models.RecordWrite{
			UserID:          batch.UserID,
			RecordID:        item.ID,
			ExpectedVersion: candidate.BaseVersion,
			Deleted:         item.Deleted,
			Data:            tombstoneData(item.Deleted, item.Data),
			Hash:            contentHash(tombstoneData(item.Deleted, item.Data)),
			ClientID:        batch.ClientID,
			At:              s.now(),
		})
		if putErr == nil {
			written[item.ID] = appliedWrite{baseVersion: item.BaseVersion, version: record.Version}
			outcome.Status = models.OutcomeApplied
			outcome.Version = record.Version
			return outcome, nil
		}
		if !errors.Is(putErr, store.ErrVersionConflict) {
			return outcome, putErr
		}

		// the compare-and-set lost a race with another writer
		log.Debug().
			Str("func", "syncService.applyItem").
			Str("batch_id", batch.ID).
			Str("record_id", item.ID).
			Msg("write lost the version race, recording conflict")

		if current, err = getRecord(ctx, tx, batch.UserID, item.ID); err != nil {
			return outcome, err
		}
	}

	conflict := s.newConflict(batch, item, current)
	if err = tx.Conflicts().CreateConflict(ctx, conflict); err != nil {
		return outcome, err
	}

	outcome.Status = models.OutcomeConflict
	outcome.ConflictID = conflict.ID
	return outcome, nil
}

func (s *syncService) newConflict(batch models.SyncBatch, item models.SyncItem, current *models.ServerRecord) models.Conflict {
	conflict := models.Conflict{
		ID:            s.ids.Generate(),
		UserID:        batch.UserID,
		RecordID:      item.ID,
		BatchID:       batch.ID,
		ClientID:      batch.ClientID,
		ClientVersion: item.BaseVersion,
		ClientData:    tombstoneData(item.Deleted, item.Data),
		ClientDeleted: item.Deleted,
		Status:        models.ConflictStatusOpen,
		CreatedAt:     s.now(),
	}

	if current != nil {
		conflict.ServerVersion = current.Version
		conflict.ServerData = current.Data
		conflict.ServerDeleted = current.Deleted
		conflict.SameContent = current.Deleted == item.Deleted && current.Data.Equal(item.Data)
	}

	return conflict
}

// getRecord returns nil when the record does not exist.
func getRecord(ctx context.Context, tx store.Store, userID int64, recordID string) (*models.ServerRecord, error) {
	record, err := tx.Records().GetRecord(ctx, userID, recordID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func tombstoneData(deleted bool, data models.Payload) models.Payload {
	if deleted {
		return nil
	}
	return data
}

func storedResult(batch models.SyncBatch) models.ProcessResult {
	if batch.Result != nil {
		return *batch.Result
	}
	return models.ProcessResult{BatchID: batch.ID, Status: batch.Status, Outcomes: []models.ItemOutcome{}}
}

func failedResult(batch models.SyncBatch) models.ProcessResult {
	result := models.ProcessResult{
		BatchID:  batch.ID,
		Status:   models.BatchStatusFailed,
		Outcomes: make([]models.ItemOutcome, 0, len(batch.Items)),
	}
	for i, item := range batch.Items {
		result.Add(models.ItemOutcome{
			Index:    i,
			RecordID: item.ID,
			Status:   models.OutcomeError,
			Error:    failedBatchMessage,
		})
	}
	return result
}

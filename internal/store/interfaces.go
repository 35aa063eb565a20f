// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

import (
	"context"
	"time"

	"github.com/MKhiriev/go-sync-engine/models"
)

// RecordRepository is the versioned record store. PutRecord is the single
// place where record versions advance.
type RecordRepository interface {
	// GetRecord returns the current state of a record or [ErrRecordNotFound].
	GetRecord(ctx context.Context, userID int64, recordID string) (models.ServerRecord, error)

	// PutRecord writes a new version of a record if write.ExpectedVersion is
	// still the current version (zero meaning the record must not exist).
	// A lost race yields [ErrVersionConflict]. Every accepted write is
	// appended to the change log.
	PutRecord(ctx context.Context, write models.RecordWrite) (models.ServerRecord, error)

	// GetChangedRecords returns every record changed after since, or all
	// records of the user when since is nil.
	GetChangedRecords(ctx context.Context, userID int64, since *time.Time) ([]models.ServerRecord, error)
}

// BatchRepository persists sync batches and their status machine.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch models.SyncBatch) error
	GetBatch(ctx context.Context, userID int64, batchID string) (models.SyncBatch, error)

	// TransitionBatch applies transition only while the batch is still in
	// transition.From, returning [ErrBatchStatusConflict] otherwise.
	TransitionBatch(ctx context.Context, transition models.BatchTransition) error

	// ListPendingBatches returns up to limit pending batches of all users,
	// oldest first.
	ListPendingBatches(ctx context.Context, limit uint64) ([]models.SyncBatch, error)
	CountBatches(ctx context.Context, userID int64, status models.BatchStatus) (int, error)
}

// ConflictRepository persists conflicts detected during batch processing.
type ConflictRepository interface {
	CreateConflict(ctx context.Context, conflict models.Conflict) error
	GetConflict(ctx context.Context, userID int64, conflictID string) (models.Conflict, error)
	ListOpenConflicts(ctx context.Context, userID int64) ([]models.Conflict, error)

	// MarkResolved closes an open conflict, returning [ErrConflictNotOpen]
	// when it has already been resolved.
	MarkResolved(ctx context.Context, resolution models.ConflictResolution) error
	CountOpenConflicts(ctx context.Context, userID int64) (int, error)
}

// DeviceRepository keeps the pull cursor of every device.
type DeviceRepository interface {
	UpsertCursor(ctx context.Context, cursor models.DeviceCursor) error
}

// Store bundles the repositories behind one connection and lets callers run
// several of them inside a single transaction.
type Store interface {
	Records() RecordRepository
	Batches() BatchRepository
	Conflicts() ConflictRepository
	Devices() DeviceRepository

	// WithinTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithinTx on a transactional view joins the outer transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	// WriteHorizon returns the start time of the oldest transaction still
	// open on the database. Changes stamped after it may not be visible yet.
	// A nil time means no transaction can run alongside the caller.
	WriteHorizon(ctx context.Context) (*time.Time, error)

	// Classify reports whether err is a transient storage failure.
	Classify(err error) ErrorClassification
}

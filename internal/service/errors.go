// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-sync-engine/internal/store"
)

var (
	// ErrValidation wraps every rejected request. Nothing is persisted when
	// it is returned.
	ErrValidation = errors.New("validation error")

	// ErrStorage wraps persistence failures. A batch that fails with it is
	// left in the failed state and must be resubmitted.
	ErrStorage = errors.New("storage error")

	// ErrBatchInProgress is returned when another worker owns the batch.
	ErrBatchInProgress = errors.New("batch is already being processed")

	// ErrBatchAlreadyFailed is returned when processing a failed batch.
	// Failed batches are never retried in place.
	ErrBatchAlreadyFailed = errors.New("batch has failed and must be resubmitted")

	// ErrConflictAlreadyResolved is returned when resolving a conflict that
	// was closed with a different outcome.
	ErrConflictAlreadyResolved = errors.New("conflict is already resolved")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

// Authentication errors.
var (
	ErrTokenIsExpired          = errors.New("token is expired")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
)

// passthroughErrors are domain errors surfaced to callers as they are.
var passthroughErrors = []error{
	ErrValidation,
	ErrStorage,
	ErrBatchInProgress,
	ErrBatchAlreadyFailed,
	ErrConflictAlreadyResolved,
	store.ErrVersionConflict,
	store.ErrBatchNotFound,
	store.ErrConflictNotFound,
}

// storageError marks err as a persistence failure unless it already carries
// a domain meaning.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range passthroughErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

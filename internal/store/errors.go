// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when no server record exists for the
	// requested (user, record id) pair.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrVersionConflict is returned when a compare-and-set write loses: the
	// expected version supplied by the caller is not the current version
	// (or, for a create, the record already exists).
	ErrVersionConflict = errors.New("record version conflict occurred")

	// ErrBatchNotFound is returned when a batch id is unknown for the user.
	ErrBatchNotFound = errors.New("batch was not found")

	// ErrBatchStatusConflict is returned when a batch status transition finds
	// the batch in a state other than the expected source state.
	ErrBatchStatusConflict = errors.New("batch status changed concurrently")

	// ErrInvalidBatchTransition is returned when a transition is not allowed
	// by the batch state machine. Nothing is written.
	ErrInvalidBatchTransition = errors.New("invalid batch status transition")

	// ErrConflictNotFound is returned when a conflict id is unknown for the user.
	ErrConflictNotFound = errors.New("conflict was not found")

	// ErrConflictNotOpen is returned when resolving a conflict that has
	// already been resolved.
	ErrConflictNotOpen = errors.New("conflict is not open")

	// ErrUnknownDriver is returned by [NewDB] for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrConnectingDatabase is returned when the database cannot be opened
	// or pinged.
	ErrConnectingDatabase = errors.New("error connecting database")

	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingColumn is returned when a structured column (batch items or
	// result) cannot be serialized.
	ErrEncodingColumn = errors.New("failed to encode column")

	// ErrDecodingColumn is returned when a structured column cannot be
	// deserialized.
	ErrDecodingColumn = errors.New("failed to decode column")
)

// Client state file errors.
var (
	ErrReadingStateFile  = errors.New("failed to read state file")
	ErrDecodingStateFile = errors.New("failed to decode state file")
	ErrWritingStateFile  = errors.New("failed to write state file")
)

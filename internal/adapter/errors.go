// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrInternalServerError = errors.New("internal server error")

	// ErrBatchFailed reports a batch the server moved to failed. The batch
	// can be resubmitted as a new batch.
	ErrBatchFailed = errors.New("batch failed on server")

	ErrInvalidAddress = errors.New("invalid adapter http address")
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidUserID       = errors.New("invalid user ID")
	ErrEmptyClientID       = errors.New("client id is required")
	ErrEmptyItems          = errors.New("batch must contain at least one item")
	ErrTooManyItems        = errors.New("batch has too many items")
	ErrEmptyRecordID       = errors.New("record id is required")
	ErrRecordIDTooLong     = errors.New("record id is too long")
	ErrNegativeBaseVersion = errors.New("base version must be non-negative")
	ErrDeletedWithData     = errors.New("deleted item must not carry data")
	ErrPayloadTooLarge     = errors.New("payload exceeds size limit")
	ErrInvalidPayload      = errors.New("payload is not valid JSON")
	ErrInvalidResolution   = errors.New("invalid resolution")
	ErrManualDataRequired  = errors.New("manual resolution requires data or deleted flag")
	ErrDataNotAllowed      = errors.New("data is only accepted with manual resolution")
	ErrInvalidMaxAttempts  = errors.New("max attempts must be non-negative")
	ErrEmptyDeviceID       = errors.New("device id is required")
)

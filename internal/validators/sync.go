// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-sync-engine/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldClientID targets the originating device of a batch.
	FieldClientID = "client_id"

	// FieldItems targets the item list of a batch; every item is validated.
	FieldItems = "items"

	// FieldRecordID targets the opaque record key of an item.
	FieldRecordID = "id"

	// FieldBaseVersion targets the version an item was edited against.
	FieldBaseVersion = "base_version"

	// FieldDeleted targets the tombstone/data exclusivity rule.
	FieldDeleted = "deleted"

	// FieldData targets the payload size and encoding.
	FieldData = "data"

	// FieldResolution targets the resolution policy of a resolve request.
	FieldResolution = "resolution"

	// FieldMaxAttempts targets the retry budget of a resolve request.
	FieldMaxAttempts = "max_attempts"
)

// MaxRecordIDLength bounds the opaque record key.
const MaxRecordIDLength = 255

// SyncValidator implements the Validator interface for batch intake and
// conflict resolution requests: NewBatchRequest, SyncItem and
// ResolveRequest. Both value and pointer forms are accepted.
type SyncValidator struct {
	maxItems        int
	maxPayloadBytes int
}

// NewSyncValidator constructs a SyncValidator enforcing the given limits.
// Non-positive limits disable the corresponding check.
func NewSyncValidator(maxItems, maxPayloadBytes int) Validator {
	return &SyncValidator{
		maxItems:        maxItems,
		maxPayloadBytes: maxPayloadBytes,
	}
}

// Validate dispatches validation to the appropriate type-specific method.
func (v *SyncValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.NewBatchRequest:
		return v.validateBatchRequest(ctx, value, fields...)
	case *models.NewBatchRequest:
		return v.validateBatchRequest(ctx, *value, fields...)

	case models.SyncItem:
		return v.validateItem(ctx, value, fields...)
	case *models.SyncItem:
		return v.validateItem(ctx, *value, fields...)

	case models.ResolveRequest:
		return v.validateResolveRequest(ctx, value, fields...)
	case *models.ResolveRequest:
		return v.validateResolveRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *SyncValidator) validateBatchRequest(ctx context.Context, request models.NewBatchRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldClientID, FieldItems}
	}

	for _, f := range fields {
		switch f {
		case FieldClientID:
			if request.ClientID == "" {
				return ErrEmptyClientID
			}
		case FieldItems:
			if len(request.Items) == 0 {
				return ErrEmptyItems
			}
			if v.maxItems > 0 && len(request.Items) > v.maxItems {
				return fmt.Errorf("%w: %d > %d", ErrTooManyItems, len(request.Items), v.maxItems)
			}
			for i, item := range request.Items {
				if err := v.validateItem(ctx, item); err != nil {
					return fmt.Errorf("validation error at index %d: %w", i, err)
				}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncValidator) validateItem(_ context.Context, item models.SyncItem, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldRecordID, FieldBaseVersion, FieldDeleted, FieldData}
	}

	for _, f := range fields {
		switch f {
		case FieldRecordID:
			if item.ID == "" {
				return ErrEmptyRecordID
			}
			if len(item.ID) > MaxRecordIDLength {
				return ErrRecordIDTooLong
			}
		case FieldBaseVersion:
			if item.BaseVersion < 0 {
				return ErrNegativeBaseVersion
			}
		case FieldDeleted:
			if item.Deleted && !item.Data.IsEmpty() {
				return ErrDeletedWithData
			}
		case FieldData:
			if err := v.validatePayload(item.Data); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncValidator) validateResolveRequest(_ context.Context, request models.ResolveRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldResolution, FieldData, FieldMaxAttempts}
	}

	for _, f := range fields {
		switch f {
		case FieldResolution:
			if !request.Resolution.IsValid() {
				return fmt.Errorf("%w: %q", ErrInvalidResolution, request.Resolution)
			}
		case FieldData:
			if request.Resolution != models.ResolutionManual {
				if !request.Data.IsEmpty() || request.Deleted {
					return ErrDataNotAllowed
				}
				continue
			}
			if request.Deleted && !request.Data.IsEmpty() {
				return ErrDeletedWithData
			}
			if !request.Deleted && request.Data.IsEmpty() {
				return ErrManualDataRequired
			}
			if err := v.validatePayload(request.Data); err != nil {
				return err
			}
		case FieldMaxAttempts:
			if request.MaxAttempts < 0 {
				return ErrInvalidMaxAttempts
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncValidator) validatePayload(data models.Payload) error {
	if data.IsEmpty() {
		return nil
	}
	if v.maxPayloadBytes > 0 && data.Size() > v.maxPayloadBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, data.Size(), v.maxPayloadBytes)
	}
	if !json.Valid(data) {
		return ErrInvalidPayload
	}

	return nil
}

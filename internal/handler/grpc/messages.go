// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"time"

	"github.com/MKhiriev/go-sync-engine/models"
)

// BatchRequest addresses one stored batch.
type BatchRequest struct {
	BatchID string `json:"batch_id"`
}

// ConflictsRequest lists the open conflicts of the caller.
type ConflictsRequest struct{}

// ConflictsResponse wraps the conflict list, which is never null.
type ConflictsResponse struct {
	Conflicts []models.Conflict `json:"conflicts"`
}

// ResolveConflictRequest applies a resolution to one conflict.
type ResolveConflictRequest struct {
	ConflictID string                `json:"conflict_id"`
	Resolution models.ResolveRequest `json:"resolution"`
}

// ResolveConflictResponse is empty on success.
type ResolveConflictResponse struct{}

// SyncStatusRequest asks what changed for a device since its cursor. A nil
// Since means a full pull.
type SyncStatusRequest struct {
	DeviceID string     `json:"device_id"`
	Since    *time.Time `json:"since,omitempty"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncStatus answers "what changed since this device last synced".
type SyncStatus struct {
	UserID   int64  `json:"user_id"`
	DeviceID string `json:"device_id"`

	// Records holds the current state of every record changed after the
	// device's cursor, tombstones included.
	Records []ServerRecord `json:"records"`

	// ServerTime must be stored by the device and sent back as its next
	// cursor. The device clock is never used for that.
	ServerTime time.Time `json:"server_time"`

	OpenConflicts  int `json:"open_conflicts"`
	PendingBatches int `json:"pending_batches"`
}

// DeviceCursor is the last successful pull of a device.
type DeviceCursor struct {
	UserID       int64     `json:"user_id"`
	DeviceID     string    `json:"device_id"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

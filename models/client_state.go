// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ClientState is what a device remembers between runs.
type ClientState struct {
	DeviceID string `json:"device_id"`

	// ServerTime is the server_time of the last successful status pull. It
	// is sent back verbatim as the next "since" cursor.
	ServerTime *time.Time `json:"server_time,omitempty"`

	// LastBatchID is the most recent batch submitted from this device.
	LastBatchID string `json:"last_batch_id,omitempty"`
}

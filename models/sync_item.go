// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SyncItem is a single change proposed by a client.
type SyncItem struct {
	// ID is the opaque key of the target record. It is stable across devices
	// and never changes once assigned.
	ID string `json:"id"`

	// BaseVersion is the record version the client believed was current when
	// it made the edit. Zero means the client is creating the record.
	BaseVersion int64 `json:"base_version"`

	// Deleted marks the change as a tombstone. A deletion is a versioned
	// change like any other, not a physical removal.
	Deleted bool `json:"deleted,omitempty"`

	// Data holds the new record body. It must be absent when Deleted is set.
	Data Payload `json:"data,omitempty"`
}

// IsCreate reports whether the item was authored without a known server
// version.
func (i SyncItem) IsCreate() bool {
	return i.BaseVersion == 0
}

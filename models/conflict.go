// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ConflictStatus is the state of a [Conflict].
type ConflictStatus string

const (
	ConflictStatusOpen     ConflictStatus = "open"
	ConflictStatusResolved ConflictStatus = "resolved"
)

// Resolution is the policy used to close a [Conflict].
type Resolution string

const (
	// ResolutionServer keeps the server state and discards the client item.
	ResolutionServer Resolution = "server"
	// ResolutionClient re-applies the client item over the current server state.
	ResolutionClient Resolution = "client"
	// ResolutionManual applies caller-supplied merged data.
	ResolutionManual Resolution = "manual"
)

// IsValid reports whether r is one of the known resolutions.
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionServer, ResolutionClient, ResolutionManual:
		return true
	}
	return false
}

// Conflict is a client item that could not be applied cleanly.
type Conflict struct {
	// ID identifies the conflict itself; it is distinct from RecordID.
	ID       string `json:"id"`
	UserID   int64  `json:"user_id"`
	RecordID string `json:"record_id"`
	BatchID  string `json:"batch_id"`
	ClientID string `json:"client_id"`

	// ClientVersion is the base version carried by the client item.
	ClientVersion int64 `json:"client_version"`
	// ServerVersion is the record version observed at detection time
	// (zero when the record did not exist).
	ServerVersion int64 `json:"server_version"`

	ClientData    Payload `json:"client_data,omitempty"`
	ClientDeleted bool    `json:"client_deleted"`
	ServerData    Payload `json:"server_data,omitempty"`
	ServerDeleted bool    `json:"server_deleted"`

	// SameContent is a hint for the UI: both sides carried identical bodies.
	// It never influences detection.
	SameContent bool `json:"same_content"`

	Status     ConflictStatus `json:"status"`
	Resolution *Resolution    `json:"resolution,omitempty"`

	// ResolvedData is only present for manual resolutions.
	ResolvedData Payload `json:"resolved_data,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// ResolveRequest carries the caller's decision for an open conflict.
type ResolveRequest struct {
	Resolution Resolution `json:"resolution"`

	// Data is the merged body, used only with [ResolutionManual].
	Data Payload `json:"data,omitempty"`

	// Deleted lets a manual resolution settle on a tombstone.
	Deleted bool `json:"deleted,omitempty"`

	// MaxAttempts bounds how many times a client/manual resolution is
	// re-attempted after losing the version race. Zero or one means a single
	// attempt.
	MaxAttempts int `json:"max_attempts,omitempty"`
}

// ConflictResolution closes an open conflict in the store.
type ConflictResolution struct {
	UserID       int64
	ConflictID   string
	Resolution   Resolution
	ResolvedData Payload
	At           time.Time
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ServerRecord is the authoritative state of a synchronized record.
type ServerRecord struct {
	ID     string `json:"id"`
	UserID int64  `json:"user_id"`

	// Version grows by exactly one for every accepted mutation and never
	// decreases.
	Version int64 `json:"version"`

	// Deleted is the tombstone flag. Toggling it is itself a new version.
	Deleted bool `json:"deleted"`

	Data Payload `json:"data,omitempty"`

	// Hash is the hex BLAKE2b-256 digest of Data. It lets a client verify its
	// local copy without downloading the body.
	Hash string `json:"hash"`

	UpdatedAt         time.Time `json:"updated_at"`
	UpdatedByClientID string    `json:"updated_by_client_id"`
}

// RecordWrite is a compare-and-set request against the record store.
type RecordWrite struct {
	UserID   int64
	RecordID string

	// ExpectedVersion is the version being superseded. Zero means the record
	// must not exist yet.
	ExpectedVersion int64

	Deleted  bool
	Data     Payload
	Hash     string
	ClientID string
	At       time.Time
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// BatchStatus is the lifecycle state of a [SyncBatch].
//
// Allowed transitions:
//
//	pending -> processing -> completed
//	                      -> failed
//
// completed and failed are terminal.
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

// CanTransitionTo reports whether the batch state machine allows moving
// from s to next.
func (s BatchStatus) CanTransitionTo(next BatchStatus) bool {
	switch s {
	case BatchStatusPending:
		return next == BatchStatusProcessing
	case BatchStatusProcessing:
		return next == BatchStatusCompleted || next == BatchStatusFailed
	default:
		return false
	}
}

// SyncBatch is one atomic intake unit: the ordered list of changes a client
// accumulated while offline.
type SyncBatch struct {
	// ID is the server-assigned batch identifier (UUIDv7).
	ID string `json:"id"`

	// UserID is the owning account. Every item of the batch belongs to it.
	UserID int64 `json:"user_id"`

	// ClientID identifies the originating device.
	ClientID string `json:"client_id"`

	// Timestamp is the client-asserted creation time. It is untrusted and is
	// only kept for diagnostics and ordering heuristics.
	Timestamp time.Time `json:"timestamp"`

	// Items is the ordered, non-empty list of proposed changes.
	Items []SyncItem `json:"items"`

	Status BatchStatus `json:"status"`

	// Result is set once the batch reaches a terminal state.
	Result *ProcessResult `json:"result,omitempty"`

	// Error holds the storage failure that moved the batch to failed.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBatchRequest is the intake payload sent by a client.
type NewBatchRequest struct {
	ClientID  string     `json:"client_id"`
	Timestamp time.Time  `json:"timestamp"`
	Items     []SyncItem `json:"items"`
}

// BatchTransition is a compare-and-set status change of a stored batch.
type BatchTransition struct {
	UserID  int64
	BatchID string
	From    BatchStatus
	To      BatchStatus

	// Result and Error are persisted together with the new status.
	Result *ProcessResult
	Error  string

	At time.Time
}

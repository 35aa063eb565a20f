// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// OutcomeStatus is the per-item result of processing a batch.
type OutcomeStatus string

const (
	OutcomeApplied  OutcomeStatus = "applied"
	OutcomeConflict OutcomeStatus = "conflict"
	OutcomeError    OutcomeStatus = "error"
)

// ItemOutcome reports what happened to one item of a batch.
type ItemOutcome struct {
	// Index is the position of the item inside the batch.
	Index    int           `json:"index"`
	RecordID string        `json:"record_id"`
	Status   OutcomeStatus `json:"status"`

	// Version is the new record version for applied items.
	Version int64 `json:"version,omitempty"`

	// ConflictID references the stored conflict for conflicting items.
	ConflictID string `json:"conflict_id,omitempty"`

	Error string `json:"error,omitempty"`
}

// ProcessResult is the response to processing a batch.
type ProcessResult struct {
	BatchID  string        `json:"batch_id"`
	Status   BatchStatus   `json:"status"`
	Outcomes []ItemOutcome `json:"outcomes"`

	Applied   int `json:"applied"`
	Conflicts int `json:"conflicts"`
	Errors    int `json:"errors"`
}

// Add appends an outcome and updates the counters.
func (r *ProcessResult) Add(outcome ItemOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	switch outcome.Status {
	case OutcomeApplied:
		r.Applied++
	case OutcomeConflict:
		r.Conflicts++
	case OutcomeError:
		r.Errors++
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "github.com/MKhiriev/go-sync-engine/models"

// Decision is the classification of one incoming item against the server.
type Decision int

const (
	// DecisionConflict means the item was authored against a version the
	// server no longer holds.
	DecisionConflict Decision = iota
	DecisionCleanCreate
	DecisionCleanUpdate
	DecisionCleanDelete
)

func (d Decision) String() string {
	switch d {
	case DecisionCleanCreate:
		return "clean_create"
	case DecisionCleanUpdate:
		return "clean_update"
	case DecisionCleanDelete:
		return "clean_delete"
	default:
		return "conflict"
	}
}

// IsClean reports whether the item may be written without a conflict.
func (d Decision) IsClean() bool {
	return d != DecisionConflict
}

// DetectConflict classifies item against the current server state, nil
// meaning the record does not exist.
//
// Only versions are compared. Two sides holding identical bodies at diverged
// versions still conflict.
func DetectConflict(item models.SyncItem, current *models.ServerRecord) Decision {
	if current == nil {
		if item.IsCreate() {
			return DecisionCleanCreate
		}
		// the client saw a version the server never had or has lost
		return DecisionConflict
	}

	if item.BaseVersion != current.Version {
		return DecisionConflict
	}
	if item.Deleted {
		return DecisionCleanDelete
	}
	return DecisionCleanUpdate
}

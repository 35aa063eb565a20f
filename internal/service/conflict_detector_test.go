// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"testing"

	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/stretchr/testify/assert"
)

func TestDetectConflict(t *testing.T) {
	record := &models.ServerRecord{ID: "r1", Version: 4, Data: models.Payload(`"X"`)}

	tests := []struct {
		name    string
		item    models.SyncItem
		current *models.ServerRecord
		want    Decision
	}{
		{
			name: "absent record and zero base version creates",
			item: models.SyncItem{ID: "r1", Data: models.Payload(`"X"`)},
			want: DecisionCleanCreate,
		},
		{
			name: "absent record and zero base version tombstone still creates",
			item: models.SyncItem{ID: "r1", Deleted: true},
			want: DecisionCleanCreate,
		},
		{
			name: "absent record with positive base version conflicts",
			item: models.SyncItem{ID: "r1", BaseVersion: 2},
			want: DecisionConflict,
		},
		{
			name:    "matching version updates",
			item:    models.SyncItem{ID: "r1", BaseVersion: 4, Data: models.Payload(`"Y"`)},
			current: record,
			want:    DecisionCleanUpdate,
		},
		{
			name:    "matching version with tombstone deletes",
			item:    models.SyncItem{ID: "r1", BaseVersion: 4, Deleted: true},
			current: record,
			want:    DecisionCleanDelete,
		},
		{
			name:    "stale version conflicts",
			item:    models.SyncItem{ID: "r1", BaseVersion: 3, Data: models.Payload(`"Y"`)},
			current: record,
			want:    DecisionConflict,
		},
		{
			name:    "stale version with identical data still conflicts",
			item:    models.SyncItem{ID: "r1", BaseVersion: 3, Data: models.Payload(`"X"`)},
			current: record,
			want:    DecisionConflict,
		},
		{
			name:    "base version ahead of server conflicts",
			item:    models.SyncItem{ID: "r1", BaseVersion: 9},
			current: record,
			want:    DecisionConflict,
		},
		{
			name:    "create against existing record conflicts",
			item:    models.SyncItem{ID: "r1", Data: models.Payload(`"Y"`)},
			current: record,
			want:    DecisionConflict,
		},
		{
			name:    "update of a tombstone at its version is clean",
			item:    models.SyncItem{ID: "r1", BaseVersion: 5, Data: models.Payload(`"Z"`)},
			current: &models.ServerRecord{ID: "r1", Version: 5, Deleted: true},
			want:    DecisionCleanUpdate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectConflict(tt.item, tt.current)
			assert.Equal(t, tt.want, got, "got %s", got)
			assert.Equal(t, tt.want != DecisionConflict, got.IsClean())
		})
	}
}

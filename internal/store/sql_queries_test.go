// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-sync-engine/migrations"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildGetRecordQuery_Placeholders(t *testing.T) {
	tests := []struct {
		name        string
		dialect     string
		contains    []string
		notContains string
	}{
		{
			name:        "postgres uses dollar placeholders",
			dialect:     migrations.DialectPostgres,
			contains:    []string{"user_id = $1", "record_id = $2"},
			notContains: "?",
		},
		{
			name:        "sqlite uses question placeholders",
			dialect:     migrations.DialectSQLite,
			contains:    []string{"user_id = ?", "record_id = ?"},
			notContains: "$",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildGetRecordQuery(tt.dialect, 42, "r1")
			require.NoError(t, err)

			for _, part := range tt.contains {
				assert.Contains(t, query, part)
			}
			assert.NotContains(t, query, tt.notContains)
			assert.Equal(t, []any{int64(42), "r1"}, args)
		})
	}
}

func Test_buildInsertRecordQuery_StartsAtVersionOne(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	write := models.RecordWrite{
		UserID:   7,
		RecordID: "r1",
		Data:     models.Payload(`{"a":1}`),
		Hash:     "h",
		ClientID: "device-a",
		At:       at,
	}

	query, args, err := buildInsertRecordQuery(migrations.DialectPostgres, write)
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.Contains(t, q, "insert into sync_records")
	assert.Contains(t, q, "on conflict (user_id, record_id) do nothing")
	assert.Contains(t, q, "returning user_id, record_id, version")

	require.Len(t, args, len(recordColumns))
	assert.Equal(t, 1, args[2])
	assert.Equal(t, at, args[6])
	assert.Equal(t, "device-a", args[7])
}

func Test_buildUpdateRecordQuery_GuardsExpectedVersion(t *testing.T) {
	write := models.RecordWrite{
		UserID:          7,
		RecordID:        "r1",
		ExpectedVersion: 3,
		Deleted:         true,
		ClientID:        "device-a",
	}

	query, args, err := buildUpdateRecordQuery(migrations.DialectPostgres, write)
	require.NoError(t, err)

	assert.Contains(t, query, "version = version + 1")
	assert.Contains(t, query, "WHERE user_id = $6 AND record_id = $7 AND version = $8")
	assert.Contains(t, query, "RETURNING")

	require.Len(t, args, 8)
	assert.Equal(t, int64(3), args[7])
	assert.Equal(t, true, args[0])
}

func Test_buildGetChangedRecordsQuery(t *testing.T) {
	t.Run("without cursor selects everything", func(t *testing.T) {
		query, args, err := buildGetChangedRecordsQuery(migrations.DialectPostgres, 1, nil)
		require.NoError(t, err)

		assert.NotContains(t, query, "EXISTS")
		assert.Contains(t, query, "ORDER BY updated_at, record_id")
		assert.Equal(t, []any{int64(1)}, args)
	})

	t.Run("with cursor filters on the change log", func(t *testing.T) {
		since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		query, args, err := buildGetChangedRecordsQuery(migrations.DialectPostgres, 1, &since)
		require.NoError(t, err)

		assert.Contains(t, query, "EXISTS (SELECT 1 FROM sync_changes c")
		assert.Contains(t, query, "c.changed_at > $2")
		assert.Equal(t, []any{int64(1), since}, args)
	})
}

func Test_buildTransitionBatchQuery(t *testing.T) {
	t.Run("status only", func(t *testing.T) {
		query, args, err := buildTransitionBatchQuery(migrations.DialectPostgres, models.BatchTransition{
			UserID:  1,
			BatchID: "b1",
			From:    models.BatchStatusPending,
			To:      models.BatchStatusProcessing,
		}, nil)
		require.NoError(t, err)

		assert.NotContains(t, query, "result")
		assert.NotContains(t, query, "error")
		assert.Contains(t, query, "status = $5")
		assert.Equal(t, "processing", args[0])
		assert.Equal(t, "pending", args[4])
	})

	t.Run("with result and error", func(t *testing.T) {
		query, args, err := buildTransitionBatchQuery(migrations.DialectSQLite, models.BatchTransition{
			UserID:  1,
			BatchID: "b1",
			From:    models.BatchStatusProcessing,
			To:      models.BatchStatusFailed,
			Error:   "boom",
		}, []byte(`{}`))
		require.NoError(t, err)

		assert.Contains(t, query, "result = ?")
		assert.Contains(t, query, "error = ?")
		assert.Len(t, args, 7)
	})
}

func Test_buildListPendingBatchesQuery(t *testing.T) {
	query, args, err := buildListPendingBatchesQuery(migrations.DialectPostgres, 20)
	require.NoError(t, err)

	assert.Contains(t, query, "ORDER BY created_at, id")
	assert.Contains(t, query, "LIMIT 20")
	assert.Equal(t, []any{"pending"}, args)
}

func Test_buildUpsertDeviceCursorQuery(t *testing.T) {
	query, _, err := buildUpsertDeviceCursorQuery(migrations.DialectSQLite, models.DeviceCursor{UserID: 1, DeviceID: "d"})
	require.NoError(t, err)

	assert.Contains(t, query, "ON CONFLICT (user_id, device_id) DO UPDATE SET last_synced_at = excluded.last_synced_at")
}

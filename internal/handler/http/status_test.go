// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_GetSyncStatus(t *testing.T) {
	serverTime := time.Date(2026, 3, 1, 12, 0, 0, 123456000, time.UTC)

	tests := []struct {
		name       string
		query      url.Values
		wantSince  *time.Time
		wantStatus int
	}{
		{
			name:       "full pull",
			query:      url.Values{"device_id": {"device-b"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "incremental pull",
			query:      url.Values{"device_id": {"device-b"}, "since": {serverTime.Format(time.RFC3339Nano)}},
			wantSince:  &serverTime,
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed cursor",
			query:      url.Values{"device_id": {"device-b"}, "since": {"yesterday"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services := newTestServices(t)
			services.StatusService.(*stubStatusService).getSyncStatus = func(_ context.Context, userID int64, deviceID string, since *time.Time) (models.SyncStatus, error) {
				assert.Equal(t, testUserID, userID)
				assert.Equal(t, "device-b", deviceID)
				if tt.wantSince == nil {
					assert.Nil(t, since)
				} else {
					require.NotNil(t, since)
					assert.True(t, tt.wantSince.Equal(*since))
				}
				return models.SyncStatus{
					UserID:     userID,
					DeviceID:   deviceID,
					Records:    []models.ServerRecord{{ID: "r1", Version: 5, Data: models.Payload(`"Y"`)}},
					ServerTime: serverTime,
				}, nil
			}

			rr := do(t, newTestRouter(t, services), http.MethodGet, "/api/sync/status?"+tt.query.Encode(), nil)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			if tt.wantStatus == http.StatusOK {
				status := decodeBody[models.SyncStatus](t, rr)
				assert.True(t, serverTime.Equal(status.ServerTime), "server time must survive the round trip")
				require.Len(t, status.Records, 1)
				assert.Equal(t, int64(5), status.Records[0].Version)
			}
		})
	}
}

func TestParseCursor(t *testing.T) {
	since, err := parseCursor("")
	require.NoError(t, err)
	assert.Nil(t, since)

	since, err = parseCursor("2026-03-01T17:00:00+05:00")
	require.NoError(t, err)
	assert.True(t, since.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	_, err = parseCursor("1700000000")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

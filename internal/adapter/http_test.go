// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken   = "token-123"
	testHashKey = "testhashkey"
)

func newTestAdapter(t *testing.T, serverURL, hashKey string) SyncAdapter {
	t.Helper()

	a, err := NewHTTPSyncAdapter(config.Adapter{
		HTTPAddress:    serverURL,
		RequestTimeout: 5 * time.Second,
		Token:          testToken,
	}, hashKey, logger.Nop())
	require.NoError(t, err)
	return a
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewHTTPSyncAdapter_InvalidAddress(t *testing.T) {
	for _, address := range []string{"", "   ", "http://"} {
		_, err := NewHTTPSyncAdapter(config.Adapter{HTTPAddress: address}, "", logger.Nop())
		assert.ErrorIs(t, err, ErrInvalidAddress, "address %q", address)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"localhost:8080", "http://localhost:8080"},
		{"https://sync.example.com/", "https://sync.example.com"},
		{" http://127.0.0.1:9000 ", "http://127.0.0.1:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueueSync_SignsBody(t *testing.T) {
	request := models.NewBatchRequest{
		ClientID: "device-a",
		Items:    []models.SyncItem{{ID: "r1", BaseVersion: 3, Data: models.Payload(`{"title":"x"}`)}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sync/queue", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, utils.HashString(string(body), testHashKey), r.Header.Get(hashHeader))

		var got models.NewBatchRequest
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, request.ClientID, got.ClientID)

		writeJSON(t, w, http.StatusAccepted, models.SyncBatch{ID: "b1", ClientID: got.ClientID, Status: models.BatchStatusPending})
	}))
	defer srv.Close()

	batch, err := newTestAdapter(t, srv.URL, testHashKey).QueueSync(context.Background(), request)

	require.NoError(t, err)
	assert.Equal(t, "b1", batch.ID)
	assert.Equal(t, models.BatchStatusPending, batch.Status)
}

func TestQueueSync_UnsignedWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(hashHeader))
		writeJSON(t, w, http.StatusAccepted, models.SyncBatch{ID: "b1"})
	}))
	defer srv.Close()

	_, err := newTestAdapter(t, srv.URL, "").QueueSync(context.Background(), models.NewBatchRequest{ClientID: "device-a"})
	require.NoError(t, err)
}

func TestSync(t *testing.T) {
	completed := models.ProcessResult{BatchID: "b1", Status: models.BatchStatusCompleted}
	completed.Add(models.ItemOutcome{Index: 0, RecordID: "r1", Status: models.OutcomeApplied, Version: 4})
	completed.Add(models.ItemOutcome{Index: 1, RecordID: "r2", Status: models.OutcomeConflict, ConflictID: "c1"})

	failed := models.ProcessResult{BatchID: "b2", Status: models.BatchStatusFailed}

	tests := []struct {
		name       string
		status     int
		body       any
		wantErr    []error
		wantResult models.ProcessResult
	}{
		{name: "completed", status: http.StatusOK, body: completed, wantResult: completed},
		{name: "failed batch keeps result", status: http.StatusServiceUnavailable, body: failed, wantErr: []error{ErrBatchFailed, ErrServiceUnavailable}, wantResult: failed},
		{name: "validation error", status: http.StatusBadRequest, body: "validation error: items must not be empty", wantErr: []error{ErrBadRequest}},
		{name: "unavailable without result", status: http.StatusServiceUnavailable, body: "Service Unavailable", wantErr: []error{ErrServiceUnavailable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/sync", r.URL.Path)
				if text, ok := tt.body.(string); ok {
					http.Error(w, text, tt.status)
					return
				}
				writeJSON(t, w, tt.status, tt.body)
			}))
			defer srv.Close()

			result, err := newTestAdapter(t, srv.URL, "").Sync(context.Background(), models.NewBatchRequest{ClientID: "device-a"})

			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
			}
			if len(tt.wantErr) > 0 && tt.wantResult.BatchID == "" {
				assert.NotErrorIs(t, err, ErrBatchFailed)
			}
			assert.Equal(t, tt.wantResult, result)
		})
	}
}

func TestProcessAndGetBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/sync/batches/b1/process":
			writeJSON(t, w, http.StatusOK, models.ProcessResult{BatchID: "b1", Status: models.BatchStatusCompleted})
		case r.Method == http.MethodGet && r.URL.Path == "/api/sync/batches/b1":
			writeJSON(t, w, http.StatusOK, models.SyncBatch{ID: "b1", Status: models.BatchStatusCompleted})
		case r.URL.Path == "/api/sync/batches/in-flight/process":
			http.Error(w, "batch is already being processed", http.StatusConflict)
		default:
			http.Error(w, "batch was not found", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")
	ctx := context.Background()

	result, err := a.ProcessBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusCompleted, result.Status)

	batch, err := a.GetBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", batch.ID)

	_, err = a.ProcessBatch(ctx, "in-flight")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = a.GetBatch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConflicts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/sync/conflicts":
			writeJSON(t, w, http.StatusOK, []models.Conflict{{ID: "c1", RecordID: "r1", ClientVersion: 3, ServerVersion: 4}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/sync/conflicts/c1/resolve":
			var request models.ResolveRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
			assert.Equal(t, models.ResolutionClient, request.Resolution)
			assert.Equal(t, 3, request.MaxAttempts)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "conflict was not found", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, testHashKey)
	ctx := context.Background()

	conflicts, err := a.GetConflicts(ctx)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, int64(4), conflicts[0].ServerVersion)

	require.NoError(t, a.ResolveConflict(ctx, "c1", models.ResolveRequest{Resolution: models.ResolutionClient, MaxAttempts: 3}))

	err = a.ResolveConflict(ctx, "c9", models.ResolveRequest{Resolution: models.ResolutionServer})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSyncStatus(t *testing.T) {
	since := time.Date(2026, 3, 1, 15, 0, 0, 123, time.FixedZone("UTC+3", 3*60*60))
	serverTime := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/status", r.URL.Path)
		assert.Equal(t, "device-a", r.URL.Query().Get("device_id"))

		raw := r.URL.Query().Get("since")
		if raw != "" {
			assert.Equal(t, "2026-03-01T12:00:00.000000123Z", raw)
		}

		writeJSON(t, w, http.StatusOK, models.SyncStatus{
			DeviceID:   "device-a",
			Records:    []models.ServerRecord{{ID: "r1", Version: 2, Deleted: true}},
			ServerTime: serverTime,
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")

	status, err := a.GetSyncStatus(context.Background(), "device-a", &since)
	require.NoError(t, err)
	assert.True(t, serverTime.Equal(status.ServerTime))
	require.Len(t, status.Records, 1)
	assert.True(t, status.Records[0].Deleted)

	_, err = a.GetSyncStatus(context.Background(), "device-a", nil)
	require.NoError(t, err)
}

func TestGetServerInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/version/info", r.URL.Path)
		writeJSON(t, w, http.StatusOK, models.AppInfo{Version: "1.0.0", StorageDriver: "postgres", MaxBatchItems: 500})
	}))
	defer srv.Close()

	info, err := newTestAdapter(t, srv.URL, "").GetServerInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, 500, info.MaxBatchItems)
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusServiceUnavailable, ErrServiceUnavailable},
		{http.StatusInternalServerError, ErrInternalServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "reason", tt.status)
			}))
			defer srv.Close()

			_, err := newTestAdapter(t, srv.URL, "").GetConflicts(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "reason")
		})
	}
}

func TestMapHTTPError_Unmapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	_, err := newTestAdapter(t, srv.URL, "").GetConflicts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 418")
}

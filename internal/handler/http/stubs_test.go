// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/service"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/stretchr/testify/require"
)

// testToken is accepted by stubAuthService as user 7.
const (
	testToken  = "valid-token"
	testUserID = int64(7)
)

type stubSyncService struct {
	queueSync      func(ctx context.Context, userID int64, request models.NewBatchRequest) (models.SyncBatch, error)
	sync           func(ctx context.Context, userID int64, request models.NewBatchRequest) (models.ProcessResult, error)
	processBatch   func(ctx context.Context, userID int64, batchID string) (models.ProcessResult, error)
	getBatch       func(ctx context.Context, userID int64, batchID string) (models.SyncBatch, error)
	processPending func(ctx context.Context, limit int) (int, error)
}

func (s *stubSyncService) QueueSync(ctx context.Context, userID int64, request models.NewBatchRequest) (models.SyncBatch, error) {
	return s.queueSync(ctx, userID, request)
}

func (s *stubSyncService) Sync(ctx context.Context, userID int64, request models.NewBatchRequest) (models.ProcessResult, error) {
	return s.sync(ctx, userID, request)
}

func (s *stubSyncService) ProcessBatch(ctx context.Context, userID int64, batchID string) (models.ProcessResult, error) {
	return s.processBatch(ctx, userID, batchID)
}

func (s *stubSyncService) GetBatch(ctx context.Context, userID int64, batchID string) (models.SyncBatch, error) {
	return s.getBatch(ctx, userID, batchID)
}

func (s *stubSyncService) ProcessPending(ctx context.Context, limit int) (int, error) {
	return s.processPending(ctx, limit)
}

type stubConflictService struct {
	getConflicts    func(ctx context.Context, userID int64) ([]models.Conflict, error)
	resolveConflict func(ctx context.Context, userID int64, conflictID string, request models.ResolveRequest) error
}

func (s *stubConflictService) GetConflicts(ctx context.Context, userID int64) ([]models.Conflict, error) {
	return s.getConflicts(ctx, userID)
}

func (s *stubConflictService) ResolveConflict(ctx context.Context, userID int64, conflictID string, request models.ResolveRequest) error {
	return s.resolveConflict(ctx, userID, conflictID, request)
}

type stubStatusService struct {
	getSyncStatus func(ctx context.Context, userID int64, deviceID string, since *time.Time) (models.SyncStatus, error)
}

func (s *stubStatusService) GetSyncStatus(ctx context.Context, userID int64, deviceID string, since *time.Time) (models.SyncStatus, error) {
	return s.getSyncStatus(ctx, userID, deviceID, since)
}

type stubAppInfoService struct {
	info models.AppInfo
}

func (s *stubAppInfoService) GetAppVersion(context.Context) string {
	return s.info.Version
}

func (s *stubAppInfoService) GetAppInfo(context.Context) models.AppInfo {
	return s.info
}

type stubAuthService struct{}

func (s *stubAuthService) CreateToken(_ context.Context, userID int64, _ time.Duration) (models.Token, error) {
	return models.Token{SignedString: testToken, UserID: userID}, nil
}

func (s *stubAuthService) ParseToken(_ context.Context, tokenString string) (models.Token, error) {
	switch tokenString {
	case testToken:
		return models.Token{SignedString: tokenString, UserID: testUserID}, nil
	case "expired-token":
		return models.Token{}, service.ErrTokenIsExpired
	default:
		return models.Token{}, service.ErrTokenIsExpiredOrInvalid
	}
}

// newTestServices returns services whose methods fail the test unless
// replaced.
func newTestServices(t *testing.T) *service.Services {
	t.Helper()
	unexpected := func(name string) { t.Helper(); t.Fatalf("unexpected call to %s", name) }

	return &service.Services{
		SyncService: &stubSyncService{
			queueSync: func(context.Context, int64, models.NewBatchRequest) (models.SyncBatch, error) {
				unexpected("QueueSync")
				return models.SyncBatch{}, nil
			},
			sync: func(context.Context, int64, models.NewBatchRequest) (models.ProcessResult, error) {
				unexpected("Sync")
				return models.ProcessResult{}, nil
			},
			processBatch: func(context.Context, int64, string) (models.ProcessResult, error) {
				unexpected("ProcessBatch")
				return models.ProcessResult{}, nil
			},
			getBatch: func(context.Context, int64, string) (models.SyncBatch, error) {
				unexpected("GetBatch")
				return models.SyncBatch{}, nil
			},
			processPending: func(context.Context, int) (int, error) {
				unexpected("ProcessPending")
				return 0, nil
			},
		},
		ConflictService: &stubConflictService{
			getConflicts: func(context.Context, int64) ([]models.Conflict, error) {
				unexpected("GetConflicts")
				return nil, nil
			},
			resolveConflict: func(context.Context, int64, string, models.ResolveRequest) error {
				unexpected("ResolveConflict")
				return nil
			},
		},
		StatusService: &stubStatusService{
			getSyncStatus: func(context.Context, int64, string, *time.Time) (models.SyncStatus, error) {
				unexpected("GetSyncStatus")
				return models.SyncStatus{}, nil
			},
		},
		AppInfoService: &stubAppInfoService{info: models.AppInfo{Version: "test-version", StorageDriver: "sqlite"}},
		AuthService:    &stubAuthService{},
	}
}

func newTestRouter(t *testing.T, services *service.Services) http.Handler {
	t.Helper()
	return NewHandler(services, "", logger.Nop()).Init()
}

// do sends an authenticated request with a JSON body through router.
func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&value))
	return value
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/service"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

const (
	testToken  = "valid-token"
	testUserID = int64(7)
)

type stubSyncService struct {
	queueSync    func(ctx context.Context, userID int64, request models.NewBatchRequest) (models.SyncBatch, error)
	sync         func(ctx context.Context, userID int64, request models.NewBatchRequest) (models.ProcessResult, error)
	processBatch func(ctx context.Context, userID int64, batchID string) (models.ProcessResult, error)
	getBatch     func(ctx context.Context, userID int64, batchID string) (models.SyncBatch, error)
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

func (s *stubSyncService) ProcessPending(context.Context, int) (int, error) {
	return 0, nil
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
func newTestServices(t *testing.T) (*service.Services, *stubSyncService, *stubConflictService, *stubStatusService) {
	t.Helper()
	unexpected := func(name string) { t.Errorf("unexpected call to %s", name) }

	syncService := &stubSyncService{
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
	}
	conflictService := &stubConflictService{
		getConflicts: func(context.Context, int64) ([]models.Conflict, error) {
			unexpected("GetConflicts")
			return nil, nil
		},
		resolveConflict: func(context.Context, int64, string, models.ResolveRequest) error {
			unexpected("ResolveConflict")
			return nil
		},
	}
	statusService := &stubStatusService{
		getSyncStatus: func(context.Context, int64, string, *time.Time) (models.SyncStatus, error) {
			unexpected("GetSyncStatus")
			return models.SyncStatus{}, nil
		},
	}

	services := &service.Services{
		SyncService:     syncService,
		ConflictService: conflictService,
		StatusService:   statusService,
		AuthService:     &stubAuthService{},
	}
	return services, syncService, conflictService, statusService
}

// startServer serves h over an in-memory listener and returns a client
// connected to it.
func startServer(t *testing.T, services *service.Services) *SyncEngineClient {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	h := NewHandler(services, logger.Nop())
	server := grpc.NewServer(h.ServerOptions()...)
	h.Register(server)

	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewSyncEngineClient(conn)
}

func authorized(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), authorizationKey, "Bearer "+token)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"

	"github.com/MKhiriev/go-sync-engine/models"
	"google.golang.org/grpc"
)

const ServiceName = "sync.v1.SyncEngine"

// Full method names of sync.v1.SyncEngine.
const (
	QueueSyncFullMethod       = "/" + ServiceName + "/QueueSync"
	SyncFullMethod            = "/" + ServiceName + "/Sync"
	ProcessBatchFullMethod    = "/" + ServiceName + "/ProcessBatch"
	GetBatchFullMethod        = "/" + ServiceName + "/GetBatch"
	GetConflictsFullMethod    = "/" + ServiceName + "/GetConflicts"
	ResolveConflictFullMethod = "/" + ServiceName + "/ResolveConflict"
	GetSyncStatusFullMethod   = "/" + ServiceName + "/GetSyncStatus"
)

// SyncEngineServer is the server API of sync.v1.SyncEngine.
type SyncEngineServer interface {
	QueueSync(ctx context.Context, in *models.NewBatchRequest) (*models.SyncBatch, error)
	Sync(ctx context.Context, in *models.NewBatchRequest) (*models.ProcessResult, error)
	ProcessBatch(ctx context.Context, in *BatchRequest) (*models.ProcessResult, error)
	GetBatch(ctx context.Context, in *BatchRequest) (*models.SyncBatch, error)
	GetConflicts(ctx context.Context, in *ConflictsRequest) (*ConflictsResponse, error)
	ResolveConflict(ctx context.Context, in *ResolveConflictRequest) (*ResolveConflictResponse, error)
	GetSyncStatus(ctx context.Context, in *SyncStatusRequest) (*models.SyncStatus, error)
}

// SyncEngineServiceDesc describes sync.v1.SyncEngine for
// [grpc.ServiceRegistrar.RegisterService].
var SyncEngineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "QueueSync", Handler: unaryHandler(QueueSyncFullMethod, SyncEngineServer.QueueSync)},
		{MethodName: "Sync", Handler: unaryHandler(SyncFullMethod, SyncEngineServer.Sync)},
		{MethodName: "ProcessBatch", Handler: unaryHandler(ProcessBatchFullMethod, SyncEngineServer.ProcessBatch)},
		{MethodName: "GetBatch", Handler: unaryHandler(GetBatchFullMethod, SyncEngineServer.GetBatch)},
		{MethodName: "GetConflicts", Handler: unaryHandler(GetConflictsFullMethod, SyncEngineServer.GetConflicts)},
		{MethodName: "ResolveConflict", Handler: unaryHandler(ResolveConflictFullMethod, SyncEngineServer.ResolveConflict)},
		{MethodName: "GetSyncStatus", Handler: unaryHandler(GetSyncStatusFullMethod, SyncEngineServer.GetSyncStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sync/v1/sync.proto",
}

// unaryHandler adapts a typed server method to [grpc.MethodHandler].
func unaryHandler[Req, Resp any](fullMethod string, call func(SyncEngineServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SyncEngineServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SyncEngineServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SyncEngineClient is the client API of sync.v1.SyncEngine.
type SyncEngineClient struct {
	cc grpc.ClientConnInterface
}

// NewSyncEngineClient returns a client that sends every call with the JSON
// content subtype.
func NewSyncEngineClient(cc grpc.ClientConnInterface) *SyncEngineClient {
	return &SyncEngineClient{cc: cc}
}

func (c *SyncEngineClient) QueueSync(ctx context.Context, in *models.NewBatchRequest, opts ...grpc.CallOption) (*models.SyncBatch, error) {
	return invoke[models.SyncBatch](ctx, c.cc, QueueSyncFullMethod, in, opts)
}

func (c *SyncEngineClient) Sync(ctx context.Context, in *models.NewBatchRequest, opts ...grpc.CallOption) (*models.ProcessResult, error) {
	return invoke[models.ProcessResult](ctx, c.cc, SyncFullMethod, in, opts)
}

func (c *SyncEngineClient) ProcessBatch(ctx context.Context, in *BatchRequest, opts ...grpc.CallOption) (*models.ProcessResult, error) {
	return invoke[models.ProcessResult](ctx, c.cc, ProcessBatchFullMethod, in, opts)
}

func (c *SyncEngineClient) GetBatch(ctx context.Context, in *BatchRequest, opts ...grpc.CallOption) (*models.SyncBatch, error) {
	return invoke[models.SyncBatch](ctx, c.cc, GetBatchFullMethod, in, opts)
}

func (c *SyncEngineClient) GetConflicts(ctx context.Context, in *ConflictsRequest, opts ...grpc.CallOption) (*ConflictsResponse, error) {
	return invoke[ConflictsResponse](ctx, c.cc, GetConflictsFullMethod, in, opts)
}

func (c *SyncEngineClient) ResolveConflict(ctx context.Context, in *ResolveConflictRequest, opts ...grpc.CallOption) (*ResolveConflictResponse, error) {
	return invoke[ResolveConflictResponse](ctx, c.cc, ResolveConflictFullMethod, in, opts)
}

func (c *SyncEngineClient) GetSyncStatus(ctx context.Context, in *SyncStatusRequest, opts ...grpc.CallOption) (*models.SyncStatus, error) {
	return invoke[models.SyncStatus](ctx, c.cc, GetSyncStatusFullMethod, in, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/service"
	"google.golang.org/grpc"
)

// Handler is the root gRPC transport handler.
//
// It implements [SyncEngineServer] on top of the service layer. A handler
// instance is created once at startup and shared by the gRPC server.
type Handler struct {
	services *service.Services

	logger *logger.Logger
}

// NewHandler constructs a [Handler] with the provided service container and
// logger.
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}

// ServerOptions returns the interceptor chain every sync.v1.SyncEngine call
// passes through: trace id, request logging, error mapping, auth.
func (h *Handler) ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			h.withTraceID,
			h.withLogging,
			withStatusErrors,
			h.auth,
		),
	}
}

// Register attaches the sync service to s.
func (h *Handler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&SyncEngineServiceDesc, h)
}
